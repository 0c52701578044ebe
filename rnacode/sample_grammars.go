package rnacode

// ProbabilityTable maps rule spellings (Rule.String) to probabilities
type ProbabilityTable map[string]float64

// LiuGrammarText is the secondary-structure grammar of Liu et al.
const LiuGrammarText = `
S → L S | L
L → ( S ) | .
`

// LiuGrammar returns the Liu et al. grammar expanded over RNA terminals
func LiuGrammar() *Grammar {
	g, err := ParseGrammar("Liu", LiuGrammarText)
	if err != nil {
		panic(err)
	}
	expanded, err := ExpandSecondaryStructure(g)
	if err != nil {
		panic(err)
	}
	return expanded
}

// LiuRuleProbabilities returns the published rule probabilities for LiuGrammar
func LiuRuleProbabilities() ProbabilityTable {
	return ProbabilityTable{
		"S → L S":           0.66,
		"S → L":             0.34,
		"L → <A|(> S <U|)>": 0.071602,
		"L → <U|(> S <A|)>": 0.094385,
		"L → <C|(> S <G|)>": 0.144020,
		"L → <G|(> S <C|)>": 0.113914,
		"L → <U|(> S <G|)>": 0.026851,
		"L → <G|(> S <U|)>": 0.017901,
		"L → <A|.>":         0.183076,
		"L → <C|.>":         0.087876,
		"L → <G|.>":         0.101709,
		"L → <U|.>":         0.158666,
	}
}

// UniformProbabilities returns a table giving every rule of a nonterminal the same probability
func UniformProbabilities(g *Grammar) ProbabilityTable {
	table := make(ProbabilityTable, g.NumRules())
	for _, r := range g.Rules() {
		table[r.String()] = 1 / float64(len(g.RulesFor(r.Left)))
	}
	return table
}
