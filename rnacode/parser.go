package rnacode

import (
	"math"
)

// StochasticParser finds the most likely leftmost derivation of a word. It is a
// CYK-style chart parser that handles right-hand sides of any length by keeping
// the best parse of every rule prefix per span, and chain rules A → B by
// relaxing them to a fixpoint on each span.
//
// Ties are broken towards the rule that comes first in canonical order, then
// towards the earliest split.
type StochasticParser struct {
	grammar *Grammar
	logProb []float64 // by rule ID, -Inf for rules that can never be used
}

// NewStochasticParser creates a parser for g. The weights are read once, so a
// parser reflects the model state at construction. Nil weights are uniform.
func NewStochasticParser(g *Grammar, weights RuleWeights) *StochasticParser {
	if weights == nil {
		weights = NewUniformWeights(g)
	}
	p := &StochasticParser{
		grammar: g,
		logProb: make([]float64, g.NumRules()),
	}
	for _, r := range g.Rules() {
		prob := weights.Probability(r)
		if math.IsNaN(prob) || prob <= 0 {
			p.logProb[r.id] = math.Inf(-1)
		} else {
			p.logProb[r.id] = math.Log(prob)
		}
	}
	return p
}

// Grammar returns the grammar being parsed
func (p *StochasticParser) Grammar() *Grammar {
	return p.grammar
}

// MostLikelyLeftmostDerivation returns the maximum-likelihood leftmost
// derivation of word, or an Unparsable error.
func (p *StochasticParser) MostLikelyLeftmostDerivation(word []Terminal) (Derivation, error) {
	c := p.fill(word)
	start := p.grammar.ntIndex[p.grammar.start]
	logProb := c.best[c.cell(0, c.n, start)]
	if len(word) == 0 || math.IsInf(logProb, -1) {
		return Derivation{}, errorf(CodeUnparsable, "word of length %d is not derivable from %s in grammar %s",
			len(word), p.grammar.start, p.grammar.name)
	}

	d := Derivation{LogProb: logProb}
	c.reconstruct(p.grammar, start, 0, c.n, &d.Rules)
	return d, nil
}

// ParseRNA returns the most likely leftmost derivation of an RNA molecule
func (p *StochasticParser) ParseRNA(rna RNA) (Derivation, error) {
	return p.MostLikelyLeftmostDerivation(rna.Terminals())
}

// LogProbabilityOf returns the natural log of the probability of the most likely derivation of word
func (p *StochasticParser) LogProbabilityOf(word []Terminal) (float64, error) {
	d, err := p.MostLikelyLeftmostDerivation(word)
	if err != nil {
		return math.Inf(-1), err
	}
	return d.LogProb, nil
}

// Parsable reports whether word has a derivation using rules of nonzero probability
func (p *StochasticParser) Parsable(word []Terminal) bool {
	_, err := p.MostLikelyLeftmostDerivation(word)
	return err == nil
}

type backPointer struct {
	rule  int32 // -1 if the cell has no parse
	split int32 // start of the last right-hand side symbol
}

// prefixTable holds, per span, the best parse of the first m symbols of a rule
type prefixTable struct {
	score []float64
	split []int32
}

type chart struct {
	word    []Terminal
	n       int
	numNT   int
	ntIndex map[NonTerminal]int
	best    []float64
	back    []backPointer
	prefix  [][]prefixTable // by rule ID, then m-2 for m = 2..k-1
}

func (c *chart) span(i, j int) int {
	return i*(c.n+1) + j
}

func (c *chart) cell(i, j, nt int) int {
	return c.span(i, j)*c.numNT + nt
}

func (p *StochasticParser) fill(word []Terminal) *chart {
	g := p.grammar
	n := len(word)
	spans := (n + 1) * (n + 1)
	c := &chart{
		word:    word,
		n:       n,
		numNT:   len(g.nonTerminals),
		ntIndex: g.ntIndex,
		prefix:  make([][]prefixTable, len(g.rules)),
	}
	c.best = make([]float64, spans*c.numNT)
	c.back = make([]backPointer, spans*c.numNT)
	for i := range c.best {
		c.best[i] = math.Inf(-1)
		c.back[i] = backPointer{rule: -1, split: -1}
	}

	var unitRules []*Rule
	for _, r := range g.rules {
		if math.IsInf(p.logProb[r.id], -1) {
			continue
		}
		if r.IsUnit() {
			unitRules = append(unitRules, r)
			continue
		}
		if k := len(r.Right); k > 2 {
			c.prefix[r.id] = make([]prefixTable, k-2)
			for m := range c.prefix[r.id] {
				c.prefix[r.id][m] = prefixTable{
					score: make([]float64, spans),
					split: make([]int32, spans),
				}
				for s := range c.prefix[r.id][m].score {
					c.prefix[r.id][m].score[s] = math.Inf(-1)
				}
			}
		}
	}

	for length := 1; length <= n; length++ {
		for i := 0; i+length <= n; i++ {
			j := i + length
			for _, r := range g.rules {
				if math.IsInf(p.logProb[r.id], -1) || r.IsUnit() {
					continue
				}
				score, split := c.completeRule(r, i, j)
				if math.IsInf(score, -1) {
					continue
				}
				score += p.logProb[r.id]
				at := c.cell(i, j, g.ntIndex[r.Left])
				if score > c.best[at] {
					c.best[at] = score
					c.back[at] = backPointer{rule: int32(r.id), split: int32(split)}
				}
			}
			p.closeUnits(c, unitRules, i, j)
		}
	}
	return c
}

// completeRule fills the prefix tables of r for [i,j) and returns the score and
// last split of the whole right-hand side over [i,j).
func (c *chart) completeRule(r *Rule, i, j int) (float64, int) {
	k := len(r.Right)
	if k == 1 {
		return c.symbolScore(r.Right[0], i, j), i
	}
	var score float64
	var split int
	for m := 2; m <= k; m++ {
		score, split = math.Inf(-1), -1
		sym := r.Right[m-1]
		lo := i + m - 1
		if !sym.IsNonTerminal() {
			lo = j - 1
		}
		for s := lo; s <= j-1; s++ {
			left := c.prefixScore(r, m-1, i, s)
			if math.IsInf(left, -1) {
				continue
			}
			right := c.symbolScore(sym, s, j)
			if math.IsInf(right, -1) {
				continue
			}
			if left+right > score {
				score = left + right
				split = s
			}
		}
		if m < k {
			t := &c.prefix[r.id][m-2]
			t.score[c.span(i, j)] = score
			t.split[c.span(i, j)] = int32(split)
		}
	}
	return score, split
}

// closeUnits relaxes chain rules on [i,j) until nothing improves
func (p *StochasticParser) closeUnits(c *chart, unitRules []*Rule, i, j int) {
	g := p.grammar
	for pass := 0; pass <= c.numNT; pass++ {
		changed := false
		for _, r := range unitRules {
			from := c.best[c.cell(i, j, g.ntIndex[r.Right[0].NonTerminal])]
			if math.IsInf(from, -1) {
				continue
			}
			score := from + p.logProb[r.id]
			at := c.cell(i, j, g.ntIndex[r.Left])
			if score > c.best[at] || (score == c.best[at] && int32(r.id) < c.back[at].rule) {
				c.best[at] = score
				c.back[at] = backPointer{rule: int32(r.id), split: int32(i)}
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func (c *chart) symbolScore(sym Category, i, j int) float64 {
	if sym.IsNonTerminal() {
		nt, ok := c.ntIndex[sym.NonTerminal]
		if !ok {
			return math.Inf(-1)
		}
		return c.best[c.cell(i, j, nt)]
	}
	if j-i == 1 && c.word[i] == sym.Terminal {
		return 0
	}
	return math.Inf(-1)
}

func (c *chart) prefixScore(r *Rule, m, i, j int) float64 {
	if m == 1 {
		return c.symbolScore(r.Right[0], i, j)
	}
	return c.prefix[r.id][m-2].score[c.span(i, j)]
}

// reconstruct appends the leftmost derivation of nt over [i,j) to out
func (c *chart) reconstruct(g *Grammar, nt, i, j int, out *[]*Rule) {
	bp := c.back[c.cell(i, j, nt)]
	r := g.rules[bp.rule]
	*out = append(*out, r)

	k := len(r.Right)
	starts := make([]int, k+1)
	starts[k] = j
	starts[0] = i
	if k > 1 {
		starts[k-1] = int(bp.split)
		for m := k - 1; m >= 2; m-- {
			starts[m-1] = int(c.prefix[r.id][m-2].split[c.span(i, starts[m])])
		}
	}
	for m, sym := range r.Right {
		if sym.IsNonTerminal() {
			c.reconstruct(g, g.ntIndex[sym.NonTerminal], starts[m], starts[m+1], out)
		}
	}
}
