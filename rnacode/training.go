package rnacode

import (
	"fmt"
)

// CountRules parses every molecule with the most likely derivation under
// weights and counts how often each rule is used.
func CountRules(g *Grammar, weights RuleWeights, dataset []RNA) (RuleCounts, error) {
	parser := NewStochasticParser(g, weights)
	counts := NewRuleCounts(g)
	for i, rna := range dataset {
		d, err := parser.ParseRNA(rna)
		if err != nil {
			return nil, fmt.Errorf("molecule %d: %w", i, err)
		}
		counts.Add(d)
	}
	return counts, nil
}

// SemiAdaptiveCounts is the first pass of the semi-adaptive model: the rule
// counts of the most likely derivation of rna under uniform rule probabilities.
func SemiAdaptiveCounts(g *Grammar, rna RNA) (RuleCounts, error) {
	d, err := NewStochasticParser(g, nil).ParseRNA(rna)
	if err != nil {
		return nil, err
	}
	counts := NewRuleCounts(g)
	counts.Add(d)
	return counts, nil
}

// LaplaceProbabilities turns counts into a static probability table with
// add-one smoothing, so rules never seen in training keep a nonzero probability.
func LaplaceProbabilities(g *Grammar, counts RuleCounts) ProbabilityTable {
	table := make(ProbabilityTable, g.NumRules())
	for _, nt := range g.NonTerminals() {
		rules := g.RulesFor(nt)
		total := float64(len(rules))
		for _, r := range rules {
			total += float64(counts.Of(r))
		}
		for _, r := range rules {
			table[r.String()] = (float64(counts.Of(r)) + 1) / total
		}
	}
	return table
}
