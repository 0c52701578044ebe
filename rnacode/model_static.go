package rnacode

import (
	"math"
	"math/big"
	"sort"
)

// StaticModel holds fixed rule probabilities. Probabilities of each nonterminal
// are normalized to sum to one.
type StaticModel struct {
	weightedModel
}

// NewStaticModel creates a static model from a table keyed by rule spelling.
// Every rule needs a probability in (0,1]; missing, zero, negative or NaN entries
// and entries for unknown rules fail with DegenerateDistribution.
func NewStaticModel(g *Grammar, table ProbabilityTable) (*StaticModel, error) {
	m := &StaticModel{weightedModel: newWeightedModel(g)}

	for _, r := range g.Rules() {
		spelling := r.String()
		p, ok := table[spelling]
		if !ok {
			return nil, errorf(CodeDegenerateDistribution, "no probability for rule %s", spelling)
		}
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 || p > 1 {
			return nil, errorf(CodeDegenerateDistribution, "rule %s has probability %v outside (0,1]", spelling, p)
		}
		w, ok := ratFromProbability(p)
		if !ok {
			return nil, errorf(CodeDegenerateDistribution, "rule %s has unrepresentable probability %v", spelling, p)
		}
		m.weights[r.id] = w
	}

	if len(table) != g.NumRules() {
		var unknown []string
		for spelling := range table {
			if _, ok := g.Lookup(spelling); !ok {
				unknown = append(unknown, spelling)
			}
		}
		sort.Strings(unknown)
		return nil, errorf(CodeDegenerateDistribution, "probabilities for unknown rules %q", unknown)
	}

	// normalize per nonterminal
	for _, nt := range g.NonTerminals() {
		rules := g.RulesFor(nt)
		total := new(big.Rat)
		for _, r := range rules {
			total.Add(total, m.weights[r.id])
		}
		if total.Cmp(ratOne) == 0 {
			continue
		}
		for _, r := range rules {
			m.weights[r.id] = new(big.Rat).Quo(m.weights[r.id], total)
		}
	}
	return m, nil
}

func (m *StaticModel) Kind() ModelKind {
	return ModelStatic
}

// RecordUse is a no-op for static models
func (m *StaticModel) RecordUse(rule *Rule) error {
	_, err := m.resolve(rule)
	return err
}

func (m *StaticModel) Reset() {}
