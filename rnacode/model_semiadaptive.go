package rnacode

import (
	"math/big"
)

// RuleCounts holds one count per rule, indexed by rule ID
type RuleCounts []uint64

// NewRuleCounts creates zero counts for g
func NewRuleCounts(g *Grammar) RuleCounts {
	return make(RuleCounts, g.NumRules())
}

// Of returns the count of rule, which must belong to the grammar the counts were made for
func (c RuleCounts) Of(rule *Rule) uint64 {
	if rule.id < 0 || rule.id >= len(c) {
		return 0
	}
	return c[rule.id]
}

// Add counts every rule of a derivation
func (c RuleCounts) Add(d Derivation) {
	for _, r := range d.Rules {
		c[r.id]++
	}
}

// SemiAdaptiveModel uses probabilities estimated from the molecule being coded.
// The counts come from a first pass over the molecule and must reach the
// decoder out of band. A nonterminal the molecule never uses would have
// undefined (0/0) probabilities, so every count is smoothed by one.
type SemiAdaptiveModel struct {
	weightedModel
	counts RuleCounts
}

// NewSemiAdaptiveModel creates a semi-adaptive model from first-pass counts
func NewSemiAdaptiveModel(g *Grammar, counts RuleCounts) (*SemiAdaptiveModel, error) {
	if len(counts) != g.NumRules() {
		return nil, errorf(CodeDegenerateDistribution, "got %d rule counts for %d rules", len(counts), g.NumRules())
	}
	m := &SemiAdaptiveModel{
		weightedModel: newWeightedModel(g),
		counts:        append(RuleCounts(nil), counts...),
	}
	for i, c := range m.counts {
		w := new(big.Int).SetUint64(c)
		w.Add(w, big.NewInt(1))
		m.weights[i] = new(big.Rat).SetInt(w)
	}
	return m, nil
}

// NewSemiAdaptiveModelFor runs the first pass over rna and creates the model
func NewSemiAdaptiveModelFor(g *Grammar, rna RNA) (*SemiAdaptiveModel, error) {
	counts, err := SemiAdaptiveCounts(g, rna)
	if err != nil {
		return nil, err
	}
	return NewSemiAdaptiveModel(g, counts)
}

func (m *SemiAdaptiveModel) Kind() ModelKind {
	return ModelSemiAdaptive
}

// Counts returns the first-pass counts without smoothing
func (m *SemiAdaptiveModel) Counts() RuleCounts {
	return append(RuleCounts(nil), m.counts...)
}

// RecordUse is a no-op; the counts are fixed after the first pass
func (m *SemiAdaptiveModel) RecordUse(rule *Rule) error {
	_, err := m.resolve(rule)
	return err
}

func (m *SemiAdaptiveModel) Reset() {}
