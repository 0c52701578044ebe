package rnacode

import (
	"math/big"
)

// AdaptiveModel estimates probabilities from the rules coded so far. Every rule
// starts with a pseudo-count of one, so no option ever has zero width.
type AdaptiveModel struct {
	weightedModel
	counts []int64
}

// NewAdaptiveModel creates an adaptive model in its initial state
func NewAdaptiveModel(g *Grammar) *AdaptiveModel {
	m := &AdaptiveModel{
		weightedModel: newWeightedModel(g),
		counts:        make([]int64, g.NumRules()),
	}
	m.Reset()
	return m
}

func (m *AdaptiveModel) Kind() ModelKind {
	return ModelAdaptive
}

// RecordUse counts one more use of rule
func (m *AdaptiveModel) RecordUse(rule *Rule) error {
	own, err := m.resolve(rule)
	if err != nil {
		return err
	}
	m.counts[own.id]++
	m.weights[own.id] = big.NewRat(m.counts[own.id], 1)
	m.invalidate(own.Left)
	return nil
}

// Count returns the current count of rule including the pseudo-count
func (m *AdaptiveModel) Count(rule *Rule) int64 {
	own, err := m.resolve(rule)
	if err != nil {
		return 0
	}
	return m.counts[own.id]
}

// Reset sets every count back to one
func (m *AdaptiveModel) Reset() {
	for i := range m.counts {
		m.counts[i] = 1
		m.weights[i] = big.NewRat(1, 1)
	}
	clear(m.cache)
}
