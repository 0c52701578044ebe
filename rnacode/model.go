package rnacode

import (
	"math/big"
	"sort"
	"strings"
)

// ModelKind selects how rule probabilities are obtained
type ModelKind uint8

const (
	ModelStatic ModelKind = iota
	ModelAdaptive
	ModelSemiAdaptive
)

func (k ModelKind) String() string {
	switch k {
	case ModelStatic:
		return "static"
	case ModelAdaptive:
		return "adaptive"
	case ModelSemiAdaptive:
		return "semi-adaptive"
	default:
		return "unknown"
	}
}

// ParseModelKind parses the names returned by ModelKind.String
func ParseModelKind(s string) (ModelKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static":
		return ModelStatic, nil
	case "adaptive":
		return ModelAdaptive, nil
	case "semi-adaptive", "semiadaptive", "semi_adaptive":
		return ModelSemiAdaptive, nil
	}
	return 0, errorf(CodeAssertionFailure, "unknown model kind %q", s)
}

// RuleWeights supplies the rule probabilities the parser maximizes over
type RuleWeights interface {
	Probability(rule *Rule) float64
}

// RuleProbModel maps the rules of each nonterminal onto a partition of [0,1).
// IntervalsFor is parallel to RulesFor and both keep the grammar's canonical
// order, so encoder and decoder index the same options. Models are owned by a
// single encode or decode session.
type RuleProbModel interface {
	RuleWeights

	Grammar() *Grammar
	Kind() ModelKind
	RulesFor(nt NonTerminal) []*Rule
	IntervalsFor(nt NonTerminal) ([]Interval, error)
	IntervalFor(rule *Rule) (Interval, error)
	RuleFor(nt NonTerminal, iv Interval) (*Rule, error)

	// RecordUse must be called by encoder and decoder after every step, in the same order
	RecordUse(rule *Rule) error

	// Reset restores the state the model was constructed with
	Reset()
}

// NewModel creates a model of the given kind. Static models need a probability
// table, semi-adaptive models need the counts of the first pass.
func NewModel(kind ModelKind, g *Grammar, table ProbabilityTable, counts RuleCounts) (RuleProbModel, error) {
	switch kind {
	case ModelStatic:
		return NewStaticModel(g, table)
	case ModelAdaptive:
		return NewAdaptiveModel(g), nil
	case ModelSemiAdaptive:
		return NewSemiAdaptiveModel(g, counts)
	}
	return nil, errorf(CodeAssertionFailure, "unknown model kind %d", kind)
}

// weightedModel derives intervals from positive per-rule weights. Intervals for
// a nonterminal are cached until one of its weights changes.
type weightedModel struct {
	grammar *Grammar
	weights []*big.Rat // by rule ID
	cache   map[NonTerminal][]Interval
}

func newWeightedModel(g *Grammar) weightedModel {
	return weightedModel{
		grammar: g,
		weights: make([]*big.Rat, g.NumRules()),
		cache:   make(map[NonTerminal][]Interval),
	}
}

func (m *weightedModel) Grammar() *Grammar {
	return m.grammar
}

func (m *weightedModel) RulesFor(nt NonTerminal) []*Rule {
	return m.grammar.RulesFor(nt)
}

func (m *weightedModel) IntervalsFor(nt NonTerminal) ([]Interval, error) {
	if ivs, ok := m.cache[nt]; ok {
		return ivs, nil
	}
	rules := m.grammar.RulesFor(nt)
	if len(rules) == 0 {
		return nil, errorf(CodeGrammarInvalid, "nonterminal %s has no rules", nt)
	}
	ws := make([]*big.Rat, len(rules))
	for i, r := range rules {
		ws[i] = m.weights[r.id]
	}
	ivs, err := partition(ws)
	if err != nil {
		return nil, errorf(CodeDegenerateDistribution, "rules for %s: %v", nt, err)
	}
	m.cache[nt] = ivs
	return ivs, nil
}

func (m *weightedModel) IntervalFor(rule *Rule) (Interval, error) {
	own, err := m.resolve(rule)
	if err != nil {
		return Interval{}, err
	}
	ivs, err := m.IntervalsFor(own.Left)
	if err != nil {
		return Interval{}, err
	}
	return ivs[own.index], nil
}

func (m *weightedModel) RuleFor(nt NonTerminal, iv Interval) (*Rule, error) {
	ivs, err := m.IntervalsFor(nt)
	if err != nil {
		return nil, err
	}
	i := sort.Search(len(ivs), func(i int) bool {
		return ivs[i].hi.Cmp(iv.lo) > 0
	})
	if i == len(ivs) || !ivs[i].Equal(iv) {
		return nil, errorf(CodeAssertionFailure, "interval %s is not an option for %s", iv, nt)
	}
	return m.grammar.RulesFor(nt)[i], nil
}

func (m *weightedModel) Probability(rule *Rule) float64 {
	own, err := m.resolve(rule)
	if err != nil {
		return 0
	}
	total := new(big.Rat)
	for _, r := range m.grammar.RulesFor(own.Left) {
		total.Add(total, m.weights[r.id])
	}
	p, _ := new(big.Rat).Quo(m.weights[own.id], total).Float64()
	return p
}

func (m *weightedModel) resolve(rule *Rule) (*Rule, error) {
	own, ok := m.grammar.Resolve(rule)
	if !ok {
		return nil, errorf(CodeAssertionFailure, "rule %s is not part of grammar %s", rule, m.grammar.Name())
	}
	return own, nil
}

func (m *weightedModel) invalidate(nt NonTerminal) {
	delete(m.cache, nt)
}

// UniformWeights gives every rule of a nonterminal the same probability
type UniformWeights struct {
	grammar *Grammar
}

// NewUniformWeights creates uniform parser weights for g
func NewUniformWeights(g *Grammar) UniformWeights {
	return UniformWeights{grammar: g}
}

func (u UniformWeights) Probability(rule *Rule) float64 {
	n := len(u.grammar.RulesFor(rule.Left))
	if n == 0 {
		return 0
	}
	return 1 / float64(n)
}
