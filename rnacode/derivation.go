package rnacode

import (
	"math"
	"strings"
)

// Derivation is a sequence of rule applications in leftmost order
type Derivation struct {
	Rules []*Rule

	// LogProb is the natural log of the derivation probability under the parser weights
	LogProb float64
}

// Bits returns -log2 of the derivation probability, the information content
// an ideal coder would spend on it
func (d Derivation) Bits() float64 {
	return -d.LogProb / math.Ln2
}

// Yield replays the derivation from start and returns the derived word
func (d Derivation) Yield(start NonTerminal) ([]Terminal, error) {
	sf := newSententialForm(start)
	for i, r := range d.Rules {
		nt, ok := sf.leftmost()
		if !ok {
			return nil, errorf(CodeAssertionFailure, "derivation step %d applies %s to a terminal word", i, r)
		}
		if nt != r.Left {
			return nil, errorf(CodeAssertionFailure, "derivation step %d applies %s to %s", i, r, nt)
		}
		sf.apply(r)
	}
	if !sf.done() {
		return nil, errorf(CodeAssertionFailure, "derivation leaves nonterminals unexpanded")
	}
	return sf.terminals, nil
}

func (d Derivation) String() string {
	parts := make([]string, len(d.Rules))
	for i, r := range d.Rules {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// sententialForm is a leftmost derivation in progress. Symbols still to be
// expanded sit on a stack with the leftmost on top; terminals left of the
// leftmost nonterminal have already moved to the output buffer.
type sententialForm struct {
	pending   []Category
	terminals []Terminal
}

func newSententialForm(start NonTerminal) *sententialForm {
	return &sententialForm{pending: []Category{NT(start)}}
}

// leftmost moves leading terminals to the output and returns the leftmost nonterminal
func (sf *sententialForm) leftmost() (NonTerminal, bool) {
	for len(sf.pending) > 0 {
		top := sf.pending[len(sf.pending)-1]
		if top.IsNonTerminal() {
			return top.NonTerminal, true
		}
		sf.terminals = append(sf.terminals, top.Terminal)
		sf.pending = sf.pending[:len(sf.pending)-1]
	}
	return "", false
}

// apply replaces the leftmost nonterminal with the right-hand side of r
func (sf *sententialForm) apply(r *Rule) {
	sf.pending = sf.pending[:len(sf.pending)-1]
	for i := len(r.Right) - 1; i >= 0; i-- {
		sf.pending = append(sf.pending, r.Right[i])
	}
}

func (sf *sententialForm) done() bool {
	_, ok := sf.leftmost()
	return !ok
}
