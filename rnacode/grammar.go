package rnacode

import (
	"strings"
)

// NonTerminal names a grammar variable. Names are unique within a grammar.
type NonTerminal string

// Terminal is a directly observable grammar symbol. RNA grammars use
// (base, structure mark) pairs; grammars over a single alphabet leave Base zero.
type Terminal struct {
	Base byte
	Mark byte
}

// CharTerminal creates a single-character terminal
func CharTerminal(c byte) Terminal {
	return Terminal{Mark: c}
}

// PairTerminal creates an RNA terminal pairing a base with its structure mark
func PairTerminal(base, mark byte) Terminal {
	return Terminal{Base: base, Mark: mark}
}

// IsPair returns true for (base, mark) terminals
func (t Terminal) IsPair() bool {
	return t.Base != 0
}

func (t Terminal) String() string {
	if t.Base == 0 {
		return string(t.Mark)
	}
	return "<" + string(t.Base) + "|" + string(t.Mark) + ">"
}

// CategoryKind tags a Category as nonterminal or terminal
type CategoryKind uint8

const (
	KindNonTerminal CategoryKind = iota
	KindTerminal
)

// Category is a grammar symbol on the right-hand side of a rule
type Category struct {
	Kind        CategoryKind
	NonTerminal NonTerminal
	Terminal    Terminal
}

// NT creates a nonterminal category
func NT(name NonTerminal) Category {
	return Category{Kind: KindNonTerminal, NonTerminal: name}
}

// T creates a terminal category
func T(t Terminal) Category {
	return Category{Kind: KindTerminal, Terminal: t}
}

// IsNonTerminal returns true if the category must be expanded by a rule
func (c Category) IsNonTerminal() bool {
	return c.Kind == KindNonTerminal
}

func (c Category) String() string {
	if c.Kind == KindNonTerminal {
		return string(c.NonTerminal)
	}
	return c.Terminal.String()
}

// Rule is a production Left → Right. Rules are immutable once added to a grammar
// and compare structurally.
type Rule struct {
	Left  NonTerminal
	Right []Category

	// id is the position in Grammar.Rules(), index the position in RulesFor(Left).
	// Both are -1 for rules not owned by a grammar.
	id    int
	index int
}

// NewRule creates a rule that is not yet owned by a grammar
func NewRule(left NonTerminal, right ...Category) *Rule {
	return &Rule{
		Left:  left,
		Right: append([]Category(nil), right...),
		id:    -1,
		index: -1,
	}
}

// ID returns the canonical position of the rule within its grammar
func (r *Rule) ID() int {
	return r.id
}

// Index returns the position of the rule among the rules for its left side
func (r *Rule) Index() int {
	return r.index
}

// IsUnit returns true for chain rules A → B
func (r *Rule) IsUnit() bool {
	return len(r.Right) == 1 && r.Right[0].IsNonTerminal()
}

// Equal compares rules structurally
func (r *Rule) Equal(other *Rule) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil || r.Left != other.Left || len(r.Right) != len(other.Right) {
		return false
	}
	for i := range r.Right {
		if r.Right[i] != other.Right[i] {
			return false
		}
	}
	return true
}

// String returns the rule spelling, e.g. "L → <G|(> S <C|)>"
func (r *Rule) String() string {
	var sb strings.Builder
	sb.WriteString(string(r.Left))
	sb.WriteString(" →")
	for _, c := range r.Right {
		sb.WriteByte(' ')
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Grammar is an immutable context-free grammar with a start symbol. Rules keep
// the order in which they were added; that order is canonical for every
// probability model and coder built on the grammar.
type Grammar struct {
	name         string
	start        NonTerminal
	rules        []*Rule
	byLeft       map[NonTerminal][]*Rule
	bySpelling   map[string]*Rule
	nonTerminals []NonTerminal
	ntIndex      map[NonTerminal]int
}

// Name returns the grammar name
func (g *Grammar) Name() string {
	return g.name
}

// Start returns the start symbol
func (g *Grammar) Start() NonTerminal {
	return g.start
}

// Rules returns all rules in canonical order. The slice must not be modified.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

// NumRules returns the number of rules
func (g *Grammar) NumRules() int {
	return len(g.rules)
}

// RulesFor returns the rules for nt in canonical order. The slice must not be modified.
func (g *Grammar) RulesFor(nt NonTerminal) []*Rule {
	return g.byLeft[nt]
}

// NonTerminals returns every nonterminal of the grammar, start symbol first
func (g *Grammar) NonTerminals() []NonTerminal {
	return g.nonTerminals
}

// Lookup finds a rule by its spelling
func (g *Grammar) Lookup(spelling string) (*Rule, bool) {
	r, ok := g.bySpelling[spelling]
	return r, ok
}

// Resolve maps a structurally equal rule onto the grammar's own instance
func (g *Grammar) Resolve(rule *Rule) (*Rule, bool) {
	if rule == nil {
		return nil, false
	}
	if rule.id >= 0 && rule.id < len(g.rules) && g.rules[rule.id] == rule {
		return rule, true
	}
	own, ok := g.bySpelling[rule.String()]
	if !ok || !own.Equal(rule) {
		return nil, false
	}
	return own, true
}

func (g *Grammar) String() string {
	var sb strings.Builder
	sb.WriteString(g.name)
	sb.WriteString(" (start ")
	sb.WriteString(string(g.start))
	sb.WriteString(")\n")
	for _, r := range g.rules {
		sb.WriteString("  ")
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// GrammarBuilder collects rules for a Grammar
type GrammarBuilder struct {
	name  string
	start NonTerminal
	rules []*Rule
}

// NewGrammarBuilder creates a builder for a grammar with the given start symbol
func NewGrammarBuilder(name string, start NonTerminal) *GrammarBuilder {
	return &GrammarBuilder{name: name, start: start}
}

// AddRule appends the rule left → right
func (b *GrammarBuilder) AddRule(left NonTerminal, right ...Category) *GrammarBuilder {
	b.rules = append(b.rules, NewRule(left, right...))
	return b
}

// AddRules appends copies of the given rules
func (b *GrammarBuilder) AddRules(rules ...*Rule) *GrammarBuilder {
	for _, r := range rules {
		b.rules = append(b.rules, NewRule(r.Left, r.Right...))
	}
	return b
}

// Build validates the rules and creates the grammar. Duplicate rules are merged.
// It fails with GrammarInvalid if a reachable nonterminal has no rules or cannot
// derive any terminal string.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	if err := validateName(b.start); err != nil {
		return nil, err
	}

	g := &Grammar{
		name:       b.name,
		start:      b.start,
		byLeft:     make(map[NonTerminal][]*Rule),
		bySpelling: make(map[string]*Rule),
		ntIndex:    make(map[NonTerminal]int),
	}
	g.addNonTerminal(b.start)

	for _, r := range b.rules {
		if err := validateName(r.Left); err != nil {
			return nil, err
		}
		if len(r.Right) == 0 {
			return nil, errorf(CodeGrammarInvalid, "rule for %s has an empty right-hand side", r.Left)
		}
		for _, c := range r.Right {
			if c.IsNonTerminal() {
				if err := validateName(c.NonTerminal); err != nil {
					return nil, err
				}
			} else if c.Terminal.Mark == 0 {
				return nil, errorf(CodeGrammarInvalid, "rule %s has an empty terminal", r)
			}
		}

		spelling := r.String()
		if existing, ok := g.bySpelling[spelling]; ok {
			if existing.Equal(r) {
				continue
			}
			return nil, errorf(CodeGrammarInvalid, "two different rules are spelled %q", spelling)
		}

		own := NewRule(r.Left, r.Right...)
		own.id = len(g.rules)
		own.index = len(g.byLeft[own.Left])
		g.rules = append(g.rules, own)
		g.byLeft[own.Left] = append(g.byLeft[own.Left], own)
		g.bySpelling[spelling] = own

		g.addNonTerminal(own.Left)
		for _, c := range own.Right {
			if c.IsNonTerminal() {
				g.addNonTerminal(c.NonTerminal)
			}
		}
	}

	if err := g.checkReachable(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grammar) addNonTerminal(nt NonTerminal) {
	if _, ok := g.ntIndex[nt]; ok {
		return
	}
	g.ntIndex[nt] = len(g.nonTerminals)
	g.nonTerminals = append(g.nonTerminals, nt)
}

// checkReachable verifies that every nonterminal reachable from the start
// symbol has rules and is productive.
func (g *Grammar) checkReachable() error {
	productive := make(map[NonTerminal]bool)
	for changed := true; changed; {
		changed = false
		for _, r := range g.rules {
			if productive[r.Left] {
				continue
			}
			ok := true
			for _, c := range r.Right {
				if c.IsNonTerminal() && !productive[c.NonTerminal] {
					ok = false
					break
				}
			}
			if ok {
				productive[r.Left] = true
				changed = true
			}
		}
	}

	seen := map[NonTerminal]bool{g.start: true}
	queue := []NonTerminal{g.start}
	for len(queue) > 0 {
		nt := queue[0]
		queue = queue[1:]
		rules := g.byLeft[nt]
		if len(rules) == 0 {
			return errorf(CodeGrammarInvalid, "nonterminal %s has no rules", nt)
		}
		if !productive[nt] {
			return errorf(CodeGrammarInvalid, "nonterminal %s derives no terminal string", nt)
		}
		for _, r := range rules {
			for _, c := range r.Right {
				if c.IsNonTerminal() && !seen[c.NonTerminal] {
					seen[c.NonTerminal] = true
					queue = append(queue, c.NonTerminal)
				}
			}
		}
	}
	return nil
}

func validateName(nt NonTerminal) error {
	if nt == "" {
		return errorf(CodeGrammarInvalid, "empty nonterminal name")
	}
	if strings.ContainsAny(string(nt), " \t\r\n|<>") || strings.Contains(string(nt), "→") {
		return errorf(CodeGrammarInvalid, "nonterminal name %q contains reserved characters", nt)
	}
	return nil
}
