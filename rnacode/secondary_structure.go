package rnacode

// ExpandSecondaryStructure turns a grammar over the structure marks '(', ')' and
// '.' into a grammar over (base, mark) terminals. Each '.' becomes the four
// unpaired bases and each bracket pair within a right-hand side becomes one of
// the canonical base pairs, so one source rule expands into several. Expanded
// rules keep the source rule order; pair slots vary slowest, then unpaired slots,
// each following the order of Bases and CanonicalPairs.
func ExpandSecondaryStructure(g *Grammar) (*Grammar, error) {
	b := NewGrammarBuilder(g.Name(), g.Start())
	for _, r := range g.Rules() {
		expanded, err := expandRule(r)
		if err != nil {
			return nil, err
		}
		b.AddRules(expanded...)
	}
	return b.Build()
}

type expansionSlot struct {
	open, close int // close is -1 for an unpaired slot
}

func expandRule(r *Rule) ([]*Rule, error) {
	var pairs, dots []expansionSlot
	var stack []int
	for i, c := range r.Right {
		if c.IsNonTerminal() || c.Terminal.IsPair() {
			continue
		}
		switch c.Terminal.Mark {
		case MarkOpen:
			stack = append(stack, i)
		case MarkClose:
			if len(stack) == 0 {
				return nil, errorf(CodeGrammarInvalid, "unmatched ')' in rule %s", r)
			}
			pairs = append(pairs, expansionSlot{open: stack[len(stack)-1], close: i})
			stack = stack[:len(stack)-1]
		case MarkUnpaired:
			dots = append(dots, expansionSlot{open: i, close: -1})
		}
	}
	if len(stack) != 0 {
		return nil, errorf(CodeGrammarInvalid, "unmatched '(' in rule %s", r)
	}

	// pairs were collected in order of their closing bracket
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].open < pairs[j-1].open; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	slots := append(pairs, dots...)

	var out []*Rule
	right := append([]Category(nil), r.Right...)
	var fill func(k int)
	fill = func(k int) {
		if k == len(slots) {
			out = append(out, NewRule(r.Left, right...))
			return
		}
		s := slots[k]
		if s.close < 0 {
			for i := 0; i < len(Bases); i++ {
				right[s.open] = T(PairTerminal(Bases[i], MarkUnpaired))
				fill(k + 1)
			}
			return
		}
		for _, p := range CanonicalPairs {
			right[s.open] = T(PairTerminal(p[0], MarkOpen))
			right[s.close] = T(PairTerminal(p[1], MarkClose))
			fill(k + 1)
		}
	}
	fill(0)
	return out, nil
}
