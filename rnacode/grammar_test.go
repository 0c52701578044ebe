package rnacode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiuGrammarExpansion(t *testing.T) {
	g := LiuGrammar()

	expected := []string{
		"S → L S",
		"S → L",
		"L → <A|(> S <U|)>",
		"L → <C|(> S <G|)>",
		"L → <G|(> S <C|)>",
		"L → <G|(> S <U|)>",
		"L → <U|(> S <A|)>",
		"L → <U|(> S <G|)>",
		"L → <A|.>",
		"L → <C|.>",
		"L → <G|.>",
		"L → <U|.>",
	}
	require.Equal(t, len(expected), g.NumRules())
	for i, r := range g.Rules() {
		assert.Equal(t, expected[i], r.String())
		assert.Equal(t, i, r.ID())
	}

	assert.Equal(t, NonTerminal("S"), g.Start())
	assert.Equal(t, []NonTerminal{"S", "L"}, g.NonTerminals())
	assert.Len(t, g.RulesFor("L"), 10)
	for i, r := range g.RulesFor("L") {
		assert.Equal(t, i, r.Index())
	}

	// every published probability names a rule of the grammar
	for spelling := range LiuRuleProbabilities() {
		_, ok := g.Lookup(spelling)
		assert.True(t, ok, spelling)
	}
}

func TestRuleEquality(t *testing.T) {
	g := LiuGrammar()

	r := NewRule("S", NT("L"), NT("S"))
	assert.Equal(t, -1, r.ID())
	assert.True(t, r.Equal(g.Rules()[0]))
	assert.False(t, r.Equal(g.Rules()[1]))

	own, ok := g.Resolve(r)
	require.True(t, ok)
	assert.Same(t, g.Rules()[0], own)

	_, ok = g.Resolve(NewRule("S", NT("S")))
	assert.False(t, ok)
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules(`
# comment
S -> A | b
A → <G|(> S <C|)>
A → .
`)
	require.NoError(t, err)
	require.Len(t, rules, 4)
	assert.Equal(t, "S → A", rules[0].String())
	assert.Equal(t, "S → b", rules[1].String())
	assert.Equal(t, "A → <G|(> S <C|)>", rules[2].String())
	assert.Equal(t, T(PairTerminal('G', '(')), rules[2].Right[0])
	assert.Equal(t, T(CharTerminal('.')), rules[3].Right[0])

	for _, r := range rules {
		parsed, err := ParseRule(r.String())
		require.NoError(t, err)
		assert.True(t, parsed.Equal(r))
	}

	for _, bad := range []string{"S", "S → ", "s → a", "S → A |", "S → ab", "S = A"} {
		_, err := ParseRules(bad)
		assert.ErrorIs(t, err, ErrGrammarInvalid, bad)
	}
}

func TestGrammarValidation(t *testing.T) {
	testCases := []struct {
		name  string
		build func() (*Grammar, error)
	}{
		{"missing rules", func() (*Grammar, error) {
			return NewGrammarBuilder("g", "S").AddRule("S", NT("A")).Build()
		}},
		{"no start rules", func() (*Grammar, error) {
			return NewGrammarBuilder("g", "S").AddRule("A", T(CharTerminal('a'))).Build()
		}},
		{"empty right side", func() (*Grammar, error) {
			return NewGrammarBuilder("g", "S").AddRule("S").Build()
		}},
		{"unproductive", func() (*Grammar, error) {
			return NewGrammarBuilder("g", "S").
				AddRule("S", T(CharTerminal('a'))).
				AddRule("S", NT("A")).
				AddRule("A", T(CharTerminal('a')), NT("A")).
				Build()
		}},
		{"bad name", func() (*Grammar, error) {
			return NewGrammarBuilder("g", "S").AddRule("S", NT("A B")).Build()
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrGrammarInvalid), err.Error())
		})
	}

	// unreachable nonterminals may be incomplete
	g, err := NewGrammarBuilder("g", "S").
		AddRule("S", T(CharTerminal('a'))).
		AddRule("X", NT("Y")).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 2, g.NumRules())

	// identical rules are merged
	g, err = NewGrammarBuilder("g", "S").
		AddRule("S", T(CharTerminal('a'))).
		AddRule("S", T(CharTerminal('a'))).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 1, g.NumRules())
}

func TestExpandSecondaryStructure(t *testing.T) {
	g, err := ParseGrammar("nested", `
S → ( ( S ) . ) | .
`)
	require.NoError(t, err)

	expanded, err := ExpandSecondaryStructure(g)
	require.NoError(t, err)
	assert.Equal(t, 6*6*4+4, expanded.NumRules())

	first := expanded.Rules()[0]
	assert.Equal(t, "S → <A|(> <A|(> S <U|)> <A|.> <U|)>", first.String())
	second := expanded.Rules()[1]
	assert.Equal(t, "S → <A|(> <A|(> S <U|)> <C|.> <U|)>", second.String())
	assert.Equal(t, "S → <U|.>", expanded.Rules()[expanded.NumRules()-1].String())

	unmatched, err := ParseGrammar("unmatched", "S → ( S | .")
	require.NoError(t, err)
	_, err = ExpandSecondaryStructure(unmatched)
	assert.ErrorIs(t, err, ErrGrammarInvalid)
}

func TestRNA(t *testing.T) {
	rna, err := NewRNA("cag", "(.)")
	require.NoError(t, err)
	assert.Equal(t, "CAG", rna.Primary)
	assert.Equal(t, []Terminal{
		PairTerminal('C', '('),
		PairTerminal('A', '.'),
		PairTerminal('G', ')'),
	}, rna.Terminals())

	back, err := RNAFromTerminals(rna.Terminals())
	require.NoError(t, err)
	assert.Equal(t, rna, back)

	_, err = NewRNA("CAG", "(.")
	assert.ErrorIs(t, err, ErrInvalidRNA)
	_, err = NewRNA("CAT", "(.)")
	assert.ErrorIs(t, err, ErrInvalidRNA)
	_, err = NewRNA("CAG", "(x)")
	assert.ErrorIs(t, err, ErrInvalidRNA)
	_, err = RNAFromTerminals(CharWord("a"))
	assert.ErrorIs(t, err, ErrInvalidRNA)
}
