package rnacode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleGrammarText = `
A0 → . | A0 A0 | ( A4 )
A1 → .
A2 → ( A4 )
A3 → . | A1 A3 | A2 A3
A4 → ( A4 ) | A3
`

func TestMostLikelyDerivationAmbiguous(t *testing.T) {
	g, err := ParseGrammar("ambiguous", `
S → A | B | C
A → a | b
B → a | b
C → a
`)
	require.NoError(t, err)

	m, err := NewStaticModel(g, ProbabilityTable{
		"S → A": 0.5,
		"S → B": 0.3,
		"S → C": 0.2,
		"A → a": 0.1,
		"A → b": 0.9,
		"B → a": 0.5,
		"B → b": 0.5,
		"C → a": 1.0,
	})
	require.NoError(t, err)
	parser := NewStochasticParser(g, m)

	// S ⇒ A ⇒ a has probability 0.05, S ⇒ B ⇒ a 0.15 and S ⇒ C ⇒ a 0.2
	d, err := parser.MostLikelyLeftmostDerivation(CharWord("a"))
	require.NoError(t, err)
	assert.Equal(t, "[S → C, C → a]", d.String())
	assert.InDelta(t, math.Log(0.2), d.LogProb, 1e-9)

	// S ⇒ A ⇒ b has probability 0.45, S ⇒ B ⇒ b 0.15
	lp, err := parser.LogProbabilityOf(CharWord("b"))
	require.NoError(t, err)
	assert.InDelta(t, math.Log(0.45), lp, 1e-9)
	d, err = parser.MostLikelyLeftmostDerivation(CharWord("b"))
	require.NoError(t, err)
	assert.Equal(t, "[S → A, A → b]", d.String())
	assert.InDelta(t, -math.Log2(0.45), d.Bits(), 1e-9)

	_, err = parser.MostLikelyLeftmostDerivation(CharWord("ab"))
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestMostLikelyDerivationTieBreak(t *testing.T) {
	g, err := ParseGrammar("ties", `
S → A | B
A → a
B → a
`)
	require.NoError(t, err)

	// both derivations of "a" have probability 1/2; the earlier rule wins
	d, err := NewStochasticParser(g, nil).MostLikelyLeftmostDerivation(CharWord("a"))
	require.NoError(t, err)
	assert.Equal(t, "[S → A, A → a]", d.String())
}

func TestSimpleGrammarDerivation(t *testing.T) {
	g, err := ParseGrammar("simpleGrammar", simpleGrammarText)
	require.NoError(t, err)
	parser := NewStochasticParser(g, nil)

	d, err := parser.MostLikelyLeftmostDerivation(CharWord(".(.)"))
	require.NoError(t, err)
	assert.Equal(t, "[A0 → A0 A0, A0 → ., A0 → ( A4 ), A4 → A3, A3 → .]", d.String())

	testCases := []struct {
		word     string
		parsable bool
	}{
		{"(.)", true},
		{".((.)).", true},
		{".((.).).", true},
		{"((.(.)(..).))..(.)", true},
		{"(((.(.)(..))))..(.)", false},
		{"", false},
		{"()", false},
		{"(.", false},
		{".)", false},
	}
	for _, tc := range testCases {
		t.Run(tc.word, func(t *testing.T) {
			word := CharWord(tc.word)
			assert.Equal(t, tc.parsable, parser.Parsable(word))
			if !tc.parsable {
				return
			}
			d, err := parser.MostLikelyLeftmostDerivation(word)
			require.NoError(t, err)
			yield, err := d.Yield(g.Start())
			require.NoError(t, err)
			assert.Equal(t, word, yield)
		})
	}
}

func TestParserLongRuleBodies(t *testing.T) {
	g, err := ParseGrammar("long", `
S → a S b S c | T
T → d | U U
U → e
`)
	require.NoError(t, err)
	parser := NewStochasticParser(g, nil)

	word := CharWord("adbadbeecc")
	d, err := parser.MostLikelyLeftmostDerivation(word)
	require.NoError(t, err)
	yield, err := d.Yield(g.Start())
	require.NoError(t, err)
	assert.Equal(t, word, yield)

	expected := 0.0
	for _, r := range d.Rules {
		expected += math.Log(1 / float64(len(g.RulesFor(r.Left))))
	}
	assert.InDelta(t, expected, d.LogProb, 1e-9)
}

func TestParserZeroProbabilityRules(t *testing.T) {
	g, err := ParseGrammar("zero", `
S → a | b
`)
	require.NoError(t, err)
	parser := NewStochasticParser(g, weightsFunc(func(r *Rule) float64 {
		if r.String() == "S → b" {
			return 0
		}
		return 1
	}))
	assert.True(t, parser.Parsable(CharWord("a")))
	assert.False(t, parser.Parsable(CharWord("b")))
}

func TestDerivationYieldErrors(t *testing.T) {
	g := LiuGrammar()
	sl, _ := g.Lookup("S → L")
	lp, _ := g.Lookup("L → <A|(> S <U|)>")
	lu, _ := g.Lookup("L → <A|.>")

	_, err := Derivation{Rules: []*Rule{sl}}.Yield(g.Start())
	assert.Error(t, err)
	_, err = Derivation{Rules: []*Rule{lu}}.Yield(g.Start())
	assert.Error(t, err)
	_, err = Derivation{Rules: []*Rule{sl, lu, lu}}.Yield(g.Start())
	assert.Error(t, err)

	word, err := Derivation{Rules: []*Rule{sl, lp, sl, lu}}.Yield(g.Start())
	require.NoError(t, err)
	rna, err := RNAFromTerminals(word)
	require.NoError(t, err)
	assert.Equal(t, MustRNA("AAU", "(.)"), rna)
}

type weightsFunc func(r *Rule) float64

func (f weightsFunc) Probability(r *Rule) float64 {
	return f(r)
}
