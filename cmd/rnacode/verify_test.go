package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leijurv/rna_grammar_go/internal/logging"
	"github.com/leijurv/rna_grammar_go/rnacode"
)

func TestVerifyAll(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(dataset))
	require.NoError(t, err)
	records = append(records, Record{Name: "mispaired", RNA: rnacode.MustRNA("GA", "()")})

	for _, kind := range []rnacode.ModelKind{rnacode.ModelStatic, rnacode.ModelAdaptive, rnacode.ModelSemiAdaptive} {
		t.Run(kind.String(), func(t *testing.T) {
			s := rnacode.Session{
				Grammar: rnacode.LiuGrammar(),
				Model:   kind,
				Table:   rnacode.LiuRuleProbabilities(),
				Config:  rnacode.DefaultConfig(),
			}
			results, err := verifyAll(context.Background(), s, records, 2, logging.Discard())
			require.NoError(t, err)
			require.Len(t, results, len(records))

			for _, r := range results[:3] {
				assert.True(t, r.ok(), "%s: %v", r.name, r.err)
				assert.Positive(t, r.bits)
			}
			assert.ErrorIs(t, results[3].err, rnacode.ErrUnparsable)

			summary := summarize(results)
			assert.Equal(t, 3, summary.passed)
			assert.Equal(t, 1, summary.failed)
			assert.Equal(t, 9+10+1, summary.bases)
			assert.Positive(t, summary.bitsPerBase())
		})
	}
}

func TestVerifyAllCancelled(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(dataset))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := rnacode.Session{Grammar: rnacode.LiuGrammar(), Model: rnacode.ModelAdaptive, Config: rnacode.DefaultConfig()}
	_, err = verifyAll(ctx, s, records, 1, logging.Discard())
	assert.ErrorIs(t, err, context.Canceled)
}
