package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leijurv/rna_grammar_go/rnacode"
)

const dataset = `# two hairpins
>hairpin
GGGAAACCC
(((...)))

agcgaaugca
.(((..))).
>single
G
.
`

func TestReadRecords(t *testing.T) {
	records, err := ReadRecords(strings.NewReader(dataset))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "hairpin", records[0].Name)
	assert.Equal(t, rnacode.MustRNA("GGGAAACCC", "(((...)))"), records[0].RNA)
	assert.Equal(t, "record2", records[1].Name)
	assert.Equal(t, "AGCGAAUGCA", records[1].RNA.Primary)
	assert.Equal(t, "single", records[2].Name)

	var buf bytes.Buffer
	for _, rec := range records {
		require.NoError(t, WriteRecord(&buf, rec))
	}
	again, err := ReadRecords(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestReadRecordsErrors(t *testing.T) {
	testCases := map[string]string{
		"missing structure":       ">a\nGGG\n",
		"header before structure": ">a\nGGG\n>b\nCCC\n...\n",
		"length mismatch":         ">a\nGGG\n((.))\n",
		"bad base":                ">a\nGTG\n...\n",
	}
	for name, input := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadRecords(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
