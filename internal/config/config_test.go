package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leijurv/rna_grammar_go/rnacode"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, rnacode.ModelStatic, cfg.ModelKind())

	coding, err := cfg.CodingConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, rnacode.BackendInteger, coding.Backend)
	assert.Equal(t, uint32(rnacode.DefaultScale), coding.Scale)

	s, err := cfg.Session(nil)
	require.NoError(t, err)
	assert.Equal(t, "Liu", s.Grammar.Name())
	assert.Equal(t, rnacode.LiuRuleProbabilities(), s.Table)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "rnacode.yaml", `
grammar:
  name: hairpins
  rules: |
    S → ( S ) | L
    L → . L | .
  secondary_structure: true
model: adaptive
backend: exact
log:
  level: debug
  format: json
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, rnacode.ModelAdaptive, cfg.ModelKind())
	assert.Equal(t, "json", cfg.Log.Format)

	g, err := cfg.BuildGrammar()
	require.NoError(t, err)
	assert.Equal(t, "hairpins", g.Name())
	assert.Equal(t, 6+1+4+4, g.NumRules())

	s, err := cfg.Session(nil)
	require.NoError(t, err)
	assert.Equal(t, rnacode.BackendExact, s.Config.Backend)
	assert.Nil(t, s.Table)

	rna := rnacode.MustRNA("GAAAC", "(...)")
	var buf bytes.Buffer
	_, err = s.EncodeToContainer(&buf, rna)
	require.NoError(t, err)
	decoded, err := s.DecodeContainer(&buf)
	require.NoError(t, err)
	assert.Equal(t, rna, decoded)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv(EnvBackend, "exact")
	t.Setenv(EnvModel, "semi-adaptive")
	t.Setenv(EnvLogLevel, "warn")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "exact", cfg.Backend)
	assert.Equal(t, rnacode.ModelSemiAdaptive, cfg.ModelKind())
	assert.Equal(t, "warn", cfg.Log.Level)

	t.Setenv(EnvScale, "1024")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, uint32(1024), cfg.Scale)
}

func TestLoadConfigInvalid(t *testing.T) {
	testCases := map[string]string{
		"backend": "backend: float\n",
		"model":   "model: dynamic\n",
		"scale":   "scale: 1000\n",
		"level":   "log:\n  level: loud\n",
		"format":  "log:\n  format: xml\n",
		"syntax":  "model: [\n",
	}
	for name, content := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "bad.yaml", content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestProbabilityTableRoundTrip(t *testing.T) {
	g := rnacode.LiuGrammar()
	table := rnacode.LiuRuleProbabilities()

	var buf bytes.Buffer
	require.NoError(t, SaveProbabilityTable(&buf, g, table))

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	mapping := doc.Content[0]
	require.Len(t, mapping.Content, 2*g.NumRules())
	for i, r := range g.Rules() {
		assert.Equal(t, r.String(), mapping.Content[2*i].Value)
	}

	loaded, err := LoadProbabilityTable(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, table, loaded)

	delete(table, "S → L")
	assert.Error(t, SaveProbabilityTable(&buf, g, table))
}

func TestProbabilityTableFile(t *testing.T) {
	g := rnacode.LiuGrammar()
	var buf bytes.Buffer
	require.NoError(t, SaveProbabilityTable(&buf, g, rnacode.UniformProbabilities(g)))
	path := writeFile(t, "table.yaml", buf.String())

	cfg := Default()
	cfg.Probabilities = path
	table, err := cfg.ProbabilityTable(g)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, table["L → <A|.>"], 1e-12)
}
