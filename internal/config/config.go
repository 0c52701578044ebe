// Package config loads the YAML settings shared by the rnacode commands.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/leijurv/rna_grammar_go/internal/logging"
	"github.com/leijurv/rna_grammar_go/rnacode"
)

// Environment variables that override the file
const (
	EnvBackend  = "RNACODE_BACKEND"
	EnvModel    = "RNACODE_MODEL"
	EnvScale    = "RNACODE_SCALE"
	EnvLogLevel = "RNACODE_LOG_LEVEL"
)

type Config struct {
	Grammar struct {
		Name  string `yaml:"name"`
		Rules string `yaml:"rules"` // empty selects the Liu grammar
		// SecondaryStructure expands rules written over ( ) and . into RNA rules
		SecondaryStructure bool `yaml:"secondary_structure"`
	} `yaml:"grammar"`
	Model         string `yaml:"model"`
	Backend       string `yaml:"backend"`
	Scale         uint32 `yaml:"scale"`
	Probabilities string `yaml:"probabilities"` // path of a probability table
	Log           struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the Liu grammar with a static model on the integer backend
func Default() *Config {
	var cfg Config
	cfg.Grammar.Name = "Liu"
	cfg.Grammar.SecondaryStructure = true
	cfg.Model = rnacode.ModelStatic.String()
	cfg.Backend = rnacode.BackendInteger.String()
	cfg.Scale = rnacode.DefaultScale
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// LoadConfig reads path over the defaults; an empty path reads nothing. The
// environment is applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if backend := os.Getenv(EnvBackend); backend != "" {
		cfg.Backend = backend
	}
	if model := os.Getenv(EnvModel); model != "" {
		cfg.Model = model
	}
	if scale := os.Getenv(EnvScale); scale != "" {
		v, err := strconv.ParseUint(scale, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvScale, err)
		}
		cfg.Scale = uint32(v)
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the names of the model, backend and log settings
func (c *Config) Validate() error {
	if _, err := rnacode.ParseModelKind(c.Model); err != nil {
		return err
	}
	if _, err := c.CodingConfig(nil); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// ModelKind returns the configured model kind
func (c *Config) ModelKind() rnacode.ModelKind {
	kind, _ := rnacode.ParseModelKind(c.Model)
	return kind
}

// CodingConfig returns the coder settings, logging to logger
func (c *Config) CodingConfig(logger *slog.Logger) (rnacode.Config, error) {
	backend, err := rnacode.ParseBackend(c.Backend)
	if err != nil {
		return rnacode.Config{}, err
	}
	cfg := rnacode.Config{Backend: backend, Scale: c.Scale, Logger: logger}
	if err := cfg.Validate(); err != nil {
		return rnacode.Config{}, err
	}
	return cfg, nil
}

// Logger builds the configured logger
func (c *Config) Logger() *slog.Logger {
	level, _ := logging.ParseLevel(c.Log.Level)
	format := logging.FormatText
	if c.Log.Format == "json" {
		format = logging.FormatJSON
	}
	return logging.New(logging.Config{Level: level, Format: format})
}

// BuildGrammar parses the configured grammar
func (c *Config) BuildGrammar() (*rnacode.Grammar, error) {
	if c.Grammar.Rules == "" {
		return rnacode.LiuGrammar(), nil
	}
	name := c.Grammar.Name
	if name == "" {
		name = "custom"
	}
	g, err := rnacode.ParseGrammar(name, c.Grammar.Rules)
	if err != nil {
		return nil, err
	}
	if c.Grammar.SecondaryStructure {
		return rnacode.ExpandSecondaryStructure(g)
	}
	return g, nil
}

// ProbabilityTable loads the configured table. Without a table file the Liu
// grammar uses its published probabilities and other grammars are uniform.
func (c *Config) ProbabilityTable(g *rnacode.Grammar) (rnacode.ProbabilityTable, error) {
	if c.Probabilities != "" {
		f, err := os.Open(c.Probabilities)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadProbabilityTable(f)
	}
	if c.Grammar.Rules == "" {
		return rnacode.LiuRuleProbabilities(), nil
	}
	return rnacode.UniformProbabilities(g), nil
}

// Session assembles a coding session from the configuration
func (c *Config) Session(logger *slog.Logger) (rnacode.Session, error) {
	g, err := c.BuildGrammar()
	if err != nil {
		return rnacode.Session{}, err
	}
	coding, err := c.CodingConfig(logger)
	if err != nil {
		return rnacode.Session{}, err
	}
	s := rnacode.Session{Grammar: g, Model: c.ModelKind(), Config: coding}
	if s.Model == rnacode.ModelStatic {
		if s.Table, err = c.ProbabilityTable(g); err != nil {
			return rnacode.Session{}, err
		}
	}
	return s, nil
}

// LoadProbabilityTable reads a YAML map from rule spelling to probability
func LoadProbabilityTable(r io.Reader) (rnacode.ProbabilityTable, error) {
	var table rnacode.ProbabilityTable
	if err := yaml.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to parse probability table: %w", err)
	}
	return table, nil
}

// SaveProbabilityTable writes table in the grammar's rule order
func SaveProbabilityTable(w io.Writer, g *rnacode.Grammar, table rnacode.ProbabilityTable) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, r := range g.Rules() {
		p, ok := table[r.String()]
		if !ok {
			return fmt.Errorf("no probability for %s", r)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: r.String(), Style: yaml.DoubleQuotedStyle},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(p, 'g', -1, 64)},
		)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
