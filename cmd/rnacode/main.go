// Command rnacode compresses RNA secondary structures as grammar derivations.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/alecthomas/kong"

	"github.com/leijurv/rna_grammar_go/internal/config"
	"github.com/leijurv/rna_grammar_go/rnacode"
)

// Globals are the flags shared by every command
type Globals struct {
	Config   string `name:"config" short:"c" help:"YAML configuration file" type:"path"`
	LogLevel string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)"`
}

// CodingFlags override the configured coder
type CodingFlags struct {
	Backend string `help:"Arithmetic coder backend (exact, integer)"`
	Model   string `help:"Rule probability model (static, adaptive, semi-adaptive)"`
	Scale   uint32 `help:"Frequency total of the integer backend, a power of two"`
}

func (g *Globals) load(flags *CodingFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if flags != nil {
		if flags.Backend != "" {
			cfg.Backend = flags.Backend
		}
		if flags.Model != "" {
			cfg.Model = flags.Model
		}
		if flags.Scale != 0 {
			cfg.Scale = flags.Scale
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Logger(), nil
}

func (g *Globals) session(flags *CodingFlags) (rnacode.Session, *slog.Logger, error) {
	cfg, logger, err := g.load(flags)
	if err != nil {
		return rnacode.Session{}, nil, err
	}
	s, err := cfg.Session(logger)
	if err != nil {
		return rnacode.Session{}, nil, err
	}
	return s, logger, nil
}

func readRecordsFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f)
}

// EncodeCmd compresses one molecule into a container file
type EncodeCmd struct {
	CodingFlags `embed:""`

	Primary   string `help:"Primary sequence over ACGU"`
	Structure string `help:"Dot-bracket secondary structure"`
	Input     string `short:"i" help:"Dot-bracket file; its first record is encoded" type:"existingfile"`
	Out       string `short:"o" required:"" help:"Output container path" type:"path"`
}

func (c *EncodeCmd) Run(g *Globals) error {
	s, logger, err := g.session(&c.CodingFlags)
	if err != nil {
		return err
	}

	var rna rnacode.RNA
	if c.Input != "" {
		records, err := readRecordsFile(c.Input)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("%s holds no records", c.Input)
		}
		rna = records[0].RNA
	} else if rna, err = rnacode.NewRNA(c.Primary, c.Structure); err != nil {
		return err
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	container, err := s.EncodeToContainer(f, rna)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	logger.Info("encoded",
		"bases", rna.Len(),
		"bits", container.Code.Len(),
		"model", s.Model.String(),
		"backend", s.Config.Backend.String())
	return nil
}

// DecodeCmd restores a molecule from a container file
type DecodeCmd struct {
	Path string `arg:"" help:"Container file" type:"existingfile"`
	Name string `help:"Record name to print"`
}

func (c *DecodeCmd) Run(g *Globals) error {
	cfg, logger, err := g.load(nil)
	if err != nil {
		return err
	}
	s, err := cfg.Session(logger)
	if err != nil {
		return err
	}
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	container, err := rnacode.ReadContainer(f)
	if err != nil {
		return fmt.Errorf("failed to read container: %w", err)
	}
	if container.Model == rnacode.ModelStatic && s.Table == nil {
		if s.Table, err = cfg.ProbabilityTable(s.Grammar); err != nil {
			return err
		}
	}
	rna, err := s.Decode(container)
	if err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}
	return WriteRecord(os.Stdout, Record{Name: c.Name, RNA: rna})
}

// VerifyCmd round-trips every molecule of a dot-bracket file
type VerifyCmd struct {
	CodingFlags `embed:""`

	Path    string `arg:"" help:"Dot-bracket file" type:"existingfile"`
	Workers int    `short:"w" help:"Number of parallel workers (default: number of CPUs)"`
}

func (c *VerifyCmd) Run(g *Globals) error {
	s, logger, err := g.session(&c.CodingFlags)
	if err != nil {
		return err
	}
	records, err := readRecordsFile(c.Path)
	if err != nil {
		return err
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results, err := verifyAll(context.Background(), s, records, workers, logger)
	if err != nil {
		return err
	}
	for _, r := range results {
		if !r.ok() {
			fmt.Printf("FAIL %s: %v\n", r.name, r.err)
		}
	}
	summary := summarize(results)
	fmt.Printf("%d/%d molecules round-tripped (%s model, %s backend)\n",
		summary.passed, len(results), s.Model, s.Config.Backend)
	fmt.Printf("%d bits for %d bases (%.4f bits/base)\n",
		summary.bits, summary.bases, summary.bitsPerBase())
	if summary.failed > 0 {
		return fmt.Errorf("%d molecules failed", summary.failed)
	}
	return nil
}

// TrainCmd estimates a static probability table from a dot-bracket file
type TrainCmd struct {
	Path string `arg:"" help:"Dot-bracket training file" type:"existingfile"`
	Out  string `short:"o" help:"Output table path (default: stdout)" type:"path"`
}

func (c *TrainCmd) Run(g *Globals) error {
	cfg, logger, err := g.load(nil)
	if err != nil {
		return err
	}
	grammar, err := cfg.BuildGrammar()
	if err != nil {
		return err
	}
	records, err := readRecordsFile(c.Path)
	if err != nil {
		return err
	}
	dataset := make([]rnacode.RNA, len(records))
	for i, rec := range records {
		dataset[i] = rec.RNA
	}

	counts, err := rnacode.CountRules(grammar, nil, dataset)
	if err != nil {
		return err
	}
	table := rnacode.LaplaceProbabilities(grammar, counts)

	var w io.Writer = os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := config.SaveProbabilityTable(w, grammar, table); err != nil {
		return err
	}
	logger.Info("trained", "molecules", len(dataset), "rules", grammar.NumRules())
	return nil
}

var cli struct {
	Globals

	Encode EncodeCmd `cmd:"" help:"Compress a molecule into a container"`
	Decode DecodeCmd `cmd:"" help:"Decompress a container"`
	Verify VerifyCmd `cmd:"" help:"Round-trip every molecule of a dot-bracket file"`
	Train  TrainCmd  `cmd:"" help:"Estimate rule probabilities from a dot-bracket file"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("rnacode"),
		kong.Description("Grammar-based compression of RNA secondary structures"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
