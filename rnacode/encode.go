package rnacode

import (
	"fmt"
	"log/slog"
	"math"
)

// Encoder codes RNA molecules as the leftmost derivation under a grammar, one
// arithmetic coding step per rule
type Encoder struct {
	model  RuleProbModel
	cfg    Config
	logger *slog.Logger
}

// NewEncoder creates an encoder. The model is consumed by encoding: adaptive
// models must be reset or recreated before the matching decode.
func NewEncoder(model RuleProbModel, cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{model: model, cfg: cfg, logger: cfg.logger()}, nil
}

// LeftmostDerivationFor parses rna with the model's current probabilities
func (e *Encoder) LeftmostDerivationFor(rna RNA) (Derivation, error) {
	return NewStochasticParser(e.model.Grammar(), e.model).ParseRNA(rna)
}

// EncodeRNA parses rna and encodes its most likely derivation
func (e *Encoder) EncodeRNA(rna RNA) (Bits, error) {
	d, err := e.LeftmostDerivationFor(rna)
	if err != nil {
		return Bits{}, err
	}
	return e.EncodeDerivation(d)
}

// EncodeDerivation encodes a leftmost derivation rule by rule
func (e *Encoder) EncodeDerivation(d Derivation) (Bits, error) {
	ae, err := NewArithmeticEncoder(e.cfg)
	if err != nil {
		return Bits{}, err
	}

	for step, r := range d.Rules {
		options, err := e.model.IntervalsFor(r.Left)
		if err != nil {
			return Bits{}, fmt.Errorf("step %d: %w", step, err)
		}
		chosen, err := e.model.IntervalFor(r)
		if err != nil {
			return Bits{}, fmt.Errorf("step %d: %w", step, err)
		}
		if err := ae.EncodeNext(options, chosen); err != nil {
			return Bits{}, fmt.Errorf("step %d (%s): %w", step, r, err)
		}
		if err := e.model.RecordUse(r); err != nil {
			return Bits{}, fmt.Errorf("step %d: %w", step, err)
		}
	}

	code, err := ae.Finish()
	if err != nil {
		return Bits{}, err
	}
	e.logger.Debug("encoded derivation",
		"grammar", e.model.Grammar().Name(),
		"model", e.model.Kind().String(),
		"backend", e.cfg.Backend.String(),
		"steps", len(d.Rules),
		"bits", code.Len(),
		"bound", boundOf(d))
	return code, nil
}

// CodeLength returns the number of bits EncodeRNA would produce
func (e *Encoder) CodeLength(rna RNA) (int, error) {
	code, err := e.EncodeRNA(rna)
	if err != nil {
		return 0, err
	}
	return code.Len(), nil
}

func boundOf(d Derivation) float64 {
	b := d.Bits()
	if math.IsInf(b, 0) || math.IsNaN(b) {
		return -1
	}
	return math.Round(b*100) / 100
}
