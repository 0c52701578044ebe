package rnacode

import (
	"fmt"
	"log/slog"
)

// Decoder rebuilds molecules by growing a leftmost derivation from the start
// symbol, decoding one rule per step
type Decoder struct {
	model  RuleProbModel
	cfg    Config
	logger *slog.Logger

	// MaxSteps bounds the derivation length; zero means unbounded
	MaxSteps int
}

// NewDecoder creates a decoder. The model must be in the state the encoder's
// model was in before encoding.
func NewDecoder(model RuleProbModel, cfg Config) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{model: model, cfg: cfg, logger: cfg.logger()}, nil
}

// DecodeWord decodes the derived terminal word and the derivation producing it
func (d *Decoder) DecodeWord(code Bits) ([]Terminal, Derivation, error) {
	ad, err := NewArithmeticDecoder(d.cfg, code)
	if err != nil {
		return nil, Derivation{}, err
	}

	var derivation Derivation
	sf := newSententialForm(d.model.Grammar().Start())
	for step := 0; ; step++ {
		nt, ok := sf.leftmost()
		if !ok {
			break
		}
		if d.MaxSteps > 0 && step >= d.MaxSteps {
			return nil, Derivation{}, errorf(CodeDecodeExhausted, "derivation exceeds %d steps", d.MaxSteps)
		}

		options, err := d.model.IntervalsFor(nt)
		if err != nil {
			return nil, Derivation{}, fmt.Errorf("step %d: %w", step, err)
		}
		chosen, err := ad.DecodeNext(options)
		if err != nil {
			return nil, Derivation{}, fmt.Errorf("step %d (%s): %w", step, nt, err)
		}
		r, err := d.model.RuleFor(nt, chosen)
		if err != nil {
			return nil, Derivation{}, fmt.Errorf("step %d: %w", step, err)
		}
		sf.apply(r)
		if err := d.model.RecordUse(r); err != nil {
			return nil, Derivation{}, fmt.Errorf("step %d: %w", step, err)
		}
		derivation.Rules = append(derivation.Rules, r)
	}

	d.logger.Debug("decoded derivation",
		"grammar", d.model.Grammar().Name(),
		"model", d.model.Kind().String(),
		"backend", d.cfg.Backend.String(),
		"steps", len(derivation.Rules),
		"bits", code.Len())
	return sf.terminals, derivation, nil
}

// DecodeRNA decodes a molecule
func (d *Decoder) DecodeRNA(code Bits) (RNA, error) {
	word, _, err := d.DecodeWord(code)
	if err != nil {
		return RNA{}, err
	}
	return RNAFromTerminals(word)
}
