package rnacode

import (
	"log/slog"
	"math/bits"
	"strings"
)

// Backend selects the arithmetic coder
type Backend uint8

const (
	// BackendExact codes with exact rational intervals
	BackendExact Backend = iota
	// BackendInteger codes with integer frequency tables and a range coder
	BackendInteger
)

func (b Backend) String() string {
	switch b {
	case BackendExact:
		return "exact"
	case BackendInteger:
		return "integer"
	default:
		return "unknown"
	}
}

// ParseBackend parses the names returned by Backend.String
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return BackendExact, nil
	case "integer":
		return BackendInteger, nil
	}
	return 0, errorf(CodeAssertionFailure, "unknown backend %q", s)
}

// ArithmeticEncoder narrows its state by one option per step
type ArithmeticEncoder interface {
	EncodeNext(options []Interval, chosen Interval) error
	Finish() (Bits, error)
}

// ArithmeticDecoder selects one option per step from the code
type ArithmeticDecoder interface {
	DecodeNext(options []Interval) (Interval, error)
}

// Config is threaded into every encoder and decoder
type Config struct {
	Backend Backend

	// Scale is the frequency table total of the integer backend, a power of two
	Scale uint32

	// Logger receives one debug record per session; nil discards
	Logger *slog.Logger
}

// DefaultConfig returns the integer backend at DefaultScale
func DefaultConfig() Config {
	return Config{
		Backend: BackendInteger,
		Scale:   DefaultScale,
	}
}

// Validate checks the backend and scale
func (c Config) Validate() error {
	switch c.Backend {
	case BackendExact, BackendInteger:
	default:
		return errorf(CodeAssertionFailure, "unknown backend %d", c.Backend)
	}
	if c.Backend == BackendInteger {
		return validateScale(c.Scale)
	}
	return nil
}

func validateScale(scale uint32) error {
	if scale < 2 || scale&(scale-1) != 0 || bits.TrailingZeros32(scale) > MaxScaleBits {
		return errorf(CodeAssertionFailure, "scale %d is not a power of two between 2 and 2^%d",
			scale, MaxScaleBits)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// NewArithmeticEncoder creates the encoder selected by cfg
func NewArithmeticEncoder(cfg Config) (ArithmeticEncoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendExact {
		return NewExactEncoder(), nil
	}
	e, err := NewRangeEncoder(cfg.Scale)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// NewArithmeticDecoder creates the decoder selected by cfg
func NewArithmeticDecoder(cfg Config, code Bits) (ArithmeticDecoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == BackendExact {
		return NewExactDecoder(code), nil
	}
	d, err := NewRangeDecoder(code, cfg.Scale)
	if err != nil {
		return nil, err
	}
	return d, nil
}
