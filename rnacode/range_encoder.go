package rnacode

import (
	"math/bits"
)

// RangeEncoder is a carry-propagating binary range coder with a 32-bit state.
// Option intervals are reduced to a FrequencyTable whose total is the scale.
//
// Code layout: every time the range drops to half the state width or below,
// the top bit of low is emitted; a carry out of low adds one to the bits
// already emitted. Finish appends the shortest k bits (0 ≤ k ≤ 32) naming a
// block inside the final range.
type RangeEncoder struct {
	low       uint64
	rng       uint64
	scaleBits uint
	tables    *tableCache
	writer    *BitWriter
	steps     int
}

// NewRangeEncoder creates an encoder whose tables sum to scale, a power of two
// no larger than 2^MaxScaleBits
func NewRangeEncoder(scale uint32) (*RangeEncoder, error) {
	if err := validateScale(scale); err != nil {
		return nil, err
	}
	return &RangeEncoder{
		rng:       stateTop,
		scaleBits: uint(bits.TrailingZeros32(scale)),
		tables:    newTableCache(scale),
		writer:    NewBitWriter(64),
	}, nil
}

// EncodeNext codes the symbol of chosen within options
func (e *RangeEncoder) EncodeNext(options []Interval, chosen Interval) error {
	i, err := indexOf(options, chosen)
	if err != nil {
		return err
	}
	t, err := e.tables.get(options)
	if err != nil {
		return err
	}
	e.encodeSymbol(t, i)
	e.steps++
	return nil
}

func (e *RangeEncoder) encodeSymbol(t *FrequencyTable, i int) {
	r := e.rng >> e.scaleBits
	cumLow := uint64(t.Low(i))
	e.low += r * cumLow
	if i == t.Len()-1 {
		// the last symbol absorbs the rounding slack of the range
		e.rng -= r * cumLow
	} else {
		e.rng = r * uint64(t.Frequency(i))
	}

	if e.low >= stateTop {
		e.low -= stateTop
		e.writer.Carry()
	}
	for e.rng <= stateHalf {
		e.writer.WriteBit(e.low&stateHalf != 0)
		e.low = (e.low << 1) & stateMask
		e.rng <<= 1
	}
}

// Finish terminates the code and returns it
func (e *RangeEncoder) Finish() (Bits, error) {
	for k := uint(0); k <= stateBits; k++ {
		shift := stateBits - k
		unit := uint64(1) << shift
		m := (e.low + unit - 1) >> shift
		if (m+1)<<shift <= e.low+e.rng {
			v := m << shift
			if v >= stateTop {
				v -= stateTop
				e.writer.Carry()
			}
			e.writer.Write(uint32(v>>shift), uint32(k))
			return e.writer.DetachBits(), nil
		}
	}
	return Bits{}, errorf(CodeAssertionFailure, "range %d too small to terminate", e.rng)
}
