package rnacode

import (
	"math/bits"
)

// RangeDecoder mirrors RangeEncoder. It tracks the distance between the code
// value and low rather than low itself, so carries never reach it. Bits past the
// end of the code read as zero; since the encoder terminated on a whole block,
// the decoder checks that the largest code value those unknown bits could stand
// for selects the same symbol.
type RangeDecoder struct {
	value     uint64 // code - low
	rng       uint64
	scaleBits uint
	tables    *tableCache
	reader    *BitReader
	steps     int
}

// NewRangeDecoder creates a decoder for a code word produced with the same scale
func NewRangeDecoder(code Bits, scale uint32) (*RangeDecoder, error) {
	if err := validateScale(scale); err != nil {
		return nil, err
	}
	d := &RangeDecoder{
		rng:       stateTop,
		scaleBits: uint(bits.TrailingZeros32(scale)),
		tables:    newTableCache(scale),
		reader:    NewBitReader(code),
	}
	d.value = uint64(d.reader.Read(stateBits))
	return d, nil
}

// DecodeNext returns the option selected by the code
func (d *RangeDecoder) DecodeNext(options []Interval) (Interval, error) {
	t, err := d.tables.get(options)
	if err != nil {
		return Interval{}, err
	}
	i, err := d.decodeSymbol(t)
	if err != nil {
		return Interval{}, err
	}
	d.steps++
	return options[i], nil
}

func (d *RangeDecoder) decodeSymbol(t *FrequencyTable) (int, error) {
	// the low bits of value that came from beyond the code are unknown
	unknown := d.reader.Overrun()
	if unknown > stateBits+1 {
		unknown = stateBits + 1
	}
	valueHi := d.value + (uint64(1)<<uint(unknown) - 1)
	if valueHi >= d.rng {
		return -1, errorf(CodeDecodeExhausted, "code ends before step %d is determined", d.steps)
	}

	r := d.rng >> d.scaleBits
	i := d.symbolAt(t, d.value/r)
	if d.symbolAt(t, valueHi/r) != i {
		return -1, errorf(CodeDecodeExhausted, "code ends before step %d is determined", d.steps)
	}

	cumLow := uint64(t.Low(i))
	d.value -= r * cumLow
	if i == t.Len()-1 {
		d.rng -= r * cumLow
	} else {
		d.rng = r * uint64(t.Frequency(i))
	}

	for d.rng <= stateHalf {
		d.value = d.value<<1 | uint64(d.reader.ReadBit())
		d.rng <<= 1
	}
	return i, nil
}

func (d *RangeDecoder) symbolAt(t *FrequencyTable, target uint64) int {
	if target >= uint64(t.Total()) {
		target = uint64(t.Total()) - 1
	}
	return t.Symbol(uint32(target))
}
