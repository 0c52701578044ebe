package rnacode

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rat(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic(s)
	}
	return r
}

func TestBinaryToRat(t *testing.T) {
	testCases := []struct {
		bits  string
		value string
	}{
		{"", "0"},
		{"1", "1/2"},
		{"010", "1/4"},
		{"01011", "0.34375"},
		{"111011", "59/64"},
	}
	for _, tc := range testCases {
		t.Run(tc.bits, func(t *testing.T) {
			b := MustParseBits(tc.bits)
			assert.Equal(t, 0, BinaryToRat(b).Cmp(rat(tc.value)))
			assert.Equal(t, tc.bits, b.String())
		})
	}
}

func TestRatToBinary(t *testing.T) {
	b, err := RatToBinary(rat("0.34375"), 5)
	require.NoError(t, err)
	assert.Equal(t, "01011", b.String())

	b, err = RatToBinary(rat("1/4"), 5)
	require.NoError(t, err)
	assert.Equal(t, "01000", b.String())

	_, err = RatToBinary(rat("0.34375"), 4)
	assert.Error(t, err)
	_, err = RatToBinary(rat("1"), 4)
	assert.Error(t, err)
}

func TestBits(t *testing.T) {
	b, err := NewBits([]byte{0xFF, 0xFF}, 10)
	require.NoError(t, err)
	assert.Equal(t, "1111111111", b.String())
	assert.Equal(t, []byte{0xFF, 0xC0}, b.Bytes())
	assert.Equal(t, uint8(0), b.Bit(10))

	_, err = NewBits([]byte{0xFF}, 9)
	assert.ErrorIs(t, err, ErrBadContainer)
	_, err = ParseBits("01x")
	assert.Error(t, err)

	assert.True(t, MustParseBits("0101").Equal(MustParseBits("0101")))
	assert.False(t, MustParseBits("0101").Equal(MustParseBits("01010")))
}

func TestIntervalNarrow(t *testing.T) {
	outer := MustInterval("0.66", "1")
	inner := MustInterval("0.739625", "0.841334")
	n := outer.Narrow(inner)
	assert.Equal(t, 0, n.Lower().Cmp(rat("0.9114725")))
	assert.Equal(t, 0, n.Upper().Cmp(rat("0.94605356")))
	assert.True(t, outer.ContainsInterval(n))
	assert.True(t, n.Contains(rat("59/64")))
	assert.False(t, n.Contains(n.Upper()))

	_, err := NewInterval(rat("1/2"), rat("1/2"))
	assert.ErrorIs(t, err, ErrDegenerateDistribution)
	_, err = NewInterval(rat("-1/2"), rat("1/2"))
	assert.ErrorIs(t, err, ErrDegenerateDistribution)
}

func TestPartition(t *testing.T) {
	ivs, err := partition([]*big.Rat{rat("1"), rat("2"), rat("1")})
	require.NoError(t, err)
	require.NoError(t, ValidatePartition(ivs))
	assert.True(t, ivs[0].Equal(MustInterval("0", "1/4")))
	assert.True(t, ivs[1].Equal(MustInterval("1/4", "3/4")))
	assert.True(t, ivs[2].Equal(MustInterval("3/4", "1")))

	_, err = partition([]*big.Rat{rat("1"), rat("0")})
	assert.ErrorIs(t, err, ErrDegenerateDistribution)
	_, err = partition(nil)
	assert.ErrorIs(t, err, ErrDegenerateDistribution)

	gap := []Interval{MustInterval("0", "1/4"), MustInterval("1/3", "1")}
	assert.Error(t, ValidatePartition(gap))
	short := []Interval{MustInterval("0", "1/4"), MustInterval("1/4", "1/2")}
	assert.Error(t, ValidatePartition(short))
}

func TestBitWriterCarry(t *testing.T) {
	w := NewBitWriter(0)
	w.Write(0x7, 4)
	w.Carry()
	assert.Equal(t, "1000", w.DetachBits().String())

	// the carry ripples through flushed bytes
	w.Write(0, 1)
	w.Write(0xFFFFFFFF, 32)
	w.Write(0xFFFFFFFF, 32)
	w.Carry()
	bits := w.DetachBits()
	require.Equal(t, 65, bits.Len())
	expected := "1"
	for i := 0; i < 64; i++ {
		expected += "0"
	}
	assert.Equal(t, expected, bits.String())

	w.Write(0xABC, 12)
	w.WriteBit(true)
	w.WriteBit(false)
	w.WriteBit(true)
	assert.Equal(t, "101010111100101", w.DetachBits().String())
}

func TestBitReader(t *testing.T) {
	r := NewBitReader(MustParseBits("1011"))
	assert.Equal(t, uint32(0b10), r.Read(2))
	assert.Equal(t, 0, r.Overrun())
	assert.Equal(t, uint32(0b1100), r.Read(4))
	assert.Equal(t, 2, r.Overrun())
}
