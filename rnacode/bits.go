package rnacode

import (
	"strings"
)

// Bits is an immutable bit string stored most significant bit first. Code words
// are not byte aligned, so the logical length travels with the bytes.
type Bits struct {
	data []byte
	n    int
}

// NewBits wraps the first n bits of data
func NewBits(data []byte, n int) (Bits, error) {
	if n < 0 || n > len(data)*8 {
		return Bits{}, errorf(CodeBadContainer, "bit length %d does not fit in %d bytes", n, len(data))
	}
	out := make([]byte, (n+7)/8)
	copy(out, data)
	if n%8 != 0 {
		out[len(out)-1] &= byte(0xFF << (8 - n%8))
	}
	return Bits{data: out, n: n}, nil
}

// ParseBits parses a string of '0' and '1' characters
func ParseBits(s string) (Bits, error) {
	data := make([]byte, (len(s)+7)/8)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			data[i/8] |= 0x80 >> (i % 8)
		default:
			return Bits{}, errorf(CodeBadContainer, "invalid bit %q at position %d", s[i], i)
		}
	}
	return Bits{data: data, n: len(s)}, nil
}

// MustParseBits is ParseBits that panics on malformed input
func MustParseBits(s string) Bits {
	b, err := ParseBits(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Len returns the number of bits
func (b Bits) Len() int {
	return b.n
}

// Bit returns bit i (0 or 1); bits past the end read as zero
func (b Bits) Bit(i int) uint8 {
	if i < 0 || i >= b.n {
		return 0
	}
	return (b.data[i/8] >> (7 - i%8)) & 1
}

// Bytes returns the bits zero padded to whole bytes
func (b Bits) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

// Equal compares bit strings including their length
func (b Bits) Equal(other Bits) bool {
	if b.n != other.n {
		return false
	}
	for i := range b.data {
		if b.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		sb.WriteByte('0' + b.Bit(i))
	}
	return sb.String()
}
