package rnacode

// BitReader reads a bit string most significant bit first. Reading past the end
// yields zeros and is counted, so decoders can tell a clean finish from a
// truncated input.
type BitReader struct {
	bits    Bits
	pos     int
	overrun int
}

// NewBitReader creates a new BitReader
func NewBitReader(bits Bits) *BitReader {
	return &BitReader{bits: bits}
}

// ReadBit reads one bit
func (r *BitReader) ReadBit() uint32 {
	if r.pos >= r.bits.Len() {
		// In case of a truncated code, treat the rest as zeros
		r.overrun++
		r.pos++
		return 0
	}
	bit := uint32(r.bits.Bit(r.pos))
	r.pos++
	return bit
}

// Read reads numBits bits, most significant first
func (r *BitReader) Read(numBits uint32) uint32 {
	var v uint32
	for i := uint32(0); i < numBits; i++ {
		v = v<<1 | r.ReadBit()
	}
	return v
}

// Overrun returns how many bits were read past the end
func (r *BitReader) Overrun() int {
	return r.overrun
}
