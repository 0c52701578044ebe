package rnacode

// BitWriter collects a bit string most significant bit first. Pending bits are
// kept in a 64-bit register so that Carry can add one to everything written so far.
type BitWriter struct {
	dataBuffer   []byte
	fillRegister uint64
	currentBit   uint32
	bitLen       int
}

// NewBitWriter creates a new BitWriter with the given initial buffer capacity
func NewBitWriter(initialCapacity int) *BitWriter {
	return &BitWriter{
		dataBuffer: make([]byte, 0, initialCapacity),
		currentBit: 64,
	}
}

// Write writes the low numBits bits of val
func (w *BitWriter) Write(val uint32, numBits uint32) {
	if numBits == 0 {
		return
	}
	val &= (1 << numBits) - 1
	w.bitLen += int(numBits)

	if numBits <= w.currentBit {
		w.fillRegister |= uint64(val) << (w.currentBit - numBits)
		w.currentBit -= numBits
		return
	}

	// Fill up the register to 64 bits and flush
	leftoverNewBits := numBits - w.currentBit
	fill := w.fillRegister | uint64(val)>>leftoverNewBits
	w.writeRegister(fill)

	leftoverVal := val & ((1 << leftoverNewBits) - 1)
	w.fillRegister = uint64(leftoverVal) << (64 - leftoverNewBits)
	w.currentBit = 64 - leftoverNewBits
}

// WriteBit writes a single bit
func (w *BitWriter) WriteBit(bit bool) {
	if bit {
		w.Write(1, 1)
	} else {
		w.Write(0, 1)
	}
}

// Carry adds one at the position of the last written bit, propagating into
// earlier bits. The bits written so far must not all be ones.
func (w *BitWriter) Carry() {
	if w.currentBit < 64 {
		sum := w.fillRegister + uint64(1)<<w.currentBit
		if sum != 0 {
			w.fillRegister = sum
			return
		}
		// every pending bit was a one
		w.fillRegister = 0
	}

	x := len(w.dataBuffer) - 1
	for x >= 0 && w.dataBuffer[x] == 0xFF {
		w.dataBuffer[x] = 0
		x--
	}
	if x < 0 {
		panic("carry out of the most significant bit")
	}
	w.dataBuffer[x]++
}

func (w *BitWriter) writeRegister(fill uint64) {
	for i := 0; i < 8; i++ {
		w.dataBuffer = append(w.dataBuffer, byte(fill>>(56-(i*8))))
	}
}

// flushWholeBytes flushes complete bytes from the register to the buffer
func (w *BitWriter) flushWholeBytes() {
	for w.currentBit <= 56 {
		w.dataBuffer = append(w.dataBuffer, byte(w.fillRegister>>56))
		w.fillRegister <<= 8
		w.currentBit += 8
	}
}

// BitLen returns the number of bits written
func (w *BitWriter) BitLen() int {
	return w.bitLen
}

// DetachBits returns the written bits and resets the writer
func (w *BitWriter) DetachBits() Bits {
	w.flushWholeBytes()
	data := w.dataBuffer
	if w.currentBit < 64 {
		data = append(data, byte(w.fillRegister>>56))
	}
	result := Bits{data: data, n: w.bitLen}

	w.dataBuffer = nil
	w.fillRegister = 0
	w.currentBit = 64
	w.bitLen = 0
	return result
}
