package rnacode

import (
	"math/big"
	"sort"
)

// ExactEncoder is an arithmetic encoder over exact rationals. The current
// interval only narrows, so nothing is emitted until Finish.
type ExactEncoder struct {
	current Interval
	steps   int
}

// NewExactEncoder creates an encoder positioned on [0,1)
func NewExactEncoder() *ExactEncoder {
	return &ExactEncoder{current: UnitInterval()}
}

// EncodeNext narrows the current interval to chosen, read relative to it
func (e *ExactEncoder) EncodeNext(options []Interval, chosen Interval) error {
	if _, err := indexOf(options, chosen); err != nil {
		return err
	}
	e.current = e.current.Narrow(chosen)
	e.steps++
	return nil
}

// Interval returns the current interval
func (e *ExactEncoder) Interval() Interval {
	return e.current
}

// Finish returns the shortest code word whose whole dyadic block lies in the
// current interval, so every continuation of the code decodes the same way.
func (e *ExactEncoder) Finish() (Bits, error) {
	return shortestBlock(e.current)
}

// shortestBlock returns m as k bits for the smallest k such that
// [m/2^k, (m+1)/2^k) ⊆ iv
func shortestBlock(iv Interval) (Bits, error) {
	w := iv.Width()
	// 2^-k ≤ w requires k ≥ log2(den/num) > den.BitLen() - num.BitLen() - 1
	k := w.Denom().BitLen() - w.Num().BitLen() - 1
	if k < 0 {
		k = 0
	}
	lo, hi := iv.lo, iv.hi
	for ; ; k++ {
		pow := new(big.Int).Lsh(big.NewInt(1), uint(k))
		// m = ceil(lo * 2^k)
		num := new(big.Int).Mul(lo.Num(), pow)
		m, rem := new(big.Int).QuoRem(num, lo.Denom(), new(big.Int))
		if rem.Sign() != 0 {
			m.Add(m, big.NewInt(1))
		}
		// (m+1)/2^k ≤ hi  ⇔  (m+1) * hi.den ≤ hi.num * 2^k
		left := new(big.Int).Add(m, big.NewInt(1))
		left.Mul(left, hi.Denom())
		right := new(big.Int).Mul(hi.Num(), pow)
		if left.Cmp(right) <= 0 {
			return bitsFromInt(m, k), nil
		}
		if k > 1<<24 {
			return Bits{}, errorf(CodeAssertionFailure, "no code word found for %s", iv)
		}
	}
}

// ExactDecoder mirrors ExactEncoder. The code word names the block
// [point, point + 2^-n); every decoding step must find that block inside a
// single option, otherwise the code is too short for the derivation.
type ExactDecoder struct {
	point   *big.Rat
	blockHi *big.Rat
	current Interval
	steps   int
}

// NewExactDecoder creates a decoder for a code word
func NewExactDecoder(code Bits) *ExactDecoder {
	point := BinaryToRat(code)
	ulp := new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), uint(code.Len())))
	return &ExactDecoder{
		point:   point,
		blockHi: new(big.Rat).Add(point, ulp),
		current: UnitInterval(),
	}
}

// DecodeNext returns the option selected by the code word and narrows to it
func (d *ExactDecoder) DecodeNext(options []Interval) (Interval, error) {
	if len(options) == 0 {
		return Interval{}, errorf(CodeDegenerateDistribution, "no options")
	}
	w := d.current.Width()
	t := new(big.Rat).Sub(d.point, d.current.lo)
	t.Quo(t, w)
	tHi := new(big.Rat).Sub(d.blockHi, d.current.lo)
	tHi.Quo(tHi, w)

	i := sort.Search(len(options), func(i int) bool {
		return options[i].hi.Cmp(t) > 0
	})
	if i == len(options) || !options[i].Contains(t) {
		return Interval{}, errorf(CodeDecodeExhausted, "code word lies outside the options at step %d", d.steps)
	}
	if tHi.Cmp(options[i].hi) > 0 {
		return Interval{}, errorf(CodeDecodeExhausted, "code word ends before step %d is determined", d.steps)
	}
	d.current = d.current.Narrow(options[i])
	d.steps++
	return options[i], nil
}
