package rnacode

import (
	"math/big"
	"strconv"
)

var (
	ratZero = big.NewRat(0, 1)
	ratOne  = big.NewRat(1, 1)
)

// Interval is a half-open range [lo, hi) with 0 ≤ lo < hi ≤ 1 and exact
// rational bounds. Intervals are immutable; accessors return copies.
type Interval struct {
	lo, hi *big.Rat
}

// NewInterval creates [lo, hi)
func NewInterval(lo, hi *big.Rat) (Interval, error) {
	if lo.Cmp(ratZero) < 0 || hi.Cmp(ratOne) > 0 || lo.Cmp(hi) >= 0 {
		return Interval{}, errorf(CodeDegenerateDistribution, "invalid interval [%s, %s)",
			lo.RatString(), hi.RatString())
	}
	return Interval{lo: new(big.Rat).Set(lo), hi: new(big.Rat).Set(hi)}, nil
}

// MustInterval creates [lo, hi) from fractions given as strings such as "1/3" or "0.25"
func MustInterval(lo, hi string) Interval {
	l, ok := new(big.Rat).SetString(lo)
	if !ok {
		panic("invalid rational " + lo)
	}
	h, ok := new(big.Rat).SetString(hi)
	if !ok {
		panic("invalid rational " + hi)
	}
	iv, err := NewInterval(l, h)
	if err != nil {
		panic(err)
	}
	return iv
}

// UnitInterval returns [0, 1)
func UnitInterval() Interval {
	return Interval{lo: new(big.Rat), hi: big.NewRat(1, 1)}
}

// Lower returns the inclusive lower bound
func (iv Interval) Lower() *big.Rat {
	return new(big.Rat).Set(iv.lo)
}

// Upper returns the exclusive upper bound
func (iv Interval) Upper() *big.Rat {
	return new(big.Rat).Set(iv.hi)
}

// Width returns hi - lo
func (iv Interval) Width() *big.Rat {
	return new(big.Rat).Sub(iv.hi, iv.lo)
}

// Contains reports whether lo ≤ x < hi
func (iv Interval) Contains(x *big.Rat) bool {
	return iv.lo.Cmp(x) <= 0 && x.Cmp(iv.hi) < 0
}

// ContainsInterval reports whether other lies entirely inside iv
func (iv Interval) ContainsInterval(other Interval) bool {
	return iv.lo.Cmp(other.lo) <= 0 && other.hi.Cmp(iv.hi) <= 0
}

// Equal compares both bounds exactly
func (iv Interval) Equal(other Interval) bool {
	return iv.lo.Cmp(other.lo) == 0 && iv.hi.Cmp(other.hi) == 0
}

// Narrow maps inner, read relative to iv, to an absolute interval:
// [lo + inner.lo*(hi-lo), lo + inner.hi*(hi-lo))
func (iv Interval) Narrow(inner Interval) Interval {
	w := iv.Width()
	lo := new(big.Rat).Mul(inner.lo, w)
	lo.Add(lo, iv.lo)
	hi := new(big.Rat).Mul(inner.hi, w)
	hi.Add(hi, iv.lo)
	return Interval{lo: lo, hi: hi}
}

func (iv Interval) String() string {
	return "[" + iv.lo.RatString() + ", " + iv.hi.RatString() + ")"
}

// partition splits [0,1) into consecutive intervals proportional to weights.
// Every weight must be positive.
func partition(weights []*big.Rat) ([]Interval, error) {
	if len(weights) == 0 {
		return nil, errorf(CodeDegenerateDistribution, "no options to partition")
	}
	total := new(big.Rat)
	for i, w := range weights {
		if w.Sign() <= 0 {
			return nil, errorf(CodeDegenerateDistribution, "option %d has non-positive weight %s", i, w.RatString())
		}
		total.Add(total, w)
	}

	out := make([]Interval, len(weights))
	cum := new(big.Rat)
	lo := new(big.Rat)
	for i, w := range weights {
		cum.Add(cum, w)
		hi := new(big.Rat)
		if i == len(weights)-1 {
			hi.SetInt64(1)
		} else {
			hi.Quo(cum, total)
		}
		out[i] = Interval{lo: lo, hi: hi}
		lo = hi
	}
	return out, nil
}

// ValidatePartition checks that intervals are sorted, adjacent and cover [0,1) exactly
func ValidatePartition(intervals []Interval) error {
	if len(intervals) == 0 {
		return errorf(CodeDegenerateDistribution, "empty partition")
	}
	if intervals[0].lo.Sign() != 0 {
		return errorf(CodeDegenerateDistribution, "partition starts at %s", intervals[0].lo.RatString())
	}
	for i, iv := range intervals {
		if iv.lo.Cmp(iv.hi) >= 0 {
			return errorf(CodeDegenerateDistribution, "interval %d %s is empty", i, iv)
		}
		if i > 0 && intervals[i-1].hi.Cmp(iv.lo) != 0 {
			return errorf(CodeDegenerateDistribution, "gap or overlap between interval %d and %d", i-1, i)
		}
	}
	if last := intervals[len(intervals)-1]; last.hi.Cmp(ratOne) != 0 {
		return errorf(CodeDegenerateDistribution, "partition ends at %s", last.hi.RatString())
	}
	return nil
}

// ratFromProbability converts a probability to the rational with the same
// shortest decimal spelling, so 0.1 becomes exactly 1/10.
func ratFromProbability(p float64) (*big.Rat, bool) {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(p, 'g', -1, 64))
	return r, ok
}

// RatToBinary returns the k-bit binary expansion of x. It fails unless x lies
// in [0,1) and x*2^k is an integer.
func RatToBinary(x *big.Rat, k int) (Bits, error) {
	if x.Sign() < 0 || x.Cmp(ratOne) >= 0 {
		return Bits{}, errorf(CodeAssertionFailure, "%s is outside [0,1)", x.RatString())
	}
	scaled := new(big.Rat).Mul(x, new(big.Rat).SetInt(new(big.Int).Lsh(big.NewInt(1), uint(k))))
	if !scaled.IsInt() {
		return Bits{}, errorf(CodeAssertionFailure, "%s has no exact %d bit expansion", x.RatString(), k)
	}
	return bitsFromInt(scaled.Num(), k), nil
}

// BinaryToRat returns the value of the binary fraction 0.b1b2...bn
func BinaryToRat(b Bits) *big.Rat {
	m := new(big.Int).SetBytes(b.data)
	if pad := len(b.data)*8 - b.n; pad > 0 {
		m.Rsh(m, uint(pad))
	}
	return new(big.Rat).SetFrac(m, new(big.Int).Lsh(big.NewInt(1), uint(b.n)))
}

// bitsFromInt writes the low k bits of m, most significant first
func bitsFromInt(m *big.Int, k int) Bits {
	data := make([]byte, (k+7)/8)
	for i := 0; i < k; i++ {
		if m.Bit(k-1-i) != 0 {
			data[i/8] |= 0x80 >> (i % 8)
		}
	}
	return Bits{data: data, n: k}
}
