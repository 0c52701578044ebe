package rnacode

import (
	"math/big"
	"sort"
)

// FrequencyTable is the integer image of a partition. Encoder and decoder each
// rebuild it from the same intervals, so the construction below is part of the
// code format: frequencies are width/total*scale rounded half up with a floor of
// one, and the difference to scale is settled deterministically.
type FrequencyTable struct {
	freqs []uint32
	cum   []uint32 // cum[i] is the sum of freqs[:i]
	total uint32
}

// NewFrequencyTable builds a table summing to scale from the option intervals
func NewFrequencyTable(options []Interval, scale uint32) (*FrequencyTable, error) {
	if len(options) == 0 {
		return nil, errorf(CodeDegenerateDistribution, "no options")
	}
	if uint64(len(options)) > uint64(scale) {
		return nil, errorf(CodeDegenerateDistribution, "%d options do not fit a frequency total of %d",
			len(options), scale)
	}

	total := new(big.Rat)
	for _, iv := range options {
		total.Add(total, iv.Width())
	}
	if total.Sign() <= 0 {
		return nil, errorf(CodeDegenerateDistribution, "options have no mass")
	}

	freqs := make([]uint32, len(options))
	sum := int64(0)
	scaleRat := new(big.Rat).SetInt64(int64(scale))
	for i, iv := range options {
		x := new(big.Rat).Quo(iv.Width(), total)
		x.Mul(x, scaleRat)
		f := roundHalfUp(x)
		if f < 1 {
			f = 1
		}
		freqs[i] = uint32(f)
		sum += f
	}

	residual := int64(scale) - sum
	switch {
	case residual > 0:
		largest := 0
		for i, f := range freqs {
			if f > freqs[largest] {
				largest = i
			}
		}
		freqs[largest] += uint32(residual)
	case residual < 0:
		order := make([]int, len(freqs))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return freqs[order[a]] > freqs[order[b]]
		})
		for _, i := range order {
			if residual == 0 {
				break
			}
			take := int64(freqs[i]) - 1
			if take > -residual {
				take = -residual
			}
			freqs[i] -= uint32(take)
			residual += take
		}
		if residual != 0 {
			return nil, errorf(CodeAssertionFailure, "cannot settle frequency residual %d", residual)
		}
	}

	t := &FrequencyTable{
		freqs: freqs,
		cum:   make([]uint32, len(freqs)+1),
		total: scale,
	}
	for i, f := range freqs {
		t.cum[i+1] = t.cum[i] + f
	}
	return t, nil
}

// roundHalfUp returns floor(x + 1/2) for non-negative x
func roundHalfUp(x *big.Rat) int64 {
	num := new(big.Int).Mul(x.Num(), big.NewInt(2))
	num.Add(num, x.Denom())
	den := new(big.Int).Mul(x.Denom(), big.NewInt(2))
	return num.Quo(num, den).Int64()
}

// Len returns the number of symbols
func (t *FrequencyTable) Len() int {
	return len(t.freqs)
}

// Total returns the sum of all frequencies
func (t *FrequencyTable) Total() uint32 {
	return t.total
}

// Frequency returns the frequency of symbol i
func (t *FrequencyTable) Frequency(i int) uint32 {
	return t.freqs[i]
}

// Low returns the cumulative frequency of the symbols before i
func (t *FrequencyTable) Low(i int) uint32 {
	return t.cum[i]
}

// Frequencies returns a copy of all frequencies
func (t *FrequencyTable) Frequencies() []uint32 {
	return append([]uint32(nil), t.freqs...)
}

// Symbol returns the symbol whose cumulative range contains target
func (t *FrequencyTable) Symbol(target uint32) int {
	return sort.Search(len(t.freqs), func(i int) bool {
		return t.cum[i+1] > target
	})
}

// tableCache keeps tables for recently seen option slices. Models hand out the
// same slice until a nonterminal's weights change, but a caller may refill a
// slice in place, so a hit also requires the cached intervals to still match.
type tableCache struct {
	scale  uint32
	tables map[*Interval]cachedTable
}

type cachedTable struct {
	options []Interval
	table   *FrequencyTable
}

const tableCacheSize = 64

func newTableCache(scale uint32) *tableCache {
	return &tableCache{scale: scale, tables: make(map[*Interval]cachedTable)}
}

func (c *tableCache) get(options []Interval) (*FrequencyTable, error) {
	if len(options) == 0 {
		return nil, errorf(CodeDegenerateDistribution, "no options")
	}
	key := &options[0]
	if e, ok := c.tables[key]; ok && sameIntervals(e.options, options) {
		return e.table, nil
	}
	t, err := NewFrequencyTable(options, c.scale)
	if err != nil {
		return nil, err
	}
	if len(c.tables) >= tableCacheSize {
		clear(c.tables)
	}
	c.tables[key] = cachedTable{options: append([]Interval(nil), options...), table: t}
	return t, nil
}

func sameIntervals(a, b []Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].lo == b[i].lo && a[i].hi == b[i].hi {
			continue
		}
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// indexOf finds chosen among the sorted options
func indexOf(options []Interval, chosen Interval) (int, error) {
	i := sort.Search(len(options), func(i int) bool {
		return options[i].hi.Cmp(chosen.lo) > 0
	})
	if i == len(options) || !options[i].Equal(chosen) {
		return -1, errorf(CodeAssertionFailure, "interval %s is not one of the %d options", chosen, len(options))
	}
	return i, nil
}
