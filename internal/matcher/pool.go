package matcher

import "github.com/cleared-dev/cardrecon/internal/model"

// pool is the set of hotel transactions still available for matching.
// Entries keep their original index; taking one only flags it.
type pool struct {
	items []model.HotelTransaction
	taken []bool
}

func newPool(items []model.HotelTransaction) *pool {
	return &pool{items: items, taken: make([]bool, len(items))}
}

// first returns the index of the first available entry satisfying ok, or -1.
func (p *pool) first(ok func(model.HotelTransaction) bool) int {
	for i, h := range p.items {
		if !p.taken[i] && ok(h) {
			return i
		}
	}
	return -1
}

func (p *pool) take(i int) model.HotelTransaction {
	if p.taken[i] {
		panic("matcher: hotel transaction taken twice")
	}
	p.taken[i] = true
	return p.items[i]
}

// remaining returns the indices of entries never taken, in pool order.
func (p *pool) remaining() []int {
	var idx []int
	for i := range p.items {
		if !p.taken[i] {
			idx = append(idx, i)
		}
	}
	return idx
}
