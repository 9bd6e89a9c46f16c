package structure

import "github.com/huandu/skiplist"

func priceOrder(lhs, rhs any) int {
	l := lhs.(int64)
	r := rhs.(int64)
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// PriceLevelTree tracks the set of distinct live prices on one side of a
// book, kept sorted so callers can enumerate them without re-sorting the
// direct-indexed price table on every call. It is a diagnostic index: a
// Book's hot path (Match, AddOrder) never reads it.
//
// Backed by huandu/skiplist rather than a hand-rolled ordered container --
// the same library engine.Engine uses to keep its instrument registry
// sorted, and the one the teacher's own queue.go uses to keep a side's price
// levels sorted by depth.
type PriceLevelTree struct {
	list *skiplist.SkipList
}

// NewPriceLevelTree creates an empty, ascending-ordered index of live
// prices. capacity is accepted for call-site symmetry with the pool types
// this package sits alongside; the skiplist itself grows as needed.
func NewPriceLevelTree(capacity int32) *PriceLevelTree {
	return &PriceLevelTree{list: skiplist.New(skiplist.GreaterThanFunc(priceOrder))}
}

// Insert adds price if it is not already present. Returns true if it was
// newly inserted.
func (t *PriceLevelTree) Insert(price int64) bool {
	if t.list.Get(price) != nil {
		return false
	}
	t.list.Set(price, struct{}{})
	return true
}

// Delete removes price if present. Returns true if it was found.
func (t *PriceLevelTree) Delete(price int64) bool {
	return t.list.Remove(price) != nil
}

// InOrderSlice returns every tracked price in ascending order.
func (t *PriceLevelTree) InOrderSlice() []int64 {
	out := make([]int64, 0, t.list.Len())
	for el := t.list.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key().(int64))
	}
	return out
}
