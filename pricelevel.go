package matchcore

import "github.com/stockex/matchcore/pool"

// PriceLevel is one side/price's resting FIFO queue plus the peer pointers
// that thread it into its side's circular, doubly-linked, aggressiveness-
// sorted ring. prev == next == self for a singleton level.
type PriceLevel struct {
	Side  Side
	Price Price
	queue *OrderQueue
	prev  pool.Ref
	next  pool.Ref
}

// AddOrder pushes a new resting order into the level's queue.
func (lvl *PriceLevel) AddOrder(order BasicOrder) (OrderHandle, error) {
	return lvl.queue.Push(order)
}

// CancelOrder removes the order referenced by h from the level's queue.
func (lvl *PriceLevel) CancelOrder(h OrderHandle) {
	lvl.queue.Cancel(h)
}

// FrontOrder returns the earliest live resting order, or nil if the level's
// queue is empty.
func (lvl *PriceLevel) FrontOrder() *BasicOrder {
	return lvl.queue.Front()
}

// PopFront removes the earliest live resting order.
func (lvl *PriceLevel) PopFront() {
	lvl.queue.PopFront()
}

// IsEmpty reports whether the level has no resting orders left.
func (lvl *PriceLevel) IsEmpty() bool {
	return lvl.queue.Empty()
}

// IsMatchable reports whether an incoming order at p crosses this level: a
// BUY taker crosses resting SELL levels priced at or below p; a SELL taker
// crosses resting BUY levels priced at or above p.
func (lvl *PriceLevel) IsMatchable(p Price) bool {
	if lvl.Side == SideBuy {
		return lvl.Price >= p
	}
	return lvl.Price <= p
}

// IsBetterThan reports whether lvl is more aggressive than other on the same
// side: higher price for BUY, lower price for SELL.
func (lvl *PriceLevel) IsBetterThan(other *PriceLevel) bool {
	if lvl.Side == SideBuy {
		return lvl.Price > other.Price
	}
	return lvl.Price < other.Price
}
