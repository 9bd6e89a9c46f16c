// Package depth maintains a downstream, read-only view of a book's price
// levels rebuilt from the event stream a Book's operations produce. It has
// no access to a Book's internals and never runs on its hot path; consumers
// feed it protocol.Events (typically off a journal or a broadcast feed).
package depth

import (
	"github.com/igrmk/treemap/v2"

	"github.com/stockex/matchcore"
	"github.com/stockex/matchcore/protocol"
)

// AggregatedBook tracks only price levels and their aggregated resting size
// per instrument side, keyed by price so depth snapshots can be produced in
// sorted order without re-sorting on every read.
type AggregatedBook struct {
	seq uint64
	ask *treemap.TreeMap[matchcore.Price, matchcore.Quantity]
	bid *treemap.TreeMap[matchcore.Price, matchcore.Quantity]
}

// NewAggregatedBook creates an empty read model. The ask side iterates low
// to high (best first); the bid side is read in reverse for the same effect.
func NewAggregatedBook() *AggregatedBook {
	less := func(a, b matchcore.Price) bool { return a < b }
	return &AggregatedBook{
		ask: treemap.NewWithKeyCompare[matchcore.Price, matchcore.Quantity](less),
		bid: treemap.NewWithKeyCompare[matchcore.Price, matchcore.Quantity](less),
	}
}

// SequenceNumber reports the sequence number of the last event applied.
func (ab *AggregatedBook) SequenceNumber() uint64 { return ab.seq }

func (ab *AggregatedBook) sideMap(side matchcore.Side) *treemap.TreeMap[matchcore.Price, matchcore.Quantity] {
	if side == matchcore.SideBuy {
		return ab.bid
	}
	return ab.ask
}

// Apply folds one sequenced event into the aggregate. ADD increases the
// level's size; CANCEL and MATCH decrease it, removing the level once its
// size reaches zero. PREFILL behaves like ADD, seeding state from a snapshot.
func (ab *AggregatedBook) Apply(seq uint64, side matchcore.Side, price matchcore.Price, qty matchcore.Quantity, typ protocol.EventType) {
	ab.seq = seq
	m := ab.sideMap(side)

	switch typ {
	case protocol.EventAdd, protocol.EventPrefill:
		cur, _ := m.Get(price)
		m.Set(price, cur+qty)
	case protocol.EventCancel, protocol.EventMatch:
		cur, ok := m.Get(price)
		if !ok {
			return
		}
		if qty >= cur {
			m.Del(price)
		} else {
			m.Set(price, cur-qty)
		}
	}
}

// Depth returns the aggregated resting size at price on side, or zero if
// the level does not exist.
func (ab *AggregatedBook) Depth(side matchcore.Side, price matchcore.Price) matchcore.Quantity {
	qty, _ := ab.sideMap(side).Get(price)
	return qty
}

// Levels returns up to limit price levels on side, best price first.
func (ab *AggregatedBook) Levels(side matchcore.Side, limit int) []protocol.DepthItem {
	out := make([]protocol.DepthItem, 0, limit)

	if side == matchcore.SideSell {
		it := ab.ask.Iterator()
		for it.Valid() && len(out) < limit {
			out = append(out, protocol.DepthItem{Price: it.Key(), Size: it.Value()})
			it.Next()
		}
		return out
	}

	it := ab.bid.Reverse()
	for it.Valid() && len(out) < limit {
		out = append(out, protocol.DepthItem{Price: it.Key(), Size: it.Value()})
		it.Next()
	}
	return out
}
