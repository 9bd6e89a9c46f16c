// Package matchcore implements a single-instrument, price-time priority
// matching engine core: the in-memory order book and its chunked FIFO order
// queue. It processes add, cancel and match operations with no allocation on
// the hot path after warm-up.
//
// A Book is single-writer: callers that need multi-threaded ingestion must
// shard by instrument or funnel through a single-consumer queue (see the
// engine package for one way to do that).
package matchcore

import "math"

// OrderId is an opaque per-client order identifier.
type OrderId uint64

// InvalidOrderId is the all-ones sentinel for "no order".
const InvalidOrderId OrderId = math.MaxUint64

// ClientId identifies a trading participant.
type ClientId uint32

// InvalidClientId is the all-ones sentinel for "no client".
const InvalidClientId ClientId = math.MaxUint32

// InstrumentId selects which Book an operation targets.
type InstrumentId uint8

// InvalidInstrumentId is the all-ones sentinel for "no instrument".
const InvalidInstrumentId InstrumentId = math.MaxUint8

// Price is an integer tick, not a decimal. Negative ticks are valid;
// InvalidPrice is reserved as a sentinel.
type Price int64

// InvalidPrice is the sentinel for "no price".
const InvalidPrice Price = math.MaxInt64

// Quantity is an unsigned order size in lots/units.
type Quantity uint32

// InvalidQuantity is the all-ones sentinel for "no quantity".
const InvalidQuantity Quantity = math.MaxUint32

// Side is a tagged variant, never a class hierarchy: every "does this
// cross?" or "is this better?" check is a branch on Side.
type Side uint8

const (
	SideInvalid Side = 0
	SideBuy     Side = 1
	SideSell    Side = 2
)

// String implements fmt.Stringer for log output.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "INVALID"
	}
}

// Opposite returns the other trading side; SideInvalid maps to itself.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideInvalid
	}
}

// MatchResult is one fill produced by a Match call. It is a plain aggregate
// with no pointers into the book, so it may outlive the order it references.
type MatchResult struct {
	IncomingOrderId       OrderId
	MatchedOrderId        OrderId
	Price                 Price
	Quantity              Quantity
	MatchedOrderRemaining Quantity
	IncomingClientId      ClientId
	MatchedClientId       ClientId
	IncomingSide          Side
	MatchedSide           Side
}

// MatchResultSet is the result of one Match call. Matches aliases the
// Book's internal match buffer until the next Match call on the same Book;
// callers that need to retain events must copy them out first.
type MatchResultSet struct {
	Matches      []MatchResult
	RemainingQty Quantity
	Instrument   InstrumentId
	Overflow     bool
}
