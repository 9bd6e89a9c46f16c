package protocol

import "github.com/stockex/matchcore"

// RequestType identifies a Request's payload. Only the operations the core
// exposes are represented here: plain limit add and cancel. Modify is
// deliberately absent -- its quantity-increase priority-reset semantics are
// not specified, and callers wanting it must define that policy themselves.
type RequestType uint8

const (
	ReqInvalid RequestType = 0
	ReqNew     RequestType = 1
	ReqCancel  RequestType = 2
)

func (t RequestType) String() string {
	switch t {
	case ReqNew:
		return "NEW"
	case ReqCancel:
		return "CANCEL"
	default:
		return "INVALID"
	}
}

// Request is the gateway-facing carrier for one book operation. ClientOrderId
// is always the requester's own lookup key; MarketOrderId is only meaningful
// on ReqNew, where it becomes the id that later appears in match events.
type Request struct {
	Type          RequestType
	ClientId      matchcore.ClientId
	InstrumentId  matchcore.InstrumentId
	ClientOrderId matchcore.OrderId
	MarketOrderId matchcore.OrderId
	Side          matchcore.Side
	Price         matchcore.Price
	Qty           matchcore.Quantity
}

// SequencedRequest pairs a Request with the monotonic sequence number a
// single-consumer funnel assigned it before handing it to a book.
type SequencedRequest struct {
	SequenceNumber uint64
	Request        Request
}
