package protocol

import "github.com/stockex/matchcore"

// ResponseType identifies a Response's meaning.
type ResponseType uint8

const (
	RespInvalid        ResponseType = 0
	RespAccepted       ResponseType = 1
	RespCanceled       ResponseType = 2
	RespFilled         ResponseType = 3
	RespCancelRejected ResponseType = 4
	RespInvalidRequest ResponseType = 5
)

func (t ResponseType) String() string {
	switch t {
	case RespAccepted:
		return "ACCEPTED"
	case RespCanceled:
		return "CANCELED"
	case RespFilled:
		return "FILLED"
	case RespCancelRejected:
		return "CANCEL_REJECTED"
	case RespInvalidRequest:
		return "INVALID_REQUEST"
	default:
		return "INVALID"
	}
}

// Response is what a gateway emits back to a client after a Request runs
// against a book. ExecQty and LeavesQty are only meaningful on RespFilled;
// Reason is only meaningful on RespCancelRejected and RespInvalidRequest.
type Response struct {
	Type          ResponseType
	ClientId      matchcore.ClientId
	InstrumentId  matchcore.InstrumentId
	ClientOrderId matchcore.OrderId
	MarketOrderId matchcore.OrderId
	Side          matchcore.Side
	Price         matchcore.Price
	ExecQty       matchcore.Quantity
	LeavesQty     matchcore.Quantity
	Reason        RejectReason
}

// SequencedResponse pairs a Response with the sequence number of the
// Request that produced it.
type SequencedResponse struct {
	SequenceNumber uint64
	Response       Response
}
