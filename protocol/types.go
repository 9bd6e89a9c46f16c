// Package protocol defines the wire-level shapes that sit outside a Book:
// gateway requests/responses, depth/stats read models, and the binary event
// record used for persistence and replay test vectors. None of this is on a
// Book's hot path.
package protocol

import "github.com/stockex/matchcore"

// DepthItem is one aggregated price level in a depth snapshot.
type DepthItem struct {
	Price matchcore.Price    `json:"price"`
	Size  matchcore.Quantity `json:"size"`
	Count int64              `json:"count"`
}

// GetDepthResponse is the state of one book's depth, best level first on
// each side.
type GetDepthResponse struct {
	InstrumentId matchcore.InstrumentId `json:"instrument_id"`
	Asks         []DepthItem            `json:"asks"`
	Bids         []DepthItem            `json:"bids"`
}

// GetStatsResponse carries coarse counters about one book's resting orders.
type GetStatsResponse struct {
	AskLevelCount int64 `json:"ask_level_count"`
	AskOrderCount int64 `json:"ask_order_count"`
	BidLevelCount int64 `json:"bid_level_count"`
	BidOrderCount int64 `json:"bid_order_count"`
}

// RejectReason explains why a Request did not reach the book as an add or
// cancel.
type RejectReason string

const (
	RejectReasonNone           RejectReason = ""
	RejectReasonDuplicateID    RejectReason = "duplicate_order_id"
	RejectReasonOrderNotFound  RejectReason = "order_not_found"
	RejectReasonInvalidPayload RejectReason = "invalid_payload"
)
