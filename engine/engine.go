package engine

import (
	"context"
	"sync"

	"github.com/huandu/skiplist"
	"github.com/rs/xid"

	"github.com/stockex/matchcore"
	"github.com/stockex/matchcore/protocol"
)

// ResponseSink receives every response and journal event an Engine produces.
// Both methods run on the ring buffer's single consumer goroutine, in the
// same order the requests that caused them were submitted.
type ResponseSink interface {
	OnResponse(resp protocol.SequencedResponse)
	OnEvent(event protocol.Event)
}

func instrumentOrder(lhs, rhs any) int {
	l := lhs.(matchcore.InstrumentId)
	r := rhs.(matchcore.InstrumentId)
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// Engine owns one matchcore.Book per instrument and is the only thing
// allowed to call into any of them. Submit is safe from any number of
// goroutines; everything downstream of it runs on one consumer goroutine,
// which is what lets a Book stay lock-free.
type Engine struct {
	id    xid.ID
	mu    sync.RWMutex
	books *skiplist.SkipList

	sink       ResponseSink
	ring       *RingBuffer[protocol.SequencedRequest]
	serializer protocol.Serializer
}

// SetSerializer overrides the format Engine uses to render a Response for
// debug logging. The default is JSON.
func (e *Engine) SetSerializer(s protocol.Serializer) { e.serializer = s }

// NewEngine creates an Engine whose ingestion ring buffer holds ringCapacity
// requests (must be a power of two). Responses and journal events are
// delivered to sink as each request is processed. Each Engine gets its own
// globally unique id, useful for correlating log lines when several run in
// the same process.
func NewEngine(ringCapacity int64, sink ResponseSink) *Engine {
	e := &Engine{
		id:         xid.New(),
		books:      skiplist.New(skiplist.GreaterThanFunc(instrumentOrder)),
		sink:       sink,
		serializer: protocol.DefaultJSONSerializer{},
	}
	e.ring = NewRingBuffer[protocol.SequencedRequest](ringCapacity, e)
	return e
}

// ID returns this Engine's unique identifier.
func (e *Engine) ID() string { return e.id.String() }

// AddInstrument registers a new book for instrument. Call this before
// Start, or only once no in-flight request can reach the new instrument:
// registration itself bypasses the ring buffer.
func (e *Engine) AddInstrument(instrument matchcore.InstrumentId, opts matchcore.Options) error {
	book, err := matchcore.NewBook(instrument, opts)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.books.Set(instrument, book)
	return nil
}

// Book returns the registered book for instrument, if any.
func (e *Engine) Book(instrument matchcore.InstrumentId) (*matchcore.Book, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	el := e.books.Get(instrument)
	if el == nil {
		return nil, false
	}
	return el.Value.(*matchcore.Book), true
}

// Instruments returns every registered instrument id in ascending order.
func (e *Engine) Instruments() []matchcore.InstrumentId {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]matchcore.InstrumentId, 0, e.books.Len())
	for el := e.books.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key().(matchcore.InstrumentId))
	}
	return out
}

// Start launches the goroutine that drains submitted requests into their
// books. Call it once, after every instrument the workload needs has been
// registered with AddInstrument.
func (e *Engine) Start() {
	logger.Info("engine started", "engine_id", e.id.String(), "instruments", e.books.Len())
	e.ring.Start()
}

// Shutdown stops accepting new requests and waits for every request already
// submitted to finish processing, or for ctx to expire.
func (e *Engine) Shutdown(ctx context.Context) error {
	err := e.ring.Shutdown(ctx)
	logger.Info("engine stopped", "engine_id", e.id.String(), "error", err)
	return err
}

// Submit enqueues req for processing. Safe to call from any goroutine.
func (e *Engine) Submit(req protocol.SequencedRequest) { e.ring.Publish(req) }

// OnEvent implements Handler[protocol.SequencedRequest]. It only ever runs
// on the ring buffer's consumer goroutine, so it calls straight into a
// Book without any locking of its own.
func (e *Engine) OnEvent(sreq protocol.SequencedRequest) {
	req := sreq.Request

	book, ok := e.Book(req.InstrumentId)
	if !ok {
		e.reject(sreq.SequenceNumber, req, protocol.RejectReasonInvalidPayload)
		return
	}

	switch req.Type {
	case protocol.ReqNew:
		e.processNew(sreq.SequenceNumber, book, req)
	case protocol.ReqCancel:
		e.processCancel(sreq.SequenceNumber, book, req)
	default:
		e.reject(sreq.SequenceNumber, req, protocol.RejectReasonInvalidPayload)
	}
}

func (e *Engine) processNew(seq uint64, book *matchcore.Book, req protocol.Request) {
	if _, exists := book.GetOrder(req.ClientId, req.ClientOrderId); exists {
		e.reject(seq, req, protocol.RejectReasonDuplicateID)
		return
	}

	result := book.Match(req.ClientId, req.MarketOrderId, req.Side, req.Price, req.Qty)
	for _, m := range result.Matches {
		e.sink.OnEvent(protocol.Event{
			OrderId:  uint64(m.MatchedOrderId),
			Price:    int64(m.Price),
			Qty:      uint32(m.Quantity),
			Side:     uint8(m.MatchedSide),
			Type:     protocol.EventMatch,
			ClientId: uint32(m.MatchedClientId),
		})
	}

	if result.RemainingQty > 0 {
		if err := book.AddOrder(req.ClientId, req.ClientOrderId, req.MarketOrderId, req.Side, req.Price, result.RemainingQty); err != nil {
			e.reject(seq, req, rejectReasonFor(err))
			return
		}
		e.sink.OnEvent(protocol.Event{
			OrderId:  uint64(req.MarketOrderId),
			Price:    int64(req.Price),
			Qty:      uint32(result.RemainingQty),
			Side:     uint8(req.Side),
			Type:     protocol.EventAdd,
			ClientId: uint32(req.ClientId),
		})
	}

	respType := protocol.RespAccepted
	if len(result.Matches) > 0 {
		respType = protocol.RespFilled
	}
	resp := protocol.Response{
		Type:          respType,
		ClientId:      req.ClientId,
		InstrumentId:  req.InstrumentId,
		ClientOrderId: req.ClientOrderId,
		MarketOrderId: req.MarketOrderId,
		Side:          req.Side,
		Price:         req.Price,
		ExecQty:       req.Qty - result.RemainingQty,
		LeavesQty:     result.RemainingQty,
	}
	e.logResponse(seq, resp)
	e.sink.OnResponse(protocol.SequencedResponse{SequenceNumber: seq, Response: resp})
}

func (e *Engine) processCancel(seq uint64, book *matchcore.Book, req protocol.Request) {
	info, ok := book.GetOrder(req.ClientId, req.ClientOrderId)
	if !ok {
		e.sink.OnResponse(protocol.SequencedResponse{
			SequenceNumber: seq,
			Response: protocol.Response{
				Type:          protocol.RespCancelRejected,
				ClientId:      req.ClientId,
				InstrumentId:  req.InstrumentId,
				ClientOrderId: req.ClientOrderId,
				Reason:        protocol.RejectReasonOrderNotFound,
			},
		})
		return
	}

	book.RemoveOrder(req.ClientId, req.ClientOrderId)
	e.sink.OnEvent(protocol.Event{
		OrderId:  uint64(info.MarketOrderId),
		Price:    int64(info.Price),
		Side:     uint8(req.Side),
		Type:     protocol.EventCancel,
		ClientId: uint32(req.ClientId),
	})
	resp := protocol.Response{
		Type:          protocol.RespCanceled,
		ClientId:      req.ClientId,
		InstrumentId:  req.InstrumentId,
		ClientOrderId: req.ClientOrderId,
		MarketOrderId: info.MarketOrderId,
		Price:         info.Price,
	}
	e.logResponse(seq, resp)
	e.sink.OnResponse(protocol.SequencedResponse{SequenceNumber: seq, Response: resp})
}

// logResponse renders resp through the configured Serializer for debug-level
// observability. A marshal failure is logged but never blocks the response
// from reaching sink.
func (e *Engine) logResponse(seq uint64, resp protocol.Response) {
	payload, err := e.serializer.Marshal(resp)
	if err != nil {
		logger.Debug("response marshal failed", "engine_id", e.id.String(), "seq", seq, "error", err)
		return
	}
	logger.Debug("response", "engine_id", e.id.String(), "seq", seq, "payload", string(payload))
}

func (e *Engine) reject(seq uint64, req protocol.Request, reason protocol.RejectReason) {
	e.sink.OnResponse(protocol.SequencedResponse{
		SequenceNumber: seq,
		Response: protocol.Response{
			Type:          protocol.RespInvalidRequest,
			ClientId:      req.ClientId,
			InstrumentId:  req.InstrumentId,
			ClientOrderId: req.ClientOrderId,
			MarketOrderId: req.MarketOrderId,
			Reason:        reason,
		},
	})
}

func rejectReasonFor(err error) protocol.RejectReason {
	if err == matchcore.ErrInvalidOrder {
		return protocol.RejectReasonDuplicateID
	}
	return protocol.RejectReasonInvalidPayload
}
