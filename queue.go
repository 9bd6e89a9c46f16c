package matchcore

import (
	"math/bits"

	"github.com/stockex/matchcore/pool"
)

// ChunkSize is the queue chunk capacity. It must be a power of two so that
// ChunkSize/64 bitmap words cover it exactly.
const ChunkSize = 256

const wordsPerChunk = ChunkSize / 64

// BasicOrder is the in-queue resting order record. It carries no side or
// price: those live on the PriceLevel that owns the queue.
type BasicOrder struct {
	OrderId  OrderId
	Qty      Quantity
	ClientId ClientId

	// ClientOrderId is the owner's own lookup key (the index into the
	// Book's per-client order table), kept alongside the market-wide
	// OrderId so a fill that drains this order to zero can clear the
	// owner's lookup entry without a second map/array pass.
	ClientOrderId OrderId
}

// Chunk holds up to ChunkSize resting orders plus a validity bitmap. A
// cleared bit below HighWaterMark is a tombstone; HighWaterMark never
// decreases while the chunk is live.
type Chunk struct {
	orders        [ChunkSize]BasicOrder
	bitmap        [wordsPerChunk]uint64
	highWaterMark uint32
	prev, next    pool.Ref
}

// OrderHandle is a stable, opaque locator returned by Push and consumed by
// Cancel. It stays valid for the slot's entire live lifetime.
type OrderHandle struct {
	chunk pool.Ref
	index uint32
	live  bool
}

// NullHandle is the sentinel handle; Valid reports false for it, as it does
// for the zero OrderHandle.
var NullHandle = OrderHandle{chunk: pool.NullRef}

// Valid reports whether h was returned by a Push call.
func (h OrderHandle) Valid() bool { return h.live }

// OrderQueue is a FIFO of BasicOrder records at one price level, backed by a
// chunk pool shared across every queue in the owning Book. Push is O(1)
// amortized, Cancel is O(1) by handle, and Front/Last skip tombstones in
// O(tombstones/64) via word-at-a-time bitmap scanning.
type OrderQueue struct {
	chunks    *pool.Pool[Chunk]
	headChunk pool.Ref
	headIndex uint32
	tailChunk pool.Ref
	total     uint32
}

// NewOrderQueue creates an empty queue over a chunk pool shared with sibling
// queues in the same Book. The first chunk is allocated lazily, on the first
// Push.
func NewOrderQueue(chunks *pool.Pool[Chunk]) *OrderQueue {
	return &OrderQueue{
		chunks:    chunks,
		headChunk: pool.NullRef,
		tailChunk: pool.NullRef,
	}
}

// Push appends order to the tail of the queue and returns a handle that
// Cancel can later use to remove it in O(1).
func (q *OrderQueue) Push(order BasicOrder) (OrderHandle, error) {
	var tail *Chunk
	if q.tailChunk != pool.NullRef {
		tail = q.chunks.Get(q.tailChunk)
	}
	if tail == nil || tail.highWaterMark == ChunkSize {
		ref, err := q.chunks.Alloc(Chunk{prev: q.tailChunk, next: pool.NullRef})
		if err != nil {
			return NullHandle, err
		}
		if tail != nil {
			tail.next = ref
		}
		if q.headChunk == pool.NullRef {
			q.headChunk = ref
		}
		q.tailChunk = ref
		tail = q.chunks.Get(ref)
	}

	idx := tail.highWaterMark
	tail.orders[idx] = order
	tail.bitmap[idx/64] |= 1 << (idx % 64)
	tail.highWaterMark++
	q.total++
	return OrderHandle{chunk: q.tailChunk, index: idx, live: true}, nil
}

// Cancel clears the bitmap bit for h's slot. It never moves other orders and
// is idempotent: cancelling an already-cleared slot is a silent no-op.
func (q *OrderQueue) Cancel(h OrderHandle) {
	if !h.Valid() {
		return
	}
	c := q.chunks.Get(h.chunk)
	word := h.index / 64
	bit := uint64(1) << (h.index % 64)
	if c.bitmap[word]&bit == 0 {
		return
	}
	c.bitmap[word] &^= bit
	q.total--
}

// Front advances the head past any tombstones and returns the earliest live
// order, or nil if the queue is empty. It may free drained interior chunks
// as a side effect but never changes which orders are live.
func (q *OrderQueue) Front() *BasicOrder {
	if !q.advanceHead() {
		return nil
	}
	c := q.chunks.Get(q.headChunk)
	return &c.orders[q.headIndex]
}

// PopFront advances the head and, if the queue is non-empty, clears the
// bitmap bit at the new head position.
func (q *OrderQueue) PopFront() {
	if !q.advanceHead() {
		return
	}
	c := q.chunks.Get(q.headChunk)
	c.bitmap[q.headIndex/64] &^= 1 << (q.headIndex % 64)
	q.total--
}

// Last returns the most recently pushed live order by walking backward from
// the tail chunk, or nil if the queue is empty.
func (q *OrderQueue) Last() *BasicOrder {
	ref := q.tailChunk
	for ref != pool.NullRef {
		c := q.chunks.Get(ref)
		if idx, ok := lastLiveIndex(c); ok {
			return &c.orders[idx]
		}
		if ref == q.headChunk {
			return nil
		}
		ref = c.prev
	}
	return nil
}

// Empty reports whether the queue currently holds any live order.
func (q *OrderQueue) Empty() bool { return q.total == 0 }

// Size returns the number of live orders in the queue.
func (q *OrderQueue) Size() uint32 { return q.total }

// Destroy frees every chunk still referenced by the queue. Callers must call
// this when the owning PriceLevel is torn down; a queue that goes out of
// scope without it leaks chunk-pool slots.
func (q *OrderQueue) Destroy() {
	ref := q.headChunk
	for ref != pool.NullRef {
		next := q.chunks.Get(ref).next
		q.chunks.Free(ref)
		ref = next
	}
	q.headChunk = pool.NullRef
	q.tailChunk = pool.NullRef
	q.headIndex = 0
	q.total = 0
}

// advanceHead moves (headChunk, headIndex) forward to the smallest live
// index, freeing fully-drained chunks it passes through. It reports false
// iff the queue is empty. A drained chunk is only freed once it is no
// longer the tail: the tail must stay resident so Push can keep writing into
// it even while it is transiently empty.
func (q *OrderQueue) advanceHead() bool {
	for q.headChunk != pool.NullRef {
		c := q.chunks.Get(q.headChunk)
		word := q.headIndex / 64
		bit := q.headIndex % 64

		for word < wordsPerChunk {
			masked := c.bitmap[word] &^ ((uint64(1) << bit) - 1)
			if masked != 0 {
				q.headIndex = word*64 + uint32(bits.TrailingZeros64(masked))
				return true
			}
			word++
			bit = 0
		}

		// Scanned every word below high_water_mark's chunk with nothing
		// live. If this is the tail, stop here without freeing it -- it
		// may still receive pushes.
		if c.next == pool.NullRef {
			q.headIndex = c.highWaterMark
			return false
		}

		next := c.next
		q.chunks.Free(q.headChunk)
		q.headChunk = next
		q.headIndex = 0
	}
	return false
}

// lastLiveIndex finds the highest set bitmap bit in c, if any.
func lastLiveIndex(c *Chunk) (uint32, bool) {
	for word := wordsPerChunk - 1; word >= 0; word-- {
		w := c.bitmap[word]
		if w == 0 {
			continue
		}
		return uint32(word*64 + 63 - bits.LeadingZeros64(w)), true
	}
	return 0, false
}
