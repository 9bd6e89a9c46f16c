// Package engine provides the ambient, multi-instrument layer around a
// single matchcore.Book: a lock-free MPSC ring buffer that funnels
// concurrent request producers into the one goroutine a Book requires as
// its sole caller, and a registry that routes requests to the right Book by
// instrument.
package engine

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
)

// ErrShutdownTimeout is returned when Shutdown's context expires before the
// consumer has drained every published event.
var ErrShutdownTimeout = errors.New("engine: shutdown timed out")

// Handler processes one event drained from a RingBuffer. It always runs on
// the ring buffer's single consumer goroutine.
type Handler[T any] interface {
	OnEvent(event T)
}

// cachelinePad keeps the hot sequence counters below on separate cache
// lines so a producer bumping one doesn't force every other core to reload
// the other.
type cachelinePad [64]byte

// RingBuffer is a fixed-capacity, multi-producer single-consumer queue. Many
// goroutines may call Publish concurrently; only the one goroutine started
// by Start ever calls the Handler, which is what lets that handler drive a
// matchcore.Book without any locking of its own.
//
// Each producer reserves a slot with a single atomic fetch-and-add rather
// than a compare-and-swap retry loop, so producers never contend with each
// other over the same sequence number. A slot becomes visible to the
// consumer once its stamp is set to the sequence that owns it; the consumer
// just watches the stamp of the next slot it needs rather than tracking a
// separate published-flags array.
type RingBuffer[T any] struct {
	_                cachelinePad
	producerSequence atomic.Int64
	_                cachelinePad
	consumerSequence atomic.Int64
	_                cachelinePad

	mask     int64
	capacity int64
	buffer   []T
	stamp    []atomic.Int64

	handler    Handler[T]
	isShutdown atomic.Bool
}

// NewRingBuffer creates a ring buffer of the given capacity, which must be a
// power of two, draining into handler.
func NewRingBuffer[T any](capacity int64, handler Handler[T]) *RingBuffer[T] {
	if capacity <= 0 || (capacity&(capacity-1)) != 0 {
		panic("engine: ring buffer capacity must be a power of 2")
	}

	rb := &RingBuffer[T]{
		mask:     capacity - 1,
		capacity: capacity,
		buffer:   make([]T, capacity),
		stamp:    make([]atomic.Int64, capacity),
		handler:  handler,
	}
	rb.producerSequence.Store(-1)
	rb.consumerSequence.Store(-1)
	for i := range rb.stamp {
		rb.stamp[i].Store(-1)
	}
	return rb
}

// Publish enqueues event. It blocks (yielding the scheduler, not sleeping)
// while the buffer is full. Safe to call from any number of goroutines.
// Publishing after Shutdown has been called is a silent no-op.
func (rb *RingBuffer[T]) Publish(event T) {
	if rb.isShutdown.Load() {
		return
	}

	seq := rb.producerSequence.Add(1)
	for seq-rb.consumerSequence.Load() > rb.capacity {
		runtime.Gosched()
	}

	slot := seq & rb.mask
	rb.buffer[slot] = event
	rb.stamp[slot].Store(seq)
}

// Start launches the consumer goroutine. Call it once.
func (rb *RingBuffer[T]) Start() {
	go rb.consumerLoop()
}

// Shutdown stops accepting new Publish calls and blocks until the consumer
// has drained every event already claimed by a producer, or ctx expires.
func (rb *RingBuffer[T]) Shutdown(ctx context.Context) error {
	rb.isShutdown.Store(true)
	for rb.consumerSequence.Load() < rb.producerSequence.Load() {
		select {
		case <-ctx.Done():
			return ErrShutdownTimeout
		default:
			runtime.Gosched()
		}
	}
	return nil
}

// consumerLoop drains slots in order, one sequence at a time, stopping only
// once Shutdown has been called and no claimed-but-unconsumed slot remains.
func (rb *RingBuffer[T]) consumerLoop() {
	next := rb.consumerSequence.Load() + 1
	for {
		slot := next & rb.mask
		for rb.stamp[slot].Load() != next {
			if rb.isShutdown.Load() && rb.producerSequence.Load() < next {
				return
			}
			runtime.Gosched()
		}
		rb.handler.OnEvent(rb.buffer[slot])
		rb.consumerSequence.Store(next)
		next++
	}
}

// ConsumerSequence reports the sequence number of the last event processed.
func (rb *RingBuffer[T]) ConsumerSequence() int64 { return rb.consumerSequence.Load() }

// ProducerSequence reports the sequence number of the last event claimed by
// a producer.
func (rb *RingBuffer[T]) ProducerSequence() int64 { return rb.producerSequence.Load() }

// Pending reports how many claimed events have not yet been consumed.
func (rb *RingBuffer[T]) Pending() int64 {
	return rb.producerSequence.Load() - rb.consumerSequence.Load()
}
