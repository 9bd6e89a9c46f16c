package matchcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockex/matchcore/pool"
)

func newTestQueue(capacity int) *OrderQueue {
	return NewOrderQueue(pool.New[Chunk](capacity))
}

func TestOrderQueue_PushFrontPopFront(t *testing.T) {
	q := newTestQueue(4)
	h1, err := q.Push(BasicOrder{OrderId: 1, Qty: 10})
	require.NoError(t, err)
	_, err = q.Push(BasicOrder{OrderId: 2, Qty: 20})
	require.NoError(t, err)

	assert.True(t, h1.Valid())
	assert.Equal(t, uint32(2), q.Size())

	front := q.Front()
	require.NotNil(t, front)
	assert.Equal(t, OrderId(1), front.OrderId)

	q.PopFront()
	assert.Equal(t, uint32(1), q.Size())

	front = q.Front()
	require.NotNil(t, front)
	assert.Equal(t, OrderId(2), front.OrderId)
}

func TestOrderQueue_CancelIsIdempotent(t *testing.T) {
	q := newTestQueue(4)
	h, err := q.Push(BasicOrder{OrderId: 1, Qty: 10})
	require.NoError(t, err)

	q.Cancel(h)
	assert.True(t, q.Empty())
	q.Cancel(h) // second cancel, no-op
	assert.True(t, q.Empty())
}

func TestOrderQueue_PushCancelPushLeavesOneLive(t *testing.T) {
	q := newTestQueue(4)
	h1, err := q.Push(BasicOrder{OrderId: 1, Qty: 10})
	require.NoError(t, err)
	q.Cancel(h1)

	h2, err := q.Push(BasicOrder{OrderId: 2, Qty: 20})
	require.NoError(t, err)

	assert.Equal(t, uint32(1), q.Size())
	front := q.Front()
	require.NotNil(t, front)
	assert.Equal(t, OrderId(2), front.OrderId)
	assert.NotEqual(t, h1, h2)
}

func TestOrderQueue_EmptyQueueFrontIsNil(t *testing.T) {
	q := newTestQueue(4)
	assert.Nil(t, q.Front())
	assert.True(t, q.Empty())
}

func TestOrderQueue_SpansMultipleChunks(t *testing.T) {
	q := newTestQueue(4)
	n := ChunkSize*2 + 10
	for i := 0; i < n; i++ {
		_, err := q.Push(BasicOrder{OrderId: OrderId(i), Qty: 1})
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(n), q.Size())

	for i := 0; i < n; i++ {
		front := q.Front()
		require.NotNil(t, front)
		assert.Equal(t, OrderId(i), front.OrderId)
		q.PopFront()
	}
	assert.True(t, q.Empty())
}

func TestOrderQueue_Last(t *testing.T) {
	q := newTestQueue(4)
	assert.Nil(t, q.Last())

	_, err := q.Push(BasicOrder{OrderId: 1, Qty: 1})
	require.NoError(t, err)
	_, err = q.Push(BasicOrder{OrderId: 2, Qty: 1})
	require.NoError(t, err)

	last := q.Last()
	require.NotNil(t, last)
	assert.Equal(t, OrderId(2), last.OrderId)
}

func TestOrderQueue_FragmentedTombstonesSkippedByBitmap(t *testing.T) {
	q := newTestQueue(64)
	const n = 10000
	handles := make([]OrderHandle, n)
	for i := 0; i < n; i++ {
		h, err := q.Push(BasicOrder{OrderId: OrderId(i), Qty: 1})
		require.NoError(t, err)
		handles[i] = h
	}
	for i := 0; i < n-1; i++ {
		q.Cancel(handles[i])
	}

	assert.Equal(t, uint32(1), q.Size())
	front := q.Front()
	require.NotNil(t, front)
	assert.Equal(t, OrderId(n-1), front.OrderId)
}

func TestOrderQueue_ChunkPoolExhaustionFails(t *testing.T) {
	q := newTestQueue(1)
	for i := 0; i < ChunkSize; i++ {
		_, err := q.Push(BasicOrder{OrderId: OrderId(i), Qty: 1})
		require.NoError(t, err)
	}
	_, err := q.Push(BasicOrder{OrderId: 999, Qty: 1})
	assert.ErrorIs(t, err, pool.ErrExhausted)
}

func TestOrderQueue_Destroy(t *testing.T) {
	chunks := pool.New[Chunk](4)
	q := NewOrderQueue(chunks)
	for i := 0; i < ChunkSize+5; i++ {
		_, err := q.Push(BasicOrder{OrderId: OrderId(i), Qty: 1})
		require.NoError(t, err)
	}
	liveBefore := chunks.Len()
	assert.Greater(t, liveBefore, 0)

	q.Destroy()
	assert.Equal(t, 0, chunks.Len())
	assert.True(t, q.Empty())
}
