package matchcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockex/matchcore/pool"
)

func newTestLevel(side Side, price Price) *PriceLevel {
	return &PriceLevel{
		Side:  side,
		Price: price,
		queue: NewOrderQueue(pool.New[Chunk](4)),
	}
}

func TestPriceLevel_AddCancelFront(t *testing.T) {
	lvl := newTestLevel(SideBuy, 100)
	assert.True(t, lvl.IsEmpty())

	h, err := lvl.AddOrder(BasicOrder{OrderId: 1, Qty: 10})
	require.NoError(t, err)
	assert.False(t, lvl.IsEmpty())

	lvl.CancelOrder(h)
	assert.True(t, lvl.IsEmpty())
	assert.Nil(t, lvl.FrontOrder())
}

func TestPriceLevel_IsMatchable(t *testing.T) {
	buy := newTestLevel(SideBuy, 100)
	assert.True(t, buy.IsMatchable(99))
	assert.True(t, buy.IsMatchable(100))
	assert.False(t, buy.IsMatchable(101))

	sell := newTestLevel(SideSell, 100)
	assert.True(t, sell.IsMatchable(101))
	assert.True(t, sell.IsMatchable(100))
	assert.False(t, sell.IsMatchable(99))
}

func TestPriceLevel_IsBetterThan(t *testing.T) {
	buyHigh := newTestLevel(SideBuy, 101)
	buyLow := newTestLevel(SideBuy, 100)
	assert.True(t, buyHigh.IsBetterThan(buyLow))
	assert.False(t, buyLow.IsBetterThan(buyHigh))

	sellLow := newTestLevel(SideSell, 99)
	sellHigh := newTestLevel(SideSell, 100)
	assert.True(t, sellLow.IsBetterThan(sellHigh))
	assert.False(t, sellHigh.IsBetterThan(sellLow))
}

func TestPriceLevel_PopFrontAdvancesTimePriority(t *testing.T) {
	lvl := newTestLevel(SideSell, 100)
	_, err := lvl.AddOrder(BasicOrder{OrderId: 1, Qty: 10})
	require.NoError(t, err)
	_, err = lvl.AddOrder(BasicOrder{OrderId: 2, Qty: 20})
	require.NoError(t, err)

	front := lvl.FrontOrder()
	require.NotNil(t, front)
	assert.Equal(t, OrderId(1), front.OrderId)

	lvl.PopFront()
	front = lvl.FrontOrder()
	require.NotNil(t, front)
	assert.Equal(t, OrderId(2), front.OrderId)

	lvl.PopFront()
	assert.True(t, lvl.IsEmpty())
}
