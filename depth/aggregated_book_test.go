package depth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockex/matchcore"
	"github.com/stockex/matchcore/protocol"
)

func TestAggregatedBook_AddAndDepth(t *testing.T) {
	ab := NewAggregatedBook()

	ab.Apply(1, matchcore.SideSell, 100, 50, protocol.EventAdd)
	ab.Apply(2, matchcore.SideSell, 100, 25, protocol.EventAdd)

	assert.Equal(t, matchcore.Quantity(75), ab.Depth(matchcore.SideSell, 100))
	assert.Equal(t, uint64(2), ab.SequenceNumber())
}

func TestAggregatedBook_MatchDrainsLevel(t *testing.T) {
	ab := NewAggregatedBook()
	ab.Apply(1, matchcore.SideSell, 100, 50, protocol.EventAdd)
	ab.Apply(2, matchcore.SideSell, 100, 50, protocol.EventMatch)

	assert.Equal(t, matchcore.Quantity(0), ab.Depth(matchcore.SideSell, 100))
	levels := ab.Levels(matchcore.SideSell, 10)
	assert.Empty(t, levels)
}

func TestAggregatedBook_LevelsOrdering(t *testing.T) {
	ab := NewAggregatedBook()
	ab.Apply(1, matchcore.SideSell, 102, 10, protocol.EventAdd)
	ab.Apply(2, matchcore.SideSell, 100, 10, protocol.EventAdd)
	ab.Apply(3, matchcore.SideSell, 101, 10, protocol.EventAdd)

	asks := ab.Levels(matchcore.SideSell, 10)
	assert.Equal(t, []matchcore.Price{100, 101, 102}, []matchcore.Price{asks[0].Price, asks[1].Price, asks[2].Price})

	ab.Apply(4, matchcore.SideBuy, 98, 10, protocol.EventAdd)
	ab.Apply(5, matchcore.SideBuy, 99, 10, protocol.EventAdd)

	bids := ab.Levels(matchcore.SideBuy, 10)
	assert.Equal(t, []matchcore.Price{99, 98}, []matchcore.Price{bids[0].Price, bids[1].Price})
}

func TestAggregatedBook_CancelPartial(t *testing.T) {
	ab := NewAggregatedBook()
	ab.Apply(1, matchcore.SideBuy, 100, 50, protocol.EventAdd)
	ab.Apply(2, matchcore.SideBuy, 100, 20, protocol.EventCancel)

	assert.Equal(t, matchcore.Quantity(30), ab.Depth(matchcore.SideBuy, 100))
}
