package matchcore

import (
	"fmt"

	"github.com/stockex/matchcore/pool"
	"github.com/stockex/matchcore/structure"
)

// Options sizes a Book's fixed pools and tables up front. There is no
// resize: exhausting a pool at runtime is fatal, so opts should be sized
// for the venue's worst-case resident order count, not its average.
type Options struct {
	// MaxPriceLevels is the width of the direct-indexed price table. A
	// price maps to a table slot by Price % MaxPriceLevels; two live
	// prices that land on the same slot collide, and the second one to
	// arrive is rejected with ErrPriceCollision. Widen this past the
	// instrument's expected distinct-price count to keep collisions rare.
	MaxPriceLevels int

	// MaxClients and MaxOrdersPerClient size the per-client order table,
	// which is indexed directly by (ClientId, client-assigned OrderId).
	// Callers must keep their own order ids within [0, MaxOrdersPerClient).
	MaxClients         int
	MaxOrdersPerClient int

	// MaxMatchEvents bounds one Match call's result buffer. A match that
	// would need more fills than this stops early and reports Overflow.
	MaxMatchEvents int

	// LevelPoolCapacity and ChunkPoolCapacity size the PriceLevel pool and
	// the chunk pool shared by every queue in the book.
	LevelPoolCapacity int
	ChunkPoolCapacity int
}

// DefaultOptions returns the sizing used when a caller has no specific
// capacity requirements: generous enough for a single liquid instrument,
// not tuned for any particular venue.
func DefaultOptions() Options {
	return Options{
		MaxPriceLevels:     8192,
		MaxClients:         1024,
		MaxOrdersPerClient: 65536,
		MaxMatchEvents:     128,
		LevelPoolCapacity:  8192,
		ChunkPoolCapacity:  4096,
	}
}

func (o Options) validate() error {
	if o.MaxPriceLevels <= 0 || o.MaxClients <= 0 || o.MaxOrdersPerClient <= 0 ||
		o.MaxMatchEvents <= 0 || o.LevelPoolCapacity <= 0 || o.ChunkPoolCapacity <= 0 {
		return ErrInvalidOrder
	}
	return nil
}

// OrderInfo is what the per-client order table stores for a resting order:
// enough to cancel it (Handle, Price) and to report it back (MarketOrderId).
// The zero value has an invalid Handle and represents "no such order".
type OrderInfo struct {
	Handle        OrderHandle
	MarketOrderId OrderId
	Price         Price
}

// Book is a single instrument's order book: a direct-indexed price table, a
// circular doubly-linked ring per side ordered by aggressiveness, and a
// per-client order table for O(1) cancel-by-client-id. It is single-writer:
// every method must be called from one goroutine at a time (see the engine
// package for funneling concurrent ingestion into that one goroutine).
type Book struct {
	instrument InstrumentId
	opts       Options

	levels *pool.Pool[PriceLevel]
	chunks *pool.Pool[Chunk]

	bestBid pool.Ref
	bestAsk pool.Ref

	// priceTable and priceAt are parallel arrays indexed by Price %
	// MaxPriceLevels. priceTable holds the level ref (NullRef if the slot
	// is free); priceAt records which Price currently occupies a non-free
	// slot. A second price landing on the same slot is detected by comparing
	// against the occupying level's own Price and rejected instead of
	// silently routed to the wrong level.
	priceTable []pool.Ref
	priceAt    []Price

	clientOrders [][]OrderInfo

	matchBuf []MatchResult

	// bidPrices and askPrices mirror the set of distinct live prices on
	// each side in a sorted index, giving Levels sorted enumeration without
	// walking and sorting the direct-indexed price table on every call.
	// They are diagnostic: Match and AddOrder's hot path never reads them.
	bidPrices *structure.PriceLevelTree
	askPrices *structure.PriceLevelTree
}

// NewBook allocates a single-instrument book sized by opts.
func NewBook(instrument InstrumentId, opts Options) (*Book, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	clientOrders := make([][]OrderInfo, opts.MaxClients)
	for i := range clientOrders {
		clientOrders[i] = make([]OrderInfo, opts.MaxOrdersPerClient)
	}

	priceTable := make([]pool.Ref, opts.MaxPriceLevels)
	for i := range priceTable {
		priceTable[i] = pool.NullRef
	}

	return &Book{
		instrument:   instrument,
		opts:         opts,
		levels:       pool.New[PriceLevel](opts.LevelPoolCapacity),
		chunks:       pool.New[Chunk](opts.ChunkPoolCapacity),
		bestBid:      pool.NullRef,
		bestAsk:      pool.NullRef,
		priceTable:   priceTable,
		priceAt:      make([]Price, opts.MaxPriceLevels),
		clientOrders: clientOrders,
		matchBuf:     make([]MatchResult, opts.MaxMatchEvents),
		bidPrices:    structure.NewPriceLevelTree(int32(opts.MaxPriceLevels)),
		askPrices:    structure.NewPriceLevelTree(int32(opts.MaxPriceLevels)),
	}, nil
}

// Levels returns every live price on side, sorted best-first: descending for
// BUY, ascending for SELL. It is a diagnostic enumeration, not a hot-path
// operation -- it reads a sorted index kept in sync with the price table
// rather than sorting the table itself on every call.
func (b *Book) Levels(side Side) []Price {
	tree := b.askPrices
	if side == SideBuy {
		tree = b.bidPrices
	}
	raw := tree.InOrderSlice()

	out := make([]Price, len(raw))
	if side == SideBuy {
		for i, p := range raw {
			out[len(raw)-1-i] = Price(p)
		}
	} else {
		for i, p := range raw {
			out[i] = Price(p)
		}
	}
	return out
}

// Instrument returns the instrument this book was created for.
func (b *Book) Instrument() InstrumentId { return b.instrument }

func (b *Book) priceIndex(p Price) int {
	n := int64(b.opts.MaxPriceLevels)
	idx := int64(p) % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}

func (b *Book) ordersInRange(client ClientId, orderId OrderId) bool {
	return int(client) < len(b.clientOrders) && uint64(orderId) < uint64(b.opts.MaxOrdersPerClient)
}

// GetPriceLevel returns the live level at p, or nil if there is none. It
// never returns a level belonging to a different, colliding price.
func (b *Book) GetPriceLevel(p Price) *PriceLevel {
	idx := b.priceIndex(p)
	ref := b.priceTable[idx]
	if ref == pool.NullRef {
		return nil
	}
	lvl := b.levels.Get(ref)
	if lvl.Price != p {
		return nil
	}
	return lvl
}

// GetOrder reports the resting order a client registered under
// clientOrderId, and whether one currently exists.
func (b *Book) GetOrder(client ClientId, clientOrderId OrderId) (OrderInfo, bool) {
	if !b.ordersInRange(client, clientOrderId) {
		return OrderInfo{}, false
	}
	info := b.clientOrders[client][clientOrderId]
	return info, info.Handle.Valid()
}

// BestBid returns the highest live buy level, or nil if the buy side is empty.
func (b *Book) BestBid() *PriceLevel {
	if b.bestBid == pool.NullRef {
		return nil
	}
	return b.levels.Get(b.bestBid)
}

// BestAsk returns the lowest live sell level, or nil if the sell side is empty.
func (b *Book) BestAsk() *PriceLevel {
	if b.bestAsk == pool.NullRef {
		return nil
	}
	return b.levels.Get(b.bestAsk)
}

// AddOrder inserts a new resting order at price on side. clientOrderId is
// the caller's own lookup key, used to index the per-client order table;
// marketOrderId is the book-wide id that shows up in match events and need
// not be related to clientOrderId. A pool-exhaustion error here is fatal to
// the book: it means opts undersized the venue and the caller should treat
// it as a configuration failure, not a rejected order.
func (b *Book) AddOrder(client ClientId, clientOrderId, marketOrderId OrderId, side Side, price Price, qty Quantity) error {
	if side != SideBuy && side != SideSell {
		return ErrInvalidOrder
	}
	if qty == 0 {
		return ErrInvalidOrder
	}
	if price == InvalidPrice {
		return ErrInvalidPrice
	}
	if !b.ordersInRange(client, clientOrderId) {
		return ErrInvalidOrder
	}
	if existing := b.clientOrders[client][clientOrderId]; existing.Handle.Valid() {
		return ErrInvalidOrder
	}

	idx := b.priceIndex(price)
	ref := b.priceTable[idx]

	var lvl *PriceLevel
	created := false
	if ref == pool.NullRef {
		newRef, err := b.levels.Alloc(PriceLevel{
			Side:  side,
			Price: price,
			queue: NewOrderQueue(b.chunks),
			prev:  pool.NullRef,
			next:  pool.NullRef,
		})
		if err != nil {
			logger.Error("level pool exhausted", "instrument", b.instrument, "price", price, "side", side)
			return fmt.Errorf("%w: %v", ErrPoolExhausted, err)
		}
		lvl = b.levels.Get(newRef)
		lvl.prev = newRef
		lvl.next = newRef
		b.priceTable[idx] = newRef
		b.priceAt[idx] = price
		b.linkLevel(newRef)
		ref = newRef
		created = true

		if side == SideBuy {
			b.bidPrices.Insert(int64(price))
		} else {
			b.askPrices.Insert(int64(price))
		}
	} else {
		lvl = b.levels.Get(ref)
		if lvl.Price != price {
			logger.Warn("price collision rejected", "instrument", b.instrument, "price", price, "occupant", lvl.Price)
			return ErrPriceCollision
		}
	}

	handle, err := lvl.AddOrder(BasicOrder{
		OrderId:       marketOrderId,
		Qty:           qty,
		ClientId:      client,
		ClientOrderId: clientOrderId,
	})
	if err != nil {
		if created {
			b.removePriceLevel(ref)
		}
		logger.Error("chunk pool exhausted", "instrument", b.instrument, "price", price, "side", side)
		return fmt.Errorf("%w: %v", ErrPoolExhausted, err)
	}

	b.clientOrders[client][clientOrderId] = OrderInfo{Handle: handle, MarketOrderId: marketOrderId, Price: price}
	return nil
}

// RemoveOrder cancels a resting order by the client's own clientOrderId.
// Removing an order that does not exist -- already filled, already
// cancelled, or never placed -- is a silent no-op, matching
// OrderQueue.Cancel's idempotent contract.
func (b *Book) RemoveOrder(client ClientId, clientOrderId OrderId) {
	if !b.ordersInRange(client, clientOrderId) {
		return
	}
	info := b.clientOrders[client][clientOrderId]
	if !info.Handle.Valid() {
		return
	}
	b.clientOrders[client][clientOrderId] = OrderInfo{}

	lvl := b.GetPriceLevel(info.Price)
	if lvl == nil {
		return
	}
	lvl.CancelOrder(info.Handle)
	if lvl.IsEmpty() {
		b.removePriceLevel(b.priceTable[b.priceIndex(info.Price)])
	}
}

// Match walks the opposite side's levels, most aggressive first, filling the
// incoming order until it is exhausted, the book runs out of matchable
// liquidity, or the match buffer fills up. Fully-filled resting orders are
// cleared from their owner's order table in the same pass. The returned
// MatchResultSet aliases the book's internal buffer until the next Match call.
func (b *Book) Match(client ClientId, incomingOrderId OrderId, side Side, price Price, qty Quantity) MatchResultSet {
	if price == InvalidPrice {
		return MatchResultSet{RemainingQty: qty, Instrument: b.instrument}
	}

	var best *pool.Ref
	if side == SideBuy {
		best = &b.bestAsk
	} else {
		best = &b.bestBid
	}

	remaining := qty
	count := 0
	capEvents := len(b.matchBuf)

	for remaining > 0 && *best != pool.NullRef && count < capEvents {
		lvl := b.levels.Get(*best)
		if !lvl.IsMatchable(price) {
			break
		}
		resting := lvl.FrontOrder()
		if resting == nil {
			break
		}

		fill := remaining
		if resting.Qty < fill {
			fill = resting.Qty
		}
		remaining -= fill
		resting.Qty -= fill

		b.matchBuf[count] = MatchResult{
			IncomingOrderId:       incomingOrderId,
			MatchedOrderId:        resting.OrderId,
			Price:                 lvl.Price,
			Quantity:              fill,
			MatchedOrderRemaining: resting.Qty,
			IncomingClientId:      client,
			MatchedClientId:       resting.ClientId,
			IncomingSide:          side,
			MatchedSide:           lvl.Side,
		}
		count++

		if resting.Qty == 0 {
			ref := *best
			if b.ordersInRange(resting.ClientId, resting.ClientOrderId) {
				b.clientOrders[resting.ClientId][resting.ClientOrderId] = OrderInfo{}
			}
			lvl.PopFront()
			if lvl.IsEmpty() {
				b.removePriceLevel(ref)
			}
		}
	}

	overflow := count == capEvents && *best != pool.NullRef && b.levels.Get(*best).IsMatchable(price)

	return MatchResultSet{
		Matches:      b.matchBuf[:count],
		RemainingQty: remaining,
		Instrument:   b.instrument,
		Overflow:     overflow,
	}
}

// linkLevel threads a newly-allocated singleton level into its side's ring
// at the position its aggressiveness dictates, and updates the side's best
// pointer if it becomes the new front.
func (b *Book) linkLevel(ref pool.Ref) {
	lvl := b.levels.Get(ref)
	best := &b.bestBid
	if lvl.Side == SideSell {
		best = &b.bestAsk
	}

	if *best == pool.NullRef {
		*best = ref
		return
	}

	head := b.levels.Get(*best)
	if lvl.IsBetterThan(head) {
		b.insertBefore(*best, ref)
		*best = ref
		return
	}

	curLvl := head
	for {
		next := curLvl.next
		if next == *best {
			b.insertBefore(next, ref)
			return
		}
		nextLvl := b.levels.Get(next)
		if lvl.IsBetterThan(nextLvl) {
			b.insertBefore(next, ref)
			return
		}
		curLvl = nextLvl
	}
}

// insertBefore splices the singleton level new into the ring immediately
// before at.
func (b *Book) insertBefore(at, new pool.Ref) {
	atLvl := b.levels.Get(at)
	prevLvl := b.levels.Get(atLvl.prev)

	newLvl := b.levels.Get(new)
	newLvl.prev = atLvl.prev
	newLvl.next = at

	prevLvl.next = new
	atLvl.prev = new
}

// removePriceLevel unlinks and frees an emptied level, repointing the side's
// best pointer and the price table slot it occupied.
func (b *Book) removePriceLevel(ref pool.Ref) {
	lvl := b.levels.Get(ref)

	idx := b.priceIndex(lvl.Price)
	b.priceTable[idx] = pool.NullRef
	b.priceAt[idx] = 0

	if lvl.Side == SideBuy {
		b.bidPrices.Delete(int64(lvl.Price))
	} else {
		b.askPrices.Delete(int64(lvl.Price))
	}

	best := &b.bestBid
	if lvl.Side == SideSell {
		best = &b.bestAsk
	}

	if lvl.next == ref {
		// Singleton: ring collapses to empty.
		*best = pool.NullRef
	} else {
		prevLvl := b.levels.Get(lvl.prev)
		nextLvl := b.levels.Get(lvl.next)
		prevLvl.next = lvl.next
		nextLvl.prev = lvl.prev
		if *best == ref {
			*best = lvl.next
		}
	}

	lvl.queue.Destroy()
	b.levels.Free(ref)
}
