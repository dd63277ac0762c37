package book

import (
	"errors"

	"clobcore/fixedpoint"
	"clobcore/wire"
)

// Book is the sorted order book: two red-black trees keyed by price (bids
// descending, asks ascending), a shared order pool, and a secondary index
// from order ID to pool handle. The pool, the two trees, and the index
// form one coupled invariant set — every exported mutation leaves all
// three consistent before returning, or fails and leaves them untouched.
type Book struct {
	pool  *Pool
	bids  *rbTree // best = max key
	asks  *rbTree // best = min key
	index map[uint64]Handle

	nextOrderID uint64
	nextTradeID uint64
}

// WithCapacity constructs an empty book whose pool is bounded to n live
// orders; AddOrder returns ErrPoolFull once that many orders are resting
// at once. Counters start at 1, per spec.
func WithCapacity(n int) *Book {
	return &Book{
		pool:        NewPool(n, true),
		bids:        newRBTree(),
		asks:        newRBTree(),
		index:       make(map[uint64]Handle, n),
		nextOrderID: 1,
		nextTradeID: 1,
	}
}

// treeFor returns the sorted map that holds resting orders of side.
func (b *Book) treeFor(side wire.Side) *rbTree {
	if side == wire.SideBuy {
		return b.bids
	}
	return b.asks
}

// oppositeTreeFor returns the sorted map matching walks against for an
// incoming order of side (Buy walks asks, Sell walks bids).
func (b *Book) oppositeTreeFor(side wire.Side) *rbTree {
	if side == wire.SideBuy {
		return b.asks
	}
	return b.bids
}

// ValidateOrder checks price, quantity, remaining, side, and order type
// without mutating the book. The matching engine calls this on the
// incoming order before starting a match walk, since an invalid incoming
// must be rejected before any mutation (spec: "rejected before any
// mutation").
func ValidateOrder(o wire.Order) error {
	return validateOrder(o)
}

func validateOrder(o wire.Order) error {
	if o.Price == 0 || o.Quantity == 0 || o.Remaining == 0 {
		return ErrBadOrder
	}
	if o.Remaining > o.Quantity {
		return ErrBadOrder
	}
	if o.Side != wire.SideBuy && o.Side != wire.SideSell {
		return ErrBadOrder
	}
	if o.OrderType != wire.OrderTypeLimit {
		return ErrBadOrder
	}
	return nil
}

// AddOrder admits o, ignoring any ID field the caller set: the book is
// unconditionally authoritative for ID assignment. It validates price,
// quantity, remaining, side, and order type before any mutation; on
// failure the book is left exactly as it was. Returns the assigned ID.
func (b *Book) AddOrder(o wire.Order) (uint64, error) {
	if err := validateOrder(o); err != nil {
		return 0, err
	}

	tree := b.treeFor(o.Side)
	price := fixedpoint.Scaled(o.Price)
	level := tree.findLevel(uint64(price))
	willCreateLevel := level == nil

	o.ID = b.nextOrderID
	handle, err := b.pool.Insert(o)
	if err != nil {
		return 0, err
	}

	if willCreateLevel {
		level = tree.upsertLevel(uint64(price), func() *PriceLevel { return newPriceLevel(price) })
	}
	if err := level.pushBack(b.pool, handle); err != nil {
		// pushBack leaves the level unchanged when the level's aggregate
		// would overflow; undo the pool insert to preserve the pre-call state.
		_, _ = b.pool.Remove(handle)
		if willCreateLevel {
			tree.deleteLevel(uint64(price))
		}
		if errors.Is(err, fixedpoint.ErrOverflow) {
			err = ErrOverflow
		}
		return 0, err
	}

	b.index[o.ID] = handle
	b.nextOrderID++
	return o.ID, nil
}

// CancelOrder removes the resting order with the given ID and returns its
// last known state. ErrUnknown if no such order is live.
func (b *Book) CancelOrder(id uint64) (wire.Order, error) {
	handle, ok := b.index[id]
	if !ok {
		return wire.Order{}, ErrUnknown
	}
	node, err := b.pool.Get(handle)
	if err != nil {
		return wire.Order{}, ErrUnknown
	}
	order := node.Order
	tree := b.treeFor(order.Side)
	price := fixedpoint.Scaled(order.Price)
	level := tree.findLevel(uint64(price))
	if level == nil {
		return wire.Order{}, ErrUnknown
	}

	if err := level.reduceQuantity(fixedpoint.Scaled(order.Remaining)); err != nil {
		return wire.Order{}, err
	}
	if err := level.unlink(b.pool, handle); err != nil {
		return wire.Order{}, err
	}
	if _, err := b.pool.Remove(handle); err != nil {
		return wire.Order{}, err
	}
	delete(b.index, id)
	if level.Empty() {
		tree.deleteLevel(uint64(price))
	}
	return order, nil
}

// BestBid returns the highest resting bid price, if any.
func (b *Book) BestBid() (fixedpoint.Scaled, bool) {
	l := b.bids.maxLevel()
	if l == nil {
		return 0, false
	}
	return l.Price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (b *Book) BestAsk() (fixedpoint.Scaled, bool) {
	l := b.asks.minLevel()
	if l == nil {
		return 0, false
	}
	return l.Price, true
}

// Spread returns best_ask - best_bid, if both sides have resting orders.
func (b *Book) Spread() (fixedpoint.Scaled, bool, error) {
	bid, hasBid := b.BestBid()
	ask, hasAsk := b.BestAsk()
	if !hasBid || !hasAsk {
		return 0, false, nil
	}
	spread, err := fixedpoint.CheckedSub(ask, bid)
	if err != nil {
		return 0, false, err
	}
	return spread, true, nil
}

// OrderCount returns the number of live resting orders across both sides.
func (b *Book) OrderCount() int {
	return b.pool.Len()
}

// Depth returns the aggregate remaining quantity resting at price on side,
// if that price level currently exists.
func (b *Book) Depth(price fixedpoint.Scaled, side wire.Side) (fixedpoint.Scaled, bool) {
	l := b.treeFor(side).findLevel(uint64(price))
	if l == nil {
		return 0, false
	}
	return l.TotalQuantity, true
}

// BidLevels returns resting bid levels best-first (descending price).
func (b *Book) BidLevels() []*PriceLevel {
	var levels []*PriceLevel
	b.bids.forEachDescending(func(l *PriceLevel) bool {
		levels = append(levels, l)
		return true
	})
	return levels
}

// AskLevels returns resting ask levels best-first (ascending price).
func (b *Book) AskLevels() []*PriceLevel {
	var levels []*PriceLevel
	b.asks.forEachAscending(func(l *PriceLevel) bool {
		levels = append(levels, l)
		return true
	})
	return levels
}

// Clear resets the book to empty while keeping its pool's backing storage,
// leaving the ID/trade counters untouched.
func (b *Book) Clear() {
	b.bids.clear()
	b.asks.clear()
	for id := range b.index {
		delete(b.index, id)
	}
	p := b.pool
	p.nodes = p.nodes[:0]
	p.live = p.live[:0]
	p.free = p.free[:0]
	p.count = 0
}

// NextOrderID returns the ID that will be assigned to the next admitted
// order, without consuming it.
func (b *Book) NextOrderID() uint64 { return b.nextOrderID }

// NextTradeID returns the ID that will be assigned to the next emitted
// trade, without consuming it.
func (b *Book) NextTradeID() uint64 { return b.nextTradeID }

// AllocateTradeID consumes and returns the next trade ID. Only the
// matching engine calls this, once per emitted trade.
func (b *Book) AllocateTradeID() uint64 {
	id := b.nextTradeID
	b.nextTradeID++
	return id
}

// BestOppositeLevel returns the best resting price level an incoming order
// of incomingSide matches against (asks for a Buy, bids for a Sell), or
// nil if that side is empty. The returned level belongs to the tree keyed
// by incomingSide.Opposite() — pass that same opposite side to ApplyFill.
func (b *Book) BestOppositeLevel(incomingSide wire.Side) *PriceLevel {
	tree := b.oppositeTreeFor(incomingSide)
	if incomingSide == wire.SideBuy {
		return tree.minLevel()
	}
	return tree.maxLevel()
}

// HeadHandle returns the oldest handle resting in level.
func (b *Book) HeadHandle(level *PriceLevel) Handle {
	return level.peekHead()
}

// Node returns the pool node at h.
func (b *Book) Node(h Handle) (*OrderNode, error) {
	return b.pool.Get(h)
}

// ApplyFill records that traded quantity was matched against the maker
// resting at handle h within level. makerSide is the side the resting
// order lives on (the incoming order's Opposite()). It reduces the
// maker's remaining and the level's aggregate; if the maker is now fully
// filled it is unlinked, freed, and removed from the secondary index, and
// if the level is now empty it is removed from its sorted map.
func (b *Book) ApplyFill(makerSide wire.Side, level *PriceLevel, h Handle, traded fixedpoint.Scaled) error {
	node, err := b.pool.Get(h)
	if err != nil {
		return err
	}
	remaining, err := fixedpoint.CheckedSub(fixedpoint.Scaled(node.Order.Remaining), traded)
	if err != nil {
		return err
	}
	node.Order.Remaining = uint64(remaining)
	if err := level.reduceQuantity(traded); err != nil {
		return err
	}

	if remaining == 0 {
		if err := level.unlink(b.pool, h); err != nil {
			return err
		}
		id := node.Order.ID
		if _, err := b.pool.Remove(h); err != nil {
			return err
		}
		delete(b.index, id)
		if level.Empty() {
			b.treeFor(makerSide).deleteLevel(uint64(level.Price))
		}
	}
	return nil
}
