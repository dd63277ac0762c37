// Package clob is the external-facing facade over the matching core: the
// only entry point callers need, wrapping the order book, the matching
// engine, and the state-root function behind one small method set. It has
// no files, no environment variables, no sockets — every dependency is
// passed in explicitly.
package clob

import (
	"clobcore/book"
	"clobcore/fixedpoint"
	"clobcore/matching"
	"clobcore/stateroot"
	"clobcore/wire"
)

// Re-exported so callers never need to import clobcore/wire or
// clobcore/book directly for the common path.
type (
	Order            = wire.Order
	Trade            = wire.Trade
	ExecutionReceipt = wire.ExecutionReceipt
	Side             = wire.Side
	OrderType        = wire.OrderType
)

const (
	SideBuy   = wire.SideBuy
	SideSell  = wire.SideSell
	OrderLimit = wire.OrderTypeLimit
)

// MatchResult reports the outcome of a MatchOrder call.
type MatchResult = matching.MatchResult

// Book is the sole write entry point into the matching core.
type Book struct {
	inner *book.Book
}

// WithCapacity constructs an empty book whose pool is bounded to n live
// orders.
func WithCapacity(n int) *Book {
	return &Book{inner: book.WithCapacity(n)}
}

// AddOrder admits a pre-constructed order, used for seeding or testing and
// by the matching engine's residual path. The book assigns the ID; any ID
// set on order is ignored.
func (b *Book) AddOrder(order Order) (uint64, error) {
	return b.inner.AddOrder(order)
}

// CancelOrder removes the resting order with the given ID.
func (b *Book) CancelOrder(orderID uint64) (Order, error) {
	return b.inner.CancelOrder(orderID)
}

// BestBid returns the highest resting bid price, if any.
func (b *Book) BestBid() (uint64, bool) {
	p, ok := b.inner.BestBid()
	return uint64(p), ok
}

// BestAsk returns the lowest resting ask price, if any.
func (b *Book) BestAsk() (uint64, bool) {
	p, ok := b.inner.BestAsk()
	return uint64(p), ok
}

// Spread returns best_ask - best_bid, if both sides have resting orders.
func (b *Book) Spread() (uint64, bool, error) {
	s, ok, err := b.inner.Spread()
	return uint64(s), ok, err
}

// OrderCount returns the number of live resting orders across both sides.
func (b *Book) OrderCount() int {
	return b.inner.OrderCount()
}

// Depth returns the aggregate remaining quantity resting at price on side.
func (b *Book) Depth(price uint64, side Side) (uint64, bool) {
	d, ok := b.inner.Depth(fixedpoint.Scaled(price), side)
	return uint64(d), ok
}

// Clear resets the book to empty, keeping its ID and trade counters.
func (b *Book) Clear() {
	b.inner.Clear()
}

// StateRoot returns the SHA-256 state root of the book's current logical
// contents.
func (b *Book) StateRoot() [32]byte {
	return stateroot.StateRoot(b.inner)
}

// MatchOrder matches incoming against b's opposite side, using timestamp
// for every trade it emits and for any admitted Limit residual. The book
// never reads a clock: timestamp is the caller's canonical value.
func MatchOrder(b *Book, incoming Order, timestamp uint64) (MatchResult, error) {
	return matching.MatchOrder(b.inner, incoming, timestamp)
}
