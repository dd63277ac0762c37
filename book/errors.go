package book

import "errors"

// Error taxonomy for the order pool and order book. These are the only
// failure modes AddOrder and CancelOrder can return; every public mutation
// either succeeds and leaves the pool, the two sorted maps, and the
// secondary index consistent, or fails and leaves all three untouched.
var (
	// ErrBadOrder means an invalid price, quantity, remaining, enum tag,
	// or remaining-vs-quantity relation.
	ErrBadOrder = errors.New("book: bad order")
	// ErrUnknown means cancel referenced an unknown order ID.
	ErrUnknown = errors.New("book: unknown order id")
	// ErrPoolFull means capacity was exceeded on a bounded pool.
	ErrPoolFull = errors.New("book: pool full")
	// ErrOverflow means arithmetic overflow in scaled math during a
	// mutation: AddOrder returns it when a level's aggregate quantity
	// would exceed the 64-bit scaled range, and leaves the book unchanged.
	ErrOverflow = errors.New("book: overflow")
)
