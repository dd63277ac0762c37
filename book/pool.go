// Package book implements the order pool, price levels, and the sorted
// order book: the storage and indexing layer the matching engine walks and
// mutates. Every type here is a pure in-memory structure — no I/O, no
// clock reads, no concurrency.
package book

import (
	"errors"

	"clobcore/wire"
)

// Handle is a stable, opaque reference to a node in a Pool. Handles are
// small integers; they may be reused after Remove but must never be
// dereferenced afterward.
type Handle uint32

// NoHandle is the sentinel value meaning "no node" (an empty prev/next link
// or an empty level).
const NoHandle Handle = ^Handle(0)

// OrderNode is what the pool stores per handle: the order itself plus the
// intrusive doubly-linked-list pointers used by the owning PriceLevel.
type OrderNode struct {
	Order wire.Order
	Prev  Handle
	Next  Handle
}

// ErrInvalidHandle is returned by Get and Remove when the handle was never
// issued, or was already removed.
var ErrInvalidHandle = errors.New("book: invalid handle")

// Pool is a fixed-capacity-by-default store of order nodes addressed by
// stable handles. Insert and Remove are O(1); a freed handle is recycled by
// the next Insert (LIFO), mirroring a fixed-capacity stack pool but keyed
// by index rather than by pointer so handles stay valid across growth.
type Pool struct {
	nodes   []OrderNode
	live    []bool
	free    []Handle
	count   int
	maxLen  int // 0 means unbounded
}

// NewPool pre-allocates storage for n nodes. If bounded is true, Insert
// past n live nodes fails with ErrPoolFull instead of growing; otherwise
// the backing slice grows past n as needed. Callers sizing a bounded pool
// to the book's peak depth get a no-fault hot path with no allocation
// after warmup.
func NewPool(n int, bounded bool) *Pool {
	p := &Pool{
		nodes: make([]OrderNode, 0, n),
		live:  make([]bool, 0, n),
		free:  make([]Handle, 0, n),
	}
	if bounded {
		p.maxLen = n
	}
	return p
}

// Len returns the number of live nodes currently held.
func (p *Pool) Len() int { return p.count }

// Insert stores o and returns a fresh (or recycled) handle for it. It
// fails with ErrPoolFull only if the pool was constructed bounded and is
// already at capacity.
func (p *Pool) Insert(o wire.Order) (Handle, error) {
	if p.maxLen > 0 && p.count >= p.maxLen {
		return NoHandle, ErrPoolFull
	}
	node := OrderNode{Order: o, Prev: NoHandle, Next: NoHandle}
	p.count++
	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		p.free = p.free[:n-1]
		p.nodes[h] = node
		p.live[h] = true
		return h, nil
	}
	h := Handle(len(p.nodes))
	p.nodes = append(p.nodes, node)
	p.live = append(p.live, true)
	return h, nil
}

// Remove frees h, returning the order it held. The handle must not be used
// again until it is reissued by a later Insert.
func (p *Pool) Remove(h Handle) (wire.Order, error) {
	if !p.valid(h) {
		return wire.Order{}, ErrInvalidHandle
	}
	o := p.nodes[h].Order
	p.live[h] = false
	p.nodes[h] = OrderNode{}
	p.free = append(p.free, h)
	p.count--
	return o, nil
}

// Get returns a mutable pointer to the node at h.
func (p *Pool) Get(h Handle) (*OrderNode, error) {
	if !p.valid(h) {
		return nil, ErrInvalidHandle
	}
	return &p.nodes[h], nil
}

func (p *Pool) valid(h Handle) bool {
	return h != NoHandle && int(h) < len(p.live) && p.live[h]
}
