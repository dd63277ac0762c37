package book

import (
	"clobcore/fixedpoint"
)

// PriceLevel is a single price's resting-order queue: an intrusive FIFO of
// pool handles plus the aggregate remaining quantity. It never holds
// orders directly, only handles into the owning Book's Pool.
type PriceLevel struct {
	Price         fixedpoint.Scaled
	Head          Handle
	Tail          Handle
	TotalQuantity fixedpoint.Scaled
	OrderCount    int
}

func newPriceLevel(price fixedpoint.Scaled) *PriceLevel {
	return &PriceLevel{Price: price, Head: NoHandle, Tail: NoHandle}
}

// Empty reports whether the level's queue holds no orders. head == NoHandle
// iff tail == NoHandle iff OrderCount == 0.
func (l *PriceLevel) Empty() bool {
	return l.OrderCount == 0
}

// pushBack appends h at the tail of the queue and adds the node's
// remaining quantity to the aggregate. If the aggregate would overflow it
// fails before linking h, leaving the level unchanged.
func (l *PriceLevel) pushBack(pool *Pool, h Handle) error {
	node, err := pool.Get(h)
	if err != nil {
		return err
	}
	total, err := fixedpoint.CheckedAdd(l.TotalQuantity, fixedpoint.Scaled(node.Order.Remaining))
	if err != nil {
		return err
	}
	node.Prev = l.Tail
	node.Next = NoHandle
	if l.Tail != NoHandle {
		tail, err := pool.Get(l.Tail)
		if err != nil {
			return err
		}
		tail.Next = h
	} else {
		l.Head = h
	}
	l.Tail = h
	l.OrderCount++
	l.TotalQuantity = total
	return nil
}

// unlink removes h from the queue in O(1) using its prev/next links. It
// does not change the aggregate: callers subtract the node's remaining
// via reduceQuantity before unlinking.
func (l *PriceLevel) unlink(pool *Pool, h Handle) error {
	node, err := pool.Get(h)
	if err != nil {
		return err
	}
	if node.Prev != NoHandle {
		prev, err := pool.Get(node.Prev)
		if err != nil {
			return err
		}
		prev.Next = node.Next
	} else {
		l.Head = node.Next
	}
	if node.Next != NoHandle {
		next, err := pool.Get(node.Next)
		if err != nil {
			return err
		}
		next.Prev = node.Prev
	} else {
		l.Tail = node.Prev
	}
	node.Prev = NoHandle
	node.Next = NoHandle
	l.OrderCount--
	return nil
}

// peekHead returns the oldest handle in the queue, or NoHandle if empty.
func (l *PriceLevel) peekHead() Handle {
	return l.Head
}

// reduceQuantity decreases the aggregate remaining by delta. Underflow is
// an invariant violation: the caller is expected to have validated that
// delta never exceeds the aggregate.
func (l *PriceLevel) reduceQuantity(delta fixedpoint.Scaled) error {
	total, err := fixedpoint.CheckedSub(l.TotalQuantity, delta)
	if err != nil {
		return err
	}
	l.TotalQuantity = total
	return nil
}
