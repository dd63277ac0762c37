// Package matching implements price-time-priority order matching against a
// book.Book: it walks the opposite side's best price while compatible,
// consumes resting orders FIFO, emits trades at the maker's price, and
// admits any Limit residual.
package matching

import (
	"clobcore/book"
	"clobcore/fixedpoint"
	"clobcore/wire"
)

// MatchResult reports the outcome of a single MatchOrder call.
type MatchResult struct {
	Trades      []wire.Trade
	FullyFilled bool
	Remaining   fixedpoint.Scaled
	// RestingID is the ID assigned to the admitted residual, if any.
	RestingID *uint64
}

// MatchOrder matches incoming against the opposite side of b, using
// timestamp for every trade and (if a Limit residual rests) for the
// admitted order. incoming.ID and incoming.Remaining are ignored on entry
// and reset to 0 and incoming.Quantity respectively: the book is the only
// authority on order IDs, and remaining always starts equal to quantity.
//
// incoming is rejected with book.ErrBadOrder before any mutation if it is
// invalid. The walk's only arithmetic is checked subtraction of the traded
// quantity, which is the minimum of the incoming and maker remainders, so
// it cannot underflow and cannot overflow; any error from those checks
// (fixedpoint.ErrUnderflow) would be returned unchanged.
func MatchOrder(b *book.Book, incoming wire.Order, timestamp uint64) (MatchResult, error) {
	incoming.ID = 0
	incoming.Remaining = incoming.Quantity
	incoming.Timestamp = timestamp
	if err := book.ValidateOrder(incoming); err != nil {
		return MatchResult{}, err
	}

	makerSide := incoming.Side.Opposite()
	var trades []wire.Trade

	for incoming.Remaining > 0 {
		level := b.BestOppositeLevel(incoming.Side)
		if level == nil {
			break
		}
		if !compatible(incoming.Side, fixedpoint.Scaled(incoming.Price), level.Price) {
			break
		}

		for level.OrderCount > 0 && incoming.Remaining > 0 {
			h := b.HeadHandle(level)
			node, err := b.Node(h)
			if err != nil {
				return MatchResult{}, err
			}
			maker := node.Order

			traded := minRemaining(incoming.Remaining, maker.Remaining)

			trades = append(trades, wire.Trade{
				ID:           b.AllocateTradeID(),
				MakerOrderID: maker.ID,
				TakerOrderID: incoming.ID,
				MakerUserID:  maker.UserID,
				TakerUserID:  incoming.UserID,
				Price:        maker.Price,
				Quantity:     uint64(traded),
				Timestamp:    incoming.Timestamp,
			})

			newRemaining, err := fixedpoint.CheckedSub(fixedpoint.Scaled(incoming.Remaining), traded)
			if err != nil {
				return MatchResult{}, err
			}
			incoming.Remaining = uint64(newRemaining)

			if err := b.ApplyFill(makerSide, level, h, traded); err != nil {
				return MatchResult{}, err
			}
		}
	}

	result := MatchResult{Trades: trades}
	if incoming.Remaining == 0 {
		result.FullyFilled = true
		return result, nil
	}

	result.Remaining = fixedpoint.Scaled(incoming.Remaining)
	if incoming.OrderType == wire.OrderTypeLimit {
		id, err := b.AddOrder(incoming)
		if err != nil {
			return MatchResult{}, err
		}
		result.RestingID = &id
	}
	return result, nil
}

// compatible reports whether an incoming order of side may trade at the
// opposite side's best price: a Buy matches iff that price is at most its
// limit price; a Sell matches iff that price is at least its limit price.
func compatible(side wire.Side, incomingPrice, bestOppositePrice fixedpoint.Scaled) bool {
	if side == wire.SideBuy {
		return bestOppositePrice <= incomingPrice
	}
	return bestOppositePrice >= incomingPrice
}

// minRemaining returns the smaller of two scaled remaining quantities.
func minRemaining(a, b uint64) fixedpoint.Scaled {
	if a < b {
		return fixedpoint.Scaled(a)
	}
	return fixedpoint.Scaled(b)
}
