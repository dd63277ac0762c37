package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clobcore/book"
	"clobcore/fixedpoint"
	"clobcore/stateroot"
	"clobcore/wire"
)

const scale = fixedpoint.Scale

func limitOrder(side wire.Side, price, qty uint64) wire.Order {
	return wire.Order{
		UserID:    1,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Remaining: qty,
		OrderType: wire.OrderTypeLimit,
	}
}

// S1: empty-book rest.
func TestScenarioEmptyBookRest(t *testing.T) {
	b := book.WithCapacity(16)
	incoming := limitOrder(wire.SideBuy, 50_000*scale, 1*scale)

	result, err := MatchOrder(b, incoming, 1)
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	require.NotNil(t, result.RestingID)
	assert.Equal(t, uint64(1), *result.RestingID)

	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 50_000*scale, bid)
	assert.Equal(t, 1, b.OrderCount())
}

// S2: full match at maker price.
func TestScenarioFullMatchAtMakerPrice(t *testing.T) {
	b := book.WithCapacity(16)
	_, err := b.AddOrder(limitOrder(wire.SideSell, 50_000*scale, 1*scale))
	require.NoError(t, err)

	incoming := limitOrder(wire.SideBuy, 50_000*scale, 1*scale)
	result, err := MatchOrder(b, incoming, 2)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.EqualValues(t, 50_000*scale, trade.Price)
	assert.EqualValues(t, 1*scale, trade.Quantity)
	assert.EqualValues(t, 1, trade.MakerOrderID)
	assert.True(t, result.FullyFilled)
	assert.Nil(t, result.RestingID)

	assert.Equal(t, 0, b.OrderCount())
	assert.Equal(t, uint64(2), b.NextOrderID())
	assert.Equal(t, uint64(2), b.NextTradeID())
}

// S3: partial taker residual.
func TestScenarioPartialTakerResidual(t *testing.T) {
	b := book.WithCapacity(16)
	_, err := b.AddOrder(limitOrder(wire.SideSell, 50_000*scale, 1*scale))
	require.NoError(t, err)

	incoming := limitOrder(wire.SideBuy, 50_000*scale, 2*scale)
	result, err := MatchOrder(b, incoming, 3)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.EqualValues(t, 1*scale, result.Trades[0].Quantity)
	require.NotNil(t, result.RestingID)
	assert.Equal(t, uint64(2), *result.RestingID)

	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.EqualValues(t, 50_000*scale, bid)
	assert.Equal(t, 1, b.OrderCount())
}

// S4: price priority.
func TestScenarioPricePriority(t *testing.T) {
	b := book.WithCapacity(16)
	_, err := b.AddOrder(limitOrder(wire.SideSell, 51_000*scale, 1*scale))
	require.NoError(t, err)
	_, err = b.AddOrder(limitOrder(wire.SideSell, 50_000*scale, 1*scale))
	require.NoError(t, err)
	_, err = b.AddOrder(limitOrder(wire.SideSell, 52_000*scale, 1*scale))
	require.NoError(t, err)

	incoming := limitOrder(wire.SideBuy, 52_000*scale, 1*scale)
	result, err := MatchOrder(b, incoming, 4)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.EqualValues(t, 50_000*scale, result.Trades[0].Price)
	assert.EqualValues(t, 2, result.Trades[0].MakerOrderID)
	assert.True(t, result.FullyFilled)
}

// S5: time priority within a level.
func TestScenarioTimePriorityWithinLevel(t *testing.T) {
	b := book.WithCapacity(16)
	id1, err := b.AddOrder(limitOrder(wire.SideBuy, 50_000*scale, 1*scale))
	require.NoError(t, err)
	id2, err := b.AddOrder(limitOrder(wire.SideBuy, 50_000*scale, 1*scale))
	require.NoError(t, err)

	incoming := limitOrder(wire.SideSell, 50_000*scale, 1*scale)
	result, err := MatchOrder(b, incoming, 5)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, id1, result.Trades[0].MakerOrderID)

	_, err = b.CancelOrder(id2)
	require.NoError(t, err)
}

func TestIncompatiblePriceRests(t *testing.T) {
	b := book.WithCapacity(16)
	_, err := b.AddOrder(limitOrder(wire.SideSell, 51_000*scale, 1*scale))
	require.NoError(t, err)

	incoming := limitOrder(wire.SideBuy, 50_000*scale, 1*scale)
	result, err := MatchOrder(b, incoming, 6)
	require.NoError(t, err)
	assert.Empty(t, result.Trades)
	require.NotNil(t, result.RestingID)
}

func TestMatchOrderRejectsBadOrder(t *testing.T) {
	b := book.WithCapacity(16)
	_, err := MatchOrder(b, limitOrder(wire.SideBuy, 0, 1*scale), 1)
	assert.ErrorIs(t, err, book.ErrBadOrder)
	assert.Equal(t, 0, b.OrderCount())
}

func TestTradePriceAlwaysMakerPrice(t *testing.T) {
	b := book.WithCapacity(16)
	_, err := b.AddOrder(limitOrder(wire.SideSell, 49_000*scale, 1*scale))
	require.NoError(t, err)

	incoming := limitOrder(wire.SideBuy, 50_000*scale, 1*scale)
	result, err := MatchOrder(b, incoming, 7)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	assert.EqualValues(t, 49_000*scale, result.Trades[0].Price)
}

func TestDeterministicAcrossTwoFreshBooks(t *testing.T) {
	run := func() ([]wire.Trade, [32]byte) {
		b := book.WithCapacity(64)
		var trades []wire.Trade
		script := []wire.Order{
			limitOrder(wire.SideSell, 100*scale, 5*scale),
			limitOrder(wire.SideSell, 101*scale, 3*scale),
			limitOrder(wire.SideBuy, 101*scale, 6*scale),
			limitOrder(wire.SideBuy, 99*scale, 2*scale),
			limitOrder(wire.SideSell, 99*scale, 1*scale),
		}
		for i, o := range script {
			result, err := MatchOrder(b, o, uint64(i+1))
			require.NoError(t, err)
			trades = append(trades, result.Trades...)
		}
		return trades, stateroot.StateRoot(b)
	}

	trades1, root1 := run()
	trades2, root2 := run()
	assert.Equal(t, trades1, trades2)
	assert.Equal(t, root1, root2)
}
