package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() Order {
	return Order{
		ID:        1,
		UserID:    100,
		Side:      SideBuy,
		Price:     5_000_000_000_000,
		Quantity:  100_000_000,
		Remaining: 100_000_000,
		Timestamp: 1703577600000,
		OrderType: OrderTypeLimit,
	}
}

func TestOrderRoundTrip(t *testing.T) {
	o := sampleOrder()
	buf := MarshalOrder(o)
	require.Len(t, buf, OrderSize)
	got, err := DecodeOrder(buf)
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestOrderSize(t *testing.T) {
	assert.Equal(t, 50, OrderSize)
	assert.Len(t, MarshalOrder(sampleOrder()), 50)
}

func TestDecodeOrderTruncated(t *testing.T) {
	buf := MarshalOrder(sampleOrder())
	_, err := DecodeOrder(buf[:len(buf)-1])
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, Truncated, serr.Kind)
}

func TestDecodeOrderTrailingBytes(t *testing.T) {
	buf := append(MarshalOrder(sampleOrder()), 0x00)
	_, err := DecodeOrder(buf)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, TrailingBytes, serr.Kind)
}

func TestDecodeOrderInvalidSideTag(t *testing.T) {
	buf := MarshalOrder(sampleOrder())
	buf[16] = 2
	_, err := DecodeOrder(buf)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, InvalidEnumTag, serr.Kind)
}

func TestDecodeOrderInvalidOrderTypeTag(t *testing.T) {
	buf := MarshalOrder(sampleOrder())
	buf[49] = 7
	_, err := DecodeOrder(buf)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, InvalidEnumTag, serr.Kind)
}

func TestDecodeOrderRemainingExceedsQuantity(t *testing.T) {
	o := sampleOrder()
	o.Remaining = o.Quantity + 1
	buf := MarshalOrder(o)
	_, err := DecodeOrder(buf)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, InvariantViolation, serr.Kind)
}

func sampleTrade() Trade {
	return Trade{
		ID:           1,
		MakerOrderID: 100,
		TakerOrderID: 200,
		MakerUserID:  10,
		TakerUserID:  20,
		Price:        5_000_000_000_000,
		Quantity:     50_000_000,
		Timestamp:    1703577600000,
	}
}

func TestTradeRoundTrip(t *testing.T) {
	tr := sampleTrade()
	buf := MarshalTrade(tr)
	require.Len(t, buf, TradeSize)
	got, err := DecodeTrade(buf)
	require.NoError(t, err)
	assert.Equal(t, tr, got)
}

func TestTradeSize(t *testing.T) {
	assert.Equal(t, 64, TradeSize)
}

func TestTradeNotionalRaw(t *testing.T) {
	var price, qty uint64 = 5_000_000_000_000, 100_000_000
	tr := Trade{Price: price, Quantity: qty}
	hi, lo := tr.NotionalRaw()
	// 5e12 * 1e8 = 5e20 = 27*2^64 + 1937910009842106368.
	assert.Equal(t, uint64(27), hi)
	assert.Equal(t, price*qty, lo)
}

func sampleReceipt() ExecutionReceipt {
	var root [32]byte
	for i := range root {
		root[i] = byte(i)
	}
	return ExecutionReceipt{
		BatchID:         1,
		OrdersProcessed: 1000,
		TradesExecuted:  500,
		StateRoot:       root,
		Timestamp:       1703577600000,
	}
}

func TestReceiptRoundTrip(t *testing.T) {
	r := sampleReceipt()
	buf := MarshalReceipt(r)
	require.Len(t, buf, ReceiptSize)
	got, err := DecodeReceipt(buf)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestReceiptSize(t *testing.T) {
	assert.Equal(t, 64, ReceiptSize)
}

func TestReceiptIsEmpty(t *testing.T) {
	r := sampleReceipt()
	r.OrdersProcessed = 0
	assert.True(t, r.IsEmpty())
	assert.False(t, sampleReceipt().IsEmpty())
}

func TestDeterministicEncoding(t *testing.T) {
	o := sampleOrder()
	assert.Equal(t, MarshalOrder(o), MarshalOrder(o))
}
