// Package wire implements the canonical fixed-width binary encoding for
// Order, Trade, and ExecutionReceipt. The layout is little-endian, fields
// concatenated in declaration order with no padding and no framing, so that
// the same logical value always produces the same bytes regardless of host
// or implementation language.
package wire

import (
	"encoding/binary"
	"math/bits"
)

// Side is an order side, serialized as a single byte.
type Side uint8

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

// Opposite returns the other side: Buy consumes resting Sell orders and
// vice versa.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType is an order type, serialized as a single byte. Limit is the
// only variant this core supports.
type OrderType uint8

const (
	OrderTypeLimit OrderType = 0
)

// OrderSize is the exact wire length of an Order: id, user_id, price,
// quantity, remaining, timestamp (6×8 bytes) plus side and order_type
// (2×1 byte).
const OrderSize = 8*6 + 1*2

// TradeSize is the exact wire length of a Trade: eight u64 fields.
const TradeSize = 8 * 8

// ReceiptSize is the exact wire length of an ExecutionReceipt: three u64
// fields, a 32-byte state root, and a trailing u64 timestamp.
const ReceiptSize = 8*3 + 32 + 8

// Order is the canonical on-wire order representation. Field order matches
// the declaration order below exactly; this is also the in-memory layout
// used throughout the book and matching packages.
type Order struct {
	ID        uint64
	UserID    uint64
	Side      Side
	Price     uint64
	Quantity  uint64
	Remaining uint64
	Timestamp uint64
	OrderType OrderType
}

// Trade is the canonical on-wire trade representation.
type Trade struct {
	ID            uint64
	MakerOrderID  uint64
	TakerOrderID  uint64
	MakerUserID   uint64
	TakerUserID   uint64
	Price         uint64
	Quantity      uint64
	Timestamp     uint64
}

// NotionalRaw returns price*quantity as an unsigned 128-bit product,
// represented as (hi, lo) 64-bit halves. The result is scaled by 10^16;
// dividing by Scale^2 recovers the actual notional.
func (t Trade) NotionalRaw() (hi, lo uint64) {
	return bits.Mul64(t.Price, t.Quantity)
}

// ExecutionReceipt is the canonical on-wire batch receipt.
type ExecutionReceipt struct {
	BatchID         uint64
	OrdersProcessed uint64
	TradesExecuted  uint64
	StateRoot       [32]byte
	Timestamp       uint64
}

// IsEmpty reports whether the receipt covers a batch with no orders
// processed.
func (r ExecutionReceipt) IsEmpty() bool {
	return r.OrdersProcessed == 0
}

// Kind enumerates the ways a decode can fail.
type Kind uint8

const (
	Truncated Kind = iota
	TrailingBytes
	InvalidEnumTag
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case TrailingBytes:
		return "trailing bytes"
	case InvalidEnumTag:
		return "invalid enum tag"
	case InvariantViolation:
		return "invariant violation"
	default:
		return "unknown"
	}
}

// SerializationError reports why a decode was rejected.
type SerializationError struct {
	Kind   Kind
	Detail string
}

func (e *SerializationError) Error() string {
	if e.Detail == "" {
		return "wire: " + e.Kind.String()
	}
	return "wire: " + e.Kind.String() + ": " + e.Detail
}

// EncodeOrder writes the canonical 50-byte encoding of o into dst, which
// must be at least OrderSize bytes.
func EncodeOrder(dst []byte, o Order) {
	binary.LittleEndian.PutUint64(dst[0:8], o.ID)
	binary.LittleEndian.PutUint64(dst[8:16], o.UserID)
	dst[16] = byte(o.Side)
	binary.LittleEndian.PutUint64(dst[17:25], o.Price)
	binary.LittleEndian.PutUint64(dst[25:33], o.Quantity)
	binary.LittleEndian.PutUint64(dst[33:41], o.Remaining)
	binary.LittleEndian.PutUint64(dst[41:49], o.Timestamp)
	dst[49] = byte(o.OrderType)
}

// MarshalOrder allocates and returns the canonical encoding of o.
func MarshalOrder(o Order) []byte {
	buf := make([]byte, OrderSize)
	EncodeOrder(buf, o)
	return buf
}

// DecodeOrder parses the canonical encoding of an Order from src, rejecting
// any length mismatch, invalid enum tag, or remaining-vs-quantity violation.
func DecodeOrder(src []byte) (Order, error) {
	if len(src) < OrderSize {
		return Order{}, &SerializationError{Kind: Truncated, Detail: "order"}
	}
	if len(src) > OrderSize {
		return Order{}, &SerializationError{Kind: TrailingBytes, Detail: "order"}
	}

	sideRaw := src[16]
	if sideRaw != byte(SideBuy) && sideRaw != byte(SideSell) {
		return Order{}, &SerializationError{Kind: InvalidEnumTag, Detail: "side"}
	}
	typeRaw := src[49]
	if typeRaw != byte(OrderTypeLimit) {
		return Order{}, &SerializationError{Kind: InvalidEnumTag, Detail: "order_type"}
	}

	o := Order{
		ID:        binary.LittleEndian.Uint64(src[0:8]),
		UserID:    binary.LittleEndian.Uint64(src[8:16]),
		Side:      Side(sideRaw),
		Price:     binary.LittleEndian.Uint64(src[17:25]),
		Quantity:  binary.LittleEndian.Uint64(src[25:33]),
		Remaining: binary.LittleEndian.Uint64(src[33:41]),
		Timestamp: binary.LittleEndian.Uint64(src[41:49]),
		OrderType: OrderType(typeRaw),
	}
	if o.Remaining > o.Quantity {
		return Order{}, &SerializationError{Kind: InvariantViolation, Detail: "remaining > quantity"}
	}
	return o, nil
}

// EncodeTrade writes the canonical 64-byte encoding of t into dst, which
// must be at least TradeSize bytes.
func EncodeTrade(dst []byte, t Trade) {
	binary.LittleEndian.PutUint64(dst[0:8], t.ID)
	binary.LittleEndian.PutUint64(dst[8:16], t.MakerOrderID)
	binary.LittleEndian.PutUint64(dst[16:24], t.TakerOrderID)
	binary.LittleEndian.PutUint64(dst[24:32], t.MakerUserID)
	binary.LittleEndian.PutUint64(dst[32:40], t.TakerUserID)
	binary.LittleEndian.PutUint64(dst[40:48], t.Price)
	binary.LittleEndian.PutUint64(dst[48:56], t.Quantity)
	binary.LittleEndian.PutUint64(dst[56:64], t.Timestamp)
}

// MarshalTrade allocates and returns the canonical encoding of t.
func MarshalTrade(t Trade) []byte {
	buf := make([]byte, TradeSize)
	EncodeTrade(buf, t)
	return buf
}

// DecodeTrade parses the canonical encoding of a Trade from src.
func DecodeTrade(src []byte) (Trade, error) {
	if len(src) < TradeSize {
		return Trade{}, &SerializationError{Kind: Truncated, Detail: "trade"}
	}
	if len(src) > TradeSize {
		return Trade{}, &SerializationError{Kind: TrailingBytes, Detail: "trade"}
	}
	return Trade{
		ID:           binary.LittleEndian.Uint64(src[0:8]),
		MakerOrderID: binary.LittleEndian.Uint64(src[8:16]),
		TakerOrderID: binary.LittleEndian.Uint64(src[16:24]),
		MakerUserID:  binary.LittleEndian.Uint64(src[24:32]),
		TakerUserID:  binary.LittleEndian.Uint64(src[32:40]),
		Price:        binary.LittleEndian.Uint64(src[40:48]),
		Quantity:     binary.LittleEndian.Uint64(src[48:56]),
		Timestamp:    binary.LittleEndian.Uint64(src[56:64]),
	}, nil
}

// EncodeReceipt writes the canonical 64-byte encoding of r into dst, which
// must be at least ReceiptSize bytes.
func EncodeReceipt(dst []byte, r ExecutionReceipt) {
	binary.LittleEndian.PutUint64(dst[0:8], r.BatchID)
	binary.LittleEndian.PutUint64(dst[8:16], r.OrdersProcessed)
	binary.LittleEndian.PutUint64(dst[16:24], r.TradesExecuted)
	copy(dst[24:56], r.StateRoot[:])
	binary.LittleEndian.PutUint64(dst[56:64], r.Timestamp)
}

// MarshalReceipt allocates and returns the canonical encoding of r.
func MarshalReceipt(r ExecutionReceipt) []byte {
	buf := make([]byte, ReceiptSize)
	EncodeReceipt(buf, r)
	return buf
}

// DecodeReceipt parses the canonical encoding of an ExecutionReceipt from
// src.
func DecodeReceipt(src []byte) (ExecutionReceipt, error) {
	if len(src) < ReceiptSize {
		return ExecutionReceipt{}, &SerializationError{Kind: Truncated, Detail: "receipt"}
	}
	if len(src) > ReceiptSize {
		return ExecutionReceipt{}, &SerializationError{Kind: TrailingBytes, Detail: "receipt"}
	}
	var r ExecutionReceipt
	r.BatchID = binary.LittleEndian.Uint64(src[0:8])
	r.OrdersProcessed = binary.LittleEndian.Uint64(src[8:16])
	r.TradesExecuted = binary.LittleEndian.Uint64(src[16:24])
	copy(r.StateRoot[:], src[24:56])
	r.Timestamp = binary.LittleEndian.Uint64(src[56:64])
	return r, nil
}
