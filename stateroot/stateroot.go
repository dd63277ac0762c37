// Package stateroot computes the state root: a SHA-256 hash of a book's
// logical contents, independent of pool layout, handle values, or map
// implementation.
package stateroot

import (
	"crypto/sha256"
	"encoding/binary"

	"clobcore/book"
	"clobcore/wire"
)

const (
	tagBids     = 0x01
	tagAsks     = 0x02
	tagCounters = 0x03
)

// StateRoot returns the SHA-256 of b's canonical byte stream: a version
// tag, bid levels in descending price order (each with its FIFO of
// 50-byte Order encodings), a tag, ask levels ascending, a tag, then the
// two monotone counters.
func StateRoot(b *book.Book) [32]byte {
	h := sha256.New()

	h.Write([]byte{tagBids})
	writeLevels(h, b, b.BidLevels())

	h.Write([]byte{tagAsks})
	writeLevels(h, b, b.AskLevels())

	h.Write([]byte{tagCounters})
	writeUint64(h, b.NextOrderID())
	writeUint64(h, b.NextTradeID())

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeLevels(h interface{ Write([]byte) (int, error) }, b *book.Book, levels []*book.PriceLevel) {
	var priceBuf [8]byte
	var orderBuf [wire.OrderSize]byte
	for _, level := range levels {
		binary.LittleEndian.PutUint64(priceBuf[:], uint64(level.Price))
		h.Write(priceBuf[:])

		for handle := b.HeadHandle(level); handle != book.NoHandle; {
			node, err := b.Node(handle)
			if err != nil {
				// Unreachable: handle came from the level's own FIFO,
				// which the pool backs for as long as the level exists.
				break
			}
			wire.EncodeOrder(orderBuf[:], node.Order)
			h.Write(orderBuf[:])
			handle = node.Next
		}
	}
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}
