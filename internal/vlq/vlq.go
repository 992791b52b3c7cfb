// Package vlq implements [Variable-length quantity] encoding as used in BER
// object identifier arcs. A VLQ is essentially a base-128 representation of an
// unsigned integer with the addition of the eighth bit to mark continuation of
// bytes. VLQ is identical to [LEB128] except in endianness.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
// [LEB128]: https://en.wikipedia.org/wiki/LEB128
package vlq

import (
	"errors"
	"io"
	"math/big"
)

var (
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	ErrTruncated  = errors.New("vlq is truncated")
)

// Length returns the number of bytes needed to encode n as a VLQ.
func Length[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](n T) int {
	if n == 0 {
		return 1
	}
	l := 0
	for i := n; i > 0; i >>= 7 {
		l++
	}
	return l
}

// Append appends the VLQ encoding of n to b and returns the extended buffer.
func Append[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](b []byte, n T) []byte {
	for j := Length(n) - 1; j >= 0; j-- {
		c := byte(n>>(j*7)) & 0x7f
		if j > 0 {
			c |= 0x80
		}
		b = append(b, c)
	}
	return b
}

// LengthBig returns the number of bytes needed to encode n as a VLQ. n must not
// be negative.
func LengthBig(n *big.Int) int {
	if n.Sign() == 0 {
		return 1
	}
	return (n.BitLen() + 6) / 7
}

// AppendBig appends the VLQ encoding of n to b and returns the extended buffer.
// n must not be negative.
func AppendBig(b []byte, n *big.Int) []byte {
	if n.IsUint64() {
		return Append(b, n.Uint64())
	}
	l := LengthBig(n)
	for j := l - 1; j >= 0; j-- {
		var c byte
		for k := 6; k >= 0; k-- {
			c = c<<1 | byte(n.Bit(j*7+k))
		}
		if j > 0 {
			c |= 0x80
		}
		b = append(b, c)
	}
	return b
}

// ReadBig parses a minimally encoded VLQ from r. The value has no upper bound.
//
// If r returns io.EOF on the first read, the returned error will be io.EOF as
// well. If r ends within the VLQ, the error is [ErrTruncated]. A VLQ that starts
// with a 0x80 byte is rejected with [ErrNotMinimal].
func ReadBig(r io.ByteReader) (*big.Int, error) {
	b, err := r.ReadByte()
	if err != nil {
		// io.EOF stays io.EOF
		return nil, err
	}
	if b == 0x80 {
		return nil, ErrNotMinimal
	}

	// Accumulate in a machine word as long as possible.
	var small uint64
	var ret *big.Int
	for {
		if ret == nil && small>>57 != 0 {
			ret = new(big.Int).SetUint64(small)
		}
		if ret != nil {
			ret.Lsh(ret, 7)
			ret.Or(ret, big.NewInt(int64(b&0x7f)))
		} else {
			small = small<<7 | uint64(b&0x7f)
		}
		if b&0x80 == 0 {
			break
		}
		if b, err = r.ReadByte(); err != nil {
			if err == io.EOF {
				err = ErrTruncated
			}
			return nil, err
		}
	}
	if ret == nil {
		ret = new(big.Int).SetUint64(small)
	}
	return ret, nil
}
