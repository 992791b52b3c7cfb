// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package universal

import (
	"errors"
	"math/big"

	"codello.dev/der"
	"codello.dev/der/tlv"
)

var (
	bigOne          = big.NewInt(1)
	errEmptyInteger = errors.New("empty integer")
)

//region [UNIVERSAL 2] INTEGER and [UNIVERSAL 10] ENUMERATED

// Integer represents an ASN.1 INTEGER. The size of the value is not limited.
//
// See also section 19 of Rec. ITU-T X.680.
type Integer struct {
	element
	Value *big.Int
}

// NewInteger returns the DER encoding of v as an INTEGER.
func NewInteger(v *big.Int) (*Integer, error) {
	c, err := encode(der.TagInteger, EncodeInteger(v))
	if err != nil {
		return nil, err
	}
	return DecodeInteger(c)
}

// NewInt64 is like [NewInteger] for an int64 value.
func NewInt64(v int64) (*Integer, error) {
	return NewInteger(big.NewInt(v))
}

// DecodeInteger decodes the INTEGER at the current position of c.
func DecodeInteger(c *tlv.Cursor) (*Integer, error) {
	if err := expectTag(c, der.TagInteger); err != nil {
		return nil, err
	}
	v, err := DecodeIntegerBytes(c.Payload())
	if err != nil {
		return nil, &der.ValueError{Tag: der.TagInteger, Err: err}
	}
	return &Integer{newElement(c), v}, nil
}

// String returns the decimal representation of i.
func (i *Integer) String() string {
	return i.Value.String()
}

// Enumerated represents an ASN.1 ENUMERATED value. It is encoded like an
// [Integer].
//
// See also section 20 of Rec. ITU-T X.680.
type Enumerated struct {
	element
	Value *big.Int
}

// NewEnumerated returns the DER encoding of v as an ENUMERATED value.
func NewEnumerated(v *big.Int) (*Enumerated, error) {
	c, err := encode(der.TagEnumerated, EncodeInteger(v))
	if err != nil {
		return nil, err
	}
	return DecodeEnumerated(c)
}

// DecodeEnumerated decodes the ENUMERATED value at the current position of c.
func DecodeEnumerated(c *tlv.Cursor) (*Enumerated, error) {
	if err := expectTag(c, der.TagEnumerated); err != nil {
		return nil, err
	}
	v, err := DecodeIntegerBytes(c.Payload())
	if err != nil {
		return nil, &der.ValueError{Tag: der.TagEnumerated, Err: err}
	}
	return &Enumerated{newElement(c), v}, nil
}

// String returns the decimal representation of e.
func (e *Enumerated) String() string {
	return e.Value.String()
}

// EncodeInteger returns the minimal big-endian two's complement encoding of
// v. Zero is encoded as a single zero byte. A nil value encodes as zero.
func EncodeInteger(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return []byte{0x00}
	}
	if v.Sign() < 0 {
		// A negative number has to be converted to two's-complement
		// form. So we'll invert and subtract 1. If the
		// most-significant-bit isn't set then we'll need to pad the
		// beginning with 0xff in order to keep the number negative.
		nMinus1 := new(big.Int).Neg(v)
		nMinus1.Sub(nMinus1, bigOne)
		bs := nMinus1.Bytes()
		for i := range bs {
			bs[i] ^= 0xff
		}
		if len(bs) == 0 || bs[0]&0x80 == 0 {
			return append([]byte{0xff}, bs...)
		}
		return bs
	}
	bs := v.Bytes()
	if bs[0]&0x80 != 0 {
		// We'll have to pad this with 0x00 in order to stop it
		// looking like a negative number.
		return append([]byte{0x00}, bs...)
	}
	return bs
}

// DecodeIntegerBytes decodes a big-endian two's complement integer. Redundant
// leading 0x00 or 0xff bytes are accepted. An empty input is an error.
func DecodeIntegerBytes(b []byte) (*big.Int, error) {
	if len(b) == 0 {
		return nil, errEmptyInteger
	}
	i := new(big.Int)
	if b[0]&0x80 == 0x80 {
		// negative integer, calculate 2s complement
		bs := make([]byte, len(b))
		for j := range b {
			bs[j] = ^b[j]
		}
		i.SetBytes(bs)
		i.Add(i, bigOne)
		i.Neg(i)
	} else {
		i.SetBytes(b)
	}
	return i, nil
}

//endregion
