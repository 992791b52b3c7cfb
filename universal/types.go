// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package universal

import (
	"errors"
	"slices"
	"strings"

	"codello.dev/der"
	"codello.dev/der/tlv"
)

//region [UNIVERSAL 1] BOOLEAN

var errBooleanLength = errors.New("boolean must be exactly one byte")

// Boolean represents an ASN.1 BOOLEAN value. DER encodes true as 0xff. When
// decoding, any non-zero byte is accepted as true.
//
// See also section 18 of Rec. ITU-T X.680.
type Boolean struct {
	element
	Value bool
}

// NewBoolean returns the DER encoding of v.
func NewBoolean(v bool) *Boolean {
	b := byte(0x00)
	if v {
		b = 0xff
	}
	return &Boolean{element{raw: []byte{byte(der.TagBoolean), 0x01, b}, hdr: 2}, v}
}

// DecodeBoolean decodes the BOOLEAN at the current position of c.
func DecodeBoolean(c *tlv.Cursor) (*Boolean, error) {
	if err := expectTag(c, der.TagBoolean); err != nil {
		return nil, err
	}
	if c.PayloadLength() != 1 {
		return nil, &der.ValueError{Tag: der.TagBoolean, Err: errBooleanLength}
	}
	return &Boolean{newElement(c), c.Payload()[0] != 0}, nil
}

//endregion

//region [UNIVERSAL 3] BIT STRING

var (
	errEmptyBitString = errors.New("zero length BIT STRING")
	errBitPadding     = errors.New("invalid padding bits in BIT STRING")
)

// BitString represents an ASN.1 BIT STRING. The bits are padded up to the
// nearest byte in Bits and the number of valid bits is recorded in BitLength.
// Padding bits are encoded and decoded as zero bits.
//
// A BIT STRING may wrap a nested encoding, such as the public key of a
// certificate. In that case a [tlv.Cursor] positioned on the BIT STRING
// reports it as a container.
//
// See also section 22 of Rec. ITU-T X.680.
type BitString struct {
	element
	Bits      []byte // bits packed into bytes.
	BitLength int    // length in bits.
}

// NewBitString returns the DER encoding of a bit string of bitLength bits. The
// bits are read from the start of bits, which must hold enough bytes.
func NewBitString(bits []byte, bitLength int) (*BitString, error) {
	n := (bitLength + 8 - 1) / 8
	if bitLength < 0 || len(bits) < n {
		return nil, &der.ValueError{Tag: der.TagBitString, Err: errBitPadding}
	}
	padding := byte((8 - bitLength%8) % 8)
	payload := make([]byte, 1, 1+n)
	payload[0] = padding
	payload = append(payload, bits[:n]...)
	if n > 0 {
		// zero out any padding bits
		payload[n] &= ^byte(1<<uint(padding) - 1)
	}
	c, err := encode(der.TagBitString, payload)
	if err != nil {
		return nil, err
	}
	return DecodeBitString(c)
}

// DecodeBitString decodes the BIT STRING at the current position of c.
func DecodeBitString(c *tlv.Cursor) (*BitString, error) {
	if err := expectTag(c, der.TagBitString); err != nil {
		return nil, err
	}
	p := c.Payload()
	if len(p) == 0 {
		return nil, &der.ValueError{Tag: der.TagBitString, Err: errEmptyBitString}
	}
	padding := p[0]
	if padding > 7 || len(p) == 1 && padding > 0 {
		return nil, &der.ValueError{Tag: der.TagBitString, Err: errBitPadding}
	}
	bits := slices.Clone(p[1:])
	if len(bits) > 0 {
		bits[len(bits)-1] &= ^byte(1<<uint(padding) - 1)
	}
	return &BitString{newElement(c), bits, len(bits)*8 - int(padding)}, nil
}

// At returns the bit at the given index. If the index is out of range At panics.
func (s *BitString) At(i int) int {
	if i < 0 || i >= s.BitLength {
		panic("index out of range")
	}
	x := i / 8
	y := 7 - uint(i%8)
	return int(s.Bits[x]>>y) & 1
}

// RightAlign returns a slice where the padding bits are at the beginning. The
// slice may share memory with s.
func (s *BitString) RightAlign() []byte {
	shift := uint(8 - (s.BitLength % 8))
	if shift == 8 || len(s.Bits) == 0 {
		return s.Bits
	}

	a := make([]byte, len(s.Bits))
	a[0] = s.Bits[0] >> shift
	for i := 1; i < len(s.Bits); i++ {
		a[i] = s.Bits[i-1] << (8 - shift)
		a[i] |= s.Bits[i] >> shift
	}

	return a
}

// String formats s into a readable binary representation. Bits will be grouped
// into bytes. The last group may have fewer than 8 characters.
func (s *BitString) String() string {
	if s.BitLength == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(s.BitLength + s.BitLength/8)
	for i := range s.BitLength {
		if i > 0 && i%8 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('0' + byte(s.At(i)))
	}
	return b.String()
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

// OctetString represents an ASN.1 OCTET STRING.
//
// See also section 23 of Rec. ITU-T X.680.
type OctetString struct {
	element
}

// NewOctetString returns the DER encoding of b. The bytes are copied.
func NewOctetString(b []byte) (*OctetString, error) {
	c, err := encode(der.TagOctetString, b)
	if err != nil {
		return nil, err
	}
	return DecodeOctetString(c)
}

// DecodeOctetString decodes the OCTET STRING at the current position of c.
func DecodeOctetString(c *tlv.Cursor) (*OctetString, error) {
	if err := expectTag(c, der.TagOctetString); err != nil {
		return nil, err
	}
	return &OctetString{newElement(c)}, nil
}

// Value returns the contents of s. The returned slice must not be modified.
func (s *OctetString) Value() []byte {
	return s.Payload()
}

//endregion

//region [UNIVERSAL 5] NULL

var errNullLength = errors.New("NULL must be empty")

// Null represents the ASN.1 NULL value.
//
// See also section 24 of Rec. ITU-T X.680.
type Null struct {
	element
}

// NewNull returns the DER encoding of NULL.
func NewNull() *Null {
	return &Null{element{raw: []byte{byte(der.TagNull), 0x00}, hdr: 2}}
}

// DecodeNull decodes the NULL at the current position of c.
func DecodeNull(c *tlv.Cursor) (*Null, error) {
	if err := expectTag(c, der.TagNull); err != nil {
		return nil, err
	}
	if c.PayloadLength() != 0 {
		return nil, &der.ValueError{Tag: der.TagNull, Err: errNullLength}
	}
	return &Null{newElement(c)}, nil
}

//endregion
