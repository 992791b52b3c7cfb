// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package universal implements typed values for the universal ASN.1 types
// that commonly appear in PKI structures such as X.509 certificates.
//
// Values are decoded from the current position of a [tlv.Cursor] using
// [Decode] or one of the typed decoders such as [DecodeInteger]. [Decode]
// dispatches on the tag of the current value. Tags without a dedicated type,
// including SEQUENCE, SET and all non-universal tags, decode as [*Any].
//
// Values are constructed from Go values using the New functions such as
// [NewInteger] or [NewOID]. Constructors produce the DER encoding of the value
// and decode it again before returning, so a constructed value is always
// identical to the value decoded from its [Value.Bytes].
//
// The decoders accept some BER variants that DER forbids, such as integers
// with redundant leading bytes or time values with a comma as the decimal
// separator. The constructors always produce DER.
package universal

import (
	"codello.dev/der"
	"codello.dev/der/tlv"
)

// Value is implemented by all types in this package. Tag returns the
// identifier octet of the value and Bytes returns its complete TLV encoding.
// The set of implementations is closed.
type Value interface {
	Tag() der.Tag
	Bytes() []byte

	value()
}

// element is embedded by all implementations of [Value].
type element struct {
	raw []byte
	hdr int
}

// newElement captures the current TLV of c.
func newElement(c *tlv.Cursor) element {
	return element{raw: c.Raw(), hdr: c.HeaderLength()}
}

// Tag returns the identifier octet of the value.
func (e *element) Tag() der.Tag { return der.Tag(e.raw[0]) }

// Bytes returns the complete TLV encoding of the value. The returned slice
// must not be modified.
func (e *element) Bytes() []byte { return e.raw }

// Payload returns the contents of the value without its header. The returned
// slice must not be modified.
func (e *element) Payload() []byte { return e.raw[e.hdr:] }

func (*element) value() {}

// Any holds a value whose tag has no dedicated type in this package. The
// contents are available via [Any.Payload].
type Any struct {
	element
}

// Decode decodes the value at the current position of c. The concrete type of
// the result is determined by the tag of the value:
//
//	BOOLEAN                          *Boolean
//	INTEGER                          *Integer
//	BIT STRING                       *BitString
//	OCTET STRING                     *OctetString
//	NULL                             *Null
//	OBJECT IDENTIFIER                *OID
//	ENUMERATED                       *Enumerated
//	RELATIVE-OID                     *RelativeOID
//	UTCTime, GeneralizedTime         *Time
//	UTF8String, NumericString,       *String
//	PrintableString, TeletexString,
//	VideotexString, IA5String,
//	VisibleString, UniversalString,
//	BMPString
//	anything else                    *Any
//
// If the contents are invalid for the type, a [*der.ValueError] is returned.
// The cursor does not move.
func Decode(c *tlv.Cursor) (Value, error) {
	switch c.Tag() {
	case der.TagBoolean:
		return decodeAs(DecodeBoolean(c))
	case der.TagInteger:
		return decodeAs(DecodeInteger(c))
	case der.TagBitString:
		return decodeAs(DecodeBitString(c))
	case der.TagOctetString:
		return decodeAs(DecodeOctetString(c))
	case der.TagNull:
		return decodeAs(DecodeNull(c))
	case der.TagOID:
		return decodeAs(DecodeOID(c))
	case der.TagEnumerated:
		return decodeAs(DecodeEnumerated(c))
	case der.TagRelativeOID:
		return decodeAs(DecodeRelativeOID(c))
	case der.TagUTCTime, der.TagGeneralizedTime:
		return decodeAs(DecodeTime(c))
	case der.TagUTF8String, der.TagNumericString, der.TagPrintableString,
		der.TagTeletexString, der.TagVideotexString, der.TagIA5String,
		der.TagVisibleString, der.TagUniversalString, der.TagBMPString:
		return decodeAs(DecodeString(c))
	}
	return &Any{newElement(c)}, nil
}

// Parse decodes the first TLV in data. The data is copied.
func Parse(data []byte) (Value, error) {
	c, err := tlv.NewCursor(data)
	if err != nil {
		return nil, err
	}
	return Decode(c)
}

// decodeAs converts the result of a typed decoder so that a failed decoding
// returns a nil interface.
func decodeAs[T Value](v T, err error) (Value, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// expectTag returns a [*der.TagMismatchError] if the current tag of c is not
// one of tags.
func expectTag(c *tlv.Cursor, tags ...der.Tag) error {
	for _, t := range tags {
		if c.Tag() == t {
			return nil
		}
	}
	return &der.TagMismatchError{Offset: c.Offset(), Tag: c.Tag(), Expected: tags}
}

// encode assembles a TLV from tag and payload and opens a cursor on it.
func encode(tag der.Tag, payload []byte) (*tlv.Cursor, error) {
	raw, err := tlv.Encode(tag, payload)
	if err != nil {
		return nil, err
	}
	return tlv.NewCursorShared(raw)
}
