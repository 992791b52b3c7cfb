// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package universal

import (
	"bytes"
	"errors"
	"io"
	"math/big"

	"codello.dev/der"
	"codello.dev/der/internal/vlq"
	"codello.dev/der/tlv"
)

var (
	errEmptyOID     = errors.New("zero length object identifier")
	errTruncatedArc = errors.New("truncated arc")
	errPaddedArc    = errors.New("arc is not minimally encoded")
	bigForty        = big.NewInt(40)
	bigEighty       = big.NewInt(80)
)

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// OID represents an ASN.1 OBJECT IDENTIFIER value.
//
// See also section 32 of Rec. ITU-T X.680.
type OID struct {
	element
	Value der.ObjectIdentifier
}

// NewOID parses the dotted decimal notation s and returns its DER encoding.
func NewOID(s string) (*OID, error) {
	oid, err := der.ParseObjectIdentifier(s)
	if err != nil {
		return nil, err
	}
	return NewObjectIdentifier(oid)
}

// NewObjectIdentifier returns the DER encoding of oid.
func NewObjectIdentifier(oid der.ObjectIdentifier) (*OID, error) {
	b, err := EncodeOID(oid)
	if err != nil {
		return nil, err
	}
	c, err := encode(der.TagOID, b)
	if err != nil {
		return nil, err
	}
	return DecodeOID(c)
}

// DecodeOID decodes the OBJECT IDENTIFIER at the current position of c.
func DecodeOID(c *tlv.Cursor) (*OID, error) {
	if err := expectTag(c, der.TagOID); err != nil {
		return nil, err
	}
	oid, err := DecodeOIDBytes(c.Payload())
	if err != nil {
		return nil, err
	}
	return &OID{newElement(c), oid}, nil
}

// String returns the dot-separated notation of o.
func (o *OID) String() string {
	return o.Value.String()
}

// EncodeOID returns the contents octets of oid. The first two arcs are
// combined into a single value 40*arc0 + arc1. All arcs are encoded in
// base-128 with the high bit marking continuation.
func EncodeOID(oid der.ObjectIdentifier) ([]byte, error) {
	if err := oid.Validate(); err != nil {
		return nil, err
	}
	first := new(big.Int).Mul(oid[0], bigForty)
	first.Add(first, oid[1])
	b := vlq.AppendBig(make([]byte, 0, vlq.LengthBig(first)+arcsLength(oid[2:])), first)
	for _, arc := range oid[2:] {
		b = vlq.AppendBig(b, arc)
	}
	return b, nil
}

// DecodeOIDBytes decodes the contents octets of an OBJECT IDENTIFIER.
func DecodeOIDBytes(b []byte) (der.ObjectIdentifier, error) {
	if len(b) == 0 {
		return nil, &der.ValueError{Tag: der.TagOID, Err: errEmptyOID}
	}
	arcs, err := decodeArcs(b)
	if err != nil {
		return nil, &der.ValueError{Tag: der.TagOID, Err: err}
	}

	// The first arc is 40*value1 + value2:
	// According to this packing, value1 can take the values 0, 1 and 2 only.
	// When value1 = 0 or value1 = 1, then value2 is <= 39. When value1 = 2,
	// then there are no restrictions on value2.
	oid := make(der.ObjectIdentifier, len(arcs)+1)
	if v := arcs[0]; v.Cmp(bigEighty) < 0 {
		oid[0], oid[1] = new(big.Int).DivMod(v, bigForty, new(big.Int))
	} else {
		oid[0], oid[1] = big.NewInt(2), new(big.Int).Sub(v, bigEighty)
	}
	copy(oid[2:], arcs[1:])
	return oid, nil
}

//endregion

//region [UNIVERSAL 13] RELATIVE-OID

// RelativeOID represents an ASN.1 RELATIVE-OID value.
//
// See also section 33 of Rec. ITU-T X.680.
type RelativeOID struct {
	element
	Value der.RelativeOID
}

// NewRelativeOID parses the dotted decimal notation s and returns its DER
// encoding. A leading dot in s is optional.
func NewRelativeOID(s string) (*RelativeOID, error) {
	oid, err := der.ParseRelativeOID(s)
	if err != nil {
		return nil, err
	}
	b, err := EncodeRelativeOID(oid)
	if err != nil {
		return nil, err
	}
	c, err := encode(der.TagRelativeOID, b)
	if err != nil {
		return nil, err
	}
	return DecodeRelativeOID(c)
}

// DecodeRelativeOID decodes the RELATIVE-OID at the current position of c.
func DecodeRelativeOID(c *tlv.Cursor) (*RelativeOID, error) {
	if err := expectTag(c, der.TagRelativeOID); err != nil {
		return nil, err
	}
	oid, err := DecodeRelativeOIDBytes(c.Payload())
	if err != nil {
		return nil, err
	}
	return &RelativeOID{newElement(c), oid}, nil
}

// String returns the dot-separated notation of o with a leading dot.
func (o *RelativeOID) String() string {
	return o.Value.String()
}

// EncodeRelativeOID returns the contents octets of oid. Each arc is encoded
// independently.
func EncodeRelativeOID(oid der.RelativeOID) ([]byte, error) {
	if err := oid.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, 0, arcsLength(oid))
	for _, arc := range oid {
		b = vlq.AppendBig(b, arc)
	}
	return b, nil
}

// DecodeRelativeOIDBytes decodes the contents octets of a RELATIVE-OID.
func DecodeRelativeOIDBytes(b []byte) (der.RelativeOID, error) {
	if len(b) == 0 {
		return nil, &der.ValueError{Tag: der.TagRelativeOID, Err: errEmptyOID}
	}
	arcs, err := decodeArcs(b)
	if err != nil {
		return nil, &der.ValueError{Tag: der.TagRelativeOID, Err: err}
	}
	return arcs, nil
}

//endregion

// arcsLength returns the number of bytes needed to encode arcs.
func arcsLength(arcs []*big.Int) int {
	n := 0
	for _, arc := range arcs {
		n += vlq.LengthBig(arc)
	}
	return n
}

// decodeArcs decodes a non-empty sequence of base-128 arcs.
func decodeArcs(b []byte) ([]*big.Int, error) {
	r := bytes.NewReader(b)
	var arcs []*big.Int
	for r.Len() > 0 {
		arc, err := vlq.ReadBig(r)
		switch {
		case errors.Is(err, vlq.ErrTruncated), errors.Is(err, io.EOF):
			return nil, errTruncatedArc
		case errors.Is(err, vlq.ErrNotMinimal):
			return nil, errPaddedArc
		case err != nil:
			return nil, err
		}
		arcs = append(arcs, arc)
	}
	return arcs, nil
}
