// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package der defines the vocabulary shared by the DER packages of this
// module: single-byte ASN.1 tags, tag classes, the error types reported while
// decoding untrusted input, and the arc types of object identifiers.
//
// The Distinguished Encoding Rules are defined in [Rec. ITU-T X.690]. Every
// encoded value is a tag-length-value (TLV) triple. This module supports
// single-byte identifier octets only, that is tag numbers 0 through 30. Length
// octets must use the definite form with at most 4 length bytes.
//
// Navigation over encoded data is implemented by the [codello.dev/der/tlv]
// package. Typed values of universal tags are decoded and encoded by the
// [codello.dev/der/universal] package.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package der

import (
	"strconv"
	"strings"
)

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// Tag is the identifier octet of a DER encoding. Bits 0-4 hold the tag number,
// bit 5 the constructed flag and bits 6-7 the [Class].
//
// The tag number 31 announces a multi-byte tag number in BER. Such tags are
// not supported by this module.
type Tag byte

// Bit masks and flags of the identifier octet.
const (
	// Constructed is the flag that marks a constructed encoding.
	Constructed Tag = 0x20

	// NumberMask extracts the tag number from a Tag.
	NumberMask Tag = 0x1f

	// ClassMask extracts the class bits from a Tag.
	ClassMask Tag = 0xc0
)

// NewTag composes a Tag from its parts. The number is truncated to 5 bits.
func NewTag(class Class, constructed bool, number uint8) Tag {
	t := Tag(class&0b11)<<6 | Tag(number)&NumberMask
	if constructed {
		t |= Constructed
	}
	return t
}

// Class returns the class of t.
func (t Tag) Class() Class {
	return Class(t >> 6)
}

// Number returns the tag number of t.
func (t Tag) Number() uint8 {
	return uint8(t & NumberMask)
}

// IsConstructed reports whether the constructed flag of t is set.
func (t Tag) IsConstructed() bool {
	return t&Constructed != 0
}

// IsValid reports whether t can appear in a DER encoding handled by this
// module. The zero tag is reserved for BER end-of-contents markers and the tag
// number 31 requires multi-byte identifiers.
func (t Tag) IsValid() bool {
	return t != 0 && t&NumberMask != NumberMask
}

// String returns a string representation of t. Universal tags are represented
// by their ASN.1 type names. Other tags use a format similar to ASN.1 notation
// where the tag number is enclosed by square brackets and prefixed with the
// class. Constructed non-universal tags are suffixed by "/c".
func (t Tag) String() string {
	if t.Class() == ClassUniversal {
		if name := universalNames[t.Number()]; name != "" {
			return name
		}
		return "[UNIVERSAL " + strconv.Itoa(int(t.Number())) + "]"
	}
	var s string
	if t.Class() == ClassContextSpecific {
		s = "[" + strconv.Itoa(int(t.Number())) + "]"
	} else {
		s = "[" + strings.ToUpper(t.Class().String()) + " " + strconv.Itoa(int(t.Number())) + "]"
	}
	if t.IsConstructed() {
		s += "/c"
	}
	return s
}

// These are the tags of universal types as they appear in DER encodings.
// SEQUENCE and SET are listed with the constructed flag set because DER
// always encodes them that way. The assignments are defined in Rec. ITU-T
// X.680, Section 8, Table 1.
const (
	TagBoolean          Tag = 0x01
	TagInteger          Tag = 0x02
	TagBitString        Tag = 0x03
	TagOctetString      Tag = 0x04
	TagNull             Tag = 0x05
	TagOID              Tag = 0x06
	TagObjectDescriptor Tag = 0x07
	TagExternal         Tag = 0x08
	TagReal             Tag = 0x09
	TagEnumerated       Tag = 0x0a
	TagEmbeddedPDV      Tag = 0x0b
	TagUTF8String       Tag = 0x0c
	TagRelativeOID      Tag = 0x0d
	TagTime             Tag = 0x0e
	TagSequence         Tag = 0x30
	TagSet              Tag = 0x31
	TagNumericString    Tag = 0x12
	TagPrintableString  Tag = 0x13
	TagTeletexString    Tag = 0x14
	TagT61String            = TagTeletexString
	TagVideotexString   Tag = 0x15
	TagIA5String        Tag = 0x16
	TagUTCTime          Tag = 0x17
	TagGeneralizedTime  Tag = 0x18
	TagGraphicString    Tag = 0x19
	TagVisibleString    Tag = 0x1a
	TagISO646String         = TagVisibleString
	TagGeneralString    Tag = 0x1b
	TagUniversalString  Tag = 0x1c
	TagCharacterString  Tag = 0x1d
	TagBMPString        Tag = 0x1e
)

// universalNames maps universal tag numbers to ASN.1 type names.
var universalNames = [32]string{
	1:  "BOOLEAN",
	2:  "INTEGER",
	3:  "BIT STRING",
	4:  "OCTET STRING",
	5:  "NULL",
	6:  "OBJECT IDENTIFIER",
	7:  "ObjectDescriptor",
	8:  "EXTERNAL",
	9:  "REAL",
	10: "ENUMERATED",
	11: "EMBEDDED PDV",
	12: "UTF8String",
	13: "RELATIVE-OID",
	14: "TIME",
	16: "SEQUENCE",
	17: "SET",
	18: "NumericString",
	19: "PrintableString",
	20: "TeletexString",
	21: "VideotexString",
	22: "IA5String",
	23: "UTCTime",
	24: "GeneralizedTime",
	25: "GraphicString",
	26: "VisibleString",
	27: "GeneralString",
	28: "UniversalString",
	29: "CHARACTER STRING",
	30: "BMPString",
}
