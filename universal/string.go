// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package universal

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"codello.dev/der"
	"codello.dev/der/tlv"
)

var (
	errInvalidUTF8 = errors.New("invalid UTF-8")
	errNotASCII    = errors.New("non-ASCII character")
	errStringTag   = errors.New("not a string type")
)

// String represents one of the ASN.1 character string types. The contents are
// converted to a UTF-8 Go string. The tag of the value identifies the string
// type.
//
// The character set of the string type is not validated beyond what the
// encoding requires. NumericString, PrintableString, IA5String and
// VisibleString must consist of ASCII characters, UTF8String must be valid
// UTF-8. TeletexString and VideotexString are interpreted as Latin-1,
// UniversalString as big endian UTF-32 and BMPString as big endian UTF-16.
//
// See also section 41 of Rec. ITU-T X.680.
type String struct {
	element
	Value string
}

// NewString returns the encoding of s using the string type identified by tag.
func NewString(tag der.Tag, s string) (*String, error) {
	var payload []byte
	switch tag {
	case der.TagUTF8String:
		if !utf8.ValidString(s) {
			return nil, &der.ValueError{Tag: tag, Err: errInvalidUTF8}
		}
		payload = []byte(s)
	case der.TagNumericString, der.TagPrintableString, der.TagIA5String, der.TagVisibleString:
		if !isASCII(s) {
			return nil, &der.ValueError{Tag: tag, Err: errNotASCII}
		}
		payload = []byte(s)
	default:
		enc := stringEncoding(tag)
		if enc == nil {
			return nil, &der.ValueError{Tag: tag, Err: errStringTag}
		}
		var err error
		if payload, err = enc.NewEncoder().Bytes([]byte(s)); err != nil {
			return nil, &der.ValueError{Tag: tag, Err: err}
		}
	}
	c, err := encode(tag, payload)
	if err != nil {
		return nil, err
	}
	return DecodeString(c)
}

// DecodeString decodes the character string at the current position of c.
func DecodeString(c *tlv.Cursor) (*String, error) {
	if err := expectTag(c, der.TagUTF8String, der.TagNumericString, der.TagPrintableString,
		der.TagTeletexString, der.TagVideotexString, der.TagIA5String,
		der.TagVisibleString, der.TagUniversalString, der.TagBMPString); err != nil {
		return nil, err
	}
	s, err := DecodeStringBytes(c.Tag(), c.Payload())
	if err != nil {
		return nil, err
	}
	return &String{newElement(c), s}, nil
}

// String returns the contents of s.
func (s *String) String() string {
	return s.Value
}

// DecodeStringBytes converts the contents octets of the string type identified
// by tag into a Go string.
func DecodeStringBytes(tag der.Tag, b []byte) (string, error) {
	switch tag {
	case der.TagUTF8String:
		if !utf8.Valid(b) {
			return "", &der.ValueError{Tag: tag, Err: errInvalidUTF8}
		}
		return string(b), nil
	case der.TagNumericString, der.TagPrintableString, der.TagIA5String, der.TagVisibleString:
		s := string(b)
		if !isASCII(s) {
			return "", &der.ValueError{Tag: tag, Err: errNotASCII}
		}
		return s, nil
	}
	enc := stringEncoding(tag)
	if enc == nil {
		return "", &der.ValueError{Tag: tag, Err: errStringTag}
	}
	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", &der.ValueError{Tag: tag, Err: err}
	}
	return string(s), nil
}

// stringEncoding returns the text encoding of the multi-byte and 8-bit string
// types, or nil.
func stringEncoding(tag der.Tag) encoding.Encoding {
	switch tag {
	case der.TagTeletexString, der.TagVideotexString:
		return charmap.ISO8859_1
	case der.TagBMPString:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case der.TagUniversalString:
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	}
	return nil
}

// isASCII reports whether s consists of 7-bit characters only.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
