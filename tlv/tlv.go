// Package tlv implements random-access navigation over the tag-length-value
// (TLV) format used by the Distinguished Encoding Rules (DER) as specified in
// [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// The [Cursor] type walks an in-memory encoding. It locates TLV boundaries,
// detects values that are encoded as primitive but wrap another TLV (such as an
// extension value inside an OCTET STRING), and records the start of every
// value it visits in an offset index. The index makes it possible to skip
// entire subtrees and to [Cursor.Seek] back to any value that was seen
// before, without parsing the data from the beginning.
//
// This package deals with the syntactic layer of DER. Typed values are decoded
// by the [codello.dev/der/universal] package.
//
// # Headers and Values
//
// Each value is encoded as an identifier octet, length octets and the value
// itself. The identifier octet and length (we call them a header) are
// represented by the [Header] type. Only single-byte identifier octets and
// definite lengths of at most 4 length bytes are supported.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package tlv

import (
	"strconv"

	"codello.dev/der"
)

// Header represents a TLV header: the identifier octet and the length of the
// value that follows it.
type Header struct {
	Tag    der.Tag
	Length int
}

// String returns a string representation of h.
func (h Header) String() string {
	s := h.Tag.String()
	if h.Tag.Class() != der.ClassUniversal {
		// constructed non-universal tags carry a "/c" suffix already
		if !h.Tag.IsConstructed() {
			s += "/p"
		}
	} else if h.Tag.IsConstructed() {
		s += "/c"
	} else {
		s += "/p"
	}
	return s + ":" + strconv.Itoa(h.Length)
}

// Size returns the number of bytes of the encoded header. If the length of h
// cannot be encoded, Size returns 0.
func (h Header) Size() int {
	n := LengthSize(h.Length)
	if n == 0 {
		return 0
	}
	return 1 + n
}

// Append appends the encoding of h to b and returns the extended buffer. An
// error is returned if h.Tag is not a valid single-byte tag or if h.Length
// cannot be encoded.
func (h Header) Append(b []byte) ([]byte, error) {
	if !h.Tag.IsValid() {
		return b, &der.StructuralError{Tag: h.Tag, Err: errInvalidTag}
	}
	return AppendLength(append(b, byte(h.Tag)), h.Length)
}

// Encode assembles a complete TLV from a tag and a value. The value is copied.
func Encode(tag der.Tag, value []byte) ([]byte, error) {
	h := Header{Tag: tag, Length: len(value)}
	b, err := h.Append(make([]byte, 0, h.Size()+len(value)))
	if err != nil {
		return nil, err
	}
	return append(b, value...), nil
}
