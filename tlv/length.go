package tlv

import (
	"errors"
	"io"
	"math"

	"codello.dev/der"
)

// MaxLengthBytes is the maximum number of length octets following the initial
// length octet of the long form.
const MaxLengthBytes = 4

// maxLength is the largest length that can be encoded in MaxLengthBytes bytes.
const maxLength = 1<<(8*MaxLengthBytes) - 1

var (
	errIndefinite  = errors.New("indefinite length not supported")
	errLengthBytes = errors.New("length uses more than 4 bytes")
	errNegative    = errors.New("negative length")
	errInvalidTag  = errors.New("invalid tag")
)

// LengthSize returns the number of bytes needed to encode length. The result
// is 0 if length cannot be encoded.
func LengthSize(length int) int {
	switch {
	case length < 0 || uint64(length) > maxLength:
		return 0
	case length < 0x80:
		return 1
	}
	n := 1
	for l := length; l > 0; l >>= 8 {
		n++
	}
	return n
}

// EncodeLength returns the DER encoding of length. Lengths below 128 use the
// short form. Longer lengths use the long form with the minimal number of
// length bytes. A length that is negative or needs more than 4 length bytes
// results in a [*der.OverflowError].
func EncodeLength(length int) ([]byte, error) {
	return AppendLength(make([]byte, 0, 5), length)
}

// AppendLength is like [EncodeLength] but appends the encoding to b.
func AppendLength(b []byte, length int) ([]byte, error) {
	n := LengthSize(length)
	switch {
	case length < 0:
		return b, &der.OverflowError{Err: errNegative}
	case n == 0:
		return b, &der.OverflowError{Err: errLengthBytes}
	case n == 1:
		return append(b, byte(length)), nil
	}
	b = append(b, 0x80|byte(n-1))
	for i := n - 2; i >= 0; i-- {
		b = append(b, byte(length>>(i*8)))
	}
	return b, nil
}

// DecodeLength decodes the length octets at the start of b. It returns the
// decoded length and the number of bytes consumed.
//
// The indefinite form and lengths with more than 4 length bytes are rejected
// with a [*der.OverflowError]. If b ends before the length is complete, the
// error is a [*der.StructuralError] wrapping [io.ErrUnexpectedEOF]. Redundant
// leading zero bytes of the long form are tolerated.
func DecodeLength(b []byte) (length, n int, err error) {
	length, n, err = decodeLength(b)
	if err != nil {
		return 0, 0, lengthError(0, 0, err)
	}
	return length, n, nil
}

// decodeLength implements [DecodeLength]. Errors are returned without context.
func decodeLength(b []byte) (length, n int, err error) {
	if len(b) == 0 {
		return 0, 0, io.ErrUnexpectedEOF
	}
	if b[0] < 0x80 {
		return int(b[0]), 1, nil
	}
	numBytes := int(b[0] & 0x7f)
	if numBytes == 0 {
		return 0, 0, errIndefinite
	}
	if numBytes > MaxLengthBytes {
		return 0, 0, errLengthBytes
	}
	if len(b) < 1+numBytes {
		return 0, 0, io.ErrUnexpectedEOF
	}
	var l uint64
	for _, c := range b[1 : 1+numBytes] {
		l = l<<8 | uint64(c)
	}
	if l > math.MaxInt {
		return 0, 0, errLengthBytes
	}
	return int(l), 1 + numBytes, nil
}

// lengthError attaches context to an error returned by decodeLength. Truncated
// input is a structural error. Everything else exceeds what this package
// supports.
func lengthError(offset int, tag der.Tag, err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &der.StructuralError{Offset: offset, Tag: tag, Err: err}
	}
	return &der.OverflowError{Err: err}
}
