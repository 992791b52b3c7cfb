package tlv

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"codello.dev/der"
)

// ioError represents an error that occurred when reading from an underlying
// data stream.
type ioError struct {
	err error
}

func (e *ioError) Unwrap() error { return e.err }
func (e *ioError) Error() string { return "tlv: read error: " + e.err.Error() }

// noEOF returns err, unless err == io.EOF, in which case it returns io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Decoder reads a stream of concatenated top-level TLVs. Each call to
// [Decoder.Next] returns the complete encoding of one value, which can then be
// inspected using a [Cursor].
//
// The contents of a value are not validated by the Decoder. Only the header is
// checked.
type Decoder struct {
	r interface {
		io.Reader
		io.ByteReader
	}
	offset int
}

// NewDecoder creates a new Decoder reading from r. If r does not implement
// [io.ByteReader], the Decoder does its own buffering and may read past the
// last value it returned.
func NewDecoder(r io.Reader) *Decoder {
	d := new(Decoder)
	d.Reset(r)
	return d
}

// Reset resets the state of d to read from r. See [NewDecoder] for details.
func (d *Decoder) Reset(r io.Reader) {
	if br, ok := r.(interface {
		io.Reader
		io.ByteReader
	}); ok {
		d.r = br
	} else {
		d.r = bufio.NewReader(r)
	}
	d.offset = 0
}

// InputOffset returns the number of bytes consumed by d. After a successful
// call to [Decoder.Next] this is the offset of the next value.
func (d *Decoder) InputOffset() int { return d.offset }

// Next reads the next value from the input and returns its complete encoding.
// At the end of the input Next returns [io.EOF]. If the input ends in the
// middle of a value, a [*der.StructuralError] wrapping [io.ErrUnexpectedEOF]
// is returned. Errors of the underlying reader are returned wrapped.
//
// After an error the position of d within the input is undefined.
func (d *Decoder) Next() ([]byte, error) {
	start := d.offset
	b, err := d.r.ReadByte()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, &ioError{err}
	}
	tag := der.Tag(b)
	if err = checkTag(start, tag); err != nil {
		return nil, err
	}

	// identifier, length octet and up to MaxLengthBytes subsequent length octets
	var hdr [2 + MaxLengthBytes]byte
	hdr[0] = b
	n := 1
	if hdr[1], err = d.r.ReadByte(); err != nil {
		return nil, d.readError(start, tag, err)
	}
	n++
	if hdr[1]&0x80 != 0 {
		count := int(hdr[1] & 0x7f)
		for i := 0; i < count && n < len(hdr); i++ {
			if hdr[n], err = d.r.ReadByte(); err != nil {
				return nil, d.readError(start, tag, err)
			}
			n++
		}
	}
	length, _, err := decodeLength(hdr[1:n])
	if err != nil {
		return nil, lengthError(start, tag, err)
	}

	var buf bytes.Buffer
	buf.Grow(n + min(length, 4096))
	buf.Write(hdr[:n])
	copied, err := io.CopyN(&buf, d.r, int64(length))
	d.offset = start + n + int(copied)
	if err != nil {
		return nil, d.readError(start, tag, err)
	}
	return buf.Bytes(), nil
}

// readError converts an error of the underlying reader within the value
// starting at start.
func (d *Decoder) readError(start int, tag der.Tag, err error) error {
	err = noEOF(err)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &der.StructuralError{Offset: start, Tag: tag, Err: err}
	}
	return &ioError{err}
}
