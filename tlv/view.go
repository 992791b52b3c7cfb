package tlv

import "slices"

// The view methods return sub-slices of the backing buffer of a cursor. Their
// capacity is limited to their length so that appending to a view never
// overwrites the buffer. Callers must not modify the contents of a view. The
// Copy variants return fresh copies that callers may modify.

// Header returns the tag and length octets of the current TLV.
func (c *Cursor) Header() []byte {
	return c.data[c.pos.offset:c.pos.payloadOffset():c.pos.payloadOffset()]
}

// Payload returns the contents of the current TLV.
func (c *Cursor) Payload() []byte {
	return c.data[c.pos.payloadOffset():c.pos.end():c.pos.end()]
}

// Raw returns the complete encoding of the current TLV including its header.
func (c *Cursor) Raw() []byte {
	return c.data[c.pos.offset:c.pos.end():c.pos.end()]
}

// Bytes returns the complete data of c.
func (c *Cursor) Bytes() []byte {
	return c.data[:len(c.data):len(c.data)]
}

// CopyHeader returns a copy of [Cursor.Header].
func (c *Cursor) CopyHeader() []byte { return slices.Clone(c.Header()) }

// CopyPayload returns a copy of [Cursor.Payload].
func (c *Cursor) CopyPayload() []byte { return slices.Clone(c.Payload()) }

// CopyRaw returns a copy of [Cursor.Raw].
func (c *Cursor) CopyRaw() []byte { return slices.Clone(c.Raw()) }

// CopyBytes returns a copy of [Cursor.Bytes].
func (c *Cursor) CopyBytes() []byte { return slices.Clone(c.Bytes()) }
