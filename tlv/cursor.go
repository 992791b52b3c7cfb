package tlv

import (
	"errors"
	"maps"
	"slices"

	"codello.dev/der"
)

// ErrNoNext is returned by [Cursor.MoveNextAndExpectTag] and
// [Cursor.MoveNextSiblingAndExpectTag] if there is no value to move to.
var ErrNoNext = errors.New("tlv: no next value")

var (
	errReservedTag   = errors.New("reserved tag 0")
	errMultiByteTag  = errors.New("multi-byte tag numbers are not supported")
	errExceedsBuffer = errors.New("value exceeds buffer")
	errExceedsParent = errors.New("value exceeds parent")
	errTooShort      = errors.New("encoding must be at least 2 bytes")
	errNotIndexed    = errors.New("offset was not visited")
)

// scope delimits the bytes that contain a TLV and its siblings. The root scope
// is the whole buffer.
type scope struct {
	start, end int
}

// position is the decoded state of the TLV at the current cursor position.
type position struct {
	offset      int
	tag         der.Tag
	headerLen   int
	length      int // payload length
	container   bool
	children    int
	next        int // 0 if there is no next TLV
	nextSibling int // 0 if this is the last TLV in its scope
	scope       scope
}

func (p *position) payloadOffset() int { return p.offset + p.headerLen }
func (p *position) end() int           { return p.offset + p.headerLen + p.length }

// Cursor walks the TLVs of a single DER encoding. The cursor always points to
// a valid TLV. Initially this is the outermost value at offset 0.
//
// While moving through the data, the cursor records the start offset of every
// child of every container it visits in an offset index. Offsets in the index
// can be revisited using [Cursor.Seek]. [Cursor.BuildOffsetMap] visits all
// values at once.
//
// The backing buffer is never modified. A Cursor is not safe for concurrent
// use, but multiple cursors may share the same buffer.
type Cursor struct {
	data  []byte
	index map[int]scope
	root  position
	pos   position
}

// NewCursor creates a cursor over a copy of data. Bytes after the end of the
// first TLV in data are ignored. An error is returned if data is shorter than
// 2 bytes or the outermost TLV is malformed.
func NewCursor(data []byte) (*Cursor, error) {
	if len(data) < 2 {
		return nil, &der.StructuralError{Err: errTooShort}
	}
	total, err := rootLength(data)
	if err != nil {
		return nil, err
	}
	return newCursor(slices.Clone(data[:total]))
}

// NewCursorShared is like [NewCursor] but the cursor references data directly.
// The caller must not modify data while the cursor is in use.
func NewCursorShared(data []byte) (*Cursor, error) {
	if len(data) < 2 {
		return nil, &der.StructuralError{Err: errTooShort}
	}
	total, err := rootLength(data)
	if err != nil {
		return nil, err
	}
	return newCursor(data[:total:total])
}

// rootLength returns the total length of the first TLV in data.
func rootLength(data []byte) (int, error) {
	tag := der.Tag(data[0])
	if err := checkTag(0, tag); err != nil {
		return 0, err
	}
	l, n, err := decodeLength(data[1:])
	if err != nil {
		return 0, lengthError(0, tag, err)
	}
	if l > len(data)-1-n {
		return 0, &der.StructuralError{Offset: 0, Tag: tag, Err: errExceedsBuffer}
	}
	return 1 + n + l, nil
}

func newCursor(data []byte) (*Cursor, error) {
	c := &Cursor{
		data:  data,
		index: map[int]scope{0: {0, len(data)}},
	}
	pos, err := c.decodeAt(0, c.index[0])
	if err != nil {
		return nil, err
	}
	c.root = pos
	c.pos = pos
	return c, nil
}

func checkTag(offset int, tag der.Tag) error {
	if tag == 0 {
		return &der.StructuralError{Offset: offset, Err: errReservedTag}
	}
	if tag&der.NumberMask == der.NumberMask {
		return &der.StructuralError{Offset: offset, Tag: tag, Err: errMultiByteTag}
	}
	return nil
}

// decodeAt decodes the TLV at offset within sc. Children found by nested-type
// resolution are added to the index. The cursor position is not changed.
func (c *Cursor) decodeAt(offset int, sc scope) (position, error) {
	if offset < 0 || offset >= len(c.data) {
		return position{}, &der.BoundsError{Offset: offset}
	}
	tag := der.Tag(c.data[offset])
	if err := checkTag(offset, tag); err != nil {
		return position{}, err
	}
	l, n, err := decodeLength(c.data[offset+1:])
	if err != nil {
		return position{}, lengthError(offset, tag, err)
	}
	p := position{
		offset:    offset,
		tag:       tag,
		headerLen: 1 + n,
		length:    l,
		scope:     sc,
	}
	if l > len(c.data)-p.payloadOffset() {
		return position{}, &der.StructuralError{Offset: offset, Tag: tag, Err: errExceedsBuffer}
	}
	if p.end() > sc.end {
		return position{}, &der.StructuralError{Offset: offset, Tag: tag, Err: errExceedsParent}
	}

	nesting, err := ResolveNested(c.data, tag, p.payloadOffset(), l)
	if err != nil {
		return position{}, err
	}
	p.container = nesting.Container
	p.children = len(nesting.Children)
	for _, child := range nesting.Children {
		if _, ok := c.index[child]; !ok {
			c.index[child] = scope{nesting.Start, nesting.End}
		}
	}

	if p.end() < sc.end {
		p.nextSibling = p.end()
	}
	switch {
	case p.container && p.children > 0:
		p.next = nesting.Start
	case p.end() < len(c.data):
		p.next = p.end()
	}
	return p, nil
}

// move decodes the TLV at offset and makes it the current position.
func (c *Cursor) move(offset int) error {
	sc, ok := c.index[offset]
	if !ok {
		sc = c.index[0]
	}
	p, err := c.decodeAt(offset, sc)
	if err != nil {
		return err
	}
	c.pos = p
	return nil
}

// MoveNext moves to the next TLV in document order. If the current value is a
// container, this is its first child. MoveNext returns false if the current
// value is the last one in the data. If the next value is malformed, the
// cursor remains at its current position and an error is returned.
func (c *Cursor) MoveNext() (bool, error) {
	if c.pos.next == 0 {
		return false, nil
	}
	if err := c.move(c.pos.next); err != nil {
		return false, err
	}
	return true, nil
}

// MoveNextSibling moves to the next TLV at the same nesting level, skipping
// the contents of the current value. MoveNextSibling returns false if the
// current value is the last one in its container.
func (c *Cursor) MoveNextSibling() (bool, error) {
	if c.pos.nextSibling == 0 {
		return false, nil
	}
	if err := c.move(c.pos.nextSibling); err != nil {
		return false, err
	}
	return true, nil
}

// MoveNextAndExpectTag works like [Cursor.MoveNext] but requires the next value
// to have one of the given tags. If no tags are given, any tag is accepted.
// [ErrNoNext] is returned if there is no next value. A [*der.TagMismatchError]
// is returned if the tag of the next value is not in tags. In that case the
// cursor has moved.
func (c *Cursor) MoveNextAndExpectTag(tags ...der.Tag) error {
	return c.expect(c.MoveNext, tags)
}

// MoveNextSiblingAndExpectTag works like [Cursor.MoveNextSibling] but requires
// the next sibling to have one of the given tags. The errors match those of
// [Cursor.MoveNextAndExpectTag].
func (c *Cursor) MoveNextSiblingAndExpectTag(tags ...der.Tag) error {
	return c.expect(c.MoveNextSibling, tags)
}

func (c *Cursor) expect(move func() (bool, error), tags []der.Tag) error {
	ok, err := move()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoNext
	}
	if len(tags) > 0 && !slices.Contains(tags, c.pos.tag) {
		return &der.TagMismatchError{Offset: c.pos.offset, Tag: c.pos.tag, Expected: slices.Clone(tags)}
	}
	return nil
}

// Seek moves the cursor to the TLV starting at offset. The offset must have
// been recorded in the index, either because the enclosing container was
// visited or by [Cursor.BuildOffsetMap]. Otherwise a [*der.BoundsError] is
// returned and the cursor does not move.
func (c *Cursor) Seek(offset int) error {
	if _, ok := c.index[offset]; !ok {
		return &der.BoundsError{Offset: offset, Err: errNotIndexed}
	}
	return c.move(offset)
}

// Reset moves the cursor back to the outermost value at offset 0.
func (c *Cursor) Reset() {
	c.pos = c.root
}

// BuildOffsetMap visits every TLV in the data and returns the number of entries
// in the offset index. Afterward every TLV can be reached using [Cursor.Seek].
// The cursor is reset to offset 0.
//
// If a malformed value is encountered, the index is restored to its state
// before the call, the cursor keeps its position and the error is returned.
func (c *Cursor) BuildOffsetMap() (int, error) {
	snapshot := maps.Clone(c.index)
	prev := c.pos
	c.Reset()
	for {
		ok, err := c.MoveNext()
		if err != nil {
			c.index = snapshot
			c.pos = prev
			return 0, err
		}
		if !ok {
			break
		}
	}
	c.Reset()
	return len(c.index), nil
}

// Sub returns a new cursor over the current TLV. The new cursor shares the
// backing buffer of c but has its own index, so offsets of the new cursor are
// relative to the start of the current value.
func (c *Cursor) Sub() (*Cursor, error) {
	return newCursor(c.Raw())
}

//region Position Accessors

// Offset returns the offset of the current TLV in the data.
func (c *Cursor) Offset() int { return c.pos.offset }

// Tag returns the identifier octet of the current TLV.
func (c *Cursor) Tag() der.Tag { return c.pos.tag }

// HeaderLength returns the number of bytes of the tag and length octets of the
// current TLV.
func (c *Cursor) HeaderLength() int { return c.pos.headerLen }

// PayloadOffset returns the offset of the contents of the current TLV.
func (c *Cursor) PayloadOffset() int { return c.pos.payloadOffset() }

// PayloadLength returns the length of the contents of the current TLV.
func (c *Cursor) PayloadLength() int { return c.pos.length }

// TotalLength returns the length of the current TLV including its header.
func (c *Cursor) TotalLength() int { return c.pos.headerLen + c.pos.length }

// IsContainer reports whether the current TLV holds nested TLVs. This includes
// values with a primitive tag whose contents were found to be a nested
// encoding.
func (c *Cursor) IsContainer() bool { return c.pos.container }

// Children returns the number of immediate children of the current TLV.
func (c *Cursor) Children() int { return c.pos.children }

// NextOffset returns the offset that [Cursor.MoveNext] would move to, or 0 if
// there is none.
func (c *Cursor) NextOffset() int { return c.pos.next }

// NextSiblingOffset returns the offset that [Cursor.MoveNextSibling] would move
// to, or 0 if there is none.
func (c *Cursor) NextSiblingOffset() int { return c.pos.nextSibling }

// ScopeEnd returns the offset at which the container of the current TLV ends.
// For the outermost value this is the length of the data.
func (c *Cursor) ScopeEnd() int { return c.pos.scope.end }

// Node returns a snapshot of the current position.
func (c *Cursor) Node() Node {
	return Node{
		Header:       Header{Tag: c.pos.tag, Length: c.pos.length},
		Offset:       c.pos.offset,
		HeaderLength: c.pos.headerLen,
		Container:    c.pos.container,
		Children:     c.pos.children,
	}
}

//endregion

// Node describes a single TLV within the data of a [Cursor].
type Node struct {
	Header
	Offset       int
	HeaderLength int
	Container    bool
	Children     int
}

// PayloadOffset returns the offset of the contents of n.
func (n Node) PayloadOffset() int { return n.Offset + n.HeaderLength }

// TotalLength returns the length of n including its header.
func (n Node) TotalLength() int { return n.HeaderLength + n.Length }
