package tlv

import (
	"errors"

	"codello.dev/der"
)

// PrimitiveOnlyTags lists the tags whose values are never inspected for nested
// encodings. Their contents have a fixed interpretation that cannot wrap
// another TLV.
var PrimitiveOnlyTags = [...]der.Tag{
	0x00, // reserved
	der.TagBoolean,
	der.TagInteger,
	der.TagNull,
	der.TagOID,
	der.TagReal,
	der.TagEnumerated,
	der.TagUTF8String,
	der.TagRelativeOID,
	0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, // NumericString to GeneralizedTime
	0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, // GraphicString to BMPString
}

// The range of identifier octets of context-specific primitive values. Such
// values are almost always implicitly tagged primitives and are not inspected
// for nested encodings.
const (
	UnlikelyNestedMin der.Tag = 0x80
	UnlikelyNestedMax der.Tag = 0x9f
)

var (
	errShortContainer = errors.New("constructed value too short")
	errChildLengths   = errors.New("child lengths do not add up to the length of the value")
)

// Nesting is the result of [ResolveNested]. If Container is true, the value at
// hand holds the TLVs starting at the offsets in Children. Start and End
// delimit the bytes of the children. For a BIT STRING, Start skips the
// unused-bits octet.
type Nesting struct {
	Container bool
	Start     int
	End       int
	Children  []int
}

// isPrimitiveOnly reports whether tag is listed in PrimitiveOnlyTags.
func isPrimitiveOnly(tag der.Tag) bool {
	for _, t := range PrimitiveOnlyTags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsContainerTag reports whether values with the given tag are treated as
// containers without inspecting their contents. This is the case for SEQUENCE
// and SET (in both forms) and for universal tags with the constructed flag.
func IsContainerTag(tag der.Tag) bool {
	switch tag {
	case 0x10, 0x11, der.TagSequence, der.TagSet:
		return true
	}
	return tag.IsConstructed() && tag.Class() == der.ClassUniversal
}

// ResolveNested decides whether the value with the given tag, whose contents
// occupy data[offset:offset+length], is a container of nested TLVs. The
// function only reads data. It never modifies data and keeps no state.
//
// Containers by tag (see [IsContainerTag]) must consist of complete child
// TLVs. If they do not, a [*der.StructuralError] is returned. Other values are
// reclassified as containers only if their contents parse as a sequence of
// TLVs that covers them exactly:
//
//   - tags in [PrimitiveOnlyTags] and in the range [UnlikelyNestedMin] to
//     [UnlikelyNestedMax] are never containers.
//   - universal primitive values must wrap exactly one universal child.
//   - application, private and constructed context-specific values may hold
//     any number of children.
//   - containers by tag anywhere below the predicted children must themselves
//     consist of complete child TLVs.
//
// The contents of a BIT STRING are inspected after the unused-bits octet.
func ResolveNested(data []byte, tag der.Tag, offset, length int) (Nesting, error) {
	byTag := IsContainerTag(tag)
	n := Nesting{Container: byTag, Start: offset, End: offset + length}
	if length == 0 {
		return n, nil
	}
	if isPrimitiveOnly(tag) || (tag >= UnlikelyNestedMin && tag <= UnlikelyNestedMax) {
		return n, nil
	}
	if length < 2 {
		if byTag {
			return n, &der.StructuralError{Offset: offset, Tag: tag, Err: errShortContainer}
		}
		return n, nil
	}
	start, l := offset, length
	if tag == der.TagBitString {
		start, l = offset+1, length-1
		n.Start = start
	}

	if byTag {
		children, ok := predict(data, start, l)
		if !ok {
			return n, &der.StructuralError{Offset: start, Tag: tag, Err: errChildLengths}
		}
		n.Children = children
		return n, nil
	}

	if tag.Class() == der.ClassUniversal && tag.Number() < 0x1f {
		// A primitive universal value may wrap a single universal child.
		if !validChildTag(data, start) || der.Tag(data[start]).Class() >= der.ClassApplication {
			return n, nil
		}
		if total, ok := peekTotal(data, start); !ok || total != l {
			return n, nil
		}
	}
	children, ok := predict(data, start, l)
	if !ok || !containersComplete(data, children) {
		return n, nil
	}
	n.Container = true
	n.Children = children
	return n, nil
}

// predict reads the headers of consecutive TLVs starting at start until their
// total lengths add up to length. The offsets of the TLVs are returned. If the
// lengths do not add up exactly, or a header is invalid, predict returns
// false.
func predict(data []byte, start, length int) ([]int, bool) {
	end := start + length
	var children []int
	for pos := start; pos < end; {
		if !validChildTag(data, pos) {
			return nil, false
		}
		total, ok := peekTotal(data, pos)
		if !ok || total > end-pos {
			return nil, false
		}
		children = append(children, pos)
		pos += total
	}
	return children, true
}

// containersComplete reports whether every container by tag among the TLVs at
// offsets, and recursively among their children, consists of complete child
// TLVs. Contents that fail this check are left opaque by [ResolveNested]
// instead of failing once the cursor reaches them.
func containersComplete(data []byte, offsets []int) bool {
	for _, pos := range offsets {
		tag := der.Tag(data[pos])
		if !IsContainerTag(tag) {
			continue
		}
		l, n, err := decodeLength(data[pos+1:])
		if err != nil {
			return false
		}
		nested, err := ResolveNested(data, tag, pos+1+n, l)
		if err != nil || !containersComplete(data, nested.Children) {
			return false
		}
	}
	return true
}

// validChildTag reports whether data[pos] exists and is a supported tag.
func validChildTag(data []byte, pos int) bool {
	return pos >= 0 && pos < len(data) && der.Tag(data[pos]).IsValid()
}

// peekTotal returns the total length of the TLV at data[pos] including its
// header. The value is not validated against len(data).
func peekTotal(data []byte, pos int) (int, bool) {
	if pos+1 >= len(data) {
		return 0, false
	}
	l, n, err := decodeLength(data[pos+1:])
	if err != nil {
		return 0, false
	}
	return 1 + n + l, true
}
