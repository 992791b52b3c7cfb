// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"strconv"
	"strings"
)

// A StructuralError indicates that the TLV structure of the input is
// malformed: a reserved tag, a length that overruns the buffer or the
// enclosing value, or children whose lengths do not add up to the length of
// their parent.
//
// The Offset is the position of the TLV header that contains the error. Tag
// is the identifier octet found at that position, if known.
type StructuralError struct {
	Offset int
	Tag    Tag
	Err    error
}

func (e *StructuralError) Error() string {
	var s strings.Builder
	s.WriteString("der: structural error")
	if e.Tag != 0 {
		s.WriteString(" in ")
		s.WriteString(e.Tag.String())
	}
	s.WriteString(" at offset ")
	s.WriteString(strconv.Itoa(e.Offset))
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// A TagMismatchError indicates that a value was found where a value with one
// of the Expected tags was required.
type TagMismatchError struct {
	Offset   int
	Tag      Tag
	Expected []Tag
}

func (e *TagMismatchError) Error() string {
	var s strings.Builder
	s.WriteString("der: unexpected ")
	s.WriteString(e.Tag.String())
	s.WriteString(" at offset ")
	s.WriteString(strconv.Itoa(e.Offset))
	if len(e.Expected) > 0 {
		s.WriteString(", expected ")
		for i, t := range e.Expected {
			if i > 0 {
				s.WriteString(" or ")
			}
			s.WriteString(t.String())
		}
	}
	return s.String()
}

// A BoundsError indicates that a byte offset does not refer to a known TLV
// boundary.
type BoundsError struct {
	Offset int
	Err    error
}

func (e *BoundsError) Error() string {
	s := "der: offset " + strconv.Itoa(e.Offset) + " out of bounds"
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *BoundsError) Unwrap() error {
	return e.Err
}

// A ValueError indicates that the contents of a well-formed TLV, or a Go value
// passed to an encoder, is outside the domain of the type identified by Tag.
// Examples are an empty INTEGER, an OBJECT IDENTIFIER with a first arc of 3,
// or a UTCTime in the year 2050.
type ValueError struct {
	Tag Tag
	Err error
}

func (e *ValueError) Error() string {
	var s strings.Builder
	s.WriteString("der: invalid value")
	if e.Tag != 0 {
		s.WriteString(" for ")
		s.WriteString(e.Tag.String())
	}
	if e.Err != nil {
		s.WriteString(": ")
		s.WriteString(e.Err.Error())
	}
	return s.String()
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// An OverflowError indicates that a quantity exceeds a supported limit, such
// as a length that needs more than 4 bytes or an object identifier text that is
// too long to be parsed.
type OverflowError struct {
	Err error
}

func (e *OverflowError) Error() string {
	if e.Err == nil {
		return "der: overflow"
	}
	return "der: overflow: " + e.Err.Error()
}

func (e *OverflowError) Unwrap() error {
	return e.Err
}
