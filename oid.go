// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"math/big"
	"slices"
	"strings"
)

// MaxOIDTextLength is the maximum length in bytes of the dotted text form
// accepted by [ParseObjectIdentifier] and [ParseRelativeOID].
const MaxOIDTextLength = 8192

var (
	errOIDTooShort  = errors.New("object identifier needs at least two arcs")
	errOIDFirstArc  = errors.New("first arc must be 0, 1 or 2")
	errOIDSecondArc = errors.New("second arc must be less than 40 when the first arc is 0 or 1")
	errEmptyArc     = errors.New("empty arc")
	errNilArc       = errors.New("nil arc")
	errArcSyntax    = errors.New("arc is not a decimal number")
	errOIDText      = errors.New("text form too long")
	errNoArcs       = errors.New("relative object identifier needs at least one arc")
	bigForty        = big.NewInt(40)
)

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// An ObjectIdentifier represents an ASN.1 OBJECT IDENTIFIER. The semantics of
// an object identifier are specified in [Rec. ITU-T X.660]. Arcs have
// arbitrary precision.
//
// See also section 32 of Rec. ITU-T X.680.
//
// [Rec. ITU-T X.660]: https://www.itu.int/rec/T-REC-X.660
type ObjectIdentifier []*big.Int

// ParseObjectIdentifier parses the dotted decimal notation of an object
// identifier, such as "1.2.840.113549". The result is validated with
// [ObjectIdentifier.Validate].
func ParseObjectIdentifier(s string) (ObjectIdentifier, error) {
	arcs, err := parseArcs(s, TagOID)
	if err != nil {
		return nil, err
	}
	oid := ObjectIdentifier(arcs)
	if err = oid.Validate(); err != nil {
		return nil, err
	}
	return oid, nil
}

// MustParseObjectIdentifier is like [ParseObjectIdentifier] but panics if s
// cannot be parsed.
func MustParseObjectIdentifier(s string) ObjectIdentifier {
	oid, err := ParseObjectIdentifier(s)
	if err != nil {
		panic(err)
	}
	return oid
}

// Validate reports whether oid can be encoded. An object identifier has at
// least two arcs, the first arc is 0, 1 or 2 and the second arc is less than 40
// unless the first arc is 2. The returned error is a [*ValueError].
func (oid ObjectIdentifier) Validate() error {
	if len(oid) < 2 {
		return &ValueError{TagOID, errOIDTooShort}
	}
	if slices.Contains(oid, nil) {
		return &ValueError{TagOID, errNilArc}
	}
	if oid[0].Sign() < 0 || oid[0].Cmp(big.NewInt(2)) > 0 {
		return &ValueError{TagOID, errOIDFirstArc}
	}
	if oid[0].Cmp(big.NewInt(2)) < 0 && oid[1].Cmp(bigForty) >= 0 {
		return &ValueError{TagOID, errOIDSecondArc}
	}
	for _, arc := range oid[1:] {
		if arc.Sign() < 0 {
			return &ValueError{TagOID, errArcSyntax}
		}
	}
	return nil
}

// Equal reports whether oid and other represent the same identifier.
func (oid ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	return slices.EqualFunc(oid, other, equalArc)
}

// String returns the dot-separated notation of oid.
func (oid ObjectIdentifier) String() string {
	return formatArcs(oid, false)
}

//endregion

//region [UNIVERSAL 13] RELATIVE-OID

// RelativeOID represents the ASN.1 RELATIVE-OID type. It is similar to the
// [ObjectIdentifier] type, but a RelativeOID is only a suffix of an OID. Its
// arcs carry no constraints beyond being non-negative.
//
// See also section 33 of Rec. ITU-T X.680.
type RelativeOID []*big.Int

// ParseRelativeOID parses the dotted decimal notation of a relative object
// identifier. A single leading dot is accepted, so ".127.1" and "127.1" denote
// the same value.
func ParseRelativeOID(s string) (RelativeOID, error) {
	s, _ = strings.CutPrefix(s, ".")
	arcs, err := parseArcs(s, TagRelativeOID)
	if err != nil {
		return nil, err
	}
	return arcs, nil
}

// Validate reports whether oid can be encoded. The returned error is a
// [*ValueError].
func (oid RelativeOID) Validate() error {
	if len(oid) == 0 {
		return &ValueError{TagRelativeOID, errNoArcs}
	}
	if slices.Contains(oid, nil) {
		return &ValueError{TagRelativeOID, errNilArc}
	}
	for _, arc := range oid {
		if arc.Sign() < 0 {
			return &ValueError{TagRelativeOID, errArcSyntax}
		}
	}
	return nil
}

// Equal reports whether oid and other represent the same identifier.
func (oid RelativeOID) Equal(other RelativeOID) bool {
	return slices.EqualFunc(oid, other, equalArc)
}

// String returns the dot-separated notation of oid. The result always starts
// with a dot to distinguish it from an absolute identifier.
func (oid RelativeOID) String() string {
	return formatArcs(oid, true)
}

//endregion

// parseArcs splits s at dots and parses every part as a non-negative decimal
// number.
func parseArcs(s string, tag Tag) ([]*big.Int, error) {
	if len(s) > MaxOIDTextLength {
		return nil, &OverflowError{errOIDText}
	}
	if s == "" {
		if tag == TagRelativeOID {
			return nil, &ValueError{tag, errNoArcs}
		}
		return nil, &ValueError{tag, errOIDTooShort}
	}
	parts := strings.Split(s, ".")
	arcs := make([]*big.Int, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, &ValueError{tag, errEmptyArc}
		}
		for j := 0; j < len(part); j++ {
			if part[j] < '0' || part[j] > '9' {
				return nil, &ValueError{tag, errArcSyntax}
			}
		}
		arc, ok := new(big.Int).SetString(part, 10)
		if !ok {
			return nil, &ValueError{tag, errArcSyntax}
		}
		arcs[i] = arc
	}
	return arcs, nil
}

// equalArc compares two arcs. A nil arc only equals another nil arc.
func equalArc(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

func formatArcs(arcs []*big.Int, leadingDot bool) string {
	var s strings.Builder
	s.Grow(32)

	buf := make([]byte, 0, 19)
	for i, v := range arcs {
		if i > 0 || leadingDot {
			s.WriteByte('.')
		}
		s.Write(v.Append(buf, 10))
	}
	return s.String()
}
