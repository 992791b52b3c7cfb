// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package universal

import (
	"errors"
	"strings"
	"time"

	"codello.dev/der"
	"codello.dev/der/tlv"
)

var (
	errTimeRange    = errors.New("year out of range")
	errTimeSyntax   = errors.New("invalid time format")
	errTimeZone     = errors.New("invalid time zone")
	errTimeFraction = errors.New("invalid fractional seconds")
)

//region [UNIVERSAL 23] UTCTime and [UNIVERSAL 24] GeneralizedTime

// Time represents an ASN.1 UTCTime or GeneralizedTime value. The tag of the
// value determines which of the two types it is.
//
// See also sections 46 and 47 of Rec. ITU-T X.680.
type Time struct {
	element
	Value time.Time
}

// NewUTCTime returns the UTCTime encoding of t. UTCTime can only represent
// years between 1950 and 2049. If fraction is true, the fractional seconds of t
// are included.
//
// If t is in the [time.Local] location, it is converted to UTC. Times with a
// zero offset use the zone suffix "Z". Other locations are encoded with their
// offset as ±hhmm.
func NewUTCTime(t time.Time, fraction bool) (*Time, error) {
	b, err := EncodeTime(der.TagUTCTime, t, fraction)
	if err != nil {
		return nil, err
	}
	c, err := encode(der.TagUTCTime, b)
	if err != nil {
		return nil, err
	}
	return DecodeTime(c)
}

// NewGeneralizedTime is like [NewUTCTime] but produces a GeneralizedTime
// value. GeneralizedTime can represent years between 1 and 9999.
func NewGeneralizedTime(t time.Time, fraction bool) (*Time, error) {
	b, err := EncodeTime(der.TagGeneralizedTime, t, fraction)
	if err != nil {
		return nil, err
	}
	c, err := encode(der.TagGeneralizedTime, b)
	if err != nil {
		return nil, err
	}
	return DecodeTime(c)
}

// NewRFC5280Time encodes t as required by RFC 5280 for certificate validity:
// UTCTime for the years 1950 through 2049 and GeneralizedTime otherwise.
// Fractional seconds are omitted.
func NewRFC5280Time(t time.Time) (*Time, error) {
	year := t.Year()
	if t.Location() == time.Local {
		year = t.UTC().Year()
	}
	if year >= 1950 && year < 2050 {
		return NewUTCTime(t, false)
	}
	return NewGeneralizedTime(t, false)
}

// DecodeTime decodes the UTCTime or GeneralizedTime value at the current
// position of c.
func DecodeTime(c *tlv.Cursor) (*Time, error) {
	if err := expectTag(c, der.TagUTCTime, der.TagGeneralizedTime); err != nil {
		return nil, err
	}
	t, err := DecodeTimeBytes(c.Tag(), c.Payload())
	if err != nil {
		return nil, err
	}
	return &Time{newElement(c), t}, nil
}

// String returns the textual contents of t as they appear in the encoding.
func (t *Time) String() string {
	return string(t.Payload())
}

// EncodeTime returns the contents octets of t for the given tag, which must be
// [der.TagUTCTime] or [der.TagGeneralizedTime]. See [NewUTCTime] for details.
func EncodeTime(tag der.Tag, t time.Time, fraction bool) ([]byte, error) {
	if tag != der.TagUTCTime && tag != der.TagGeneralizedTime {
		return nil, &der.TagMismatchError{Tag: tag, Expected: []der.Tag{der.TagUTCTime, der.TagGeneralizedTime}}
	}
	if t.Location() == time.Local {
		t = t.UTC()
	}
	year := t.Year()
	if tag == der.TagUTCTime && (year < 1950 || year >= 2050) ||
		tag == der.TagGeneralizedTime && (year < 1 || year > 9999) {
		return nil, &der.ValueError{Tag: tag, Err: errTimeRange}
	}

	b := strings.Builder{}
	b.Grow(29) // allocate enough space for nanosecond precision
	if tag == der.TagUTCTime {
		b.WriteString(itoaN(year%100, 2))
	} else {
		b.WriteString(itoaN(year, 4))
	}
	b.WriteString(itoaN(int(t.Month()), 2))
	b.WriteString(itoaN(t.Day(), 2))
	b.WriteString(itoaN(t.Hour(), 2))
	b.WriteString(itoaN(t.Minute(), 2))
	b.WriteString(itoaN(t.Second(), 2))
	if fraction && t.Nanosecond() > 0 {
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(itoaN(t.Nanosecond(), 9), "0"))
	}
	_, offset := t.Zone()
	offset /= 60
	if offset == 0 {
		b.WriteByte('Z')
		return []byte(b.String()), nil
	}
	if offset < 0 {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}
	b.WriteString(itoaN(offset/60, 2))
	b.WriteString(itoaN(offset%60, 2))
	return []byte(b.String()), nil
}

// DecodeTimeBytes parses the contents octets of a UTCTime or GeneralizedTime.
//
// The digits before an optional fraction determine the year format: 12 digits
// use a two-digit year (years below 50 are in the 21st century), 14 digits a
// four-digit year. The value ends with "Z", or an offset ±hhmm, or nothing at
// all. A value with "Z" or without zone is interpreted as UTC and returned in
// [time.Local], an offset produces a fixed zone.
func DecodeTimeBytes(tag der.Tag, b []byte) (time.Time, error) {
	s := string(b)

	var loc *time.Location
	utc := false
	if strings.HasSuffix(s, "Z") {
		utc = true
		loc = time.UTC
		s = s[:len(s)-1]
	} else if i := strings.IndexAny(s, "+-"); i >= 0 {
		loc = parseOffset(s[i:])
		if loc == nil {
			return time.Time{}, &der.ValueError{Tag: tag, Err: errTimeZone}
		}
		s = s[:i]
	} else {
		utc = true
		loc = time.UTC
	}

	var nsec int
	if i := strings.IndexAny(s, ".,"); i >= 0 {
		frac := s[i+1:]
		if frac == "" {
			return time.Time{}, &der.ValueError{Tag: tag, Err: errTimeFraction}
		}
		for j := 0; j < len(frac); j++ {
			if frac[j] < '0' || '9' < frac[j] {
				return time.Time{}, &der.ValueError{Tag: tag, Err: errTimeFraction}
			}
		}
		// digits beyond nanoseconds are discarded
		for j := 0; j < 9; j++ {
			nsec *= 10
			if j < len(frac) {
				nsec += int(frac[j] - '0')
			}
		}
		s = s[:i]
	}

	var year int
	switch len(s) {
	case 12:
		year = atoiN[int](s, 2)
		if year >= 0 && year < 50 {
			year += 2000
		} else if year >= 0 {
			year += 1900
		}
		s = s[2:]
	case 14:
		year = atoiN[int](s, 4)
		s = s[4:]
	default:
		return time.Time{}, &der.ValueError{Tag: tag, Err: errTimeSyntax}
	}
	month := atoiN[time.Month](s, 2)
	day := atoiN[int](s[2:], 2)
	hour := atoiN[int](s[4:], 2)
	minute := atoiN[int](s[6:], 2)
	second := atoiN[int](s[8:], 2)
	if year < 0 || month < 0 || day < 0 || hour < 0 || minute < 0 || second < 0 {
		return time.Time{}, &der.ValueError{Tag: tag, Err: errTimeSyntax}
	}

	ret := time.Date(year, month, day, hour, minute, second, nsec, loc)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day ||
		ret.Hour() != hour || ret.Minute() != minute || ret.Second() != second {
		return time.Time{}, &der.ValueError{Tag: tag, Err: errTimeSyntax}
	}
	if utc {
		ret = ret.Local()
	}
	return ret, nil
}

// parseOffset parses a zone offset of the form ±hhmm.
func parseOffset(s string) *time.Location {
	if len(s) != 5 {
		return nil
	}
	if s[0] != '+' && s[0] != '-' {
		return nil
	}
	mul := 44 - int(s[0])
	locHour := atoiN[int](s[1:], 2)
	locMinute := atoiN[int](s[3:], 2)
	if locHour < 0 || locHour > 23 || locMinute < 0 || locMinute > 59 {
		return nil
	}
	return time.FixedZone("", mul*(locHour*3600+locMinute*60))
}

// atoiN parses exactly n decimal digits from the start of s. The result is -1
// if s is too short or contains a non-digit.
func atoiN[T ~int | ~int64](s string, n int) (i T) {
	if len(s) < n {
		return -1
	}
	for j := 0; j < n; j++ {
		if s[j] < '0' || '9' < s[j] {
			return -1
		}
		i = i*10 + T(s[j]-'0')
	}
	return i
}

// itoaN returns the base 10 string representation of the absolute value of i,
// truncated or zero padded to exactly n digits.
func itoaN(i int, n int) string {
	if i < 0 {
		i = -i
	}
	bs := make([]byte, n)
	for ; n > 0; n-- {
		bs[n-1] = '0' + byte(i%10)
		i /= 10
	}
	return string(bs)
}

//endregion
