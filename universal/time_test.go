// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package universal

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/cryptobyte"

	"codello.dev/der"
)

func ExampleNewGeneralizedTime() {
	t := time.Date(2024, time.August, 7, 16, 12, 37, 150_000_000, time.UTC)
	gt, _ := NewGeneralizedTime(t, true)
	fmt.Println(gt)
	// Output:
	// 20240807161237.15Z
}

func TestEncodeTime(t *testing.T) {
	fle := time.FixedZone("FLE", 2*60*60)
	west := time.FixedZone("", -(3*60*60 + 30*60))
	tests := map[string]struct {
		tag      der.Tag
		time     time.Time
		fraction bool
		want     string
		wantErr  bool
	}{
		"ZuluSimple":      {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), false, "20240807161237Z", false},
		"ZuluFraction0":   {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), true, "20240807161237Z", false},
		"ZuluFraction1":   {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 100_000_000, time.UTC), true, "20240807161237.1Z", false},
		"ZuluFraction2":   {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 150_000_000, time.UTC), true, "20240807161237.15Z", false},
		"ZuluFraction3":   {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 153_000_000, time.UTC), true, "20240807161237.153Z", false},
		"Nanoseconds":     {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 1, time.UTC), true, "20240807161237.000000001Z", false},
		"FractionOmitted": {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 153_000_000, time.UTC), false, "20240807161237Z", false},
		"TimeZone":        {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 0, fle), false, "20240807161237+0200", false},
		"ZoneFraction":    {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 150_000_000, fle), true, "20240807161237.15+0200", false},
		"NegativeZone":    {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 0, west), false, "20240807161237-0330", false},
		"ZeroOffsetZone":  {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 0, time.FixedZone("GMT", 0)), false, "20240807161237Z", false},
		"LocalToUTC":      {der.TagGeneralizedTime, time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC).Local(), false, "20240807161237Z", false},
		"Year1":           {der.TagGeneralizedTime, time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), false, "00010101000000Z", false},
		"Year9999":        {der.TagGeneralizedTime, time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC), false, "99991231235959Z", false},
		"Year10000":       {der.TagGeneralizedTime, time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), false, "", true},
		"Year0":           {der.TagGeneralizedTime, time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC), false, "", true},
		"UTC":             {der.TagUTCTime, time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), false, "240807161237Z", false},
		"UTC1950":         {der.TagUTCTime, time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), false, "500101000000Z", false},
		"UTC2049":         {der.TagUTCTime, time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC), false, "491231235959Z", false},
		"UTC2050":         {der.TagUTCTime, time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC), false, "", true},
		"UTC1949":         {der.TagUTCTime, time.Date(1949, 12, 31, 23, 59, 59, 0, time.UTC), false, "", true},
		"UTCFraction":     {der.TagUTCTime, time.Date(2024, 8, 7, 16, 12, 37, 500_000_000, fle), true, "240807161237.5+0200", false},
		"WrongTag":        {der.TagInteger, time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), false, "", true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := EncodeTime(tt.tag, tt.time, tt.fraction)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EncodeTime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("EncodeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeTimeBytes(t *testing.T) {
	tests := map[string]struct {
		tag     der.Tag
		text    string
		want    time.Time
		offset  int // expected zone offset in seconds, -1 for local time
		wantErr bool
	}{
		"Zulu":            {der.TagGeneralizedTime, "20240807161237Z", time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), -1, false},
		"ZuluFraction":    {der.TagGeneralizedTime, "20240807161237.153Z", time.Date(2024, 8, 7, 16, 12, 37, 153_000_000, time.UTC), -1, false},
		"CommaFraction":   {der.TagGeneralizedTime, "20240807161237,5Z", time.Date(2024, 8, 7, 16, 12, 37, 500_000_000, time.UTC), -1, false},
		"LongFraction":    {der.TagGeneralizedTime, "20240807161237.1234567891Z", time.Date(2024, 8, 7, 16, 12, 37, 123_456_789, time.UTC), -1, false},
		"Offset":          {der.TagGeneralizedTime, "20240807161237+0200", time.Date(2024, 8, 7, 14, 12, 37, 0, time.UTC), 7200, false},
		"NegativeOffset":  {der.TagGeneralizedTime, "20240807161237-0330", time.Date(2024, 8, 7, 19, 42, 37, 0, time.UTC), -12600, false},
		"FractionOffset":  {der.TagGeneralizedTime, "20240807161237.15+0200", time.Date(2024, 8, 7, 14, 12, 37, 150_000_000, time.UTC), 7200, false},
		"UTCTime":         {der.TagUTCTime, "240807161237Z", time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), -1, false},
		"UTCTime1999":     {der.TagUTCTime, "991231235959Z", time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC), -1, false},
		"UTCTime2049":     {der.TagUTCTime, "491231235959Z", time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC), -1, false},
		"UTCTime1950":     {der.TagUTCTime, "500101000000Z", time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), -1, false},
		"UTCTimeOffset":   {der.TagUTCTime, "240807161237+0200", time.Date(2024, 8, 7, 14, 12, 37, 0, time.UTC), 7200, false},
		"TwoDigitYearGT":  {der.TagGeneralizedTime, "240807161237Z", time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), -1, false},
		"UTCNoZone":       {der.TagUTCTime, "240807161237", time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), -1, false},
		"NoZone":          {der.TagGeneralizedTime, "20240807161237", time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC), -1, false},
		"NoZoneFraction":  {der.TagGeneralizedTime, "20240807161237.5", time.Date(2024, 8, 7, 16, 12, 37, 500_000_000, time.UTC), -1, false},
		"ShortDate":       {der.TagGeneralizedTime, "2024080716Z", time.Time{}, 0, true},
		"LongDate":        {der.TagGeneralizedTime, "2024080716123700Z", time.Time{}, 0, true},
		"InvalidMonth":    {der.TagGeneralizedTime, "20241307161237Z", time.Time{}, 0, true},
		"InvalidDay":      {der.TagGeneralizedTime, "20240230161237Z", time.Time{}, 0, true},
		"InvalidHour":     {der.TagGeneralizedTime, "20240807241237Z", time.Time{}, 0, true},
		"NonDigit":        {der.TagGeneralizedTime, "2024O807161237Z", time.Time{}, 0, true},
		"EmptyFraction":   {der.TagGeneralizedTime, "20240807161237.Z", time.Time{}, 0, true},
		"InvalidFraction": {der.TagGeneralizedTime, "20240807161237.1aZ", time.Time{}, 0, true},
		"ShortOffset":     {der.TagGeneralizedTime, "20240807161237+02", time.Time{}, 0, true},
		"OffsetMinutes":   {der.TagGeneralizedTime, "20240807161237+0260", time.Time{}, 0, true},
		"Empty":           {der.TagGeneralizedTime, "", time.Time{}, 0, true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeTimeBytes(tt.tag, []byte(tt.text))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeTimeBytes(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if err != nil {
				var target *der.ValueError
				if !errors.As(err, &target) {
					t.Errorf("DecodeTimeBytes() error = %T, want *der.ValueError", err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("DecodeTimeBytes(%q) = %s, want %s", tt.text, got, tt.want)
			}
			if tt.offset < 0 {
				if got.Location() != time.Local {
					t.Errorf("DecodeTimeBytes(%q) location = %s, want Local", tt.text, got.Location())
				}
			} else if _, off := got.Zone(); off != tt.offset {
				t.Errorf("DecodeTimeBytes(%q) offset = %d, want %d", tt.text, off, tt.offset)
			}
		})
	}
}

func TestDecodeTimeBytes_WithoutZone(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("EDT", -4*60*60)
	defer func() { time.Local = local }()

	got, err := DecodeTimeBytes(der.TagGeneralizedTime, []byte("20240807161237"))
	if err != nil {
		t.Fatalf("DecodeTimeBytes() error = %v", err)
	}
	if got.Location() != time.Local {
		t.Errorf("DecodeTimeBytes() location = %s, want Local", got.Location())
	}
	if h, m, s := got.Clock(); h != 12 || m != 12 || s != 37 {
		t.Errorf("DecodeTimeBytes() = %s, want 12:12:37 local", got)
	}
	zulu, err := DecodeTimeBytes(der.TagGeneralizedTime, []byte("20240807161237Z"))
	if err != nil {
		t.Fatalf("DecodeTimeBytes() error = %v", err)
	}
	if !got.Equal(zulu) {
		t.Errorf("DecodeTimeBytes() = %s, want %s", got, zulu)
	}
}

func TestTime_Oracle(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 8, 7, 16, 12, 37, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2001, 2, 3, 4, 5, 6, 0, time.FixedZone("", 2*60*60)),
		time.Date(2049, 1, 1, 0, 0, 0, 0, time.FixedZone("", -5*60*60)),
	}
	for _, tm := range times {
		t.Run(tm.String(), func(t *testing.T) {
			var b cryptobyte.Builder
			b.AddASN1UTCTime(tm)
			want := b.BytesOrPanic()
			ut, err := NewUTCTime(tm, false)
			if err != nil {
				t.Fatalf("NewUTCTime() error = %v", err)
			}
			if !bytes.Equal(ut.Bytes(), want) {
				t.Errorf("NewUTCTime() = % x, want % x", ut.Bytes(), want)
			}
			if !ut.Value.Equal(tm) {
				t.Errorf("NewUTCTime().Value = %s, want %s", ut.Value, tm)
			}

			b = cryptobyte.Builder{}
			b.AddASN1GeneralizedTime(tm)
			want = b.BytesOrPanic()
			gt, err := NewGeneralizedTime(tm, false)
			if err != nil {
				t.Fatalf("NewGeneralizedTime() error = %v", err)
			}
			if !bytes.Equal(gt.Bytes(), want) {
				t.Errorf("NewGeneralizedTime() = % x, want % x", gt.Bytes(), want)
			}

			var read time.Time
			input := cryptobyte.String(gt.Bytes())
			if !input.ReadASN1GeneralizedTime(&read) || !read.Equal(tm) {
				t.Errorf("ReadASN1GeneralizedTime(% x) = %s, want %s", gt.Bytes(), read, tm)
			}
		})
	}
}

func TestNewRFC5280Time(t *testing.T) {
	tests := map[string]struct {
		time time.Time
		tag  der.Tag
	}{
		"1950": {time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), der.TagUTCTime},
		"2049": {time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC), der.TagUTCTime},
		"2050": {time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC), der.TagGeneralizedTime},
		"1949": {time.Date(1949, 12, 31, 0, 0, 0, 0, time.UTC), der.TagGeneralizedTime},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewRFC5280Time(tt.time)
			if err != nil {
				t.Fatalf("NewRFC5280Time() error = %v", err)
			}
			if got.Tag() != tt.tag {
				t.Errorf("NewRFC5280Time() tag = %s, want %s", got.Tag(), tt.tag)
			}
			if !got.Value.Equal(tt.time) {
				t.Errorf("NewRFC5280Time() = %s, want %s", got.Value, tt.time)
			}
		})
	}
}
