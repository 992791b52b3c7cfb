// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package universal

import (
	"bytes"
	"fmt"
	"testing"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"codello.dev/der/tlv"
)

func ExampleBitString() {
	v, _ := Parse([]byte{0x03, 0x02, 0x05, 0xa0})
	s := v.(*BitString)
	fmt.Println(s.BitLength, s)
	fmt.Printf("% x\n", s.RightAlign())
	// Output:
	// 3 101
	// 05
}

func TestBoolean(t *testing.T) {
	for _, v := range []bool{true, false} {
		var b cryptobyte.Builder
		b.AddASN1Boolean(v)
		want := b.BytesOrPanic()
		got := NewBoolean(v)
		if !bytes.Equal(got.Bytes(), want) {
			t.Errorf("NewBoolean(%v) = % x, want % x", v, got.Bytes(), want)
		}
	}

	// BER allows any non-zero value for true
	v, err := Parse([]byte{0x01, 0x01, 0x01})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !v.(*Boolean).Value {
		t.Errorf("Parse(01 01 01) = false, want true")
	}
}

func TestNull(t *testing.T) {
	var b cryptobyte.Builder
	b.AddASN1NULL()
	want := b.BytesOrPanic()
	if got := NewNull(); !bytes.Equal(got.Bytes(), want) {
		t.Errorf("NewNull() = % x, want % x", got.Bytes(), want)
	}
	v, err := Parse(want)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := v.(*Null); !ok {
		t.Errorf("Parse(05 00) = %T, want *Null", v)
	}
}

func TestOctetString(t *testing.T) {
	var b cryptobyte.Builder
	b.AddASN1OctetString([]byte("hello"))
	want := b.BytesOrPanic()
	got, err := NewOctetString([]byte("hello"))
	if err != nil {
		t.Fatalf("NewOctetString() error = %v", err)
	}
	if !bytes.Equal(got.Bytes(), want) {
		t.Errorf("NewOctetString() = % x, want % x", got.Bytes(), want)
	}
	if string(got.Value()) != "hello" {
		t.Errorf("Value() = %q, want %q", got.Value(), "hello")
	}
}

func TestBitString(t *testing.T) {
	tests := map[string]struct {
		bits      []byte
		bitLength int
		want      []byte
		text      string
	}{
		"Empty":       {nil, 0, []byte{0x03, 0x01, 0x00}, ""},
		"FullByte":    {[]byte{0xa5}, 8, []byte{0x03, 0x02, 0x00, 0xa5}, "10100101"},
		"Padding":     {[]byte{0xa0}, 3, []byte{0x03, 0x02, 0x05, 0xa0}, "101"},
		"ClearsBits":  {[]byte{0xff}, 1, []byte{0x03, 0x02, 0x07, 0x80}, "1"},
		"MultiByte":   {[]byte{0xff, 0xc0}, 10, []byte{0x03, 0x03, 0x06, 0xff, 0xc0}, "11111111 11"},
		"ExtraSource": {[]byte{0x0f, 0xff}, 8, []byte{0x03, 0x02, 0x00, 0x0f}, "00001111"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewBitString(tt.bits, tt.bitLength)
			if err != nil {
				t.Fatalf("NewBitString() error = %v", err)
			}
			if !bytes.Equal(got.Bytes(), tt.want) {
				t.Errorf("NewBitString() = % x, want % x", got.Bytes(), tt.want)
			}
			if got.BitLength != tt.bitLength {
				t.Errorf("BitLength = %d, want %d", got.BitLength, tt.bitLength)
			}
			if got.String() != tt.text {
				t.Errorf("String() = %q, want %q", got.String(), tt.text)
			}
		})
	}

	if _, err := NewBitString([]byte{0x01}, 9); err == nil {
		t.Errorf("NewBitString() with too few bytes succeeded")
	}
	if _, err := Parse([]byte{0x03, 0x00}); err == nil {
		t.Errorf("Parse() of empty BIT STRING succeeded")
	}
	if _, err := Parse([]byte{0x03, 0x01, 0x01}); err == nil {
		t.Errorf("Parse() of BIT STRING with padding and no data succeeded")
	}
}

func TestBitString_At(t *testing.T) {
	s := &BitString{Bits: []byte{0x82, 0x40}, BitLength: 10}
	want := []int{1, 0, 0, 0, 0, 0, 1, 0, 0, 1}
	for i, w := range want {
		if got := s.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
	defer func() {
		if recover() == nil {
			t.Errorf("At(10) did not panic")
		}
	}()
	s.At(10)
}

func TestBitString_RightAlign(t *testing.T) {
	tests := map[string]struct {
		bits      []byte
		bitLength int
		want      []byte
	}{
		"Aligned":   {[]byte{0xab, 0xcd}, 16, []byte{0xab, 0xcd}},
		"OneByte":   {[]byte{0xa0}, 3, []byte{0x05}},
		"TwoBytes":  {[]byte{0xff, 0xc0}, 10, []byte{0x03, 0xff}},
		"NoBits":    {nil, 0, nil},
		"SevenBits": {[]byte{0xfe}, 7, []byte{0x7f}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := &BitString{Bits: tt.bits, BitLength: tt.bitLength}
			if got := s.RightAlign(); !bytes.Equal(got, tt.want) {
				t.Errorf("RightAlign() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestBitString_Nested(t *testing.T) {
	// A BIT STRING wrapping a SEQUENCE, as used for public keys.
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.BIT_STRING, func(b *cryptobyte.Builder) {
		b.AddUint8(0)
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(65537)
		})
	})
	data := b.BytesOrPanic()
	c, err := tlv.NewCursor(data)
	if err != nil {
		t.Fatalf("NewCursor() error = %v", err)
	}
	if !c.IsContainer() {
		t.Fatalf("IsContainer() = false, want true")
	}
	s, err := DecodeBitString(c)
	if err != nil {
		t.Fatalf("DecodeBitString() error = %v", err)
	}
	if !bytes.Equal(s.Bits, data[3:]) {
		t.Errorf("Bits = % x, want % x", s.Bits, data[3:])
	}
	if ok, err := c.MoveNext(); !ok || err != nil {
		t.Fatalf("MoveNext() = %v, %v", ok, err)
	}
	if _, err := DecodeInteger(c); err == nil {
		t.Errorf("DecodeInteger() on SEQUENCE succeeded")
	}
	if ok, err := c.MoveNext(); !ok || err != nil {
		t.Fatalf("MoveNext() = %v, %v", ok, err)
	}
	i, err := DecodeInteger(c)
	if err != nil {
		t.Fatalf("DecodeInteger() error = %v", err)
	}
	if i.Value.Int64() != 65537 {
		t.Errorf("DecodeInteger() = %s, want 65537", i.Value)
	}
}
