package protocol

import (
	"bytes"
	"math"
	"testing"
)

func assertBytesEqual(t *testing.T, expected, actual []byte) {
	t.Helper()
	if !bytes.Equal(expected, actual) {
		t.Fatalf("expected % x, got % x", expected, actual)
	}
}

func TestPackedInt32_ConcreteVectors(t *testing.T) {
	cases := []struct {
		value    int32
		expected []byte
	}{
		{0, []byte{0x7F}},
		{120, []byte{0xF7}},
		{-119, []byte{0x08}},
		{121, []byte{0xF8, 0x00}},
		{-120, []byte{0x07, 0xFF}},
	}

	for _, c := range cases {
		got := PutPackedInt32(nil, c.value)
		assertBytesEqual(t, c.expected, got)
	}
}

func TestPackedInt32_SingleByteRange(t *testing.T) {
	for v := int32(-119); v <= 120; v++ {
		encoded := PutPackedInt32(nil, v)
		if len(encoded) != 1 {
			t.Fatalf("value %d: expected 1 byte, got %d", v, len(encoded))
		}
	}
}

func TestPackedInt32_RoundTrip(t *testing.T) {
	values := []int32{
		0, 1, -1, 120, 121, -119, -120, 127, -128,
		1000, -1000, math.MaxInt32, math.MinInt32,
		math.MaxInt32 - 1, math.MinInt32 + 1,
	}

	for _, v := range values {
		encoded := PutPackedInt32(nil, v)
		if len(encoded) > maxPackedInt32Len {
			t.Fatalf("value %d: encoded length %d exceeds max %d", v, len(encoded), maxPackedInt32Len)
		}
		decoded, n := GetPackedInt32(encoded)
		if n != len(encoded) {
			t.Fatalf("value %d: consumed %d bytes, expected %d", v, n, len(encoded))
		}
		if decoded != v {
			t.Fatalf("round trip mismatch: got %d, want %d", decoded, v)
		}
	}
}

func TestPackedInt64_RoundTrip(t *testing.T) {
	values := []int64{
		0, 1, -1, 120, 121, -119, -120,
		math.MaxInt64, math.MinInt64,
		math.MaxInt64 - 1, math.MinInt64 + 1,
		1 << 40, -(1 << 40),
	}

	for _, v := range values {
		encoded := PutPackedInt64(nil, v)
		if len(encoded) > maxPackedInt64Len {
			t.Fatalf("value %d: encoded length %d exceeds max %d", v, len(encoded), maxPackedInt64Len)
		}
		decoded, n := GetPackedInt64(encoded)
		if n != len(encoded) {
			t.Fatalf("value %d: consumed %d bytes, expected %d", v, n, len(encoded))
		}
		if decoded != v {
			t.Fatalf("round trip mismatch: got %d, want %d", decoded, v)
		}
	}
}

func TestPackedInt32_LexicographicOrderMatchesNumericOrder(t *testing.T) {
	values := []int32{
		math.MinInt32, -1 << 20, -120, -119, -1, 0, 1, 120, 121, 1 << 20, math.MaxInt32,
	}

	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			a := PutPackedInt32(nil, values[i])
			b := PutPackedInt32(nil, values[j])
			if bytes.Compare(a, b) >= 0 {
				t.Fatalf("expected encode(%d) < encode(%d), got % x >= % x", values[i], values[j], a, b)
			}
		}
	}
}
