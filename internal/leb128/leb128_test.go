package leb128

import "testing"

func TestUnsignedRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 16384, 1 << 40} {
		buf := EncodeUnsigned(v)
		got, n := DecodeUnsigned(buf)
		if got != v || n != len(buf) {
			t.Fatalf("EncodeUnsigned(%d) round-trip: got %d (%d bytes), want %d (%d bytes)", v, got, n, v, len(buf))
		}
	}
}

func TestSignedRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 63, -64, 64, -65, 1000000, -1000000} {
		buf := EncodeSigned(v)
		got, n := DecodeSigned(buf)
		if got != v || n != len(buf) {
			t.Fatalf("EncodeSigned(%d) round-trip: got %d (%d bytes), want %d (%d bytes)", v, got, n, v, len(buf))
		}
	}
}

func TestUnsignedKnownEncodings(t *testing.T) {
	cases := map[uint64][]byte{
		0:   {0x00},
		1:   {0x01},
		127: {0x7f},
		128: {0x80, 0x01},
	}
	for v, want := range cases {
		got := EncodeUnsigned(v)
		if string(got) != string(want) {
			t.Fatalf("EncodeUnsigned(%d) = % x, want % x", v, got, want)
		}
	}
}
