package sproto

import (
	"bytes"
	"testing"
)

func TestPackAllZeroGroup(t *testing.T) {
	data := make([]byte, 8)
	got, err := Pack(data, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestPackSingleGroupWithLiterals(t *testing.T) {
	data := []byte{0, 0, 7, 0, 0, 0, 0, 0}
	got, err := Pack(data, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x04, 7} // bit 2 set (third byte nonzero), one literal
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestPackAllOnesGroup(t *testing.T) {
	data := []byte{1, 1, 1, 1, 1, 1, 1, 1}
	got, err := Pack(data, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := append([]byte{0xFF, 0x00}, data...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestPackRunOfIncompressibleGroups(t *testing.T) {
	group := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := append(append([]byte{}, group...), group...)
	got, err := Pack(data, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := append([]byte{0xFF, 0x01}, data...)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	// Pack/Unpack operate in whole 8-byte groups, so inputs whose length
	// isn't a multiple of 8 come back zero-padded to the next group
	// boundary; the true length is tracked by the caller (e.g. the
	// struct's own encoded length), not recovered from Unpack alone.
	cases := [][]byte{
		{},
		{0},
		make([]byte, 8),
		{1, 2, 3, 4, 5, 6, 7, 8, 9},
		bytes.Repeat([]byte{0x7F}, 8*300), // forces more than one 0xFF run chunk
		{0, 0, 0, 0, 0, 0, 0, 1, 2, 3},
	}
	for i, data := range cases {
		packed, err := Pack(data, 0)
		if err != nil {
			t.Fatalf("case %d: pack error: %v", i, err)
		}
		unpacked, err := Unpack(packed, 0)
		if err != nil {
			t.Fatalf("case %d: unpack error: %v", i, err)
		}
		padded := len(data)
		if r := padded % 8; r != 0 {
			padded += 8 - r
		}
		want := make([]byte, padded)
		copy(want, data)
		if !bytes.Equal(unpacked, want) {
			t.Fatalf("case %d: round trip mismatch: got %x want %x", i, unpacked, want)
		}
	}
}

func TestUnpackTruncated(t *testing.T) {
	_, err := Unpack([]byte{0xFF}, 0)
	if err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}

	_, err = Unpack([]byte{0x01}, 0) // bit 0 set but no literal byte follows
	if err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestPackOutputTooLarge(t *testing.T) {
	data := bytes.Repeat([]byte{1}, 8*300)
	_, err := Pack(data, 16)
	if err != ErrOutputTooLarge {
		t.Fatalf("expected ErrOutputTooLarge, got %v", err)
	}
}
