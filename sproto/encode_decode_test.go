package sproto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// fooType mirrors the single-field worked example: a struct with one
// integer field "x" at tag 0.
var fooType = &Type{
	Name: "foo",
	Base: 0,
	Fields: []Field{
		{Tag: 0, Name: "x", Type: TInteger},
	},
}

func TestEncodeInlineIntegerWorkedExample(t *testing.T) {
	got, err := Encode(fooType, Struct(map[string]Value{"x": Int(7)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x02, 0x00, 0x10, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}

	v, err := Decode(fooType, got)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	x, ok := v.Get("x")
	if !ok || x.Int != 7 {
		t.Fatalf("got %+v", v)
	}
}

var gapType = &Type{
	Name: "gap",
	Base: 0,
	Fields: []Field{
		{Tag: 0, Name: "a", Type: TInteger},
		{Tag: 1, Name: "b", Type: TInteger},
	},
}

func TestEncodeSkippedFieldGapWorkedExample(t *testing.T) {
	got, err := Encode(gapType, Struct(map[string]Value{"b": Int(5)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x04, 0x00, 0x01, 0x00, 0x0c, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}

	v, err := Decode(gapType, got)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	_, hasA := v.Get("a")
	require.False(t, hasA)
	b, ok := v.Get("b")
	require.True(t, ok)
	require.Equal(t, int64(5), b.Int)
}

func TestEncodeDecodeRoundTripString(t *testing.T) {
	ty := &Type{
		Name: "msg",
		Base: 0,
		Fields: []Field{
			{Tag: 0, Name: "text", Type: TString},
		},
	}
	in := Struct(map[string]Value{"text": String("hello sconn")})
	out, err := Encode(ty, in)
	require.NoError(t, err)
	v, err := Decode(ty, out)
	require.NoError(t, err)
	got, ok := v.Get("text")
	require.True(t, ok)
	require.Equal(t, "hello sconn", got.Str)
}

func TestEncodeDecodeRoundTripNestedStructAndArray(t *testing.T) {
	inner := &Type{
		Name: "point",
		Base: 0,
		Fields: []Field{
			{Tag: 0, Name: "x", Type: TInteger},
			{Tag: 1, Name: "y", Type: TInteger},
		},
	}
	outer := &Type{
		Name: "path",
		Base: 0,
		Fields: []Field{
			{Tag: 0, Name: "points", Type: TStruct, Array: true, SubType: inner},
			{Tag: 1, Name: "tags", Type: TString, Array: true},
		},
	}

	in := Struct(map[string]Value{
		"points": Array([]Value{
			Struct(map[string]Value{"x": Int(1), "y": Int(2)}),
			Struct(map[string]Value{"x": Int(-5), "y": Int(100000)}),
		}),
		"tags": Array([]Value{String("a"), String("bb")}),
	})

	out, err := Encode(outer, in)
	require.NoError(t, err)
	v, err := Decode(outer, out)
	require.NoError(t, err)

	points, ok := v.Get("points")
	require.True(t, ok)
	require.Len(t, points.Array, 2)
	p0, _ := points.Array[0].Get("x")
	require.Equal(t, int64(1), p0.Int)
	p1, _ := points.Array[1].Get("y")
	require.Equal(t, int64(100000), p1.Int)

	tags, ok := v.Get("tags")
	require.True(t, ok)
	require.Len(t, tags.Array, 2)
	require.Equal(t, "a", tags.Array[0].Str)
	require.Equal(t, "bb", tags.Array[1].Str)
}

func TestEncodeDecodeRoundTripDecimalAndBoolean(t *testing.T) {
	ty := &Type{
		Name: "account",
		Base: 0,
		Fields: []Field{
			{Tag: 0, Name: "balance", Type: TInteger, Extra: 100},
			{Tag: 1, Name: "active", Type: TBoolean},
		},
	}
	in := Struct(map[string]Value{
		"balance": Decimal(19.99),
		"active":  Bool(true),
	})
	out, err := Encode(ty, in)
	require.NoError(t, err)
	v, err := Decode(ty, out)
	require.NoError(t, err)

	balance, ok := v.Get("balance")
	require.True(t, ok)
	require.InDelta(t, 19.99, balance.Dec, 0.001)

	active, ok := v.Get("active")
	require.True(t, ok)
	require.True(t, active.Bool)
}

func TestEncodeDecodeRoundTripBinaryField(t *testing.T) {
	ty := &Type{
		Name: "blob",
		Base: 0,
		Fields: []Field{
			{Tag: 0, Name: "payload", Type: TString, IsBinary: true},
		},
	}
	in := Struct(map[string]Value{"payload": Binary([]byte{0, 1, 2, 255})})
	out, err := Encode(ty, in)
	require.NoError(t, err)
	v, err := Decode(ty, out)
	require.NoError(t, err)
	got, ok := v.Get("payload")
	require.True(t, ok)
	require.Equal(t, []byte{0, 1, 2, 255}, got.Bin)
}

func TestObjLenReportsConsumedBytesOnly(t *testing.T) {
	enc, err := Encode(fooType, Struct(map[string]Value{"x": Int(7)}))
	require.NoError(t, err)
	trailing := append(append([]byte{}, enc...), 0xAA, 0xBB, 0xCC)

	n, err := ObjLen(fooType, trailing)
	require.NoError(t, err)
	require.Equal(t, len(enc), n)

	v, err := Decode(fooType, trailing)
	require.NoError(t, err)
	x, _ := v.Get("x")
	require.Equal(t, int64(7), x.Int)
}

func TestEncodeUnknownFieldIgnored(t *testing.T) {
	in := Struct(map[string]Value{"x": Int(1), "ghost": String("nope")})
	out, err := Encode(fooType, in)
	require.NoError(t, err)
	v, err := Decode(fooType, out)
	require.NoError(t, err)
	_, ok := v.Get("ghost")
	require.False(t, ok)
}

func TestEncodeTypeMismatch(t *testing.T) {
	_, err := Encode(fooType, Struct(map[string]Value{"x": String("not an int")}))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestDecodeLargeIntegerUsesEightByteBlob(t *testing.T) {
	big := &Type{
		Name: "big",
		Base: 0,
		Fields: []Field{
			{Tag: 0, Name: "n", Type: TInteger},
		},
	}
	in := Struct(map[string]Value{"n": Int(1 << 40)})
	out, err := Encode(big, in)
	require.NoError(t, err)
	v, err := Decode(big, out)
	require.NoError(t, err)
	n, ok := v.Get("n")
	require.True(t, ok)
	require.Equal(t, int64(1<<40), n.Int)
}
