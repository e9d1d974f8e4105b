package sproto

import (
	"encoding/binary"
	"math"
)

// Encode encodes v (which must be KindStruct) against type t.
func Encode(t *Type, v Value) ([]byte, error) {
	return encodeStruct(t, v, 0)
}

func encodeStruct(t *Type, v Value, depth int) ([]byte, error) {
	if depth > maxDepth {
		return nil, ErrRecursionTooDeep
	}
	if v.Kind != KindStruct {
		return nil, ErrTypeMismatch
	}

	var slots []uint16
	var region []byte
	lastTag := -1

	for i := range t.Fields {
		f := &t.Fields[i]
		fv, present := v.Object[f.Name]
		if !present {
			continue
		}
		if gap := f.Tag - lastTag - 1; gap > 0 {
			slots = append(slots, uint16(((gap-1)<<1)|1))
		}
		lastTag = f.Tag

		slot, blob, isBlob, err := encodeField(f, fv, depth)
		if err != nil {
			return nil, err
		}
		if isBlob {
			slots = append(slots, 0)
			region = append(region, writeBlob(blob)...)
		} else {
			slots = append(slots, slot)
		}
	}

	return writeRecord(slots, region), nil
}

// canInline reports whether raw fits the "(value+1)*2" inline slot
// encoding (spec §8 scenario 2; §9 resolves the negative-value ambiguity
// by excluding negatives from the inline path -- see DESIGN.md).
func canInline(raw int64) bool {
	return raw >= 0 && raw <= 0x7ffe
}

// encodeField returns either an inline slot value (isBlob == false) or
// raw (unwrapped) blob content the caller must length-prefix.
func encodeField(f *Field, v Value, depth int) (slot uint16, blob []byte, isBlob bool, err error) {
	if f.Array {
		blob, err = encodeArrayBlob(f, v, depth)
		return 0, blob, true, err
	}

	switch f.Type {
	case TInteger:
		raw, err := scaledInt(f, v)
		if err != nil {
			return 0, nil, false, err
		}
		if canInline(raw) {
			return uint16((raw + 1) * 2), nil, false, nil
		}
		return 0, encodeIntBytes(raw), true, nil

	case TBoolean:
		if v.Kind != KindBoolean {
			return 0, nil, false, ErrTypeMismatch
		}
		raw := int64(0)
		if v.Bool {
			raw = 1
		}
		return uint16((raw + 1) * 2), nil, false, nil

	case TDouble:
		if v.Kind != KindDouble {
			return 0, nil, false, ErrTypeMismatch
		}
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(v.Double))
		return 0, b, true, nil

	case TString:
		raw, err := stringBytes(f, v)
		if err != nil {
			return 0, nil, false, err
		}
		return 0, raw, true, nil

	case TStruct:
		if v.Kind != KindStruct {
			return 0, nil, false, ErrTypeMismatch
		}
		sub, err := encodeStruct(f.SubType, v, depth+1)
		if err != nil {
			return 0, nil, false, err
		}
		return 0, sub, true, nil

	default:
		return 0, nil, false, ErrBadFieldType
	}
}

func scaledInt(f *Field, v Value) (int64, error) {
	if f.Extra > 0 {
		var dec float64
		switch v.Kind {
		case KindDecimal:
			dec = v.Dec
		case KindInteger:
			dec = float64(v.Int)
		default:
			return 0, ErrTypeMismatch
		}
		return int64(math.Round(dec * float64(f.Extra))), nil
	}
	if v.Kind != KindInteger {
		return 0, ErrTypeMismatch
	}
	return v.Int, nil
}

func stringBytes(f *Field, v Value) ([]byte, error) {
	if f.IsBinary {
		if v.Kind != KindBinary {
			return nil, ErrTypeMismatch
		}
		return v.Bin, nil
	}
	if v.Kind != KindString {
		return nil, ErrTypeMismatch
	}
	return []byte(v.Str), nil
}

func encodeIntBytes(raw int64) []byte {
	if raw >= math.MinInt32 && raw <= math.MaxInt32 {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(raw)))
		return b
	}
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(raw))
	return b
}

func encodeArrayBlob(f *Field, v Value, depth int) ([]byte, error) {
	if v.Kind != KindArray {
		return nil, ErrTypeMismatch
	}
	elems := v.Array

	switch f.Type {
	case TInteger:
		if len(elems) == 0 {
			return []byte{}, nil
		}
		raws := make([]int64, len(elems))
		width := 4
		for i, e := range elems {
			raw, err := scaledInt(f, e)
			if err != nil {
				return nil, err
			}
			raws[i] = raw
			if raw < math.MinInt32 || raw > math.MaxInt32 {
				width = 8
			}
		}
		out := make([]byte, 1+len(raws)*width)
		out[0] = byte(width)
		for i, raw := range raws {
			off := 1 + i*width
			if width == 4 {
				binary.LittleEndian.PutUint32(out[off:], uint32(int32(raw)))
			} else {
				binary.LittleEndian.PutUint64(out[off:], uint64(raw))
			}
		}
		return out, nil

	case TBoolean:
		out := make([]byte, len(elems))
		for i, e := range elems {
			if e.Kind != KindBoolean {
				return nil, ErrTypeMismatch
			}
			if e.Bool {
				out[i] = 1
			}
		}
		return out, nil

	case TDouble:
		out := make([]byte, len(elems)*8)
		for i, e := range elems {
			if e.Kind != KindDouble {
				return nil, ErrTypeMismatch
			}
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(e.Double))
		}
		return out, nil

	case TString:
		var out []byte
		for _, e := range elems {
			raw, err := stringBytes(f, e)
			if err != nil {
				return nil, err
			}
			out = append(out, writeBlob(raw)...)
		}
		return out, nil

	case TStruct:
		var out []byte
		for _, e := range elems {
			if e.Kind != KindStruct {
				return nil, ErrTypeMismatch
			}
			sub, err := encodeStruct(f.SubType, e, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, writeBlob(sub)...)
		}
		return out, nil

	default:
		return nil, ErrBadFieldType
	}
}
