package sproto

import (
	"encoding/binary"
	"math"
)

const maxDepth = 64

// Decode decodes data against type t, returning the struct Value. Trailing
// bytes beyond what the type's slot table declares are ignored; use
// ObjLen to learn how many bytes were actually consumed (spec §6 objlen,
// needed by the host to split a package header from its body).
func Decode(t *Type, data []byte) (Value, error) {
	v, _, err := decodeStruct(t, data, 0)
	return v, err
}

// ObjLen decodes data against type t and returns the number of leading
// bytes of data that belong to the encoded record.
func ObjLen(t *Type, data []byte) (int, error) {
	_, n, err := decodeStruct(t, data, 0)
	return n, err
}

func decodeStruct(t *Type, data []byte, depth int) (Value, int, error) {
	if depth > maxDepth {
		return Value{}, 0, ErrRecursionTooDeep
	}
	slots, region, err := readRecord(data)
	if err != nil {
		return Value{}, 0, err
	}
	consumed := len(data) - len(region)
	obj := make(map[string]Value, len(slots))

	tag := 0
	for _, slot := range slots {
		if slot&1 == 1 {
			tag += int(slot>>1) + 1
			continue
		}

		// Unknown tags (no field declared) are skipped, not an error.
		f, _ := t.fieldByTag(tag)

		if slot == 0 {
			blob, rest, err := readBlob(region)
			if err != nil {
				return Value{}, 0, err
			}
			consumed += len(region) - len(rest)
			region = rest

			if f != nil {
				val, err := decodeFieldBlob(f, blob, depth)
				if err != nil {
					return Value{}, 0, err
				}
				obj[f.Name] = val
			}
		} else if f != nil {
			inline := int64(slot>>1) - 1
			val, err := decodeInline(f, inline)
			if err != nil {
				return Value{}, 0, err
			}
			obj[f.Name] = val
		}

		tag++
	}

	return Struct(obj), consumed, nil
}

func decodeInline(f *Field, raw int64) (Value, error) {
	if f.Array {
		return Value{}, ErrTypeMismatch
	}
	switch f.Type {
	case TInteger:
		if f.Extra > 0 {
			return Decimal(float64(raw) / float64(f.Extra)), nil
		}
		return Int(raw), nil
	case TBoolean:
		return Bool(raw != 0), nil
	default:
		return Value{}, ErrTypeMismatch
	}
}

func decodeFieldBlob(f *Field, blob []byte, depth int) (Value, error) {
	if f.Array {
		return decodeArray(f, blob, depth)
	}
	switch f.Type {
	case TInteger:
		raw, err := decodeIntBytes(blob)
		if err != nil {
			return Value{}, err
		}
		if f.Extra > 0 {
			return Decimal(float64(raw) / float64(f.Extra)), nil
		}
		return Int(raw), nil
	case TBoolean:
		raw, err := decodeIntBytes(blob)
		if err != nil {
			return Value{}, err
		}
		return Bool(raw != 0), nil
	case TDouble:
		if len(blob) != 8 {
			return Value{}, ErrSizeMismatch
		}
		return Double(math.Float64frombits(binary.LittleEndian.Uint64(blob))), nil
	case TString:
		if f.IsBinary {
			return Binary(append([]byte(nil), blob...)), nil
		}
		return String(string(blob)), nil
	case TStruct:
		v, n, err := decodeStruct(f.SubType, blob, depth+1)
		if err != nil {
			return Value{}, err
		}
		if n != len(blob) {
			return Value{}, ErrStructLenMismatch
		}
		return v, nil
	default:
		return Value{}, ErrBadFieldType
	}
}

func decodeIntBytes(blob []byte) (int64, error) {
	switch len(blob) {
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(blob))), nil
	case 8:
		return int64(binary.LittleEndian.Uint64(blob)), nil
	default:
		return 0, ErrSizeMismatch
	}
}

func decodeArray(f *Field, blob []byte, depth int) (Value, error) {
	switch f.Type {
	case TInteger:
		if len(blob) == 0 {
			return Array(nil), nil
		}
		width := int(blob[0])
		if width != 4 && width != 8 {
			return Value{}, ErrBadArrayWidth
		}
		elems := blob[1:]
		if len(elems)%width != 0 {
			return Value{}, ErrArrayNotDivisible
		}
		n := len(elems) / width
		vals := make([]Value, n)
		for i := 0; i < n; i++ {
			chunk := elems[i*width : (i+1)*width]
			var raw int64
			if width == 4 {
				raw = int64(int32(binary.LittleEndian.Uint32(chunk)))
			} else {
				raw = int64(binary.LittleEndian.Uint64(chunk))
			}
			if f.Extra > 0 {
				vals[i] = Decimal(float64(raw) / float64(f.Extra))
			} else {
				vals[i] = Int(raw)
			}
		}
		return Array(vals), nil
	case TBoolean:
		vals := make([]Value, len(blob))
		for i, b := range blob {
			vals[i] = Bool(b != 0)
		}
		return Array(vals), nil
	case TDouble:
		if len(blob)%8 != 0 {
			return Value{}, ErrArrayNotDivisible
		}
		n := len(blob) / 8
		vals := make([]Value, n)
		for i := 0; i < n; i++ {
			vals[i] = Double(math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:])))
		}
		return Array(vals), nil
	case TString, TStruct:
		chunks, err := splitBlobs(blob)
		if err != nil {
			return Value{}, err
		}
		vals := make([]Value, len(chunks))
		for i, c := range chunks {
			switch {
			case f.Type == TStruct:
				v, n, err := decodeStruct(f.SubType, c, depth+1)
				if err != nil {
					return Value{}, err
				}
				if n != len(c) {
					return Value{}, ErrStructLenMismatch
				}
				vals[i] = v
			case f.IsBinary:
				vals[i] = Binary(append([]byte(nil), c...))
			default:
				vals[i] = String(string(c))
			}
		}
		return Array(vals), nil
	default:
		return Value{}, ErrBadFieldType
	}
}
