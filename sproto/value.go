package sproto

// Kind tags the variants a Value can hold. The source schema is untyped;
// callers here get a closed set of Go shapes instead of bare interface{}.
type Kind uint8

const (
	KindInteger Kind = iota // whole number, field extra == 0
	KindDecimal             // decimal scaled by the field's extra, already unscaled
	KindBoolean
	KindDouble
	KindString // UTF-8 text, field extra == 0
	KindBinary // raw bytes, field extra == 1
	KindStruct
	KindArray
)

// Value is a single sproto-encodable/decodable value. Exactly one of the
// payload fields is meaningful, selected by Kind. Struct fields are held in
// Object keyed by field name; an absent map key means the field was absent
// on the wire, distinct from a present-but-empty array (see Array).
type Value struct {
	Kind   Kind
	Int    int64
	Dec    float64
	Bool   bool
	Double float64
	Str    string
	Bin    []byte
	Object map[string]Value
	Array  []Value
}

func Int(v int64) Value                { return Value{Kind: KindInteger, Int: v} }
func Decimal(v float64) Value          { return Value{Kind: KindDecimal, Dec: v} }
func Bool(v bool) Value                { return Value{Kind: KindBoolean, Bool: v} }
func Double(v float64) Value           { return Value{Kind: KindDouble, Double: v} }
func String(v string) Value            { return Value{Kind: KindString, Str: v} }
func Binary(v []byte) Value            { return Value{Kind: KindBinary, Bin: v} }
func Struct(v map[string]Value) Value  { return Value{Kind: KindStruct, Object: v} }
func Array(v []Value) Value            { return Value{Kind: KindArray, Array: v} }

// Get returns the named field of a struct Value, mirroring the behavior
// a caller-supplied "read a field by name" trait would give the encoder.
func (v Value) Get(name string) (Value, bool) {
	if v.Kind != KindStruct {
		return Value{}, false
	}
	f, ok := v.Object[name]
	return f, ok
}
