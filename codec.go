package sconn

import "github.com/domsolutions/sconn/sproto"

// Schema is a parsed protocol bundle (spec §3). LoadSchema parses the
// compiled bundle bytes produced by a schema compiler, the same shape
// new_session's bundle_bytes argument takes.
type Schema = sproto.Schema

// Value is one sproto-encodable/decodable value (spec §2).
type Value = sproto.Value

// Re-exported Value constructors, so callers never need to import the
// sproto package directly for ordinary request/response construction.
var (
	Int     = sproto.Int
	Decimal = sproto.Decimal
	Bool    = sproto.Bool
	Double  = sproto.Double
	String  = sproto.String
	Binary  = sproto.Binary
	Struct  = sproto.Struct
	Array   = sproto.Array
)

// LoadSchema parses a compiled schema bundle (spec §4.2).
func LoadSchema(bundle []byte) (*Schema, error) {
	return sproto.Load(bundle)
}

// Encode serializes v against type t (spec §4.3/§4.4).
func Encode(t *sproto.Type, v Value) ([]byte, error) {
	return sproto.Encode(t, v)
}

// Decode parses data against type t (spec §4.3/§4.4).
func Decode(t *sproto.Type, data []byte) (Value, error) {
	return sproto.Decode(t, data)
}

// ObjLen reports how many leading bytes of data belong to one encoded
// record of type t -- used to split a package header from its body
// (spec §6).
func ObjLen(t *sproto.Type, data []byte) (int, error) {
	return sproto.ObjLen(t, data)
}

// Pack applies the 0-run byte compression (spec §4.5).
func Pack(data []byte, maxOutput int) ([]byte, error) {
	return sproto.Pack(data, maxOutput)
}

// Unpack is the inverse of Pack.
func Unpack(data []byte, maxOutput int) ([]byte, error) {
	return sproto.Unpack(data, maxOutput)
}

// Pencode is encode followed by pack, the shape every outbound sproto
// payload takes on the wire (spec §6).
func Pencode(t *sproto.Type, v Value, maxOutput int) ([]byte, error) {
	raw, err := sproto.Encode(t, v)
	if err != nil {
		return nil, err
	}
	return sproto.Pack(raw, maxOutput)
}

// Pdecode is unpack followed by decode, the inverse of Pencode.
func Pdecode(t *sproto.Type, data []byte, maxOutput int) (Value, error) {
	raw, err := sproto.Unpack(data, maxOutput)
	if err != nil {
		return Value{}, err
	}
	return sproto.Decode(t, raw)
}
