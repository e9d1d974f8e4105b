package sproto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildBundle hand-assembles a minimal compiled schema bundle the same
// shape Load expects: an outer all-data-pointer record wrapping a types
// blob and a protocols blob, each a sequence of length-prefixed type/
// protocol records (spec §4.2).
func buildBundle(t *testing.T, types []Value, protocols []Value) []byte {
	t.Helper()

	var typesBlob []byte
	for _, tv := range types {
		b, err := Encode(typeRecordType, tv)
		require.NoError(t, err)
		typesBlob = append(typesBlob, writeBlob(b)...)
	}

	var protocolsBlob []byte
	for _, pv := range protocols {
		b, err := Encode(protocolRecordType, pv)
		require.NoError(t, err)
		protocolsBlob = append(protocolsBlob, writeBlob(b)...)
	}

	region := append(writeBlob(typesBlob), writeBlob(protocolsBlob)...)
	return writeRecord([]uint16{0, 0}, region)
}

func fieldRecord(name string, ft FieldType, tag int) Value {
	return Struct(map[string]Value{
		"name": String(name),
		"type": Int(int64(ft)),
		"tag":  Int(int64(tag)),
	})
}

func TestLoadSchemaBasicTypesAndProtocol(t *testing.T) {
	pointType := Struct(map[string]Value{
		"name": String("point"),
		"fields": Array([]Value{
			fieldRecord("x", TInteger, 0),
			fieldRecord("y", TInteger, 1),
		}),
	})

	echoProtocol := Struct(map[string]Value{
		"name":     String("echo"),
		"tag":      Int(0),
		"request":  Int(0), // index into the types table
		"response": Int(0),
	})

	bundle := buildBundle(t, []Value{pointType}, []Value{echoProtocol})

	schema, err := Load(bundle)
	require.NoError(t, err)
	require.Len(t, schema.Types, 1)
	require.Len(t, schema.Protocols, 1)

	point, ok := schema.Type("point")
	require.True(t, ok)
	require.Equal(t, 0, point.Base)
	require.Len(t, point.Fields, 2)
	require.Equal(t, "x", point.Fields[0].Name)
	require.Equal(t, "y", point.Fields[1].Name)

	echo, ok := schema.Protocol("echo")
	require.True(t, ok)
	require.Same(t, point, echo.Request)
	require.Same(t, point, echo.Response)
	require.False(t, echo.Confirm)

	byTag, ok := schema.ProtocolByTag(0)
	require.True(t, ok)
	require.Same(t, echo, byTag)
}

func TestLoadSchemaSelfReferencingType(t *testing.T) {
	// "node" has a field of type "node" itself (subtype index 0): the
	// two-pass loader must resolve this without the pointer being nil.
	nodeType := Struct(map[string]Value{
		"name": String("node"),
		"fields": Array([]Value{
			fieldRecord("value", TInteger, 0),
			Struct(map[string]Value{
				"name":  String("next"),
				"type":  Int(int64(TStruct)),
				"tag":   Int(1),
				"extra": Int(0), // subtype index: points at itself
			}),
		}),
	})

	bundle := buildBundle(t, []Value{nodeType}, nil)
	schema, err := Load(bundle)
	require.NoError(t, err)

	node, ok := schema.Type("node")
	require.True(t, ok)
	require.Same(t, node, node.Fields[1].SubType)
}

func TestLoadSchemaRoundTripEncodeAgainstLoadedType(t *testing.T) {
	pointType := Struct(map[string]Value{
		"name": String("point"),
		"fields": Array([]Value{
			fieldRecord("x", TInteger, 0),
			fieldRecord("y", TInteger, 1),
		}),
	})
	bundle := buildBundle(t, []Value{pointType}, nil)
	schema, err := Load(bundle)
	require.NoError(t, err)

	point, ok := schema.Type("point")
	require.True(t, ok)

	payload := Struct(map[string]Value{"x": Int(3), "y": Int(4)})
	wire, err := Encode(point, payload)
	require.NoError(t, err)

	decoded, err := Decode(point, wire)
	require.NoError(t, err)
	x, _ := decoded.Get("x")
	y, _ := decoded.Get("y")
	require.Equal(t, int64(3), x.Int)
	require.Equal(t, int64(4), y.Int)
}

func TestLoadSchemaTagsMustIncrease(t *testing.T) {
	badType := Struct(map[string]Value{
		"name": String("bad"),
		"fields": Array([]Value{
			fieldRecord("a", TInteger, 1),
			fieldRecord("b", TInteger, 0), // out of order
		}),
	})
	bundle := buildBundle(t, []Value{badType}, nil)
	_, err := Load(bundle)
	require.ErrorIs(t, err, ErrTagNotIncreasing)
}
