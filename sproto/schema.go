package sproto

import "math"

// Bootstrap descriptors for the bundle's own fixed shape (spec §4.2).
// The bundle can't describe itself, so these are hand-written the same
// way cloudwu/sproto's own loader hand-decodes its meta-schema: a fixed
// set of Type values that the generic Decode in decode.go is then run
// against, exactly as it would run against any user-declared type.
var (
	fieldRecordType = &Type{
		Name: "field",
		Base: 0,
		Fields: []Field{
			{Tag: 0, Name: "name", Type: TString},
			{Tag: 1, Name: "type", Type: TInteger},
			{Tag: 2, Name: "extra", Type: TInteger},
			{Tag: 3, Name: "tag", Type: TInteger},
			{Tag: 4, Name: "array", Type: TInteger},
			{Tag: 5, Name: "key", Type: TString},
		},
	}

	typeRecordType = &Type{
		Name: "type",
		Base: -1, // name@0, fields@2: not contiguous
		Fields: []Field{
			{Tag: 0, Name: "name", Type: TString},
			{Tag: 2, Name: "fields", Type: TStruct, Array: true, SubType: fieldRecordType},
		},
	}

	protocolRecordType = &Type{
		Name: "protocol",
		Base: 0,
		Fields: []Field{
			{Tag: 0, Name: "name", Type: TString},
			{Tag: 1, Name: "tag", Type: TInteger},
			{Tag: 2, Name: "request", Type: TInteger},
			{Tag: 3, Name: "response", Type: TInteger},
			{Tag: 4, Name: "confirm", Type: TInteger},
		},
	}
)

// Load parses a compiled schema bundle into a Schema (spec §4.2).
func Load(bundle []byte) (*Schema, error) {
	slots, region, err := readRecord(bundle)
	if err != nil {
		return nil, err
	}
	// "Every nonzero value in the outer record is an error": the outer
	// record's two fields (types, protocols) are always arrays, which
	// are always emitted as data pointers, never inlined or skipped.
	blobs := make([][]byte, len(slots))
	for i, s := range slots {
		if s != 0 {
			return nil, ErrBadOuterRecord
		}
		blob, rest, err := readBlob(region)
		if err != nil {
			return nil, err
		}
		blobs[i] = blob
		region = rest
	}

	var typesBlob, protocolsBlob []byte
	if len(blobs) >= 1 {
		typesBlob = blobs[0]
	}
	if len(blobs) >= 2 {
		protocolsBlob = blobs[1]
	}

	names, err := splitBlobs(typesBlob)
	if err != nil {
		return nil, err
	}

	// Pass 1: allocate every Type up front so self- and forward-references
	// between types (a field's subtype pointing at a later or the same
	// type) resolve to a stable pointer.
	types := make([]*Type, len(names))
	for i := range names {
		types[i] = &Type{}
	}

	// Pass 2: populate each Type's fields now that every *Type exists.
	for i, chunk := range names {
		v, err := Decode(typeRecordType, chunk)
		if err != nil {
			return nil, err
		}
		if err := populateType(types[i], v, types); err != nil {
			return nil, err
		}
	}

	var protocols []*Protocol
	if protocolsBlob != nil {
		chunks, err := splitBlobs(protocolsBlob)
		if err != nil {
			return nil, err
		}
		protocols = make([]*Protocol, len(chunks))
		for i, chunk := range chunks {
			v, err := Decode(protocolRecordType, chunk)
			if err != nil {
				return nil, err
			}
			p, err := populateProtocol(v, types)
			if err != nil {
				return nil, err
			}
			protocols[i] = p
		}
	}

	s := &Schema{Types: types, Protocols: protocols}
	buildCaches(s)
	return s, nil
}

func populateType(t *Type, v Value, types []*Type) error {
	nameVal, ok := v.Get("name")
	if !ok {
		return ErrTruncated
	}
	t.Name = nameVal.Str

	fieldsVal, hasFields := v.Get("fields")
	if !hasFields {
		t.Base = 0
		return nil
	}

	fields := make([]Field, 0, len(fieldsVal.Array))
	lastTag := -1
	for _, el := range fieldsVal.Array {
		f, err := populateField(el, types)
		if err != nil {
			return err
		}
		if f.Tag <= lastTag {
			return ErrTagNotIncreasing
		}
		lastTag = f.Tag
		fields = append(fields, f)
	}
	t.Fields = fields
	t.Base = computeBase(fields)
	return nil
}

func populateField(v Value, types []*Type) (Field, error) {
	name, ok := v.Get("name")
	if !ok {
		return Field{}, ErrTruncated
	}
	typeCode, ok := v.Get("type")
	if !ok {
		return Field{}, ErrUnknownMetaTag
	}
	tagVal, ok := v.Get("tag")
	if !ok {
		return Field{}, ErrTruncated
	}

	ft := FieldType(typeCode.Int)
	if ft > TStruct {
		return Field{}, ErrBadFieldType
	}

	f := Field{
		Tag:  int(tagVal.Int),
		Type: ft,
		Name: name.Str,
	}

	if arrayVal, ok := v.Get("array"); ok && arrayVal.Int != 0 {
		f.Array = true
	}
	if keyVal, ok := v.Get("key"); ok {
		f.Key = keyVal.Str
	}

	extraVal, hasExtra := v.Get("extra")
	switch ft {
	case TInteger:
		if hasExtra && extraVal.Int > 0 {
			f.Extra = int64(math.Pow10(int(extraVal.Int)))
		}
	case TString:
		if hasExtra && extraVal.Int == 1 {
			f.IsBinary = true
		}
	case TStruct:
		if !hasExtra {
			return Field{}, ErrSubtypeRange
		}
		idx := int(extraVal.Int)
		if idx < 0 || idx >= len(types) {
			return Field{}, ErrSubtypeRange
		}
		f.SubType = types[idx]
	}

	return f, nil
}

func populateProtocol(v Value, types []*Type) (*Protocol, error) {
	name, ok := v.Get("name")
	if !ok {
		return nil, ErrTruncated
	}
	tagVal, ok := v.Get("tag")
	if !ok {
		return nil, ErrTruncated
	}

	p := &Protocol{Name: name.Str, Tag: int(tagVal.Int)}

	if reqVal, ok := v.Get("request"); ok {
		idx := int(reqVal.Int)
		if idx < 0 || idx >= len(types) {
			return nil, ErrSubtypeRange
		}
		p.Request = types[idx]
	}
	if respVal, ok := v.Get("response"); ok {
		idx := int(respVal.Int)
		if idx < 0 || idx >= len(types) {
			return nil, ErrSubtypeRange
		}
		p.Response = types[idx]
	}
	if confirmVal, ok := v.Get("confirm"); ok && confirmVal.Int != 0 {
		p.Confirm = true
	}

	return p, nil
}
