package sproto

import "encoding/binary"

// record.go holds the primitives shared by the schema bootstrap loader
// (schema.go) and the general value codec (encode.go/decode.go): reading
// and writing the u16 slot table that heads every sproto struct, and the
// length-prefixed "blob" data that slot value 0 points into.
//
// Every multi-byte integer at this level is little-endian, matching the
// worked examples in spec §8 (e.g. the inline slot for x=7 is bytes
// "10 00", i.e. LE 16). The slot-table header stores twice the number of
// slots (low bit reserved, currently always 0) -- also fixed by the
// worked example, where one field (x) produces header bytes "02 00".

func readU16(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint16(b), nil
}

// readRecord splits data into its slot table and trailing data region.
func readRecord(data []byte) (slots []uint16, rest []byte, err error) {
	hdr, err := readU16(data)
	if err != nil {
		return nil, nil, err
	}
	if hdr&1 != 0 {
		return nil, nil, ErrBadOuterRecord
	}
	n := int(hdr >> 1)
	need := 2 + n*2
	if len(data) < need {
		return nil, nil, ErrTruncated
	}
	slots = make([]uint16, n)
	for i := 0; i < n; i++ {
		slots[i] = binary.LittleEndian.Uint16(data[2+i*2:])
	}
	return slots, data[need:], nil
}

// writeRecord is the inverse of readRecord.
func writeRecord(slots []uint16, dataRegion []byte) []byte {
	out := make([]byte, 2+len(slots)*2, 2+len(slots)*2+len(dataRegion))
	binary.LittleEndian.PutUint16(out, uint16(len(slots)<<1))
	for i, s := range slots {
		binary.LittleEndian.PutUint16(out[2+i*2:], s)
	}
	return append(out, dataRegion...)
}

// readBlob reads one length-prefixed (u32 LE) chunk and returns the
// remainder of data after it.
func readBlob(data []byte) (blob []byte, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, ErrTruncated
	}
	n := binary.LittleEndian.Uint32(data)
	if uint64(n) > uint64(len(data)-4) {
		return nil, nil, ErrTruncated
	}
	return data[4 : 4+n], data[4+n:], nil
}

// writeBlob is the inverse of readBlob.
func writeBlob(content []byte) []byte {
	out := make([]byte, 4+len(content))
	binary.LittleEndian.PutUint32(out, uint32(len(content)))
	copy(out[4:], content)
	return out
}

// splitBlobs repeatedly peels length-prefixed chunks out of data until
// it is exhausted, used for arrays of string/struct elements.
func splitBlobs(data []byte) ([][]byte, error) {
	var out [][]byte
	for len(data) > 0 {
		blob, rest, err := readBlob(data)
		if err != nil {
			return nil, err
		}
		out = append(out, blob)
		data = rest
	}
	return out, nil
}
