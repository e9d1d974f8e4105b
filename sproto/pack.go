package sproto

// DefaultMaxPackedSize bounds Pack/Unpack output when the caller passes
// maxOutput == 0 (spec §9 Open Question: the packer's output is
// otherwise treated as unbounded; this module clamps it instead of
// growing without limit).
const DefaultMaxPackedSize = 64 << 20

const maxRunGroups = 256

// Pack applies the 0-run compression described in spec §4.5. maxOutput
// of 0 selects DefaultMaxPackedSize.
func Pack(data []byte, maxOutput int) ([]byte, error) {
	if maxOutput <= 0 {
		maxOutput = DefaultMaxPackedSize
	}
	var out []byte
	n := len(data)

	for i := 0; i < n; {
		runGroups := 0
		for runGroups < maxRunGroups {
			start := i + runGroups*8
			if start >= n {
				break
			}
			if zerosInGroup(data, start, n) > 1 {
				break
			}
			runGroups++
		}

		if runGroups > 0 {
			out = append(out, 0xFF, byte(runGroups-1))
			for g := 0; g < runGroups; g++ {
				out = append(out, groupBytes(data, i+g*8, n)...)
			}
			i += runGroups * 8
		} else {
			group := groupBytes(data, i, n)
			var header byte
			lits := make([]byte, 0, 8)
			for b := 0; b < 8; b++ {
				if group[b] != 0 {
					header |= 1 << uint(b)
					lits = append(lits, group[b])
				}
			}
			out = append(out, header)
			out = append(out, lits...)
			i += 8
		}

		if len(out) > maxOutput {
			return nil, ErrOutputTooLarge
		}
	}

	return out, nil
}

// Unpack is the inverse of Pack.
func Unpack(data []byte, maxOutput int) ([]byte, error) {
	if maxOutput <= 0 {
		maxOutput = DefaultMaxPackedSize
	}
	var out []byte
	n := len(data)

	for i := 0; i < n; {
		header := data[i]
		i++

		if header == 0xFF {
			if i >= n {
				return nil, ErrTruncated
			}
			cnt := int(data[i])
			i++
			lit := (cnt + 1) * 8
			if i+lit > n {
				return nil, ErrTruncated
			}
			out = append(out, data[i:i+lit]...)
			i += lit
		} else {
			for b := 0; b < 8; b++ {
				if header&(1<<uint(b)) != 0 {
					if i >= n {
						return nil, ErrTruncated
					}
					out = append(out, data[i])
					i++
				} else {
					out = append(out, 0)
				}
			}
		}

		if len(out) > maxOutput {
			return nil, ErrOutputTooLarge
		}
	}

	return out, nil
}

// zerosInGroup counts zero bytes in the 8-byte group starting at start,
// treating bytes beyond n as the implicit zero padding of the final
// group.
func zerosInGroup(data []byte, start, n int) int {
	zeros := 0
	for b := 0; b < 8; b++ {
		idx := start + b
		if idx >= n || data[idx] == 0 {
			zeros++
		}
	}
	return zeros
}

func groupBytes(data []byte, start, n int) []byte {
	var group [8]byte
	for b := 0; b < 8; b++ {
		idx := start + b
		if idx < n {
			group[b] = data[idx]
		}
	}
	return group[:]
}
