package protocol

// Packed sortable integer codec (spec §4.7).
//
// Values in [-119, 120] encode to a single byte. Outside that range the
// value is biased and written as a minimal big-endian run of bytes prefixed
// by a length byte, chosen so that the byte-wise lexicographic order of the
// encoding matches the numeric order of the values it represents — this is
// what lets the wire format use it for sortable keys.

const (
	maxPackedInt32Len = 5
	maxPackedInt64Len = 9
)

// PutPackedInt32 appends the packed encoding of v to buf and returns the
// extended slice.
func PutPackedInt32(buf []byte, v int32) []byte {
	return putPackedInt(buf, int64(v))
}

// PutPackedInt64 appends the packed encoding of v to buf and returns the
// extended slice.
func PutPackedInt64(buf []byte, v int64) []byte {
	return putPackedInt(buf, v)
}

func putPackedInt(buf []byte, value int64) []byte {
	if value >= -119 && value <= 120 {
		return append(buf, byte(value+127))
	}

	var b [8]byte
	ind := 7

	if value < -119 {
		val := value + 119
		for {
			b[ind] = byte(val)
			ind--
			val >>= 8
			if val == -1 {
				break
			}
		}
		length := 7 - ind
		buf = append(buf, byte(0x08-length))
	} else {
		val := value - 121
		for {
			b[ind] = byte(val)
			ind--
			val >>= 8
			if val == 0 {
				break
			}
		}
		length := 7 - ind
		buf = append(buf, byte(0xF7+length))
	}

	return append(buf, b[ind+1:]...)
}

// GetPackedInt32 decodes a packed int32 from the head of buf, returning the
// value and the number of bytes consumed.
func GetPackedInt32(buf []byte) (int32, int) {
	v, n := getPackedInt(buf)
	return int32(v), n
}

// GetPackedInt64 decodes a packed int64 from the head of buf, returning the
// value and the number of bytes consumed.
func GetPackedInt64(buf []byte) (int64, int) {
	return getPackedInt(buf)
}

func getPackedInt(buf []byte) (int64, int) {
	b1 := buf[0]

	switch {
	case b1 < 0x08:
		length := int(0x08 - b1)
		val := int64(-1)
		for i := 1; i <= length; i++ {
			val = (val << 8) | int64(buf[i])
		}
		return val - 119, length + 1
	case b1 > 0xF7:
		length := int(b1) - 0xF7
		val := int64(0)
		for i := 1; i <= length; i++ {
			val = (val << 8) | int64(buf[i])
		}
		return val + 121, length + 1
	default:
		return int64(b1) - 127, 1
	}
}
