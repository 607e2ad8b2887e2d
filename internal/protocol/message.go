package protocol

import (
	"encoding/binary"
	"fmt"
)

// Message is a growable wire buffer used to serialize a request body or
// deserialize a response body. It mirrors the write-then-rewind-then-read
// life cycle used throughout the driver: a request is built with the Write*
// methods, sent, and discarded; a response buffer is filled by the
// transport then drained with the Read* methods after a Rewind.
type Message struct {
	buf    []byte
	offset int // write cursor while encoding, read cursor while decoding
}

// Init allocates the buffer with the given initial capacity. The buffer
// grows automatically as needed.
func (m *Message) Init(capacity int) {
	m.buf = make([]byte, 0, capacity)
	m.offset = 0
}

// Reset empties the buffer for reuse, keeping the underlying array.
func (m *Message) Reset() {
	m.buf = m.buf[:0]
	m.offset = 0
}

// Rewind moves the read cursor back to the start of the buffer, to be used
// after a response has been fully received and is ready for decoding.
func (m *Message) Rewind() {
	m.offset = 0
}

// Bytes returns the buffer's current contents.
func (m *Message) Bytes() []byte {
	return m.buf
}

// SetBytes replaces the buffer's contents, e.g. after a transport read, and
// rewinds the read cursor.
func (m *Message) SetBytes(b []byte) {
	m.buf = b
	m.offset = 0
}

// Len returns the number of bytes currently in the buffer.
func (m *Message) Len() int {
	return len(m.buf)
}

// Remaining reports the number of unread bytes left in the buffer.
func (m *Message) Remaining() int {
	return len(m.buf) - m.offset
}

// WriteByte appends a single byte. Implements io.ByteWriter.
func (m *Message) WriteByte(b byte) error {
	m.buf = append(m.buf, b)
	return nil
}

// WriteBool appends a boolean as a single byte (0 or 1).
func (m *Message) WriteBool(v bool) {
	if v {
		m.buf = append(m.buf, 1)
	} else {
		m.buf = append(m.buf, 0)
	}
}

// WritePackedInt32 appends v using the packed sortable varint codec.
func (m *Message) WritePackedInt32(v int32) {
	m.buf = PutPackedInt32(m.buf, v)
}

// WritePackedInt64 appends v using the packed sortable varint codec.
func (m *Message) WritePackedInt64(v int64) {
	m.buf = PutPackedInt64(m.buf, v)
}

// WriteUnpackedInt32 appends v as a fixed-width little-endian int32, used by
// the few wire fields the protocol documents as "unpacked" (e.g. table
// limits).
func (m *Message) WriteUnpackedInt32(v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	m.buf = append(m.buf, tmp[:]...)
}

// WriteString appends a length-prefixed UTF-8 string.
func (m *Message) WriteString(s string) {
	m.WritePackedInt32(int32(len(s)))
	m.buf = append(m.buf, s...)
}

// WriteOpaque appends a length-prefixed byte blob.
func (m *Message) WriteOpaque(b []byte) {
	m.WritePackedInt32(int32(len(b)))
	m.buf = append(m.buf, b...)
}

// ReadByte consumes and returns a single byte. Implements io.ByteReader.
func (m *Message) ReadByte() (byte, error) {
	if m.offset >= len(m.buf) {
		return 0, fmt.Errorf("read byte: %w", ErrShortMessage)
	}
	b := m.buf[m.offset]
	m.offset++
	return b, nil
}

// ReadBool consumes a boolean byte.
func (m *Message) ReadBool() (bool, error) {
	b, err := m.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadPackedInt32 consumes a packed int32.
func (m *Message) ReadPackedInt32() (int32, error) {
	if m.offset >= len(m.buf) {
		return 0, fmt.Errorf("read packed int32: %w", ErrShortMessage)
	}
	v, n := GetPackedInt32(m.buf[m.offset:])
	if m.offset+n > len(m.buf) {
		return 0, fmt.Errorf("read packed int32: %w", ErrShortMessage)
	}
	m.offset += n
	return v, nil
}

// ReadPackedInt64 consumes a packed int64.
func (m *Message) ReadPackedInt64() (int64, error) {
	if m.offset >= len(m.buf) {
		return 0, fmt.Errorf("read packed int64: %w", ErrShortMessage)
	}
	v, n := GetPackedInt64(m.buf[m.offset:])
	if m.offset+n > len(m.buf) {
		return 0, fmt.Errorf("read packed int64: %w", ErrShortMessage)
	}
	m.offset += n
	return v, nil
}

// ReadUnpackedInt32 consumes a fixed-width little-endian int32.
func (m *Message) ReadUnpackedInt32() (int32, error) {
	if m.offset+4 > len(m.buf) {
		return 0, fmt.Errorf("read unpacked int32: %w", ErrShortMessage)
	}
	v := int32(binary.LittleEndian.Uint32(m.buf[m.offset:]))
	m.offset += 4
	return v, nil
}

// ReadString consumes a length-prefixed UTF-8 string.
func (m *Message) ReadString() (string, error) {
	n, err := m.ReadPackedInt32()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("received invalid string length field: %d: %w", n, ErrBadProtocol)
	}
	if m.offset+int(n) > len(m.buf) {
		return "", fmt.Errorf("read string: %w", ErrShortMessage)
	}
	s := string(m.buf[m.offset : m.offset+int(n)])
	m.offset += int(n)
	return s, nil
}

// ReadOpaque consumes a length-prefixed byte blob.
func (m *Message) ReadOpaque() ([]byte, error) {
	n, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("received invalid blob length field: %d: %w", n, ErrBadProtocol)
	}
	if m.offset+int(n) > len(m.buf) {
		return nil, fmt.Errorf("read blob: %w", ErrShortMessage)
	}
	b := make([]byte, n)
	copy(b, m.buf[m.offset:m.offset+int(n)])
	m.offset += int(n)
	return b, nil
}
