// Package sshfx implements the SFTP version 3 wire encoding: packet
// framing, typed field codecs, the attribute block, the extension
// registry, the open-flag translator, and status/error mapping.
package sshfx

import (
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned by Consume* methods when fewer bytes remain
// in the buffer than the field being read requires.
var ErrShortBuffer = errors.New("sshfx: buffer too short")

// ErrLongOutput is returned by Buffer.PutLength when the buffer grew past
// what a uint32 length prefix can express.
var ErrLongOutput = errors.New("sshfx: buffer too long")

// Buffer is a cursor over a byte slice supporting big-endian typed reads
// (Consume*) and appends (Append*), mirroring the fixed wire layout of an
// SFTP packet payload.
type Buffer struct {
	b   []byte
	off int
}

// NewBuffer wraps b for reading from its start.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{b: b}
}

// NewMarshalBuffer returns a Buffer preloaded with a 4-byte zero length
// prefix only; the caller appends the packet's type byte, (for
// non-handshake types) its request id, and the payload, then calls
// PutLength or Packet. size is a capacity hint for the bytes that follow
// the length prefix.
func NewMarshalBuffer(size int) *Buffer {
	buf := &Buffer{b: make([]byte, 0, 4+size)}
	buf.b = append(buf.b, 0, 0, 0, 0)
	return buf
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Len returns the number of unread bytes remaining.
func (b *Buffer) Len() int {
	return len(b.b) - b.off
}

// Reset discards all consumed bytes and any read cursor, starting over
// with buf as the new backing slice.
func (b *Buffer) Reset(buf []byte) {
	b.b = buf
	b.off = 0
}

// PutLength back-patches the first 4 bytes of the buffer with the number
// of bytes that follow them, per the wire frame's length prefix.
func (b *Buffer) PutLength() error {
	n := len(b.b) - 4
	if n < 0 || uint64(n) > uint64(^uint32(0)) {
		return ErrLongOutput
	}
	binary.BigEndian.PutUint32(b.b[:4], uint32(n))
	return nil
}

// Packet finalizes the buffer for transmission: it patches the length
// prefix and returns (header, payload) so that large payloads (e.g. a
// WRITE body) can be appended without copying. header is the part of the
// buffer already assembled via Append*; payload is appended verbatim by
// the caller's transport.
func (b *Buffer) Packet(payload []byte) (header, payloadOut []byte, err error) {
	n := len(b.b) - 4 + len(payload)
	if n < 0 || uint64(n) > uint64(^uint32(0)) {
		return nil, nil, ErrLongOutput
	}
	binary.BigEndian.PutUint32(b.b[:4], uint32(n))
	return b.b, payload, nil
}

func (b *Buffer) consume(n int) ([]byte, error) {
	if b.Len() < n {
		return nil, ErrShortBuffer
	}
	v := b.b[b.off : b.off+n]
	b.off += n
	return v, nil
}

// ConsumeUint8 reads one byte.
func (b *Buffer) ConsumeUint8() (uint8, error) {
	v, err := b.consume(1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// AppendUint8 appends one byte.
func (b *Buffer) AppendUint8(v uint8) {
	b.b = append(b.b, v)
}

// ConsumeBool reads one byte and reports whether it is non-zero.
func (b *Buffer) ConsumeBool() (bool, error) {
	v, err := b.ConsumeUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// AppendBool appends a single byte, 1 for true and 0 for false.
func (b *Buffer) AppendBool(v bool) {
	if v {
		b.AppendUint8(1)
		return
	}
	b.AppendUint8(0)
}

// ConsumeUint16 reads a big-endian uint16.
func (b *Buffer) ConsumeUint16() (uint16, error) {
	v, err := b.consume(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(v), nil
}

// AppendUint16 appends v as a big-endian uint16.
func (b *Buffer) AppendUint16(v uint16) {
	b.b = binary.BigEndian.AppendUint16(b.b, v)
}

// ConsumeUint32 reads a big-endian uint32.
func (b *Buffer) ConsumeUint32() (uint32, error) {
	v, err := b.consume(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v), nil
}

// AppendUint32 appends v as a big-endian uint32.
func (b *Buffer) AppendUint32(v uint32) {
	b.b = binary.BigEndian.AppendUint32(b.b, v)
}

// ConsumeUint64 reads a big-endian uint64.
func (b *Buffer) ConsumeUint64() (uint64, error) {
	v, err := b.consume(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// AppendUint64 appends v as a big-endian uint64.
func (b *Buffer) AppendUint64(v uint64) {
	b.b = binary.BigEndian.AppendUint64(b.b, v)
}

// ConsumeInt64 reads a big-endian, two's-complement int64.
func (b *Buffer) ConsumeInt64() (int64, error) {
	v, err := b.ConsumeUint64()
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// AppendInt64 appends v as a big-endian, two's-complement int64.
func (b *Buffer) AppendInt64(v int64) {
	b.AppendUint64(uint64(v))
}

// ConsumeByteSlice reads a 32-bit length prefix followed by that many raw
// bytes. The returned slice aliases the buffer's backing array.
func (b *Buffer) ConsumeByteSlice() ([]byte, error) {
	n, err := b.ConsumeUint32()
	if err != nil {
		return nil, err
	}
	return b.consume(int(n))
}

// AppendByteSlice appends v as a 32-bit length prefix followed by v's
// bytes.
func (b *Buffer) AppendByteSlice(v []byte) {
	b.AppendUint32(uint32(len(v)))
	b.b = append(b.b, v...)
}

// ConsumeString reads a length-prefixed byte string and returns it as a
// string, copying out of the buffer's backing array.
func (b *Buffer) ConsumeString() (string, error) {
	v, err := b.ConsumeByteSlice()
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// AppendString appends v as a length-prefixed byte string.
func (b *Buffer) AppendString(v string) {
	b.AppendUint32(uint32(len(v)))
	b.b = append(b.b, v...)
}

// ConsumeRemaining returns every unread byte without advancing past the
// end, matching the reader's boolean "rest of buffer" mode for data
// payloads that are not themselves length-prefixed.
func (b *Buffer) ConsumeRemaining() []byte {
	v := b.b[b.off:]
	b.off = len(b.b)
	return v
}

// StructuredData peels a length-prefixed inner region and returns a new
// Buffer scoped to exactly that region, for decoding nested payloads such
// as extension data.
func (b *Buffer) StructuredData() (*Buffer, error) {
	inner, err := b.ConsumeByteSlice()
	if err != nil {
		return nil, err
	}
	return NewBuffer(inner), nil
}
