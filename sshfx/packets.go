package sshfx

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPacketLength bounds a single frame's total size (length prefix
// excluded), sized to the negotiated maximum write-block length plus a
// 1 KiB header margin (spec §3).
const MaxPacketLength = MaxWriteBlockLength + 1024

// MaxReadBlockLength and MaxWriteBlockLength are the default per-request
// data-block ceilings used by the protocol engine (spec §4.7).
const (
	MaxReadBlockLength  = 256 * 1024
	MaxWriteBlockLength = 32 * 1024
)

// Marshaler is implemented by every request/response payload type in
// this package: it appends its wire encoding onto buf, which already
// holds the frame header (length placeholder, type, and request id).
type Marshaler interface {
	MarshalInto(buf *Buffer)
}

// Unmarshaler is implemented by every request/response payload type:
// it decodes its fields from buf, which is scoped to exactly the
// packet's payload (header already consumed).
type Unmarshaler interface {
	UnmarshalFrom(buf *Buffer) error
}

// RawPacket is a decoded frame with its payload left unparsed: the type
// and request id are pulled out of the header, and Data holds the
// remaining payload bytes ready for a type-specific Unmarshaler.
type RawPacket struct {
	Type      PacketType
	RequestID uint32 // unused (reads as 0) for Init/Version
	Data      *Buffer
}

// ReadFrom reads one length-prefixed frame from r into RawPacket,
// reusing buf as scratch space when it is large enough. It enforces
// maxPacket as an upper bound on the frame's declared length, matching
// the reader-bounds failure mode of spec §4.1.
func (p *RawPacket) ReadFrom(r io.Reader, buf []byte, maxPacket uint32) error {
	if len(buf) < 4 {
		buf = make([]byte, 4)
	}
	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return err
	}
	length := binary.BigEndian.Uint32(buf[:4])
	if length < 1 || length > maxPacket {
		return fmt.Errorf("sshfx: frame length %d exceeds bound %d", length, maxPacket)
	}
	if uint32(len(buf)) < length {
		buf = make([]byte, length)
	}
	body := buf[:length]
	if _, err := io.ReadFull(r, body); err != nil {
		return err
	}

	p.Type = PacketType(body[0])
	rest := NewBuffer(body[1:])
	if p.Type.HasRequestID() {
		id, err := rest.ConsumeUint32()
		if err != nil {
			return err
		}
		p.RequestID = id
	} else {
		p.RequestID = 0
	}
	p.Data = rest
	return nil
}

// ComposePacket finalizes header/payload pairs returned by a
// Marshaler-driven PutLength/Packet call into one contiguous frame,
// primarily useful for tests that assert on exact wire bytes.
func ComposePacket(header, payload []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return header, nil
	}
	out := make([]byte, len(header)+len(payload))
	copy(out, header)
	copy(out[len(header):], payload)
	return out, nil
}

// MarshalPacket is a convenience for payload types with no oversized
// trailing byte run (i.e. every request/response except WRITE/DATA):
// it builds a header via NewMarshalBuffer, lets m append its fields,
// patches the length, and returns the finished frame.
func MarshalPacket(t PacketType, requestID uint32, m Marshaler, sizeHint int) ([]byte, error) {
	buf := NewMarshalBuffer(sizeHint)
	buf.AppendUint8(uint8(t))
	if t.HasRequestID() {
		buf.AppendUint32(requestID)
	}
	m.MarshalInto(buf)
	if err := buf.PutLength(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
