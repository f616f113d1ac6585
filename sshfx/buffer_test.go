package sshfx

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestBufferTypedRoundTrip(t *testing.T) {
	w := &Buffer{}
	w.AppendUint8(0xAB)
	w.AppendBool(true)
	w.AppendUint16(0x1234)
	w.AppendUint32(0xDEADBEEF)
	w.AppendUint64(0x0102030405060708)
	w.AppendInt64(-42)
	w.AppendByteSlice([]byte("hello"))
	w.AppendString("world")

	r := NewBuffer(w.Bytes())

	if v, err := r.ConsumeUint8(); err != nil || v != 0xAB {
		t.Fatalf("ConsumeUint8 = %v, %v", v, err)
	}
	if v, err := r.ConsumeBool(); err != nil || v != true {
		t.Fatalf("ConsumeBool = %v, %v", v, err)
	}
	if v, err := r.ConsumeUint16(); err != nil || v != 0x1234 {
		t.Fatalf("ConsumeUint16 = %v, %v", v, err)
	}
	if v, err := r.ConsumeUint32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("ConsumeUint32 = %v, %v", v, err)
	}
	if v, err := r.ConsumeUint64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("ConsumeUint64 = %v, %v", v, err)
	}
	if v, err := r.ConsumeInt64(); err != nil || v != -42 {
		t.Fatalf("ConsumeInt64 = %v, %v", v, err)
	}
	if v, err := r.ConsumeByteSlice(); err != nil || !bytes.Equal(v, []byte("hello")) {
		t.Fatalf("ConsumeByteSlice = %q, %v", v, err)
	}
	if v, err := r.ConsumeString(); err != nil || v != "world" {
		t.Fatalf("ConsumeString = %q, %v", v, err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected buffer fully consumed, %d bytes remain: %s", r.Len(), spew.Sdump(r))
	}
}

func TestBufferShortRead(t *testing.T) {
	r := NewBuffer([]byte{0x01, 0x02})
	if _, err := r.ConsumeUint32(); err != ErrShortBuffer {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

func TestMarshalBufferPutLength(t *testing.T) {
	buf := NewMarshalBuffer(8)
	buf.AppendUint8(uint8(PacketTypeOpen))
	buf.AppendUint32(7)
	buf.AppendString("/a")
	if err := buf.PutLength(); err != nil {
		t.Fatal(err)
	}
	got := buf.Bytes()
	want := []byte{
		0x00, 0x00, 0x00, 0x0b, // length = 11
		byte(PacketTypeOpen),
		0x00, 0x00, 0x00, 0x07, // request id
		0x00, 0x00, 0x00, 0x02, '/', 'a', // string "/a"
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestBufferPacketSplitsPayload(t *testing.T) {
	buf := NewMarshalBuffer(4)
	buf.AppendUint8(uint8(PacketTypeWrite))
	buf.AppendUint32(3)
	header, payload, err := buf.Packet([]byte("DATA"))
	if err != nil {
		t.Fatal(err)
	}
	if len(payload) != 4 {
		t.Fatalf("expected payload untouched, got %d bytes", len(payload))
	}
	wantLen := uint32(len(header) - 4 + len(payload))
	gotLen := uint32(header[0])<<24 | uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
	if gotLen != wantLen {
		t.Fatalf("length prefix = %d, want %d", gotLen, wantLen)
	}
}
