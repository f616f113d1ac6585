package sshfx

import (
	"bytes"
	"testing"
)

func TestInitPacketWireBytes(t *testing.T) {
	p := &InitPacket{Version: 3}
	got, err := p.MarshalPacket()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x00, 0x00, 0x05, 0x01, 0x00, 0x00, 0x00, 0x03}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestRawPacketReadFromRoundTrip(t *testing.T) {
	frame, err := MarshalPacket(PacketTypeLStat, 7, &LStatPacket{Path: "/etc/passwd"}, 32)
	if err != nil {
		t.Fatal(err)
	}
	r := bytes.NewReader(frame)
	pkt := &RawPacket{}
	if err := pkt.ReadFrom(r, nil, MaxPacketLength); err != nil {
		t.Fatal(err)
	}
	if pkt.Type != PacketTypeLStat {
		t.Fatalf("type = %s", pkt.Type)
	}
	if pkt.RequestID != 7 {
		t.Fatalf("id = %d", pkt.RequestID)
	}
	var decoded LStatPacket
	if err := decoded.UnmarshalFrom(pkt.Data); err != nil {
		t.Fatal(err)
	}
	if decoded.Path != "/etc/passwd" {
		t.Fatalf("path = %q", decoded.Path)
	}
}

func TestRawPacketRejectsOversizedFrame(t *testing.T) {
	frame, err := MarshalPacket(PacketTypeLStat, 1, &LStatPacket{Path: "/x"}, 8)
	if err != nil {
		t.Fatal(err)
	}
	r := bytes.NewReader(frame)
	pkt := &RawPacket{}
	if err := pkt.ReadFrom(r, nil, 4); err == nil {
		t.Fatal("expected an error for a frame exceeding maxPacket")
	}
}

func TestOpenPacketWireBytes(t *testing.T) {
	// Concrete scenario 2 from spec §8: open("/a", "r", nil).
	flags, err := ToNumber("r")
	if err != nil {
		t.Fatal(err)
	}
	frame, err := MarshalPacket(PacketTypeOpen, 2, &OpenPacket{Filename: "/a", PFlags: flags}, 32)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x00, 0x00, 0x00, 0x13, // length
		byte(PacketTypeOpen),
		0x00, 0x00, 0x00, 0x02, // request id
		0x00, 0x00, 0x00, 0x02, '/', 'a', // path
		0x00, 0x00, 0x00, 0x01, // pflags = 1 (READ)
		0x00, 0x00, 0x00, 0x00, // attrs flags = 0
	}
	if !bytes.Equal(frame, want) {
		t.Fatalf("got % x, want % x", frame, want)
	}
}
