package openssh

import (
	"bytes"
	"testing"

	"github.com/go-sftp/sftpclient/sshfx"
)

func TestHardlinkExtendedPacketWireBytes(t *testing.T) {
	req := &sshfx.ExtendedPacket{Data: &HardlinkExtendedPacket{Oldpath: "/a", Newpath: "/b"}}
	frame, err := sshfx.MarshalPacket(sshfx.PacketTypeExtended, 9, req, 64)
	if err != nil {
		t.Fatal(err)
	}

	pkt := &sshfx.RawPacket{}
	if err := pkt.ReadFrom(bytes.NewReader(frame), nil, sshfx.MaxPacketLength); err != nil {
		t.Fatal(err)
	}
	if pkt.Type != sshfx.PacketTypeExtended {
		t.Fatalf("type = %s", pkt.Type)
	}

	name, data, err := sshfx.UnmarshalExtendedPacket(pkt.Data)
	if err != nil {
		t.Fatal(err)
	}
	if name != extensionHardlink {
		t.Fatalf("name = %q", name)
	}
	hl, ok := data.(*HardlinkExtendedPacket)
	if !ok {
		t.Fatalf("data = %#v, want *HardlinkExtendedPacket", data)
	}
	if hl.Oldpath != "/a" || hl.Newpath != "/b" {
		t.Fatalf("got %+v", hl)
	}
}

func TestPosixRenameExtendedPacketRoundTrip(t *testing.T) {
	req := &sshfx.ExtendedPacket{Data: &PosixRenameExtendedPacket{Oldpath: "/old", Newpath: "/new"}}
	frame, err := sshfx.MarshalPacket(sshfx.PacketTypeExtended, 1, req, 64)
	if err != nil {
		t.Fatal(err)
	}
	pkt := &sshfx.RawPacket{}
	if err := pkt.ReadFrom(bytes.NewReader(frame), nil, sshfx.MaxPacketLength); err != nil {
		t.Fatal(err)
	}
	name, data, err := sshfx.UnmarshalExtendedPacket(pkt.Data)
	if err != nil {
		t.Fatal(err)
	}
	if name != extensionPosixRename {
		t.Fatalf("name = %q", name)
	}
	pr := data.(*PosixRenameExtendedPacket)
	if pr.Oldpath != "/old" || pr.Newpath != "/new" {
		t.Fatalf("got %+v", pr)
	}
}

func TestCopyDataExtendedPacketRoundTrip(t *testing.T) {
	req := &sshfx.ExtendedPacket{Data: &CopyDataExtendedPacket{
		ReadFromHandle: "h1", ReadFromOffset: 10, Length: 20,
		WriteToHandle: "h2", WriteToOffset: 30,
	}}
	frame, err := sshfx.MarshalPacket(sshfx.PacketTypeExtended, 2, req, 64)
	if err != nil {
		t.Fatal(err)
	}
	pkt := &sshfx.RawPacket{}
	if err := pkt.ReadFrom(bytes.NewReader(frame), nil, sshfx.MaxPacketLength); err != nil {
		t.Fatal(err)
	}
	name, data, err := sshfx.UnmarshalExtendedPacket(pkt.Data)
	if err != nil {
		t.Fatal(err)
	}
	if name != extensionCopyData {
		t.Fatalf("name = %q", name)
	}
	cd := data.(*CopyDataExtendedPacket)
	if cd.ReadFromHandle != "h1" || cd.ReadFromOffset != 10 || cd.Length != 20 ||
		cd.WriteToHandle != "h2" || cd.WriteToOffset != 30 {
		t.Fatalf("got %+v", cd)
	}
}

func TestCheckFileHandleRequestAndReply(t *testing.T) {
	req := &sshfx.ExtendedPacket{Data: &CheckFileHandleExtendedPacket{
		Handle: "h", AlgorithmList: "sha256,md5", Offset: 0, Length: 100, BlockLength: 16,
	}}
	frame, err := sshfx.MarshalPacket(sshfx.PacketTypeExtended, 3, req, 64)
	if err != nil {
		t.Fatal(err)
	}
	pkt := &sshfx.RawPacket{}
	if err := pkt.ReadFrom(bytes.NewReader(frame), nil, sshfx.MaxPacketLength); err != nil {
		t.Fatal(err)
	}
	name, data, err := sshfx.UnmarshalExtendedPacket(pkt.Data)
	if err != nil {
		t.Fatal(err)
	}
	if name != extensionCheckFileHandle {
		t.Fatalf("name = %q", name)
	}
	cf := data.(*CheckFileHandleExtendedPacket)
	if cf.Handle != "h" || cf.AlgorithmList != "sha256,md5" || cf.Length != 100 || cf.BlockLength != 16 {
		t.Fatalf("got %+v", cf)
	}

	replyBuf := &sshfx.Buffer{}
	replyBuf.AppendString("sha256")
	replyBuf.AppendUint8(0xab)
	replyBuf.AppendUint8(0xcd)

	var reply CheckFileHandleReply
	if err := reply.UnmarshalFrom(sshfx.NewBuffer(replyBuf.Bytes())); err != nil {
		t.Fatal(err)
	}
	if reply.Algorithm != "sha256" {
		t.Fatalf("algorithm = %q", reply.Algorithm)
	}
	if !bytes.Equal(reply.Hashes, []byte{0xab, 0xcd}) {
		t.Fatalf("hashes = % x", reply.Hashes)
	}
}

func TestUnregisteredExtensionNameReturnsNilData(t *testing.T) {
	buf := &sshfx.Buffer{}
	buf.AppendString("not-a-registered-extension")
	buf.AppendString("payload")

	name, data, err := sshfx.UnmarshalExtendedPacket(sshfx.NewBuffer(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if name != "not-a-registered-extension" {
		t.Fatalf("name = %q", name)
	}
	if data != nil {
		t.Fatalf("data = %#v, want nil", data)
	}
}
