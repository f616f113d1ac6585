package openssh

import "github.com/go-sftp/sftpclient/sshfx"

const extensionCopyData = "copy-data"

// ExtensionCopyData is the version pair advertised for this extension.
// Unlike hardlink/posix-rename, spec §4.7 treats COPY_DATA as
// unconditionally present in full builds rather than gated by a
// negotiated version string, so this constructor exists for symmetry
// with the registry but feature detection does not consult it.
func ExtensionCopyData() *sshfx.ExtensionPair {
	return &sshfx.ExtensionPair{Name: extensionCopyData, Data: "1"}
}

// CopyDataExtendedPacket is the copy-data request payload: fcopy(fh,
// foff, len, th, toff) — copy Length bytes from ReadFromHandle starting
// at ReadFromOffset into WriteToHandle at WriteToOffset.
type CopyDataExtendedPacket struct {
	ReadFromHandle   string
	ReadFromOffset   int64
	Length           int64
	WriteToHandle    string
	WriteToOffset    int64
}

func (p *CopyDataExtendedPacket) ExtendedRequest() string { return extensionCopyData }

func (p *CopyDataExtendedPacket) MarshalInto(buf *sshfx.Buffer) {
	buf.AppendString(p.ReadFromHandle)
	buf.AppendInt64(p.ReadFromOffset)
	buf.AppendInt64(p.Length)
	buf.AppendString(p.WriteToHandle)
	buf.AppendInt64(p.WriteToOffset)
}

func (p *CopyDataExtendedPacket) UnmarshalFrom(buf *sshfx.Buffer) error {
	var err error
	if p.ReadFromHandle, err = buf.ConsumeString(); err != nil {
		return err
	}
	if p.ReadFromOffset, err = buf.ConsumeInt64(); err != nil {
		return err
	}
	if p.Length, err = buf.ConsumeInt64(); err != nil {
		return err
	}
	if p.WriteToHandle, err = buf.ConsumeString(); err != nil {
		return err
	}
	p.WriteToOffset, err = buf.ConsumeInt64()
	return err
}

func init() {
	sshfx.RegisterExtendedPacketType(extensionCopyData, func() sshfx.ExtendedData {
		return &CopyDataExtendedPacket{}
	})
}
