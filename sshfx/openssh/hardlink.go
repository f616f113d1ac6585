// Package openssh implements the OpenSSH SFTP extensions gated by the
// feature map: hardlink@openssh.com, posix-rename@openssh.com,
// copy-data, and check-file-handle.
package openssh

import "github.com/go-sftp/sftpclient/sshfx"

const extensionHardlink = "hardlink@openssh.com"

// ExtensionHardlink is the version pair advertised for this extension
// (spec §4.7: presence of version "1" sets the HARDLINK feature).
func ExtensionHardlink() *sshfx.ExtensionPair {
	return &sshfx.ExtensionPair{Name: extensionHardlink, Data: "1"}
}

// HardlinkExtendedPacket is the hardlink@openssh.com request payload:
// create Newpath as a hard link to Oldpath.
type HardlinkExtendedPacket struct {
	Oldpath string
	Newpath string
}

func (p *HardlinkExtendedPacket) ExtendedRequest() string { return extensionHardlink }

func (p *HardlinkExtendedPacket) MarshalInto(buf *sshfx.Buffer) {
	buf.AppendString(p.Oldpath)
	buf.AppendString(p.Newpath)
}

func (p *HardlinkExtendedPacket) UnmarshalFrom(buf *sshfx.Buffer) error {
	var err error
	if p.Oldpath, err = buf.ConsumeString(); err != nil {
		return err
	}
	p.Newpath, err = buf.ConsumeString()
	return err
}

func init() {
	sshfx.RegisterExtendedPacketType(extensionHardlink, func() sshfx.ExtendedData {
		return &HardlinkExtendedPacket{}
	})
}
