package openssh

import "github.com/go-sftp/sftpclient/sshfx"

const extensionPosixRename = "posix-rename@openssh.com"

// ExtensionPosixRename is the version pair advertised for this
// extension (spec §4.7: presence of version "1" sets POSIX_RENAME).
func ExtensionPosixRename() *sshfx.ExtensionPair {
	return &sshfx.ExtensionPair{Name: extensionPosixRename, Data: "1"}
}

// PosixRenameExtendedPacket is the posix-rename@openssh.com request
// payload: an atomic rename that may overwrite Newpath, used for
// rename(..., OVERWRITE) per spec §4.7.
type PosixRenameExtendedPacket struct {
	Oldpath string
	Newpath string
}

func (p *PosixRenameExtendedPacket) ExtendedRequest() string { return extensionPosixRename }

func (p *PosixRenameExtendedPacket) MarshalInto(buf *sshfx.Buffer) {
	buf.AppendString(p.Oldpath)
	buf.AppendString(p.Newpath)
}

func (p *PosixRenameExtendedPacket) UnmarshalFrom(buf *sshfx.Buffer) error {
	var err error
	if p.Oldpath, err = buf.ConsumeString(); err != nil {
		return err
	}
	p.Newpath, err = buf.ConsumeString()
	return err
}

func init() {
	sshfx.RegisterExtendedPacketType(extensionPosixRename, func() sshfx.ExtendedData {
		return &PosixRenameExtendedPacket{}
	})
}
