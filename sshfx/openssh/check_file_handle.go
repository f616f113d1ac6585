package openssh

import "github.com/go-sftp/sftpclient/sshfx"

const extensionCheckFileHandle = "check-file-handle"

// ExtensionCheckFileHandle is the version pair advertised for this
// extension. As with COPY_DATA, spec §4.7 treats CHECK_FILE_HANDLE as
// unconditionally present in full builds.
func ExtensionCheckFileHandle() *sshfx.ExtensionPair {
	return &sshfx.ExtensionPair{Name: extensionCheckFileHandle, Data: "1"}
}

// CheckFileHandleExtendedPacket is the check-file-handle request
// payload: fhash(h, alg, pos, len, blocksize) — hash Length bytes of
// Handle starting at Offset, in BlockLength chunks, using the first
// algorithm from AlgorithmList the server supports.
type CheckFileHandleExtendedPacket struct {
	Handle        string
	AlgorithmList string // comma-separated, server picks the first match
	Offset        int64
	Length        int64
	BlockLength   uint32
}

func (p *CheckFileHandleExtendedPacket) ExtendedRequest() string { return extensionCheckFileHandle }

func (p *CheckFileHandleExtendedPacket) MarshalInto(buf *sshfx.Buffer) {
	buf.AppendString(p.Handle)
	buf.AppendString(p.AlgorithmList)
	buf.AppendInt64(p.Offset)
	buf.AppendInt64(p.Length)
	buf.AppendUint32(p.BlockLength)
}

func (p *CheckFileHandleExtendedPacket) UnmarshalFrom(buf *sshfx.Buffer) error {
	var err error
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}
	if p.AlgorithmList, err = buf.ConsumeString(); err != nil {
		return err
	}
	if p.Offset, err = buf.ConsumeInt64(); err != nil {
		return err
	}
	if p.Length, err = buf.ConsumeInt64(); err != nil {
		return err
	}
	p.BlockLength, err = buf.ConsumeUint32()
	return err
}

func init() {
	sshfx.RegisterExtendedPacketType(extensionCheckFileHandle, func() sshfx.ExtendedData {
		return &CheckFileHandleExtendedPacket{}
	})
}

// CheckFileHandleReply is the EXTENDED_REPLY payload to a
// check-file-handle request: the algorithm the server actually used,
// and the concatenated per-block hash bytes.
type CheckFileHandleReply struct {
	Algorithm string
	Hashes    []byte
}

func (p *CheckFileHandleReply) UnmarshalFrom(buf *sshfx.Buffer) error {
	var err error
	if p.Algorithm, err = buf.ConsumeString(); err != nil {
		return err
	}
	p.Hashes = buf.ConsumeRemaining()
	return nil
}
