package sshfx

// LStatPacket is the SSH_FXP_LSTAT request.
type LStatPacket struct {
	Path string
}

func (p *LStatPacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Path) }
func (p *LStatPacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// StatPacket is the SSH_FXP_STAT request.
type StatPacket struct {
	Path string
}

func (p *StatPacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Path) }
func (p *StatPacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// SetstatPacket is the SSH_FXP_SETSTAT request.
type SetstatPacket struct {
	Path  string
	Attrs Attributes
}

func (p *SetstatPacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Path)
	p.Attrs.MarshalInto(buf)
}

func (p *SetstatPacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	if p.Path, err = buf.ConsumeString(); err != nil {
		return err
	}
	return p.Attrs.UnmarshalFrom(buf)
}

// RemovePacket is the SSH_FXP_REMOVE request.
type RemovePacket struct {
	Filename string
}

func (p *RemovePacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Filename) }
func (p *RemovePacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Filename, err = buf.ConsumeString()
	return err
}

// MkdirPacket is the SSH_FXP_MKDIR request.
type MkdirPacket struct {
	Path  string
	Attrs Attributes
}

func (p *MkdirPacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Path)
	p.Attrs.MarshalInto(buf)
}

func (p *MkdirPacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	if p.Path, err = buf.ConsumeString(); err != nil {
		return err
	}
	return p.Attrs.UnmarshalFrom(buf)
}

// RmdirPacket is the SSH_FXP_RMDIR request.
type RmdirPacket struct {
	Path string
}

func (p *RmdirPacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Path) }
func (p *RmdirPacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// RealpathPacket is the SSH_FXP_REALPATH request.
type RealpathPacket struct {
	Path string
}

func (p *RealpathPacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Path) }
func (p *RealpathPacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// RenameFlags are the v3+ extension-backed rename flags understood by
// the engine: 0 means the plain RENAME request, OVERWRITE routes
// through the posix-rename extension, anything else is rejected before
// any packet is sent (spec §4.7).
const RenameOverwrite uint32 = 1

// RenamePacket is the SSH_FXP_RENAME request (flags == 0 case).
type RenamePacket struct {
	OldPath string
	NewPath string
}

func (p *RenamePacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.OldPath)
	buf.AppendString(p.NewPath)
}

func (p *RenamePacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	if p.OldPath, err = buf.ConsumeString(); err != nil {
		return err
	}
	p.NewPath, err = buf.ConsumeString()
	return err
}

// ReadlinkPacket is the SSH_FXP_READLINK request.
type ReadlinkPacket struct {
	Path string
}

func (p *ReadlinkPacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Path) }
func (p *ReadlinkPacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// SymlinkPacket is the SSH_FXP_SYMLINK request.
type SymlinkPacket struct {
	Targetpath string
	Linkpath   string
}

func (p *SymlinkPacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Targetpath)
	buf.AppendString(p.Linkpath)
}

func (p *SymlinkPacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	if p.Targetpath, err = buf.ConsumeString(); err != nil {
		return err
	}
	p.Linkpath, err = buf.ConsumeString()
	return err
}
