package sshfx

// OpenPacket is the SSH_FXP_OPEN request.
type OpenPacket struct {
	Filename string
	PFlags   uint32
	Attrs    Attributes
}

func (p *OpenPacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Filename)
	buf.AppendUint32(p.PFlags)
	p.Attrs.MarshalInto(buf)
}

func (p *OpenPacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	if p.Filename, err = buf.ConsumeString(); err != nil {
		return err
	}
	if p.PFlags, err = buf.ConsumeUint32(); err != nil {
		return err
	}
	return p.Attrs.UnmarshalFrom(buf)
}

// ClosePacket is the SSH_FXP_CLOSE request.
type ClosePacket struct {
	Handle string
}

func (p *ClosePacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Handle) }
func (p *ClosePacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Handle, err = buf.ConsumeString()
	return err
}

// ReadPacket is the SSH_FXP_READ request.
type ReadPacket struct {
	Handle string
	Offset int64
	Length uint32
}

func (p *ReadPacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Handle)
	buf.AppendInt64(p.Offset)
	buf.AppendUint32(p.Length)
}

func (p *ReadPacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}
	if p.Offset, err = buf.ConsumeInt64(); err != nil {
		return err
	}
	p.Length, err = buf.ConsumeUint32()
	return err
}

// WritePacket is the SSH_FXP_WRITE request. Data is kept out of the
// header buffer by MarshalPacket's (header, payload) split so a large
// write body is never copied into the marshal buffer.
type WritePacket struct {
	Handle string
	Offset int64
	Data   []byte
}

func (p *WritePacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Handle)
	buf.AppendInt64(p.Offset)
	buf.AppendUint32(uint32(len(p.Data)))
}

func (p *WritePacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}
	if p.Offset, err = buf.ConsumeInt64(); err != nil {
		return err
	}
	p.Data, err = buf.ConsumeByteSlice()
	return err
}

// MarshalPacket builds the WRITE frame's header and returns it paired
// with the data payload, avoiding a copy of p.Data.
func (p *WritePacket) MarshalPacket(requestID uint32) (header, payload []byte, err error) {
	buf := NewMarshalBuffer(len(p.Handle) + 32)
	buf.AppendUint8(uint8(PacketTypeWrite))
	buf.AppendUint32(requestID)
	buf.AppendString(p.Handle)
	buf.AppendInt64(p.Offset)
	buf.AppendUint32(uint32(len(p.Data)))
	return buf.Packet(p.Data)
}

// FStatPacket is the SSH_FXP_FSTAT request.
type FStatPacket struct {
	Handle string
}

func (p *FStatPacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Handle) }
func (p *FStatPacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Handle, err = buf.ConsumeString()
	return err
}

// FSetstatPacket is the SSH_FXP_FSETSTAT request.
type FSetstatPacket struct {
	Handle string
	Attrs  Attributes
}

func (p *FSetstatPacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Handle)
	p.Attrs.MarshalInto(buf)
}

func (p *FSetstatPacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	if p.Handle, err = buf.ConsumeString(); err != nil {
		return err
	}
	return p.Attrs.UnmarshalFrom(buf)
}

// OpenDirPacket is the SSH_FXP_OPENDIR request.
type OpenDirPacket struct {
	Path string
}

func (p *OpenDirPacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Path) }
func (p *OpenDirPacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Path, err = buf.ConsumeString()
	return err
}

// ReadDirPacket is the SSH_FXP_READDIR request.
type ReadDirPacket struct {
	Handle string
}

func (p *ReadDirPacket) MarshalInto(buf *Buffer) { buf.AppendString(p.Handle) }
func (p *ReadDirPacket) UnmarshalFrom(buf *Buffer) (err error) {
	p.Handle, err = buf.ConsumeString()
	return err
}
