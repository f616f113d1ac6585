package sshfx

// StatusPacket is the SSH_FXP_STATUS reply, terminating almost every
// operation either successfully (Status==StatusOK) or with an error.
type StatusPacket struct {
	StatusCode   Status
	ErrorMessage string
	LanguageTag  string
}

// MarshalInto appends p's wire encoding onto buf.
func (p *StatusPacket) MarshalInto(buf *Buffer) {
	buf.AppendUint32(uint32(p.StatusCode))
	buf.AppendString(p.ErrorMessage)
	buf.AppendString(p.LanguageTag)
}

// UnmarshalFrom decodes a StatusPacket from buf.
func (p *StatusPacket) UnmarshalFrom(buf *Buffer) error {
	code, err := buf.ConsumeUint32()
	if err != nil {
		return err
	}
	p.StatusCode = Status(code)
	if p.ErrorMessage, err = buf.ConsumeString(); err != nil {
		return err
	}
	if p.LanguageTag, err = buf.ConsumeString(); err != nil {
		return err
	}
	return nil
}

// HandlePacket is the SSH_FXP_HANDLE reply, carrying an opaque
// server-issued handle token.
type HandlePacket struct {
	Handle string
}

func (p *HandlePacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Handle)
}

func (p *HandlePacket) UnmarshalFrom(buf *Buffer) error {
	var err error
	p.Handle, err = buf.ConsumeString()
	return err
}

// DataPacket is the SSH_FXP_DATA reply to a READ request.
type DataPacket struct {
	Data []byte
}

func (p *DataPacket) MarshalInto(buf *Buffer) {
	buf.AppendByteSlice(p.Data)
}

func (p *DataPacket) UnmarshalFrom(buf *Buffer) error {
	v, err := buf.ConsumeByteSlice()
	if err != nil {
		return err
	}
	p.Data = append([]byte(nil), v...)
	return nil
}

// NameEntry is one entry of a NAME reply: a filename, its preformatted
// long listing, and its attributes.
type NameEntry struct {
	Filename string
	Longname string
	Attrs    Attributes
}

// NamePacket is the SSH_FXP_NAME reply to READDIR/REALPATH/READLINK;
// the latter two always carry exactly one entry.
type NamePacket struct {
	Entries []*NameEntry
}

func (p *NamePacket) MarshalInto(buf *Buffer) {
	buf.AppendUint32(uint32(len(p.Entries)))
	for _, e := range p.Entries {
		buf.AppendString(e.Filename)
		buf.AppendString(e.Longname)
		e.Attrs.MarshalInto(buf)
	}
}

func (p *NamePacket) UnmarshalFrom(buf *Buffer) error {
	count, err := buf.ConsumeUint32()
	if err != nil {
		return err
	}
	p.Entries = make([]*NameEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		e := &NameEntry{}
		if e.Filename, err = buf.ConsumeString(); err != nil {
			return err
		}
		if e.Longname, err = buf.ConsumeString(); err != nil {
			return err
		}
		if err = e.Attrs.UnmarshalFrom(buf); err != nil {
			return err
		}
		p.Entries = append(p.Entries, e)
	}
	return nil
}

// AttrsPacket is the SSH_FXP_ATTRS reply to LSTAT/STAT/FSTAT.
type AttrsPacket struct {
	Attrs Attributes
}

func (p *AttrsPacket) MarshalInto(buf *Buffer) {
	p.Attrs.MarshalInto(buf)
}

func (p *AttrsPacket) UnmarshalFrom(buf *Buffer) error {
	return p.Attrs.UnmarshalFrom(buf)
}
