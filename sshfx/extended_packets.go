package sshfx

// ExtendedData is implemented by the payload of a named EXTENDED
// request, e.g. the openssh subpackage's hardlink/posix-rename/
// copy-data/check-file-handle types.
type ExtendedData interface {
	Marshaler
	Unmarshaler
	ExtendedRequest() string
}

// ExtendedPacket is the SSH_FXP_EXTENDED request: a named extension
// invocation carrying its own typed payload.
type ExtendedPacket struct {
	Data ExtendedData
}

func (p *ExtendedPacket) MarshalInto(buf *Buffer) {
	buf.AppendString(p.Data.ExtendedRequest())
	p.Data.MarshalInto(buf)
}

// newExtendedPacketFuncs maps an extension name to a constructor for its
// ExtendedData, registered by the openssh subpackage at init time so
// this package never needs to import it back.
var newExtendedPacketFuncs = map[string]func() ExtendedData{}

// RegisterExtendedPacketType registers a constructor for the named
// extension's request payload, so UnmarshalExtendedPacket can decode
// inbound EXTENDED frames it was never compiled against directly.
func RegisterExtendedPacketType(name string, newData func() ExtendedData) {
	newExtendedPacketFuncs[name] = newData
}

// UnmarshalExtendedPacket reads the extended-request name and, if a
// constructor is registered for it, decodes the typed payload; otherwise
// it returns the name with a nil Data so the caller can decide.
func UnmarshalExtendedPacket(buf *Buffer) (name string, data ExtendedData, err error) {
	name, err = buf.ConsumeString()
	if err != nil {
		return "", nil, err
	}
	newData, ok := newExtendedPacketFuncs[name]
	if !ok {
		return name, nil, nil
	}
	data = newData()
	if err := data.UnmarshalFrom(buf); err != nil {
		return name, nil, err
	}
	return name, data, nil
}

// ExtendedReplyPacket is the SSH_FXP_EXTENDED_REPLY response, used by
// extensions whose reply isn't a plain STATUS/HANDLE/DATA/NAME/ATTRS
// (e.g. check-file-handle's hash result).
type ExtendedReplyPacket struct {
	Data Unmarshaler
}

func (p *ExtendedReplyPacket) UnmarshalFrom(buf *Buffer) error {
	return p.Data.UnmarshalFrom(buf)
}
