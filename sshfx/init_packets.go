package sshfx

// Version 3 is the only protocol version this package speaks (spec §1
// Non-goals).
const Version = 3

// InitPacket is the SSH_FXP_INIT request; it carries a version in place
// of a request id, per spec §3.
type InitPacket struct {
	Version uint32
}

// MarshalPacket builds the full INIT frame.
func (p *InitPacket) MarshalPacket() ([]byte, error) {
	buf := NewMarshalBuffer(5)
	buf.AppendUint8(uint8(PacketTypeInit))
	buf.AppendUint32(p.Version)
	if err := buf.PutLength(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// VersionPacket is the SSH_FXP_VERSION reply, also carrying a version in
// place of a request id, followed by the server's extension list.
type VersionPacket struct {
	Version    uint32
	Extensions []ExtensionPair
}

// UnmarshalExtensions decodes a VersionPacket body (the 4-byte version has
// already been consumed by the caller into p.Version; this reads the
// remaining extension pairs to end-of-frame, per spec §4.7).
func (p *VersionPacket) UnmarshalExtensions(buf *Buffer) error {
	for buf.Len() > 0 {
		var e ExtensionPair
		if err := e.UnmarshalFrom(buf); err != nil {
			return err
		}
		p.Extensions = append(p.Extensions, e)
	}
	return nil
}
