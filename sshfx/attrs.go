package sshfx

import "fmt"

// Attribute-flag bits (spec §6).
const (
	AttrSize        uint32 = 0x00000001
	AttrUIDGID      uint32 = 0x00000002
	AttrPermissions uint32 = 0x00000004
	AttrACModTime   uint32 = 0x00000008
	AttrExtended    uint32 = 0x80000000

	AttrBasic = AttrSize | AttrUIDGID | AttrPermissions | AttrACModTime
)

// File-type nibbles within Permissions, matching POSIX S_IF* constants.
const (
	ModeFmt       = 0xF000
	ModeFIFO      = 0x1000
	ModeCharDev   = 0x2000
	ModeDir       = 0x4000
	ModeBlockDev  = 0x6000
	ModeRegular   = 0x8000
	ModeSymlink   = 0xA000
	ModeSocket    = 0xC000
)

// metadataExtensionName is the reserved extension-pair name under which a
// Metadata value is serialized, per spec §6 ("meta@sftp.ws").
const metadataExtensionName = "meta@sftp.ws"

// MetadataKind tags the type of a Metadata value, per spec §4.3 and the
// tagged-sum design note in spec §9.
type MetadataKind uint8

const (
	MetadataNull MetadataKind = iota
	MetadataBool
	MetadataInt
	MetadataString
	MetadataJSON
)

// MetadataValue is one entry of the metadata sub-block: a string key and
// a heterogeneously typed value.
type MetadataValue struct {
	Key  string
	Kind MetadataKind
	Bool bool
	Int  int64
	Str  string // holds both MetadataString and MetadataJSON payloads
}

// Metadata is the decoded metadata sub-block: an ordered list of typed
// key/value entries, terminated on the wire by a zero-length key.
type Metadata []MetadataValue

func (m Metadata) marshalInto(buf *Buffer) {
	for _, v := range m {
		buf.AppendString(v.Key)
		buf.AppendUint8(uint8(v.Kind))
		switch v.Kind {
		case MetadataNull:
			// no payload
		case MetadataBool:
			buf.AppendBool(v.Bool)
		case MetadataInt:
			buf.AppendInt64(v.Int)
		case MetadataString, MetadataJSON:
			buf.AppendString(v.Str)
		}
	}
	buf.AppendString("") // zero-length key terminator
}

func unmarshalMetadata(buf *Buffer) (Metadata, error) {
	var m Metadata
	for {
		key, err := buf.ConsumeString()
		if err != nil {
			return nil, err
		}
		if key == "" {
			return m, nil
		}
		tag, err := buf.ConsumeUint8()
		if err != nil {
			return nil, err
		}
		v := MetadataValue{Key: key, Kind: MetadataKind(tag)}
		switch v.Kind {
		case MetadataNull:
		case MetadataBool:
			v.Bool, err = buf.ConsumeBool()
		case MetadataInt:
			v.Int, err = buf.ConsumeInt64()
		case MetadataString, MetadataJSON:
			v.Str, err = buf.ConsumeString()
		default:
			// unknown tag: skip one string and discard
			_, err = buf.ConsumeString()
			continue
		}
		if err != nil {
			return nil, err
		}
		m = append(m, v)
	}
}

// Attributes is the SFTP attribute record (spec §3, §4.3): a flags word
// gating which of the following fields are present on the wire.
type Attributes struct {
	Flags       uint32
	Size        uint64
	UID, GID    uint32
	Permissions uint32
	ATime       uint32
	MTime       uint32
	Metadata    Metadata
}

// Len reports the number of bytes MarshalInto will write for a, not
// counting the metadata pair's name and data when Metadata is attached.
func (a *Attributes) Len() int {
	n := 4
	if a.Flags&AttrSize != 0 {
		n += 8
	}
	if a.Flags&AttrUIDGID != 0 {
		n += 8
	}
	if a.Flags&AttrPermissions != 0 {
		n += 4
	}
	if a.Flags&AttrACModTime != 0 {
		n += 8
	}
	if a.Flags&AttrExtended != 0 {
		n += 4 // count; metadata bytes are variable, not included here
	}
	return n
}

// MarshalInto appends a's wire encoding onto buf, in the fixed field
// order required by spec §4.3: flags, size, uid/gid, permissions,
// atime/mtime, then the extended-pair count and (if a Metadata value is
// attached) the single metadata pair, written directly into buf so the
// pair is never dropped — see SPEC_FULL.md's fix for the original's
// detached-buffer metadata bug.
func (a *Attributes) MarshalInto(buf *Buffer) {
	buf.AppendUint32(a.Flags)
	if a.Flags&AttrSize != 0 {
		buf.AppendUint64(a.Size)
	}
	if a.Flags&AttrUIDGID != 0 {
		buf.AppendUint32(a.UID)
		buf.AppendUint32(a.GID)
	}
	if a.Flags&AttrPermissions != 0 {
		buf.AppendUint32(a.Permissions)
	}
	if a.Flags&AttrACModTime != 0 {
		buf.AppendUint32(a.ATime)
		buf.AppendUint32(a.MTime)
	}
	if a.Flags&AttrExtended != 0 {
		if len(a.Metadata) == 0 {
			buf.AppendUint32(0)
			return
		}
		buf.AppendUint32(1)
		buf.AppendString(metadataExtensionName)
		inner := &Buffer{b: make([]byte, 0, 64)}
		a.Metadata.marshalInto(inner)
		buf.AppendByteSlice(inner.Bytes())
	}
}

// UnmarshalFrom decodes an Attributes record from buf, per spec §4.3's
// decode rules: the EXTENDED bit is cleared from the stored flags once
// consumed, so callers observe only the basic mask.
func (a *Attributes) UnmarshalFrom(buf *Buffer) error {
	flags, err := buf.ConsumeUint32()
	if err != nil {
		return err
	}
	a.Flags = flags &^ AttrExtended

	if flags&AttrSize != 0 {
		if a.Size, err = buf.ConsumeUint64(); err != nil {
			return err
		}
	}
	if flags&AttrUIDGID != 0 {
		if a.UID, err = buf.ConsumeUint32(); err != nil {
			return err
		}
		if a.GID, err = buf.ConsumeUint32(); err != nil {
			return err
		}
	}
	if flags&AttrPermissions != 0 {
		if a.Permissions, err = buf.ConsumeUint32(); err != nil {
			return err
		}
	}
	if flags&AttrACModTime != 0 {
		if a.ATime, err = buf.ConsumeUint32(); err != nil {
			return err
		}
		if a.MTime, err = buf.ConsumeUint32(); err != nil {
			return err
		}
	}
	if flags&AttrExtended != 0 {
		count, err := buf.ConsumeUint32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			name, err := buf.ConsumeString()
			if err != nil {
				return err
			}
			data, err := buf.ConsumeByteSlice()
			if err != nil {
				return err
			}
			if name == metadataExtensionName {
				md, err := unmarshalMetadata(NewBuffer(data))
				if err != nil {
					return fmt.Errorf("sshfx: decoding metadata: %w", err)
				}
				a.Metadata = md
			}
			// other extended pairs are skipped: consumed above, not stored.
		}
	}
	return nil
}

// ExtendedAttribute is a single (name, data) pair from the attribute
// block's extended-pair list. Attributes.UnmarshalFrom does not return
// these pairs: it keeps only the recognized metadata sub-block and skips
// the rest.
type ExtendedAttribute struct {
	Name string
	Data []byte
}
