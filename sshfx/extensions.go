package sshfx

import "strings"

// ExtensionPair is one (name, value) entry of the extension list sent in
// a VERSION reply or an EXTENDED request.
type ExtensionPair struct {
	Name string
	Data string
}

// MarshalInto appends e's wire encoding onto buf.
func (e *ExtensionPair) MarshalInto(buf *Buffer) {
	buf.AppendString(e.Name)
	buf.AppendString(e.Data)
}

// UnmarshalFrom decodes an ExtensionPair from buf.
func (e *ExtensionPair) UnmarshalFrom(buf *Buffer) error {
	var err error
	if e.Name, err = buf.ConsumeString(); err != nil {
		return err
	}
	if e.Data, err = buf.ConsumeString(); err != nil {
		return err
	}
	return nil
}

// knownExtensions is the explicit allowlist of extension names this
// package recognizes, per spec §6 and Open Question (c): populated by
// hand, not by reflecting over any registry, so an accidental helper
// symbol can never leak in as a spurious "known" extension.
var knownExtensions = map[string]struct{}{
	"hardlink@openssh.com":           {},
	"posix-rename@openssh.com":       {},
	"statvfs@openssh.com":            {},
	"fstatvfs@openssh.com":           {},
	"fsync@openssh.com":              {},
	"newline@sftp.ws":                {},
	"newline":                        {},
	"newline@vandyke.com":            {},
	"charset@sftp.ws":                {},
	"meta@sftp.ws":                   {},
	"versions":                       {},
	"vendor-id":                      {},
	"copy-file":                      {},
	"copy-data":                      {},
	"check-file":                     {},
	"check-file-handle":              {},
	"check-file-name":                {},
	"supported":                      {},
	"supported2":                     {},
	"default-fs-attribs@vandyke.com": {},
	"symlink-order@rjk.greenend.org.uk": {},
	"link-order@rjk.greenend.org.uk":    {},
}

// IsKnownExtension reports whether name is in the explicit allowlist.
func IsKnownExtension(name string) bool {
	_, ok := knownExtensions[name]
	return ok
}

// ExtensionContains performs a tolerant comma-separated membership test,
// matching spec §4.4's `contains(csv, v)`: it surrounds both sides with
// commas so that a bare substring match cannot cross a token boundary.
func ExtensionContains(csv, v string) bool {
	if csv == "" || v == "" {
		return false
	}
	return strings.Contains(","+csv+",", ","+v+",")
}

// VendorID is the structured decoding of the "vendor-id" extension.
type VendorID struct {
	VendorName    string
	ProductName   string
	ProductVersion string
	ProductBuild  int64
}

// UnmarshalFrom decodes a VendorID from buf.
func (v *VendorID) UnmarshalFrom(buf *Buffer) error {
	var err error
	if v.VendorName, err = buf.ConsumeString(); err != nil {
		return err
	}
	if v.ProductName, err = buf.ConsumeString(); err != nil {
		return err
	}
	if v.ProductVersion, err = buf.ConsumeString(); err != nil {
		return err
	}
	if v.ProductBuild, err = buf.ConsumeInt64(); err != nil {
		return err
	}
	return nil
}

// Supported is the structured decoding of the "supported" extension
// (version 1 of the introspection payload; see Supported2 for the
// version-2 shape that adds block-vector and extension-name lists).
type Supported struct {
	AttributeMask   uint32
	AttributeBits   uint32
	OpenFlags       uint32
	AccessMask      uint32
	MaxReadSize     uint32
}

// UnmarshalFrom decodes a Supported from buf.
func (s *Supported) UnmarshalFrom(buf *Buffer) error {
	var err error
	if s.AttributeMask, err = buf.ConsumeUint32(); err != nil {
		return err
	}
	if s.AttributeBits, err = buf.ConsumeUint32(); err != nil {
		return err
	}
	if s.OpenFlags, err = buf.ConsumeUint32(); err != nil {
		return err
	}
	if s.AccessMask, err = buf.ConsumeUint32(); err != nil {
		return err
	}
	if s.MaxReadSize, err = buf.ConsumeUint32(); err != nil {
		return err
	}
	return nil
}

// Supported2 is the structured decoding of the "supported2" extension:
// Supported plus the block-vector fields and the bounded
// attrib-extension/extension name lists (spec §4.4).
type Supported2 struct {
	Supported
	OpenBlockVector    uint16
	BlockVector        uint16
	AttribExtensionNames []string
	ExtensionNames       []string
}

// UnmarshalFrom decodes a Supported2 from buf. The trailing name lists
// are each a 32-bit count followed by that many length-prefixed strings,
// per spec §4.4 ("bounded by the declared count for v2").
func (s *Supported2) UnmarshalFrom(buf *Buffer) error {
	if err := s.Supported.UnmarshalFrom(buf); err != nil {
		return err
	}
	var err error
	if s.OpenBlockVector, err = buf.ConsumeUint16(); err != nil {
		return err
	}
	if s.BlockVector, err = buf.ConsumeUint16(); err != nil {
		return err
	}
	if s.AttribExtensionNames, err = consumeStringList(buf); err != nil {
		return err
	}
	if s.ExtensionNames, err = consumeStringList(buf); err != nil {
		return err
	}
	return nil
}

func consumeStringList(buf *Buffer) ([]string, error) {
	count, err := buf.ConsumeUint32()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		s, err := buf.ConsumeString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// DefaultFSAttribs is the structured decoding of the
// "default-fs-attribs@vandyke.com" extension.
type DefaultFSAttribs struct {
	CasePreserved     bool
	CaseSensitive     bool
	IllegalCharacters string
	ReservedNames     []string
}

// UnmarshalFrom decodes a DefaultFSAttribs from buf.
func (d *DefaultFSAttribs) UnmarshalFrom(buf *Buffer) error {
	var err error
	if d.CasePreserved, err = buf.ConsumeBool(); err != nil {
		return err
	}
	if d.CaseSensitive, err = buf.ConsumeBool(); err != nil {
		return err
	}
	if d.IllegalCharacters, err = buf.ConsumeString(); err != nil {
		return err
	}
	count, err := buf.ConsumeUint32()
	if err != nil {
		return err
	}
	d.ReservedNames = make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		s, err := buf.ConsumeString()
		if err != nil {
			return err
		}
		d.ReservedNames = append(d.ReservedNames, s)
	}
	return nil
}
