package sshfx

import "testing"

func TestAttributesRoundTripBasic(t *testing.T) {
	a := &Attributes{
		Flags:       AttrBasic,
		Size:        1 << 40,
		UID:         1000,
		GID:         1000,
		Permissions: 0644 | ModeRegular,
		ATime:       1_700_000_000,
		MTime:       1_700_000_001,
	}
	buf := &Buffer{}
	a.MarshalInto(buf)

	got := &Attributes{}
	if err := got.UnmarshalFrom(NewBuffer(buf.Bytes())); err != nil {
		t.Fatal(err)
	}
	// Attributes embeds a Metadata slice, so it isn't comparable with ==;
	// compare the scalar fields directly instead.
	if got.Flags != a.Flags || got.Size != a.Size || got.UID != a.UID || got.GID != a.GID ||
		got.Permissions != a.Permissions || got.ATime != a.ATime || got.MTime != a.MTime ||
		len(got.Metadata) != len(a.Metadata) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, a)
	}
}

func TestAttributesExtendedFlagClearedOnDecode(t *testing.T) {
	a := &Attributes{Flags: AttrSize | AttrExtended, Size: 5}
	buf := &Buffer{}
	a.MarshalInto(buf)

	got := &Attributes{}
	if err := got.UnmarshalFrom(NewBuffer(buf.Bytes())); err != nil {
		t.Fatal(err)
	}
	if got.Flags&AttrExtended != 0 {
		t.Fatalf("EXTENDED bit leaked into decoded flags: %#x", got.Flags)
	}
	if got.Flags != AttrSize {
		t.Fatalf("flags = %#x, want %#x", got.Flags, AttrSize)
	}
}

func TestAttributesMetadataRoundTrip(t *testing.T) {
	a := &Attributes{
		Flags: AttrExtended,
		Metadata: Metadata{
			{Key: "owner", Kind: MetadataString, Str: "alice"},
			{Key: "archived", Kind: MetadataBool, Bool: true},
			{Key: "retries", Kind: MetadataInt, Int: -3},
			{Key: "tags", Kind: MetadataJSON, Str: `["a","b"]`},
			{Key: "scratch", Kind: MetadataNull},
		},
	}
	buf := &Buffer{}
	a.MarshalInto(buf)

	// Regression test for the metadata pair actually landing in the
	// parent frame (SPEC_FULL.md's fix for the original's detached-
	// buffer bug): the extended-pair count must be 1 and immediately
	// followed by readable pair bytes, not end-of-buffer.
	r := NewBuffer(buf.Bytes())
	got := &Attributes{}
	if err := got.UnmarshalFrom(r); err != nil {
		t.Fatalf("decoding attributes with metadata: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("%d trailing bytes after decode, metadata pair was not fully consumed", r.Len())
	}
	if len(got.Metadata) != len(a.Metadata) {
		t.Fatalf("got %d metadata entries, want %d", len(got.Metadata), len(a.Metadata))
	}
	for i := range a.Metadata {
		if got.Metadata[i] != a.Metadata[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got.Metadata[i], a.Metadata[i])
		}
	}
}

func TestAttributesUnknownMetadataTagSkipped(t *testing.T) {
	inner := &Buffer{}
	inner.AppendString("weird")
	inner.AppendUint8(0xFF) // unrecognized tag
	inner.AppendString("discarded payload")
	inner.AppendString("") // terminator

	md, err := unmarshalMetadata(NewBuffer(inner.Bytes()))
	if err != nil {
		t.Fatalf("unexpected error on unknown tag: %v", err)
	}
	if len(md) != 0 {
		t.Fatalf("expected unknown-tag entry to be skipped without being stored, got %+v", md)
	}
}
