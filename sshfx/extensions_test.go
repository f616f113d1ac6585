package sshfx

import "testing"

func TestExtensionDedupAndContains(t *testing.T) {
	extensions := map[string]string{}
	for _, v := range []string{"1", "2"} {
		name := "hardlink@openssh.com"
		if prev, ok := extensions[name]; ok {
			extensions[name] = prev + "," + v
		} else {
			extensions[name] = v
		}
	}
	got := extensions["hardlink@openssh.com"]
	if got != "1,2" {
		t.Fatalf("got %q, want %q", got, "1,2")
	}
	if !ExtensionContains(got, "1") {
		t.Fatal("expected 1 to be present")
	}
	if !ExtensionContains(got, "2") {
		t.Fatal("expected 2 to be present")
	}
	if ExtensionContains(got, "3") {
		t.Fatal("expected 3 to be absent")
	}
}

func TestExtensionContainsBoundaries(t *testing.T) {
	// A naive substring search would let "1" match inside "12" or "21";
	// the comma-bracketed search must not.
	if ExtensionContains("12,21", "1") {
		t.Fatal("1 should not match within 12 or 21")
	}
	if !ExtensionContains("1,21", "1") {
		t.Fatal("1 should match its own token")
	}
}

func TestIsKnownExtensionAllowlist(t *testing.T) {
	for _, name := range []string{
		"hardlink@openssh.com", "posix-rename@openssh.com", "statvfs@openssh.com",
		"vendor-id", "supported", "supported2", "default-fs-attribs@vandyke.com",
	} {
		if !IsKnownExtension(name) {
			t.Fatalf("%s should be known", name)
		}
	}
	if IsKnownExtension("_constructor") {
		t.Fatal("allowlist must not pick up incidental helper names (spec Open Question c)")
	}
	if IsKnownExtension("not-a-real-extension") {
		t.Fatal("unknown extension reported known")
	}
}

func TestVendorIDDecode(t *testing.T) {
	buf := &Buffer{}
	buf.AppendString("ACME Corp")
	buf.AppendString("Widget")
	buf.AppendString("1.0")
	buf.AppendInt64(1234)

	var v VendorID
	if err := v.UnmarshalFrom(NewBuffer(buf.Bytes())); err != nil {
		t.Fatal(err)
	}
	if v.VendorName != "ACME Corp" || v.ProductName != "Widget" || v.ProductVersion != "1.0" || v.ProductBuild != 1234 {
		t.Fatalf("got %+v", v)
	}
}

func TestSupported2Decode(t *testing.T) {
	buf := &Buffer{}
	buf.AppendUint32(1) // attribute mask
	buf.AppendUint32(2) // attribute bits
	buf.AppendUint32(3) // open flags
	buf.AppendUint32(4) // access mask
	buf.AppendUint32(5) // max read size
	buf.AppendUint16(6) // open block vector
	buf.AppendUint16(7) // block vector
	buf.AppendUint32(2)
	buf.AppendString("attrib-ext-1")
	buf.AppendString("attrib-ext-2")
	buf.AppendUint32(1)
	buf.AppendString("ext-1")

	var s Supported2
	if err := s.UnmarshalFrom(NewBuffer(buf.Bytes())); err != nil {
		t.Fatal(err)
	}
	if s.MaxReadSize != 5 || s.OpenBlockVector != 6 || s.BlockVector != 7 {
		t.Fatalf("got %+v", s)
	}
	if len(s.AttribExtensionNames) != 2 || len(s.ExtensionNames) != 1 {
		t.Fatalf("got %+v", s)
	}
}
