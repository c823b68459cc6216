package meta

import (
	"bytes"
	"errors"
	"testing"

	"metabin/internal/hexpat"
	"metabin/internal/pack"
	"metabin/internal/testkit"
	"metabin/internal/typecode"
)

func TestStructEmit(t *testing.T) {
	s := NewStruct("Header")
	if err := s.Pack(">I", 0xDEADBEEF, "magic"); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if err := s.Pack("H", 1000, "version"); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	s.AppendLine("padding[2];")
	if err := s.Pack("B", nil, "payload", pack.WithCount(16)); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	w := hexpat.NewWriter(hexpat.Options{IndentWidth: 2})
	if err := s.Emit(w); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "struct Header {\n" +
		"  be u32 magic @ \"3735928559\";\n" +
		"  u16 version @ \"1000\";\n" +
		"  padding[2];\n" +
		"  u8 payload[16];\n" +
		"};\n"
	if got := w.String(); got != want {
		t.Fatalf("Emit =\n%s\nwant\n%s", got, want)
	}
	if !bytes.Equal(s.Data(), []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xE8, 0x03}) {
		t.Fatalf("Data = %x", s.Data())
	}
	if err := testkit.CheckLockStep(s, s.Target()); err != nil {
		t.Fatalf("lock-step: %v", err)
	}
}

func TestStructUnnamed(t *testing.T) {
	s := NewStruct("")
	err := s.Emit(hexpat.NewWriter(hexpat.Options{}))
	if !errors.Is(err, ErrUnnamed) {
		t.Fatalf("err = %v, want ErrUnnamed", err)
	}
	s.SetName("Named")
	if err := s.Emit(hexpat.NewWriter(hexpat.Options{})); err != nil {
		t.Fatalf("Emit after SetName: %v", err)
	}
}

func TestStructAppendFieldsFromPackable(t *testing.T) {
	p := pack.New(typecode.Default())
	_ = p.Pack("B", 1, "a")
	_ = p.Pack("H", nil, "b", pack.WithCount(3))
	_ = p.Pack("H", 2, "c")

	s := NewStruct("Body")
	s.AppendLine("// body")
	if err := s.AppendFields(p); err != nil {
		t.Fatalf("AppendFields: %v", err)
	}
	lines, err := s.Lines()
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	want := []string{"// body", `u8 a @ "1";`, "u16 b[3];", `u16 c @ "2";`}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if !bytes.Equal(s.Data(), p.Data()) {
		t.Fatalf("Data = %x, want %x", s.Data(), p.Data())
	}
}

func TestStructRejectsNamedSource(t *testing.T) {
	inner := NewStruct("Inner")
	_ = inner.Pack("B", 1, "x")
	outer := NewStruct("Outer")
	if err := outer.AppendFields(inner); !errors.Is(err, pack.ErrNamingConflict) {
		t.Fatalf("err = %v, want ErrNamingConflict", err)
	}
	if len(outer.Metas()) != 0 {
		t.Fatalf("outer changed")
	}
}

func TestStructAppendRecord(t *testing.T) {
	s := NewStruct("S")
	if err := s.Append(pack.FieldRecord{Pattern: "B", Name: "x", Value: 1}, []byte{1}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(pack.FieldRecord{Pattern: "B", Name: "y", Value: 1}, nil); err == nil {
		t.Fatalf("expected error for missing chunk")
	}
	if err := s.Append(pack.FieldRecord{Pattern: "B", Name: "z", Array: true, Count: 2}, []byte{0}); err == nil {
		t.Fatalf("expected error for array with chunk")
	}
	if err := s.Append(pack.FieldRecord{Pattern: "2B", Name: "w"}, nil); !errors.Is(err, typecode.ErrUnsupportedPattern) {
		t.Fatalf("err = %v, want ErrUnsupportedPattern", err)
	}
	if len(s.Metas()) != 1 {
		t.Fatalf("metas = %d, want 1", len(s.Metas()))
	}
}
