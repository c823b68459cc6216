package meta

import (
	"errors"
	"testing"

	"metabin/internal/hexpat"
	"metabin/internal/pack"
	"metabin/internal/typecode"
)

func TestFunctionEmit(t *testing.T) {
	f := NewFunction("calculate_checksum")
	f.AddParam("data", "u8")
	f.AddParam("length", "u32")
	f.SetReturns("u32")
	f.AppendLine("u32 checksum = 0;")
	f.AppendLine("for (u32 i = 0, i < length, i = i + 1) {\n    checksum = checksum + data[i];\n}")
	f.AppendLine("return checksum;")

	w := hexpat.NewWriter(hexpat.Options{IndentWidth: 4})
	if err := f.Emit(w); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "fn calculate_checksum(data: u8, length: u32) -> u32 {\n" +
		"    u32 checksum = 0;\n" +
		"    for (u32 i = 0, i < length, i = i + 1) {\n" +
		"        checksum = checksum + data[i];\n" +
		"    }\n" +
		"    return checksum;\n" +
		"}\n"
	if got := w.String(); got != want {
		t.Fatalf("Emit =\n%s\nwant\n%s", got, want)
	}
}

func TestFunctionWithoutReturns(t *testing.T) {
	f := NewFunction("main")
	if got := f.Signature(); got != "fn main()" {
		t.Fatalf("Signature = %q", got)
	}
	f.SetName("")
	if err := f.Emit(hexpat.NewWriter(hexpat.Options{})); !errors.Is(err, ErrUnnamed) {
		t.Fatalf("err = %v, want ErrUnnamed", err)
	}
}

func TestFunctionAppendFields(t *testing.T) {
	p := pack.New(typecode.Default())
	_ = p.Pack("<H", 5, "len")
	f := NewFunction("read")
	if err := f.AppendFields(p); err != nil {
		t.Fatalf("AppendFields: %v", err)
	}
	if lines := f.Lines(); len(lines) != 1 || lines[0] != `le u16 len @ "5";` {
		t.Fatalf("lines = %q", lines)
	}
}
