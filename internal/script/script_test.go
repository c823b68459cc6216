package script

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"metabin/internal/hexpat"
	"metabin/internal/pack"
	"metabin/internal/trace"
	"metabin/internal/typecode"
)

func TestBuildFirmware(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "firmware.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m, err := s.Build(context.Background(), typecode.Default(), hexpat.Options{IndentWidth: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Name != "firmware" {
		t.Fatalf("name = %q", m.Name)
	}
	got, err := m.Pattern()
	if err != nil {
		t.Fatalf("Pattern: %v", err)
	}
	want := "struct Header {\n" +
		"  be u32 magic @ \"3735928559\";\n" +
		"  u16 version @ \"1000\";\n" +
		"  u8 payload[16];\n" +
		"};\n" +
		"\n" +
		"fn checksum(data: u8) -> u32 {\n" +
		"  return 0;\n" +
		"}\n" +
		"\n" +
		"le f32 ratio @ \"0.5\";\n" +
		"Header header @ 0x00;\n"
	if got != want {
		t.Fatalf("Pattern =\n%s\nwant\n%s", got, want)
	}
	wantData := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xE8, 0x03, 0x00, 0x00, 0x00, 0x3F}
	if !bytes.Equal(m.Data(), wantData) {
		t.Fatalf("Data = %x, want %x", m.Data(), wantData)
	}
}

func TestBuildReportsPackingContext(t *testing.T) {
	s, err := Decode(`
[[segment]]
kind = "struct"
name = "S"
  [[segment.field]]
  type = "B"
  name = "big"
  value = 300
`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = s.Build(context.Background(), typecode.Default(), hexpat.Options{})
	var perr *pack.PackError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PackError", err)
	}
	if perr.Context != "document:segment[0]" || perr.Name != "big" {
		t.Fatalf("PackError = %+v", perr)
	}
}

func TestBuildRejectsUnsupportedPattern(t *testing.T) {
	s, err := Decode(`
[[segment]]
kind = "field"
type = "10s"
name = "label"
value = "abc"
`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = s.Build(context.Background(), typecode.Default(), hexpat.Options{})
	if !errors.Is(err, typecode.ErrUnsupportedPattern) {
		t.Fatalf("err = %v, want ErrUnsupportedPattern", err)
	}
}

func TestDecodeRejectsUnknown(t *testing.T) {
	if _, err := Decode("[[segment]]\nkind = \"line\"\ncolour = 1\n"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	s, err := Decode("[[segment]]\nkind = \"table\"\n")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := s.Build(context.Background(), typecode.Default(), hexpat.Options{}); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestBuildUsesContextTracer(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "firmware.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := s.Build(ctx, typecode.Default(), hexpat.Options{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	var fields, docs int
	for _, ev := range ring.Snapshot() {
		switch ev.Scope {
		case trace.ScopeField:
			fields++
		case trace.ScopeDocument:
			docs++
		}
	}
	if fields != 4 {
		t.Fatalf("field events = %d, want 4", fields)
	}
	if docs != 2 {
		t.Fatalf("document events = %d, want 2", docs)
	}
}

func TestBuildCanceled(t *testing.T) {
	s, _ := Decode("[[segment]]\nkind = \"line\"\ntext = \"x;\"\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Build(ctx, typecode.Default(), hexpat.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestScriptName(t *testing.T) {
	s := &Script{Path: filepath.Join("dir", "image.toml")}
	if s.Name() != "image" {
		t.Fatalf("Name = %q", s.Name())
	}
}
