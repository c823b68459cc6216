package typecode

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestTranslateSingleLetter(t *testing.T) {
	target := Default()
	cases := []struct {
		code string
		want string
	}{
		{"B", "u8"},
		{"b", "s8"},
		{"H", "u16"},
		{"h", "s16"},
		{"I", "u32"},
		{"i", "s32"},
		{"L", "u32"},
		{"l", "s32"},
		{"Q", "u64"},
		{"q", "s64"},
		{"S", "u32"},
		{"s", "s32"},
		{"e", "f16"},
		{"f", "f32"},
		{"d", "f64"},
	}
	for _, tc := range cases {
		got, err := Translate(tc.code, target)
		if err != nil {
			t.Fatalf("Translate(%q) error: %v", tc.code, err)
		}
		if got != tc.want {
			t.Fatalf("Translate(%q) = %q, want %q", tc.code, got, tc.want)
		}
		again, _ := Translate(tc.code, target)
		if again != got {
			t.Fatalf("Translate(%q) not stable: %q then %q", tc.code, got, again)
		}
		if strings.Contains(got, " ") {
			t.Fatalf("Translate(%q) = %q, want a single token", tc.code, got)
		}
	}
}

func TestTranslateWithMarker(t *testing.T) {
	target := Default()
	for _, letter := range Letters() {
		prim, _ := Lookup(letter)
		prim = prim.Resolve(target)
		for marker, tok := range map[byte]string{'>': "be", '<': "le"} {
			code := string([]byte{marker, letter})
			got, err := Translate(code, target)
			if err != nil {
				t.Fatalf("Translate(%q) error: %v", code, err)
			}
			want := tok + " " + prim.Token
			if got != want {
				t.Fatalf("Translate(%q) = %q, want %q", code, got, want)
			}
		}
	}
	if got, _ := Translate(">H", target); got != "be u16" {
		t.Fatalf("Translate(\">H\") = %q, want \"be u16\"", got)
	}
}

func TestTranslateUnknown(t *testing.T) {
	for _, code := range []string{"x", "?", ">x", "<P", "p"} {
		_, err := Translate(code, Default())
		if !errors.Is(err, ErrUnknownTypeCode) {
			t.Fatalf("Translate(%q) err = %v, want ErrUnknownTypeCode", code, err)
		}
		var ce *CodeError
		if !errors.As(err, &ce) || ce.Code != code {
			t.Fatalf("Translate(%q) err = %#v, want *CodeError with code", code, err)
		}
	}
}

func TestTranslateUnsupported(t *testing.T) {
	for _, code := range []string{"10s", "2H", "HH", "", "=H", "!I", ">HH"} {
		_, err := Translate(code, Default())
		if !errors.Is(err, ErrUnsupportedPattern) {
			t.Fatalf("Translate(%q) err = %v, want ErrUnsupportedPattern", code, err)
		}
		if errors.Is(err, ErrUnknownTypeCode) {
			t.Fatalf("Translate(%q) matched both error kinds", code)
		}
	}
}

func TestSizeAliasFollowsTarget(t *testing.T) {
	wide := X86_64LinuxGNU()
	cases := map[string]string{"s": "s64", "S": "u64", ">S": "be u64"}
	for code, want := range cases {
		got, err := Translate(code, wide)
		if err != nil {
			t.Fatalf("Translate(%q) error: %v", code, err)
		}
		if got != want {
			t.Fatalf("Translate(%q) = %q, want %q", code, got, want)
		}
	}
	p, err := Parse("S", wide)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Width() != 8 {
		t.Fatalf("width = %d, want 8", p.Width())
	}
}

func TestSizeAliasRejectsBadTarget(t *testing.T) {
	for _, width := range []int{0, 2, 16} {
		target := Target{SizeWidth: width}
		for _, code := range []string{"s", "S", ">s", "<S"} {
			got, err := Translate(code, target)
			if !errors.Is(err, ErrInvalidTarget) {
				t.Fatalf("Translate(%q, width %d) = %q, %v; want ErrInvalidTarget", code, width, got, err)
			}
		}
		// fixed-width codes do not depend on the size width
		if got, err := Translate("H", target); err != nil || got != "u16" {
			t.Fatalf("Translate(H, width %d) = %q, %v", width, got, err)
		}
	}
}

func TestPatternByteOrder(t *testing.T) {
	target := Default()
	target.ByteOrder = binary.BigEndian
	cases := map[string]binary.ByteOrder{
		"H":  binary.BigEndian,
		"<H": binary.LittleEndian,
		">H": binary.BigEndian,
	}
	for code, want := range cases {
		p, err := Parse(code, target)
		if err != nil {
			t.Fatalf("Parse(%q): %v", code, err)
		}
		if got := p.ByteOrder(target); got != want {
			t.Fatalf("Parse(%q).ByteOrder = %v, want %v", code, got, want)
		}
	}
}

func TestTargetValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	bad := Default()
	bad.SizeWidth = 2
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for size width 2")
	}
	if _, err := ParseByteOrder("middle"); err == nil {
		t.Fatalf("expected error for unknown byte order")
	}
	if bo, err := ParseByteOrder("BE"); err != nil || bo != binary.BigEndian {
		t.Fatalf("ParseByteOrder(BE) = %v, %v", bo, err)
	}
}
