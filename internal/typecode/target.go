package typecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Target describes the platform a packed payload is meant for.
//
// Only two properties matter for packing: the byte order used when a code has
// no endianness marker, and the width of the s/S size aliases.
type Target struct {
	Name      string           // e.g. "x86_64-linux-gnu"
	ByteOrder binary.ByteOrder // order for codes without '<' or '>'
	SizeWidth int              // bytes, 4 or 8
}

// Default returns the target whose size aliases are 32 bits wide and whose
// unmarked codes are little endian.
func Default() Target {
	return Target{
		Name:      "ilp32-le",
		ByteOrder: binary.LittleEndian,
		SizeWidth: 4,
	}
}

func X86_64LinuxGNU() Target {
	return Target{
		Name:      "x86_64-linux-gnu",
		ByteOrder: binary.LittleEndian,
		SizeWidth: 8,
	}
}

// Validate reports whether the target can be used for packing.
func (t Target) Validate() error {
	if t.ByteOrder == nil {
		return fmt.Errorf("target %q: missing byte order", t.Name)
	}
	switch t.SizeWidth {
	case 4, 8:
		return nil
	default:
		return fmt.Errorf("target %q: size width must be 4 or 8 bytes, got %d", t.Name, t.SizeWidth)
	}
}

// ParseByteOrder converts "little"/"le" or "big"/"be" to a byte order.
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "little", "le", "":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("invalid byte order: %q (expected: little|big)", s)
	}
}
