package typecode

import "strconv"

// Kind classifies a primitive by how its value is encoded.
type Kind uint8

const (
	KindUnsigned Kind = iota + 1
	KindSigned
	KindFloat
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindUnsigned:
		return "unsigned"
	case KindSigned:
		return "signed"
	case KindFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Primitive is one entry of the type-code table.
type Primitive struct {
	Letter byte
	Token  string // empty for size aliases, see Resolve
	Width  int    // bytes; 0 for size aliases
	Kind   Kind
}

// SizeAlias reports whether the primitive takes its width from the target.
func (p Primitive) SizeAlias() bool {
	return p.Width == 0
}

// Resolve fills in the token and width of size aliases for the given target.
func (p Primitive) Resolve(target Target) Primitive {
	if !p.SizeAlias() {
		return p
	}
	p.Width = target.SizeWidth
	prefix := "u"
	if p.Kind == KindSigned {
		prefix = "s"
	}
	p.Token = prefix + strconv.Itoa(p.Width*8)
	return p
}

const (
	MarkerBig    byte = '>'
	MarkerLittle byte = '<'
)

var primitives = map[byte]Primitive{
	'B': {Letter: 'B', Token: "u8", Width: 1, Kind: KindUnsigned},
	'b': {Letter: 'b', Token: "s8", Width: 1, Kind: KindSigned},
	'H': {Letter: 'H', Token: "u16", Width: 2, Kind: KindUnsigned},
	'h': {Letter: 'h', Token: "s16", Width: 2, Kind: KindSigned},
	'I': {Letter: 'I', Token: "u32", Width: 4, Kind: KindUnsigned},
	'i': {Letter: 'i', Token: "s32", Width: 4, Kind: KindSigned},
	'L': {Letter: 'L', Token: "u32", Width: 4, Kind: KindUnsigned},
	'l': {Letter: 'l', Token: "s32", Width: 4, Kind: KindSigned},
	'Q': {Letter: 'Q', Token: "u64", Width: 8, Kind: KindUnsigned},
	'q': {Letter: 'q', Token: "s64", Width: 8, Kind: KindSigned},
	'S': {Letter: 'S', Kind: KindUnsigned},
	's': {Letter: 's', Kind: KindSigned},
	'e': {Letter: 'e', Token: "f16", Width: 2, Kind: KindFloat},
	'f': {Letter: 'f', Token: "f32", Width: 4, Kind: KindFloat},
	'd': {Letter: 'd', Token: "f64", Width: 8, Kind: KindFloat},
}

var markers = map[byte]string{
	MarkerBig:    "be",
	MarkerLittle: "le",
}

// Lookup returns the table entry for a primitive letter.
// The table is never modified after initialization.
func Lookup(letter byte) (Primitive, bool) {
	p, ok := primitives[letter]
	return p, ok
}

// MarkerToken returns the annotation token for an endianness marker.
func MarkerToken(marker byte) (string, bool) {
	tok, ok := markers[marker]
	return tok, ok
}

// IsMarker reports whether c is one of the endianness markers.
func IsMarker(c byte) bool {
	return c == MarkerBig || c == MarkerLittle
}

// Letters returns every primitive letter in table order.
func Letters() []byte {
	return []byte("BbHhIiLlQqSsefd")
}
