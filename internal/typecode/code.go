package typecode

import "encoding/binary"

// Order is the endianness requested by a code.
type Order uint8

const (
	// OrderTarget defers to Target.ByteOrder.
	OrderTarget Order = iota
	OrderBig
	OrderLittle
)

// Pattern is a parsed, validated type code.
type Pattern struct {
	Code      string
	Order     Order
	Primitive Primitive // resolved against the target
}

// Parse validates code and resolves it against target.
//
// A code is either a single primitive letter or an endianness marker
// followed by one letter. Longer codes such as "10s" or "2H" are rejected
// with ErrUnsupportedPattern; callers describe repetition with a count.
func Parse(code string, target Target) (Pattern, error) {
	switch {
	case len(code) == 1:
		prim, ok := Lookup(code[0])
		if !ok {
			return Pattern{}, &CodeError{Kind: CodeErrUnknown, Code: code, Part: code[0]}
		}
		return resolve(code, OrderTarget, prim, target)
	case len(code) == 2 && IsMarker(code[0]):
		prim, ok := Lookup(code[1])
		if !ok {
			return Pattern{}, &CodeError{Kind: CodeErrUnknown, Code: code, Part: code[1]}
		}
		order := OrderLittle
		if code[0] == MarkerBig {
			order = OrderBig
		}
		return resolve(code, order, prim, target)
	default:
		return Pattern{}, &CodeError{Kind: CodeErrUnsupported, Code: code}
	}
}

func resolve(code string, order Order, prim Primitive, target Target) (Pattern, error) {
	if prim.SizeAlias() && target.SizeWidth != 4 && target.SizeWidth != 8 {
		return Pattern{}, &CodeError{Kind: CodeErrTarget, Code: code, Width: target.SizeWidth}
	}
	return Pattern{Code: code, Order: order, Primitive: prim.Resolve(target)}, nil
}

// Translate converts a type code to its annotation tokens, for example
// "H" to "u16" and ">H" to "be u16".
func Translate(code string, target Target) (string, error) {
	p, err := Parse(code, target)
	if err != nil {
		return "", err
	}
	return p.Tokens(), nil
}

// Valid reports whether code parses against target.
func Valid(code string, target Target) bool {
	_, err := Parse(code, target)
	return err == nil
}

// Tokens renders the pattern as annotation tokens joined by a single space.
func (p Pattern) Tokens() string {
	switch p.Order {
	case OrderBig:
		tok, _ := MarkerToken(MarkerBig)
		return tok + " " + p.Primitive.Token
	case OrderLittle:
		tok, _ := MarkerToken(MarkerLittle)
		return tok + " " + p.Primitive.Token
	default:
		return p.Primitive.Token
	}
}

// ByteOrder returns the order used to encode values of this pattern.
func (p Pattern) ByteOrder(target Target) binary.ByteOrder {
	switch p.Order {
	case OrderBig:
		return binary.BigEndian
	case OrderLittle:
		return binary.LittleEndian
	}
	if target.ByteOrder == nil {
		return binary.LittleEndian
	}
	return target.ByteOrder
}

// Width returns the encoded size in bytes.
func (p Pattern) Width() int {
	return p.Primitive.Width
}
