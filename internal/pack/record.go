package pack

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"metabin/internal/typecode"
)

// FieldRecord describes one packed or declared field.
type FieldRecord struct {
	Pattern string `msgpack:"pattern"`
	Name    string `msgpack:"name"`
	Value   any    `msgpack:"value,omitempty"`
	// Array marks a layout-only declaration of Count elements. Array
	// records never contribute bytes.
	Array   bool   `msgpack:"array,omitempty"`
	Count   int    `msgpack:"count,omitempty"`
	Context string `msgpack:"context,omitempty"`
	// Failed is set when the value could not be packed.
	Failed bool `msgpack:"failed,omitempty"`
}

// HasBytes reports whether the record is paired with a chunk.
func (r FieldRecord) HasBytes() bool {
	return !r.Array && !r.Failed
}

// RenderField renders a record as one pattern-language declaration:
//
//	<tokens> <name>[<count>] @ "<value>";
//
// The count suffix is present only for arrays, the tooltip only for
// non-array records that carry a value.
func RenderField(rec FieldRecord, target typecode.Target) (string, error) {
	tokens, err := typecode.Translate(rec.Pattern, target)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", rec.Name, err)
	}
	var sb strings.Builder
	sb.WriteString(tokens)
	sb.WriteByte(' ')
	sb.WriteString(rec.Name)
	if rec.Array {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(rec.Count))
		sb.WriteByte(']')
	} else if rec.Value != nil {
		sb.WriteString(` @ "`)
		sb.WriteString(EscapeTooltip(fmt.Sprint(rec.Value)))
		sb.WriteByte('"')
	}
	sb.WriteByte(';')
	return sb.String(), nil
}

var tooltipEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", `\r`, "\n", `\n`)

// EscapeTooltip makes s safe to place between double quotes.
func EscapeTooltip(s string) string {
	return tooltipEscaper.Replace(norm.NFC.String(s))
}
