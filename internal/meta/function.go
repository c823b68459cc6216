package meta

import (
	"fmt"
	"strings"

	"metabin/internal/hexpat"
	"metabin/internal/pack"
)

// Param is one function parameter.
type Param struct {
	Name string
	Type string
}

// Function is a named pattern-language function. Its body is made of
// pre-rendered lines.
type Function struct {
	name    string
	params  []Param
	returns string
	lines   []string
}

// NewFunction returns an empty function.
func NewFunction(name string) *Function {
	return &Function{name: name}
}

func (f *Function) Name() string        { return f.name }
func (f *Function) SetName(name string) { f.name = name }
func (f *Function) Params() []Param     { return f.params }
func (f *Function) Returns() string     { return f.returns }
func (f *Function) Lines() []string     { return f.lines }

// AddParam appends a parameter.
func (f *Function) AddParam(name, typ string) {
	f.params = append(f.params, Param{Name: name, Type: typ})
}

// SetReturns sets the return type; empty means no return type.
func (f *Function) SetReturns(typ string) {
	f.returns = typ
}

// AppendLine adds one body line.
func (f *Function) AppendLine(line string) {
	f.lines = append(f.lines, line)
}

// AppendFields renders every record of src into the body.
func (f *Function) AppendFields(src *pack.Packable) error {
	lines, err := src.Lines()
	if err != nil {
		return fmt.Errorf("fn %s: %w", f.name, err)
	}
	f.lines = append(f.lines, lines...)
	return nil
}

// Signature returns the header without the opening brace, e.g.
// "fn checksum(data: u8, length: u32) -> u32".
func (f *Function) Signature() string {
	var sb strings.Builder
	sb.WriteString("fn ")
	sb.WriteString(f.name)
	sb.WriteByte('(')
	for i, p := range f.params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		if p.Type != "" {
			sb.WriteString(": ")
			sb.WriteString(p.Type)
		}
	}
	sb.WriteByte(')')
	if f.returns != "" {
		sb.WriteString(" -> ")
		sb.WriteString(f.returns)
	}
	return sb.String()
}

// Emit writes the function definition.
func (f *Function) Emit(w *hexpat.Writer) error {
	if f.name == "" {
		return fmt.Errorf("fn: %w", ErrUnnamed)
	}
	w.Line(f.Signature() + " {")
	w.IndentPush()
	for _, line := range f.lines {
		w.Line(line)
	}
	w.IndentPop()
	w.Line("}")
	return nil
}
