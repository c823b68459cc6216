package meta

import (
	"errors"
	"fmt"

	"metabin/internal/hexpat"
	"metabin/internal/pack"
	"metabin/internal/trace"
	"metabin/internal/typecode"
)

// ErrUnnamed is returned when an unnamed container is emitted.
var ErrUnnamed = errors.New("container has no name")

type structItem struct {
	line   string
	record int // index into fields.Metas(); -1 for lines
}

// Struct is a named fixed layout of fields. It keeps the packed bytes of its
// fields so the document payload can be assembled in segment order.
type Struct struct {
	name   string
	fields *pack.Packable
	body   []structItem
}

// NewStruct returns an empty struct for the default target.
func NewStruct(name string) *Struct {
	return NewStructFor(name, typecode.Default())
}

// NewStructFor returns an empty struct whose fields are packed for target.
func NewStructFor(name string, target typecode.Target) *Struct {
	return &Struct{name: name, fields: pack.New(target)}
}

// Name returns the struct name. Having a Name method makes a Struct a
// pack.Named, so it cannot be flattened into a Packable.
func (s *Struct) Name() string { return s.name }

// SetName sets the struct name.
func (s *Struct) SetName(name string) { s.name = name }

// Target returns the target the struct packs for.
func (s *Struct) Target() typecode.Target { return s.fields.Target() }

// SetTracer attaches a tracer to the struct's field packer.
func (s *Struct) SetTracer(t trace.Tracer) { s.fields.SetTracer(t) }

// Pack records a field inside the struct, see pack.Packable.Pack.
func (s *Struct) Pack(pattern string, value any, name string, opts ...pack.Option) error {
	before := s.fields.Len()
	err := s.fields.Pack(pattern, value, name, opts...)
	s.adopt(before)
	return err
}

// Append adds one record and its chunk. chunk must be nil exactly when the
// record has no bytes.
func (s *Struct) Append(rec pack.FieldRecord, chunk []byte) error {
	if rec.HasBytes() != (chunk != nil) {
		return fmt.Errorf("struct %s: record %s and chunk disagree", s.name, rec.Name)
	}
	if _, err := typecode.Parse(rec.Pattern, s.Target()); err != nil {
		return fmt.Errorf("struct %s: %w", s.name, err)
	}
	src := fieldSource{metas: []pack.FieldRecord{rec}}
	if chunk != nil {
		src.chunks = [][]byte{chunk}
	}
	return s.AppendFields(src)
}

// AppendFields adopts every record and chunk of src, in order.
func (s *Struct) AppendFields(src pack.Source) error {
	before := s.fields.Len()
	if err := s.fields.Append(src); err != nil {
		return fmt.Errorf("struct %s: %w", s.name, err)
	}
	s.adopt(before)
	return nil
}

// AppendLine adds a pre-rendered declaration.
func (s *Struct) AppendLine(line string) {
	s.body = append(s.body, structItem{line: line, record: -1})
}

func (s *Struct) adopt(from int) {
	for i := from; i < s.fields.Len(); i++ {
		s.body = append(s.body, structItem{record: i})
	}
}

// Chunks returns the packed chunks of the struct's fields.
func (s *Struct) Chunks() [][]byte { return s.fields.Chunks() }

// Metas returns the struct's field records, without pre-rendered lines.
func (s *Struct) Metas() []pack.FieldRecord { return s.fields.Metas() }

// Data returns the struct's payload.
func (s *Struct) Data() []byte { return s.fields.Data() }

// Lines renders the struct body in order.
func (s *Struct) Lines() ([]string, error) {
	metas := s.fields.Metas()
	target := s.Target()
	lines := make([]string, 0, len(s.body))
	for _, it := range s.body {
		if it.record < 0 {
			lines = append(lines, it.line)
			continue
		}
		line, err := pack.RenderField(metas[it.record], target)
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", s.name, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Emit writes the struct definition:
//
//	struct Name {
//	    <fields>
//	};
func (s *Struct) Emit(w *hexpat.Writer) error {
	if s.name == "" {
		return fmt.Errorf("struct: %w", ErrUnnamed)
	}
	lines, err := s.Lines()
	if err != nil {
		return err
	}
	w.Line("struct " + s.name + " {")
	w.IndentPush()
	for _, line := range lines {
		w.Line(line)
	}
	w.IndentPop()
	w.Line("};")
	return nil
}

type fieldSource struct {
	chunks [][]byte
	metas  []pack.FieldRecord
}

func (f fieldSource) Chunks() [][]byte          { return f.chunks }
func (f fieldSource) Metas() []pack.FieldRecord { return f.metas }
