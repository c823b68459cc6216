package meta

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"metabin/internal/hexpat"
	"metabin/internal/pack"
	"metabin/internal/trace"
	"metabin/internal/typecode"
)

// Segment is one top-level element of a document: *Struct, *Function or Line.
type Segment interface {
	segment()
}

func (*Struct) segment()   {}
func (*Function) segment() {}
func (Line) segment()      {}

// Line is a single top-level declaration. Data holds the bytes it describes,
// if any.
type Line struct {
	Text string
	Data []byte
}

// MetaBin describes one binary: its structs, its functions and the order in
// which everything is emitted.
//
// Structs and Functions index the containers by kind; only Segments decides
// output order.
type MetaBin struct {
	Name      string
	Structs   []*Struct
	Functions []*Function
	Segments  []Segment

	target typecode.Target
	opts   hexpat.Options
	tracer trace.Tracer
}

// New returns an empty document for target.
func New(target typecode.Target) *MetaBin {
	return &MetaBin{target: target}
}

// Target returns the document target.
func (m *MetaBin) Target() typecode.Target {
	if m.target.ByteOrder == nil {
		return typecode.Default()
	}
	return m.target
}

// Options returns the emission options.
func (m *MetaBin) Options() hexpat.Options { return m.opts }

// SetOptions sets indentation used by Emit.
func (m *MetaBin) SetOptions(opt hexpat.Options) { m.opts = opt }

// SetTracer attaches a tracer; nil disables tracing.
func (m *MetaBin) SetTracer(t trace.Tracer) { m.tracer = t }

func (m *MetaBin) tr() trace.Tracer {
	if m.tracer == nil {
		return trace.Nop
	}
	return m.tracer
}

// NewStruct returns an empty struct packed for the document target. The
// struct is not appended.
func (m *MetaBin) NewStruct(name string) *Struct {
	return NewStructFor(name, m.Target())
}

// AppendStruct appends s to Structs and Segments.
func (m *MetaBin) AppendStruct(s *Struct) {
	if s == nil {
		return
	}
	m.Structs = append(m.Structs, s)
	m.Segments = append(m.Segments, s)
	trace.Point(m.tr(), trace.ScopeContainer, "struct:"+s.Name(), strconv.Itoa(len(s.Metas()))+" fields", 0)
}

// AppendFunction appends f to Functions and Segments.
func (m *MetaBin) AppendFunction(f *Function) {
	if f == nil {
		return
	}
	m.Functions = append(m.Functions, f)
	m.Segments = append(m.Segments, f)
	trace.Point(m.tr(), trace.ScopeContainer, "fn:"+f.Name(), strconv.Itoa(len(f.Lines()))+" lines", 0)
}

// AppendLine appends a bare declaration with no bytes.
func (m *MetaBin) AppendLine(text string) {
	m.Segments = append(m.Segments, Line{Text: text})
}

// AppendFields extracts each record of src as its own Line segment, keeping
// the record's bytes with it. Named sources are rejected; append them with
// AppendStruct instead.
func (m *MetaBin) AppendFields(src pack.Source) error {
	if pack.IsNil(src) {
		return nil
	}
	if named, ok := src.(pack.Named); ok {
		return &pack.NamingError{Name: named.Name()}
	}
	target := m.Target()
	var lines []Line
	err := pack.Pairs(src, func(rec pack.FieldRecord, chunk []byte) error {
		text, err := pack.RenderField(rec, target)
		if err != nil {
			return err
		}
		lines = append(lines, Line{Text: text, Data: chunk})
		return nil
	})
	if err != nil {
		return err
	}
	for _, l := range lines {
		m.Segments = append(m.Segments, l)
	}
	return nil
}

// Struct looks up a struct by name.
func (m *MetaBin) Struct(name string) (*Struct, bool) {
	for _, s := range m.Structs {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Function looks up a function by name.
func (m *MetaBin) Function(name string) (*Function, bool) {
	for _, f := range m.Functions {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// Emit writes every segment in order. Blocks are separated from their
// neighbours by a blank line. Emit does not modify m.
func (m *MetaBin) Emit(w *hexpat.Writer) error {
	span := trace.Begin(m.tr(), trace.ScopeDocument, "emit", 0)
	prevBlock := false
	for i, seg := range m.Segments {
		_, isLine := seg.(Line)
		if i > 0 && (prevBlock || !isLine) {
			w.Newline()
			w.WriteByte('\n')
		}
		var err error
		switch s := seg.(type) {
		case *Struct:
			err = s.Emit(w)
		case *Function:
			err = s.Emit(w)
		case Line:
			w.Line(s.Text)
		default:
			err = fmt.Errorf("unknown segment %T", seg)
		}
		if err != nil {
			err = fmt.Errorf("segment %d: %w", i, err)
			trace.Point(m.tr(), trace.ScopeError, "emit", err.Error(), span.ID())
			span.End("failed")
			return err
		}
		prevBlock = !isLine
	}
	span.WithExtra("segments", strconv.Itoa(len(m.Segments))).End("")
	return nil
}

// Pattern returns the whole document as pattern-language text.
func (m *MetaBin) Pattern() (string, error) {
	w := hexpat.NewWriter(m.opts)
	if err := m.Emit(w); err != nil {
		return "", err
	}
	return w.String(), nil
}

// WriteTo writes the pattern text to dst.
func (m *MetaBin) WriteTo(dst io.Writer) (int64, error) {
	w := hexpat.NewWriter(m.opts)
	if err := m.Emit(w); err != nil {
		return 0, err
	}
	n, err := dst.Write(w.Bytes())
	return int64(n), err
}

// Data returns the payload described by the document, in segment order.
func (m *MetaBin) Data() []byte {
	var buf bytes.Buffer
	for _, seg := range m.Segments {
		switch s := seg.(type) {
		case *Struct:
			buf.Write(s.Data())
		case Line:
			buf.Write(s.Data)
		}
	}
	return buf.Bytes()
}
