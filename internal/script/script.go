// Package script builds pattern documents from TOML layout scripts.
//
// A script lists the segments of one binary in order:
//
//	[document]
//	name = "firmware"
//
//	[[segment]]
//	kind = "struct"
//	name = "Header"
//	  [[segment.field]]
//	  type = ">I"
//	  name = "magic"
//	  value = 0xDEADBEEF
//	  [[segment.field]]
//	  type = "B"
//	  name = "payload"
//	  count = 16
//
//	[[segment]]
//	kind = "field"
//	type = "H"
//	name = "version"
//	value = 1000
//
// Segment kinds are "struct", "function", "field" and "line".
package script

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"metabin/internal/hexpat"
	"metabin/internal/meta"
	"metabin/internal/pack"
	"metabin/internal/trace"
	"metabin/internal/typecode"
)

// Script is a decoded layout script.
type Script struct {
	Path     string    `toml:"-"`
	Document Document  `toml:"document"`
	Segments []Segment `toml:"segment"`
}

type Document struct {
	Name string `toml:"name"`
}

// Segment is one [[segment]] entry.
type Segment struct {
	Kind string `toml:"kind"`
	Name string `toml:"name"`

	// struct
	Fields []Field `toml:"field"`

	// function
	Params  []Param  `toml:"param"`
	Returns string   `toml:"returns"`
	Body    []string `toml:"body"`

	// field
	Type  string `toml:"type"`
	Value any    `toml:"value"`
	Count *int   `toml:"count"`

	// line
	Text string `toml:"text"`
}

// Field is one [[segment.field]] entry. Line, when set, is emitted verbatim.
type Field struct {
	Type  string `toml:"type"`
	Name  string `toml:"name"`
	Value any    `toml:"value"`
	Count *int   `toml:"count"`
	Line  string `toml:"line"`
}

type Param struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Load reads and decodes a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Decode parses script text.
func Decode(data string) (*Script, error) {
	var s Script
	md, err := toml.Decode(data, &s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return &s, nil
}

// Name returns the document name, falling back to the file name.
func (s *Script) Name() string {
	if s.Document.Name != "" {
		return s.Document.Name
	}
	if s.Path == "" {
		return "document"
	}
	base := s.Path[strings.LastIndexAny(s.Path, `/\`)+1:]
	return strings.TrimSuffix(base, ".toml")
}

// Build packs every segment into a new document for target. The tracer
// attached to ctx, if any, is attached to the document and its containers.
func (s *Script) Build(ctx context.Context, target typecode.Target, opts hexpat.Options) (*meta.MetaBin, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDocument, "build:"+s.Name(), 0)

	m := meta.New(target)
	m.Name = s.Name()
	m.SetOptions(opts)
	m.SetTracer(tr)

	for i, seg := range s.Segments {
		if err := ctx.Err(); err != nil {
			span.End("canceled")
			return nil, err
		}
		if err := s.buildSegment(m, i, seg, tr); err != nil {
			span.End("failed")
			return nil, fmt.Errorf("%s: segment %d (%s): %w", s.Name(), i, seg.Name, err)
		}
	}
	span.WithExtra("segments", strconv.Itoa(len(m.Segments))).End("")
	return m, nil
}

func (s *Script) label(i int) string {
	return s.Name() + ":segment[" + strconv.Itoa(i) + "]"
}

func (s *Script) buildSegment(m *meta.MetaBin, i int, seg Segment, tr trace.Tracer) error {
	switch seg.Kind {
	case "struct":
		st := m.NewStruct(seg.Name)
		st.SetTracer(tr)
		for _, f := range seg.Fields {
			if f.Line != "" {
				if f.Type != "" {
					return fmt.Errorf("field %s: line and type are exclusive", f.Name)
				}
				st.AppendLine(f.Line)
				continue
			}
			if err := st.Pack(f.Type, f.Value, f.Name, fieldOptions(f.Count, s.label(i))...); err != nil {
				return err
			}
		}
		m.AppendStruct(st)
	case "function":
		fn := meta.NewFunction(seg.Name)
		for _, p := range seg.Params {
			fn.AddParam(p.Name, p.Type)
		}
		fn.SetReturns(seg.Returns)
		for _, line := range seg.Body {
			fn.AppendLine(line)
		}
		m.AppendFunction(fn)
	case "field":
		p := pack.New(m.Target())
		p.SetTracer(tr)
		if err := p.Pack(seg.Type, seg.Value, seg.Name, fieldOptions(seg.Count, s.label(i))...); err != nil {
			return err
		}
		return m.AppendFields(p)
	case "line":
		m.AppendLine(seg.Text)
	default:
		return fmt.Errorf("unknown segment kind %q (expected: struct|function|field|line)", seg.Kind)
	}
	return nil
}

func fieldOptions(count *int, label string) []pack.Option {
	opts := []pack.Option{pack.WithContext(label)}
	if count != nil {
		opts = append(opts, pack.WithCount(*count))
	}
	return opts
}
