package meta

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"metabin/internal/hexpat"
	"metabin/internal/pack"
	"metabin/internal/typecode"
)

// Current schema version - increment when Snapshot format changes
const snapshotSchemaVersion uint16 = 1

// SegmentKind tags a snapshot segment.
type SegmentKind uint8

const (
	SegmentStruct SegmentKind = iota + 1
	SegmentFunction
	SegmentLine
)

// Snapshot is the serializable form of a MetaBin.
type Snapshot struct {
	Schema uint16

	Name     string
	Target   TargetSnapshot
	Indent   int
	UseTabs  bool
	Segments []SegmentSnapshot
}

// TargetSnapshot stores a typecode.Target.
type TargetSnapshot struct {
	Name      string
	BigEndian bool
	SizeWidth int
}

// SegmentSnapshot stores one segment; which fields are set depends on Kind.
type SegmentSnapshot struct {
	Kind SegmentKind
	Name string

	// Struct
	Body []StructItemSnapshot `msgpack:",omitempty"`

	// Function
	Params  []Param  `msgpack:",omitempty"`
	Returns string   `msgpack:",omitempty"`
	Lines   []string `msgpack:",omitempty"`

	// Line
	Text string `msgpack:",omitempty"`
	Data []byte `msgpack:",omitempty"`
}

// StructItemSnapshot is a struct body entry: either a record with its chunk
// or a pre-rendered line.
type StructItemSnapshot struct {
	IsLine bool
	Line   string           `msgpack:",omitempty"`
	Record pack.FieldRecord `msgpack:",omitempty"`
	Chunk  []byte           `msgpack:",omitempty"`
	// Tooltip is the value text as rendered when the snapshot was taken.
	// Decoding widens float32 and flattens custom types, so the text is
	// kept rather than re-derived from Record.Value.
	Tooltip string `msgpack:",omitempty"`
}

// Snapshot converts m to its serializable form.
func (m *MetaBin) Snapshot() (*Snapshot, error) {
	target := m.Target()
	snap := &Snapshot{
		Schema:  snapshotSchemaVersion,
		Name:    m.Name,
		Target:  TargetSnapshot{Name: target.Name, BigEndian: target.ByteOrder == binary.BigEndian, SizeWidth: target.SizeWidth},
		Indent:  m.opts.IndentWidth,
		UseTabs: m.opts.UseTabs,
	}
	for i, seg := range m.Segments {
		switch s := seg.(type) {
		case *Struct:
			ss, err := structSnapshot(s)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			snap.Segments = append(snap.Segments, ss)
		case *Function:
			snap.Segments = append(snap.Segments, SegmentSnapshot{
				Kind:    SegmentFunction,
				Name:    s.name,
				Params:  s.params,
				Returns: s.returns,
				Lines:   s.lines,
			})
		case Line:
			snap.Segments = append(snap.Segments, SegmentSnapshot{Kind: SegmentLine, Text: s.Text, Data: s.Data})
		}
	}
	return snap, nil
}

func structSnapshot(s *Struct) (SegmentSnapshot, error) {
	ss := SegmentSnapshot{Kind: SegmentStruct, Name: s.name}
	chunkOf := make(map[int][]byte)
	idx := 0
	err := pack.Pairs(s.fields, func(_ pack.FieldRecord, chunk []byte) error {
		chunkOf[idx] = chunk
		idx++
		return nil
	})
	if err != nil {
		return ss, err
	}
	metas := s.fields.Metas()
	for _, it := range s.body {
		if it.record < 0 {
			ss.Body = append(ss.Body, StructItemSnapshot{IsLine: true, Line: it.line})
			continue
		}
		item := StructItemSnapshot{Record: metas[it.record], Chunk: chunkOf[it.record]}
		if v := item.Record.Value; v != nil && !item.Record.Array {
			item.Tooltip = fmt.Sprint(v)
		}
		ss.Body = append(ss.Body, item)
	}
	return ss, nil
}

// FromSnapshot rebuilds a MetaBin.
func FromSnapshot(snap *Snapshot) (*MetaBin, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d, want %d", snap.Schema, snapshotSchemaVersion)
	}
	target := typecode.Target{Name: snap.Target.Name, ByteOrder: binary.LittleEndian, SizeWidth: snap.Target.SizeWidth}
	if snap.Target.BigEndian {
		target.ByteOrder = binary.BigEndian
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	m := New(target)
	m.Name = snap.Name
	m.SetOptions(hexpat.Options{IndentWidth: snap.Indent, UseTabs: snap.UseTabs})
	for i, ss := range snap.Segments {
		switch ss.Kind {
		case SegmentStruct:
			s := m.NewStruct(ss.Name)
			for _, it := range ss.Body {
				if it.IsLine {
					s.AppendLine(it.Line)
					continue
				}
				if it.Tooltip != "" {
					it.Record.Value = it.Tooltip
				}
				var chunk []byte
				if it.Record.HasBytes() {
					chunk = it.Chunk
					if chunk == nil {
						chunk = []byte{}
					}
				}
				if err := s.Append(it.Record, chunk); err != nil {
					return nil, fmt.Errorf("segment %d: %w", i, err)
				}
			}
			m.AppendStruct(s)
		case SegmentFunction:
			f := NewFunction(ss.Name)
			for _, p := range ss.Params {
				f.AddParam(p.Name, p.Type)
			}
			f.SetReturns(ss.Returns)
			for _, line := range ss.Lines {
				f.AppendLine(line)
			}
			m.AppendFunction(f)
		case SegmentLine:
			m.Segments = append(m.Segments, Line{Text: ss.Text, Data: ss.Data})
		default:
			return nil, fmt.Errorf("segment %d: unknown kind %d", i, ss.Kind)
		}
	}
	return m, nil
}

// EncodeSnapshot writes m to w as msgpack.
func EncodeSnapshot(w io.Writer, m *MetaBin) error {
	snap, err := m.Snapshot()
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(snap)
}

// DecodeSnapshot reads a msgpack snapshot from r.
func DecodeSnapshot(r io.Reader) (*MetaBin, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return FromSnapshot(&snap)
}

// SaveSnapshot atomically writes m to path.
func SaveSnapshot(path string, m *MetaBin) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*.mp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck

	if err := EncodeSnapshot(f, m); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*MetaBin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
