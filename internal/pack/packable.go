// Package pack records a symbolic description of every value it packs, so
// that the resulting bytes and their pattern-language declarations stay in
// lock-step.
package pack

import (
	"bytes"
	"fmt"
	"strconv"

	"metabin/internal/trace"
	"metabin/internal/typecode"
)

// Source is anything whose fields can be appended to a Packable.
type Source interface {
	Chunks() [][]byte
	Metas() []FieldRecord
}

// Named is implemented by containers that form their own output tier.
// A Named Source cannot be appended to a Packable.
type Named interface {
	Name() string
}

// Packable pairs packed bytes with the records that describe them.
//
// Every record without a count and without a packing failure owns exactly
// one chunk, in the same order. Array records only describe layout.
//
// A Packable is not safe for concurrent use; callers that share one across
// goroutines must serialize access themselves.
type Packable struct {
	chunks [][]byte
	metas  []FieldRecord

	// BadKeys and Exceptions are for the caller's own debugging notes.
	// Pack never writes to them.
	BadKeys    []any
	Exceptions []error

	target    typecode.Target
	hasTarget bool
	tracer    trace.Tracer
}

// New returns an empty Packable for target.
func New(target typecode.Target) *Packable {
	return &Packable{target: target, hasTarget: true}
}

// Option adjusts a record before it is stored.
type Option func(*FieldRecord)

// WithCount declares an array of n elements. No value is packed.
func WithCount(n int) Option {
	return func(r *FieldRecord) {
		r.Array = true
		r.Count = n
	}
}

// WithContext labels the call site for error messages.
func WithContext(label string) Option {
	return func(r *FieldRecord) {
		r.Context = label
	}
}

// Target returns the target used for encoding; the zero Packable uses
// typecode.Default().
func (p *Packable) Target() typecode.Target {
	if !p.hasTarget {
		return typecode.Default()
	}
	return p.target
}

// SetTracer attaches a tracer. A nil tracer disables tracing.
func (p *Packable) SetTracer(t trace.Tracer) {
	p.tracer = t
}

func (p *Packable) tr() trace.Tracer {
	if p.tracer == nil {
		return trace.Nop
	}
	return p.tracer
}

// Pack records a field and, unless it is an array, appends the bytes of
// value encoded under pattern.
//
// An invalid pattern is rejected before anything is recorded. Once the
// pattern is valid the record is always kept, even when value cannot be
// packed; in that case a *PackError is returned and no bytes are added.
func (p *Packable) Pack(pattern string, value any, name string, opts ...Option) error {
	target := p.Target()
	pat, err := typecode.Parse(pattern, target)
	if err != nil {
		trace.Point(p.tr(), trace.ScopeError, "field:"+name, err.Error(), 0)
		return fmt.Errorf("pack %s: %w", name, err)
	}

	rec := FieldRecord{Pattern: pattern, Name: name, Value: value}
	for _, opt := range opts {
		opt(&rec)
	}
	if rec.Array && rec.Count < 0 {
		return &PackError{
			Pattern: pattern,
			Name:    name,
			Context: rec.Context,
			Err:     fmt.Errorf("negative count %d", rec.Count),
		}
	}

	p.metas = append(p.metas, rec)
	if rec.Array {
		trace.Point(p.tr(), trace.ScopeField, "field:"+name, pat.Tokens()+"["+strconv.Itoa(rec.Count)+"]", 0)
		return nil
	}

	chunk, err := encode(pat, pat.ByteOrder(target), value)
	if err != nil {
		p.metas[len(p.metas)-1].Failed = true
		perr := &PackError{
			Pattern: pattern,
			Name:    name,
			Context: rec.Context,
			Value:   value,
			Err:     err,
		}
		trace.Point(p.tr(), trace.ScopeError, "field:"+name, perr.Error(), 0)
		return perr
	}
	p.chunks = append(p.chunks, chunk)
	trace.Point(p.tr(), trace.ScopeField, "field:"+name, pat.Tokens(), 0)
	return nil
}

// Append moves the chunks and records of src onto the end of p. Named
// sources are rejected with ErrNamingConflict and p is left unchanged.
func (p *Packable) Append(src Source) error {
	if IsNil(src) {
		return nil
	}
	if named, ok := src.(Named); ok {
		err := &NamingError{Name: named.Name()}
		trace.Point(p.tr(), trace.ScopeError, "append", err.Error(), 0)
		return err
	}
	p.chunks = append(p.chunks, src.Chunks()...)
	p.metas = append(p.metas, src.Metas()...)
	if other, ok := src.(*Packable); ok {
		p.BadKeys = append(p.BadKeys, other.BadKeys...)
		p.Exceptions = append(p.Exceptions, other.Exceptions...)
	}
	return nil
}

// IsNil reports whether src is nil or a nil *Packable. Appending either is
// a no-op.
func IsNil(src Source) bool {
	if src == nil {
		return true
	}
	p, ok := src.(*Packable)
	return ok && p == nil
}

// Chunks returns the packed chunks in order. The slice is shared with p and
// must not be modified.
func (p *Packable) Chunks() [][]byte {
	return p.chunks
}

// Metas returns the field records in order. The slice is shared with p and
// must not be modified.
func (p *Packable) Metas() []FieldRecord {
	return p.metas
}

// Len returns the number of records.
func (p *Packable) Len() int {
	return len(p.metas)
}

// Data returns the concatenation of all chunks.
func (p *Packable) Data() []byte {
	return bytes.Join(p.chunks, nil)
}

// Lines renders every record, in order.
func (p *Packable) Lines() ([]string, error) {
	target := p.Target()
	lines := make([]string, 0, len(p.metas))
	for _, rec := range p.metas {
		line, err := RenderField(rec, target)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Pairs calls fn for each record with its chunk; chunk is nil for records
// that have no bytes. It stops at the first error returned by fn.
func Pairs(src Source, fn func(rec FieldRecord, chunk []byte) error) error {
	chunks := src.Chunks()
	next := 0
	for _, rec := range src.Metas() {
		var chunk []byte
		if rec.HasBytes() {
			if next >= len(chunks) {
				return fmt.Errorf("record %s has no chunk (%d chunks)", rec.Name, len(chunks))
			}
			chunk = chunks[next]
			next++
		}
		if err := fn(rec, chunk); err != nil {
			return err
		}
	}
	if next != len(chunks) {
		return fmt.Errorf("%d chunks have no record", len(chunks)-next)
	}
	return nil
}
