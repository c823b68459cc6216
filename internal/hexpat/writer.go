// Package hexpat writes ImHex pattern-language text.
package hexpat

import "strings"

// Options controls block indentation.
type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 4
	}
	return o
}

// Writer accumulates pattern text and indents every line written inside a
// block.
type Writer struct {
	opt         Options
	buf         []byte
	indentLevel int
	atLineStart bool
}

// NewWriter creates a new pattern writer.
func NewWriter(opt Options) *Writer {
	return &Writer{
		opt:         opt.withDefaults(),
		atLineStart: true,
	}
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// String returns the accumulated output as a string.
func (w *Writer) String() string {
	return string(w.buf)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	if w.opt.UseTabs {
		for range w.indentLevel {
			w.buf = append(w.buf, '\t')
		}
	} else {
		for range w.indentLevel * w.opt.IndentWidth {
			w.buf = append(w.buf, ' ')
		}
	}
	w.atLineStart = false
}

// WriteString writes s, indenting each line that starts inside a block.
// Empty lines are left unindented.
func (w *Writer) WriteString(s string) {
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			w.writeIndent()
			w.buf = append(w.buf, s...)
			return
		}
		if i > 0 {
			w.writeIndent()
			w.buf = append(w.buf, s[:i]...)
		}
		w.buf = append(w.buf, '\n')
		w.atLineStart = true
		s = s[i+1:]
	}
}

// WriteByte writes a single byte to the output.
func (w *Writer) WriteByte(b byte) error {
	if b == '\n' {
		w.buf = append(w.buf, b)
		w.atLineStart = true
		return nil
	}
	w.writeIndent()
	w.buf = append(w.buf, b)
	return nil
}

// Line writes s followed by a newline.
func (w *Writer) Line(s string) {
	w.WriteString(s)
	w.Newline()
}

// Newline writes a newline if the output doesn't already end with one.
func (w *Writer) Newline() {
	if len(w.buf) > 0 && w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.atLineStart = true
}

// IndentPush increases the indentation level.
func (w *Writer) IndentPush() {
	w.indentLevel++
}

// IndentPop decreases the indentation level.
func (w *Writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}
