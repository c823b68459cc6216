package pack

import (
	"errors"
	"fmt"
)

var (
	// ErrPacking marks a value that could not be serialized under its pattern.
	ErrPacking = errors.New("packing error")
	// ErrNamingConflict is returned when a named container is appended to a
	// Packable. A named container is its own tier in the output and must not
	// be flattened.
	ErrNamingConflict = errors.New("a name prevents a packable from being appended")
)

// PackError describes a failed Pack call. The field's record is kept; only
// its bytes are missing.
type PackError struct {
	Pattern string
	Name    string
	Context string // caller-supplied label, may be empty
	Value   any
	Err     error
}

func (e *PackError) Error() string {
	if e == nil {
		return "<nil>"
	}
	where := e.Context
	if where == "" {
		where = "<unknown>"
	}
	return fmt.Sprintf("%v (packing error in %s, name=%s, pattern=%q)", e.Err, where, e.Name, e.Pattern)
}

func (e *PackError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return []error{ErrPacking, e.Err}
}

// NamingError is returned by Append for a named source.
type NamingError struct {
	Name string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("%v: keep %q separate so it can be its own tier in the output", ErrNamingConflict, e.Name)
}

func (e *NamingError) Unwrap() error {
	return ErrNamingConflict
}
