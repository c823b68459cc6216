package typecode

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTypeCode marks a letter or marker outside the table.
	ErrUnknownTypeCode = errors.New("unknown type code")
	// ErrUnsupportedPattern marks a multi-part code that is not decomposed.
	ErrUnsupportedPattern = errors.New("unsupported pattern")
	// ErrInvalidTarget marks a size alias resolved against a target without
	// a usable size width.
	ErrInvalidTarget = errors.New("invalid target")
)

// CodeErrorKind enumerates the ways a type code can be rejected.
type CodeErrorKind uint8

const (
	CodeErrUnknown CodeErrorKind = iota + 1
	CodeErrUnsupported
	CodeErrTarget
)

// CodeError is returned by Parse and Translate.
type CodeError struct {
	Kind CodeErrorKind
	Code string // the full code as given
	Part byte   // offending character for CodeErrUnknown
	// Width is the target size width for CodeErrTarget.
	Width int
}

func (e *CodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case CodeErrUnknown:
		return fmt.Sprintf("unknown type code %q in %q", e.Part, e.Code)
	case CodeErrUnsupported:
		return fmt.Sprintf("converting multi-part codes is not supported (failed on %q); use a count instead", e.Code)
	case CodeErrTarget:
		return fmt.Sprintf("size code %q needs a target size width of 4 or 8 bytes, got %d", e.Code, e.Width)
	default:
		return fmt.Sprintf("type code error kind=%d code=%q", e.Kind, e.Code)
	}
}

func (e *CodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case CodeErrUnknown:
		return ErrUnknownTypeCode
	case CodeErrUnsupported:
		return ErrUnsupportedPattern
	case CodeErrTarget:
		return ErrInvalidTarget
	}
	return nil
}
