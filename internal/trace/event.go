package trace

import "time"

// Kind tells begin, end and instant events apart.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeError     Scope = iota + 1 // failures, emitted at every enabled level
	ScopeDocument                   // document build and emission
	ScopeContainer                  // structs and functions
	ScopeField                      // packed fields
)

var scopeNames = [...]string{
	ScopeError:     "error",
	ScopeDocument:  "document",
	ScopeContainer: "container",
	ScopeField:     "field",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Seq is assigned by the tracer that stores it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64 // zero for points
	ParentID uint64 // zero at the root
	Name     string // "build-files", "struct:Header", "field:magic"
	Detail   string
	Extra    map[string]string
}
