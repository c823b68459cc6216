// Package meta groups recorded fields into the tiers of a pattern document.
//
// A Struct is a named, fixed layout of fields; a Function is a named block of
// pattern-language code used when a value has to be derived rather than read.
// A MetaBin orders structs, functions and bare lines into one document whose
// emission order is the order of its Segments.
//
// Appending a container to a MetaBin hands it over: the document keeps the
// pointer and callers should stop mutating the container for other uses.
// None of the types here are safe for concurrent use.
package meta
