// Package trace provides structured tracing for metabin.
//
// Packing and emission report what they do through a Tracer. Tracing is off
// by default (Nop) and is enabled from the CLI:
//
//	metabin build --trace=- --trace-level=detail layout.toml
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failures (packing errors, naming conflicts)
//   - LevelPhase: Document build and emission boundaries
//   - LevelDetail: Struct and function containers
//   - LevelDebug: Every recorded field
//
// # Scopes
//
//   - ScopeDocument: a whole MetaBin build or emission
//   - ScopeContainer: one struct or function
//   - ScopeField: one recorded field
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeDocument, "build", 0)
//	defer span.End("")
package trace
