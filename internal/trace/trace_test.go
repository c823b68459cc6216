package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeError, false},
		{LevelError, ScopeError, true},
		{LevelError, ScopeDocument, false},
		{LevelPhase, ScopeDocument, true},
		{LevelPhase, ScopeContainer, false},
		{LevelDetail, ScopeContainer, true},
		{LevelDetail, ScopeField, false},
		{LevelDebug, ScopeField, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopeContainer, "struct:Header", 0)
	Point(tr, ScopeField, "field:magic", "", span.ID())
	span.WithExtra("fields", "3").End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ container struct:Header") {
		t.Fatalf("missing begin event:\n%s", out)
	}
	if !strings.Contains(out, "← container struct:Header (ok) {fields=3}") {
		t.Fatalf("missing end event:\n%s", out)
	}
	if strings.Contains(out, "field:magic") {
		t.Fatalf("field event emitted at detail level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeField, "field:version", "u16", 0)

	var got map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got["name"] != "field:version" || got["scope"] != "field" || got["kind"] != "point" {
		t.Fatalf("unexpected event: %v", got)
	}
}

func TestRingTracerWraps(t *testing.T) {
	tr := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(tr, ScopeField, name, "", 0)
	}
	events := tr.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("snapshot = %+v, want [b c]", events)
	}
}

func TestFromContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop tracer")
	}
	ring := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("expected attached tracer")
	}
}

func TestNewOffReturnsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("expected disabled tracer")
	}
}

func TestRingTracerPartial(t *testing.T) {
	tr := NewRingTracer(4, LevelPhase)
	Point(tr, ScopeDocument, "doc", "", 0)
	Point(tr, ScopeField, "dropped", "", 0)

	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(buf.String(), "document doc") || strings.Contains(buf.String(), "dropped") {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestNewModes(t *testing.T) {
	var buf bytes.Buffer
	cases := []struct {
		mode StorageMode
		want string
	}{
		{0, "*trace.StreamTracer"},
		{ModeStream, "*trace.StreamTracer"},
		{ModeRing, "*trace.RingTracer"},
		{ModeBoth, "*trace.MultiTracer"},
	}
	for _, tc := range cases {
		tr, err := New(Config{Level: LevelPhase, Mode: tc.mode, Output: &buf})
		if err != nil {
			t.Fatalf("New(%v): %v", tc.mode, err)
		}
		if got := fmt.Sprintf("%T", tr); got != tc.want {
			t.Errorf("New(%v) = %s, want %s", tc.mode, got, tc.want)
		}
	}
	if _, err := New(Config{Level: LevelPhase, Mode: 9}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if m, err := ParseMode("RING"); err != nil || m != ModeRing {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
}

func TestSpanEndOnce(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	span := Begin(ring, ScopeDocument, "build", 0)
	span.End("")
	span.End("again")
	if n := len(ring.Snapshot()); n != 2 {
		t.Fatalf("events = %d, want 2", n)
	}

	inert := Begin(NewRingTracer(8, LevelError), ScopeDocument, "build", 0)
	if inert.ID() != 0 || inert.WithExtra("k", "v").End("") != 0 {
		t.Fatal("filtered span should be inert")
	}
}
