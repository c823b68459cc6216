package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	if err := tm.Measure("load", func() error { return nil }); err != nil {
		t.Fatalf("Measure: %v", err)
	}
	boom := errors.New("boom")
	if err := tm.Measure("pack", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Measure err = %v", err)
	}
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.Phases[0].Name != "load" || r.Phases[0].DurationMS != 2 {
		t.Errorf("load = %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "failed" {
		t.Errorf("pack note = %q", r.Phases[1].Note)
	}
	if r.TotalMS != 4 {
		t.Errorf("total = %v", r.TotalMS)
	}

	sum := r.Summary("fw")
	if !strings.HasPrefix(sum, "timings fw:\n") || !strings.Contains(sum, "// failed") {
		t.Errorf("summary:\n%s", sum)
	}
}

func TestEmptyReport(t *testing.T) {
	var tm *Timer
	if r := tm.Report(); r.TotalMS != 0 || len(r.Phases) != 0 {
		t.Fatalf("nil timer report = %+v", r)
	}
}
