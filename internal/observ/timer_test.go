package observ

import (
	"strings"
	"testing"
	"time"
)

func TestReportTotals(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("build")
	tm.End(a, "")
	b := tm.Begin("render")
	tm.End(b, "7 lines")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(r.Phases))
	}
	if r.Phases[1].Note != "7 lines" {
		t.Fatalf("note = %q", r.Phases[1].Note)
	}
	sum := r.Phases[0].DurationMS + r.Phases[1].DurationMS
	if r.TotalMS != sum {
		t.Fatalf("total = %v, want %v", r.TotalMS, sum)
	}
}

func TestSummaryAlignsWideNames(t *testing.T) {
	r := Report{
		TotalMS: 3,
		Phases: []PhaseReport{
			{Name: "build", DurationMS: 1},
			{Name: "描画", DurationMS: 2, Note: "wide"},
		},
	}
	lines := strings.Split(strings.TrimSuffix(r.Summary(), "\n"), "\n")
	if lines[0] != "timings:" || len(lines) != 4 {
		t.Fatalf("unexpected summary:\n%s", r.Summary())
	}
	// "描画" is four columns wide, so "build" and "total" are padded to five.
	want := []string{
		"  build    1.00 ms",
		"  描画     2.00 ms  // wide",
		"  total    3.00 ms",
	}
	for i, w := range want {
		if lines[i+1] != w {
			t.Fatalf("line %d = %q, want %q", i+1, lines[i+1], w)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty report = %+v", r)
	}
	if d := NewTimer().End(0, ""); d != time.Duration(0) {
		t.Fatalf("End on empty timer = %v", d)
	}
}
