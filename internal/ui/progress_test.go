package ui

import (
	"math"
	"strings"
	"testing"

	"shady/internal/driver"
)

func TestProgressFollowsEvents(t *testing.T) {
	m := NewProgressModel("demo", []string{"gradient", "loops"}, nil).(*progressModel)

	m.Update(eventMsg{Unit: "gradient", Name: "render", Status: driver.PhaseStart})
	m.Update(eventMsg{Unit: "loops", Status: driver.UnitDone})
	m.Update(eventMsg{Unit: "unknown", Name: "build", Status: driver.PhaseStart})

	if got := m.items[0].status; got != "rendering" {
		t.Fatalf("gradient status = %q", got)
	}
	if got := m.items[1].status; got != "done" {
		t.Fatalf("loops status = %q", got)
	}
	if f := m.fraction(); math.Abs(f-0.9) > 1e-9 {
		t.Fatalf("fraction = %v, want 0.9", f)
	}

	m.Update(eventMsg{Unit: "gradient", Status: driver.UnitFailed})
	m.Update(doneMsg{})
	view := m.View()
	for _, want := range []string{"done: demo", "error", "gradient", "loops"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"gradient", 20, "gradient"},
		{"gradient", 6, "gra..."},
		{"gradient", 2, "gr"},
		{"gradient", 8, "gradient"},
		{"描画シェーダ", 7, "描画..."},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.width); got != c.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", c.in, c.width, got, c.want)
		}
	}
}
