package evalorder

import (
	"slices"
	"testing"
)

func TestDetectIsStable(t *testing.T) {
	first := Detect()
	for range 3 {
		if Detect() != first {
			t.Fatalf("Detect changed its answer")
		}
	}
	// Go evaluates call operands left to right.
	if first != LeftToRight {
		t.Fatalf("Detect = %v, want %v", first, LeftToRight)
	}
}

func TestArrangeFor(t *testing.T) {
	in := []string{"c", "b", "a"}
	if got := ArrangeFor(RightToLeft, in); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("RightToLeft arrange = %v", got)
	}
	if got := ArrangeFor(LeftToRight, in); !slices.Equal(got, in) {
		t.Fatalf("LeftToRight arrange = %v", got)
	}
	if in[0] != "c" {
		t.Fatalf("input was modified")
	}
}
