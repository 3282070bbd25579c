package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = origVersion, origNoColor })

	color.NoColor = true
	Version = "1.2.3-rc1"
	if got := Colored(); got != "1.2.3-rc1" {
		t.Fatalf("Colored() without color = %q", got)
	}

	color.NoColor = false
	got := Colored()
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc1") {
		t.Fatalf("Colored() = %q, want escapes and the suffix", got)
	}
	if strings.Count(got, "\x1b[3") != 3 {
		t.Fatalf("Colored() = %q, want three tinted parts", got)
	}
}

func TestColoredLeavesOddVersions(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = origVersion, origNoColor })

	color.NoColor = false
	for _, v := range []string{"dev", "1.2", "1..3", "1.2.3.4"} {
		Version = v
		if got := Colored(); got != v {
			t.Fatalf("Colored(%q) = %q", v, got)
		}
	}
}
