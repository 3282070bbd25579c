package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shady/internal/evalorder"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if payload.Tool != "shady" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDemoSingleSample(t *testing.T) {
	out, stderr, err := execute(t, "demo", "gradient")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if !strings.HasPrefix(out, "#version 450 core\n") || strings.Contains(out, "// gradient") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(stderr, "gradient (rendered:") {
		t.Fatalf("missing stats line:\n%s", stderr)
	}
}

func TestSnapshotThenRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loops.mp")
	if _, _, err := execute(t, "snapshot", "loops", "-o", path); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file: %v", err)
	}
	rendered, _, err := execute(t, "render", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	direct, _, err := execute(t, "demo", "loops")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if rendered != direct {
		t.Fatalf("snapshot renders differently\nwant:\n%s\n\ngot:\n%s", direct, rendered)
	}
}

func TestEvalOrder(t *testing.T) {
	out, _, err := execute(t, "evalorder")
	if err != nil {
		t.Fatalf("evalorder: %v", err)
	}
	if strings.TrimSpace(out) != evalorder.Detect().String() {
		t.Fatalf("evalorder printed %q", out)
	}
}

func TestInvalidColor(t *testing.T) {
	if _, _, err := execute(t, "evalorder", "--color", "sometimes"); err == nil {
		t.Fatal("accepted an invalid --color value")
	}
	// Reset the persistent flag for later tests.
	if err := rootCmd.PersistentFlags().Set("color", "off"); err != nil {
		t.Fatal(err)
	}
}

func TestRingTraceWrittenOnTeardown(t *testing.T) {
	t.Cleanup(func() {
		flags := rootCmd.PersistentFlags()
		for name, value := range map[string]string{"trace": "", "trace-level": "off", "trace-mode": "stream"} {
			if err := flags.Set(name, value); err != nil {
				t.Fatal(err)
			}
		}
	})

	path := filepath.Join(t.TempDir(), "trace.log")
	_, _, err := execute(t, "--trace", path, "--trace-level", "detail", "--trace-mode", "ring", "demo", "loops")
	teardown(rootCmd)
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"compile:loops", "build:loops", "→ for", "# program loops:", "while=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace lacks %q:\n%s", want, out)
		}
	}
}
