package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shady/internal/glsl"
	"shady/internal/ir"
	"shady/internal/trace"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDiscoverSearchesUpward(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, `
[output]
version = 310
profile = "es"
indent = 2
precision = "mediump"

[build]
storage = "boxed"
jobs = 3

[trace]
level = "phase"
format = "ndjson"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("Path = %q, want %q", cfg.Path, path)
	}

	opts, err := cfg.GLSL()
	if err != nil {
		t.Fatalf("GLSL: %v", err)
	}
	want := glsl.Options{Version: 310, Profile: glsl.ProfileES, IndentWidth: 2, Precision: "mediump"}
	if opts != want {
		t.Fatalf("GLSL = %+v, want %+v", opts, want)
	}
	sess, err := cfg.Session()
	if err != nil || sess.Storage != ir.StorageBoxed {
		t.Fatalf("Session = %+v, %v", sess, err)
	}
	if cfg.Build.Jobs != 3 {
		t.Fatalf("Jobs = %d", cfg.Build.Jobs)
	}
	tc, err := cfg.Tracer()
	if err != nil {
		t.Fatalf("Tracer: %v", err)
	}
	if tc.Level != trace.LevelPhase || tc.Mode != trace.ModeStream || tc.Format != trace.FormatNDJSON {
		t.Fatalf("Tracer = %+v", tc)
	}
}

func TestDefaultsWhenMissing(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != "" {
		t.Skipf("a %s above the temp dir was found: %s", FileName, cfg.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	opts, _ := cfg.GLSL()
	if opts.Profile != glsl.ProfileCore || opts.IndentWidth != 4 {
		t.Fatalf("default GLSL options = %+v", opts)
	}
}

func TestUnknownKeysRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[output]
indnet = 2

[extra]
x = 1
`)
	_, err := Load(path)
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "output.indnet") {
		t.Fatalf("error does not name the key: %v", err)
	}
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"profile": "[output]\nprofile = \"vulkan\"\n",
		"version": "[output]\nprofile = \"es\"\nversion = 450\n",
		"storage": "[build]\nstorage = \"mmap\"\n",
		"jobs":    "[build]\njobs = -1\n",
		"level":   "[trace]\nlevel = \"loud\"\n",
		"syntax":  "[output\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, t.TempDir(), body)); err == nil {
				t.Fatalf("accepted %q", body)
			}
		})
	}
}
