package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStreamTracerFiltersByScope(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopeProgram, "render", 0)
	Point(tr, ScopeConstruct, "if", "dropped at phase level", span.ID())
	span.WithExtra("bytes", "12").End("ok")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("construct event leaked at phase level:\n%s", out)
	}
	if !strings.Contains(out, "→ render") || !strings.Contains(out, "← render (ok) {bytes=12}") {
		t.Fatalf("missing span events:\n%s", out)
	}
}

func TestRingTracerKeepsNewest(t *testing.T) {
	tr := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(tr, ScopeNode, name, "", 0)
	}
	events := tr.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected ring contents: %+v", events)
	}
}

func TestNDJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeDriver, "demo", "", 0)
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"name":"demo"`) {
		t.Fatalf("not ndjson: %q", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	tr := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	span := Begin(FromContext(ctx), ScopeDriver, "run", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Fatalf("span id not propagated")
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("ParseLevel accepted an unknown level")
	}
}

// recordBuild emits the spans a build session produces for one program.
func recordBuild(tr Tracer, name string, constructs ...string) {
	build := Begin(tr, ScopeProgram, "build:"+name, 0)
	for _, c := range constructs {
		Begin(tr, ScopeConstruct, c, build.ID()).End("")
	}
	build.End("")
}

func TestRingSummarizesPrograms(t *testing.T) {
	tr := NewRingTracer(64, LevelDetail)
	recordBuild(tr, "gradient", "func")
	recordBuild(tr, "loops", "func", "for", "if", "if", "while")
	Begin(tr, ScopeProgram, "render", 0).End("")

	got := tr.Programs()
	if len(got) != 2 || got[0].Program != "gradient" || got[1].Program != "loops" {
		t.Fatalf("programs = %+v", got)
	}
	if c := got[1].Constructs; c["if"] != 2 || c["for"] != 1 || c["while"] != 1 || c["func"] != 1 {
		t.Fatalf("loops constructs = %v", c)
	}

	var buf bytes.Buffer
	if err := tr.WriteSummary(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "ms for=1 func=1 if=2 while=1\n") {
		t.Fatalf("text summary:\n%s", buf.String())
	}

	buf.Reset()
	if err := tr.WriteSummary(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	first, _, _ := strings.Cut(buf.String(), "\n")
	var line struct {
		Kind       string         `json:"kind"`
		Program    string         `json:"program"`
		Constructs map[string]int `json:"constructs"`
	}
	if err := json.Unmarshal([]byte(first), &line); err != nil {
		t.Fatalf("invalid ndjson %q: %v", first, err)
	}
	if line.Kind != "summary" || line.Program != "gradient" || line.Constructs["func"] != 1 {
		t.Fatalf("ndjson summary = %+v", line)
	}
}

func TestRingDropsConstructsOfEvictedBuilds(t *testing.T) {
	tr := NewRingTracer(3, LevelDetail)
	recordBuild(tr, "early", "if", "for")
	if got := tr.Programs(); len(got) != 0 {
		t.Fatalf("evicted build still summarized: %+v", got)
	}
}

func TestRingModeWritesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	tr, err := New(Config{Level: LevelDetail, Mode: ModeRing, OutputPath: path})
	if err != nil {
		t.Fatal(err)
	}
	recordBuild(tr, "switch", "switch")
	if data, _ := os.ReadFile(path); len(data) != 0 {
		t.Fatalf("ring wrote before Close: %q", data)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"→ build:switch", "→ switch", "# program switch:", "switch=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("ring output lacks %q:\n%s", want, out)
		}
	}
}

func TestBothModeAppendsSummaryToStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	tr, err := New(Config{Level: LevelDetail, Mode: ModeBoth, OutputPath: path})
	if err != nil {
		t.Fatal(err)
	}
	recordBuild(tr, "texture", "func", "if")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if n := strings.Count(out, "→ build:texture"); n != 1 {
		t.Fatalf("build span written %d times:\n%s", n, out)
	}
	if !strings.HasSuffix(out, "func=1 if=1\n") || !strings.Contains(out, "# program texture:") {
		t.Fatalf("summary not appended after the stream:\n%s", out)
	}
}
