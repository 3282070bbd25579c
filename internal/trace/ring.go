package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// RingTracer keeps the last N events in memory (circular buffer). With a
// sink attached it writes them out on Close, followed by one summary line per
// program build found in the buffer.
type RingTracer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level

	sink        io.Writer
	format      Format
	withEvents  bool
	sinkWritten bool
}

// NewRingTracer creates a new RingTracer with specified capacity.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}

	return &RingTracer{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
	}
}

// DumpOnClose makes Close write to w: the buffered events when events is
// set, then the program summaries. w is closed afterwards when it is an
// io.Closer.
func (t *RingTracer) DumpOnClose(w io.Writer, format Format, events bool) *RingTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = w
	t.format = format
	t.withEvents = events
	return t
}

// Emit adds an event to the ring buffer.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}
	t.events[t.head] = stored
	t.head = (t.head + 1) % t.capacity

	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		result := make([]Event, t.head)
		copy(result, t.events[:t.head])
		return result
	}

	result := make([]Event, t.capacity)
	copy(result, t.events[t.head:])
	copy(result[t.capacity-t.head:], t.events[:t.head])
	return result
}

// Dump writes all events to the provided writer in the specified format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()

	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

// ProgramSummary describes one program build recorded in the buffer.
type ProgramSummary struct {
	Program string
	// Elapsed is zero while the build span is still open.
	Elapsed time.Duration
	// Constructs counts construct spans (if, for, while, switch, func) opened
	// directly under the build span.
	Constructs map[string]int
}

const buildSpanPrefix = "build:"

// Programs groups the buffered construct spans by the program build that
// opened them, in the order the builds started. Constructs whose build span
// fell out of the buffer are not counted.
func (t *RingTracer) Programs() []ProgramSummary {
	events := t.Snapshot()
	var out []ProgramSummary
	bySpan := make(map[uint64]int)
	started := make(map[uint64]time.Time)
	for i := range events {
		ev := &events[i]
		switch {
		case ev.Scope == ScopeProgram && strings.HasPrefix(ev.Name, buildSpanPrefix):
			switch ev.Kind {
			case KindSpanBegin:
				bySpan[ev.SpanID] = len(out)
				started[ev.SpanID] = ev.Time
				out = append(out, ProgramSummary{
					Program:    strings.TrimPrefix(ev.Name, buildSpanPrefix),
					Constructs: make(map[string]int),
				})
			case KindSpanEnd:
				if idx, ok := bySpan[ev.SpanID]; ok {
					out[idx].Elapsed = ev.Time.Sub(started[ev.SpanID])
				}
			}
		case ev.Scope == ScopeConstruct && ev.Kind == KindSpanBegin:
			if idx, ok := bySpan[ev.ParentID]; ok {
				out[idx].Constructs[ev.Name]++
			}
		}
	}
	return out
}

// WriteSummary writes one line per program build in the buffer.
func (t *RingTracer) WriteSummary(w io.Writer, format Format) error {
	for _, ps := range t.Programs() {
		if _, err := w.Write(formatSummary(ps, format)); err != nil {
			return err
		}
	}
	return nil
}

func formatSummary(ps ProgramSummary, format Format) []byte {
	ms := float64(ps.Elapsed) / float64(time.Millisecond)
	if format == FormatNDJSON {
		data, err := json.Marshal(struct {
			Kind       string         `json:"kind"`
			Program    string         `json:"program"`
			ElapsedMS  float64        `json:"elapsed_ms"`
			Constructs map[string]int `json:"constructs,omitempty"`
		}{"summary", ps.Program, ms, ps.Constructs})
		if err != nil {
			return nil
		}
		return append(data, '\n')
	}

	names := make([]string, 0, len(ps.Constructs))
	for name := range ps.Constructs {
		names = append(names, name)
	}
	sort.Strings(names)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# program %s: %.2f ms", ps.Program, ms)
	for _, name := range names {
		fmt.Fprintf(&sb, " %s=%d", name, ps.Constructs[name])
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

// Flush is a no-op: everything stays in memory until Dump or Close.
func (t *RingTracer) Flush() error { return nil }

// Close writes the buffer to the sink set by DumpOnClose. Later calls do
// nothing.
func (t *RingTracer) Close() error {
	t.mu.Lock()
	sink, format, events := t.sink, t.format, t.withEvents
	if sink == nil || t.sinkWritten {
		t.mu.Unlock()
		return nil
	}
	t.sinkWritten = true
	t.mu.Unlock()

	var err error
	if events {
		err = t.Dump(sink, format)
	}
	if err == nil {
		err = t.WriteSummary(sink, format)
	}
	if closer, ok := sink.(io.Closer); ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
