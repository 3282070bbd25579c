package glsl

// Writer accumulates generated source and applies indentation at the start of
// every line.
type Writer struct {
	buf         []byte
	indentWidth int
	useTabs     bool
	indentLevel int
	atLineStart bool
}

// NewWriter creates a writer indenting by width spaces, or by tabs.
func NewWriter(width int, tabs bool) *Writer {
	return &Writer{
		buf:         make([]byte, 0, 1024),
		indentWidth: width,
		useTabs:     tabs,
		atLineStart: true,
	}
}

// String returns the accumulated output.
func (w *Writer) String() string {
	return string(w.buf)
}

func (w *Writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	if w.useTabs {
		for range w.indentLevel {
			w.buf = append(w.buf, '\t')
		}
	} else {
		for range w.indentLevel * w.indentWidth {
			w.buf = append(w.buf, ' ')
		}
	}
	w.atLineStart = false
}

// WriteString writes s, indenting first when at the start of a line.
func (w *Writer) WriteString(s string) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf = append(w.buf, s...)
	w.atLineStart = s[len(s)-1] == '\n'
}

// Line writes s followed by a newline.
func (w *Writer) Line(s string) {
	w.WriteString(s)
	w.Newline()
}

// Newline ends the current line.
func (w *Writer) Newline() {
	w.buf = append(w.buf, '\n')
	w.atLineStart = true
}

// BlankLine separates sections with exactly one empty line.
func (w *Writer) BlankLine() {
	n := len(w.buf)
	if n == 0 || n >= 2 && w.buf[n-1] == '\n' && w.buf[n-2] == '\n' {
		return
	}
	if w.buf[n-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.buf = append(w.buf, '\n')
	w.atLineStart = true
}

// IndentPush increases the indentation level.
func (w *Writer) IndentPush() {
	w.indentLevel++
}

// IndentPop decreases the indentation level.
func (w *Writer) IndentPop() {
	if w.indentLevel > 0 {
		w.indentLevel--
	}
}
