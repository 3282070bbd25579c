package glsl

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// namer hands out unique identifiers for one render.
type namer struct {
	used map[string]struct{}
	auto int
}

func newNamer() *namer {
	return &namer{used: make(map[string]struct{})}
}

// reserve claims name verbatim. Reserving the same name twice is allowed.
func (n *namer) reserve(name string) {
	if name != "" {
		n.used[name] = struct{}{}
	}
}

// call returns a unique identifier derived from base.
func (n *namer) call(base string) string {
	name := escapeKeyword(sanitize(base))
	if _, used := n.used[name]; !used {
		n.used[name] = struct{}{}
		return name
	}
	stem := strings.TrimSuffix(name, "_")
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", stem, i)
		if _, used := n.used[candidate]; !used {
			n.used[candidate] = struct{}{}
			return candidate
		}
	}
}

// next returns the next automatic name x0, x1, ... skipping names in use.
func (n *namer) next() string {
	for {
		candidate := fmt.Sprintf("x%d", n.auto)
		n.auto++
		if _, used := n.used[candidate]; !used {
			n.used[candidate] = struct{}{}
			return candidate
		}
	}
}

var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitize turns an arbitrary host string into a GLSL identifier: accents
// are folded, anything outside [A-Za-z0-9_] becomes an underscore, double
// underscores and the gl_ prefix are avoided.
func sanitize(name string) string {
	folded, _, err := transform.String(foldMarks, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	b.Grow(len(folded))
	lastUnderscore := false
	for _, r := range folded {
		ok := r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
		if !ok {
			if lastUnderscore || b.Len() == 0 {
				continue
			}
			b.WriteByte('_')
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	out := strings.TrimRight(b.String(), "_")
	switch {
	case out == "":
		return "v"
	case out[0] >= '0' && out[0] <= '9':
		out = "v" + out
	}
	if strings.HasPrefix(out, "gl_") {
		out = "u" + out
	}
	return out
}
