package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"shady/internal/glsl"
	"shady/internal/version"
)

// Digest identifies one rendering: the program snapshot together with the
// options it is rendered with.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// CacheKey hashes a program snapshot with the render options and the
// generator that renders it: H(generator || snapshot || options). A new
// build of the generator never reads renders made by an older one.
func CacheKey(snapshot []byte, opts glsl.Options) Digest {
	return cacheKey(generatorID(), snapshot, opts)
}

func generatorID() string {
	return fmt.Sprintf("shady %s %s glsl/%d", version.Version, version.GitCommit, glsl.Revision)
}

func cacheKey(generator string, snapshot []byte, opts glsl.Options) Digest {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\x00", generator)
	_, _ = h.Write(snapshot)
	_, _ = fmt.Fprintf(h, "\x00%d|%s|%d|%t|%s", opts.Version, opts.Profile, opts.IndentWidth, opts.UseTabs, opts.Precision)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
