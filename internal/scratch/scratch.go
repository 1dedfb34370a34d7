// Package scratch manages transient files used for inter-process
// handoff with the external diagram renderer. Every pair is uniquely
// named per invocation so concurrent requests never collide, and the
// cleanup function removes both files regardless of how the render
// attempt ended.
package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptySource rejects writing an empty scratch source file.
var ErrEmptySource = errors.New("scratch: source content cannot be empty")

// Pair is a source/output scratch file pair for one render invocation.
// Output does not exist until the external process writes it.
type Pair struct {
	Source string // diagram source path (written)
	Output string // raster output path (claimed, not created)
}

// NewPair writes content to a unique scratch source file and claims a
// sibling output path. The session id namespaces the file names; it is
// sanitized to stay a valid path component. The returned cleanup
// removes both files and must be called on every exit path.
func NewPair(content, sessionID, sourceExt, outputExt string) (pair Pair, cleanup func(), err error) {
	if content == "" {
		return Pair{}, nil, ErrEmptySource
	}

	pattern := "docforge-*." + sourceExt
	if s := sanitizeSession(sessionID); s != "" {
		pattern = "docforge-" + s + "-*." + sourceExt
	}

	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return Pair{}, nil, fmt.Errorf("creating scratch file: %w", err)
	}

	pair.Source = f.Name()
	pair.Output = strings.TrimSuffix(pair.Source, "."+sourceExt) + "." + outputExt
	cleanup = func() {
		_ = os.Remove(pair.Source)
		_ = os.Remove(pair.Output)
	}

	if _, werr := f.WriteString(content); werr != nil {
		_ = f.Close()
		cleanup()
		return Pair{}, nil, fmt.Errorf("writing scratch file: %w", werr)
	}
	if cerr := f.Close(); cerr != nil {
		cleanup()
		return Pair{}, nil, fmt.Errorf("closing scratch file: %w", cerr)
	}

	return pair, cleanup, nil
}

// WriteSidecar writes content next to the pair under the given suffix,
// for auxiliary files handed to the renderer (e.g. a generated process
// configuration). The caller removes it via the returned cleanup.
func WriteSidecar(pair Pair, suffix, content string) (path string, cleanup func(), err error) {
	base := strings.TrimSuffix(pair.Source, filepath.Ext(pair.Source))
	path = base + "-" + suffix

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", nil, fmt.Errorf("writing sidecar file: %w", err)
	}
	return path, func() { _ = os.Remove(path) }, nil
}

// sanitizeSession keeps only characters safe inside a file name.
func sanitizeSession(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	const maxLen = 40
	out := b.String()
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
