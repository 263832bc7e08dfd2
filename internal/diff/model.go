// Package diff holds the in-memory representation of a unified diff and the
// conversions between that representation and patch text.
package diff

import (
	"errors"
	"strings"
)

// ChangeType classifies a single line of a hunk.
type ChangeType byte

const (
	// Context is an unmodified line present in both file versions.
	Context ChangeType = ' '
	// Addition is a line present only in the new file version.
	Addition ChangeType = '+'
	// Deletion is a line present only in the old file version.
	Deletion ChangeType = '-'
)

// String returns the single-character diff marker for the type.
func (t ChangeType) String() string {
	return string(byte(t))
}

// Change is one line of a hunk: its marker and the line text without the
// marker and without a trailing newline. Only Content may be rewritten
// after parsing (by the surgical upgrader).
type Change struct {
	Type    ChangeType
	Content string
}

// Hunk is one "@@ -a,b +c,d @@" region of a unified diff. Omitted counts in
// the source header default to 1. The counts are never recomputed after
// parsing: the upgrader replaces content, never cardinality.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Changes  []Change
}

// Patch is the per-file unit of a (possibly multi-file) diff: one
// "---"/"+++" pair and its hunks. NewFile is empty when the new side is
// /dev/null, i.e. the patch deletes the file.
type Patch struct {
	OldFile string
	NewFile string
	Hunks   []*Hunk
}

// ErrUnresolvablePath reports that neither side of a patch yields a usable
// target file path.
var ErrUnresolvablePath = errors.New("patch has no resolvable target file path")

// DevNull is the unified-diff marker for a missing file side.
const DevNull = "/dev/null"

// IsDeletion reports whether the patch removes its target file entirely.
func (p *Patch) IsDeletion() bool {
	return p.NewFile == ""
}

// TargetPath resolves the on-disk path the patch refers to, preferring the
// new side and stripping the conventional a/ and b/ prefixes. It fails when
// both sides are absent or /dev/null.
func (p *Patch) TargetPath() (string, error) {
	if path := stripDiffPrefix(p.NewFile, "b/"); path != "" && path != DevNull {
		return path, nil
	}
	if path := stripDiffPrefix(p.OldFile, "a/"); path != "" && path != DevNull {
		return path, nil
	}
	return "", ErrUnresolvablePath
}

func stripDiffPrefix(path, prefix string) string {
	path = strings.TrimSpace(path)
	return strings.TrimPrefix(path, prefix)
}
