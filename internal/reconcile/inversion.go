package reconcile

import "github.com/patchforge/patchforge/internal/diff"

// hunkInverted reports whether a recomputed hunk is the exact old/new swap
// of the original: starts and counts both exchanged, on an original hunk
// whose sides actually differ in size (a true insertion-or-deletion shape,
// not a pure content edit).
func hunkInverted(original, recomputed diff.HunkHeaderInfo) bool {
	return recomputed.OldStart == original.NewStart &&
		recomputed.OldLines == original.NewLines &&
		recomputed.NewStart == original.OldStart &&
		recomputed.NewLines == original.OldLines &&
		original.OldLines != original.NewLines
}

// IsInvertedDiff reports whether a recomputed diff is an artifact of the
// remove step: both header lists have the same non-zero length and every
// recomputed hunk is the structural inverse of its original counterpart.
// Such a diff captured the reversal of the intended change rather than a
// genuine update and must be discarded.
func IsInvertedDiff(original, recomputed []diff.HunkHeaderInfo) bool {
	if len(original) == 0 || len(original) != len(recomputed) {
		return false
	}
	for i := range original {
		if !hunkInverted(original[i], recomputed[i]) {
			return false
		}
	}
	return true
}
