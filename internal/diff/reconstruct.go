package diff

import (
	"fmt"
	"strings"
)

// Reconstruct serializes a list of patches back to unified-diff text, the
// inverse of Parse. Hunk headers are rebuilt from the stored numbers (counts
// always explicit) and each change is re-prefixed with its marker. The
// output ends with a trailing newline.
func Reconstruct(patches []*Patch) string {
	var b strings.Builder

	for _, patch := range patches {
		newFile := patch.NewFile
		if newFile == "" {
			newFile = DevNull
		}
		fmt.Fprintf(&b, "--- %s\n", patch.OldFile)
		fmt.Fprintf(&b, "+++ %s\n", newFile)

		for _, hunk := range patch.Hunks {
			fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
				hunk.OldStart, hunk.OldCount, hunk.NewStart, hunk.NewCount)
			for _, change := range hunk.Changes {
				b.WriteString(change.Type.String())
				b.WriteString(change.Content)
				b.WriteByte('\n')
			}
		}
	}

	return b.String()
}
