package diff

import "strings"

// HunkHeaderInfo is a structural summary of one hunk header. It deliberately
// discards change content: the offset reconciliation workflow compares only
// hunk shapes between an original and a recomputed patch.
type HunkHeaderInfo struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
}

// ParseHunkHeaders extracts the HunkHeaderInfo of every "@@" line in the
// given patch text, in source order. Lines that do not decode fail the call.
func ParseHunkHeaders(text string) ([]HunkHeaderInfo, error) {
	var headers []HunkHeaderInfo

	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, "@@") {
			continue
		}
		hunk, err := parseHunkHeader(line)
		if err != nil {
			return nil, err
		}
		headers = append(headers, HunkHeaderInfo{
			OldStart: hunk.OldStart,
			OldLines: hunk.OldCount,
			NewStart: hunk.NewStart,
			NewLines: hunk.NewCount,
		})
	}

	return headers, nil
}
