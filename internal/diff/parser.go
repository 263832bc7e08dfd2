package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// hunkHeaderPattern decodes "@@ -a[,b] +c[,d] @@"; omitted counts default to 1.
var hunkHeaderPattern = regexp.MustCompile(`@@\s*-(\d+)(?:,(\d+))?\s*\+(\d+)(?:,(\d+))?\s*@@`)

// fileMarkerLen is the width of the "--- " / "+++ " markers.
const fileMarkerLen = 4

// MalformedHunkHeaderError reports an "@@" line that does not decode as a
// hunk header.
type MalformedHunkHeaderError struct {
	Line string
}

func (e *MalformedHunkHeaderError) Error() string {
	return fmt.Sprintf("malformed hunk header: %q", e.Line)
}

// Parse converts raw patch text, possibly containing several concatenated
// per-file diffs, into an ordered list of patches.
//
// Recognition is line-oriented: "---" opens a new patch (old-file path),
// "+++" sets the current patch's new-file path (/dev/null marks a
// deletion), "@@" opens a new hunk, and lines starting with a space, "+"
// or "-" become changes of the current hunk. Everything else (index lines,
// file modes, mail headers) is ignored.
func Parse(text string) ([]*Patch, error) {
	var (
		patches     []*Patch
		currentFile *Patch
		currentHunk *Hunk
	)

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "---"):
			currentFile = &Patch{OldFile: markerSuffix(line)}
			currentHunk = nil
			patches = append(patches, currentFile)

		case strings.HasPrefix(line, "+++"):
			if currentFile == nil {
				continue
			}
			newFile := markerSuffix(line)
			if newFile == DevNull {
				newFile = ""
			}
			currentFile.NewFile = newFile

		case strings.HasPrefix(line, "@@"):
			if currentFile == nil {
				continue
			}
			hunk, err := parseHunkHeader(line)
			if err != nil {
				return nil, err
			}
			currentFile.Hunks = append(currentFile.Hunks, hunk)
			currentHunk = hunk

		case currentHunk != nil && len(line) > 0 && isChangeMarker(line[0]):
			currentHunk.Changes = append(currentHunk.Changes, Change{
				Type:    ChangeType(line[0]),
				Content: line[1:],
			})
		}
	}

	return patches, nil
}

// markerSuffix returns the trimmed path after a "--- "/"+++ " marker. A bare
// marker line yields an empty path; such patches surface later as
// unresolvable targets rather than failing the parse.
func markerSuffix(line string) string {
	if len(line) <= fileMarkerLen {
		return ""
	}
	return strings.TrimSpace(line[fileMarkerLen:])
}

func isChangeMarker(c byte) bool {
	return c == byte(Context) || c == byte(Addition) || c == byte(Deletion)
}

func parseHunkHeader(line string) (*Hunk, error) {
	match := hunkHeaderPattern.FindStringSubmatch(line)
	if match == nil {
		return nil, &MalformedHunkHeaderError{Line: line}
	}

	return &Hunk{
		OldStart: mustAtoi(match[1]),
		OldCount: countOrDefault(match[2]),
		NewStart: mustAtoi(match[3]),
		NewCount: countOrDefault(match[4]),
	}, nil
}

func countOrDefault(field string) int {
	if field == "" {
		return 1
	}
	return mustAtoi(field)
}

// mustAtoi converts a digits-only regex capture; the pattern guarantees it
// parses.
func mustAtoi(digits string) int {
	n, _ := strconv.Atoi(digits)
	return n
}
