package diff

import (
	"regexp"
	"strings"
)

const (
	subjectPrefix = "Subject:"

	// maxCandidates bounds how much free text between the "---" delimiter
	// and the first "diff --git" line is considered.
	maxCandidates = 10

	// proseColonThreshold: a colon this far into a line is treated as prose
	// punctuation rather than a "Key: value" header separator.
	proseColonThreshold = 30
)

var (
	// patchMarkerPattern strips "[PATCH]" and "[PATCH n/m]" style markers.
	patchMarkerPattern = regexp.MustCompile(`^\[PATCH[^\]]*\]\s*`)

	// headerLinePattern matches mail/patch header lines such as "From:",
	// "Date:", "Signed-off-by:" and other generic "Key:" or
	// "Key-With-Dashes:" prefixes.
	headerLinePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*:\s`)
)

// ExtractMessage mines a human-readable summary out of patch text.
//
// A non-empty "Subject:" line (with any [PATCH] marker stripped) wins
// immediately. Otherwise free-text lines between the "---" delimiter and
// the first "diff --git" line are collected, skipping known header
// patterns; the first candidate that reads like prose (no colon, or a
// colon past character 30) is returned, falling back to the first
// candidate verbatim, falling back to the empty string.
func ExtractMessage(text string) string {
	lines := strings.Split(text, "\n")

	if subject := findSubject(lines); subject != "" {
		return subject
	}

	candidates := collectCandidates(lines)

	for _, candidate := range candidates {
		colon := strings.Index(candidate, ":")
		if colon < 0 || colon > proseColonThreshold {
			return candidate
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func findSubject(lines []string) string {
	for _, line := range lines {
		if !strings.HasPrefix(line, subjectPrefix) {
			continue
		}
		subject := strings.TrimSpace(line[len(subjectPrefix):])
		subject = patchMarkerPattern.ReplaceAllString(subject, "")
		if subject = strings.TrimSpace(subject); subject != "" {
			return subject
		}
	}
	return ""
}

// collectCandidates gathers free-text lines between the "---" delimiter and
// the first "diff --git" line. Lines before the delimiter belong to the
// header region and are never candidates.
func collectCandidates(lines []string) []string {
	var candidates []string
	inBody := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !inBody {
			if strings.HasPrefix(trimmed, "---") {
				inBody = true
			}
			continue
		}
		if strings.HasPrefix(trimmed, "diff --git") {
			break
		}
		if trimmed == "" {
			continue
		}
		// diff noise is never a message candidate
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "+") ||
			strings.HasPrefix(trimmed, "@@") {
			continue
		}
		if headerLinePattern.MatchString(trimmed) {
			continue
		}

		candidates = append(candidates, trimmed)
		if len(candidates) == maxCandidates {
			break
		}
	}

	return candidates
}
