package diagnose

import (
	"regexp"
	"strings"
)

// #region markers

const (
	baselineMarker  = "< "
	candidateMarker = "> "
	sideSeparator   = "\n---\n"
)

// hunkHeader matches normal-format diff range lines such as "3c3" or "5,7d4".
var hunkHeader = regexp.MustCompile(`(^|\n)[0-9]+.*\n`)

// #endregion markers

// #region hunk

// Hunk is one contiguous divergent block of a two-file diff. Each side keeps
// its "< " or "> " line markers.
type Hunk struct {
	Baseline  string
	Candidate string
}

// SplitHunks cuts raw diff output into hunk blocks, dropping the range
// header lines and any empty or whitespace-only fragments.
func SplitHunks(raw string) []string {
	var blocks []string
	for _, b := range hunkHeader.Split(raw, -1) {
		if strings.TrimSpace(b) == "" {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// ParseHunk separates a hunk block into its baseline and candidate sides.
// Pure additions or deletions have no separator; the block then belongs to
// the side named by its leading marker.
func ParseHunk(block string) Hunk {
	parts := strings.Split(block, sideSeparator)
	if len(parts) == 1 {
		var h Hunk
		if strings.HasPrefix(block, baselineMarker) {
			h.Baseline = block
		}
		if strings.HasPrefix(block, candidateMarker) {
			h.Candidate = block
		}
		return h
	}
	return Hunk{Baseline: parts[0], Candidate: parts[1]}
}

// #endregion hunk

// #region side-helpers

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// valueAfterColon returns the logged value of a "name: value" line, i.e. the
// text between the first and second ": " separators.
func valueAfterColon(side string) string {
	parts := strings.Split(side, ": ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// methodName extracts "bar" from "< done_foo.bar(1)".
func methodName(side string) string {
	_, after, ok := strings.Cut(firstLine(side), ".")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(after, "(")
	return strings.TrimSpace(name)
}

// callbackName extracts the callback name following prefix on the first line.
func callbackName(side, prefix string) string {
	return strings.TrimSpace(firstLine(strings.TrimPrefix(side, prefix)))
}

// isFunctionLiteral reports whether a logged value is source text of a
// class, function or arrow function rather than a plain value.
func isFunctionLiteral(value string) bool {
	for _, p := range []string{"class ", "function ", "async ", "("} {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// #endregion side-helpers
