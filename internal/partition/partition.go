package partition

import (
	"strings"

	"github.com/dshills/gitmate/internal/budget"
)

// Chunk is one independently summarizable slice of a diff.
type Chunk struct {
	Path    string
	Ordinal int
	Text    string
	Tokens  int
	// Split marks a chunk carved out of an oversized file along hunk
	// boundaries. Split chunks of one file are summarized together.
	Split bool
}

// Split partitions a unified diff into chunks. The diff is cut on file
// boundaries first; any single file whose token estimate exceeds limit is cut
// again on hunk boundaries, never inside a hunk. A limit of zero disables the
// hunk pass. Concatenating the returned chunk texts reproduces the input
// exactly, and identical input always yields an identical chunk sequence.
func Split(diff string, limit int) []Chunk {
	sections := splitFiles(diff)
	if len(sections) == 0 {
		return nil
	}

	var chunks []Chunk
	for _, sec := range sections {
		path := pathFromSection(sec)
		est := budget.Estimate(sec)

		if limit <= 0 || est <= limit {
			chunks = append(chunks, Chunk{
				Path:   path,
				Text:   sec,
				Tokens: est,
			})
			continue
		}

		for ordinal, part := range splitHunks(sec, limit) {
			chunks = append(chunks, Chunk{
				Path:    path,
				Ordinal: ordinal,
				Text:    part,
				Tokens:  budget.Estimate(part),
				Split:   true,
			})
		}
	}
	return chunks
}

// TotalTokens sums the token estimates of chunks.
func TotalTokens(chunks []Chunk) int {
	total := 0
	for _, c := range chunks {
		total += c.Tokens
	}
	return total
}

// splitFiles cuts a diff on "diff --git" lines. SplitAfter keeps each line's
// trailing newline so re-joining the sections is byte-exact.
func splitFiles(diff string) []string {
	if strings.TrimSpace(diff) == "" {
		return nil
	}
	var sections []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// splitHunks cuts one file's diff section on "@@" hunk headers, packing
// consecutive hunks together while they stay under limit tokens. The file
// header (everything before the first hunk) travels with the first part.
// A single hunk larger than limit is emitted whole.
func splitHunks(section string, limit int) []string {
	var hunks []string
	var current strings.Builder
	sawHunk := false
	for _, line := range strings.SplitAfter(section, "\n") {
		if strings.HasPrefix(line, "@@") && sawHunk {
			hunks = append(hunks, current.String())
			current.Reset()
		}
		if strings.HasPrefix(line, "@@") {
			sawHunk = true
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	// Greedy re-pack: merge neighbors while the combined estimate fits.
	var parts []string
	var acc strings.Builder
	accTokens := 0
	for _, h := range hunks {
		ht := budget.Estimate(h)
		if acc.Len() > 0 && accTokens+ht > limit {
			parts = append(parts, acc.String())
			acc.Reset()
			accTokens = 0
		}
		acc.WriteString(h)
		accTokens += ht
	}
	if acc.Len() > 0 {
		parts = append(parts, acc.String())
	}
	return parts
}

func pathFromSection(section string) string {
	lines := strings.Split(section, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "+++ b/") {
			return strings.TrimPrefix(line, "+++ b/")
		}
	}
	// Deleted files have "+++ /dev/null"; fall back to the --- side.
	for _, line := range lines {
		if strings.HasPrefix(line, "--- a/") {
			return strings.TrimPrefix(line, "--- a/")
		}
	}
	return ""
}
