package summarize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/gitmate/internal/budget"
	"github.com/dshills/gitmate/internal/partition"
	"github.com/dshills/gitmate/internal/providers"
)

const (
	// defaultWorkers bounds parallel summarization calls so a burst of
	// groups doesn't trip provider rate limits.
	defaultWorkers = 4
	// defaultMaxRounds bounds the reduction loop; past this we truncate
	// instead of looping.
	defaultMaxRounds = 4
)

// failedPlaceholder replaces a group whose summarization call failed. It is
// deterministic so repeated runs degrade identically.
const failedPlaceholder = "(content omitted: summarization failed)"

// Bundle is the budget-compliant context handed to the generation engine.
type Bundle struct {
	// Parts are raw chunk texts or summaries, in original chunk order.
	Parts []string
	// Summarized reports whether any model calls were made.
	Summarized bool
	// Tokens is the estimated total of Parts.
	Tokens int
	// Truncated is set when the bundle had to drop trailing content to fit.
	Truncated bool
	// Warnings lists recoverable degradations (failed groups, truncation).
	Warnings []string
}

// Text joins the bundle parts for prompt embedding.
func (b Bundle) Text() string {
	return strings.Join(b.Parts, "\n")
}

// PromptFunc renders the summarize prompt for one group of chunks.
type PromptFunc func(files []string, text string) (system, user string)

// Reducer shrinks a chunk sequence until it fits the profile's usable budget.
type Reducer struct {
	Invoker providers.Invoker
	Profile budget.Profile
	Prompt  PromptFunc
	// Extract post-processes each summarization response, typically
	// stripping the output tag the prompt asked for. Nil keeps the
	// response as is.
	Extract   func(string) string
	MaxRounds int
	Workers   int
}

// Reduce returns a Bundle whose token estimate fits the usable budget. When
// the chunks already fit, no model call is made. Individual group failures
// are absorbed as placeholders; Reduce only errors on context cancellation.
func (r *Reducer) Reduce(ctx context.Context, chunks []partition.Chunk) (Bundle, error) {
	usable := r.Profile.Usable()
	maxRounds := r.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}

	if total := partition.TotalTokens(chunks); total <= usable {
		return Bundle{Parts: texts(chunks), Tokens: total}, nil
	}

	var warnings []string
	current := chunks
	for round := 0; round < maxRounds; round++ {
		groups := packGroups(current, callCeiling(usable))

		summaries, ws, err := r.mapPhase(ctx, groups)
		if err != nil {
			return Bundle{}, err
		}
		warnings = append(warnings, ws...)
		current = summaries

		if total := partition.TotalTokens(current); total <= usable {
			return Bundle{
				Parts:      texts(current),
				Summarized: true,
				Tokens:     total,
				Warnings:   warnings,
			}, nil
		}
	}

	// Out of rounds: keep leading content, drop the tail, and say so.
	kept, total := truncateToFit(current, usable)
	warnings = append(warnings, fmt.Sprintf("context still over budget after %d reduction rounds; dropped %d trailing section(s)", maxRounds, len(current)-len(kept)))
	return Bundle{
		Parts:      texts(kept),
		Summarized: true,
		Tokens:     total,
		Truncated:  true,
		Warnings:   warnings,
	}, nil
}

// callCeiling is the raw-size limit for one summarization call's input,
// leaving a quarter of the usable budget as headroom for the prompt scaffold.
func callCeiling(usable int) int {
	ceiling := usable * 3 / 4
	if ceiling < 1 {
		ceiling = 1
	}
	return ceiling
}

// packGroups bins chunks greedily in order: a group closes when adding the
// next chunk would push it past ceiling. Hunk-split chunks never share a
// group with other files, so an oversized file is summarized with coherent
// per-file context. Groups keep original order, so the reassembled summaries
// preserve file order.
func packGroups(chunks []partition.Chunk, ceiling int) [][]partition.Chunk {
	var groups [][]partition.Chunk
	var group []partition.Chunk
	groupTokens := 0
	for _, c := range chunks {
		if len(group) > 0 {
			last := group[len(group)-1]
			crossesFile := c.Split != last.Split || (c.Split && c.Path != last.Path)
			if groupTokens+c.Tokens > ceiling || crossesFile {
				groups = append(groups, group)
				group = nil
				groupTokens = 0
			}
		}
		group = append(group, c)
		groupTokens += c.Tokens
	}
	if len(group) > 0 {
		groups = append(groups, group)
	}
	return groups
}

// mapPhase summarizes each group concurrently, bounded by the worker limit,
// and reassembles results in group order. A group whose call fails becomes a
// placeholder chunk rather than aborting the pipeline.
func (r *Reducer) mapPhase(ctx context.Context, groups [][]partition.Chunk) ([]partition.Chunk, []string, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	type result struct {
		text string
		warn string
	}
	results := make([]result, len(groups))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, group := range groups {
		wg.Add(1)
		go func(i int, group []partition.Chunk) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				results[i] = result{text: failedPlaceholder, warn: fmt.Sprintf("group %d: %v", i, ctx.Err())}
				return
			}

			// A summary can't be smaller than the call's output bound
			// guarantees, so a whole-file group already under that bound
			// passes through raw.
			if !group[0].Split && groupTokens(group) <= r.Profile.MaxOutputTokens {
				results[i] = result{text: groupText(group)}
				return
			}

			system, user := r.Prompt(groupFiles(group), groupText(group))
			resp, err := r.Invoker.Invoke(ctx, providers.Request{
				System:  system,
				User:    user,
				Profile: r.Profile,
			})
			if err != nil {
				results[i] = result{text: failedPlaceholder, warn: fmt.Sprintf("group %d summarization failed: %v", i, err)}
				return
			}
			text := resp.Text
			if r.Extract != nil {
				text = r.Extract(text)
			}
			results[i] = result{text: strings.TrimSpace(text)}
		}(i, group)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	summaries := make([]partition.Chunk, len(results))
	var warnings []string
	for i, res := range results {
		if res.warn != "" {
			warnings = append(warnings, res.warn)
		}
		summaries[i] = partition.Chunk{
			Path:    groupPath(groups[i]),
			Ordinal: i,
			Text:    res.text,
			Tokens:  budget.Estimate(res.text),
		}
	}
	return summaries, warnings, nil
}

// truncateToFit keeps the longest leading run of chunks within usable.
// At least one chunk is kept so the caller always has something to show.
func truncateToFit(chunks []partition.Chunk, usable int) ([]partition.Chunk, int) {
	total := 0
	for i, c := range chunks {
		if i > 0 && total+c.Tokens > usable {
			return chunks[:i], total
		}
		total += c.Tokens
	}
	return chunks, total
}

func texts(chunks []partition.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func groupTokens(group []partition.Chunk) int {
	total := 0
	for _, c := range group {
		total += c.Tokens
	}
	return total
}

func groupText(group []partition.Chunk) string {
	var b strings.Builder
	for _, c := range group {
		b.WriteString(c.Text)
	}
	return b.String()
}

func groupFiles(group []partition.Chunk) []string {
	var files []string
	seen := make(map[string]bool)
	for _, c := range group {
		if c.Path != "" && !seen[c.Path] {
			seen[c.Path] = true
			files = append(files, c.Path)
		}
	}
	return files
}

func groupPath(group []partition.Chunk) string {
	files := groupFiles(group)
	if len(files) == 1 {
		return files[0]
	}
	return ""
}
