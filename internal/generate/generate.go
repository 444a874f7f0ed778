package generate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dshills/gitmate/internal/archive"
	"github.com/dshills/gitmate/internal/budget"
	"github.com/dshills/gitmate/internal/config"
	"github.com/dshills/gitmate/internal/partition"
	"github.com/dshills/gitmate/internal/providers"
	"github.com/dshills/gitmate/internal/summarize"
)

// TaskKind names a generation task for errors and archive records.
type TaskKind string

const (
	TaskCommit TaskKind = "commit"
	TaskReview TaskKind = "review"
	TaskReport TaskKind = "report"
)

// Artifact is the output of one generation task.
type Artifact struct {
	Kind   TaskKind
	Text   string
	Bundle summarize.Bundle
}

// Error is a generation failure that keeps the context bundle built before
// the failing call, so callers can report how far the pipeline got.
type Error struct {
	Task   TaskKind
	Bundle *summarize.Bundle
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Task, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Engine turns diffs and archive records into commit messages, reviews, and
// reports. Oversized inputs are reduced through the summarizer before the
// final call.
type Engine struct {
	Invoker  providers.Invoker
	Profile  budget.Profile
	Language string
}

func (e *Engine) language() string {
	if e.Language == "" {
		return "English"
	}
	return e.Language
}

// chunkLimit is the per-chunk ceiling for hunk splitting. A quarter of the
// usable budget lets several chunks of one file share a summarization call.
func (e *Engine) chunkLimit() int {
	limit := e.Profile.Usable() / 4
	if limit < 1 {
		limit = 1
	}
	return limit
}

// summaryPrompt renders the summarize template for the reducer.
func (e *Engine) summaryPrompt() (summarize.PromptFunc, error) {
	tmpl, err := config.LoadTemplate("summarize")
	if err != nil {
		return nil, err
	}
	lang := e.language()
	return func(files []string, text string) (string, string) {
		return tmpl.Fill(map[string]string{
			"language":     lang,
			"chunk_files":  strings.Join(files, ", "),
			"diff_content": text,
		})
	}, nil
}

func (e *Engine) reducer(prompt summarize.PromptFunc) *summarize.Reducer {
	return &summarize.Reducer{
		Invoker: e.Invoker,
		Profile: e.Profile,
		Prompt:  prompt,
		Extract: func(text string) string { return ExtractTag(text, "summary") },
	}
}

// buildContext partitions and reduces a diff to a budget-compliant bundle.
func (e *Engine) buildContext(ctx context.Context, diff string) (summarize.Bundle, error) {
	prompt, err := e.summaryPrompt()
	if err != nil {
		return summarize.Bundle{}, err
	}
	chunks := partition.Split(diff, e.chunkLimit())
	reducer := e.reducer(prompt)
	return reducer.Reduce(ctx, chunks)
}

// CommitMessage generates a Conventional Commits message for a staged diff.
// A diff that fits goes through the commit template verbatim; a summarized
// diff goes through the combine template instead.
func (e *Engine) CommitMessage(ctx context.Context, diff string, files []string) (Artifact, error) {
	bundle, err := e.buildContext(ctx, diff)
	if err != nil {
		return Artifact{}, &Error{Task: TaskCommit, Err: err}
	}

	vars := map[string]string{
		"language":       e.language(),
		"total_files":    fmt.Sprintf("%d", len(files)),
		"affected_files": strings.Join(files, "\n"),
	}
	name := "commit"
	if bundle.Summarized {
		name = "combine"
		vars["summaries"] = bundle.Text()
	} else {
		vars["diff_content"] = bundle.Text()
	}
	tmpl, err := config.LoadTemplate(name)
	if err != nil {
		return Artifact{}, &Error{Task: TaskCommit, Bundle: &bundle, Err: err}
	}
	system, user := tmpl.Fill(vars)

	resp, err := e.Invoker.Invoke(ctx, providers.Request{System: system, User: user, Profile: e.Profile})
	if err != nil {
		return Artifact{}, &Error{Task: TaskCommit, Bundle: &bundle, Err: err}
	}
	return Artifact{
		Kind:   TaskCommit,
		Text:   ExtractTag(resp.Text, "commit_message"),
		Bundle: bundle,
	}, nil
}

// Review generates a Markdown code review for a diff.
func (e *Engine) Review(ctx context.Context, diff string) (Artifact, error) {
	bundle, err := e.buildContext(ctx, diff)
	if err != nil {
		return Artifact{}, &Error{Task: TaskReview, Err: err}
	}
	tmpl, err := config.LoadTemplate("review")
	if err != nil {
		return Artifact{}, &Error{Task: TaskReview, Bundle: &bundle, Err: err}
	}
	system, user := tmpl.Fill(map[string]string{
		"language":     e.language(),
		"diff_content": bundle.Text(),
	})
	resp, err := e.Invoker.Invoke(ctx, providers.Request{System: system, User: user, Profile: e.Profile})
	if err != nil {
		return Artifact{}, &Error{Task: TaskReview, Bundle: &bundle, Err: err}
	}
	return Artifact{Kind: TaskReview, Text: strings.TrimSpace(resp.Text), Bundle: bundle}, nil
}

// Report generates a work summary from archived records in [since, until).
// Records are grouped by project; an oversized listing is reduced through the
// summarizer like any other context.
func (e *Engine) Report(ctx context.Context, records []archive.Record, since, until time.Time) (Artifact, error) {
	if len(records) == 0 {
		return Artifact{}, &Error{Task: TaskReport, Err: fmt.Errorf("no archived activity between %s and %s", since.Format("2006-01-02"), until.Format("2006-01-02"))}
	}

	chunks := recordChunks(records)
	prompt, err := e.summaryPrompt()
	if err != nil {
		return Artifact{}, &Error{Task: TaskReport, Err: err}
	}
	bundle, err := e.reducer(prompt).Reduce(ctx, chunks)
	if err != nil {
		return Artifact{}, &Error{Task: TaskReport, Err: err}
	}

	tmpl, err := config.LoadTemplate("report")
	if err != nil {
		return Artifact{}, &Error{Task: TaskReport, Bundle: &bundle, Err: err}
	}
	system, user := tmpl.Fill(map[string]string{
		"language":   e.language(),
		"start_date": since.Format("2006-01-02"),
		"end_date":   until.Add(-time.Second).Format("2006-01-02"),
		"commits":    bundle.Text(),
	})
	resp, err := e.Invoker.Invoke(ctx, providers.Request{System: system, User: user, Profile: e.Profile})
	if err != nil {
		return Artifact{}, &Error{Task: TaskReport, Bundle: &bundle, Err: err}
	}
	return Artifact{Kind: TaskReport, Text: strings.TrimSpace(resp.Text), Bundle: bundle}, nil
}

// Refine revises a commit message according to user feedback.
func (e *Engine) Refine(ctx context.Context, current, feedback, diff string) (string, error) {
	tmpl, err := config.LoadTemplate("refine")
	if err != nil {
		return "", err
	}
	system, user := tmpl.Fill(map[string]string{
		"language":     e.language(),
		"current":      current,
		"feedback":     feedback,
		"diff_content": diff,
	})
	resp, err := e.Invoker.Invoke(ctx, providers.Request{System: system, User: user, Profile: e.Profile})
	if err != nil {
		return "", err
	}
	return ExtractTag(resp.Text, "commit_message"), nil
}

// recordChunks renders archived records into one chunk per project. Each
// chunk is independent prose, so the reducer can summarize projects
// separately when the listing outgrows the budget.
func recordChunks(records []archive.Record) []partition.Chunk {
	byProject := make(map[string][]archive.Record)
	for _, rec := range records {
		byProject[rec.Project] = append(byProject[rec.Project], rec)
	}
	projects := make([]string, 0, len(byProject))
	for p := range byProject {
		projects = append(projects, p)
	}
	sort.Strings(projects)

	chunks := make([]partition.Chunk, 0, len(projects))
	for i, p := range projects {
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n", p)
		for _, rec := range byProject[p] {
			fmt.Fprintf(&b, "- [%s] %s\n", rec.Kind, rec.Text)
		}
		text := b.String()
		chunks = append(chunks, partition.Chunk{
			Path:    p,
			Ordinal: i,
			Text:    text,
			Tokens:  budget.Estimate(text),
		})
	}
	return chunks
}

// ExtractTag returns the content of the first <tag>...</tag> pair, trimmed.
// Models occasionally forget the tag, so a missing pair falls back to the
// whole response trimmed of whitespace and markdown fences.
func ExtractTag(text, tag string) string {
	open, closing := "<"+tag+">", "</"+tag+">"
	start := strings.Index(text, open)
	if start >= 0 {
		rest := text[start+len(open):]
		if end := strings.Index(rest, closing); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	out := strings.TrimSpace(text)
	out = strings.TrimPrefix(out, "```markdown")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
