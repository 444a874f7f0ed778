package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Template is one prompt template: a system prompt and a user prompt with
// {placeholder} slots.
type Template struct {
	System string `toml:"system"`
	User   string `toml:"user"`
}

// Fill substitutes {key} placeholders in both prompts.
func (t Template) Fill(vars map[string]string) (system, user string) {
	system, user = t.System, t.User
	for key, val := range vars {
		ph := "{" + key + "}"
		system = strings.ReplaceAll(system, ph, val)
		user = strings.ReplaceAll(user, ph, val)
	}
	return system, user
}

// LoadTemplate reads the named template from the prompts directory, falling
// back to the built-in default when no file exists. Unknown names error.
func LoadTemplate(name string) (Template, error) {
	builtin, ok := builtinTemplates[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown prompt template %q", name)
	}
	dir, err := Dir()
	if err != nil {
		return builtin, nil
	}
	path := filepath.Join(dir, "prompts", name+".toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return builtin, nil
		}
		return Template{}, fmt.Errorf("reading prompt template %s: %w", path, err)
	}
	var t Template
	if err := toml.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("parsing prompt template %s: %w", path, err)
	}
	if t.User == "" {
		return Template{}, fmt.Errorf("prompt template %s has no user prompt", path)
	}
	return t, nil
}

// WriteDefaultPrompts writes every built-in template into the prompts
// directory, skipping files that already exist, and returns the directory.
func WriteDefaultPrompts() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	promptsDir := filepath.Join(dir, "prompts")
	if err := os.MkdirAll(promptsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating prompts directory: %w", err)
	}
	for name, t := range builtinTemplates {
		path := filepath.Join(promptsDir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return "", fmt.Errorf("creating prompt template %s: %w", path, err)
		}
		err = toml.NewEncoder(f).Encode(t)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("writing prompt template %s: %w", path, err)
		}
	}
	return promptsDir, nil
}

var builtinTemplates = map[string]Template{
	"commit": {
		System: "You are an expert at writing git commit messages. Your response must contain only the commit message, wrapped in a <commit_message> XML tag, with no markdown fences and no extra explanation. Strictly follow the Conventional Commits specification. Write the message in {language}.",
		User: `Generate a commit message for the following staged changes.

Affected files ({total_files}):
{affected_files}

<rules>
1. The header is "type(scope): subject"; type in English, subject under 50 characters.
2. The body, when present, explains why the change was needed and how it was done.
3. Describe the change directly; avoid filler like "this commit adds".
4. Output only the <commit_message> tag and its contents.
</rules>

<diff_content>
{diff_content}
</diff_content>`,
	},
	"review": {
		System: "You are an expert code reviewer. Analyze a git diff and provide constructive, actionable feedback in Markdown. Focus on correctness, clarity, and best practices. Write the review in {language}.",
		User: `Review the following code changes.

## Git Diff:
` + "```diff\n{diff_content}\n```" + `

## Guidelines:
1. Start with a brief overall assessment.
2. Give per-file feedback with line references where possible, labeled [Logic], [Style], [Best Practice], or [Question].
3. Use Markdown headings per file and bullet points per comment.
4. Be constructive; suggest concrete fixes.`,
	},
	"report": {
		System: "You are a senior engineer writing concise work summaries. Synthesize raw commit messages from multiple projects into a report stakeholders can read. Group related work, name the project each item belongs to, and focus on outcomes. Write the report in {language}.",
		User: `Generate a work summary in Markdown for the period {start_date} to {end_date}.

## Raw commits, grouped by project:
{commits}

## Instructions:
1. Group the work into logical categories (features, fixes, refactoring, ...).
2. Summarize each category in bullets, naming the project per bullet.
3. Rephrase commit messages to describe impact, not mechanics.`,
	},
	"summarize": {
		System: "You are a code change analyst. Summarize the main changes in one block of a larger diff. Respond only with the summary wrapped in a <summary> XML tag. Write in {language}.",
		User: `Summarize the functional changes in this portion of a diff.

<context>
Files in this portion: {chunk_files}
</context>

<diff>
{diff_content}
</diff>

Describe only what changed; do not produce a commit message.`,
	},
	"combine": {
		System: "You are an expert at writing git commit messages from prepared change summaries. Your response must contain only the commit message, wrapped in a <commit_message> XML tag. Strictly follow the Conventional Commits specification. Write in {language}.",
		User: `Write one high-level commit message covering all of the following change summaries.

Affected files ({total_files}):
{affected_files}

<summaries>
{summaries}
</summaries>

<rules>
1. Do not write a changelog; capture the core purpose of the whole change set.
2. Strictly follow Conventional Commits.
3. Output only the <commit_message> tag and its contents.
</rules>`,
	},
	"refine": {
		System: "You are a git commit message assistant. Improve a commit message according to the user's feedback while keeping Conventional Commits format. Respond only with the revised message wrapped in a <commit_message> XML tag. Write in {language}.",
		User: `Current commit message:
{current}

User feedback:
{feedback}

The underlying change:
<diff_content>
{diff_content}
</diff_content>

Revise the commit message according to the feedback. Output only the <commit_message> tag and its contents.`,
	},
}
