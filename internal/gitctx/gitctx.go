package gitctx

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// StagedChanges holds the staged diff plus its metadata.
type StagedChanges struct {
	Diff  string
	Files []string
}

// IsRepo reports whether the current directory is inside a git work tree.
func IsRepo() bool {
	out, err := gitOutput("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// ProjectName returns the repository directory name, used as the project
// identifier in the activity archive.
func ProjectName() (string, error) {
	out, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	name := filepath.Base(strings.TrimSpace(out))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("cannot determine project name from %q", out)
	}
	return name, nil
}

// RepoRoot returns the repository's top-level directory.
func RepoRoot() (string, error) {
	out, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Author returns the configured git user name, or "unknown" when unset.
func Author() string {
	out, err := gitOutput("config", "user.name")
	name := strings.TrimSpace(out)
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}

// StageTracked stages all modified tracked files (git add -u).
func StageTracked() error {
	if _, err := gitOutput("add", "-u"); err != nil {
		return fmt.Errorf("git add -u: %w", err)
	}
	return nil
}

// Staged returns the staged diff and the staged file list, with ignore
// patterns already filtered out.
func Staged(ignore []string) (StagedChanges, error) {
	args := []string{"diff", "--staged"}
	args = append(args, excludeArgs(ignore)...)
	diff, err := gitOutput(args...)
	if err != nil {
		return StagedChanges{}, fmt.Errorf("git diff --staged: %w", err)
	}

	args = []string{"diff", "--staged", "--name-only"}
	args = append(args, excludeArgs(ignore)...)
	names, err := gitOutput(args...)
	if err != nil {
		return StagedChanges{}, fmt.Errorf("git diff --staged --name-only: %w", err)
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(names), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return StagedChanges{Diff: diff, Files: files}, nil
}

// Commit runs git commit with the given message.
func Commit(message string) error {
	if _, err := gitOutput("commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

// LastCommitMessage returns the full message of HEAD.
func LastCommitMessage() (string, error) {
	out, err := gitOutput("log", "-1", "--pretty=%B")
	if err != nil {
		return "", fmt.Errorf("git log -1: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ignoreFileName is looked for at the repo root and in the user config dir.
const ignoreFileName = ".gitmateignore"

// IgnorePatterns merges ignore patterns from the repo-level ignore file and
// an optional user-level file. Missing files are fine; malformed lines are
// impossible (patterns are plain pathspecs, one per line, # comments).
func IgnorePatterns(userDir string) []string {
	var patterns []string
	if root, err := RepoRoot(); err == nil {
		patterns = append(patterns, readIgnoreFile(filepath.Join(root, ignoreFileName))...)
	}
	if userDir != "" {
		patterns = append(patterns, readIgnoreFile(filepath.Join(userDir, ignoreFileName))...)
	}
	return patterns
}

func readIgnoreFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// excludeArgs converts ignore patterns to git exclude pathspecs.
func excludeArgs(ignore []string) []string {
	if len(ignore) == 0 {
		return nil
	}
	args := []string{"--"}
	args = append(args, ".")
	for _, p := range ignore {
		args = append(args, ":(exclude)"+p)
	}
	return args
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
