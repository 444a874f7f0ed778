package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gitmate/internal/output"
)

const (
	hookMarkerStart = "# >>> gitmate post-commit hook >>>"
	hookMarkerEnd   = "# <<< gitmate post-commit hook <<<"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git post-commit hook",
	Long: `The post-commit hook runs 'gitmate archive' after every commit, so
commits made without gitmate still appear in reports. Install and uninstall
preserve any unrelated content already in the hook file.`,
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the gitmate post-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output.Stdout()
		errs := output.Stderr()

		hookPath, err := getHookPath()
		if err != nil {
			fail(errs, err)
			return nil
		}

		section := hookScript()
		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			fail(errs, fmt.Errorf("reading hook file: %w", err))
			return nil
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fail(errs, fmt.Errorf("creating hooks directory: %w", err))
			return nil
		}
		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fail(errs, fmt.Errorf("writing hook file: %w", err))
			return nil
		}
		out.Success("installed post-commit hook at %s", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the gitmate post-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output.Stdout()
		errs := output.Stderr()

		hookPath, err := getHookPath()
		if err != nil {
			fail(errs, err)
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				out.Plain("no post-commit hook found")
				return nil
			}
			fail(errs, fmt.Errorf("reading hook file: %w", err))
			return nil
		}

		content := removeHookSection(string(existing))

		// If only a shebang remains, delete the file entirely.
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				fail(errs, fmt.Errorf("removing hook file: %w", err))
				return nil
			}
			out.Success("removed post-commit hook at %s", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fail(errs, fmt.Errorf("writing hook file: %w", err))
			return nil
		}
		out.Success("removed gitmate section from %s", hookPath)
		return nil
	},
}

var hookStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the gitmate post-commit hook is installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output.Stdout()
		errs := output.Stderr()

		hookPath, err := getHookPath()
		if err != nil {
			fail(errs, err)
			return nil
		}
		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				out.Plain("not installed")
				return nil
			}
			fail(errs, fmt.Errorf("reading hook file: %w", err))
			return nil
		}
		if strings.Contains(string(existing), hookMarkerStart) {
			out.Plain("installed at %s", hookPath)
		} else {
			out.Plain("not installed (unrelated post-commit hook exists at %s)", hookPath)
		}
		return nil
	},
}

func getHookPath() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse --git-dir failed)")
	}
	gitDir := strings.TrimSpace(string(out))
	return filepath.Join(gitDir, "hooks", "post-commit"), nil
}

func hookScript() string {
	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString("gitmate archive --quiet || true\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		// No existing gitmate section, append
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookCmd.AddCommand(hookStatusCmd)
}
