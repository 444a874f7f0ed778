package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gitmate/internal/archive"
	"github.com/dshills/gitmate/internal/config"
	"github.com/dshills/gitmate/internal/generate"
	"github.com/dshills/gitmate/internal/gitctx"
	"github.com/dshills/gitmate/internal/output"
	"github.com/dshills/gitmate/internal/redact"
	"github.com/dshills/gitmate/internal/refine"
	"github.com/dshills/gitmate/internal/summarize"
)

var (
	commitAll    bool
	commitModel  string
	commitDryRun bool
	commitYes    bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate a commit message for staged changes and commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := output.Stdout()
		errs := output.Stderr()

		if !gitctx.IsRepo() {
			fail(errs, fmt.Errorf("not inside a git repository"))
			return nil
		}
		if commitAll {
			if err := gitctx.StageTracked(); err != nil {
				fail(errs, err)
				return nil
			}
		}

		eng, _, err := buildEngine(commitModel)
		if err != nil {
			fail(errs, err)
			return nil
		}

		staged, err := gitctx.Staged(ignorePatterns())
		if err != nil {
			fail(errs, err)
			return nil
		}
		if strings.TrimSpace(staged.Diff) == "" {
			out.Plain("nothing staged; use -a to stage tracked changes first")
			return nil
		}
		staged.Diff = redact.Diff(staged.Diff)

		errs.Dim("generating commit message for %d file(s)...", len(staged.Files))
		art, err := eng.CommitMessage(ctx, staged.Diff, staged.Files)
		if err != nil {
			fail(errs, err)
			return nil
		}
		printBundleWarnings(errs, art.Bundle)

		if commitDryRun {
			out.Box(art.Text)
			return nil
		}
		if commitYes {
			commitAndArchive(out, errs, art.Text)
			return nil
		}

		final, ok := refineLoop(cmd, out, errs, eng, art.Text, staged)
		if !ok {
			out.Plain("aborted; nothing committed")
			return nil
		}
		commitAndArchive(out, errs, final)
		return nil
	},
}

// refineLoop runs the interactive revision menu and returns the final text.
// ok is false when the user quit without accepting.
func refineLoop(cmd *cobra.Command, out, errs *output.Printer, eng *generate.Engine, draft string, staged gitctx.StagedChanges) (string, bool) {
	ctx := cmd.Context()
	revise := func(rctx context.Context, current, feedback string) (string, error) {
		return eng.Refine(rctx, current, feedback, staged.Diff)
	}
	session := refine.NewSession(draft, revise)
	if err := session.Present(); err != nil {
		errs.Error("%v", err)
		return "", false
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	for !session.State().Terminal() {
		out.Header("Proposed commit message:")
		out.Box(session.Text())
		out.Plain("[a]ccept  [e]dit with feedback  [g]enerate again  [r]evert to first draft  [q]uit")

		choice, err := readLine(reader)
		if err != nil {
			return "", false
		}
		switch strings.ToLower(choice) {
		case "a", "accept", "":
			if err := session.Accept(); err != nil {
				errs.Error("%v", err)
			}
		case "e", "edit":
			out.Plain("feedback:")
			feedback, err := readLine(reader)
			if err != nil || strings.TrimSpace(feedback) == "" {
				continue
			}
			if err := session.Revise(ctx, feedback); err != nil {
				errs.Warn("%v", err)
			}
		case "g", "generate":
			errs.Dim("regenerating...")
			art, err := eng.CommitMessage(ctx, staged.Diff, staged.Files)
			if err != nil {
				errs.Warn("regeneration failed, keeping current text: %v", err)
				continue
			}
			printBundleWarnings(errs, art.Bundle)
			session = refine.NewSession(art.Text, revise)
			if err := session.Present(); err != nil {
				errs.Error("%v", err)
				return "", false
			}
		case "r", "revert":
			if err := session.Revert(); err != nil {
				errs.Error("%v", err)
			}
		case "q", "quit":
			return "", false
		default:
			out.Plain("unknown choice %q", choice)
		}
	}
	return session.Text(), true
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// commitAndArchive commits with the final message and records it in the
// activity archive. Archive failures degrade to a warning so a gap in later
// reports never blocks the commit itself.
func commitAndArchive(out, errs *output.Printer, message string) {
	if err := gitctx.Commit(message); err != nil {
		fail(errs, err)
		return
	}
	out.Success("committed")
	archiveText(errs, "commit", message)
}

// archiveDir resolves the archive directory under the config dir, creating
// it if needed.
func archiveDir() (string, error) {
	base, err := config.Dir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "archive")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}
	return dir, nil
}

// archiveText appends one record for the current project.
func archiveText(errs *output.Printer, kind, text string) {
	dir, err := archiveDir()
	if err != nil {
		errs.Warn("archive unavailable, reports will have a gap: %v", err)
		return
	}
	project, err := gitctx.ProjectName()
	if err != nil {
		errs.Warn("archive skipped: %v", err)
		return
	}
	store := archive.Open(dir, project)
	rec := archive.Record{Author: gitctx.Author(), Kind: kind, Text: text}
	if err := store.Append(rec); err != nil {
		errs.Warn("archive append failed, reports will have a gap: %v", err)
	}
}

// ignorePatterns merges project and user-level .gitmateignore files.
func ignorePatterns() []string {
	dir, err := config.Dir()
	if err != nil {
		dir = ""
	}
	return gitctx.IgnorePatterns(dir)
}

func printBundleWarnings(errs *output.Printer, bundle summarize.Bundle) {
	for _, w := range bundle.Warnings {
		errs.Warn("%s", w)
	}
	if bundle.Truncated {
		errs.Warn("the model saw a truncated view of this change")
	}
}

func init() {
	commitCmd.Flags().BoolVarP(&commitAll, "all", "a", false, "Stage modified tracked files before generating")
	commitCmd.Flags().StringVarP(&commitModel, "model", "m", "", "Override the configured model")
	commitCmd.Flags().BoolVar(&commitDryRun, "dry-run", false, "Print the generated message without committing")
	commitCmd.Flags().BoolVarP(&commitYes, "yes", "y", false, "Commit the first generated message without the revision menu")
}
