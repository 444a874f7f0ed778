package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gitmate/internal/gitctx"
	"github.com/dshills/gitmate/internal/output"
	"github.com/dshills/gitmate/internal/redact"
)

var reviewModel string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review staged changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := output.Stdout()
		errs := output.Stderr()

		if !gitctx.IsRepo() {
			fail(errs, fmt.Errorf("not inside a git repository"))
			return nil
		}

		eng, _, err := buildEngine(reviewModel)
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
			out.Plain("nothing staged to review")
			return nil
		}
		staged.Diff = redact.Diff(staged.Diff)

		errs.Dim("reviewing %d file(s)...", len(staged.Files))
		art, err := eng.Review(ctx, staged.Diff)
		if err != nil {
			fail(errs, err)
			return nil
		}
		printBundleWarnings(errs, art.Bundle)
		out.Markdown(art.Text)
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVarP(&reviewModel, "model", "m", "", "Override the configured model")
}
