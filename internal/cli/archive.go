package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gitmate/internal/gitctx"
	"github.com/dshills/gitmate/internal/output"
)

var archiveQuiet bool

// archiveCmd records the last commit message. It exists for the post-commit
// hook, so commits made without 'gitmate commit' still show up in reports.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Record the last commit message in the activity archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output.Stdout()
		errs := output.Stderr()

		if !gitctx.IsRepo() {
			fail(errs, fmt.Errorf("not inside a git repository"))
			return nil
		}
		message, err := gitctx.LastCommitMessage()
		if err != nil {
			fail(errs, err)
			return nil
		}
		if strings.TrimSpace(message) == "" {
			return nil
		}
		archiveText(errs, "commit", message)
		if !archiveQuiet {
			out.Success("archived last commit message")
		}
		return nil
	},
}

func init() {
	archiveCmd.Flags().BoolVarP(&archiveQuiet, "quiet", "q", false, "Suppress the confirmation line")
}
