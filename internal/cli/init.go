package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/gitmate/internal/config"
	"github.com/dshills/gitmate/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the default config file and prompt templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output.Stdout()
		errs := output.Stderr()

		path, created, err := config.WriteDefault()
		if err != nil {
			fail(errs, err)
			return nil
		}
		if created {
			out.Success("wrote config to %s", path)
			out.Dim("edit it to set your provider and API key")
		} else {
			out.Plain("config already exists at %s", path)
		}

		promptsDir, err := config.WriteDefaultPrompts()
		if err != nil {
			fail(errs, err)
			return nil
		}
		out.Success("prompt templates in %s", promptsDir)
		return nil
	},
}
