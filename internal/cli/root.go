package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/gitmate/internal/config"
	"github.com/dshills/gitmate/internal/generate"
	"github.com/dshills/gitmate/internal/output"
	"github.com/dshills/gitmate/internal/providers"
)

const version = "0.3.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "gitmate",
	Short: "AI assistant for git workflows",
	Long:  "Gitmate generates commit messages, code reviews, and work reports from your git activity using configurable LLM providers.",
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// Run executes the root command under ctx and returns an exit code.
func Run(ctx context.Context) int {
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gitmate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "gitmate version %s\n", version)
	},
}

// fail prints err and sets the exit code matching its class.
func fail(p *output.Printer, err error) {
	p.Error("%v", err)
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		p.Dim("run 'gitmate init' to create a config file")
		exitCode = ExitConfigError
	case providers.IsKind(err, providers.Unauthorized):
		exitCode = ExitConfigError
	default:
		exitCode = ExitRuntimeError
	}
}

// buildEngine loads and validates config, then assembles the generation
// engine for the optional model override.
func buildEngine(modelOverride string) (*generate.Engine, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, config.Config{}, err
	}
	settings, err := cfg.Settings(modelOverride)
	if err != nil {
		return nil, config.Config{}, err
	}
	inv, err := providers.New(settings)
	if err != nil {
		return nil, config.Config{}, err
	}
	profile, err := cfg.Profile(modelOverride)
	if err != nil {
		return nil, config.Config{}, err
	}
	return &generate.Engine{Invoker: inv, Profile: profile, Language: cfg.Language}, cfg, nil
}
