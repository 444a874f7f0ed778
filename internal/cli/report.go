package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/gitmate/internal/archive"
	"github.com/dshills/gitmate/internal/output"
)

var (
	reportPeriod  string
	reportSince   string
	reportUntil   string
	reportModel   string
	reportProject string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize archived activity over a time range",
	Long: `Report reads the activity archive and generates a work summary for a
time range. Pick the range with --period (today, yesterday, week, month,
quarter, year) or with explicit --since/--until dates (YYYY-MM-DD, until
exclusive). By default all projects are included; --project narrows to one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := output.Stdout()
		errs := output.Stderr()

		since, until, err := reportRange()
		if err != nil {
			fail(errs, err)
			exitCode = ExitUsageError
			return nil
		}

		dir, err := archiveDir()
		if err != nil {
			fail(errs, err)
			return nil
		}
		var records []archive.Record
		var warns []string
		if reportProject != "" {
			records, warns, err = archive.Open(dir, reportProject).ReadRange(since, until)
		} else {
			records, warns, err = archive.ReadRangeAll(dir, since, until)
		}
		if err != nil {
			fail(errs, err)
			return nil
		}
		for _, w := range warns {
			errs.Warn("%s", w)
		}
		if len(records) == 0 {
			out.Plain("no archived activity between %s and %s", since.Format("2006-01-02"), until.Format("2006-01-02"))
			return nil
		}

		eng, _, err := buildEngine(reportModel)
		if err != nil {
			fail(errs, err)
			return nil
		}

		errs.Dim("summarizing %d record(s)...", len(records))
		art, err := eng.Report(ctx, records, since, until)
		if err != nil {
			fail(errs, err)
			return nil
		}
		printBundleWarnings(errs, art.Bundle)
		out.Markdown(art.Text)
		return nil
	},
}

// reportRange resolves the flags to a half-open [since, until) window.
// Explicit dates win over --period.
func reportRange() (time.Time, time.Time, error) {
	if reportSince != "" || reportUntil != "" {
		if reportSince == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--until requires --since")
		}
		since, err := time.ParseInLocation("2006-01-02", reportSince, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since date %q: %w", reportSince, err)
		}
		until := time.Now()
		if reportUntil != "" {
			until, err = time.ParseInLocation("2006-01-02", reportUntil, time.Local)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid --until date %q: %w", reportUntil, err)
			}
		}
		if !since.Before(until) {
			return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
		}
		return since, until, nil
	}
	return archive.Period(reportPeriod, time.Now())
}

func init() {
	reportCmd.Flags().StringVarP(&reportPeriod, "period", "p", "week", "Named period (today, yesterday, week, month, quarter, year)")
	reportCmd.Flags().StringVar(&reportSince, "since", "", "Range start date, YYYY-MM-DD (overrides --period)")
	reportCmd.Flags().StringVar(&reportUntil, "until", "", "Range end date, YYYY-MM-DD, exclusive (defaults to now)")
	reportCmd.Flags().StringVarP(&reportModel, "model", "m", "", "Override the configured model")
	reportCmd.Flags().StringVar(&reportProject, "project", "", "Limit the report to one project")
}
