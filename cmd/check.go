package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"linearproxy/internal/formatting"
	"linearproxy/internal/verify"
)

// errNotReady makes check exit non-zero after the report has been printed.
var errNotReady = errors.New("workspace proxies need configuration")

func newCheckCmd(debug *bool) *cobra.Command {
	var (
		dir          string
		outputFormat string
		noColor      bool
	)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify workspace proxy directories",
		Long: `Checks every *-proxy directory under --dir:

  - .env defines WORKSPACE_NAME, <NAME>_PORT and real OAuth credentials
  - a proxy answers on http://localhost:<NAME>_PORT/health
  - start.sh, claude-config.json and README.md exist

Exits with status 1 when any workspace needs configuration.

Examples:
  linear-proxy check
  linear-proxy check --dir ~/proxies -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			initCommandLogging(cmd, *debug)

			format, err := formatting.ParseFormat(outputFormat)
			if err != nil {
				return err
			}

			var checkerOpts []verify.Option
			if format == formatting.FormatTable {
				checkerOpts = append(checkerOpts, verify.WithProgress(cmd.ErrOrStderr()))
			}

			report, err := verify.NewChecker(checkerOpts...).Run(cmd.Context(), dir)
			if err != nil {
				return err
			}

			formatter := formatting.NewFormatter(formatting.Options{
				Format: format,
				Color:  !noColor,
			})
			if err := formatter.FormatReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			if !report.Ready {
				return errNotReady
			}
			return nil
		},
	}

	checkCmd.Flags().StringVar(&dir, "dir", ".", "Directory containing the workspace proxy directories")
	checkCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table|json|yaml)")
	checkCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return checkCmd
}
