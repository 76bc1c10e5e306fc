package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/exam-coach/internal/ingest"
	"github.com/p-n-ai/exam-coach/internal/platform/config"
)

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Analyze question images once and print their reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			provider, err := newProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, provider)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if quiet {
				out = io.Discard
			}
			return analyzeImages(cmd.Context(), a.analyzer(), args, out)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "write reports without printing them")
	return cmd
}

// analyzeImages runs each path through the analyzer and prints the report.
// Every path is attempted; the joined failures are returned.
func analyzeImages(ctx context.Context, analyzer *ingest.Analyzer, paths []string, out io.Writer) error {
	var errs []error
	for _, p := range paths {
		res := analyzer.Handle(ctx, p)
		switch res.Status {
		case ingest.StatusFailed:
			errs = append(errs, fmt.Errorf("%s: %w", p, res.Err))
		case ingest.StatusSkipped:
			fmt.Fprintf(out, "%s: already analyzed\n", p)
		default:
			report, err := os.ReadFile(res.ReportPath)
			if err != nil {
				errs = append(errs, fmt.Errorf("read report %s: %w", res.ReportPath, err))
				continue
			}
			fmt.Fprintf(out, "==> %s\n%s\n", res.ReportPath, report)
		}
	}
	return errors.Join(errs...)
}
