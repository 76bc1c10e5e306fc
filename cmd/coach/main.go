// Command coach watches a folder of exam question images and writes a study
// report for each one.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/exam-coach/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	envFile    string
	watchDir   string
	reportDir  string
	curriculum string
	logLevel   string
}

// newRootCmd builds the command tree. cfg is populated before any
// subcommand runs.
func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		cfg   = &config.Config{}
	)

	root := &cobra.Command{
		Use:           "coach",
		Short:         "Exam question analyzer for LGS and YKS",
		Long:          "coach classifies exam question images with a vision model, matches them against the curriculum and writes study reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(flags)
			if err != nil {
				return err
			}
			*cfg = *loaded
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.StringVar(&flags.watchDir, "watch-dir", "", "directory to watch for question images (COACH_WATCH_DIR)")
	pf.StringVar(&flags.reportDir, "report-dir", "", "directory for generated reports (COACH_REPORT_DIR)")
	pf.StringVar(&flags.curriculum, "curriculum", "", "curriculum document path (COACH_CURRICULUM_PATH)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (COACH_LOG_LEVEL)")

	root.AddCommand(
		newWatchCmd(cfg),
		newAnalyzeCmd(cfg),
		newCurriculumCmd(cfg),
	)

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	return root
}

func loadConfig(flags rootFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.watchDir != "" {
		cfg.Paths.WatchDir = flags.watchDir
	}
	if flags.reportDir != "" {
		cfg.Paths.ReportDir = flags.reportDir
	}
	if flags.curriculum != "" {
		cfg.Paths.CurriculumPath = flags.curriculum
	}
	if flags.logLevel != "" {
		cfg.Log.Level = strings.ToLower(flags.logLevel)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
