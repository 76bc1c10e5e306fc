package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/exam-coach/internal/ingest"
	"github.com/p-n-ai/exam-coach/internal/platform/config"
)

func newWatchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the image directory and analyze every new question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Graceful shutdown on SIGTERM/SIGINT.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return runWatch(ctx, cfg)
		},
	}
}

func runWatch(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, provider)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := ingest.NewWatcher(cfg.Paths.WatchDir, cfg.Watch.SettleDelay)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	analyzer := a.analyzer()

	if a.cache != nil {
		if n, err := a.cache.SetSize(ctx, cfg.Cache.SeenKey); err != nil {
			slog.Warn("reading seen set size failed", "error", err)
		} else {
			slog.Info("persistent seen set", "key", cfg.Cache.SeenKey, "paths", n)
		}
	}

	slog.Info("exam coach started",
		"watch_dir", w.Dir(),
		"report_dir", a.reports.Dir(),
		"curriculum", cfg.Paths.CurriculumPath,
		"topics", a.store.TopicCount(),
		"sinks", a.recorder.Len(),
		"settle_delay", cfg.Watch.SettleDelay,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, func(ctx context.Context, path string) {
			analyzer.Handle(ctx, path)
		})
	})
	if cfg.Server.Enabled {
		srv := a.httpServer()
		g.Go(func() error {
			return srv.Run(gctx, cfg.Server.Port)
		})
	}

	err = g.Wait()
	slog.Info("exam coach stopped")
	return err
}
