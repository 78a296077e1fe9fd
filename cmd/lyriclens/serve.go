package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lyriclens/lyriclens/pkg/analyzer"
	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/history"
	"github.com/lyriclens/lyriclens/pkg/llm"
	"github.com/lyriclens/lyriclens/pkg/lyrics"
	"github.com/lyriclens/lyriclens/pkg/server"
	"github.com/lyriclens/lyriclens/pkg/stats"
	"github.com/lyriclens/lyriclens/pkg/store/sqlite"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analysis API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			log := newLogger()

			store, err := sqlite.New(cfg.DBPath, log)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer func() { _ = store.Close() }()

			ledger, err := history.New(cfg.DBPath, log)
			if err != nil {
				return fmt.Errorf("init history: %w", err)
			}
			defer func() { _ = ledger.Close() }()

			summarizer, err := llm.New(cfg.LLM.Providers, log)
			if err != nil {
				return fmt.Errorf("init summarizer: %w", err)
			}

			fetcher := lyrics.New(cfg.Lyrics.URL, cfg.Lyrics.Token)
			pipeline := analyzer.New(store, fetcher, summarizer, log)
			agg := stats.New(store, ledger)

			sweeper := sqlite.StartSweeper(store, cfg.Retention.SweepInterval,
				cfg.Retention.MaxAgeDays, cfg.Retention.MinAccessCount, log)
			defer sweeper.Stop()

			srv := server.New(cfg, pipeline, ledger, agg, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info().Str("listen", cfg.Listen).Str("config", configPath).Msg("starting lyriclens server")
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lyriclens.yaml", "path to config file")
	return cmd
}
