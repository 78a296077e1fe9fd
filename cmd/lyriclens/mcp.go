package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lyriclens/lyriclens/pkg/analyzer"
	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/history"
	"github.com/lyriclens/lyriclens/pkg/llm"
	"github.com/lyriclens/lyriclens/pkg/lyrics"
	"github.com/lyriclens/lyriclens/pkg/mcp"
	"github.com/lyriclens/lyriclens/pkg/stats"
	"github.com/lyriclens/lyriclens/pkg/store/sqlite"
)

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start lyriclens as an MCP server on stdio",
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

			srv := mcp.New(pipeline, ledger, agg, log, version)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lyriclens.yaml", "path to config file")
	return cmd
}
