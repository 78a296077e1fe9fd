package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lyriclens/lyriclens/pkg/analyzer"
	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/history"
	"github.com/lyriclens/lyriclens/pkg/llm"
	"github.com/lyriclens/lyriclens/pkg/lyrics"
	"github.com/lyriclens/lyriclens/pkg/models"
	"github.com/lyriclens/lyriclens/pkg/store/sqlite"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		configPath string
		requester  string
	)

	cmd := &cobra.Command{
		Use:   "analyze <artist> <title>",
		Short: "Analyze a single song and print its interpretation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			artist, title := args[0], args[1]

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

			ctx := context.Background()

			if terr := ledger.Touch(ctx, requester, ""); terr != nil {
				log.Warn().Err(terr).Msg("requester touch failed")
			}

			result, err := pipeline.Analyze(ctx, artist, title)

			rec := models.HistoryRecord{
				RequesterID: requester,
				Artist:      artist,
				Title:       title,
				Success:     err == nil,
			}
			if err != nil {
				rec.ErrorDetail = err.Error()
			}
			if _, aerr := ledger.Append(ctx, rec); aerr != nil {
				log.Warn().Err(aerr).Msg("history append failed")
			}

			if err != nil {
				if errors.Is(err, lyrics.ErrNotFound) {
					return fmt.Errorf("song not found: %s / %s", artist, title)
				}
				return fmt.Errorf("analyze: %w", err)
			}

			fmt.Printf("Interpretation of %q by %s", result.Title, result.Artist)
			if result.ServedFromCache {
				fmt.Print(" (cached)")
			}
			fmt.Printf("\n\n%s\n", result.Summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lyriclens.yaml", "path to config file")
	cmd.Flags().StringVar(&requester, "requester", "cli", "requester to attribute the request to")
	return cmd
}
