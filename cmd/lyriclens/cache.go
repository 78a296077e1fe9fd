package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/store/sqlite"
)

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the song cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			store, err := sqlite.New(cfg.DBPath, newLogger())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := store.Stats(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Entries: %d\nHits:    %d\nMisses:  %d\n", stats.Entries, stats.Hits, stats.Misses)
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evict stale, rarely requested entries now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			store, err := sqlite.New(cfg.DBPath, newLogger())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			evicted, err := store.EvictStale(context.Background(),
				cfg.Retention.MaxAgeDays, cfg.Retention.MinAccessCount)
			if err != nil {
				return err
			}
			fmt.Printf("Evicted %d entries.\n", evicted)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "lyriclens.yaml", "path to config file")
	cmd.AddCommand(statsCmd, sweepCmd)
	return cmd
}
