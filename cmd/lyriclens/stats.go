package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/history"
	"github.com/lyriclens/lyriclens/pkg/stats"
	"github.com/lyriclens/lyriclens/pkg/store/sqlite"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show service-wide statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			log := newLogger()

			store, err := sqlite.New(cfg.DBPath, log)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ledger, err := history.New(cfg.DBPath, log)
			if err != nil {
				return err
			}
			defer func() { _ = ledger.Close() }()

			agg := stats.New(store, ledger)
			s, err := agg.Global(context.Background())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Requesters\t%d\n", s.TotalRequesters)
			fmt.Fprintf(w, "Total queries\t%d\n", s.TotalQueries)
			fmt.Fprintf(w, "Cached songs\t%d\n", s.CachedSongs)
			fmt.Fprintf(w, "Queries (24h)\t%d\n", s.Queries24h)
			fmt.Fprintf(w, "Active requesters (7d)\t%d\n", s.ActiveRequesters7d)
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lyriclens.yaml", "path to config file")
	return cmd
}
