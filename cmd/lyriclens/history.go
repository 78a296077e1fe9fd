package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/history"
	"github.com/lyriclens/lyriclens/pkg/models"
)

func newHistoryCmd() *cobra.Command {
	var (
		configPath string
		requester  string
		sinceDays  int
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent analysis requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ledger, err := history.New(cfg.DBPath, newLogger())
			if err != nil {
				return err
			}
			defer func() { _ = ledger.Close() }()

			if limit <= 0 {
				limit = cfg.Limits.History
			}

			ctx := context.Background()
			var records []models.HistoryRecord
			if requester != "" {
				records, err = ledger.RecentFor(ctx, requester, limit)
			} else {
				records, err = ledger.RecentGlobal(ctx, sinceDays, limit)
			}
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Println("No history found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tREQUESTER\tARTIST\tTITLE\tOK\tDETAIL")
			for _, r := range records {
				ok := "yes"
				if !r.Success {
					ok = "no"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.CreatedAt.Format("2006-01-02T15:04:05"), r.RequesterID, r.Artist, r.Title, ok, r.ErrorDetail)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lyriclens.yaml", "path to config file")
	cmd.Flags().StringVar(&requester, "requester", "", "show history for a single requester")
	cmd.Flags().IntVar(&sinceDays, "since-days", 7, "global history window in days")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records")
	return cmd
}
