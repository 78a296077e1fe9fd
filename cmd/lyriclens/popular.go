package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/store/sqlite"
)

func newPopularCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Show the most requested songs",
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

			if limit <= 0 {
				limit = cfg.Limits.Popular
			}

			entries, err := store.Popular(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No cached songs yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ARTIST\tTITLE\tREQUESTS\tLAST ACCESSED")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
					e.Artist, e.Title, e.AccessCount, e.LastAccessed.Format("2006-01-02T15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "lyriclens.yaml", "path to config file")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of songs")
	return cmd
}
