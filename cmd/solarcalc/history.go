package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solarcalc/internal/infrastructure/env"
	"solarcalc/internal/infrastructure/sink"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored run reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(env.NewService())
			if err != nil {
				return err
			}

			reports, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list reports: %w", err)
			}
			if len(reports) == 0 {
				fmt.Println("No reports stored yet.")
				return nil
			}

			if limit > 0 && len(reports) > limit {
				reports = reports[:limit]
			}
			for _, r := range reports {
				fmt.Printf("%s  %s  [%s]  %s\n",
					r.StartedAt.Format("2006-01-02 15:04"), r.ID, r.State, sink.ShortSummary(r))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of reports to show (0 for all)")
	return cmd
}
