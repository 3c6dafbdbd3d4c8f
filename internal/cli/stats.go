package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"physquiz-service/internal/config"
	"physquiz-service/internal/stats"
)

// NewStatsCmd prints quiz history statistics from the configured store.
func NewStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show quiz history statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			recorder := stats.NewRecorder(store)
			history, err := recorder.History(cmd.Context())
			if err != nil {
				return err
			}

			overall := stats.Overall(history)
			fmt.Printf("Total quizzes:  %d\n", overall.TotalQuizzes)
			fmt.Printf("Average score:  %d%%\n", overall.AverageScore)

			byCategory := stats.ByCategory(history)
			if len(byCategory) > 0 {
				fmt.Println("\nCategory performance:")
				for _, entry := range byCategory {
					fmt.Printf("  %-12s %3d%% over %d attempt(s)\n",
						entry.CategoryID, entry.AveragePercentage, entry.Attempts)
				}
			}
			return nil
		},
	}
}
