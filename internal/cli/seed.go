package cli

import (
	"fmt"

	"quiz-results/internal/database"
	"quiz-results/internal/repository"
	"quiz-results/internal/seed"

	"github.com/spf13/cobra"
)

// NewSeedCmd loads companies, members, quizzes and questions from a JSON fixture.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog fixtures for local setups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			companies, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			db, err := database.NewSQLXOracleDB(cfg.GetDSN(), database.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
			if err != nil {
				return err
			}
			defer db.Close()

			seeder := seed.NewSeeder(repository.NewQuizCatalogRepository(db), repository.NewTransactionManagerAdapter(db))
			sum, err := seeder.Run(cmd.Context(), companies)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d companies, %d members, %d quizzes, %d questions\n",
				sum.Companies, sum.Members, sum.Quizzes, sum.Questions)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/seed.json", "path to the JSON fixture")
	return cmd
}
