package cli

import (
	"fmt"
	"io"

	"quiz-results/internal/database"

	"github.com/spf13/cobra"
)

// NewMigrateCmd groups the schema migration commands.
func NewMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(cmd, *configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd, *configPath)
		},
	})
	return cmd
}

func openMigrator(configPath string) (*database.Migrator, func(), error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.NewSQLXOracleDB(cfg.GetDSN(), database.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		return nil, nil, err
	}
	m, err := database.NewMigrator(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return m, func() {
		m.Close()
		db.Close()
	}, nil
}

func runMigrateUp(cmd *cobra.Command, configPath string) error {
	m, closeFn, err := openMigrator(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	applied, err := m.Up(cmd.Context())
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d\n", v)
	}
	return nil
}

func runMigrateStatus(cmd *cobra.Command, configPath string) error {
	m, closeFn, err := openMigrator(configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	statuses, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}
	printStatus(cmd.OutOrStdout(), statuses)
	return nil
}

func printStatus(w io.Writer, statuses []database.MigrationStatus) {
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(w, "%-6d %-8s %s\n", s.Version, state, s.Identifier)
	}
}
