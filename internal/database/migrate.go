package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"quiz-results/internal/logger"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus reports whether a migration version has been applied.
type MigrationStatus struct {
	Version    uint
	Identifier string
	Applied    bool
}

// Migrator applies the embedded migrations. golang-migrate ships no Oracle
// database driver, so only its source driver is used and versions are tracked
// in schema_migrations by this type.
type Migrator struct {
	db  *sqlx.DB
	src source.Driver
}

// NewMigrator creates a Migrator over the embedded migration files.
func NewMigrator(db *sqlx.DB) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return &Migrator{db: db, src: src}, nil
}

// Close releases the migration source.
func (m *Migrator) Close() error {
	return m.src.Close()
}

// Up applies every pending migration in version order and returns the applied versions.
func (m *Migrator) Up(ctx context.Context) ([]uint, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var applied []uint
	err = m.walk(func(version uint) error {
		if done[version] {
			return nil
		}
		if err := m.apply(ctx, version); err != nil {
			return err
		}
		applied = append(applied, version)
		return nil
	})
	if err != nil {
		return applied, err
	}

	logger.Get().Info("Migrations completed", zap.Int("applied", len(applied)))
	return applied, nil
}

// Status lists every known migration and whether it has been applied.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return nil, err
	}
	done, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var statuses []MigrationStatus
	err = m.walk(func(version uint) error {
		r, identifier, err := m.src.ReadUp(version)
		if err != nil {
			return fmt.Errorf("failed to read migration %d: %w", version, err)
		}
		r.Close()
		statuses = append(statuses, MigrationStatus{Version: version, Identifier: identifier, Applied: done[version]})
		return nil
	})
	return statuses, err
}

func (m *Migrator) walk(fn func(version uint) error) error {
	version, err := m.src.First()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read first migration: %w", err)
	}
	for {
		if err := fn(version); err != nil {
			return err
		}
		next, err := m.src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read migration after %d: %w", version, err)
		}
		version = next
	}
}

func (m *Migrator) apply(ctx context.Context, version uint) error {
	r, identifier, err := m.src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	body, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}

	// Oracle DDL commits implicitly, so statements run one by one outside a transaction.
	for i, stmt := range SplitStatements(string(body)) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			if i > 0 {
				m.revert(ctx, version)
			}
			return fmt.Errorf("failed to execute migration %d_%s: %w", version, identifier, err)
		}
	}
	if _, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (:1)`, version); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}

	logger.Get().Info("Executed migration", zap.Uint("version", version), zap.String("name", identifier))
	return nil
}

// revert runs the down file of a partly applied migration so a later Up can
// start it again. Statement errors are logged and skipped since only part of
// the up file ran.
func (m *Migrator) revert(ctx context.Context, version uint) {
	log := logger.Get().With(zap.Uint("version", version))
	r, _, err := m.src.ReadDown(version)
	if err != nil {
		log.Error("Partly applied migration has no down file, drop its objects by hand", zap.Error(err))
		return
	}
	body, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		log.Error("Failed to read down migration", zap.Error(err))
		return
	}
	for _, stmt := range SplitStatements(string(body)) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			log.Warn("Revert statement skipped", zap.String("statement", stmt), zap.Error(err))
		}
	}
	log.Warn("Reverted partly applied migration")
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	var count int
	err := m.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`)
	if err != nil {
		return fmt.Errorf("failed to check schema_migrations: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err = m.db.ExecContext(ctx, `CREATE TABLE schema_migrations (
    version    NUMBER(19) PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT SYSTIMESTAMP NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[uint]bool, error) {
	var versions []int64
	if err := m.db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations ORDER BY version`); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	done := make(map[uint]bool, len(versions))
	for _, v := range versions {
		done[uint(v)] = true
	}
	return done, nil
}

// SplitStatements splits a migration file on semicolons that end a line.
// Full line "--" comments are dropped. PL/SQL blocks are not supported.
func SplitStatements(body string) []string {
	var (
		stmts   []string
		current strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			stmts = append(stmts, s)
		}
		current.Reset()
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			current.WriteString(strings.TrimSuffix(strings.TrimRight(line, " \t\r"), ";"))
			flush()
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()
	return stmts
}
