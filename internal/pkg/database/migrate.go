package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one versioned schema change loaded from a pair of
// NNNNNNNNNN_description.up.sql / .down.sql files.
type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// MigrationStatus represents the current state of migrations
type MigrationStatus struct {
	CurrentVersion    int   `json:"current_version"`
	PendingMigrations []int `json:"pending_migrations"`
	TotalMigrations   int   `json:"total_migrations"`
	HasPendingChanges bool  `json:"has_pending_changes"`
}

var migrationFileRegex = regexp.MustCompile(`^(\d{10})_([a-z0-9_]+)\.(up|down)\.sql$`)

const migrationsTableSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// LoadMigrations scans fsys for migration files. Every version must have
// both an up and a down file.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFileRegex.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration version %q: %w", match[1], err)
		}
		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Description: match[2]}
			byVersion[version] = m
		}
		if match[3] == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %010d_%s is incomplete: both up and down files are required", m.Version, m.Description)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// Migrator applies the embedded schema migrations.
type Migrator struct {
	db         *DB
	migrations []Migration
	logger     *slog.Logger
}

// NewMigrator creates a migrator over the migrations embedded in this package.
func NewMigrator(db *DB) (*Migrator, error) {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	migrations, err := LoadMigrations(sub)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: migrations, logger: slog.Default()}, nil
}

func (m *Migrator) initialize(ctx context.Context) error {
	if _, err := m.db.Exec(ctx, migrationsTableSQL); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// CurrentVersion returns the highest applied version, 0 when none.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.initialize(ctx); err != nil {
		return 0, err
	}
	var version int
	err := m.db.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// Status reports applied and pending migrations.
func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	pending := []int{}
	for _, mig := range m.migrations {
		if mig.Version > current {
			pending = append(pending, mig.Version)
		}
	}
	return &MigrationStatus{
		CurrentVersion:    current,
		PendingMigrations: pending,
		TotalMigrations:   len(m.migrations),
		HasPendingChanges: len(pending) > 0,
	}, nil
}

// Up applies every pending migration, each in its own transaction.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		err := m.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.Up); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`, mig.Version, mig.Description)
			return err
		})
		if err != nil {
			return applied, err
		}
		m.logger.Info("Migration applied", "version", mig.Version, "description", mig.Description)
		applied++
	}
	return applied, nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if current == 0 {
		return fmt.Errorf("no applied migrations to roll back")
	}

	for _, mig := range m.migrations {
		if mig.Version != current {
			continue
		}
		err := m.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.Down); err != nil {
				return fmt.Errorf("failed to roll back migration %d: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, mig.Version)
			return err
		})
		if err != nil {
			return err
		}
		m.logger.Info("Migration rolled back", "version", mig.Version, "description", mig.Description)
		return nil
	}
	return fmt.Errorf("migration %d is applied but missing from the embedded set", current)
}

func (m *Migrator) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
