package postgres

import (
	"context"
	"fmt"
	"github.com/ZertGraf/user-directory/internal/pkg/logger"
	"github.com/ZertGraf/user-directory/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
	"io/fs"
	"time"
)

type MigrationConfig struct {
	Timeout   time.Duration `json:"timeout"`
	TableName string        `json:"table_name"`
	Enabled   bool          `json:"enabled"`

	// Source defaults to the embedded migrations package
	Source fs.FS `json:"-"`
}

type Migrator struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
	config *MigrationConfig
}

func NewMigrator(pool *pgxpool.Pool, config *MigrationConfig, logger *logger.Logger) *Migrator {
	if config.Source == nil {
		config.Source = migrations.MigrationFiles
	}
	return &Migrator{
		pool:   pool,
		logger: logger.Component("postgres/migrator"),
		config: config,
	}
}

// RunMigrations brings the journal schema to the latest version.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	if !m.config.Enabled {
		m.logger.Info("migrations disabled, skipping")
		return nil
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	return m.withMigrator(ctx, func(migrator *migrate.Migrator) error {
		currentVersion, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("get current version: %w", err)
		}

		latest := latestVersion(migrator)
		if latest <= currentVersion {
			m.logger.Info("journal schema up to date",
				"current_version", currentVersion)
			return nil
		}

		m.logger.Info("applying journal migrations",
			"current_version", currentVersion,
			"target_version", latest)

		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		m.logger.Info("migrations completed",
			"from_version", currentVersion,
			"to_version", latest,
			"duration", time.Since(start))
		return nil
	})
}

func (m *Migrator) GetCurrentVersion(ctx context.Context) (int32, error) {
	var version int32
	err := m.withMigrator(ctx, func(migrator *migrate.Migrator) error {
		v, err := migrator.GetCurrentVersion(ctx)
		version = v
		return err
	})
	return version, err
}

// Health fails when the schema is behind the embedded migrations.
func (m *Migrator) Health(ctx context.Context) error {
	return m.withMigrator(ctx, func(migrator *migrate.Migrator) error {
		current, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("migration health check failed: %w", err)
		}
		if latest := latestVersion(migrator); current < latest {
			return fmt.Errorf("journal schema at version %d, want %d", current, latest)
		}
		return nil
	})
}

func (m *Migrator) withMigrator(ctx context.Context, fn func(*migrate.Migrator) error) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	migrator, err := migrate.NewMigrator(ctx, conn.Conn(), m.config.TableName)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err = migrator.LoadMigrations(m.config.Source); err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	return fn(migrator)
}

func latestVersion(migrator *migrate.Migrator) int32 {
	var latest int32
	for _, migration := range migrator.Migrations {
		if migration.Sequence > latest {
			latest = migration.Sequence
		}
	}
	return latest
}
