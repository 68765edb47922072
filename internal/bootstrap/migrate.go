package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/jobboard/internal/config"
	"github.com/smallbiznis/jobboard/internal/repository"
)

// SchemaMigrator applies pending schema migrations.
type SchemaMigrator interface {
	Up(ctx context.Context) error
}

// MigrateOnStart applies pending migrations before the HTTP server starts
// when MIGRATE_ON_START is enabled.
func MigrateOnStart(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) error {
	if !cfg.MigrateOnStart {
		logger.Info("skipping migrations on start")
		return nil
	}
	migrator, err := repository.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("bootstrap migrator: %w", err)
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return Migrate(ctx, migrator)
		},
	})
	return nil
}

// Migrate runs m.Up and wraps its failure.
func Migrate(ctx context.Context, m SchemaMigrator) error {
	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("bootstrap migrations: %w", err)
	}
	return nil
}
