package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/db"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot when
// STOREFRONT_AUTO_MIGRATE is set in a dev environment. SQLite databases are
// skipped; tests create their own schema.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate || cfg.FeatureFlags.UseSQLite {
		return nil
	}
	sqlDB, err := client.SQLDB()
	if err != nil {
		return err
	}
	return ApplyEmbedded(ctx, sqlDB, logg)
}

// ApplyEmbedded runs every pending embedded migration and logs each one
// applied.
func ApplyEmbedded(ctx context.Context, sqlDB *sql.DB, logg *logger.Logger) error {
	if _, err := ValidateFS(Migrations(), "."); err != nil {
		return fmt.Errorf("embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, Migrations())
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, res := range results {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":     res.Source.Version,
			"file":        res.Source.Path,
			"duration_ms": res.Duration.Milliseconds(),
		}), "migration applied")
	}
	if len(results) == 0 {
		logg.Debug(ctx, "schema up to date")
	}
	return nil
}
