package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/capsule-corp/now-shopify-auth/migrations"
	"github.com/capsule-corp/now-shopify-auth/pkg/config"
)

// Migrate applies pending migrations. MIGRATIONS_PATH (e.g. "file://migrations")
// overrides the schema embedded in the binary.
func Migrate(cfg config.Config) error {
	var (
		m   *migrate.Migrate
		err error
	)
	if cfg.MigrationsPath != "" {
		m, err = migrate.New(cfg.MigrationsPath, migrationConnString(cfg))
	} else {
		src, srcErr := iofs.New(migrations.FS, ".")
		if srcErr != nil {
			return fmt.Errorf("embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, migrationConnString(cfg))
	}
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}
	return nil
}
