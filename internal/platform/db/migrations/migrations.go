package migrations

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/ogurasousui/employee-registry/assets"
)

const embeddedDir = "migrations"

// New は埋め込みマイグレーションを読み込んだ migrate.Migrate を生成します。
func New(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(assets.Migrations, embeddedDir)
	if err != nil {
		return nil, fmt.Errorf("migrations: open embedded source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("migrations: create migrate instance: %w", err)
	}
	return m, nil
}

// Up はスキーマを最新まで適用します。適用済みであれば何もしません。
func Up(dsn string) error {
	m, err := New(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}
