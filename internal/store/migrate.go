package store

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator handles registry schema migrations using golang-migrate.
type Migrator struct {
	dsn string
}

func NewMigrator(dsn string) (*Migrator, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	return &Migrator{dsn: dsn}, nil
}

func (m *Migrator) sourceURL() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	p := filepath.Join(wd, "db", "migrations")
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}

func (m *Migrator) Up(ctx context.Context) error {
	return m.run(func(mig *migrate.Migrate) error { return mig.Up() })
}

func (m *Migrator) Down(ctx context.Context) error {
	return m.run(func(mig *migrate.Migrate) error { return mig.Steps(-1) })
}

func (m *Migrator) run(fn func(*migrate.Migrate) error) error {
	src, err := m.sourceURL()
	if err != nil {
		return err
	}
	mig, err := migrate.New(src, m.dsn)
	if err != nil {
		return err
	}
	defer mig.Close()
	if err := fn(mig); err != nil {
		if err == migrate.ErrNoChange {
			return ErrNoChange
		}
		return err
	}
	return nil
}
