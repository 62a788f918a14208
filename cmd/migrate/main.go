package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// migrate applies migrations/*.sql in lexical order. Applied files are
// tracked in schema_migrations so re-runs are no-ops.
func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	v := viper.New()
	v.SetDefault("dir", "migrations")
	v.SetEnvPrefix("migrate")
	_ = v.BindEnv("dsn", "DATABASE_DSN")
	_ = v.BindEnv("dir")
	v.AutomaticEnv()

	dsn := v.GetString("dsn")
	if dsn == "" {
		return errors.New("DATABASE_DSN is required")
	}
	dir := v.GetString("dir")

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return errors.Wrap(err, "list migrations")
	}
	sort.Strings(files)

	for _, file := range files {
		name := filepath.Base(file)
		var applied bool
		err = conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied)
		if err != nil {
			return errors.Wrapf(err, "check %s", name)
		}
		if applied {
			continue
		}

		sql, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "read %s", name)
		}

		tx, err := conn.Begin(ctx)
		if err != nil {
			return errors.Wrapf(err, "begin %s", name)
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrapf(err, "apply %s", name)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrapf(err, "record %s", name)
		}
		if err := tx.Commit(ctx); err != nil {
			return errors.Wrapf(err, "commit %s", name)
		}
		fmt.Printf("applied %s\n", name)
	}
	return nil
}
