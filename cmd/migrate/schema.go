package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"shopadmin.org/internal/migrate"
)

func dsn() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v, nil
	}
	return "", errors.New("missing DSN: provide via --dsn or DATABASE_URL")
}

func withMigrator(cmd *cobra.Command, fn func(*migrate.Migrator) error) error {
	url, err := dsn()
	if err != nil {
		return err
	}
	m, err := migrate.New(url)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if err := fn(m); err != nil {
		return err
	}
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cmd.Printf("version %d (dirty=%v)\n", v, dirty)
	return nil
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, (*migrate.Migrator).Up)
		},
	}
}

func newDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops the employee tables)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, (*migrate.Migrator).Down)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(*migrate.Migrator) error { return nil })
		},
	}
}
