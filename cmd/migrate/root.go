package main

import (
	"github.com/spf13/cobra"
)

var databaseURL string

// NewRootCmd creates the root command of the schema tool.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Back office schema and seeding tool",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "dsn", "", "PostgreSQL DSN (default $DATABASE_URL)")

	cmd.AddCommand(newUpCmd())
	cmd.AddCommand(newDownCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newHashCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}
