package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"shopadmin.org/internal/auth"
	"shopadmin.org/internal/employee"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash [password]",
		Short: "Print a bcrypt hash (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordArg(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
}

func passwordArg(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type seedOptions struct {
	email    string
	password string
	tab      string
	profile  int64
	roles    []string
}

func (o seedOptions) record() (employee.Record, error) {
	if strings.TrimSpace(o.email) == "" || o.password == "" {
		return employee.Record{}, errors.New("--email and --password are required")
	}
	hash, err := auth.HashPassword(o.password)
	if err != nil {
		return employee.Record{}, err
	}
	return employee.Record{
		Email:        o.email,
		PasswordHash: hash,
		Active:       true,
		DefaultTab:   o.tab,
		ProfileID:    o.profile,
		Roles:        o.roles,
	}, nil
}

func newSeedCmd() *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or update a back office employee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := opts.record()
			if err != nil {
				return err
			}
			url, err := dsn()
			if err != nil {
				return err
			}
			db, err := sql.Open("pgx", url)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			id, err := employee.NewPGStore(db, employee.NewLinker("")).Save(ctx, rec)
			if err != nil {
				return err
			}
			cmd.Printf("employee %d saved\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "employee email")
	cmd.Flags().StringVar(&opts.password, "password", os.Getenv("SEED_PASSWORD"), "plain password (default $SEED_PASSWORD)")
	cmd.Flags().StringVar(&opts.tab, "tab", "AdminDashboard", "default tab class")
	cmd.Flags().Int64Var(&opts.profile, "profile", 1, "profile id")
	cmd.Flags().StringSliceVar(&opts.roles, "role", nil, "role granted to the profile (repeatable)")
	return cmd
}
