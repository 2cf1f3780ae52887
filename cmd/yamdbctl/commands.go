package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/review-aggregator/internal/config"
	"github.com/magabrotheeeer/review-aggregator/internal/migrations"
	"github.com/magabrotheeeer/review-aggregator/internal/models"
	"github.com/magabrotheeeer/review-aggregator/internal/policy"
	"github.com/magabrotheeeer/review-aggregator/internal/storage"
)

// roleSetter часть хранилища, которая нужна set-role.
type roleSetter interface {
	UpdateUser(ctx context.Context, username string, patch models.UserPatch) (*models.User, error)
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "yamdbctl",
		Short:        "Administrative commands for the review aggregator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the YAML config (defaults to $CONFIG_PATH)")

	load := func() (*config.Config, error) {
		if err := config.LoadDotEnv(".env"); err != nil {
			return nil, err
		}
		path := configPath
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		if path == "" {
			return nil, errors.New("config path is not set: use --config or CONFIG_PATH")
		}
		return config.Load(path)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "set-role <username> <role>",
			Short: "Change the role of an existing user (user, moderator, admin)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				db, err := storage.New(cfg.StorageConnectionString)
				if err != nil {
					return err
				}
				defer db.Close()
				return setRole(cmd.Context(), db, args[0], args[1], cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				db, err := storage.New(cfg.StorageConnectionString)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrations from %s applied\n", cfg.MigrationsPath)
				return err
			},
		},
	)
	return root
}

func setRole(ctx context.Context, repo roleSetter, username, roleName string, out io.Writer) error {
	role, err := policy.ParseRole(roleName)
	if err != nil {
		return err
	}
	u, err := repo.UpdateUser(ctx, username, models.UserPatch{Role: &role})
	if err != nil {
		return fmt.Errorf("set role for %q: %w", username, err)
	}
	_, err = fmt.Fprintf(out, "%s is now %s\n", u.Username, u.Role)
	return err
}
