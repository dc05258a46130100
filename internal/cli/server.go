package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpmf/NexxtTask/internal/app"
	"github.com/mpmf/NexxtTask/internal/config"
	"github.com/mpmf/NexxtTask/internal/services"
	"github.com/mpmf/NexxtTask/internal/ui/dashboard"
)

// openServer opens the store and services without the client keyring.
func (cc *cliContext) openServer(ctx context.Context) (*app.App, error) {
	if err := cc.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (run \"nexxttask config init\" to create a config)", err)
	}
	return app.New(ctx, cc.cfg, cc.logger)
}

func serveCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := cc.openServer(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s:%s\n", cc.cfg.HTTP.Host, cc.cfg.HTTP.Port)
			return a.ListenAndServeHTTP(cmd.Context())
		},
	}
}

func migrateCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := cc.openServer(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()

			version, err := a.Store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is at version %d (%s)\n", version, a.Store.DriverName())
			return nil
		},
	}
}

func dashboardCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Browse and edit tasks in the terminal dashboard",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = cc.withApp(func(cmd *cobra.Command, args []string) error {
		ctx, a, err := cc.actor(cmd.Context())
		if err != nil {
			return err
		}
		userID, _ := services.ActorFrom(ctx)
		user, err := a.Auth.CurrentUser(ctx, userID)
		if err != nil {
			return err
		}

		m := dashboard.New(ctx, dashboard.Services{
			Tasks: a.Tasks,
			Tags:  a.Tags,
			Users: a.Users,
		}, user.Email)
		return dashboard.Run(m)
	})
	return cmd
}

func configCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config with a fresh signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(cc.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", cc.configPath)
			}

			key, err := newSigningKey()
			if err != nil {
				return err
			}
			cfg := *cc.cfg
			cfg.Auth.SigningKey = key

			if err := config.SaveConfig(cc.configPath, &cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cc.configPath)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing config")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), cc.configPath)
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

func newSigningKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating signing key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
