package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mpmf/NexxtTask/internal/app"
	"github.com/mpmf/NexxtTask/internal/config"
	"github.com/mpmf/NexxtTask/internal/credential"
	"github.com/mpmf/NexxtTask/internal/services"
)

var Version = "dev"

var timeNow = time.Now

// KeyringOpener opens the credential store; dir is the file backend
// fallback location.
type KeyringOpener func(dir string) (*credential.Keyring, error)

// Options customizes a command tree. Zero values select the defaults.
type Options struct {
	OpenKeyring KeyringOpener
	LogOutput   io.Writer
}

// cliContext is shared by every command of one invocation.
type cliContext struct {
	opts       Options
	configPath string
	verbose    bool

	cfg     *config.Config
	logger  zerolog.Logger
	app     *app.App
	keyring *credential.Keyring
	untrack func()
}

// NewRootCommand builds the nexxttask command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.OpenKeyring == nil {
		opts.OpenKeyring = credential.Open
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	cc := &cliContext{opts: opts}

	rootCmd := &cobra.Command{
		Use:   "nexxttask",
		Short: "Collaborative task lists with checklists, tags and assignees",
		Long: `nexxttask manages tasks with checklists, tags and assignees.

Run "nexxttask config init" once, then "nexxttask signup" to create an
account. "nexxttask serve" exposes the same data over the HTTP API.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cc.loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cc.configPath, "config", config.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().BoolVarP(&cc.verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(configCmd(cc))
	rootCmd.AddCommand(serveCmd(cc))
	rootCmd.AddCommand(migrateCmd(cc))
	rootCmd.AddCommand(signUpCmd(cc))
	rootCmd.AddCommand(signInCmd(cc))
	rootCmd.AddCommand(signOutCmd(cc))
	rootCmd.AddCommand(whoAmICmd(cc))
	rootCmd.AddCommand(passwordCmd(cc))
	rootCmd.AddCommand(membersCmd(cc))
	rootCmd.AddCommand(taskCmd(cc))
	rootCmd.AddCommand(checklistCmd(cc))
	rootCmd.AddCommand(itemCmd(cc))
	rootCmd.AddCommand(tagCmd(cc))
	rootCmd.AddCommand(assignCmd(cc))
	rootCmd.AddCommand(unassignCmd(cc))
	rootCmd.AddCommand(dashboardCmd(cc))

	return rootCmd
}

// Execute runs the command tree with the default options.
func Execute(ctx context.Context) error {
	return NewRootCommand(Options{}).ExecuteContext(ctx)
}

// loadConfig reads the configuration and sets up logging.
func (cc *cliContext) loadConfig() error {
	cfg, err := config.LoadConfig(cc.configPath)
	if err != nil {
		return err
	}
	cc.cfg = cfg

	logger := app.NewDefaultLogger(cc.opts.LogOutput)
	if !cc.verbose {
		cc.logger = logger.Level(zerolog.Disabled)
		return nil
	}
	cc.logger, err = app.NewApplicationLogger(logger, cfg.Env, cc.opts.LogOutput)
	return err
}

// open validates the configuration and opens the store and the keyring.
func (cc *cliContext) open(ctx context.Context) (*app.App, error) {
	if cc.app != nil {
		return cc.app, nil
	}

	if err := cc.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (run \"nexxttask config init\" to create a config)", err)
	}

	a, err := app.New(ctx, cc.cfg, cc.logger)
	if err != nil {
		return nil, err
	}

	ring, err := cc.opts.OpenKeyring(filepath.Join(filepath.Dir(cc.configPath), "credentials"))
	if err != nil {
		a.Close()
		return nil, err
	}

	cc.app = a
	cc.keyring = ring
	cc.untrack = ring.Track(cc.logger, a.Auth)
	return a, nil
}

// withApp wraps a command so the store and keyring it opens are released
// whether or not it succeeds.
func (cc *cliContext) withApp(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		return errors.Join(err, cc.close())
	}
}

func (cc *cliContext) close() error {
	if cc.app == nil {
		return nil
	}
	cc.untrack()
	var trackErr error
	if err := cc.keyring.TrackErr(); err != nil {
		trackErr = fmt.Errorf("storing session: %w", err)
	}
	err := cc.app.Close()
	cc.app = nil
	return errors.Join(trackErr, err)
}

// actor opens the app and returns a context carrying the signed in user,
// refreshing an expired access token first.
func (cc *cliContext) actor(ctx context.Context) (context.Context, *app.App, error) {
	a, err := cc.open(ctx)
	if err != nil {
		return nil, nil, err
	}

	sess, err := cc.keyring.LoadSession()
	if errors.Is(err, credential.ErrNoSession) {
		return nil, nil, errors.New("not signed in: run \"nexxttask signin\"")
	}
	if err != nil {
		return nil, nil, err
	}

	accessToken := sess.AccessToken
	if sess.AccessTokenExpired(timeNow()) {
		// The tracker stores the rotated pair.
		refreshed, err := a.Auth.Refresh(ctx, services.RefreshParams{
			RefreshToken: sess.RefreshToken,
			Fingerprint:  cc.cfg.Client.Fingerprint,
		})
		if err != nil {
			return nil, nil, sessionError(err)
		}
		accessToken = refreshed.AccessToken
	}

	session, err := a.Auth.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, nil, sessionError(err)
	}

	return services.WithActor(ctx, session.UserID), a, nil
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrSessionExpired),
		errors.Is(err, services.ErrUnauthenticated):
		return fmt.Errorf("session is no longer valid, sign in again: %w", err)
	}
	return err
}
