package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joeycumines/adscribe/internal/api"
	"github.com/joeycumines/adscribe/internal/config"
	"github.com/joeycumines/adscribe/internal/session"
)

// LoginCommand authenticates against the generation service and persists
// the issued session token.
type LoginCommand struct {
	*BaseCommand
	config *config.Config

	username string
	password string
	verbose  bool
}

// NewLoginCommand creates a new login command.
func NewLoginCommand(cfg *config.Config) *LoginCommand {
	return &LoginCommand{
		BaseCommand: NewBaseCommand(
			"login",
			"Authenticate and store a session token",
			"login -u <username> -p <password>",
		),
		config: cfg,
	}
}

// SetupFlags configures the login flags.
func (c *LoginCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "u", "", "username")
	fs.StringVar(&c.password, "p", "", "password")
	fs.BoolVar(&c.verbose, "verbose", false, "log request details to stderr")
}

// Execute performs the login.
func (c *LoginCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	if strings.TrimSpace(c.username) == "" || strings.TrimSpace(c.password) == "" {
		_, _ = fmt.Fprintln(stderr, "both -u and -p are required")
		return fmt.Errorf("missing credentials")
	}

	settings := c.config.Settings()
	store, err := defaultSessionStore()
	if err != nil {
		return err
	}

	var opts []api.Option
	if c.verbose {
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, api.WithLogger(logger))
	}

	client := api.New(settings.APIBaseURL, store, opts...)
	if err := client.Login(context.Background(), c.username, c.password); err != nil {
		var apiErr *api.APIError
		switch {
		case errors.As(err, &apiErr):
			_, _ = fmt.Fprintf(stderr, "Login failed: %s\n", apiErr.Message)
		case errors.Is(err, api.ErrNetwork):
			_, _ = fmt.Fprintf(stderr, "Could not reach %s; is the backend running?\n", settings.APIBaseURL)
		}
		return err
	}

	_, _ = fmt.Fprintln(stdout, "Logged in.")
	return nil
}

// LogoutCommand discards the stored session token.
type LogoutCommand struct {
	*BaseCommand
}

// NewLogoutCommand creates a new logout command.
func NewLogoutCommand() *LogoutCommand {
	return &LogoutCommand{
		BaseCommand: NewBaseCommand(
			"logout",
			"Discard the stored session token",
			"logout",
		),
	}
}

// Execute clears the session.
func (c *LogoutCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	store, err := defaultSessionStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, "Logged out.")
	return nil
}

func defaultSessionStore() (session.Store, error) {
	path, err := session.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolving session path: %w", err)
	}
	return session.NewFileStore(path), nil
}
