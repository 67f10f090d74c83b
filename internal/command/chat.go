package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/adscribe/internal/api"
	"github.com/joeycumines/adscribe/internal/chat"
	"github.com/joeycumines/adscribe/internal/config"
	"github.com/joeycumines/adscribe/internal/dictation"
)

// ChatCommand runs the interactive chat surface.
type ChatCommand struct {
	*BaseCommand
	config *config.Config
}

// NewChatCommand creates a new chat command.
func NewChatCommand(cfg *config.Config) *ChatCommand {
	return &ChatCommand{
		BaseCommand: NewBaseCommand(
			"chat",
			"Open the interactive ad generation chat",
			"chat",
		),
		config: cfg,
	}
}

// Execute starts the terminal UI and blocks until it exits.
func (c *ChatCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}

	settings := c.config.Settings()
	store, err := defaultSessionStore()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(c.config)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := []api.Option{api.WithLogger(logger)}
	if !settings.AuthRequired {
		opts = append(opts, api.WithoutAuth())
	}
	client := api.New(settings.APIBaseURL, store, opts...)

	var dict *dictation.Adapter
	if settings.DictationURL != "" {
		dict = dictation.New(settings.DictationURL)
		dict.SetLogger(logger)
	}

	model := chat.New(client, store, dict, settings)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}

// newLogger builds the file-backed logger for the session. The UI owns the
// terminal, so logs only ever go to a file; with no file configured they
// are discarded.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	path := os.Getenv("ADSCRIBE_LOG")
	if path == "" {
		path, _ = cfg.GetGlobalOption("log-file")
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	level := slog.LevelInfo
	if v, ok := cfg.GetGlobalOption("log-level"); ok {
		switch v {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}
