package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/joeycumines/adscribe/internal/command"
	"github.com/joeycumines/adscribe/internal/config"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env in the working directory can supply ADSCRIBE_* overrides;
	// absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		cfg = config.NewConfig()
	}

	registry := command.NewRegistry()

	helpCmd := command.NewHelpCommand(registry)
	registry.Register(helpCmd)
	registry.Register(command.NewVersionCommand(version))
	configPath, _ := config.GetConfigPath()
	registry.Register(command.NewConfigCommand(cfg, configPath))
	registry.Register(command.NewLoginCommand(cfg))
	registry.Register(command.NewLogoutCommand())
	registry.Register(command.NewChatCommand(cfg))

	if len(os.Args) < 2 {
		// No command specified; default to the chat surface.
		chatCmd, err := registry.Get("chat")
		if err != nil {
			return err
		}
		return chatCmd.Execute(nil, os.Stdout, os.Stderr)
	}

	cmdName := os.Args[1]
	if cmdName == "-h" || cmdName == "--help" {
		return helpCmd.Execute([]string{}, os.Stdout, os.Stderr)
	}

	cmd, err := registry.Get(cmdName)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmdName)
		_, _ = fmt.Fprintln(os.Stderr, "Use 'adscribe help' to see available commands.")
		return err
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ExitOnError)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s\n", cmd.Usage())
		_, _ = fmt.Fprintf(os.Stderr, "\n%s\n\n", cmd.Description())
		_, _ = fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}

	cmd.SetupFlags(fs)
	if err := fs.Parse(os.Args[2:]); err != nil {
		return err
	}

	return cmd.Execute(fs.Args(), os.Stdout, os.Stderr)
}
