package main

import (
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"tailsift/internal/app"
	"tailsift/internal/app/cli"
	"tailsift/internal/config"
	"tailsift/internal/config/logger"
)

// main is the entry point for the application
func main() {
	os.Exit(runApp(os.Args[1:]))
}

// runApp contains the main application logic
func runApp(args []string) int {
	opts, err := cli.Parse(args)
	if err != nil {
		return 1
	}

	if opts.Help {
		return 0
	}

	if opts.Version {
		fmt.Printf("tailsift v%s\n", config.Version)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tailsift: %v\n", err)
		return 1
	}

	application := createApp(cfg, opts)
	application.Run()

	return 0
}

// loadConfig loads the configuration file and applies flag overrides
func loadConfig(opts *cli.Options) (*config.Config, error) {
	cfg, err := config.LoadFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	opts.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// createApp creates the FX application with the given config and options
func createApp(cfg *config.Config, opts *cli.Options) *fx.App {
	return fx.New(
		fx.WithLogger(createFxLogger(cfg)),
		fx.Supply(cfg, opts),
		app.Module,
	)
}

// createFxLogger returns an FX logger based on the config
func createFxLogger(cfg *config.Config) func() fxevent.Logger {
	return func() fxevent.Logger {
		if cfg.Logging.Level == logger.DebugLevel {
			return &fxevent.ConsoleLogger{W: os.Stderr}
		}

		return fxevent.NopLogger
	}
}
