package main

import (
	"context"
	"fmt"
	"os"

	"github.com/platinummonkey/gaslink/pkg/cli"
	"github.com/platinummonkey/gaslink/pkg/config"
	"github.com/platinummonkey/gaslink/pkg/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Interactive use only wants warnings unless a level was asked for.
	level := cfg.Observability.LogLevel
	if os.Getenv("GASLINK_LOG_LEVEL") == "" {
		level = observability.WarnLevel
	}

	app := &cli.App{
		Config: cfg,
		Logger: observability.NewLogger(level, os.Stderr),
	}
	if err := cli.Execute(context.Background(), app, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, cli.UserMessage(err))
		os.Exit(1)
	}
}
