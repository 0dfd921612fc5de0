// Command goview renders templates from a directory through the go-view
// engine registry.
//
//	goview render --root ./views --layout layouts/main.html pages/index.html
//	goview engines
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	_ "github.com/goliatone/go-view/pkg/engines/all"
)

const name = "goview"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Render templates through interchangeable engines",
		Version:               fmt.Sprintf("%s (%s)", version, commit),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn or error",
				Sources: cli.EnvVars("GOVIEW_LOG_LEVEL"),
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML file with adapter priorities and renderer options",
				Sources: cli.EnvVars("GOVIEW_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			renderCmd(),
			enginesCmd(),
		},
	}
}
