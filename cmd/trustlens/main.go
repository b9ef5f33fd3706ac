package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/danielpatrickdp/trustlens/internal/config"
	"github.com/danielpatrickdp/trustlens/internal/logging"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

// #region main

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

// #endregion main

// #region app

// app carries what the root Before hook resolves for every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newApp() *cli.Command {
	a := &app{}
	return &cli.Command{
		Name:    "trustlens",
		Usage:   "Multi-signal credibility scoring for news, reviews and job posts",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Optional dotenv file loaded before the environment",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Overrides TRUSTLENS_LOG_LEVEL [debug, info, warn, error]",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Overrides TRUSTLENS_DB",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.Load(cmd.String("env-file"))
			if err != nil {
				return ctx, err
			}
			if v := cmd.String("log-level"); v != "" {
				cfg.LogLevel = v
			}
			if v := cmd.String("db"); v != "" {
				cfg.DBPath = v
			}
			a.cfg = cfg
			a.logger = logging.SetDefault(cfg.LogLevel, cfg.LogFormat)
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.serveCmd(),
			a.scoreCmd(),
			a.replayCmd(),
			a.historyCmd(),
		},
	}
}

// #endregion app

// #region output

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// #endregion output
