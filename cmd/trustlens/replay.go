package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/danielpatrickdp/trustlens/internal/replay"
)

// #region replay

func (a *app) replayCmd() *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "Run a regression fixture through the engine with stubbed models and providers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "fixture", Required: true, Usage: "Path to fixture JSON"},
			&cli.BoolFlag{Name: "verbose", Usage: "Print every case, not only failures"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := replay.LoadFixture(cmd.String("fixture"))
			if err != nil {
				return err
			}
			opts := replay.DefaultOptions()
			opts.Policy = a.cfg.Policy()
			if opts.Rules, err = loadRules(a.cfg); err != nil {
				return err
			}

			results, err := replay.Run(ctx, f, opts)
			if err != nil {
				return err
			}
			for _, r := range results {
				if !r.Passed() || cmd.Bool("verbose") {
					if err := printJSON(os.Stdout, r); err != nil {
						return err
					}
				}
			}
			s := replay.Summarize(results)
			if err := printJSON(os.Stdout, s); err != nil {
				return err
			}
			if s.Failed > 0 {
				return fmt.Errorf("%d of %d cases failed", s.Failed, s.Total)
			}
			return nil
		},
	}
}

// #endregion replay
