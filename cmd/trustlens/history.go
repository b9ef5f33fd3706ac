package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/store"
)

// #region history

func (a *app) historyCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show stored predictions",
		ArgsUsage: "[prediction-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Usage: "Filter by domain"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum rows"},
			&cli.BoolFlag{Name: "stats", Usage: "Print label counts per domain instead"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			db, err := store.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if id := cmd.Args().First(); id != "" {
				p, err := db.Get(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(os.Stdout, p)
			}
			if cmd.Bool("stats") {
				stats, err := db.Stats(ctx)
				if err != nil {
					return err
				}
				return printJSON(os.Stdout, stats)
			}

			var domain content.Domain
			if v := cmd.String("domain"); v != "" {
				if domain, err = content.ParseDomain(v); err != nil {
					return err
				}
			}
			list, err := db.Recent(ctx, domain, cmd.Int("limit"))
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, list)
		},
	}
}

// #endregion history
