package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/engine"
	"github.com/danielpatrickdp/trustlens/internal/store"
)

// #region score

func (a *app) scoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "Score one text and print the full result",
		ArgsUsage: "[text] (reads stdin when omitted)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Required: true, Usage: "news, review or job"},
			&cli.BoolFlag{Name: "record", Usage: "Store the result in the prediction database"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			domain, err := content.ParseDomain(cmd.String("domain"))
			if err != nil {
				return err
			}
			text := cmd.Args().First()
			if text == "" {
				b, err := io.ReadAll(io.LimitReader(os.Stdin, 1<<20))
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}
			sub, err := content.NewSubmission(domain, text)
			if err != nil {
				return err
			}

			var rec engine.Recorder
			if cmd.Bool("record") {
				db, err := store.Open(a.cfg.DBPath)
				if err != nil {
					return err
				}
				defer db.Close()
				rec = db
			}

			eng, closers, err := buildEngine(ctx, a.cfg, a.logger, rec)
			if err != nil {
				return err
			}
			defer closeAll(closers, a.logger)

			res, err := eng.Evaluate(ctx, sub)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, res)
		},
	}
}

// #endregion score
