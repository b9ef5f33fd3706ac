package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/danielpatrickdp/trustlens/internal/httpapi"
	"github.com/danielpatrickdp/trustlens/internal/store"
)

// #region serve

func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Overrides TRUSTLENS_ADDR"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if len(a.cfg.APITokens) == 0 {
				return errors.New("TRUSTLENS_API_TOKENS must list at least one bearer token")
			}
			addr := a.cfg.Addr
			if v := cmd.String("addr"); v != "" {
				addr = v
			}

			db, err := store.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			eng, closers, err := buildEngine(ctx, a.cfg, a.logger, db)
			if err != nil {
				return err
			}
			defer closeAll(closers, a.logger)

			if len(eng.Available()) == 0 {
				a.logger.Warn("no classifier loaded; every prediction will answer 503")
			}

			srv := httpapi.NewServer(httpapi.Options{
				Engine:  eng,
				History: db,
				Tokens:  a.cfg.APITokens,
				Logger:  a.logger,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
}

// #endregion serve
