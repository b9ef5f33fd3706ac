package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielpatrickdp/trustlens/internal/config"
	"github.com/danielpatrickdp/trustlens/internal/decision"
	"github.com/danielpatrickdp/trustlens/internal/engine"
	"github.com/danielpatrickdp/trustlens/internal/factcheck"
	"github.com/danielpatrickdp/trustlens/internal/model"
	"github.com/danielpatrickdp/trustlens/internal/rules"
)

// #region wiring

// loadRules returns the YAML rule set when configured, else the defaults.
func loadRules(cfg *config.Config) (rules.RuleSet, error) {
	if cfg.RulesPath == "" {
		return rules.DefaultRuleSet(), nil
	}
	return rules.LoadFile(cfg.RulesPath)
}

// providers builds the fact-check providers that have credentials, in
// fixed order: Google, MBFC, then the optional LLM.
func providers(cfg *config.Config, client *http.Client) []factcheck.Provider {
	var out []factcheck.Provider
	if cfg.GoogleAPIKey != "" {
		out = append(out, factcheck.NewGoogle(cfg.GoogleAPIKey, client))
	}
	if cfg.MBFCAPIKey != "" {
		out = append(out, factcheck.NewMBFC(cfg.MBFCAPIKey, cfg.MBFCAPIHost, client))
	}
	if cfg.OpenAIAPIKey != "" {
		out = append(out, factcheck.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL))
	}
	return out
}

// buildEngine loads models and wires the scoring engine. The returned
// closers release classifier connections.
func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, rec engine.Recorder) (*engine.Engine, []io.Closer, error) {
	set, err := loadRules(cfg)
	if err != nil {
		return nil, nil, err
	}
	policy, err := decision.NewPolicy(cfg.Policy())
	if err != nil {
		return nil, nil, err
	}

	registry, closers := model.Load(ctx, cfg.ModelLoad(), logger)

	provs := providers(cfg, &http.Client{})
	checker := factcheck.NewChecker(cfg.FactCheck(), logger, provs...)
	logger.Info("fact-check providers configured", "providers", checker.Providers())

	eng, err := engine.New(engine.Options{
		Registry: registry,
		Rules:    rules.NewEngine(set),
		Checker:  checker,
		Policy:   policy,
		Recorder: rec,
		Logger:   logger,
	})
	if err != nil {
		closeAll(closers, logger)
		return nil, nil, err
	}
	return eng, closers, nil
}

func closeAll(closers []io.Closer, logger *slog.Logger) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("close", "error", err)
		}
	}
}

// #endregion wiring
