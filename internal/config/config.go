package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/danielpatrickdp/trustlens/internal/content"
	"github.com/danielpatrickdp/trustlens/internal/decision"
	"github.com/danielpatrickdp/trustlens/internal/factcheck"
	"github.com/danielpatrickdp/trustlens/internal/model"
)

// #region config

// Config is the process configuration, read from the environment.
type Config struct {
	Addr      string
	DBPath    string
	LogLevel  string
	LogFormat string
	APITokens []string
	RulesPath string

	ModelAddrs    map[content.Domain]string
	ModelTimeout  time.Duration
	ProbeAttempts int

	FactCheckTimeout  time.Duration
	FactCheckCacheTTL time.Duration
	FactCheckRate     float64

	GoogleAPIKey  string
	MBFCAPIKey    string
	MBFCAPIHost   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	ScienceOverride     bool
	ScienceOverrideExpr string
}

// Default returns the configuration with every key unset.
func Default() *Config {
	return &Config{
		Addr:                ":8000",
		DBPath:              "trustlens.db",
		LogLevel:            "info",
		LogFormat:           "json",
		ModelAddrs:          map[content.Domain]string{},
		ModelTimeout:        10 * time.Second,
		ProbeAttempts:       3,
		FactCheckTimeout:    4 * time.Second,
		FactCheckCacheTTL:   60 * time.Minute,
		FactCheckRate:       5,
		MBFCAPIHost:         "mediabiasfactcheck.p.rapidapi.com",
		OpenAIModel:         "gpt-3.5-turbo",
		ScienceOverride:     true,
		ScienceOverrideExpr: decision.DefaultOverrideExpression,
	}
}

// #endregion config

// #region load

// Load reads envFile if it exists, then the environment. Variables already
// set in the environment win over the file. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "failed to load env file: %s", envFile)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a config from a lookup function. Malformed numbers are
// errors rather than silent defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	c := Default()
	e := &envReader{getenv: getenv}

	e.str("TRUSTLENS_ADDR", &c.Addr)
	e.str("TRUSTLENS_DB", &c.DBPath)
	e.str("TRUSTLENS_LOG_LEVEL", &c.LogLevel)
	e.str("TRUSTLENS_LOG_FORMAT", &c.LogFormat)
	e.str("TRUSTLENS_RULES", &c.RulesPath)
	c.APITokens = splitList(getenv("TRUSTLENS_API_TOKENS"))

	for _, d := range content.Domains() {
		if v := strings.TrimSpace(getenv(strings.ToUpper(string(d)) + "_MODEL_ADDR")); v != "" {
			c.ModelAddrs[d] = v
		}
	}
	e.seconds("MODEL_TIMEOUT", &c.ModelTimeout)
	e.integer("MODEL_PROBE_ATTEMPTS", &c.ProbeAttempts)

	e.seconds("FACTCHECK_TIMEOUT", &c.FactCheckTimeout)
	e.minutes("FACTCHECK_CACHE_TTL", &c.FactCheckCacheTTL)
	e.float("FACTCHECK_RATE", &c.FactCheckRate)

	e.str("GOOGLE_API_KEY", &c.GoogleAPIKey)
	e.str("MBFC_API_KEY", &c.MBFCAPIKey)
	e.str("MBFC_API_HOST", &c.MBFCAPIHost)
	e.str("OPENAI_API_KEY", &c.OpenAIAPIKey)
	e.str("OPENAI_MODEL", &c.OpenAIModel)
	e.str("OPENAI_BASE_URL", &c.OpenAIBaseURL)

	e.boolean("SCIENCE_OVERRIDE", &c.ScienceOverride)
	e.str("SCIENCE_OVERRIDE_EXPR", &c.ScienceOverrideExpr)

	if e.err != nil {
		return nil, e.err
	}
	return c, nil
}

// #endregion load

// #region derived

// ModelLoad returns the classifier loading settings.
func (c *Config) ModelLoad() model.LoadConfig {
	return model.LoadConfig{
		Addrs:         c.ModelAddrs,
		Timeout:       c.ModelTimeout,
		ProbeAttempts: c.ProbeAttempts,
	}
}

// FactCheck returns the provider fan-out settings.
func (c *Config) FactCheck() factcheck.Config {
	fc := factcheck.DefaultConfig()
	fc.Timeout = c.FactCheckTimeout
	fc.CacheTTL = c.FactCheckCacheTTL
	fc.RatePerSecond = c.FactCheckRate
	return fc
}

// Policy returns the decision policy settings.
func (c *Config) Policy() decision.PolicyConfig {
	p := decision.DefaultPolicyConfig()
	p.ScienceOverride = c.ScienceOverride
	p.Expression = c.ScienceOverrideExpr
	return p
}

// #endregion derived

// #region env-reader

// envReader records the first parse error and skips unset keys.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) value(key string) (string, bool) {
	v := strings.TrimSpace(e.getenv(key))
	return v, v != "" && e.err == nil
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.value(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		e.err = errors.Errorf("invalid %s: %q", key, v)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		e.err = errors.Errorf("invalid %s: %q", key, v)
		return
	}
	*dst = f
}

func (e *envReader) seconds(key string, dst *time.Duration) {
	e.duration(key, time.Second, dst)
}

func (e *envReader) minutes(key string, dst *time.Duration) {
	e.duration(key, time.Minute, dst)
}

// duration accepts a bare number in unit or a Go duration string ("750ms").
func (e *envReader) duration(key string, unit time.Duration, dst *time.Duration) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
		*dst = time.Duration(f * float64(unit))
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		e.err = errors.Errorf("invalid %s: %q", key, v)
		return
	}
	*dst = d
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.err = errors.Wrapf(err, "invalid %s", key)
		return
	}
	*dst = b
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// #endregion env-reader
