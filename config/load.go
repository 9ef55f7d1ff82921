package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"options-maker-go/infrastructure/logger"
	"options-maker-go/market"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env         string         `yaml:"env"`
	Log         logger.Config  `yaml:"log"`
	MetricsAddr string         `yaml:"metricsAddr"`
	Exchange    ExchangeConfig `yaml:"exchange"`
	Pricing     PricingConfig  `yaml:"pricing"`
	Quoting     QuotingConfig  `yaml:"quoting"`
	Hedge       HedgeConfig    `yaml:"hedge"`
	Loop        LoopConfig     `yaml:"loop"`
	Stock       string         `yaml:"stock"`
	Options     []OptionConfig `yaml:"options"`
}

// ExchangeConfig 交易所连接/模拟参数。
type ExchangeConfig struct {
	StockMid    float64 `yaml:"stockMid"`    // seed mid for the embedded simulator
	FeedAddr    string  `yaml:"feedAddr"`    // market-data websocket listen address
	LevelVolume int     `yaml:"levelVolume"` // simulated volume per book level
	Seed        int64   `yaml:"seed"`        // simulator RNG seed, 0 = time-based
}

// PricingConfig are the Black-Scholes assumptions.
type PricingConfig struct {
	InterestRate float64 `yaml:"interestRate"`
	Volatility   float64 `yaml:"volatility"`
}

// QuotingConfig shapes the per-instrument quotes.
type QuotingConfig struct {
	Credit        float64 `yaml:"credit"`        // half-spread around theoretical value
	Volume        int     `yaml:"volume"`        // target lots per side
	PositionLimit int     `yaml:"positionLimit"` // symmetric long/short cap
	TickSize      float64 `yaml:"tickSize"`
}

// HedgeConfig controls the delta hedger.
type HedgeConfig struct {
	Enabled       bool `yaml:"enabled"`
	LotSize       int  `yaml:"lotSize"`
	PositionLimit int  `yaml:"positionLimit"`
}

// LoopConfig paces the trade loop.
type LoopConfig struct {
	CycleIntervalMs int     `yaml:"cycleIntervalMs"` // between full cycles
	RequestRate     float64 `yaml:"requestRate"`     // exchange requests per second
}

// OptionConfig is one quoted option series.
type OptionConfig struct {
	ID     string    `yaml:"id"`
	Expiry time.Time `yaml:"expiry"`
	Strike float64   `yaml:"strike"`
	Kind   string    `yaml:"kind"` // call or put
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Log.Level == "" {
		cfg.Log = logger.DefaultConfig()
	}
	if cfg.Loop.CycleIntervalMs == 0 {
		cfg.Loop.CycleIntervalMs = 4000
	}
	if cfg.Loop.RequestRate == 0 {
		// 10 requests/s matches the venue's advertised frequency limit.
		cfg.Loop.RequestRate = 10
	}
	if cfg.Hedge.LotSize == 0 {
		cfg.Hedge.LotSize = 1
	}
	if cfg.Hedge.PositionLimit == 0 {
		cfg.Hedge.PositionLimit = cfg.Quoting.PositionLimit
	}
}

// CycleInterval returns the loop period as a duration.
func (c LoopConfig) CycleInterval() time.Duration {
	return time.Duration(c.CycleIntervalMs) * time.Millisecond
}

// Instruments converts the configured universe into market instruments,
// stock first.
func (c AppConfig) Instruments() []market.Instrument {
	out := make([]market.Instrument, 0, len(c.Options)+1)
	out = append(out, market.Stock(c.Stock))
	for _, o := range c.Options {
		out = append(out, market.Option(o.ID, o.Expiry, o.Strike, market.OptionKind(o.Kind)))
	}
	return out
}

// OptionInstruments converts just the option series.
func (c AppConfig) OptionInstruments() []market.Instrument {
	out := make([]market.Instrument, 0, len(c.Options))
	for _, o := range c.Options {
		out = append(out, market.Option(o.ID, o.Expiry, o.Strike, market.OptionKind(o.Kind)))
	}
	return out
}
