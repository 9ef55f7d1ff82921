package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-maker-go/market"
)

const validConfig = `
env: test
log:
  level: debug
  format: console
stock: BMW
options:
  - id: BMW-C75-DEC
    expiry: 2026-12-11T12:00:00Z
    strike: 75
    kind: call
  - id: BMW-P75-DEC
    expiry: 2026-12-11T12:00:00Z
    strike: 75
    kind: put
exchange:
  stockMid: 75.0
  seed: 42
pricing:
  interestRate: 0.0
  volatility: 3.0
quoting:
  credit: 0.15
  volume: 3
  positionLimit: 100
  tickSize: 0.10
hedge:
  enabled: true
  lotSize: 1
  positionLimit: 100
loop:
  cycleIntervalMs: 4000
  requestRate: 10
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "BMW", cfg.Stock)
	require.Len(t, cfg.Options, 2)
	assert.Equal(t, "BMW-C75-DEC", cfg.Options[0].ID)
	assert.Equal(t, 75.0, cfg.Options[0].Strike)
	assert.Equal(t, "call", cfg.Options[0].Kind)
	assert.Equal(t, time.Date(2026, 12, 11, 12, 0, 0, 0, time.UTC), cfg.Options[0].Expiry)

	assert.Equal(t, 0.15, cfg.Quoting.Credit)
	assert.Equal(t, 3, cfg.Quoting.Volume)
	assert.Equal(t, 100, cfg.Quoting.PositionLimit)
	assert.Equal(t, 3.0, cfg.Pricing.Volatility)
	assert.Equal(t, 4*time.Second, cfg.Loop.CycleInterval())
	assert.True(t, cfg.Hedge.Enabled)
}

func TestLoadAppliesDefaults(t *testing.T) {
	minimal := `
env: test
stock: BMW
options:
  - id: BMW-C75-DEC
    expiry: 2026-12-11T12:00:00Z
    strike: 75
    kind: call
pricing:
  volatility: 3.0
quoting:
  credit: 0.15
  volume: 3
  positionLimit: 100
  tickSize: 0.10
`
	cfg, err := Load(writeTempConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Loop.CycleIntervalMs)
	assert.Equal(t, 10.0, cfg.Loop.RequestRate)
	assert.Equal(t, 1, cfg.Hedge.LotSize)
	// The hedge clamp falls back to the quoting limit.
	assert.Equal(t, 100, cfg.Hedge.PositionLimit)
	assert.NotEmpty(t, cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeTempConfig(t, "stock: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() AppConfig {
		cfg, err := Load(writeTempConfig(t, validConfig))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"missing env", func(c *AppConfig) { c.Env = "" }},
		{"missing stock", func(c *AppConfig) { c.Stock = "" }},
		{"no options", func(c *AppConfig) { c.Options = nil }},
		{"option without id", func(c *AppConfig) { c.Options[0].ID = "" }},
		{"option without expiry", func(c *AppConfig) { c.Options[0].Expiry = time.Time{} }},
		{"option bad strike", func(c *AppConfig) { c.Options[0].Strike = 0 }},
		{"option bad kind", func(c *AppConfig) { c.Options[0].Kind = "straddle" }},
		{"zero credit", func(c *AppConfig) { c.Quoting.Credit = 0 }},
		{"zero volume", func(c *AppConfig) { c.Quoting.Volume = 0 }},
		{"zero position limit", func(c *AppConfig) { c.Quoting.PositionLimit = 0 }},
		{"zero tick size", func(c *AppConfig) { c.Quoting.TickSize = 0 }},
		{"zero volatility", func(c *AppConfig) { c.Pricing.Volatility = 0 }},
		{"negative request rate", func(c *AppConfig) { c.Loop.RequestRate = -1 }},
		{"hedge enabled bad lot", func(c *AppConfig) { c.Hedge.LotSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestInstruments(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validConfig))
	require.NoError(t, err)

	all := cfg.Instruments()
	require.Len(t, all, 3)
	assert.Equal(t, market.TypeStock, all[0].Type)
	assert.Equal(t, "BMW", all[0].ID)

	options := cfg.OptionInstruments()
	require.Len(t, options, 2)
	assert.Equal(t, market.KindCall, options[0].Kind)
	assert.Equal(t, market.KindPut, options[1].Kind)
	for _, o := range options {
		assert.Equal(t, market.TypeOption, o.Type)
	}
}
