package config

import (
	"errors"
	"fmt"

	"options-maker-go/market"
)

// Validate ensures required fields are present and consistent.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Stock == "" {
		return errors.New("stock is required")
	}
	if len(cfg.Options) == 0 {
		return errors.New("options config is required")
	}
	for _, o := range cfg.Options {
		if o.ID == "" {
			return errors.New("option id is required")
		}
		if o.Expiry.IsZero() {
			return fmt.Errorf("option %s expiry is required", o.ID)
		}
		if o.Strike <= 0 {
			return fmt.Errorf("option %s strike must be > 0", o.ID)
		}
		kind := market.OptionKind(o.Kind)
		if kind != market.KindCall && kind != market.KindPut {
			return fmt.Errorf("option %s kind must be %q or %q, got %q", o.ID, market.KindCall, market.KindPut, o.Kind)
		}
	}
	if cfg.Quoting.Credit <= 0 {
		return errors.New("quoting.credit must be > 0")
	}
	if cfg.Quoting.Volume <= 0 {
		return errors.New("quoting.volume must be > 0")
	}
	if cfg.Quoting.PositionLimit <= 0 {
		return errors.New("quoting.positionLimit must be > 0")
	}
	if cfg.Quoting.TickSize <= 0 {
		return errors.New("quoting.tickSize must be > 0")
	}
	if cfg.Pricing.Volatility <= 0 {
		return errors.New("pricing.volatility must be > 0")
	}
	if cfg.Loop.CycleIntervalMs < 0 {
		return errors.New("loop.cycleIntervalMs must be >= 0")
	}
	if cfg.Loop.RequestRate < 0 {
		return errors.New("loop.requestRate must be >= 0")
	}
	if cfg.Hedge.Enabled {
		if cfg.Hedge.LotSize <= 0 {
			return errors.New("hedge.lotSize must be > 0")
		}
		if cfg.Hedge.PositionLimit <= 0 {
			return errors.New("hedge.positionLimit must be > 0")
		}
	}
	return nil
}
