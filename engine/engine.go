// Package engine runs the quoting cycle across the configured instruments.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"options-maker-go/gateway"
	"options-maker-go/hedge"
	"options-maker-go/market"
	"options-maker-go/metrics"
	"options-maker-go/pricing"
	"options-maker-go/quote"
)

// State 引擎状态
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config 引擎配置
type Config struct {
	StockID       string
	Options       []market.Instrument
	Quote         quote.Params
	InterestRate  float64
	Volatility    float64
	CycleInterval time.Duration // full cycle period, default 4s
}

// Components are the injected collaborators.
type Components struct {
	Market    *market.Service
	Quoter    *quote.Updater
	Hedger    *hedge.Hedger // optional
	Limiter   gateway.RateLimiter
	Logger    *zap.Logger
	Collector *metrics.Collector // optional
}

// Statistics 引擎统计信息
type Statistics struct {
	StartTime     time.Time
	TotalCycles   int64
	SkippedCycles int64
	TotalErrors   int64
	LastCycleTime time.Time
}

// Engine drives the fixed-interval quote/hedge loop.
type Engine struct {
	cfg Config

	marketData *market.Service
	quoter     *quote.Updater
	hedger     *hedge.Hedger
	limiter    gateway.RateLimiter
	logger     *zap.Logger
	collector  *metrics.Collector

	mu     sync.RWMutex
	state  State
	params quote.Params
	stats  Statistics

	stopChan chan struct{}
	doneChan chan struct{}

	now func() time.Time
}

// New validates the wiring and builds an idle engine.
func New(cfg Config, components Components) (*Engine, error) {
	if cfg.StockID == "" {
		return nil, errors.New("stock id is required")
	}
	if len(cfg.Options) == 0 {
		return nil, errors.New("at least one option is required")
	}
	if cfg.Quote.TickSize <= 0 {
		return nil, errors.New("quote tick size must be > 0")
	}
	if cfg.Quote.Credit <= 0 {
		return nil, errors.New("quote credit must be > 0")
	}
	if components.Market == nil {
		return nil, errors.New("market service is required")
	}
	if components.Quoter == nil {
		return nil, errors.New("quoter is required")
	}
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = 4 * time.Second
	}
	if components.Limiter == nil {
		components.Limiter = gateway.NopLimiter{}
	}
	if components.Logger == nil {
		components.Logger = zap.NewNop()
	}

	return &Engine{
		cfg:        cfg,
		marketData: components.Market,
		quoter:     components.Quoter,
		hedger:     components.Hedger,
		limiter:    components.Limiter,
		logger:     components.Logger,
		collector:  components.Collector,
		state:      StateIdle,
		params:     cfg.Quote,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		now:        time.Now,
	}, nil
}

// Start launches the trade loop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateIdle {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("engine already started (state: %s)", state)
	}
	e.state = StateRunning
	e.stats.StartTime = e.now()
	e.mu.Unlock()

	e.logger.Info("trade loop starting",
		zap.String("stock", e.cfg.StockID),
		zap.Int("options", len(e.cfg.Options)),
		zap.Duration("cycle_interval", e.cfg.CycleInterval))

	go e.run(ctx)
	return nil
}

// Stop signals the loop and waits for it to drain.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.state != StateRunning {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("engine not running (state: %s)", state)
	}
	e.state = StateStopped
	e.mu.Unlock()

	close(e.stopChan)
	select {
	case <-e.doneChan:
	case <-time.After(10 * time.Second):
		e.logger.Warn("timeout waiting for trade loop to stop")
	}
	e.logger.Info("trade loop stopped")
	return nil
}

// SetQuoteParams swaps the per-cycle quoting parameters; the config hot
// reloader calls this when credit or volume change on disk.
func (e *Engine) SetQuoteParams(p quote.Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p.TickSize <= 0 || p.Credit <= 0 {
		return
	}
	e.params = p
	e.logger.Info("quote parameters updated",
		zap.Float64("credit", p.Credit),
		zap.Int("volume", p.Volume),
		zap.Int("position_limit", p.PositionLimit))
}

func (e *Engine) quoteParams() quote.Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// GetState returns the engine state.
func (e *Engine) GetState() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// GetStatistics returns a copy of the loop counters.
func (e *Engine) GetStatistics() Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.doneChan)

	// Fire the first cycle immediately, then settle into the fixed interval.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("context done, stopping trade loop")
			return
		case <-e.stopChan:
			return
		case <-timer.C:
			e.cycle()
			timer.Reset(e.cfg.CycleInterval)
		}
	}
}

// cycle prices and re-quotes every option, then hedges once.
func (e *Engine) cycle() {
	started := e.now()
	e.mu.Lock()
	e.stats.TotalCycles++
	e.stats.LastCycleTime = started
	e.mu.Unlock()

	stockValue, ok := e.marketData.Midpoint(e.cfg.StockID)
	if !ok {
		e.logger.Warn("stock book is empty on bid or ask side, skipping cycle",
			zap.String("stock", e.cfg.StockID))
		e.mu.Lock()
		e.stats.SkippedCycles++
		e.mu.Unlock()
		if e.collector != nil {
			e.collector.CyclesSkipped.Inc()
		}
		return
	}
	if e.collector != nil {
		e.collector.StockMid.Set(stockValue)
	}

	params := e.quoteParams()
	for _, option := range e.cfg.Options {
		e.limiter.Wait()

		theo, err := pricing.OptionValue(option, stockValue, e.cfg.InterestRate, e.cfg.Volatility, e.now())
		if err != nil {
			e.recordError(option.ID, "price option", err)
			continue
		}
		e.logger.Debug("updating instrument",
			zap.String("instrument", option.ID),
			zap.Float64("theoretical_value", theo),
			zap.Float64("stock_value", stockValue))

		if err := e.quoter.UpdateQuotes(option.ID, theo, params); err != nil {
			e.recordError(option.ID, "update quotes", err)
			continue
		}
	}

	if e.hedger != nil {
		if err := e.hedger.Hedge(stockValue); err != nil {
			e.recordError(e.cfg.StockID, "hedge delta position", err)
		}
	}

	if e.collector != nil {
		e.collector.Cycles.Inc()
		e.collector.CycleDuration.Observe(e.now().Sub(started).Seconds())
	}
}

// recordError logs and counts a per-instrument failure. One bad instrument
// does not abort the rest of the cycle.
func (e *Engine) recordError(instrumentID, action string, err error) {
	e.logger.Error("instrument update failed",
		zap.String("instrument", instrumentID),
		zap.String("action", action),
		zap.Error(err))
	e.mu.Lock()
	e.stats.TotalErrors++
	e.mu.Unlock()
	if e.collector != nil {
		e.collector.Errors.Inc()
	}
}
