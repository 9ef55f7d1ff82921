// Package hedge flattens aggregate option delta by trading the underlying.
package hedge

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"options-maker-go/exchange"
	"options-maker-go/market"
	"options-maker-go/metrics"
	"options-maker-go/pricing"
)

// Config describes what to hedge and how hard the clamp is.
type Config struct {
	StockID       string
	Options       []market.Instrument
	PositionLimit int // symmetric cap on the stock position
	LotSize       int // hedge order quantities are whole multiples of this
	InterestRate  float64
	Volatility    float64
}

// Hedger trades the stock against the summed delta of the option book.
type Hedger struct {
	client    exchange.Client
	logger    *zap.Logger
	collector *metrics.Collector // optional
	cfg       Config
	now       func() time.Time
}

func New(client exchange.Client, logger *zap.Logger, collector *metrics.Collector, cfg Config) *Hedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LotSize <= 0 {
		cfg.LotSize = 1
	}
	return &Hedger{
		client:    client,
		logger:    logger,
		collector: collector,
		cfg:       cfg,
		now:       time.Now,
	}
}

// NetOptionDelta sums position-weighted Black-Scholes deltas over options.
func NetOptionDelta(options []market.Instrument, positions map[string]int, spot, rate, vol float64, now time.Time) (float64, error) {
	var net float64
	for _, opt := range options {
		position := positions[opt.ID]
		if position == 0 {
			continue
		}
		delta, err := pricing.OptionDelta(opt, spot, rate, vol, now)
		if err != nil {
			return 0, fmt.Errorf("delta for %s: %w", opt.ID, err)
		}
		net += float64(position) * delta
	}
	return net, nil
}

// TargetStockPosition converts a net option delta into the stock position
// that offsets it: rounded to whole lots first, then clamped to the limit.
func TargetStockPosition(netDelta float64, lotSize, positionLimit int) int {
	target := -pricing.RoundToLot(netDelta, lotSize)
	if target > positionLimit {
		target = positionLimit
	}
	if target < -positionLimit {
		target = -positionLimit
	}
	return target
}

// Hedge reads current positions, computes the residual delta exposure and
// submits one aggressive limit order in the stock to close the gap. A stock
// book missing the needed side skips the hedge until the next cycle.
func (h *Hedger) Hedge(spot float64) error {
	positions, err := h.client.GetPositions()
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}
	stockPosition := positions[h.cfg.StockID]

	netDelta, err := NetOptionDelta(h.cfg.Options, positions, spot, h.cfg.InterestRate, h.cfg.Volatility, h.now())
	if err != nil {
		return err
	}
	if h.collector != nil {
		h.collector.NetDelta.Set(netDelta + float64(stockPosition))
	}

	target := TargetStockPosition(netDelta, h.cfg.LotSize, h.cfg.PositionLimit)
	quantity := target - stockPosition
	if quantity == 0 {
		h.logger.Debug("delta position already flat",
			zap.Float64("net_delta", netDelta),
			zap.Int("stock_position", stockPosition))
		return nil
	}

	book, err := h.client.GetLastPriceBook(h.cfg.StockID)
	if err != nil {
		return fmt.Errorf("fetch stock book: %w", err)
	}

	side := exchange.SideBid
	volume := quantity
	var price float64
	if quantity > 0 {
		// Buying stock lifts the best ask.
		if len(book.Asks) == 0 {
			h.logger.Warn("no asks in stock book, skipping hedge")
			return nil
		}
		price = book.Asks[0].Price
	} else {
		// Selling stock hits the best bid.
		if len(book.Bids) == 0 {
			h.logger.Warn("no bids in stock book, skipping hedge")
			return nil
		}
		side = exchange.SideAsk
		volume = -quantity
		price = book.Bids[0].Price
	}

	orderID, err := h.client.InsertOrder(h.cfg.StockID, price, volume, side, exchange.OrderTypeIOC)
	if err != nil {
		return fmt.Errorf("insert hedge order: %w", err)
	}
	h.logger.Info("hedged delta position",
		zap.String("order_id", orderID),
		zap.Float64("net_delta", netDelta),
		zap.Int("stock_position", stockPosition),
		zap.Int("target", target),
		zap.String("side", string(side)),
		zap.Int("volume", volume),
		zap.Float64("price", price))
	if h.collector != nil {
		h.collector.OrdersPlaced.WithLabelValues(string(side)).Inc()
	}
	return nil
}
