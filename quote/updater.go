// Package quote re-quotes a single instrument around its theoretical value.
package quote

import (
	"fmt"

	"go.uber.org/zap"

	"options-maker-go/exchange"
	"options-maker-go/metrics"
	"options-maker-go/pricing"
)

// Params control one quote update. Credit is the half-spread; Volume the
// target lots per side; PositionLimit the symmetric long/short cap.
type Params struct {
	Credit        float64
	Volume        int
	PositionLimit int
	TickSize      float64
}

// Prices returns the bid/ask pair quoted around theo. The bid rounds down
// and the ask rounds up, so rounding never tightens the quoted spread.
func Prices(theo, credit, tickSize float64) (bid, ask float64) {
	bid = pricing.RoundDownToTick(theo-credit, tickSize)
	ask = pricing.RoundUpToTick(theo+credit, tickSize)
	return bid, ask
}

// Volumes clamps the target volume per side so a full fill can never push
// the position beyond the limit. A side with no room gets volume 0.
func Volumes(position, positionLimit, target int) (bidVolume, askVolume int) {
	roomToBuy := positionLimit - position
	roomToSell := positionLimit + position

	bidVolume = min(target, roomToBuy)
	askVolume = min(target, roomToSell)
	if bidVolume < 0 {
		bidVolume = 0
	}
	if askVolume < 0 {
		askVolume = 0
	}
	return bidVolume, askVolume
}

// Updater owns the quote-replacement sequence for instruments on one
// exchange session.
type Updater struct {
	client    exchange.Client
	logger    *zap.Logger
	collector *metrics.Collector // optional
}

func NewUpdater(client exchange.Client, logger *zap.Logger, collector *metrics.Collector) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{client: client, logger: logger, collector: collector}
}

// UpdateQuotes replaces the outstanding quotes in instrumentID:
//  1. report fills since the previous poll
//  2. pull every outstanding order
//  3. quote bid/ask around theo, sized against the position limit
//
// Cancellation always completes before the new orders go in, and sizing
// uses a position read taken after the pull.
func (u *Updater) UpdateQuotes(instrumentID string, theo float64, p Params) error {
	trades, err := u.client.PollNewTrades(instrumentID)
	if err != nil {
		return fmt.Errorf("poll trades for %s: %w", instrumentID, err)
	}
	for _, t := range trades {
		u.logger.Info("traded since last period",
			zap.String("instrument", instrumentID),
			zap.String("side", string(t.Side)),
			zap.Int("volume", t.Volume),
			zap.Float64("price", t.Price))
		if u.collector != nil {
			u.collector.FillsSeen.Inc()
		}
	}

	outstanding, err := u.client.GetOutstandingOrders(instrumentID)
	if err != nil {
		return fmt.Errorf("list outstanding orders for %s: %w", instrumentID, err)
	}
	for orderID, ord := range outstanding {
		u.logger.Debug("deleting old order",
			zap.String("instrument", instrumentID),
			zap.String("order_id", orderID),
			zap.String("side", string(ord.Side)),
			zap.Int("volume", ord.Volume),
			zap.Float64("price", ord.Price))
		if err := u.client.DeleteOrder(instrumentID, orderID); err != nil {
			return fmt.Errorf("delete order %s in %s: %w", orderID, instrumentID, err)
		}
		if u.collector != nil {
			u.collector.OrdersCanceled.Inc()
		}
	}

	bidPrice, askPrice := Prices(theo, p.Credit, p.TickSize)

	positions, err := u.client.GetPositions()
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}
	position := positions[instrumentID]
	if u.collector != nil {
		u.collector.Position.WithLabelValues(instrumentID).Set(float64(position))
	}

	bidVolume, askVolume := Volumes(position, p.PositionLimit, p.Volume)

	if bidVolume > 0 {
		if err := u.insert(instrumentID, bidPrice, bidVolume, exchange.SideBid); err != nil {
			return err
		}
	}
	if askVolume > 0 {
		if err := u.insert(instrumentID, askPrice, askVolume, exchange.SideAsk); err != nil {
			return err
		}
	}
	if u.collector != nil {
		u.collector.QuotesUpdated.Inc()
	}
	return nil
}

func (u *Updater) insert(instrumentID string, price float64, volume int, side exchange.Side) error {
	orderID, err := u.client.InsertOrder(instrumentID, price, volume, side, exchange.OrderTypeLimit)
	if err != nil {
		return fmt.Errorf("insert %s order in %s: %w", side, instrumentID, err)
	}
	u.logger.Debug("inserted limit order",
		zap.String("instrument", instrumentID),
		zap.String("order_id", orderID),
		zap.String("side", string(side)),
		zap.Int("volume", volume),
		zap.Float64("price", price))
	if u.collector != nil {
		u.collector.OrdersPlaced.WithLabelValues(string(side)).Inc()
	}
	return nil
}
