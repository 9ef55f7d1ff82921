package sim

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"options-maker-go/exchange"
)

// BookMessage is one feed frame: a top-of-book snapshot for one instrument.
type BookMessage struct {
	Type         string           `json:"type"`
	InstrumentID string           `json:"instrument"`
	Bids         []exchange.Level `json:"bids"`
	Asks         []exchange.Level `json:"asks"`
	Timestamp    time.Time        `json:"ts"`
}

type subscription struct {
	ch chan BookMessage
}

// hub fans book snapshots out to websocket subscribers. Slow subscribers
// drop frames rather than stall the broadcaster.
type hub struct {
	mu   sync.RWMutex
	subs map[*subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*subscription]struct{})}
}

func (h *hub) subscribe(buffer int) *subscription {
	sub := &subscription{ch: make(chan BookMessage, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *hub) unsubscribe(sub *subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.ch)
}

func (h *hub) broadcast(msg BookMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// Feed serves the exchange's books over a websocket endpoint.
type Feed struct {
	exchange *Exchange
	logger   *zap.Logger
	hub      *hub
	upgrader websocket.Upgrader
	interval time.Duration
}

// NewFeed 创建行情推送；interval 为广播周期。
func NewFeed(ex *Exchange, logger *zap.Logger, interval time.Duration) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Feed{
		exchange: ex,
		logger:   logger,
		hub:      newHub(),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		interval: interval,
	}
}

// Run broadcasts snapshots until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, inst := range f.exchange.cfg.Instruments {
				book, err := f.exchange.GetLastPriceBook(inst.ID)
				if err != nil {
					continue
				}
				f.hub.broadcast(BookMessage{
					Type:         "book",
					InstrumentID: book.InstrumentID,
					Bids:         book.Bids,
					Asks:         book.Asks,
					Timestamp:    book.Timestamp,
				})
			}
		}
	}
}

// ServeHTTP upgrades the connection and streams book frames.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := f.hub.subscribe(64)
	defer f.hub.unsubscribe(sub)

	f.logger.Info("feed subscriber connected", zap.String("remote", r.RemoteAddr))
	for msg := range sub.ch {
		if err := conn.WriteJSON(msg); err != nil {
			f.logger.Debug("feed subscriber dropped", zap.Error(err))
			return
		}
	}
}
