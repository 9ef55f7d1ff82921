// Package sim provides an in-memory options exchange for local runs and
// tests. External participants are simulated by a random-walk stock book
// and option books quoted off Black-Scholes.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"options-maker-go/exchange"
	"options-maker-go/market"
	"options-maker-go/pricing"
)

// Config seeds the simulated market.
type Config struct {
	Instruments  []market.Instrument
	StockMid     float64 // starting stock midpoint
	TickSize     float64
	Spread       float64 // half-spread quoted by simulated participants
	LevelVolume  int     // volume per book level
	InterestRate float64
	Volatility   float64
	Seed         int64
}

type restingOrder struct {
	order exchange.Order
}

// Exchange implements exchange.Client against in-memory state.
type Exchange struct {
	mu        sync.Mutex
	cfg       Config
	connected bool
	stockMid  float64
	rng       *rand.Rand
	now       func() time.Time

	books     map[string]exchange.PriceBook
	resting   map[string]map[string]*restingOrder // instrument -> order id -> order
	positions map[string]int
	pending   map[string][]exchange.Trade // fills not yet polled
	nextID    int
}

func NewExchange(cfg Config) *Exchange {
	if cfg.TickSize <= 0 {
		cfg.TickSize = 0.10
	}
	if cfg.Spread <= 0 {
		cfg.Spread = 2 * cfg.TickSize
	}
	if cfg.LevelVolume <= 0 {
		cfg.LevelVolume = 50
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e := &Exchange{
		cfg:       cfg,
		stockMid:  cfg.StockMid,
		rng:       rand.New(rand.NewSource(seed)),
		now:       time.Now,
		books:     make(map[string]exchange.PriceBook),
		resting:   make(map[string]map[string]*restingOrder),
		positions: make(map[string]int),
		pending:   make(map[string][]exchange.Trade),
	}
	for _, inst := range cfg.Instruments {
		e.resting[inst.ID] = make(map[string]*restingOrder)
		e.positions[inst.ID] = 0
	}
	return e
}

// Connect establishes the session and builds the initial books.
func (e *Exchange) Connect() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connected = true
	e.rebuildBooks()
	return nil
}

func (e *Exchange) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connected = false
	return nil
}

// Drive advances the simulated market until ctx is cancelled: the stock mid
// random-walks, books are re-quoted and crossing resting orders fill.
func (e *Exchange) Drive(ctx context.Context, step time.Duration) {
	if step <= 0 {
		step = 500 * time.Millisecond
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Step()
		}
	}
}

// Step performs one market move. Exported so tests can drive deterministically.
func (e *Exchange) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.connected {
		return
	}
	// Random walk of at most two ticks per step, floored well above zero.
	e.stockMid += float64(e.rng.Intn(5)-2) * e.cfg.TickSize
	if e.stockMid < 10*e.cfg.TickSize {
		e.stockMid = 10 * e.cfg.TickSize
	}
	e.rebuildBooks()
	e.matchResting()
}

// rebuildBooks re-quotes the simulated participants. Lock held.
func (e *Exchange) rebuildBooks() {
	now := e.now()
	for _, inst := range e.cfg.Instruments {
		mid := e.stockMid
		if inst.Type == market.TypeOption {
			theo, err := pricing.OptionValue(inst, e.stockMid, e.cfg.InterestRate, e.cfg.Volatility, now)
			if err != nil || theo <= 0 {
				// Unpriceable contracts trade with an empty book.
				e.books[inst.ID] = exchange.PriceBook{InstrumentID: inst.ID, Timestamp: now}
				continue
			}
			mid = theo
		}
		bestBid := pricing.RoundDownToTick(mid-e.cfg.Spread, e.cfg.TickSize)
		bestAsk := pricing.RoundUpToTick(mid+e.cfg.Spread, e.cfg.TickSize)
		book := exchange.PriceBook{InstrumentID: inst.ID, Timestamp: now}
		for i := 0; i < 3; i++ {
			bid := bestBid - float64(i)*e.cfg.TickSize
			if bid > 0 {
				book.Bids = append(book.Bids, exchange.Level{Price: bid, Volume: e.cfg.LevelVolume})
			}
			book.Asks = append(book.Asks, exchange.Level{Price: bestAsk + float64(i)*e.cfg.TickSize, Volume: e.cfg.LevelVolume})
		}
		e.books[inst.ID] = book
	}
}

// matchResting fills resting orders crossed by the fresh books. Lock held.
func (e *Exchange) matchResting() {
	for instrumentID, orders := range e.resting {
		book := e.books[instrumentID]
		for orderID, r := range orders {
			if price, ok := crossPrice(r.order, book); ok {
				e.fill(r.order, price)
				delete(orders, orderID)
			}
		}
	}
}

// crossPrice reports the price an order would trade at against book.
func crossPrice(o exchange.Order, book exchange.PriceBook) (float64, bool) {
	if o.Side == exchange.SideBid {
		if len(book.Asks) > 0 && o.Price >= book.Asks[0].Price {
			return book.Asks[0].Price, true
		}
		return 0, false
	}
	if len(book.Bids) > 0 && o.Price <= book.Bids[0].Price {
		return book.Bids[0].Price, true
	}
	return 0, false
}

// fill books the trade and mutates the position. Lock held.
func (e *Exchange) fill(o exchange.Order, price float64) {
	signed := o.Volume
	if o.Side == exchange.SideAsk {
		signed = -o.Volume
	}
	e.positions[o.InstrumentID] += signed
	e.pending[o.InstrumentID] = append(e.pending[o.InstrumentID], exchange.Trade{
		InstrumentID: o.InstrumentID,
		Side:         o.Side,
		Price:        price,
		Volume:       o.Volume,
		Timestamp:    e.now(),
	})
}

func (e *Exchange) guard(instrumentID string) error {
	if !e.connected {
		return exchange.ErrNotConnected
	}
	if instrumentID != "" {
		if _, ok := e.resting[instrumentID]; !ok {
			return fmt.Errorf("%w: %s", exchange.ErrUnknownInstrument, instrumentID)
		}
	}
	return nil
}

func (e *Exchange) GetLastPriceBook(instrumentID string) (exchange.PriceBook, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(instrumentID); err != nil {
		return exchange.PriceBook{}, err
	}
	return e.books[instrumentID], nil
}

func (e *Exchange) PollNewTrades(instrumentID string) ([]exchange.Trade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(instrumentID); err != nil {
		return nil, err
	}
	trades := e.pending[instrumentID]
	e.pending[instrumentID] = nil
	return trades, nil
}

func (e *Exchange) GetOutstandingOrders(instrumentID string) (map[string]exchange.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(instrumentID); err != nil {
		return nil, err
	}
	out := make(map[string]exchange.Order, len(e.resting[instrumentID]))
	for id, r := range e.resting[instrumentID] {
		out[id] = r.order
	}
	return out, nil
}

func (e *Exchange) DeleteOrder(instrumentID, orderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(instrumentID); err != nil {
		return err
	}
	if _, ok := e.resting[instrumentID][orderID]; !ok {
		return fmt.Errorf("%w: %s", exchange.ErrUnknownOrder, orderID)
	}
	delete(e.resting[instrumentID], orderID)
	return nil
}

func (e *Exchange) GetPositions() (map[string]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(""); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(e.positions))
	for id, pos := range e.positions {
		out[id] = pos
	}
	return out, nil
}

func (e *Exchange) InsertOrder(instrumentID string, price float64, volume int, side exchange.Side, orderType exchange.OrderType) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(instrumentID); err != nil {
		return "", err
	}
	if volume <= 0 {
		return "", fmt.Errorf("sim: volume must be > 0, got %d", volume)
	}
	if !side.Valid() {
		return "", fmt.Errorf("sim: invalid side %q", side)
	}
	e.nextID++
	order := exchange.Order{
		OrderID:      fmt.Sprintf("sim-%d", e.nextID),
		InstrumentID: instrumentID,
		Side:         side,
		Price:        price,
		Volume:       volume,
		Type:         orderType,
	}

	if tradePrice, ok := crossPrice(order, e.books[instrumentID]); ok {
		e.fill(order, tradePrice)
		return order.OrderID, nil
	}
	if orderType == exchange.OrderTypeIOC {
		// Nothing crossed; an IOC leaves no resting remainder.
		return order.OrderID, nil
	}
	e.resting[instrumentID][order.OrderID] = &restingOrder{order: order}
	return order.OrderID, nil
}
