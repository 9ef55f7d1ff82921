package hedge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-maker-go/exchange"
	"options-maker-go/market"
)

var (
	hedgeNow    = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	hedgeExpiry = time.Date(2026, 12, 11, 12, 0, 0, 0, time.UTC)
)

type hedgeClient struct {
	positions map[string]int
	book      exchange.PriceBook
	inserted  []exchange.Order
}

func (c *hedgeClient) Connect() error { return nil }
func (c *hedgeClient) Close() error   { return nil }

func (c *hedgeClient) GetLastPriceBook(string) (exchange.PriceBook, error) {
	return c.book, nil
}
func (c *hedgeClient) PollNewTrades(string) ([]exchange.Trade, error) { return nil, nil }
func (c *hedgeClient) GetOutstandingOrders(string) (map[string]exchange.Order, error) {
	return nil, nil
}
func (c *hedgeClient) DeleteOrder(string, string) error { return nil }

func (c *hedgeClient) GetPositions() (map[string]int, error) {
	out := make(map[string]int, len(c.positions))
	for id, p := range c.positions {
		out[id] = p
	}
	return out, nil
}

func (c *hedgeClient) InsertOrder(instrumentID string, price float64, volume int, side exchange.Side, orderType exchange.OrderType) (string, error) {
	c.inserted = append(c.inserted, exchange.Order{
		InstrumentID: instrumentID,
		Side:         side,
		Price:        price,
		Volume:       volume,
		Type:         orderType,
	})
	return "hedge-1", nil
}

func testOptions() []market.Instrument {
	return []market.Instrument{
		market.Option("OPT-C", hedgeExpiry, 75, market.KindCall),
		market.Option("OPT-P", hedgeExpiry, 75, market.KindPut),
	}
}

func TestNetOptionDelta(t *testing.T) {
	options := testOptions()

	// Flat book: zero delta without touching the pricer.
	net, err := NetOptionDelta(options, map[string]int{}, 75, 0, 3.0, hedgeNow)
	require.NoError(t, err)
	assert.Zero(t, net)

	// A long call position carries positive delta, a long put negative.
	net, err = NetOptionDelta(options, map[string]int{"OPT-C": 10}, 75, 0, 3.0, hedgeNow)
	require.NoError(t, err)
	assert.Greater(t, net, 0.0)

	net, err = NetOptionDelta(options, map[string]int{"OPT-P": 10}, 75, 0, 3.0, hedgeNow)
	require.NoError(t, err)
	assert.Less(t, net, 0.0)

	// Long the call and short the put stacks up: delta_C - delta_P = 1 per pair.
	net, err = NetOptionDelta(options, map[string]int{"OPT-C": 10, "OPT-P": -10}, 75, 0, 3.0, hedgeNow)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, net, 1e-6)
}

func TestTargetStockPosition(t *testing.T) {
	tests := []struct {
		name     string
		netDelta float64
		lot      int
		limit    int
		want     int
	}{
		{"flat", 0, 1, 100, 0},
		{"long delta sells stock", 12.4, 1, 100, -12},
		{"short delta buys stock", -12.6, 1, 100, 13},
		{"lot rounding", 12.4, 5, 100, -10},
		{"clamped long", -250, 1, 100, 100},
		{"clamped short", 250, 1, 100, -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetStockPosition(tt.netDelta, tt.lot, tt.limit))
		})
	}
}

func TestHedgeSellsAgainstLongDelta(t *testing.T) {
	client := &hedgeClient{
		positions: map[string]int{"BMW": 0, "OPT-C": 10, "OPT-P": -10},
		book: exchange.PriceBook{
			Bids: []exchange.Level{{Price: 74.90, Volume: 50}},
			Asks: []exchange.Level{{Price: 75.10, Volume: 50}},
		},
	}
	h := New(client, nil, nil, Config{
		StockID:       "BMW",
		Options:       testOptions(),
		PositionLimit: 100,
		LotSize:       1,
		Volatility:    3.0,
	})
	h.now = func() time.Time { return hedgeNow }

	require.NoError(t, h.Hedge(75.00))

	// Net delta is +10, so the hedge sells 10 lots into the best bid.
	require.Len(t, client.inserted, 1)
	order := client.inserted[0]
	assert.Equal(t, "BMW", order.InstrumentID)
	assert.Equal(t, exchange.SideAsk, order.Side)
	assert.Equal(t, 10, order.Volume)
	assert.Equal(t, 74.90, order.Price)
	assert.Equal(t, exchange.OrderTypeIOC, order.Type)
}

func TestHedgeAccountsForExistingStock(t *testing.T) {
	// Stock already offsets the option delta: nothing to do.
	client := &hedgeClient{
		positions: map[string]int{"BMW": -10, "OPT-C": 10, "OPT-P": -10},
		book: exchange.PriceBook{
			Bids: []exchange.Level{{Price: 74.90, Volume: 50}},
			Asks: []exchange.Level{{Price: 75.10, Volume: 50}},
		},
	}
	h := New(client, nil, nil, Config{
		StockID:       "BMW",
		Options:       testOptions(),
		PositionLimit: 100,
		LotSize:       1,
		Volatility:    3.0,
	})
	h.now = func() time.Time { return hedgeNow }

	require.NoError(t, h.Hedge(75.00))
	assert.Empty(t, client.inserted)
}

func TestHedgeSkipsOnEmptyBookSide(t *testing.T) {
	client := &hedgeClient{
		positions: map[string]int{"BMW": 0, "OPT-C": 10, "OPT-P": -10},
		book: exchange.PriceBook{
			Asks: []exchange.Level{{Price: 75.10, Volume: 50}},
		},
	}
	h := New(client, nil, nil, Config{
		StockID:       "BMW",
		Options:       testOptions(),
		PositionLimit: 100,
		LotSize:       1,
		Volatility:    3.0,
	})
	h.now = func() time.Time { return hedgeNow }

	// Selling needs a bid; with none the hedge waits for the next cycle.
	require.NoError(t, h.Hedge(75.00))
	assert.Empty(t, client.inserted)
}
