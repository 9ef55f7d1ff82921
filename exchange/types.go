package exchange

import "time"

// Side of an order or trade.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideBid || s == SideAsk
}

// OrderType 下单类型。
type OrderType string

const (
	OrderTypeLimit OrderType = "limit"
	// OrderTypeIOC fills what it can against the book and discards the rest.
	OrderTypeIOC OrderType = "ioc"
)

// Level is one price level of an order book.
type Level struct {
	Price  float64
	Volume int
}

// PriceBook is a point-in-time order book snapshot for one instrument.
// Bids are sorted descending by price, asks ascending; index 0 is top of book.
type PriceBook struct {
	InstrumentID string
	Bids         []Level
	Asks         []Level
	Timestamp    time.Time
}

// Order is an outstanding order as reported by the exchange.
type Order struct {
	OrderID      string
	InstrumentID string
	Side         Side
	Price        float64
	Volume       int
	Type         OrderType
}

// Trade is a fill against one of our orders.
type Trade struct {
	InstrumentID string
	Side         Side
	Price        float64
	Volume       int
	Timestamp    time.Time
}
