package exchange

import "errors"

var (
	// ErrNotConnected 会话未建立时所有调用返回该错误。
	ErrNotConnected = errors.New("exchange: not connected")
	// ErrUnknownOrder is returned when cancelling an order the exchange does not know.
	ErrUnknownOrder = errors.New("exchange: unknown order")
	// ErrUnknownInstrument is returned for instrument ids outside the traded universe.
	ErrUnknownInstrument = errors.New("exchange: unknown instrument")
)

// Client is the exchange session used by every component. It is constructed
// and connected once at startup and passed in explicitly; Connect must
// succeed before any other call.
type Client interface {
	Connect() error
	Close() error

	// GetLastPriceBook returns the most recent order book snapshot.
	// Either side may be empty.
	GetLastPriceBook(instrumentID string) (PriceBook, error)

	// PollNewTrades returns our fills in instrumentID since the previous poll.
	PollNewTrades(instrumentID string) ([]Trade, error)

	// GetOutstandingOrders returns our live orders keyed by order id.
	GetOutstandingOrders(instrumentID string) (map[string]Order, error)

	// DeleteOrder cancels a single outstanding order.
	DeleteOrder(instrumentID, orderID string) error

	// GetPositions returns signed positions keyed by instrument id
	// (long positive, short negative).
	GetPositions() (map[string]int, error)

	// InsertOrder places a new order and returns its exchange-assigned id.
	InsertOrder(instrumentID string, price float64, volume int, side Side, orderType OrderType) (string, error)
}
