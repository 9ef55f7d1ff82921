package market

import (
	"go.uber.org/zap"

	"options-maker-go/exchange"
)

// Service exposes read-only market data derived from the exchange client.
type Service struct {
	client exchange.Client
	logger *zap.Logger
}

// NewService 创建行情服务；logger 可为 nil。
func NewService(client exchange.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Midpoint returns the midpoint of the latest order book for instrumentID.
// A book that is missing either side has no midpoint; that is reported as
// ok=false, not as an error.
func (s *Service) Midpoint(instrumentID string) (float64, bool) {
	book, err := s.client.GetLastPriceBook(instrumentID)
	if err != nil {
		s.logger.Warn("failed to fetch price book",
			zap.String("instrument", instrumentID),
			zap.Error(err))
		return 0, false
	}
	return Midpoint(book)
}

// Midpoint computes (best bid + best ask) / 2 for a book snapshot.
func Midpoint(book exchange.PriceBook) (float64, bool) {
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return 0, false
	}
	return (book.Bids[0].Price + book.Asks[0].Price) / 2, true
}
