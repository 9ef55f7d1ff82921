package market

import (
	"errors"
	"testing"

	"options-maker-go/exchange"
)

// fakeClient serves canned books; the other Client methods are unused here.
type fakeClient struct {
	books map[string]exchange.PriceBook
	err   error
}

func (f *fakeClient) Connect() error { return nil }
func (f *fakeClient) Close() error   { return nil }

func (f *fakeClient) GetLastPriceBook(instrumentID string) (exchange.PriceBook, error) {
	if f.err != nil {
		return exchange.PriceBook{}, f.err
	}
	return f.books[instrumentID], nil
}

func (f *fakeClient) PollNewTrades(string) ([]exchange.Trade, error) { return nil, nil }
func (f *fakeClient) GetOutstandingOrders(string) (map[string]exchange.Order, error) {
	return nil, nil
}
func (f *fakeClient) DeleteOrder(string, string) error     { return nil }
func (f *fakeClient) GetPositions() (map[string]int, error) { return nil, nil }
func (f *fakeClient) InsertOrder(string, float64, int, exchange.Side, exchange.OrderType) (string, error) {
	return "", nil
}

func TestMidpoint(t *testing.T) {
	tests := []struct {
		name   string
		book   exchange.PriceBook
		want   float64
		wantOK bool
	}{
		{
			name: "both sides",
			book: exchange.PriceBook{
				Bids: []exchange.Level{{Price: 74.90, Volume: 10}, {Price: 74.80, Volume: 5}},
				Asks: []exchange.Level{{Price: 75.10, Volume: 10}},
			},
			want:   75.00,
			wantOK: true,
		},
		{
			name: "empty asks",
			book: exchange.PriceBook{
				Bids: []exchange.Level{{Price: 74.90, Volume: 10}},
			},
			wantOK: false,
		},
		{
			name: "empty bids",
			book: exchange.PriceBook{
				Asks: []exchange.Level{{Price: 75.10, Volume: 10}},
			},
			wantOK: false,
		},
		{
			name:   "empty book",
			book:   exchange.PriceBook{},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Midpoint(tt.book)
			if ok != tt.wantOK {
				t.Fatalf("Midpoint ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("Midpoint = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceMidpoint(t *testing.T) {
	client := &fakeClient{books: map[string]exchange.PriceBook{
		"BMW": {
			Bids: []exchange.Level{{Price: 74.90, Volume: 10}},
			Asks: []exchange.Level{{Price: 75.10, Volume: 10}},
		},
	}}
	svc := NewService(client, nil)

	mid, ok := svc.Midpoint("BMW")
	if !ok || mid != 75.00 {
		t.Fatalf("Midpoint(BMW) = %v, %v; want 75.00, true", mid, ok)
	}

	// Unknown instruments have no book and therefore no midpoint.
	if _, ok := svc.Midpoint("TSLA"); ok {
		t.Fatalf("expected no midpoint for unknown instrument")
	}
}

func TestServiceMidpointClientError(t *testing.T) {
	svc := NewService(&fakeClient{err: errors.New("boom")}, nil)
	if _, ok := svc.Midpoint("BMW"); ok {
		t.Fatalf("expected no midpoint when the client fails")
	}
}
