package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"options-maker-go/exchange"
)

// BookUpdate is one frame from the simulated exchange feed.
type BookUpdate struct {
	Type         string           `json:"type"`
	InstrumentID string           `json:"instrument"`
	Bids         []exchange.Level `json:"bids"`
	Asks         []exchange.Level `json:"asks"`
	Timestamp    time.Time        `json:"ts"`
}

// FeedClient subscribes to the market-data websocket.
type FeedClient struct {
	URL string

	conn *websocket.Conn
}

// Dial connects to the feed endpoint.
func (c *FeedClient) Dial(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return fmt.Errorf("dial feed %s: %w", c.URL, err)
	}
	c.conn = conn
	return nil
}

// Run reads frames until ctx is cancelled or the connection drops, invoking
// onBook for every book snapshot.
func (c *FeedClient) Run(ctx context.Context, onBook func(BookUpdate)) error {
	if c.conn == nil {
		return fmt.Errorf("feed client not connected")
	}
	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()
	for {
		var update BookUpdate
		if err := c.conn.ReadJSON(&update); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read feed frame: %w", err)
		}
		if update.Type == "book" && onBook != nil {
			onBook(update)
		}
	}
}

// Close tears the connection down.
func (c *FeedClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
