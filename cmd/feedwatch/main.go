// feedwatch subscribes to a sim exchange feed and prints top-of-book lines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"options-maker-go/gateway"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "feed websocket 地址")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	client := &gateway.FeedClient{URL: *url}
	if err := client.Dial(ctx); err != nil {
		log.Fatalf("dial feed: %v", err)
	}
	defer client.Close()

	err := client.Run(ctx, func(update gateway.BookUpdate) {
		bid, ask := "-", "-"
		if len(update.Bids) > 0 {
			bid = fmt.Sprintf("%.2f x %d", update.Bids[0].Price, update.Bids[0].Volume)
		}
		if len(update.Asks) > 0 {
			ask = fmt.Sprintf("%.2f x %d", update.Asks[0].Price, update.Asks[0].Volume)
		}
		fmt.Printf("%-24s bid %-14s ask %-14s\n", update.InstrumentID, bid, ask)
	})
	if err != nil {
		log.Fatalf("feed: %v", err)
	}
}
