// simexchange runs the in-memory options exchange standalone and serves its
// market-data feed over websocket, for demos and the feedwatch tool.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"options-maker-go/config"
	"options-maker-go/infrastructure/logger"
	"options-maker-go/sim"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	listenAddr := flag.String("listen", ":8080", "feed 监听地址")
	stepMs := flag.Int("stepMs", 500, "模拟行情步进间隔（毫秒）")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ex := sim.NewExchange(sim.Config{
		Instruments:  cfg.Instruments(),
		StockMid:     cfg.Exchange.StockMid,
		TickSize:     cfg.Quoting.TickSize,
		LevelVolume:  cfg.Exchange.LevelVolume,
		InterestRate: cfg.Pricing.InterestRate,
		Volatility:   cfg.Pricing.Volatility,
		Seed:         cfg.Exchange.Seed,
	})
	if err := ex.Connect(); err != nil {
		zlog.Fatal("connect simulator", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ex.Drive(ctx, time.Duration(*stepMs)*time.Millisecond)

	feed := sim.NewFeed(ex, zlog.Named("feed"), time.Duration(*stepMs)*time.Millisecond)
	go feed.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", feed)

	zlog.Info("sim exchange listening",
		zap.String("addr", *listenAddr),
		zap.Int("instruments", len(cfg.Instruments())))
	server := &http.Server{Addr: *listenAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("serve feed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	cancel()
	zlog.Info("sim exchange exit")
}
