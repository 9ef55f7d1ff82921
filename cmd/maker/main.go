package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"

	"options-maker-go/config"
	"options-maker-go/engine"
	"options-maker-go/gateway"
	"options-maker-go/hedge"
	"options-maker-go/infrastructure/logger"
	"options-maker-go/market"
	"options-maker-go/metrics"
	"options-maker-go/quote"
	"options-maker-go/sim"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus metrics 监听地址，覆盖配置文件")
	watchConfig := flag.Bool("watch", true, "监听配置文件变更，热更新报价参数")
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

	collector := metrics.NewCollector()
	addr := cfg.MetricsAddr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}
	if addr != "" {
		if err := metrics.Serve(addr); err != nil {
			zlog.Fatal("start metrics endpoint", zap.Error(err))
		}
		zlog.Info("metrics endpoint up", zap.String("addr", addr))
	}

	// The embedded simulator stands in for the remote exchange session.
	client := sim.NewExchange(sim.Config{
		Instruments:  cfg.Instruments(),
		StockMid:     cfg.Exchange.StockMid,
		TickSize:     cfg.Quoting.TickSize,
		LevelVolume:  cfg.Exchange.LevelVolume,
		InterestRate: cfg.Pricing.InterestRate,
		Volatility:   cfg.Pricing.Volatility,
		Seed:         cfg.Exchange.Seed,
	})
	if err := client.Connect(); err != nil {
		zlog.Fatal("connect to exchange", zap.Error(err))
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Drive(ctx, 500*time.Millisecond)

	marketData := market.NewService(client, zlog.Named("market"))
	quoter := quote.NewUpdater(client, zlog.Named("quote"), collector)

	var hedger *hedge.Hedger
	if cfg.Hedge.Enabled {
		hedger = hedge.New(client, zlog.Named("hedge"), collector, hedge.Config{
			StockID:       cfg.Stock,
			Options:       cfg.OptionInstruments(),
			PositionLimit: cfg.Hedge.PositionLimit,
			LotSize:       cfg.Hedge.LotSize,
			InterestRate:  cfg.Pricing.InterestRate,
			Volatility:    cfg.Pricing.Volatility,
		})
	}

	eng, err := engine.New(engine.Config{
		StockID: cfg.Stock,
		Options: cfg.OptionInstruments(),
		Quote: quote.Params{
			Credit:        cfg.Quoting.Credit,
			Volume:        cfg.Quoting.Volume,
			PositionLimit: cfg.Quoting.PositionLimit,
			TickSize:      cfg.Quoting.TickSize,
		},
		InterestRate:  cfg.Pricing.InterestRate,
		Volatility:    cfg.Pricing.Volatility,
		CycleInterval: cfg.Loop.CycleInterval(),
	}, engine.Components{
		Market:    marketData,
		Quoter:    quoter,
		Hedger:    hedger,
		Limiter:   gateway.NewTokenBucket(cfg.Loop.RequestRate, 1),
		Logger:    zlog.Named("engine"),
		Collector: collector,
	})
	if err != nil {
		zlog.Fatal("build engine", zap.Error(err))
	}

	if *watchConfig {
		watcher, err := config.NewWatcher(*cfgPath, zlog.Named("config"), func(next config.AppConfig) {
			eng.SetQuoteParams(quote.Params{
				Credit:        next.Quoting.Credit,
				Volume:        next.Quoting.Volume,
				PositionLimit: next.Quoting.PositionLimit,
				TickSize:      next.Quoting.TickSize,
			})
		})
		if err != nil {
			zlog.Warn("config watcher unavailable", zap.Error(err))
		} else if err := watcher.Start(ctx); err != nil {
			zlog.Warn("config watcher failed to start", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	if err := eng.Start(ctx); err != nil {
		zlog.Fatal("start engine", zap.Error(err))
	}
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		zlog.Debug("sd_notify not available", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err := eng.Stop(); err != nil {
		zlog.Error("stop engine", zap.Error(err))
	}
	cancel()
	zlog.Info("maker exit")
}
