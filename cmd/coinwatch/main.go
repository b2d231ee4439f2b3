package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinwatch/config"
	"coinwatch/internal/app"
	"coinwatch/internal/host"
	"coinwatch/internal/market"
	"coinwatch/internal/memorystore"
	"coinwatch/internal/metrics"
	"coinwatch/internal/settings"
	"coinwatch/internal/snapshot"
	"coinwatch/internal/stream"
	"coinwatch/internal/symbolmeta"
	"coinwatch/logger"
	"coinwatch/pkg/binance"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("coinwatch failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if _, err := binance.ParseKlineInterval(cfg.Binance.WS.Interval); err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr, log)
		defer srv.Close()
		log.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
	}

	restClient := binance.NewRESTClient(cfg.Binance.REST.SpotURL, cfg.Binance.REST.FuturesURL,
		cfg.Binance.REST.AlphaURL, cfg.Binance.REST.Timeout)
	endpoints := binance.NewEndpoints(cfg.Binance.WS.SpotURL, cfg.Binance.WS.FuturesURL)
	transport := binance.NewWSTransport(cfg.Binance.WS.HandshakeTimeout, cfg.Binance.WS.PingInterval, log)

	loop := stream.NewLoop(1024)
	prices := memorystore.NewPriceStore(cfg.Stream.TrendPoints)
	klines := memorystore.NewKlineStore(cfg.Stream.KlineCap)

	manager := stream.NewManager(stream.Options{
		Transport:  transport,
		Endpoints:  endpoints,
		History:    restClient,
		Dispatcher: loop,
		Logger:     log,
		Prices:     prices,
		Klines:     klines,
		Backoff: stream.Backoff{
			Base:        cfg.Stream.BackoffBase,
			MaxAttempts: cfg.Stream.MaxAttempts,
		},
		Throttle:       cfg.Stream.Throttle,
		Interval:       cfg.Binance.WS.Interval,
		HistoryLimit:   cfg.Stream.HistoryLimit,
		HistoryTimeout: cfg.Binance.REST.Timeout,
	})

	loader := snapshot.NewCatalogLoader(restClient, cfg.Binance.REST.Timeout, cfg.Catalog.CacheTTL, log)
	widget := app.NewWidget(app.Deps{
		Settings:   settings.NewStore(cfg.Settings.Path, log),
		Catalog:    loader,
		Manager:    manager,
		Prices:     prices,
		Klines:     klines,
		Shell:      host.NewLogShell(log),
		Dispatcher: loop,
		Logger:     log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go loop.Run(loopCtx)
	defer func() {
		stopLoop()
		<-loop.Done()
	}()

	if err := stream.Call(ctx, loop, func() { widget.Start(ctx) }); err != nil {
		return err
	}

	refresher := symbolmeta.NewRefresher(cfg.Catalog.RefreshInterval,
		symbolmeta.CatalogRefreshFn(loader, func(c *market.Catalog) {
			loop.Post(func() { widget.SetCatalog(c) })
		}), log)
	if err := refresher.Start(); err != nil {
		return err
	}
	defer refresher.Stop()

	// Periodically log stored state for visibility
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Info("current stream state",
					zap.Int("prices", prices.Len()),
					zap.Int("klines", klines.CountAll()))
			}
		}
	}()

	go console(ctx, loop, widget)

	<-ctx.Done()
	log.Info("shutting down")

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return stream.Call(closeCtx, loop, widget.Close)
}

// console reads commands from stdin and runs them on the loop.
func console(ctx context.Context, loop *stream.Loop, widget *app.Widget) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()

		var out string
		var err error
		if callErr := stream.Call(ctx, loop, func() { out, err = widget.Exec(line) }); callErr != nil {
			return
		}

		switch {
		case err != nil:
			fmt.Fprintln(os.Stderr, "error:", err)
		case out != "":
			fmt.Println(out)
		}
	}
}
