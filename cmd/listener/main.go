package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"solana-drc/internal/broadcast"
	"solana-drc/internal/config"
	"solana-drc/internal/enricher"
	"solana-drc/internal/ingest"
	"solana-drc/internal/logger"
	"solana-drc/internal/observability"
	"solana-drc/internal/solana"
	"solana-drc/internal/storage"
	"solana-drc/internal/storage/memory"
	"solana-drc/internal/storage/migrations"
	pgstore "solana-drc/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet; configuration errors are the only fatal path.
		panic(err)
	}

	log, err := logger.New(cfg.DebugLogging)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, log); err != nil && err != context.Canceled {
		log.Fatal("listener failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var (
		users    storage.UserStore     = memory.NewUserStore()
		coins    storage.CoinStore     = memory.NewCoinStore()
		trades   storage.TradeStore    = memory.NewTradeStore()
		holdings storage.HoldingsStore = memory.NewHoldingsStore()
	)
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return err
		}
		users = pgstore.NewUserStore(pool)
		coins = pgstore.NewCoinStore(pool)
		trades = pgstore.NewTradeStore(pool)
		holdings = pgstore.NewHoldingsStore(pool)
		log.Info("using postgres storage")
	} else {
		log.Warn("no postgres_dsn configured, using in-memory storage")
	}

	var bc broadcast.Broadcaster
	if cfg.KafkaBrokers != "" {
		publisher, err := broadcast.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		if err != nil {
			return err
		}
		defer publisher.Close()
		bc = publisher
		log.Info("publishing events to kafka", zap.String("brokers", cfg.KafkaBrokers))
	} else {
		bus := broadcast.NewBus(log, cfg.BusBuffer)
		defer bus.Close()
		broadcast.LogEvents(ctx, bus, log, broadcast.GroupCoins, broadcast.GroupTrades)
		bc = bus
		log.Info("publishing events on the in-process bus")
	}

	var fetcherOpts []enricher.Option
	if len(cfg.MetadataGateways) > 0 {
		fetcherOpts = append(fetcherOpts, enricher.WithGateways(cfg.MetadataGateways))
	}
	fetcher := enricher.NewFetcher(log, fetcherOpts...)

	client := solana.NewClient(cfg.WSEndpoint, log)
	defer client.Close()

	processor := ingest.NewProcessor(users, coins, trades, holdings, fetcher, bc, log)
	listener := ingest.NewListener(client, processor, ingest.ListenerConfig{
		ProgramID:  cfg.ProgramID,
		Commitment: cfg.Commitment,
		RetryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
		MaxRetries: cfg.MaxRetries,
	}, log)

	log.Info("starting log listener",
		zap.String("endpoint", cfg.WSEndpoint),
		zap.String("program", cfg.ProgramID),
		zap.String("commitment", cfg.Commitment))
	return listener.Run(ctx)
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	log.Info("metrics server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server error", zap.Error(err))
	}
}
