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

	"solana-drc/internal/config"
	"solana-drc/internal/logger"
	"solana-drc/internal/observability"
	"solana-drc/internal/scoring"
	"solana-drc/internal/storage"
	"solana-drc/internal/storage/clickhouse"
	"solana-drc/internal/storage/memory"
	"solana-drc/internal/storage/migrations"
	pgstore "solana-drc/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	once := flag.Bool("once", false, "Run a single scoring pass and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
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

	if err := run(ctx, cfg, *once, log); err != nil && err != context.Canceled {
		log.Fatal("scoring daemon failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, once bool, log *zap.Logger) error {
	var (
		coins    storage.CoinStore     = memory.NewCoinStore()
		trades   storage.TradeStore    = memory.NewTradeStore()
		holdings storage.HoldingsStore = memory.NewHoldingsStore()
		scores   storage.ScoreStore    = memory.NewScoreStore()
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
		coins = pgstore.NewCoinStore(pool)
		trades = pgstore.NewTradeStore(pool)
		holdings = pgstore.NewHoldingsStore(pool)
		scores = pgstore.NewScoreStore(pool)
		log.Info("using postgres storage")
	} else {
		log.Warn("no postgres_dsn configured, using in-memory storage")
	}

	var history storage.ScoreHistoryStore = memory.NewScoreHistoryStore()
	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		history = clickhouse.NewScoreHistoryStore(conn)
		log.Info("recording score history to clickhouse")
	}

	engine := scoring.NewEngine(coins, trades, holdings, scores, history,
		scoring.DefaultConfig(), log)

	if once {
		engine.RunOnce(ctx)
		return nil
	}

	interval := time.Duration(cfg.ScoringIntervalSeconds) * time.Second
	log.Info("starting scoring daemon", zap.Duration("interval", interval))
	return engine.Run(ctx, interval)
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
