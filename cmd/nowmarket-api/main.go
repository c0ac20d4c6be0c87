package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nowmarket/internal/api"
	"nowmarket/internal/backfill"
	"nowmarket/internal/config"
	"nowmarket/internal/market"
	"nowmarket/internal/store"
	"nowmarket/internal/wallet"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadAPIFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	snapshots, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("open snapshot store failed", "err", err)
		os.Exit(1)
	}
	defer snapshots.Close()

	cash := wallet.New(cfg.StartingBalanceMicros)
	engine, err := market.New(market.Config{
		TickEvery:        cfg.MarketTickEvery,
		SampleEveryTicks: cfg.SampleEveryTicks,
	}, market.DefaultCatalog(), market.DefaultTables(), cash, logger)
	if err != nil {
		logger.Error("build engine failed", "err", err)
		os.Exit(1)
	}

	if blob, err := snapshots.Load(ctx); err == nil {
		if err := engine.Restore(blob); err != nil {
			logger.Error("restore snapshot failed, starting fresh", "err", err)
		} else {
			logger.Info("restored snapshot", "bytes", len(blob))
		}
	} else if !errors.Is(err, store.ErrNoSnapshot) {
		logger.Error("load snapshot failed, starting fresh", "err", err)
	}

	// The engine outlives the signal context: the final snapshot below still
	// needs a live loop after shutdown begins. Stop() is what ends it.
	if err := engine.Start(context.Background()); err != nil {
		logger.Error("start engine failed", "err", err)
		os.Exit(1)
	}
	defer engine.Stop()

	var backfillMgr *backfill.Manager
	{
		var primary backfill.Fetcher
		if cfg.BackfillURL != "" {
			primary = backfill.NewHTTPFetcher(cfg.BackfillURL, 10*time.Second)
		}
		backfillMgr = backfill.NewManager(engine, primary, &backfill.Synthetic{}, cfg.BackfillTTL, cfg.BackfillDays, logger)
		go backfillMgr.Warm(ctx)
	}

	go autosave(ctx, logger, engine, snapshots, cfg.SnapshotEvery)

	server := api.New(cfg, logger, engine, snapshots, backfillMgr)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("nowmarket api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}

	// One last save on the way out so a restart resumes where we stopped.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	saveSnapshot(saveCtx, logger, engine, snapshots)
}

func openStore(ctx context.Context, cfg config.APIConfig) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		return store.NewPostgresStore(ctx, cfg.DatabaseURL)
	}
	return store.NewFileStore(cfg.SnapshotPath)
}

func autosave(ctx context.Context, logger *slog.Logger, engine *market.Engine, snapshots store.Store, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			saveSnapshot(ctx, logger, engine, snapshots)
		}
	}
}

func saveSnapshot(ctx context.Context, logger *slog.Logger, engine *market.Engine, snapshots store.Store) {
	blob, err := engine.Snapshot(ctx)
	if err != nil {
		logger.Warn("snapshot failed", "err", err)
		return
	}
	if err := snapshots.Save(ctx, blob); err != nil {
		logger.Warn("save snapshot failed", "err", err)
	}
}
