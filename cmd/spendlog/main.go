package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendlog/internal/backup"
	"spendlog/internal/config"
	"spendlog/internal/events"
	apphttp "spendlog/internal/http"
	applog "spendlog/internal/log"
	"spendlog/internal/storage"
	"spendlog/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New("spendlog", cfg.LogLevel)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var docs storage.DocumentStore
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		docs = db
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		docs = storage.NewMemoryStore()
		logger.Info("Initialized memory backend")
	}
	defer docs.Close()

	var opts []store.Option
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Change events are best-effort; the service runs without them.
			logger.Warn("Change event publishing disabled", "error", err)
		} else {
			defer client.Close()
			opts = append(opts, store.WithPublisher(client))
			logger.Info("Change event publishing enabled", "exchange", cfg.AMQPExchange)
		}
	}

	st, err := store.Open(ctx, docs, opts...)
	if err != nil {
		logger.Error("Failed to load store", "error", err)
		os.Exit(1)
	}
	logger.Info("Store loaded", "records", st.Count())

	srv := apphttp.NewServer(":"+cfg.Port, st)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spendlog server", "port", cfg.Port, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.BackupDir != "" {
		runner := backup.NewRunner(st, cfg.BackupDir, cfg.BackupInterval)
		g.Go(func() error {
			if err := runner.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
