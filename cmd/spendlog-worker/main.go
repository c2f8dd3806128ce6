// Command spendlog-worker consumes change events from the broker and
// refreshes the backup snapshot after every mutation, so backups track
// changes instead of waiting for the service's next periodic tick.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendlog/internal/backup"
	"spendlog/internal/config"
	"spendlog/internal/events"
	applog "spendlog/internal/log"
	"spendlog/internal/storage"
	"spendlog/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New("spendlog-worker", cfg.LogLevel)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" || cfg.BackupDir == "" {
		logger.Error("Worker requires AMQP_URL and BACKUP_DIR")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to broker", "error", err, "queue", cfg.AMQPQueue)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("Worker started", "queue", cfg.AMQPQueue, "backup_dir", cfg.BackupDir)

	err = client.Consume(ctx, func(msg *events.ChangeMessage) error {
		return handleChange(ctx, cfg, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// handleChange re-reads the database and writes a fresh snapshot. Errors
// requeue the delivery, so a transient database problem retries.
func handleChange(ctx context.Context, cfg *config.Config, msg *events.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change event",
		"action", msg.Action,
		"record_id", msg.RecordID,
		"count", msg.Count)

	db, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	st, err := store.Open(ctx, db)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	return backup.Write(cfg.BackupDir, st.Settings(), st.List(), time.Now())
}
