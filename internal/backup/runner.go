// Package backup periodically snapshots the store to disk so a corrupted
// or lost database never costs more than one interval of records.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/exchange"
	"spendlog/internal/store"
)

// keepBackups bounds how many dated snapshot files survive pruning.
const keepBackups = 14

// Runner writes JSON snapshots of the store on a fixed interval.
type Runner struct {
	store    *store.Store
	dir      string
	interval time.Duration
	now      func() time.Time
}

func NewRunner(st *store.Store, dir string, interval time.Duration) *Runner {
	return &Runner{
		store:    st,
		dir:      dir,
		interval: interval,
		now:      time.Now,
	}
}

// Run snapshots the store every interval until the context is canceled.
// Individual snapshot failures are logged and retried on the next tick.
func (r *Runner) Run(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("Backup runner started", "dir", r.dir, "interval", r.interval)
	for {
		select {
		case <-ticker.C:
			if err := r.Snapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Backup snapshot failed", "error", err)
			}
		case <-ctx.Done():
			slog.Info("Backup runner stopped")
			return ctx.Err()
		}
	}
}

// Snapshot writes one dated snapshot file atomically and prunes old ones.
func (r *Runner) Snapshot(ctx context.Context) error {
	if err := Write(r.dir, r.store.Settings(), r.store.List(), r.now()); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Backup written", "dir", r.dir, "records", r.store.Count())
	return nil
}

// Write stores a dated snapshot of the given state in dir, atomically, and
// prunes files beyond the retention limit. It is the shared path for the
// periodic runner and the change-event worker.
func Write(dir string, settings core.Settings, records []core.Expense, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	snap := exchange.NewSnapshot(settings, records, now)
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	target := filepath.Join(dir, exchange.Filename("backup", "json", now))
	if err := writeAtomic(target, data); err != nil {
		return err
	}
	return prune(dir)
}

// writeAtomic stages the file next to the target and renames it into
// place, so readers never observe a partial snapshot.
func writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".backup-*.tmp")
	if err != nil {
		return fmt.Errorf("stage backup: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close backup: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish backup: %w", err)
	}
	return nil
}

// prune deletes the oldest dated snapshots beyond the retention limit.
// Date-stamped names sort chronologically, so a name sort suffices.
func prune(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list backup dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "backup_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	if len(names) <= keepBackups {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-keepBackups] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			slog.Warn("Backup prune failed", "file", name, "error", err)
		}
	}
	return nil
}
