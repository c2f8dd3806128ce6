// Command spendlog-export dumps the expense database as CSV or a JSON
// snapshot, applying the same filters as the API's list endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"spendlog/internal/core"
	"spendlog/internal/exchange"
	"spendlog/internal/storage"
	"spendlog/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		dbPath   = flag.String("db", envOr("SQLITE_DB_PATH", "./data/spendlog.db"), "path to the sqlite database")
		format   = flag.String("format", "csv", "output format: csv or json")
		month    = flag.String("month", "", "only expenses in this YYYY-MM month")
		category = flag.String("category", "", "only expenses with this exact category")
		search   = flag.String("q", "", "only expenses whose description contains this text")
		sortKey  = flag.String("sort", "", "ordering: date_desc, date_asc, amount_desc or amount_asc")
		outPath  = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if err := run(*dbPath, *format, *outPath, core.FilterSpec{
		Month:    *month,
		Category: *category,
		Search:   *search,
		Sort:     core.SortKey(*sortKey),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "spendlog-export:", err)
		os.Exit(1)
	}
}

func run(dbPath, format, outPath string, spec core.FilterSpec) error {
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}
	if spec.Sort != "" && !spec.Sort.IsValid() {
		return fmt.Errorf("unknown sort %q", spec.Sort)
	}
	// A snapshot claims to be complete and re-importable, so a filtered
	// one would silently lose records on the next import.
	if format == "json" && spec != (core.FilterSpec{}) {
		return fmt.Errorf("filters apply to csv output only; json always exports the full snapshot")
	}

	db, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	st, err := store.Open(ctx, db)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		return exchange.WriteCSV(out, core.Filter(st.List(), spec))
	default:
		snap := exchange.NewSnapshot(st.Settings(), st.List(), time.Now())
		data, err := snap.Marshal()
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		_, err = out.Write(append(data, '\n'))
		return err
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
