// Command poinsight ingests purchase-order spreadsheet exports into a
// normalized snapshot and serves as the reference consumer of that
// snapshot: summary metrics and CSV export over the grouped per-PO view.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dcastanho/po-insight/internal/domain/ingest/aggregate"
	"github.com/dcastanho/po-insight/internal/domain/ingest/parser"
	"github.com/dcastanho/po-insight/internal/domain/ingest/repository"
	"github.com/dcastanho/po-insight/internal/domain/ingest/service"
	"github.com/dcastanho/po-insight/pkg/config"
	"github.com/dcastanho/po-insight/pkg/money"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() string {
	return `usage: poinsight <command> [flags]

commands:
  ingest <file>   parse a workbook (.xlsx, .xls or .csv) and store the snapshot
  summary         print metrics over the grouped per-PO view
  export          write the grouped view as CSV
  clear           drop the stored snapshot

summary/export flags:
  -start YYYY-MM-DD    keep rows created on or after this date
  -marketers a,b       keep rows whose marketer matches any term
  -status s            keep rows with this status (default all)
  -search q            narrow groups by PO/marketer/vendor/invoice text
  -o file              export destination (default stdout)`
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Println(usage())
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging.Level)

	store, err := repository.Open(cfg.Snapshot.DBPath)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	svc := service.NewIngestService(store, logger).
		WithHeaderScanRows(cfg.Ingest.HeaderScanRows)

	ctx := context.Background()

	switch args[0] {
	case "ingest":
		return runIngest(ctx, svc, args[1:])
	case "summary":
		return runSummary(ctx, svc, cfg, args[1:])
	case "export":
		return runExport(ctx, svc, args[1:])
	case "clear":
		return svc.Clear(ctx)
	case "help", "-h", "--help":
		fmt.Println(usage())
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage())
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func runIngest(ctx context.Context, svc *service.IngestService, args []string) error {
	if len(args) != 1 {
		return errors.New("ingest expects exactly one file argument")
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := svc.IngestFile(ctx, path, data)
	var decodeErr *parser.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Errorf("%s is not a readable spreadsheet: %w", path, decodeErr)
	}
	if err != nil {
		return err
	}

	if result.Empty() {
		fmt.Printf("no usable rows found in %s (%d sheets scanned, %d rows skipped); check the column headers\n",
			path, result.SheetsProcessed, result.RowsSkipped)
		return nil
	}

	fmt.Printf("ingested %d rows from %d sheet(s), %d skipped, %d diagnostics (job %s)\n",
		len(result.Rows), result.SheetsProcessed, result.RowsSkipped,
		len(result.Diagnostics), result.JobID)
	return nil
}

func viewFlags(fs *flag.FlagSet) (start, marketers, status, search *string) {
	start = fs.String("start", "", "keep rows created on or after this date (YYYY-MM-DD)")
	marketers = fs.String("marketers", "", "comma-separated marketer terms")
	status = fs.String("status", "", "status filter")
	search = fs.String("search", "", "free-text group search")
	return
}

func buildFilter(start, marketers, status string) (aggregate.RowFilter, error) {
	var f aggregate.RowFilter
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return f, fmt.Errorf("invalid -start date %q", start)
		}
		f.StartDate = &t
	}
	f.Marketers = aggregate.ParseMarketers(marketers)
	f.Status = status
	return f, nil
}

func runSummary(ctx context.Context, svc *service.IngestService, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	start, marketers, status, search := viewFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter, err := buildFilter(*start, *marketers, *status)
	if err != nil {
		return err
	}

	rows, groups, err := svc.GroupedView(ctx, filter, *search)
	if errors.Is(err, repository.ErrNoSnapshot) {
		return errors.New("no data ingested yet; run `poinsight ingest <file>` first")
	}
	if err != nil {
		return err
	}

	m := aggregate.ComputeMetrics(rows, groups)
	code := cfg.Ingest.CurrencyCode
	fmt.Printf("unique POs:        %d\n", m.UniquePOs)
	fmt.Printf("invoices GR'd:     %d\n", m.InvoicesGoodsReceived)
	fmt.Printf("total PO amount:   %s\n", money.Format(m.TotalPOAmount, code))
	fmt.Printf("total amount left: %s\n", money.Format(m.TotalAmountLeft, code))
	fmt.Printf("groups shown:      %d\n", len(groups))
	return nil
}

func runExport(ctx context.Context, svc *service.IngestService, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	start, marketers, status, search := viewFlags(fs)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter, err := buildFilter(*start, *marketers, *status)
	if err != nil {
		return err
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := svc.ExportCSV(ctx, w, filter, *search)
	if errors.Is(err, repository.ErrNoSnapshot) {
		return errors.New("no data ingested yet; run `poinsight ingest <file>` first")
	}
	if err != nil {
		return err
	}
	if *out != "" {
		fmt.Printf("exported %d grouped POs to %s\n", n, *out)
	}
	return nil
}
