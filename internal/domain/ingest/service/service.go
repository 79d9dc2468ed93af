// Package service orchestrates ingestion end to end: decode the uploaded
// container, normalize every sheet, persist the snapshot and report the
// outcome. Only a container-level decode failure aborts; everything else
// degrades to diagnostics on the result.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dcastanho/po-insight/internal/domain/ingest/aggregate"
	"github.com/dcastanho/po-insight/internal/domain/ingest/export"
	"github.com/dcastanho/po-insight/internal/domain/ingest/header"
	"github.com/dcastanho/po-insight/internal/domain/ingest/parser"
	"github.com/dcastanho/po-insight/internal/domain/ingest/repository"
	"github.com/dcastanho/po-insight/internal/domain/ingest/schema"
)

// IngestResult is the outcome of one ingestion pass. An empty result is
// a business condition, not an error: the caller distinguishes "file
// decoded but held no usable rows" from a decode failure.
type IngestResult struct {
	JobID           uuid.UUID
	Rows            []schema.CanonicalRow
	Diagnostics     []schema.Diagnostic
	SheetsProcessed int
	RowsSkipped     int
}

// Empty reports whether ingestion completed without yielding any rows.
func (r *IngestResult) Empty() bool { return len(r.Rows) == 0 }

// IngestService drives the pipeline and owns the snapshot repository.
type IngestService struct {
	repo   repository.SnapshotRepository
	table  *header.Table
	opts   parser.Options
	logger *slog.Logger
}

// NewIngestService creates the service with the default synonym table.
func NewIngestService(repo repository.SnapshotRepository, logger *slog.Logger) *IngestService {
	return &IngestService{
		repo:   repo,
		table:  header.NewDefaultTable(),
		logger: logger,
	}
}

// WithSynonymTable overrides the header synonym table.
func (s *IngestService) WithSynonymTable(table *header.Table) *IngestService {
	s.table = table
	return s
}

// WithHeaderScanRows overrides how deep the header-row detector scans.
func (s *IngestService) WithHeaderScanRows(n int) *IngestService {
	s.opts.MaxHeaderScanRows = n
	return s
}

// IngestFile runs one full workbook-to-rows pass over the uploaded bytes
// and persists the normalized set as the current snapshot. A non-empty
// result replaces any previous snapshot; an empty one leaves the store
// untouched so the caller can guide the user without losing data.
func (s *IngestService) IngestFile(ctx context.Context, filename string, data []byte) (*IngestResult, error) {
	sheets, err := parser.DecodeWorkbook(data, filename)
	if err != nil {
		return nil, err
	}

	res := parser.IngestSheets(sheets, s.table, s.opts)
	result := &IngestResult{
		JobID:           uuid.New(),
		Rows:            res.Rows,
		Diagnostics:     res.Diagnostics,
		SheetsProcessed: res.SheetsProcessed,
		RowsSkipped:     res.RowsSkipped,
	}

	for _, d := range result.Diagnostics {
		s.logger.Warn(d.Message, slog.Any("context", d.Context))
	}

	if result.Empty() {
		s.logger.Warn("ingestion yielded no rows",
			slog.String("file", filename),
			slog.String("job_id", result.JobID.String()),
			slog.Int("sheets", result.SheetsProcessed),
			slog.Int("rows_skipped", result.RowsSkipped))
		return result, nil
	}

	if err := s.repo.Save(ctx, result.Rows); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	s.logger.Info("ingestion complete",
		slog.String("file", filename),
		slog.String("job_id", result.JobID.String()),
		slog.Int("sheets", result.SheetsProcessed),
		slog.Int("rows", len(result.Rows)),
		slog.Int("rows_skipped", result.RowsSkipped),
		slog.Int("diagnostics", len(result.Diagnostics)))
	return result, nil
}

// LoadRows returns the currently persisted snapshot.
func (s *IngestService) LoadRows(ctx context.Context) ([]schema.CanonicalRow, error) {
	return s.repo.Load(ctx)
}

// Clear drops the persisted snapshot.
func (s *IngestService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// GroupedView loads the snapshot, applies the row filter, groups by PO
// and narrows by the search query. It returns both the filtered rows and
// the groups so callers can compute metrics over either.
func (s *IngestService) GroupedView(ctx context.Context, filter aggregate.RowFilter, query string) ([]schema.CanonicalRow, []schema.GroupedPo, error) {
	rows, err := s.repo.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	filtered := filter.Apply(rows)
	groups := aggregate.Search(aggregate.GroupByPO(filtered), query)
	return filtered, groups, nil
}

// ExportCSV writes the filtered grouped view as CSV and returns the
// number of exported groups.
func (s *IngestService) ExportCSV(ctx context.Context, w io.Writer, filter aggregate.RowFilter, query string) (int, error) {
	_, groups, err := s.GroupedView(ctx, filter, query)
	if err != nil {
		return 0, err
	}
	if err := export.Write(w, groups); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(groups), nil
}
