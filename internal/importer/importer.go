// Package importer ingests heterogeneous customer spreadsheets: it resolves
// ad-hoc header names to a canonical schema, normalizes each row, and
// upserts customers, sites and tanks with per-row error isolation.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/xuri/excelize/v2"
)

// defaultBatchSize is how many rows run their upsert pipelines concurrently
// when no explicit size is configured. It bounds simultaneous connection
// usage from one import call.
const defaultBatchSize = 5

// Result aggregates a whole-sheet import. A call with zero successes and an
// all-error list is still a successful call; only sheet-level failures
// surface as errors from ImportWorkbook.
type Result struct {
	Success int      `json:"imported"`
	Errors  []string `json:"errors"`
}

// Importer drives the header-mapping, normalization and upsert pipeline
// over an uploaded workbook.
type Importer struct {
	store     Store
	batchSize int
}

// New creates an Importer. batchSize caps how many rows are processed
// concurrently within one group; values below 1 fall back to the default.
func New(store Store, batchSize int) *Importer {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &Importer{store: store, batchSize: batchSize}
}

// ImportWorkbook reads the first worksheet of an .xlsx payload and imports
// every data row. The only fatal condition is an unreadable workbook or a
// workbook with no worksheet; row-level failures are reported in the Result.
func (im *Importer) ImportWorkbook(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("no worksheet found in workbook")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &Result{Errors: []string{}}, nil
	}

	cm := MapHeader(rows[0])
	slog.Info("import header mapped",
		"sheet", sheet,
		"columns_recognized", len(cm),
		"data_rows", len(rows)-1,
	)

	return im.ImportRows(ctx, cm, rows[1:]), nil
}

// rowOutcome records how one row settled. Blank rows are skipped entirely
// and count as neither success nor failure.
type rowOutcome struct {
	done bool
	err  string
}

// ImportRows processes data rows in fixed-size groups: groups run strictly
// in sequence, rows within a group run concurrently. Group N fully settles
// before group N+1 starts, so a later group always sees an earlier group's
// customer and site writes. Two rows with the same drop point inside one
// group race on the site upsert; last write wins.
func (im *Importer) ImportRows(ctx context.Context, cm ColumnMap, rows [][]string) *Result {
	outcomes := make([]rowOutcome, len(rows))

	for start := 0; start < len(rows); start += im.batchSize {
		end := start + im.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if isBlankRow(rows[i]) {
				continue
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = im.processRow(ctx, cm, rows[i], i+2) // header is sheet row 1
			}(i)
		}
		wg.Wait()
	}

	result := &Result{Errors: []string{}}
	for _, o := range outcomes {
		if !o.done {
			continue
		}
		if o.err != "" {
			result.Errors = append(result.Errors, o.err)
		} else {
			result.Success++
		}
	}
	return result
}

// processRow runs the normalize → upsert pipeline for one row. All failures,
// including panics from unexpected cell content, are converted to a
// row-numbered error so the batch never aborts on a single row.
func (im *Importer) processRow(ctx context.Context, cm ColumnMap, cells []string, rowNumber int) (outcome rowOutcome) {
	outcome.done = true
	defer func() {
		if r := recover(); r != nil {
			outcome.err = fmt.Sprintf("Row %d: %v", rowNumber, r)
		}
	}()

	rec, err := NormalizeRow(cells, cm, rowNumber)
	if err != nil {
		outcome.err = err.Error()
		return outcome
	}

	if err := applyRecord(ctx, im.store, rec); err != nil {
		outcome.err = fmt.Sprintf("Row %d: %v", rowNumber, err)
		return outcome
	}

	return outcome
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		for _, r := range c {
			if r != ' ' && r != '\t' {
				return false
			}
		}
	}
	return true
}
