// Package export renders not-yet-exported tank readings to a spreadsheet
// and flags them exported as a side effect of generation.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Tank Readings"

// ReadingSource is the persistence surface the exporter reads from and
// marks. The production implementation is repository.ReadingRepository.
type ReadingSource interface {
	ListUnexported(ctx context.Context, start, end *time.Time) ([]models.ExportReading, error)
	MarkExported(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Exporter builds tank-readings workbooks.
type Exporter struct {
	source ReadingSource
}

// New creates an Exporter over a reading source.
func New(source ReadingSource) *Exporter {
	return &Exporter{source: source}
}

type column struct {
	header string
	width  float64
}

var columns = []column{
	{"Reading ID", 20},
	{"Customer Name", 25},
	{"Drop Point Number", 18},
	{"Site Address", 40},
	{"Tank Number", 12},
	{"Tank Capacity (L)", 15},
	{"Reading", 12},
	{"Percentage", 12},
	{"Est. Volume (L)", 15},
	{"Notes", 30},
	{"Submitted By", 20},
	{"Submitted At", 20},
}

// Generate renders every unexported reading in the optional inclusive
// [start, end] submission range to an .xlsx workbook, then bulk-marks
// exactly the rendered reading IDs as exported.
//
// This is a read-then-mark sequence without locking: readings created
// between the query and the mark update are not claimed, and two concurrent
// Generate calls can render overlapping reading sets. Known limitation.
func (e *Exporter) Generate(ctx context.Context, start, end *time.Time) ([]byte, int, error) {
	readings, err := e.source.ListUnexported(ctx, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("list unexported readings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"3B82F6"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create header style: %w", err)
	}

	headers := make([]interface{}, len(columns))
	for i, c := range columns {
		headers[i] = c.header
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, c.width); err != nil {
			return nil, 0, fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, 0, fmt.Errorf("write header row: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, 0, fmt.Errorf("style header row: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(readings))
	for i, r := range readings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.ID.String(),
			r.CustomerName,
			r.DropPointNumber,
			r.SiteAddress,
			r.TankNumber,
			r.TankCapacity,
			r.Reading,
			formatPercentage(r.Percentage),
			formatVolume(r.EstimatedVolume),
			stringOrEmpty(r.Notes),
			r.SubmittedBy,
			r.SubmittedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
		ids = append(ids, r.ID)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("serialize workbook: %w", err)
	}

	if err := e.source.MarkExported(ctx, ids, time.Now()); err != nil {
		return nil, 0, fmt.Errorf("mark readings exported: %w", err)
	}

	slog.Info("readings exported", "count", len(ids))
	return buf.Bytes(), len(ids), nil
}

// Filename returns the attachment name for an export generated today.
func Filename(now time.Time) string {
	return "tank-readings-" + now.Format("2006-01-02") + ".xlsx"
}

func formatPercentage(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *p)
}

func formatVolume(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
