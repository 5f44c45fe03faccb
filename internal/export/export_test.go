package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeSource serves readings from memory and records MarkExported calls.
type fakeSource struct {
	readings []models.ExportReading
	marked   []uuid.UUID
}

func (s *fakeSource) ListUnexported(_ context.Context, start, end *time.Time) ([]models.ExportReading, error) {
	var out []models.ExportReading
	for _, r := range s.readings {
		if r.Exported {
			continue
		}
		if start != nil && r.SubmittedAt.Before(*start) {
			continue
		}
		if end != nil && r.SubmittedAt.After(*end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeSource) MarkExported(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	s.marked = append(s.marked, ids...)
	for _, id := range ids {
		for i := range s.readings {
			if s.readings[i].ID == id {
				s.readings[i].Exported = true
			}
		}
	}
	return nil
}

func makeReading(submittedAt time.Time, exported bool) models.ExportReading {
	pct := 62.5
	vol := 3125.0
	notes := "gauge read on arrival"
	return models.ExportReading{
		TankReading: models.TankReading{
			ID:              uuid.New(),
			Reading:         3125,
			Percentage:      &pct,
			EstimatedVolume: &vol,
			Notes:           &notes,
			SubmittedAt:     submittedAt,
			Exported:        exported,
		},
		CustomerName:    "Acme Co",
		DropPointNumber: "DP-100",
		SiteAddress:     "5 Factory Lane",
		TankNumber:      "T1",
		TankCapacity:    5000,
		SubmittedBy:     "Demo Customer",
		SubmittedByMail: "customer@lpgreadings.au",
	}
}

func TestGenerate_RendersAndMarks(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	source := &fakeSource{readings: []models.ExportReading{makeReading(now, false)}}
	exp := New(source)

	data, count, err := exp.Generate(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, source.marked, 1)
	assert.Equal(t, source.readings[0].ID, source.marked[0])

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tank Readings")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"Reading ID", "Customer Name", "Drop Point Number", "Site Address",
		"Tank Number", "Tank Capacity (L)", "Reading", "Percentage",
		"Est. Volume (L)", "Notes", "Submitted By", "Submitted At",
	}, rows[0])

	row := rows[1]
	require.Len(t, row, 12)
	assert.Equal(t, source.readings[0].ID.String(), row[0])
	assert.Equal(t, "Acme Co", row[1])
	assert.Equal(t, "DP-100", row[2])
	assert.Equal(t, "5 Factory Lane", row[3])
	assert.Equal(t, "T1", row[4])
	assert.Equal(t, "5000", row[5])
	assert.Equal(t, "3125", row[6])
	assert.Equal(t, "62.5%", row[7])
	assert.Equal(t, "3125.00", row[8])
	assert.Equal(t, "gauge read on arrival", row[9])
	assert.Equal(t, "Demo Customer", row[10])
	assert.Equal(t, "2026-03-10 09:30:00", row[11])
}

func TestGenerate_SkipsAlreadyExported(t *testing.T) {
	now := time.Now()
	fresh := makeReading(now, false)
	stale := makeReading(now.Add(-time.Hour), true)
	source := &fakeSource{readings: []models.ExportReading{fresh, stale}}
	exp := New(source)

	_, count, err := exp.Generate(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, source.marked, 1)
	assert.Equal(t, fresh.ID, source.marked[0])
}

func TestGenerate_SecondRunIsEmpty(t *testing.T) {
	source := &fakeSource{readings: []models.ExportReading{makeReading(time.Now(), false)}}
	exp := New(source)

	_, count, err := exp.Generate(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, count, err := exp.Generate(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "everything was claimed by the first run")

	// An empty export is still a valid workbook with a header row.
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Tank Readings")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGenerate_DateRangeBounds(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inRange := makeReading(base.Add(24*time.Hour), false)
	before := makeReading(base.Add(-24*time.Hour), false)
	source := &fakeSource{readings: []models.ExportReading{inRange, before}}
	exp := New(source)

	end := base.Add(48 * time.Hour)
	_, count, err := exp.Generate(context.Background(), &base, &end)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, source.marked, 1)
	assert.Equal(t, inRange.ID, source.marked[0])
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "tank-readings-2026-03-10.xlsx", Filename(now))
}

func TestFormatHelpers(t *testing.T) {
	pct := 12.34
	vol := 987.6
	assert.Equal(t, "12.3%", formatPercentage(&pct))
	assert.Equal(t, "", formatPercentage(nil))
	assert.Equal(t, "987.60", formatVolume(&vol))
	assert.Equal(t, "", formatVolume(nil))
}
