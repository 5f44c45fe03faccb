package importer

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeStore records upserts keyed by business identity the way the real
// repositories do, so re-imports resolve to the same IDs.
type fakeStore struct {
	mu        sync.Mutex
	customers map[string]uuid.UUID // keyed by email
	sites     map[string]uuid.UUID // keyed by drop point
	tanks     map[string]uuid.UUID // keyed by siteID/tankNumber

	siteAddress map[string]string

	failEmail string // UpsertCustomer fails for this email
	calls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers:   make(map[string]uuid.UUID),
		sites:       make(map[string]uuid.UUID),
		tanks:       make(map[string]uuid.UUID),
		siteAddress: make(map[string]string),
	}
}

func (s *fakeStore) UpsertCustomer(_ context.Context, name, email, phone string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if email == s.failEmail {
		return uuid.Nil, fmt.Errorf("customer upsert rejected for %s", email)
	}
	id, ok := s.customers[email]
	if !ok {
		id = uuid.New()
		s.customers[email] = id
	}
	return id, nil
}

func (s *fakeStore) UpsertSite(_ context.Context, dropPoint, address, suburb, state, postcode string, customerID uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sites[dropPoint]
	if !ok {
		id = uuid.New()
		s.sites[dropPoint] = id
	}
	s.siteAddress[dropPoint] = address
	return id, nil
}

func (s *fakeStore) UpsertTank(_ context.Context, siteID uuid.UUID, tankNumber string, capacity float64, product, serialNumber, tankType string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := siteID.String() + "/" + tankNumber
	id, ok := s.tanks[key]
	if !ok {
		id = uuid.New()
		s.tanks[key] = id
	}
	return id, nil
}

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportWorkbook_SingleCustomer(t *testing.T) {
	store := newFakeStore()
	imp := New(store, 0)

	wb := buildWorkbook(t, [][]interface{}{
		{"Customer Name", "Email", "Drop Point", "Address", "Tank Size 1", "Tank Size 2"},
		{"Acme Co", "ops@acme.example", "DP-100", "5 Factory Lane", "5,000 L", "2500"},
	})

	result, err := imp.ImportWorkbook(context.Background(), wb)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	assert.Empty(t, result.Errors)

	assert.Len(t, store.customers, 1)
	assert.Contains(t, store.customers, "ops@acme.example")
	assert.Len(t, store.sites, 1)
	assert.Len(t, store.tanks, 2)
}

func TestImportWorkbook_MissingDropPointRejectsRow(t *testing.T) {
	store := newFakeStore()
	imp := New(store, 0)

	wb := buildWorkbook(t, [][]interface{}{
		{"Customer Name", "Drop Point"},
		{"No Site Pty", ""},
	})

	result, err := imp.ImportWorkbook(context.Background(), wb)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Row 2: Missing Drop Point", result.Errors[0])

	// A rejected row must never touch the store.
	assert.Equal(t, 0, store.calls)
}

func TestImportWorkbook_Idempotent(t *testing.T) {
	store := newFakeStore()
	imp := New(store, 0)

	rows := [][]interface{}{
		{"Customer Name", "Email", "Drop Point", "Tank Size 1"},
		{"Acme Co", "ops@acme.example", "DP-100", "5000"},
		{"Bravo Gas", "", "DP-200", "900"},
	}

	for run := 0; run < 2; run++ {
		result, err := imp.ImportWorkbook(context.Background(), buildWorkbook(t, rows))
		require.NoError(t, err)
		assert.Equal(t, 2, result.Success)
		assert.Empty(t, result.Errors)
	}

	// Same business keys on both runs, so no duplicates accumulate.
	assert.Len(t, store.customers, 2)
	assert.Contains(t, store.customers, "dp200@import.lpgreadings.au")
	assert.Len(t, store.sites, 2)
	assert.Len(t, store.tanks, 2)
}

func TestImportWorkbook_StoreErrorIsRowScoped(t *testing.T) {
	store := newFakeStore()
	store.failEmail = "bad@acme.example"
	imp := New(store, 1) // sequential, deterministic call order

	wb := buildWorkbook(t, [][]interface{}{
		{"Customer Name", "Email", "Drop Point"},
		{"Good Co", "good@acme.example", "DP-1"},
		{"Bad Co", "bad@acme.example", "DP-2"},
		{"Also Good Co", "also@acme.example", "DP-3"},
	})

	result, err := imp.ImportWorkbook(context.Background(), wb)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Row 3: customer upsert rejected for bad@acme.example", result.Errors[0])
}

func TestImportRows_ErrorsKeepSheetOrder(t *testing.T) {
	store := newFakeStore()
	imp := New(store, 3)

	cm := MapHeader([]string{"Customer Name", "Drop Point"})
	rows := [][]string{
		{"A", ""},
		{"B", "DP-1"},
		{"C", ""},
		{"D", ""},
	}

	result := imp.ImportRows(context.Background(), cm, rows)

	assert.Equal(t, 1, result.Success)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, []string{
		"Row 2: Missing Drop Point",
		"Row 4: Missing Drop Point",
		"Row 5: Missing Drop Point",
	}, result.Errors)
}

func TestImportRows_BlankRowsSkipped(t *testing.T) {
	store := newFakeStore()
	imp := New(store, 0)

	cm := MapHeader([]string{"Customer Name", "Drop Point"})
	rows := [][]string{
		{"Acme Co", "DP-100"},
		{"", ""},
		{"  ", "\t"},
		{},
	}

	result := imp.ImportRows(context.Background(), cm, rows)

	assert.Equal(t, 1, result.Success)
	assert.Empty(t, result.Errors)
}

func TestImportRows_SharedDropPointSettlesOnOneAddress(t *testing.T) {
	store := newFakeStore()
	imp := New(store, 5)

	cm := MapHeader([]string{"Drop Point", "Address"})
	rows := [][]string{
		{"DP-100", "1 First Street"},
		{"DP-100", "2 Second Street"},
	}

	result := imp.ImportRows(context.Background(), cm, rows)

	assert.Equal(t, 2, result.Success)
	assert.Len(t, store.sites, 1, "both rows upsert the same site")
	assert.Contains(t, []string{"1 First Street", "2 Second Street"}, store.siteAddress["DP-100"])
}

func TestImportWorkbook_HeaderOnlySheet(t *testing.T) {
	store := newFakeStore()
	imp := New(store, 0)

	wb := buildWorkbook(t, [][]interface{}{
		{"Customer Name", "Drop Point"},
	})

	result, err := imp.ImportWorkbook(context.Background(), wb)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Success)
	assert.Empty(t, result.Errors)
}

func TestImportWorkbook_NotAWorkbook(t *testing.T) {
	store := newFakeStore()
	imp := New(store, 0)

	_, err := imp.ImportWorkbook(context.Background(), bytes.NewReader([]byte("not an xlsx payload")))
	require.Error(t, err)
}
