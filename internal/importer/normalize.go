package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// placeholderDomain suffixes synthesized contact emails for rows that carry
// no explicit email column. The synthesized address doubles as the customer
// upsert key, so rows sharing a drop point and lacking an email collapse
// onto one customer record. That is deliberate deduplication.
const placeholderDomain = "import.lpgreadings.au"

// TankSpec is one tank to upsert for a row.
type TankSpec struct {
	TankNumber string
	Capacity   float64
}

// Record is a typed, defaulted row ready for upsert.
type Record struct {
	RowNumber int

	CustomerName string
	ContactName  string
	Email        string
	Phone        string

	DropPoint string
	Address   string
	Suburb    string
	State     string
	Postcode  string

	Product      string
	SerialNumber string
	TankType     string
	Notes        string

	Tanks []TankSpec
}

// NormalizeRow converts one raw spreadsheet row into a Record using the
// column map. rowNumber is the 1-based sheet row (header is row 1) and is
// used in rejection messages. The only required field is the drop point;
// everything else is defaulted.
func NormalizeRow(cells []string, cm ColumnMap, rowNumber int) (*Record, error) {
	get := func(f Field) string {
		idx, ok := cm[f]
		if !ok || idx < 1 || idx > len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx-1])
	}

	dropPoint := get(FieldDropPoint)
	if dropPoint == "" {
		return nil, fmt.Errorf("Row %d: Missing Drop Point", rowNumber)
	}

	rec := &Record{
		RowNumber:    rowNumber,
		ContactName:  get(FieldContactName),
		Phone:        get(FieldPhone),
		DropPoint:    dropPoint,
		Suburb:       get(FieldSuburb),
		State:        get(FieldState),
		Postcode:     get(FieldPostcode),
		SerialNumber: get(FieldSerialNumber),
		TankType:     get(FieldTankType),
		Notes:        get(FieldNotes),
	}

	rec.Product = get(FieldProduct)
	if rec.Product == "" {
		rec.Product = "LPG"
	}

	// Fallback chains: first non-empty wins.
	rec.CustomerName = get(FieldCustomerName)
	if rec.CustomerName == "" {
		rec.CustomerName = dropPoint
	}

	rec.Address = get(FieldAddress)
	if rec.Address == "" {
		rec.Address = get(FieldSiteName)
	}
	if rec.Address == "" {
		rec.Address = "Site " + dropPoint
	}

	rec.Email = get(FieldEmail)
	if rec.Email == "" {
		rec.Email = synthesizeEmail(dropPoint)
	}

	// Indexed tank-size series takes precedence over a single explicit
	// tank-number + capacity pair. A row with neither describes a site with
	// no tank data.
	for n := 1; n <= MaxTankIndex; n++ {
		if capacity := parseNumeric(get(TankSizeField(n))); capacity > 0 {
			rec.Tanks = append(rec.Tanks, TankSpec{
				TankNumber: "T" + strconv.Itoa(n),
				Capacity:   capacity,
			})
		}
	}
	if len(rec.Tanks) == 0 {
		if tankNumber := get(FieldTankNumber); tankNumber != "" {
			if capacity := parseNumeric(get(FieldCapacity)); capacity > 0 {
				rec.Tanks = append(rec.Tanks, TankSpec{
					TankNumber: tankNumber,
					Capacity:   capacity,
				})
			}
		}
	}

	return rec, nil
}

// parseNumeric extracts a float from mixed-format cell text such as
// "5,000 L" or "approx 2500". Every rune outside [0-9.] is stripped before
// parsing; an empty or failed parse yields 0.
func parseNumeric(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// synthesizeEmail derives a deterministic placeholder address from a drop
// point: lower-cased, non-alphanumerics stripped, fixed domain appended.
func synthesizeEmail(dropPoint string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(dropPoint) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String() + "@" + placeholderDomain
}
