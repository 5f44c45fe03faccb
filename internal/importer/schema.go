package importer

import (
	"strconv"
	"strings"
)

// Field is the canonical name a recognized spreadsheet header maps to.
type Field string

const (
	FieldCustomerName Field = "customerName"
	FieldContactName  Field = "contactName"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phone"
	FieldAddress      Field = "address"
	FieldSiteName     Field = "siteName"
	FieldSuburb       Field = "suburb"
	FieldState        Field = "state"
	FieldPostcode     Field = "postcode"
	FieldDropPoint    Field = "dropPoint"
	FieldTankNumber   Field = "tankNumber"
	FieldCapacity     Field = "capacity"
	FieldSerialNumber Field = "serialNumber"
	FieldProduct      Field = "product"
	FieldTankType     Field = "tankType"
	FieldNotes        Field = "notes"
)

// MaxTankIndex bounds the per-tank capacity series (tank-size-1 .. tank-size-8).
const MaxTankIndex = 8

// TankSizeField returns the canonical key for the n-th tank-size column.
func TankSizeField(n int) Field {
	return Field("tankSize" + strconv.Itoa(n))
}

// ColumnMap maps a canonical field to its 1-based column index for one
// import run. Absence of a key means the sheet does not carry that field.
type ColumnMap map[Field]int

// headerRule pairs a predicate over a normalized header cell with the
// canonical field it resolves to. Rules are evaluated top to bottom and the
// first match wins, so more specific rules must come before generic ones:
// "tank type" before "product", "capacity" before "city" (capacity contains
// the substring "city").
type headerRule struct {
	match func(string) bool
	field Field
}

var headerRules = []headerRule{
	{matchAll("customer", "name"), FieldCustomerName},
	{matchAll("contact", "name"), FieldContactName},
	{matchAny("email", "e-mail"), FieldEmail},
	{matchAny("phone", "telephone", "mobile"), FieldPhone},
	// "drop pont" is a known typo in supplier sheets.
	{matchAny("drop point", "droppoint", "drop pont"), FieldDropPoint},
	{matchAll("site", "name"), FieldSiteName},
	{matchAny("address", "street"), FieldAddress},
	{matchAll("tank", "type"), FieldTankType},
	{matchAll("tank", "number"), FieldTankNumber},
	{matchAny("tank no", "tank #"), FieldTankNumber},
	// A plain "tank size" header (no index) is a single capacity column.
	{matchAll("tank", "size"), FieldCapacity},
	{matchAny("capacity"), FieldCapacity},
	{matchAny("suburb", "city", "town"), FieldSuburb},
	{matchAny("state", "province"), FieldState},
	{matchAny("postcode", "post code", "zip"), FieldPostcode},
	{matchAny("serial"), FieldSerialNumber},
	{matchAny("product"), FieldProduct},
	{matchAll("gas", "type"), FieldProduct},
	{matchAny("note", "comment"), FieldNotes},
}

func matchAny(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
}

func matchAll(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if !strings.Contains(h, s) {
				return false
			}
		}
		return true
	}
}

// MapHeader resolves a header row into a ColumnMap. Header cells are
// lower-cased and trimmed before matching; unrecognized headers are ignored.
// A missing optional column is not an error; required-field checks happen
// per row, not here.
func MapHeader(header []string) ColumnMap {
	cm := make(ColumnMap)
	for i, cell := range header {
		h := strings.ToLower(strings.TrimSpace(cell))
		if h == "" {
			continue
		}

		if n, ok := tankSizeIndex(h); ok {
			key := TankSizeField(n)
			if _, exists := cm[key]; !exists {
				cm[key] = i + 1
			}
			continue
		}

		for _, rule := range headerRules {
			if rule.match(h) {
				if _, exists := cm[rule.field]; !exists {
					cm[rule.field] = i + 1
				}
				break
			}
		}
	}
	return cm
}

// tankSizeIndex detects headers encoding a per-tank capacity series, e.g.
// "Tank Size 1", "tank-size-2" or "TankSize3". A "tank size" header without
// a usable index falls through to the generic rules (where it resolves to
// capacity).
func tankSizeIndex(h string) (int, bool) {
	if !strings.Contains(h, "tank") || !strings.Contains(h, "size") {
		return 0, false
	}

	// Take the trailing run of digits.
	end := len(h)
	for end > 0 && !isDigit(h[end-1]) {
		end--
	}
	start := end
	for start > 0 && isDigit(h[start-1]) {
		start--
	}
	if start == end {
		return 0, false
	}

	n, err := strconv.Atoi(h[start:end])
	if err != nil || n < 1 || n > MaxTankIndex {
		return 0, false
	}
	return n, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
