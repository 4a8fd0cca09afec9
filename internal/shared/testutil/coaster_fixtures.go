package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coastereda/pkg/contracts/domain"
)

// CoasterRow is one fixture row keyed by source column name. Absent columns are
// written as empty cells.
type CoasterRow map[string]string

// CoasterCSV renders rows under the full source header.
func CoasterCSV(t *testing.T, rows ...CoasterRow) string {
	t.Helper()

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(domain.SourceColumns); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, row := range rows {
		rec := make([]string, len(domain.SourceColumns))
		for i, name := range domain.SourceColumns {
			rec[i] = row[name]
		}
		if err := w.Write(rec); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush csv: %v", err)
	}
	return b.String()
}

// WriteCoasterCSV writes rows to coaster_db.csv in a fresh temp dir and returns
// the file path.
func WriteCoasterCSV(t *testing.T, rows ...CoasterRow) string {
	t.Helper()
	return WriteFile(t, "coaster_db.csv", CoasterCSV(t, rows...))
}

// WriteFile writes content to name inside t.TempDir().
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// FiveRowFixture is a small dataset with one duplicate composite key and one
// missing speed.
func FiveRowFixture() []CoasterRow {
	base := func(name, loc, date, year, speed, height string) CoasterRow {
		return CoasterRow{
			domain.SourceCoasterName:      name,
			domain.SourceLocation:         loc,
			domain.SourceStatus:           "Operating",
			domain.SourceManufacturer:     "Intamin",
			domain.SourceYearIntroduced:   year,
			domain.SourceLatitude:         "40.1",
			domain.SourceLongitude:        "-74.2",
			domain.SourceTypeMain:         "Steel",
			domain.SourceOpeningDateClean: date,
			domain.SourceSpeedMPH:         speed,
			domain.SourceHeightFT:         height,
			domain.SourceInversionsClean:  "2",
			domain.SourceGforceClean:      "4.5",
		}
	}
	return []CoasterRow{
		base("Alpha", "Park A", "1990-05-01", "1990", "50", "100"),
		base("Beta", "Park B", "2001-06-15", "2001", "60", "120"),
		base("Alpha", "Park A", "1990-05-01", "1990", "55", "110"),
		base("Gamma", "Park C", "1985-04-20", "1985", "", "90"),
		base("Delta", "Park D", "2010-07-04", "2010", "70", "200"),
	}
}
