package collector

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// VisitRecord is one row of the personal visit log CSV
type VisitRecord struct {
	ParkName  string
	VisitDate string
}

// LoadVisitLog reads the visit log CSV. The file must have a header row with
// park_name and visit_date columns; rows missing either value are skipped.
func LoadVisitLog(path string) ([]VisitRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening visit log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing visit log: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	nameIdx, dateIdx := -1, -1
	for i, col := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "park_name", "park":
			nameIdx = i
		case "visit_date", "date":
			dateIdx = i
		}
	}
	if nameIdx < 0 || dateIdx < 0 {
		return nil, fmt.Errorf("visit log missing park_name or visit_date column")
	}

	var records []VisitRecord
	for _, row := range rows[1:] {
		if len(row) <= nameIdx || len(row) <= dateIdx {
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		date := strings.TrimSpace(row[dateIdx])
		if name == "" || date == "" {
			continue
		}
		records = append(records, VisitRecord{ParkName: name, VisitDate: date})
	}
	return records, nil
}
