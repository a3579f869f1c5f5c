package checks

import "fmt"

// SchemaInspector reports missing columns per table.
type SchemaInspector interface {
	MissingColumns() (map[string][]string, error)
}

// TableReport is the state of one table.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// DatabaseReport is the result of a schema check.
type DatabaseReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
}

// CheckDatabase verifies the history tables against the models the store writes.
func CheckDatabase(inspector SchemaInspector) (*DatabaseReport, error) {
	if inspector == nil {
		return nil, fmt.Errorf("run history is disabled")
	}

	missing, err := inspector.MissingColumns()
	if err != nil {
		return nil, err
	}

	report := &DatabaseReport{Matched: true, Tables: make(map[string]TableReport, len(missing))}
	for table, cols := range missing {
		tbl := TableReport{MissingColumns: []string{}, Status: "ok"}
		if len(cols) > 0 {
			tbl.MissingColumns = cols
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tbl
	}
	return report, nil
}
