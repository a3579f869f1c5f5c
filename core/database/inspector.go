package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one table column.
type ColumnInfo struct {
	Field string
	Type  string
}

// GetTableColumns returns the columns of a table with lowercased names and
// types. A missing table yields no columns.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	if db.Dialector.Name() == "sqlite" {
		type sqliteColumn struct {
			Name string
			Type string
		}
		var rows []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, r := range rows {
			columns = append(columns, ColumnInfo{Field: strings.ToLower(r.Name), Type: strings.ToLower(r.Type)})
		}
		return columns, nil
	}

	type mysqlColumn struct {
		ColumnName string
		DataType   string
	}
	var rows []mysqlColumn
	err := db.Raw(
		"SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position",
		tableName,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for _, r := range rows {
		columns = append(columns, ColumnInfo{Field: strings.ToLower(r.ColumnName), Type: strings.ToLower(r.DataType)})
	}
	return columns, nil
}

// MissingColumns returns the wanted columns that the table lacks, in the
// order given. Every column is missing when the table does not exist.
func MissingColumns(db *gorm.DB, tableName string, wanted ...string) ([]string, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c.Field] = true
	}

	var missing []string
	for _, w := range wanted {
		if !have[strings.ToLower(w)] {
			missing = append(missing, w)
		}
	}
	return missing, nil
}
