package core

import (
	"fmt"

	"tidygrid/config"
)

// Table is the loaded tidy table with a field-name mapping over its columns.
type Table struct {
	Columns      config.ColumnConfig
	Data         []map[string]interface{}
	FieldMapping map[string]string // field name -> column name
}

// fieldColumns maps the field names used in filters and placeholders to the
// configured column names.
func fieldColumns(cols config.ColumnConfig) map[string]string {
	mapping := map[string]string{
		"groupingTag": cols.GroupingTag,
		"id":          cols.ID,
		"source":      cols.Source,
		"totalReads":  cols.TotalReads,
		"transcript":  cols.Transcript,
		"tpm":         cols.TPM,
	}
	if cols.NumReads != "" {
		mapping["numReads"] = cols.NumReads
	}
	return mapping
}

// NewTable creates a new Table instance.
func NewTable(cols config.ColumnConfig, data []map[string]interface{}) *Table {
	return &Table{
		Columns:      cols,
		Data:         data,
		FieldMapping: fieldColumns(cols),
	}
}

// column resolves a field name to its column; any other key is taken as a column name.
func (t *Table) column(key string) string {
	if col, ok := t.FieldMapping[key]; ok {
		return col
	}
	return key
}

// ColumnParams rewrites param keys that are field names into column names.
func ColumnParams(cols config.ColumnConfig, params map[string]string) map[string]string {
	if len(params) == 0 {
		return nil
	}
	mapping := fieldColumns(cols)
	out := make(map[string]string, len(params))
	for k, v := range params {
		if col, ok := mapping[k]; ok {
			k = col
		}
		out[k] = v
	}
	return out
}

// DistinctValues returns the unique non-empty values of a field in the order
// they first appear.
func (t *Table) DistinctValues(field string) []string {
	colName := t.column(field)

	seen := make(map[string]struct{})
	var result []string

	for _, row := range t.Data {
		val, ok := row[colName]
		if !ok {
			continue
		}
		strVal := fmt.Sprintf("%v", val)
		if strVal == "" {
			continue
		}
		if _, exists := seen[strVal]; !exists {
			seen[strVal] = struct{}{}
			result = append(result, strVal)
		}
	}
	return result
}

// Filter keeps the rows whose columns equal every param value. Keys may be
// field names ("source") or column names. Rows without the column are kept.
func (t *Table) Filter(params map[string]string) {
	if len(params) == 0 {
		return
	}

	var filtered []map[string]interface{}

	for _, row := range t.Data {
		match := true
		for key, want := range params {
			if rowVal, hasCol := row[t.column(key)]; hasCol {
				if fmt.Sprintf("%v", rowVal) != want {
					match = false
					break
				}
			}
		}
		if match {
			filtered = append(filtered, row)
		}
	}

	t.Data = filtered
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Data)
}

// Copy returns a Table whose row slice can be filtered independently.
// Rows themselves are shared, they are never modified.
func (t *Table) Copy() *Table {
	data := make([]map[string]interface{}, len(t.Data))
	copy(data, t.Data)
	return &Table{
		Columns:      t.Columns,
		Data:         data,
		FieldMapping: t.FieldMapping,
	}
}
