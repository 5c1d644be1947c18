package core

import (
	"errors"
	"fmt"

	"tidygrid/config"
)

var (
	// ErrMissingKey is returned when a record lacks a required column.
	ErrMissingKey = errors.New("missing key")
	// ErrInvalidConfig is returned for non-positive layout parameters.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInconsistentGroup is returned in strict mode when the summary fields
	// of one sample differ between its rows.
	ErrInconsistentGroup = errors.New("inconsistent group")
)

// Row is one transcript measurement of one sample.
type Row struct {
	GroupingTag    string
	ID             interface{}
	Source         interface{}
	TotalReads     interface{}
	TranscriptName interface{}
	TPM            interface{}
	NumReads       interface{} // nil when the variant has no NumReads column
}

// RowFromRecord maps a raw record onto a Row using the column mapping.
// NumReads is only required when withNumReads is set.
func RowFromRecord(rec map[string]interface{}, cols config.ColumnConfig, withNumReads bool) (Row, error) {
	get := func(column string) (interface{}, error) {
		v, ok := rec[column]
		if !ok {
			return nil, fmt.Errorf("%w: column %q", ErrMissingKey, column)
		}
		return v, nil
	}

	var row Row
	var err error

	tag, err := get(cols.GroupingTag)
	if err != nil {
		return row, err
	}
	row.GroupingTag = fmt.Sprintf("%v", tag)

	for _, f := range []struct {
		column string
		dst    *interface{}
	}{
		{cols.ID, &row.ID},
		{cols.Source, &row.Source},
		{cols.TotalReads, &row.TotalReads},
		{cols.Transcript, &row.TranscriptName},
		{cols.TPM, &row.TPM},
	} {
		if *f.dst, err = get(f.column); err != nil {
			return row, err
		}
	}

	if withNumReads {
		if row.NumReads, err = get(cols.NumReads); err != nil {
			return row, err
		}
	}
	return row, nil
}
