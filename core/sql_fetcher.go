package core

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// SQLDataFetcher implements DataFetcher using a generic SQL database (MySQL, PostgreSQL).
// The source names the table.
type SQLDataFetcher struct {
	DB         *sql.DB
	DriverName string // "mysql" or "postgres"
	// OrderBy names a column to sort by so block order is repeatable.
	OrderBy string
}

// NewSQLDataFetcher creates a new fetcher.
func NewSQLDataFetcher(db *sql.DB, driverName, orderBy string) *SQLDataFetcher {
	return &SQLDataFetcher{
		DB:         db,
		DriverName: driverName,
		OrderBy:    orderBy,
	}
}

func (f *SQLDataFetcher) quote(ident string) string {
	if f.DriverName == "postgres" {
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// quoteTable quotes each part of a possibly schema-qualified table name.
func (f *SQLDataFetcher) quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = f.quote(p)
	}
	return strings.Join(parts, ".")
}

// buildQuery renders the SELECT for table with one equality condition per
// param, in key order.
func (f *SQLDataFetcher) buildQuery(table string, params map[string]string) (string, []interface{}) {
	query := "SELECT * FROM " + f.quoteTable(table)
	var args []interface{}

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		conditions := make([]string, 0, len(keys))
		for i, k := range keys {
			if f.DriverName == "postgres" {
				conditions = append(conditions, fmt.Sprintf("%s = $%d", f.quote(k), i+1))
			} else {
				// MySQL and others usually use ?
				conditions = append(conditions, fmt.Sprintf("%s = ?", f.quote(k)))
			}
			args = append(args, params[k])
		}
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if f.OrderBy != "" {
		query += " ORDER BY " + f.quote(f.OrderBy)
	}
	return query, args
}

// Fetch executes a SELECT query on the table named by source.
// It applies simple equality filtering based on params.
func (f *SQLDataFetcher) Fetch(ctx context.Context, source string, params map[string]string) ([]map[string]interface{}, error) {
	query, args := f.buildQuery(source, params)
	slog.Debug("Querying table", "driver", f.DriverName, "query", query)

	rows, err := f.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var result []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		entry := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			// MySQL returns text columns as []byte
			if b, ok := values[i].([]byte); ok {
				entry[col] = string(b)
			} else {
				entry[col] = values[i]
			}
		}
		result = append(result, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
