package core

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/thedatashed/xlsxreader"
	"github.com/xuri/excelize/v2"
)

// XlsxDataFetcher implements DataFetcher over one sheet of an xlsx workbook.
// The first row names the columns.
type XlsxDataFetcher struct {
	// Sheet to read; empty means the first sheet.
	Sheet string
	GCS   *storage.Client
}

func NewXlsxDataFetcher(sheet string, gcs *storage.Client) *XlsxDataFetcher {
	return &XlsxDataFetcher{Sheet: sheet, GCS: gcs}
}

func (f *XlsxDataFetcher) Fetch(ctx context.Context, source string, params map[string]string) ([]map[string]interface{}, error) {
	// The workbook is itself a zip archive, so it is read as stored.
	rc, err := OpenRawSource(ctx, source, f.GCS)
	if err != nil {
		return nil, err
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	xl, err := xlsxreader.NewReader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", source, err)
	}
	if len(xl.Sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", source)
	}

	sheet := f.Sheet
	if sheet == "" {
		sheet = xl.Sheets[0]
	}

	var header map[int]string
	var result []map[string]interface{}

	rows := xl.ReadRows(sheet)
	defer drainRows(rows)

	for row := range rows {
		if row.Error != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, row.Error)
		}

		if header == nil {
			header = make(map[int]string, len(row.Cells))
			for _, c := range row.Cells {
				col, err := excelize.ColumnNameToNumber(c.Column)
				if err != nil {
					return nil, fmt.Errorf("bad header cell %s%d: %w", c.Column, c.Row, err)
				}
				header[col] = c.Value
			}
			continue
		}

		// Missing cells are blank in the table.
		item := make(map[string]interface{}, len(header))
		for _, name := range header {
			item[name] = ""
		}
		for _, c := range row.Cells {
			col, err := excelize.ColumnNameToNumber(c.Column)
			if err != nil {
				return nil, fmt.Errorf("bad cell %s%d: %w", c.Column, c.Row, err)
			}
			if name, ok := header[col]; ok {
				item[name] = c.Value
			}
		}

		if matchParams(item, params) {
			result = append(result, item)
		}
	}

	return result, nil
}

// drainRows consumes what is left of rows so the reader's goroutine can exit.
func drainRows(rows <-chan xlsxreader.Row) {
	for range rows {
	}
}
