package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/csimplestring/go-csv/detector"
)

// sniffBytes is how much of the table the delimiter detector sees.
const sniffBytes = 64 * 1024

// CsvDataFetcher implements DataFetcher using delimited text files.
// The source is a path (relative to RootDir unless absolute) or a gs:// URL;
// compressed files are read transparently.
type CsvDataFetcher struct {
	RootDir string
	// Delimiter overrides detection when non-zero.
	Delimiter rune
	GCS       *storage.Client
}

func NewCsvDataFetcher(rootDir string, gcs *storage.Client) *CsvDataFetcher {
	return &CsvDataFetcher{RootDir: rootDir, GCS: gcs}
}

func (f *CsvDataFetcher) path(source string) string {
	if IsGCSPath(source) || filepath.IsAbs(source) || f.RootDir == "" {
		return source
	}
	return filepath.Join(f.RootDir, source)
}

// knownDelimiters are the separators a detected candidate must be one of.
const knownDelimiters = ",\t;|"

// DetermineDelimiter returns the most likely delimiter of a CSV-like sample.
// Detector candidates outside knownDelimiters are skipped; without a usable
// candidate the known delimiter most frequent in the header line wins, and a
// comma is the last resort.
func DetermineDelimiter(sample []byte) rune {
	d := detector.New()
	for _, candidate := range d.DetectDelimiter(bytes.NewReader(sample), '"') {
		if len(candidate) == 1 && strings.ContainsRune(knownDelimiters, rune(candidate[0])) {
			return rune(candidate[0])
		}
	}

	header := sample
	if i := bytes.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	best, bestCount := ',', 0
	for _, r := range knownDelimiters {
		if n := bytes.Count(header, []byte(string(r))); n > bestCount {
			best, bestCount = r, n
		}
	}
	return best
}

var utf8BOM = []byte("\ufeff")

func (f *CsvDataFetcher) Fetch(ctx context.Context, source string, params map[string]string) ([]map[string]interface{}, error) {
	path := f.path(source)

	rc, err := OpenSource(ctx, path, f.GCS)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	// Excel's "CSV UTF-8" starts with a byte order mark.
	content = bytes.TrimPrefix(content, utf8BOM)

	delim := f.Delimiter
	if delim == 0 {
		sample := content
		if len(sample) > sniffBytes {
			sample = sample[:sniffBytes]
		}
		delim = DetermineDelimiter(sample)
	}
	slog.Debug("Reading delimited table", "path", path, "delimiter", string(delim))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv content: %w", err)
	}

	if len(records) < 1 {
		return nil, nil // Empty
	}

	header := records[0]
	var result []map[string]interface{}

	for i := 1; i < len(records); i++ {
		row := records[i]
		item := make(map[string]interface{}, len(header))
		for j, col := range row {
			if j < len(header) {
				item[header[j]] = col
			}
		}

		if matchParams(item, params) {
			result = append(result, item)
		}
	}

	return result, nil
}

// matchParams reports whether every param that names a column of item equals
// its value.
func matchParams(item map[string]interface{}, params map[string]string) bool {
	for k, v := range params {
		if colVal, hasCol := item[k]; hasCol {
			if fmt.Sprintf("%v", colVal) != v {
				return false
			}
		}
	}
	return true
}
