package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

// ManifestEntry records where one block was placed.
type ManifestEntry struct {
	Output      string `csv:"output"`
	Sheet       string `csv:"sheet"`
	Tag         string `csv:"tag"`
	ID          string `csv:"id"`
	Page        int    `csv:"page"`
	GridRow     int    `csv:"grid_row"`
	GridCol     int    `csv:"grid_col"`
	StartRow    int    `csv:"start_row"`
	StartCol    int    `csv:"start_col"`
	StartCell   string `csv:"start_cell"`
	Transcripts int    `csv:"transcripts"`
}

// ManifestEntries lists every placement of every output, pages one-based.
func ManifestEntries(res *Result) []*ManifestEntry {
	var entries []*ManifestEntry
	for _, out := range res.Outputs {
		for _, pl := range out.Pagination.Placements {
			pos := pl.Position
			sheet := ""
			if pos.Page < len(out.Sheets) {
				sheet = out.Sheets[pos.Page]
			}
			entries = append(entries, &ManifestEntry{
				Output:      filepath.Base(out.Path),
				Sheet:       sheet,
				Tag:         pl.Block.Tag,
				ID:          fmt.Sprintf("%v", pl.Block.ID),
				Page:        pos.Page + 1,
				GridRow:     pos.GridRow,
				GridCol:     pos.GridCol,
				StartRow:    pos.StartRow,
				StartCol:    pos.StartCol,
				StartCell:   startCell(pos),
				Transcripts: len(pl.Block.Transcripts),
			})
		}
	}
	return entries
}

func startCell(pos GridPosition) string {
	name, err := excelize.CoordinatesToCellName(pos.StartCol, pos.StartRow)
	if err != nil {
		return ""
	}
	return name
}

// WriteManifest writes the placement manifest of res as CSV to path.
func WriteManifest(path string, res *Result) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close manifest: %w", closeErr)
		}
	}()

	entries := ManifestEntries(res)
	if entries == nil {
		entries = []*ManifestEntry{}
	}
	if err := gocsv.Marshal(entries, f); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
