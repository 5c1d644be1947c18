package core

import (
	"fmt"

	"tidygrid/config"
)

// TranscriptEntry is one detail line of a block.
type TranscriptEntry struct {
	Transcript interface{}
	TPM        interface{}
	NumReads   interface{}
}

// Block is the summary of one sample: the fields shared by all of its rows
// plus one TranscriptEntry per row, in input order.
type Block struct {
	Tag          string
	ID           interface{}
	SourceTissue interface{}
	TotalReads   interface{}
	Transcripts  []TranscriptEntry
}

// Extractor turns raw records into blocks.
type Extractor struct {
	Columns         config.ColumnConfig
	IncludeNumReads bool
	Strict          bool
}

// NewExtractor creates an Extractor for the given report variant.
func NewExtractor(cols config.ColumnConfig, variant *config.VariantConfig, strict bool) *Extractor {
	return &Extractor{
		Columns:         cols,
		IncludeNumReads: variant.IncludeNumReads,
		Strict:          strict,
	}
}

// Extract converts records to rows and groups them into blocks.
func (e *Extractor) Extract(records []map[string]interface{}) ([]Block, error) {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, err := RowFromRecord(rec, e.Columns, e.IncludeNumReads)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return GroupRows(rows, e.Strict)
}

// GroupRows groups rows by grouping tag. Blocks come out in the order their
// tag first appears. Summary fields are taken from the first row of each
// group; with strict set, a later row disagreeing on them is an error.
func GroupRows(rows []Row, strict bool) ([]Block, error) {
	blocks := make([]Block, 0)
	index := make(map[string]int)

	for i, row := range rows {
		bi, seen := index[row.GroupingTag]
		if !seen {
			bi = len(blocks)
			index[row.GroupingTag] = bi
			blocks = append(blocks, Block{
				Tag:          row.GroupingTag,
				ID:           row.ID,
				SourceTissue: row.Source,
				TotalReads:   row.TotalReads,
			})
		} else if strict {
			if err := checkSummary(&blocks[bi], row); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}

		blocks[bi].Transcripts = append(blocks[bi].Transcripts, TranscriptEntry{
			Transcript: row.TranscriptName,
			TPM:        row.TPM,
			NumReads:   row.NumReads,
		})
	}
	return blocks, nil
}

func checkSummary(b *Block, row Row) error {
	for _, f := range []struct {
		name      string
		have, got interface{}
	}{
		{"id", b.ID, row.ID},
		{"source", b.SourceTissue, row.Source},
		{"total_reads", b.TotalReads, row.TotalReads},
	} {
		if fmt.Sprintf("%v", f.have) != fmt.Sprintf("%v", f.got) {
			return fmt.Errorf("%w: tag %q %s is %v, earlier row had %v", ErrInconsistentGroup, b.Tag, f.name, f.got, f.have)
		}
	}
	return nil
}
