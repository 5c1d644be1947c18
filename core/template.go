package core

import (
	"fmt"

	"tidygrid/config"
)

// CellRole tells the renderer how a cell is styled.
type CellRole int

const (
	RoleSummaryHeader CellRole = iota
	RoleSummaryValue
	RoleDetailHeader
	RoleDetailValue
)

func (r CellRole) String() string {
	switch r {
	case RoleSummaryHeader:
		return "summary-header"
	case RoleSummaryValue:
		return "summary-value"
	case RoleDetailHeader:
		return "detail-header"
	case RoleDetailValue:
		return "detail-value"
	}
	return fmt.Sprintf("CellRole(%d)", int(r))
}

// Cell is one value to write, in one-based sheet coordinates.
// Numeric marks measurement cells (total reads, TPM, NumReads).
type Cell struct {
	Col     int
	Row     int
	Value   interface{}
	Role    CellRole
	Numeric bool
}

// CellTemplate lays out a block's cells relative to its anchor.
type CellTemplate struct {
	Variant *config.VariantConfig
}

// NewCellTemplate creates a CellTemplate for a report variant.
func NewCellTemplate(v *config.VariantConfig) *CellTemplate {
	return &CellTemplate{Variant: v}
}

// PageLayout combines the grid settings with the variant's block size.
func (t *CellTemplate) PageLayout(l config.LayoutConfig) PageLayout {
	return PageLayout{
		BlocksPerPage: l.BlocksPerPage,
		ColsPerRow:    l.ColsPerRow,
		BlockWidth:    t.Variant.BlockWidth,
		BlockHeight:   t.Variant.BlockHeight,
	}
}

// Cells returns the cells of block b anchored at pos, in write order.
// Detail rows are not clipped to the block height.
func (t *CellTemplate) Cells(b Block, pos GridPosition) []Cell {
	v := t.Variant
	cells := make([]Cell, 0, 2*len(v.SummaryLabels)+len(v.DetailLabels)*(1+len(b.Transcripts)))

	for i, label := range v.SummaryLabels {
		cells = append(cells, Cell{Col: pos.StartCol + i, Row: pos.StartRow + v.SummaryHeaderRow, Value: label, Role: RoleSummaryHeader})
	}
	for i, value := range []interface{}{b.ID, b.SourceTissue, b.TotalReads} {
		cells = append(cells, Cell{Col: pos.StartCol + i, Row: pos.StartRow + v.SummaryValueRow, Value: value, Role: RoleSummaryValue, Numeric: i == 2})
	}
	for i, label := range v.DetailLabels {
		cells = append(cells, Cell{Col: pos.StartCol + i, Row: pos.StartRow + v.DetailHeaderRow, Value: label, Role: RoleDetailHeader})
	}

	for j, tr := range b.Transcripts {
		row := pos.StartRow + v.DetailStartRow + j
		values := []interface{}{tr.Transcript, tr.TPM}
		if v.IncludeNumReads {
			values = append(values, tr.NumReads)
		}
		for i, value := range values {
			cells = append(cells, Cell{Col: pos.StartCol + i, Row: row, Value: value, Role: RoleDetailValue, Numeric: i > 0})
		}
	}
	return cells
}
