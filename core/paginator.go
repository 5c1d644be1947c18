package core

import "fmt"

// PageLayout is the block grid of a page. BlockWidth and BlockHeight are in cells.
type PageLayout struct {
	BlocksPerPage int
	ColsPerRow    int
	BlockWidth    int
	BlockHeight   int
}

// OccupiedColumns is the number of sheet columns spanned by a full grid row.
func (l PageLayout) OccupiedColumns() int {
	return l.ColsPerRow * l.BlockWidth
}

func (l PageLayout) validateGrid() error {
	if l.ColsPerRow <= 0 {
		return fmt.Errorf("%w: cols per row must be positive, got %d", ErrInvalidConfig, l.ColsPerRow)
	}
	if l.BlockWidth <= 0 {
		return fmt.Errorf("%w: block width must be positive, got %d", ErrInvalidConfig, l.BlockWidth)
	}
	if l.BlockHeight <= 0 {
		return fmt.Errorf("%w: block height must be positive, got %d", ErrInvalidConfig, l.BlockHeight)
	}
	return nil
}

// Validate checks the layout for the paginated variant.
func (l PageLayout) Validate() error {
	if l.BlocksPerPage <= 0 {
		return fmt.Errorf("%w: blocks per page must be positive, got %d", ErrInvalidConfig, l.BlocksPerPage)
	}
	return l.validateGrid()
}

// GridPosition locates a block. Page, GridRow and GridCol are zero-based;
// StartRow and StartCol are one-based sheet coordinates of the block's top-left cell.
type GridPosition struct {
	Page     int
	GridRow  int
	GridCol  int
	StartRow int
	StartCol int
}

// Placement pairs a block with its position.
type Placement struct {
	Block    Block
	Position GridPosition
}

// Page holds the placements of one sheet.
type Page struct {
	Index           int
	Placements      []Placement
	OccupiedColumns int // columns that get the uniform width
}

// Pagination is the result of a pagination pass.
type Pagination struct {
	Layout     PageLayout
	PageCount  int
	Pages      []Page
	Placements []Placement // every placement, in block order
	Dropped    int         // blocks beyond the single-sheet cap
}

// GridRows is the number of block rows used on the fullest page.
func (p *Pagination) GridRows() int {
	rows := 0
	for _, page := range p.Pages {
		if n := len(page.Placements); n > 0 {
			if r := (n + p.Layout.ColsPerRow - 1) / p.Layout.ColsPerRow; r > rows {
				rows = r
			}
		}
	}
	return rows
}

func position(i, perPage int, l PageLayout) GridPosition {
	local := i % perPage
	col := local % l.ColsPerRow
	row := local / l.ColsPerRow
	return GridPosition{
		Page:     i / perPage,
		GridRow:  row,
		GridCol:  col,
		StartRow: 1 + row*l.BlockHeight,
		StartCol: 1 + col*l.BlockWidth,
	}
}

func layoutPages(blocks []Block, perPage, pageCount int, l PageLayout) *Pagination {
	p := &Pagination{
		Layout:     l,
		PageCount:  pageCount,
		Pages:      make([]Page, pageCount),
		Placements: make([]Placement, 0, len(blocks)),
	}
	for i := range p.Pages {
		p.Pages[i] = Page{Index: i, OccupiedColumns: l.OccupiedColumns()}
	}
	for i, b := range blocks {
		pl := Placement{Block: b, Position: position(i, perPage, l)}
		p.Placements = append(p.Placements, pl)
		page := &p.Pages[pl.Position.Page]
		page.Placements = append(page.Placements, pl)
	}
	return p
}

// Paginate spreads blocks over pages of layout.BlocksPerPage blocks, filling
// each page's grid left to right, top to bottom. An empty input still yields
// one empty page.
func Paginate(blocks []Block, layout PageLayout) (*Pagination, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	pageCount := (len(blocks) + layout.BlocksPerPage - 1) / layout.BlocksPerPage
	if pageCount == 0 {
		pageCount = 1
	}
	return layoutPages(blocks, layout.BlocksPerPage, pageCount, layout), nil
}

// PaginateSinglePage places every block on one unbounded page using the same
// grid math as Paginate; layout.BlocksPerPage is ignored. When maxBlocks is
// positive, blocks past the first maxBlocks are dropped and counted in Dropped.
func PaginateSinglePage(blocks []Block, layout PageLayout, maxBlocks int) (*Pagination, error) {
	if err := layout.validateGrid(); err != nil {
		return nil, err
	}
	if maxBlocks < 0 {
		return nil, fmt.Errorf("%w: max blocks must not be negative, got %d", ErrInvalidConfig, maxBlocks)
	}

	dropped := 0
	if maxBlocks > 0 && len(blocks) > maxBlocks {
		dropped = len(blocks) - maxBlocks
		blocks = blocks[:maxBlocks]
	}

	perPage := len(blocks)
	if perPage == 0 {
		perPage = 1
	}
	p := layoutPages(blocks, perPage, 1, layout)
	p.Dropped = dropped
	return p, nil
}
