package core

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"tidygrid/config"

	"github.com/xuri/excelize/v2"
)

// Output kinds.
const (
	OutputMultiSheet  = "multi"
	OutputSingleSheet = "single"
)

type Generator struct {
	Context *GenerationContext
}

func NewGenerator(ctx *GenerationContext) *Generator {
	return &Generator{Context: ctx}
}

// Output describes one written workbook.
type Output struct {
	Kind       string
	Path       string
	Sheets     []string
	Pagination *Pagination
}

// Result summarizes a generation run.
type Result struct {
	Blocks  int
	Outputs []Output
}

// Paths lists the written workbook paths in output order.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Outputs))
	for _, o := range r.Outputs {
		paths = append(paths, o.Path)
	}
	return paths
}

func replacePlaceholders(input string, params map[string]string) string {
	output := input
	for k, v := range params {
		placeholder := fmt.Sprintf("${%s}", k)
		output = strings.ReplaceAll(output, placeholder, v)
	}
	return output
}

func cloneParams(params map[string]string) map[string]string {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return copied
}

// Generate loads the table, extracts blocks and writes the enabled workbooks
// to outputDir as <prefix><suffix>.xlsx.
func (g *Generator) Generate(ctx context.Context, outputDir string) (*Result, error) {
	gc := g.Context
	cfg := gc.Config

	table, err := gc.Table(ctx)
	if err != nil {
		return nil, err
	}

	blocks, err := NewExtractor(cfg.Columns, gc.Variant, cfg.Strict).Extract(table.Data)
	if err != nil {
		return nil, fmt.Errorf("extract blocks: %w", err)
	}

	tmpl := NewCellTemplate(gc.Variant)
	layout := tmpl.PageLayout(cfg.Layout)
	prefix := gc.OutputPrefix()
	result := &Result{Blocks: len(blocks)}

	slog.Info("Blocks extracted",
		"blocks", len(blocks),
		"rows", table.RowCount(),
		"sources", table.DistinctValues("source"),
		"variant", gc.Variant.Name,
	)

	if cfg.MultiSheet.Enabled {
		pag, err := Paginate(blocks, layout)
		if err != nil {
			return nil, err
		}
		out, err := g.writeWorkbook(outputPath(outputDir, prefix, cfg.MultiSheet.Suffix), OutputMultiSheet, cfg.MultiSheet, tmpl, pag)
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, out)

		slog.Info("Multi-sheet workbook written",
			"path", out.Path,
			"sheets", pag.PageCount,
			"blocksPerSheet", layout.BlocksPerPage,
		)
	}

	if cfg.SingleSheet.Enabled {
		maxBlocks := cfg.SingleSheet.MaxBlocks
		if maxBlocks == 0 {
			maxBlocks = gc.Variant.MaxSingleBlocks
		}
		pag, err := PaginateSinglePage(blocks, layout, maxBlocks)
		if err != nil {
			return nil, err
		}
		if pag.Dropped > 0 {
			slog.Warn("Single sheet truncated", "maxBlocks", maxBlocks, "dropped", pag.Dropped)
		}
		out, err := g.writeWorkbook(outputPath(outputDir, prefix, cfg.SingleSheet.Suffix), OutputSingleSheet, cfg.SingleSheet, tmpl, pag)
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, out)

		slog.Info("Single-sheet workbook written",
			"path", out.Path,
			"blocks", len(pag.Placements),
			"grid", fmt.Sprintf("%dx%d", pag.GridRows(), layout.ColsPerRow),
		)
	}

	return result, nil
}

func outputPath(dir, prefix, suffix string) string {
	name := prefix + suffix + ".xlsx"
	if filepath.IsAbs(prefix) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// sheetName fills ${page} and ${pages} plus the context parameters into pattern.
func (g *Generator) sheetName(pattern string, page, pages int) string {
	params := cloneParams(g.Context.Parameters)
	params["page"] = strconv.Itoa(page)
	params["pages"] = strconv.Itoa(pages)
	return replacePlaceholders(pattern, params)
}

func (g *Generator) writeWorkbook(path, kind string, out config.SheetOutputConfig, tmpl *CellTemplate, pag *Pagination) (res Output, err error) {
	f := newExcelFile()
	defer func(f ExcelFile) {
		if closeErr := f.Close(); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("failed to close workbook: %w", closeErr)
			} else {
				err = fmt.Errorf("%w; (cleanup error: %v)", err, closeErr)
			}
		}
	}(f)

	styles, err := g.newStyles(f)
	if err != nil {
		return res, err
	}

	res = Output{Kind: kind, Path: path, Pagination: pag}
	seen := make(map[string]bool, len(pag.Pages))

	for i, page := range pag.Pages {
		name := g.sheetName(out.SheetName, i+1, pag.PageCount)
		if seen[name] {
			return res, fmt.Errorf("sheet name %q repeats; the pattern needs ${page}", name)
		}
		seen[name] = true

		if i == 0 {
			err = f.SetSheetName(f.GetSheetList()[0], name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			return res, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		res.Sheets = append(res.Sheets, name)

		if err := g.writePage(f, name, tmpl, page, styles); err != nil {
			return res, fmt.Errorf("processing sheet %s: %w", name, err)
		}
	}

	// Reset view to A1 for all sheets and set first sheet active
	for _, sheet := range f.GetSheetList() {
		_ = f.SetSelection(sheet, "A1")
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return res, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return res, fmt.Errorf("failed to save output: %w", err)
	}
	return res, nil
}

func (g *Generator) writePage(f ExcelFile, sheet string, tmpl *CellTemplate, page Page, styles map[CellRole]int) error {
	for _, pl := range page.Placements {
		for _, c := range tmpl.Cells(pl.Block, pl.Position) {
			cell, err := excelize.CoordinatesToCellName(c.Col, c.Row)
			if err != nil {
				return err
			}
			value := c.Value
			if c.Numeric {
				value = cellValue(value)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", cell, err)
			}
			if styleID, ok := styles[c.Role]; ok {
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return fmt.Errorf("failed to style %s: %w", cell, err)
				}
			}
		}
	}

	if page.OccupiedColumns > 0 && g.Context.Config.Style.ColumnWidth > 0 {
		endCol, err := excelize.ColumnNumberToName(page.OccupiedColumns)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", endCol, g.Context.Config.Style.ColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

// newStyles registers one style per cell role. Detail values stay unstyled.
func (g *Generator) newStyles(f ExcelFile) (map[CellRole]int, error) {
	st := g.Context.Config.Style
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	defs := map[CellRole]*excelize.Style{
		RoleSummaryHeader: {
			Font:      &excelize.Font{Bold: true, Color: st.HeaderFont},
			Alignment: center,
		},
		RoleSummaryValue: {
			Alignment: center,
		},
		RoleDetailHeader: {
			Font:      &excelize.Font{Bold: true},
			Alignment: center,
		},
	}
	if st.HeaderFill != "" {
		defs[RoleSummaryHeader].Fill = solidFill(st.HeaderFill)
	}
	if g.Context.Variant.StyleDetailHeader && st.DetailHeaderFill != "" {
		defs[RoleDetailHeader].Fill = solidFill(st.DetailHeaderFill)
	}

	styles := make(map[CellRole]int, len(defs))
	for role, def := range defs {
		id, err := f.NewStyle(def)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s style: %w", role, err)
		}
		styles[role] = id
	}
	return styles, nil
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

// plainNumber matches decimal text without leading zeros, hex or special values.
var plainNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// cellValue writes a measurement given as plain decimal text as a number so
// the sheet can sum it. Anything else, including integers outside int64, is
// written as given.
func cellValue(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if !plainNumber.MatchString(trimmed) {
		return s
	}
	if !strings.ContainsAny(trimmed, ".eE") {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
		return s
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(n, 0) {
		return n
	}
	return s
}
