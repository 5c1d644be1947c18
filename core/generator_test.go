package core

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tidygrid/config"

	"github.com/xuri/excelize/v2"
)

func TestReplacePlaceholders(t *testing.T) {
	params := map[string]string{
		"page":  "2",
		"pages": "3",
	}

	got := replacePlaceholders("Summary_Page_${page}_of_${pages}", params)
	if got != "Summary_Page_2_of_3" {
		t.Fatalf("expected placeholder replacements, got %q", got)
	}
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want interface{}
	}{
		{"42", int64(42)},
		{" 7 ", int64(7)},
		{"3.25", 3.25},
		{"ALB", "ALB"},
		{"NaN", "NaN"},
		{"007", "007"},
		{"12345678901234567890", "12345678901234567890"},
		{"0x1p4", "0x1p4"},
		{"1e3", 1000.0},
		{"-0.5", -0.5},
		{"1e999", "1e999"},
		{"", ""},
		{12, 12},
		{nil, nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			if got := cellValue(tt.in); got != tt.want {
				t.Errorf("cellValue(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

// quantRows builds n samples with two transcripts each, all values as strings
// the way the CSV fetcher returns them.
func quantRows(n int) []map[string]interface{} {
	var rows []map[string]interface{}
	for i := 0; i < n; i++ {
		for j := 0; j < 2; j++ {
			rows = append(rows, map[string]interface{}{
				"unique_grouping_tag": fmt.Sprintf("S%d_liver", i),
				"ID":                  fmt.Sprintf("%d", i+1),
				"source":              "liver",
				"ttl_reads":           "1000",
				"common_nom":          fmt.Sprintf("T%d_%d", i, j),
				"TPM":                 "2.5",
				"NumReads":            "25",
			})
		}
	}
	return rows
}

func generate(t *testing.T, cfg *config.ReportConfig, rows []map[string]interface{}) (*Result, string) {
	t.Helper()
	dir := t.TempDir()
	fetcher := &MockDataFetcher{Data: map[string][]map[string]interface{}{"quant.csv": rows}}
	gc, err := NewGenerationContext(cfg, config.NewMemoryVariantRegistry(nil), fetcher, "quant.csv", nil)
	if err != nil {
		t.Fatalf("NewGenerationContext error: %v", err)
	}
	res, err := NewGenerator(gc).Generate(context.Background(), dir)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	return res, dir
}

func TestGenerate_Workbooks(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.Layout.BlocksPerPage = 2

	res, dir := generate(t, cfg, quantRows(5))

	wantPaths := []string{
		filepath.Join(dir, "quant_multi_sheet.xlsx"),
		filepath.Join(dir, "quant_single_sheet.xlsx"),
	}
	if got := res.Paths(); !reflect.DeepEqual(got, wantPaths) {
		t.Fatalf("Paths() = %v, want %v", got, wantPaths)
	}
	if res.Blocks != 5 {
		t.Errorf("Blocks = %d, want 5", res.Blocks)
	}

	multi, err := excelize.OpenFile(wantPaths[0])
	if err != nil {
		t.Fatalf("open multi: %v", err)
	}
	defer multi.Close()

	wantSheets := []string{"Summary_Page_1_of_3", "Summary_Page_2_of_3", "Summary_Page_3_of_3"}
	if got := multi.GetSheetList(); !reflect.DeepEqual(got, wantSheets) {
		t.Fatalf("sheets = %v, want %v", got, wantSheets)
	}

	tests := []struct {
		sheet string
		cell  string
		want  string
	}{
		{"Summary_Page_1_of_3", "A1", "ID"},
		{"Summary_Page_1_of_3", "A2", "1"},
		{"Summary_Page_1_of_3", "B2", "liver"},
		{"Summary_Page_1_of_3", "C3", "NumReads"},
		{"Summary_Page_1_of_3", "A4", "T0_0"},
		{"Summary_Page_1_of_3", "A5", "T0_1"},
		{"Summary_Page_1_of_3", "E2", "2"},
		{"Summary_Page_3_of_3", "A2", "5"},
		{"Summary_Page_3_of_3", "E1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.sheet+"!"+tt.cell, func(t *testing.T) {
			got, err := multi.GetCellValue(tt.sheet, tt.cell)
			if err != nil {
				t.Fatalf("GetCellValue error: %v", err)
			}
			if got != tt.want {
				t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, got, tt.want)
			}
		})
	}

	width, err := multi.GetColWidth("Summary_Page_1_of_3", "L")
	if err != nil {
		t.Fatalf("GetColWidth error: %v", err)
	}
	if width != 15 {
		t.Errorf("column L width = %v, want 15", width)
	}

	single, err := excelize.OpenFile(wantPaths[1])
	if err != nil {
		t.Fatalf("open single: %v", err)
	}
	defer single.Close()

	if got := single.GetSheetList(); !reflect.DeepEqual(got, []string{"All_Summaries"}) {
		t.Fatalf("single sheets = %v", got)
	}
	// Block 4 sits on the second grid row, second column.
	if got, _ := single.GetCellValue("All_Summaries", "E9"); got != "5" {
		t.Errorf("All_Summaries!E9 = %q, want 5", got)
	}
}

func TestGenerate_SingleSheetCap(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.Variant = config.VariantBasic
	cfg.MultiSheet.Enabled = false
	cfg.SingleSheet.MaxBlocks = 3

	res, _ := generate(t, cfg, quantRows(5))

	if len(res.Outputs) != 1 || res.Outputs[0].Kind != OutputSingleSheet {
		t.Fatalf("outputs = %+v, want one single-sheet workbook", res.Outputs)
	}
	pag := res.Outputs[0].Pagination
	if len(pag.Placements) != 3 || pag.Dropped != 2 {
		t.Errorf("placed = %d, dropped = %d, want 3 and 2", len(pag.Placements), pag.Dropped)
	}

	f, err := excelize.OpenFile(res.Outputs[0].Path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	// Basic variant: blank spacer row, two detail columns.
	if got, _ := f.GetCellValue("All_Summaries", "A3"); got != "" {
		t.Errorf("spacer row A3 = %q, want empty", got)
	}
	if got, _ := f.GetCellValue("All_Summaries", "B4"); got != "TPM" {
		t.Errorf("B4 = %q, want TPM", got)
	}
	if got, _ := f.GetCellValue("All_Summaries", "C5"); got != "" {
		t.Errorf("C5 = %q, want empty", got)
	}
}

func TestGenerate_VariantSingleSheetCap(t *testing.T) {
	tests := []struct {
		name        string
		maxBlocks   int
		wantPlaced  int
		wantDropped int
	}{
		{"Variant Default", 0, 12, 2},
		{"Config Override", 20, 14, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultReportConfig()
			cfg.Variant = config.VariantBasic
			cfg.MultiSheet.Enabled = false
			cfg.SingleSheet.MaxBlocks = tt.maxBlocks

			res, _ := generate(t, cfg, quantRows(14))
			pag := res.Outputs[0].Pagination
			if len(pag.Placements) != tt.wantPlaced || pag.Dropped != tt.wantDropped {
				t.Errorf("placed = %d, dropped = %d, want %d and %d",
					len(pag.Placements), pag.Dropped, tt.wantPlaced, tt.wantDropped)
			}
		})
	}
}

func TestGenerate_PrefixAndSheetPattern(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.Output.Prefix = "${name}_run"
	cfg.MultiSheet.SheetName = "${name} ${page}"
	cfg.SingleSheet.Enabled = false

	res, dir := generate(t, cfg, quantRows(1))

	if want := filepath.Join(dir, "summary_run_multi_sheet.xlsx"); res.Outputs[0].Path != want {
		t.Errorf("path = %s, want %s", res.Outputs[0].Path, want)
	}
	if got := res.Outputs[0].Sheets; !reflect.DeepEqual(got, []string{"summary 1"}) {
		t.Errorf("sheets = %v", got)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.ReportConfig)
		rows    []map[string]interface{}
		wantMsg string
	}{
		{
			name:    "Missing Column",
			mutate:  func(c *config.ReportConfig) { c.Columns.TPM = "tpm_value" },
			rows:    quantRows(1),
			wantMsg: "missing key",
		},
		{
			name: "Repeating Sheet Name",
			mutate: func(c *config.ReportConfig) {
				c.Layout.BlocksPerPage = 1
				c.MultiSheet.SheetName = "Summary"
			},
			rows:    quantRows(2),
			wantMsg: "repeats",
		},
		{
			name:    "Invalid Layout",
			mutate:  func(c *config.ReportConfig) { c.Layout.ColsPerRow = 0 },
			rows:    quantRows(1),
			wantMsg: "invalid config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultReportConfig()
			tt.mutate(cfg)
			fetcher := &MockDataFetcher{Data: map[string][]map[string]interface{}{"quant.csv": tt.rows}}
			gc, err := NewGenerationContext(cfg, config.NewMemoryVariantRegistry(nil), fetcher, "quant.csv", nil)
			if err != nil {
				t.Fatalf("NewGenerationContext error: %v", err)
			}
			_, err = NewGenerator(gc).Generate(context.Background(), t.TempDir())
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Generate() error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestGenerate_TextFieldsKeptVerbatim(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.MultiSheet.Enabled = false

	rows := []map[string]interface{}{{
		"unique_grouping_tag": "S1",
		"ID":                  "007",
		"source":              "liver",
		"ttl_reads":           "12345678901234567890",
		"common_nom":          "0x1p4",
		"TPM":                 "2.5",
		"NumReads":            "25",
	}}
	res, _ := generate(t, cfg, rows)

	f, err := excelize.OpenFile(res.Outputs[0].Path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	tests := []struct {
		cell string
		want string
	}{
		{"A2", "007"},
		{"C2", "12345678901234567890"},
		{"A4", "0x1p4"},
		{"B4", "2.5"},
		{"C4", "25"},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			if got, _ := f.GetCellValue("All_Summaries", tt.cell); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.cell, got, tt.want)
			}
		})
	}

	isText := func(cell string) bool {
		typ, err := f.GetCellType("All_Summaries", cell)
		if err != nil {
			t.Fatalf("GetCellType(%s) error: %v", cell, err)
		}
		return typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString
	}
	for _, cell := range []string{"A2", "C2", "A4"} {
		if !isText(cell) {
			t.Errorf("%s should be stored as text", cell)
		}
	}
	if isText("B4") || isText("C4") {
		t.Error("measurements should be stored as numbers")
	}
}
