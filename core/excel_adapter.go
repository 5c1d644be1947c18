package core

import "github.com/xuri/excelize/v2"

// ExcelFile abstracts the workbook operations the renderer needs so it can be
// tested without excelize.
type ExcelFile interface {
	Close() error
	GetCellValue(sheet, cell string) (string, error)
	GetSheetIndex(name string) (int, error)
	GetSheetList() []string
	NewSheet(name string) (int, error)
	NewStyle(style *excelize.Style) (int, error)
	SaveAs(name string) error
	SetCellStyle(sheet, hcell, vcell string, styleID int) error
	SetCellValue(sheet, cell string, value interface{}) error
	SetColWidth(sheet, startCol, endCol string, width float64) error
	SetSheetName(source, target string) error
	SetActiveSheet(index int)
	SetSelection(sheetName, cell string) error
}

type ExcelizeFile struct {
	file *excelize.File
}

// newExcelFile creates an empty workbook. It starts with one default sheet.
func newExcelFile() ExcelFile {
	return &ExcelizeFile{file: excelize.NewFile()}
}

func openExcelFile(path string) (ExcelFile, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &ExcelizeFile{file: file}, nil
}

func (e *ExcelizeFile) Close() error {
	return e.file.Close()
}

func (e *ExcelizeFile) GetCellValue(sheet, cell string) (string, error) {
	return e.file.GetCellValue(sheet, cell)
}

func (e *ExcelizeFile) GetSheetIndex(name string) (int, error) {
	return e.file.GetSheetIndex(name)
}

func (e *ExcelizeFile) GetSheetList() []string {
	return e.file.GetSheetList()
}

func (e *ExcelizeFile) NewSheet(name string) (int, error) {
	return e.file.NewSheet(name)
}

func (e *ExcelizeFile) NewStyle(style *excelize.Style) (int, error) {
	return e.file.NewStyle(style)
}

func (e *ExcelizeFile) SaveAs(name string) error {
	return e.file.SaveAs(name)
}

func (e *ExcelizeFile) SetCellStyle(sheet, hcell, vcell string, styleID int) error {
	return e.file.SetCellStyle(sheet, hcell, vcell, styleID)
}

func (e *ExcelizeFile) SetCellValue(sheet, cell string, value interface{}) error {
	return e.file.SetCellValue(sheet, cell, value)
}

func (e *ExcelizeFile) SetColWidth(sheet, startCol, endCol string, width float64) error {
	return e.file.SetColWidth(sheet, startCol, endCol, width)
}

func (e *ExcelizeFile) SetSheetName(source, target string) error {
	return e.file.SetSheetName(source, target)
}

func (e *ExcelizeFile) SetActiveSheet(index int) {
	e.file.SetActiveSheet(index)
}

func (e *ExcelizeFile) SetSelection(sheetName, cell string) error {
	// Keep frozen or split panes if the sheet has them; only the selection changes.
	panes, err := e.file.GetPanes(sheetName)
	if err == nil {
		panes.Selection = []excelize.Selection{
			{
				ActiveCell: cell,
				SQRef:      cell,
			},
		}
		return e.file.SetPanes(sheetName, &panes)
	}

	return e.file.SetPanes(sheetName, &excelize.Panes{
		Selection: []excelize.Selection{
			{
				ActiveCell: cell,
				SQRef:      cell,
			},
		},
	})
}
