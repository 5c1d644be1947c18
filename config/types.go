package config

type FetcherType string

const (
	FetcherAuto     FetcherType = ""
	FetcherCSV      FetcherType = "csv"
	FetcherXLSX     FetcherType = "xlsx"
	FetcherMySQL    FetcherType = "mysql"
	FetcherPostgres FetcherType = "postgres"
	FetcherDynamoDB FetcherType = "dynamodb"
)

// ColumnConfig：maps row fields to the column names of the source table
type ColumnConfig struct {
	GroupingTag string `json:"groupingTag" yaml:"groupingTag"`
	ID          string `json:"id"          yaml:"id"`
	Source      string `json:"source"      yaml:"source"`
	TotalReads  string `json:"totalReads"  yaml:"totalReads"`
	Transcript  string `json:"transcript"  yaml:"transcript"`
	TPM         string `json:"tpm"         yaml:"tpm"`
	NumReads    string `json:"numReads"    yaml:"numReads"`
}

// LayoutConfig：block grid config. Block width/height come from the variant.
type LayoutConfig struct {
	BlocksPerPage int `json:"blocksPerPage" yaml:"blocksPerPage"`
	ColsPerRow    int `json:"colsPerRow"    yaml:"colsPerRow"`
}

// VariantConfig：cell template of one report variant.
// Offsets are relative to the block's top-left cell.
type VariantConfig struct {
	Name              string   `json:"name"               yaml:"name"`
	SummaryLabels     []string `json:"summaryLabels"      yaml:"summaryLabels"`
	DetailLabels      []string `json:"detailLabels"       yaml:"detailLabels"`
	SummaryHeaderRow  int      `json:"summaryHeaderRow"   yaml:"summaryHeaderRow"`
	SummaryValueRow   int      `json:"summaryValueRow"    yaml:"summaryValueRow"`
	DetailHeaderRow   int      `json:"detailHeaderRow"    yaml:"detailHeaderRow"`
	DetailStartRow    int      `json:"detailStartRow"     yaml:"detailStartRow"`
	IncludeNumReads   bool     `json:"includeNumReads"    yaml:"includeNumReads"`
	BlockWidth        int      `json:"blockWidth"         yaml:"blockWidth"`
	BlockHeight       int      `json:"blockHeight"        yaml:"blockHeight"`
	StyleDetailHeader bool     `json:"styleDetailHeader"  yaml:"styleDetailHeader"` // fill the detail header row
	// Single-sheet cap used when singleSheet.maxBlocks is 0; 0 = no cap.
	MaxSingleBlocks   int      `json:"maxSingleBlocks,omitempty" yaml:"maxSingleBlocks,omitempty"`
}

// SpacerRow reports whether a blank row separates the summary from the detail header.
func (v *VariantConfig) SpacerRow() bool {
	return v.DetailHeaderRow > v.SummaryValueRow+1
}

// SheetOutputConfig：one of the two generated workbooks
type SheetOutputConfig struct {
	Enabled   bool   `json:"enabled"             yaml:"enabled"`
	SheetName string `json:"sheetName"           yaml:"sheetName"` // may use ${page} and ${pages}
	Suffix    string `json:"suffix"              yaml:"suffix"`
	MaxBlocks int    `json:"maxBlocks,omitempty" yaml:"maxBlocks,omitempty"` // single sheet only, 0 = the variant's cap
}

// StyleConfig：colors used by the renderer
type StyleConfig struct {
	HeaderFill       string  `json:"headerFill"       yaml:"headerFill"`
	HeaderFont       string  `json:"headerFont"       yaml:"headerFont"`
	DetailHeaderFill string  `json:"detailHeaderFill" yaml:"detailHeaderFill"`
	ColumnWidth      float64 `json:"columnWidth"      yaml:"columnWidth"`
}

// SourceConfig：where the tidy table comes from
type SourceConfig struct {
	Fetcher FetcherType `json:"fetcher,omitempty" yaml:"fetcher,omitempty"`
	DSN     string      `json:"dsn,omitempty"     yaml:"dsn,omitempty"`
	OrderBy string      `json:"orderBy,omitempty" yaml:"orderBy,omitempty"` // sql only
	Sheet   string      `json:"sheet,omitempty"   yaml:"sheet,omitempty"`   // xlsx only
}

// OutputConfig：where the reports are written
type OutputConfig struct {
	Dir      string `json:"dir"                yaml:"dir"`
	Prefix   string `json:"prefix,omitempty"   yaml:"prefix,omitempty"`
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	S3Bucket string `json:"s3Bucket,omitempty" yaml:"s3Bucket,omitempty"`
	S3Prefix string `json:"s3Prefix,omitempty" yaml:"s3Prefix,omitempty"`
}

// ReportConfig：report range config
type ReportConfig struct {
	Name        string            `json:"name"                 yaml:"name"`
	Variant     string            `json:"variant"              yaml:"variant"`
	Variants    []VariantConfig   `json:"variants,omitempty"   yaml:"variants,omitempty"`
	Strict      bool              `json:"strict"               yaml:"strict"`
	Columns     ColumnConfig      `json:"columns"              yaml:"columns"`
	Layout      LayoutConfig      `json:"layout"               yaml:"layout"`
	MultiSheet  SheetOutputConfig `json:"multiSheet"           yaml:"multiSheet"`
	SingleSheet SheetOutputConfig `json:"singleSheet"          yaml:"singleSheet"`
	Style       StyleConfig       `json:"style"                yaml:"style"`
	Source      SourceConfig      `json:"source"               yaml:"source"`
	Output      OutputConfig      `json:"output"               yaml:"output"`
	Filters     map[string]string `json:"filters,omitempty"    yaml:"filters,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}
