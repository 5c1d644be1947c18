package config

import (
	"fmt"
	"regexp"
)

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// Validator validates the configuration objects.
type Validator struct {
	Provider Provider
}

// NewValidator creates a new Validator.
func NewValidator(provider Provider) *Validator {
	return &Validator{Provider: provider}
}

// ValidateReport validates the ReportConfig.
func (v *Validator) ValidateReport(cfg *ReportConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("report name is required")
	}
	if cfg.Variant == "" {
		return fmt.Errorf("report variant is required")
	}

	variant := (*VariantConfig)(nil)
	if v.Provider != nil {
		found, err := v.Provider.GetVariantConfig(cfg.Variant)
		if err != nil {
			return fmt.Errorf("report '%s' references unknown variant '%s'", cfg.Name, cfg.Variant)
		}
		variant = found
	}
	for i := range cfg.Variants {
		if err := v.ValidateVariant(&cfg.Variants[i]); err != nil {
			return fmt.Errorf("variant %d error: %w", i, err)
		}
	}
	if variant != nil {
		if err := v.ValidateVariant(variant); err != nil {
			return err
		}
	}

	if err := v.ValidateColumns(&cfg.Columns, variant); err != nil {
		return err
	}
	if err := v.ValidateLayout(&cfg.Layout); err != nil {
		return err
	}
	if !cfg.MultiSheet.Enabled && !cfg.SingleSheet.Enabled {
		return fmt.Errorf("at least one of multiSheet or singleSheet must be enabled")
	}
	if cfg.MultiSheet.Enabled {
		if err := v.ValidateSheetOutput("multiSheet", &cfg.MultiSheet); err != nil {
			return err
		}
	}
	if cfg.SingleSheet.Enabled {
		if err := v.ValidateSheetOutput("singleSheet", &cfg.SingleSheet); err != nil {
			return err
		}
	}
	if cfg.MultiSheet.Enabled && cfg.SingleSheet.Enabled && cfg.MultiSheet.Suffix == cfg.SingleSheet.Suffix {
		return fmt.Errorf("multiSheet and singleSheet suffixes must differ, both are '%s'", cfg.MultiSheet.Suffix)
	}
	if err := v.ValidateStyle(&cfg.Style); err != nil {
		return err
	}
	return v.ValidateSource(&cfg.Source)
}

// ValidateVariant validates the VariantConfig.
func (v *Validator) ValidateVariant(vc *VariantConfig) error {
	if vc.Name == "" {
		return fmt.Errorf("variant name is required")
	}
	if len(vc.SummaryLabels) != 3 {
		return fmt.Errorf("variant '%s' needs 3 summary labels, got %d", vc.Name, len(vc.SummaryLabels))
	}
	wantDetail := 2
	if vc.IncludeNumReads {
		wantDetail = 3
	}
	if len(vc.DetailLabels) != wantDetail {
		return fmt.Errorf("variant '%s' needs %d detail labels, got %d", vc.Name, wantDetail, len(vc.DetailLabels))
	}
	if vc.BlockWidth <= 0 || vc.BlockHeight <= 0 {
		return fmt.Errorf("variant '%s' block size must be positive, got %dx%d", vc.Name, vc.BlockWidth, vc.BlockHeight)
	}
	if vc.BlockWidth < len(vc.SummaryLabels) || vc.BlockWidth < len(vc.DetailLabels) {
		return fmt.Errorf("variant '%s' block width %d is narrower than its columns", vc.Name, vc.BlockWidth)
	}
	if vc.SummaryHeaderRow < 0 || vc.SummaryValueRow <= vc.SummaryHeaderRow {
		return fmt.Errorf("variant '%s' summary value row must follow the summary header row", vc.Name)
	}
	if vc.DetailHeaderRow <= vc.SummaryValueRow {
		return fmt.Errorf("variant '%s' detail header row must follow the summary value row", vc.Name)
	}
	if vc.DetailStartRow <= vc.DetailHeaderRow {
		return fmt.Errorf("variant '%s' detail rows must follow the detail header row", vc.Name)
	}
	if vc.DetailStartRow >= vc.BlockHeight {
		return fmt.Errorf("variant '%s' detail rows start outside the block height %d", vc.Name, vc.BlockHeight)
	}
	if vc.MaxSingleBlocks < 0 {
		return fmt.Errorf("variant '%s' maxSingleBlocks must not be negative, got %d", vc.Name, vc.MaxSingleBlocks)
	}
	return nil
}

// ValidateColumns validates the ColumnConfig against the chosen variant.
func (v *Validator) ValidateColumns(cols *ColumnConfig, variant *VariantConfig) error {
	required := []struct{ field, column string }{
		{"groupingTag", cols.GroupingTag},
		{"id", cols.ID},
		{"source", cols.Source},
		{"totalReads", cols.TotalReads},
		{"transcript", cols.Transcript},
		{"tpm", cols.TPM},
	}
	if variant != nil && variant.IncludeNumReads {
		required = append(required, struct{ field, column string }{"numReads", cols.NumReads})
	}
	for _, r := range required {
		if r.column == "" {
			return fmt.Errorf("column mapping for '%s' is required", r.field)
		}
	}
	return nil
}

// ValidateLayout validates the LayoutConfig.
func (v *Validator) ValidateLayout(l *LayoutConfig) error {
	if l.BlocksPerPage <= 0 {
		return fmt.Errorf("layout blocksPerPage must be positive, got %d", l.BlocksPerPage)
	}
	if l.ColsPerRow <= 0 {
		return fmt.Errorf("layout colsPerRow must be positive, got %d", l.ColsPerRow)
	}
	return nil
}

// ValidateSheetOutput validates one workbook output.
func (v *Validator) ValidateSheetOutput(name string, s *SheetOutputConfig) error {
	if s.SheetName == "" {
		return fmt.Errorf("%s sheetName is required", name)
	}
	if s.Suffix == "" {
		return fmt.Errorf("%s suffix is required", name)
	}
	if s.MaxBlocks < 0 {
		return fmt.Errorf("%s maxBlocks must not be negative, got %d", name, s.MaxBlocks)
	}
	return nil
}

// ValidateStyle validates the StyleConfig.
func (v *Validator) ValidateStyle(s *StyleConfig) error {
	for _, c := range []struct{ name, value string }{
		{"headerFill", s.HeaderFill},
		{"headerFont", s.HeaderFont},
		{"detailHeaderFill", s.DetailHeaderFill},
	} {
		if c.value != "" && !hexColor.MatchString(c.value) {
			return fmt.Errorf("style %s '%s' is not a hex RGB color", c.name, c.value)
		}
	}
	if s.ColumnWidth < 0 {
		return fmt.Errorf("style columnWidth must not be negative, got %v", s.ColumnWidth)
	}
	return nil
}

// ValidateSource validates the SourceConfig.
func (v *Validator) ValidateSource(s *SourceConfig) error {
	switch s.Fetcher {
	case FetcherAuto, FetcherCSV, FetcherXLSX, FetcherDynamoDB:
		// OK
	case FetcherMySQL, FetcherPostgres:
		if s.DSN == "" {
			return fmt.Errorf("source dsn is required for %s fetcher", s.Fetcher)
		}
	default:
		return fmt.Errorf("source has invalid fetcher '%s'", s.Fetcher)
	}
	return nil
}
