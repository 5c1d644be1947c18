package config

import (
	"strings"
	"testing"
)

func TestValidator_ValidateReport(t *testing.T) {
	validator := NewValidator(NewMemoryVariantRegistry(nil))

	tests := []struct {
		name    string
		mutate  func(cfg *ReportConfig)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Defaults",
			mutate:  func(cfg *ReportConfig) {},
			wantErr: false,
		},
		{
			name:    "Missing Name",
			mutate:  func(cfg *ReportConfig) { cfg.Name = "" },
			wantErr: true,
			errMsg:  "report name is required",
		},
		{
			name:    "Unknown Variant",
			mutate:  func(cfg *ReportConfig) { cfg.Variant = "fancy" },
			wantErr: true,
			errMsg:  "unknown variant",
		},
		{
			name:    "Missing NumReads Column For Salmon",
			mutate:  func(cfg *ReportConfig) { cfg.Columns.NumReads = "" },
			wantErr: true,
			errMsg:  "'numReads' is required",
		},
		{
			name: "NumReads Column Optional For Basic",
			mutate: func(cfg *ReportConfig) {
				cfg.Variant = VariantBasic
				cfg.Columns.NumReads = ""
			},
			wantErr: false,
		},
		{
			name:    "Zero Blocks Per Page",
			mutate:  func(cfg *ReportConfig) { cfg.Layout.BlocksPerPage = 0 },
			wantErr: true,
			errMsg:  "blocksPerPage must be positive",
		},
		{
			name:    "Negative Cols Per Row",
			mutate:  func(cfg *ReportConfig) { cfg.Layout.ColsPerRow = -1 },
			wantErr: true,
			errMsg:  "colsPerRow must be positive",
		},
		{
			name: "No Outputs",
			mutate: func(cfg *ReportConfig) {
				cfg.MultiSheet.Enabled = false
				cfg.SingleSheet.Enabled = false
			},
			wantErr: true,
			errMsg:  "at least one",
		},
		{
			name:    "Same Suffix",
			mutate:  func(cfg *ReportConfig) { cfg.SingleSheet.Suffix = cfg.MultiSheet.Suffix },
			wantErr: true,
			errMsg:  "suffixes must differ",
		},
		{
			name:    "Negative Max Blocks",
			mutate:  func(cfg *ReportConfig) { cfg.SingleSheet.MaxBlocks = -3 },
			wantErr: true,
			errMsg:  "maxBlocks must not be negative",
		},
		{
			name:    "Bad Color",
			mutate:  func(cfg *ReportConfig) { cfg.Style.HeaderFill = "blue" },
			wantErr: true,
			errMsg:  "not a hex RGB color",
		},
		{
			name:    "SQL Without DSN",
			mutate:  func(cfg *ReportConfig) { cfg.Source.Fetcher = FetcherPostgres },
			wantErr: true,
			errMsg:  "dsn is required",
		},
		{
			name:    "Unknown Fetcher",
			mutate:  func(cfg *ReportConfig) { cfg.Source.Fetcher = "pickle" },
			wantErr: true,
			errMsg:  "invalid fetcher",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultReportConfig()
			tt.mutate(cfg)
			err := validator.ValidateReport(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReport() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateReport() error = %v, want error containing %s", err, tt.errMsg)
			}
		})
	}
}

func TestValidator_ValidateVariant(t *testing.T) {
	validator := NewValidator(nil)

	valid := func() *VariantConfig {
		return BuiltinVariants()[VariantSalmon]
	}

	tests := []struct {
		name    string
		mutate  func(v *VariantConfig)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Valid Salmon",
			mutate:  func(v *VariantConfig) {},
			wantErr: false,
		},
		{
			name:    "Missing Name",
			mutate:  func(v *VariantConfig) { v.Name = "" },
			wantErr: true,
			errMsg:  "variant name is required",
		},
		{
			name:    "Detail Labels Mismatch",
			mutate:  func(v *VariantConfig) { v.IncludeNumReads = false },
			wantErr: true,
			errMsg:  "needs 2 detail labels",
		},
		{
			name:    "Zero Height",
			mutate:  func(v *VariantConfig) { v.BlockHeight = 0 },
			wantErr: true,
			errMsg:  "block size must be positive",
		},
		{
			name:    "Too Narrow",
			mutate:  func(v *VariantConfig) { v.BlockWidth = 2 },
			wantErr: true,
			errMsg:  "narrower than its columns",
		},
		{
			name:    "Detail Header Overlaps Values",
			mutate:  func(v *VariantConfig) { v.DetailHeaderRow = 1 },
			wantErr: true,
			errMsg:  "detail header row must follow",
		},
		{
			name:    "Details Outside Block",
			mutate:  func(v *VariantConfig) { v.BlockHeight = 3 },
			wantErr: true,
			errMsg:  "outside the block height",
		},
		{
			name:    "Negative Single Sheet Cap",
			mutate:  func(v *VariantConfig) { v.MaxSingleBlocks = -1 },
			wantErr: true,
			errMsg:  "maxSingleBlocks must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid()
			tt.mutate(v)
			err := validator.ValidateVariant(v)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVariant() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateVariant() error = %v, want error containing %s", err, tt.errMsg)
			}
		})
	}
}
