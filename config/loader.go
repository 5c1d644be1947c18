package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultReportConfig returns the configuration used when no config file is given.
// It reproduces the layout of the salmon summary report: 48 blocks per sheet,
// three blocks per grid row.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Name:    "summary",
		Variant: VariantSalmon,
		Columns: ColumnConfig{
			GroupingTag: "unique_grouping_tag",
			ID:          "ID",
			Source:      "source",
			TotalReads:  "ttl_reads",
			Transcript:  "common_nom",
			TPM:         "TPM",
			NumReads:    "NumReads",
		},
		Layout: LayoutConfig{
			BlocksPerPage: 48,
			ColsPerRow:    3,
		},
		MultiSheet: SheetOutputConfig{
			Enabled:   true,
			SheetName: "Summary_Page_${page}_of_${pages}",
			Suffix:    "_multi_sheet",
		},
		SingleSheet: SheetOutputConfig{
			Enabled:   true,
			SheetName: "All_Summaries",
			Suffix:    "_single_sheet",
		},
		Style: StyleConfig{
			HeaderFill:       "4472C4",
			HeaderFont:       "FFFFFF",
			DetailHeaderFill: "DEE5EE",
			ColumnWidth:      15,
		},
		Output: OutputConfig{
			Dir: ".",
		},
	}
}

// ParseReportConfig decodes YAML on top of DefaultReportConfig, so a file only
// needs to name the values it changes.
func ParseReportConfig(data []byte) (*ReportConfig, error) {
	cfg := DefaultReportConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse report config: %w", err)
	}
	return cfg, nil
}

// LoadReportConfig loads a report configuration from a YAML file.
func LoadReportConfig(path string) (*ReportConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report config file: %w", err)
	}
	return ParseReportConfig(data)
}

// LoadVariantConfig loads a single report variant from a YAML file.
func LoadVariantConfig(path string) (*VariantConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read variant config file: %w", err)
	}

	var v VariantConfig
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse variant config: %w", err)
	}
	return &v, nil
}

// LoadVariantDir loads every *.yaml / *.yml variant in dir, keyed by name.
// A missing directory yields an empty map.
func LoadVariantDir(dir string) (map[string]*VariantConfig, error) {
	variants := make(map[string]*VariantConfig)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return variants, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading variants: %w", err)
	}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		v, err := LoadVariantConfig(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading variants: %w", err)
		}
		if _, dup := variants[v.Name]; dup {
			return nil, fmt.Errorf("loading variants: duplicate variant %q in %s", v.Name, entry.Name())
		}
		variants[v.Name] = v
	}
	return variants, nil
}
