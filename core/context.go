package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"tidygrid/config"
)

// DataFetcher defines the interface for loading the tidy table.
type DataFetcher interface {
	// Fetch returns the rows of source whose columns equal every param value.
	Fetch(ctx context.Context, source string, params map[string]string) ([]map[string]interface{}, error)
}

// GenerationContext holds the state for the current generation process.
type GenerationContext struct {
	Config     *config.ReportConfig
	Variant    *config.VariantConfig
	Source     string
	Parameters map[string]string
	Fetcher    DataFetcher
	Provider   config.Provider
	// Table as loaded from Source, before the configured filters.
	loaded *Table
}

// NewGenerationContext resolves the report variant and merges parameters.
// Config parameters are overridden by params; "$date:" values are expanded.
func NewGenerationContext(cfg *config.ReportConfig, provider config.Provider, fetcher DataFetcher, source string, params map[string]string) (*GenerationContext, error) {
	variant, err := provider.GetVariantConfig(cfg.Variant)
	if err != nil {
		return nil, err
	}

	mergedParams := map[string]string{
		"name":   cfg.Name,
		"source": sourceBaseName(source),
	}
	for k, v := range cfg.Parameters {
		mergedParams[k] = v
	}
	for k, v := range params {
		mergedParams[k] = v
	}

	ExpandDynamicParams(mergedParams, time.Now())

	return &GenerationContext{
		Config:     cfg,
		Variant:    variant,
		Source:     source,
		Parameters: mergedParams,
		Fetcher:    fetcher,
		Provider:   provider,
	}, nil
}

// sourceBaseName strips the directory and every extension, so
// "runs/liver.tsv.gz" becomes "liver".
func sourceBaseName(source string) string {
	base := source
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = filepath.Base(base)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// Expand replaces ${name} placeholders in s with the context parameters.
func (gc *GenerationContext) Expand(s string) string {
	return replacePlaceholders(s, gc.Parameters)
}

// OutputPrefix returns the configured prefix with placeholders replaced, or
// the source base name when none is configured.
func (gc *GenerationContext) OutputPrefix() string {
	if gc.Config.Output.Prefix != "" {
		return gc.Expand(gc.Config.Output.Prefix)
	}
	return gc.Parameters["source"]
}

// Table loads the source table once and returns a filtered copy.
// The configured filters are pushed down to the fetcher by column name and
// applied again in memory, as not every fetcher filters.
func (gc *GenerationContext) Table(ctx context.Context) (*Table, error) {
	if gc.loaded == nil {
		filters := ColumnParams(gc.Config.Columns, gc.Config.Filters)
		data, err := gc.Fetcher.Fetch(ctx, gc.Source, filters)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", gc.Source, err)
		}
		gc.loaded = NewTable(gc.Config.Columns, data)

		slog.Debug("Table Fetched",
			"source", gc.Source,
			"filters", filters,
			"rows", gc.loaded.RowCount(),
		)
		if gc.loaded.RowCount() > 0 {
			slog.Debug("Sample Row", "row", gc.loaded.Data[0])
		}
	}

	t := gc.loaded.Copy()
	t.Filter(gc.Config.Filters)
	return t, nil
}

// MockDataFetcher is a simple implementation for testing.
type MockDataFetcher struct {
	Data map[string][]map[string]interface{}
}

func (m *MockDataFetcher) Fetch(_ context.Context, source string, params map[string]string) ([]map[string]interface{}, error) {
	if data, ok := m.Data[source]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("source not found: %s", source)
}
