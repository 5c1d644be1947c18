package core

import (
	"context"
	"testing"
	"time"

	"tidygrid/config"
)

type countingFetcher struct {
	calls  int
	params map[string]string
	data   map[string][]map[string]interface{}
}

func (f *countingFetcher) Fetch(_ context.Context, source string, params map[string]string) ([]map[string]interface{}, error) {
	f.calls++
	f.params = params
	return f.data[source], nil
}

func newTestContext(t *testing.T, cfg *config.ReportConfig, fetcher DataFetcher, source string, params map[string]string) *GenerationContext {
	t.Helper()
	gc, err := NewGenerationContext(cfg, config.NewMemoryVariantRegistry(nil), fetcher, source, params)
	if err != nil {
		t.Fatalf("NewGenerationContext error: %v", err)
	}
	return gc
}

func TestNewGenerationContext_MergeParams(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.Parameters = map[string]string{
		"env":    "prod",
		"region": "us",
	}

	gc := newTestContext(t, cfg, nil, "data/liver.tsv.gz", map[string]string{
		"env":   "dev",
		"extra": "1",
	})

	tests := map[string]string{
		"env":    "dev",
		"region": "us",
		"extra":  "1",
		"name":   "summary",
		"source": "liver",
	}
	for k, want := range tests {
		if got := gc.Parameters[k]; got != want {
			t.Errorf("%s = %s, want %s", k, got, want)
		}
	}
	if gc.Variant.Name != config.VariantSalmon {
		t.Errorf("variant = %s, want salmon", gc.Variant.Name)
	}
}

func TestNewGenerationContext_DynamicDate(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.Parameters = map[string]string{"run": "$date:day:day:0"}

	gc := newTestContext(t, cfg, nil, "x.csv", nil)
	today := time.Now().Format("2006-01-02")
	if gc.Parameters["run"] != today {
		t.Fatalf("run = %s, want %s", gc.Parameters["run"], today)
	}
}

func TestNewGenerationContext_UnknownVariant(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.Variant = "wide"
	if _, err := NewGenerationContext(cfg, config.NewMemoryVariantRegistry(nil), nil, "x.csv", nil); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestGenerationContext_OutputPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		source string
		want   string
	}{
		{"Source Base Name", "", "/data/run7/quant.csv", "quant"},
		{"GCS Object", "", "gs://bucket/runs/heart.tsv.gz", "heart"},
		{"Configured Prefix", "${name}_${batch}", "quant.csv", "summary_b2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultReportConfig()
			cfg.Output.Prefix = tt.prefix
			gc := newTestContext(t, cfg, nil, tt.source, map[string]string{"batch": "b2"})
			if got := gc.OutputPrefix(); got != tt.want {
				t.Errorf("OutputPrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerationContext_TableCaching(t *testing.T) {
	cfg := config.DefaultReportConfig()
	cfg.Filters = map[string]string{"source": "liver"}
	fetcher := &countingFetcher{
		data: map[string][]map[string]interface{}{
			"quant.csv": {
				{"source": "liver", "ID": "1"},
				{"source": "heart", "ID": "2"},
			},
		},
	}

	gc := newTestContext(t, cfg, fetcher, "quant.csv", nil)
	for i := 0; i < 2; i++ {
		table, err := gc.Table(context.Background())
		if err != nil {
			t.Fatalf("Table error: %v", err)
		}
		if table.RowCount() != 1 {
			t.Fatalf("rows = %d, want 1", table.RowCount())
		}
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetcher calls = %d, want 1", fetcher.calls)
	}
	if fetcher.params["source"] != "liver" {
		t.Errorf("pushed filters = %v, want source=liver", fetcher.params)
	}
}
