package config

import (
	"fmt"
	"sort"
)

const (
	VariantSalmon = "salmon" // three detail columns, no spacer row
	VariantBasic  = "basic"  // two detail columns, blank row before the detail header
)

// BuiltinVariants returns fresh copies of the two report variants the tool ships with.
func BuiltinVariants() map[string]*VariantConfig {
	return map[string]*VariantConfig{
		VariantSalmon: {
			Name:              VariantSalmon,
			SummaryLabels:     []string{"ID", "source_tissue", "total_reads"},
			DetailLabels:      []string{"transcript", "TPM", "NumReads"},
			SummaryHeaderRow:  0,
			SummaryValueRow:   1,
			DetailHeaderRow:   2,
			DetailStartRow:    3,
			IncludeNumReads:   true,
			BlockWidth:        4, // 3 data + 1 spacing
			BlockHeight:       7, // 2 summary + 1 header + 3 details + 1 spacing
			StyleDetailHeader: true,
		},
		VariantBasic: {
			Name:             VariantBasic,
			SummaryLabels:    []string{"ID", "source_tissue", "total_reads"},
			DetailLabels:     []string{"transcript", "TPM"},
			SummaryHeaderRow: 0,
			SummaryValueRow:  1,
			DetailHeaderRow:  3,
			DetailStartRow:   4,
			BlockWidth:       4, // 3 data + 1 spacing
			BlockHeight:      8, // 2 summary + 1 blank + 1 header + 3 details + 1 spacing
			MaxSingleBlocks:  12,
		},
	}
}

// Provider defines the interface for retrieving report variants.
type Provider interface {
	GetVariantConfig(name string) (*VariantConfig, error)
}

// MemoryVariantRegistry implements Provider using an in-memory map.
type MemoryVariantRegistry struct {
	variants map[string]*VariantConfig
}

// NewMemoryVariantRegistry creates a registry holding the built-in variants
// overlaid with extra. An extra variant with a built-in name replaces it.
func NewMemoryVariantRegistry(extra map[string]*VariantConfig) *MemoryVariantRegistry {
	variants := BuiltinVariants()
	for name, v := range extra {
		variants[name] = v
	}
	return &MemoryVariantRegistry{variants: variants}
}

// Register adds or replaces a variant.
func (r *MemoryVariantRegistry) Register(v *VariantConfig) {
	r.variants[v.Name] = v
}

// GetVariantConfig retrieves a VariantConfig by name.
func (r *MemoryVariantRegistry) GetVariantConfig(name string) (*VariantConfig, error) {
	if conf, ok := r.variants[name]; ok {
		return conf, nil
	}
	return nil, fmt.Errorf("report variant not found: %s", name)
}

// Names lists the registered variant names in sorted order.
func (r *MemoryVariantRegistry) Names() []string {
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
