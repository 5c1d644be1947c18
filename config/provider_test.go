package config

import (
	"reflect"
	"testing"
)

func TestMemoryVariantRegistry_GetVariantConfig(t *testing.T) {
	registry := NewMemoryVariantRegistry(nil)

	salmon, err := registry.GetVariantConfig(VariantSalmon)
	if err != nil {
		t.Fatalf("expected config, got error: %v", err)
	}
	if salmon.BlockWidth != 4 || salmon.BlockHeight != 7 || !salmon.IncludeNumReads || salmon.MaxSingleBlocks != 0 {
		t.Fatalf("unexpected salmon variant: %+v", salmon)
	}
	if salmon.SpacerRow() {
		t.Fatalf("salmon variant should not have a spacer row")
	}

	basic, err := registry.GetVariantConfig(VariantBasic)
	if err != nil {
		t.Fatalf("expected config, got error: %v", err)
	}
	if basic.BlockHeight != 8 || basic.IncludeNumReads || !basic.SpacerRow() || basic.MaxSingleBlocks != 12 {
		t.Fatalf("unexpected basic variant: %+v", basic)
	}
}

func TestMemoryVariantRegistry_NotFound(t *testing.T) {
	registry := NewMemoryVariantRegistry(nil)
	if _, err := registry.GetVariantConfig("missing"); err == nil {
		t.Fatalf("expected error for missing variant")
	}
}

func TestMemoryVariantRegistry_ExtraOverridesBuiltin(t *testing.T) {
	registry := NewMemoryVariantRegistry(map[string]*VariantConfig{
		VariantBasic: {Name: VariantBasic, BlockWidth: 6, BlockHeight: 10},
	})
	registry.Register(&VariantConfig{Name: "custom", BlockWidth: 3, BlockHeight: 5})

	basic, _ := registry.GetVariantConfig(VariantBasic)
	if basic.BlockWidth != 6 {
		t.Fatalf("BlockWidth = %d, want 6", basic.BlockWidth)
	}
	want := []string{"basic", "custom", "salmon"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestBuiltinVariants_ReturnsCopies(t *testing.T) {
	a := BuiltinVariants()
	a[VariantSalmon].BlockHeight = 99
	b := BuiltinVariants()
	if b[VariantSalmon].BlockHeight != 7 {
		t.Fatalf("BuiltinVariants shares state between calls")
	}
}
