package domain

import (
	"errors"
	"testing"
)

func TestNewCatalogItemDerivesNormalizedColumns(t *testing.T) {
	it, err := NewCatalogItem("p1", "shop", "IVISKIN G-3 Hårfjerner", "IVISKIN", "G-3", "", "")
	if err != nil {
		t.Fatalf("NewCatalogItem: %v", err)
	}
	if it.NormTitle() != "iviskin g3 haarfjerner" {
		t.Errorf("NormTitle = %q", it.NormTitle())
	}
	if it.NormBrand() != "iviskin" || it.NormModel() != "g3" {
		t.Errorf("NormBrand/NormModel = %q / %q", it.NormBrand(), it.NormModel())
	}
}

func TestNewCatalogItemBrandAndModelOptional(t *testing.T) {
	it, err := NewCatalogItem("p1", "shop", "Gavekort 500 kr", "", "", "", "")
	if err != nil {
		t.Fatalf("item without brand and model must be valid, got %v", err)
	}
	if it.NormBrand() != "" || it.NormModel() != "" {
		t.Errorf("NormBrand/NormModel = %q / %q, want empty", it.NormBrand(), it.NormModel())
	}
}

func TestNewCatalogItemValidation(t *testing.T) {
	tests := []struct {
		name                          string
		id, tenant, title, brand, mod string
	}{
		{"empty id", "", "shop", "Vekt", "", ""},
		{"bad id characters", "p 1!", "shop", "Vekt", "", ""},
		{"empty tenant", "p1", "", "Vekt", "", ""},
		{"empty title", "p1", "shop", "", "", ""},
		{"title normalizes to empty", "p1", "shop", "   ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalogItem(tt.id, tt.tenant, tt.title, tt.brand, tt.mod, "", "")
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}
