package domain

import (
	"fmt"

	"github.com/kailas-cloud/resolvex/internal/normalize"
)

// AliasKind tags how an alias was produced.
type AliasKind string

// Alias kind constants.
const (
	// AliasBrandModel is the derived "brand model" variant.
	AliasBrandModel AliasKind = "brand_model"
	// AliasModelOnly is the derived bare model code.
	AliasModelOnly AliasKind = "model_only"
	// AliasBrandOnly is the derived bare brand name.
	AliasBrandOnly AliasKind = "brand_only"
	// AliasManual is a curator-supplied free-form variant.
	AliasManual AliasKind = "manual"
)

// IsValid checks if the kind is one of the supported values.
func (k AliasKind) IsValid() bool {
	return k == AliasBrandModel || k == AliasModelOnly || k == AliasBrandOnly || k == AliasManual
}

// Alias is an alternate name variant belonging to exactly one catalog item
// (immutable value object). The normalized form is what scoring matches on.
type Alias struct {
	tenant string
	itemID string
	kind   AliasKind
	raw    string
	norm   string
}

// NewAlias validates and creates an alias, deriving its normalized form.
func NewAlias(tenant, itemID string, kind AliasKind, raw string) (Alias, error) {
	if err := validateIdentifier("tenant", tenant); err != nil {
		return Alias{}, err
	}
	if err := validateIdentifier("item id", itemID); err != nil {
		return Alias{}, err
	}
	if !kind.IsValid() {
		return Alias{}, fmt.Errorf("%w: invalid alias kind %q", ErrInvalidInput, kind)
	}
	norm := normalize.Normalize(raw)
	if norm == "" {
		return Alias{}, fmt.Errorf("%w: alias text is required", ErrInvalidInput)
	}
	return Alias{tenant: tenant, itemID: itemID, kind: kind, raw: raw, norm: norm}, nil
}

// ReconstructAlias rebuilds an alias from storage without re-derivation.
func ReconstructAlias(tenant, itemID string, kind AliasKind, raw, norm string) Alias {
	return Alias{tenant: tenant, itemID: itemID, kind: kind, raw: raw, norm: norm}
}

// Tenant returns the owning tenant identifier.
func (a *Alias) Tenant() string { return a.tenant }

// ItemID returns the owning item identifier.
func (a *Alias) ItemID() string { return a.itemID }

// Kind returns the alias kind tag.
func (a *Alias) Kind() AliasKind { return a.kind }

// Raw returns the raw alias text.
func (a *Alias) Raw() string { return a.raw }

// Norm returns the normalized alias text.
func (a *Alias) Norm() string { return a.norm }

// DeriveAliases produces the automatic alias variants for an item: brand+model,
// model-only, and brand-only, skipping variants whose source fields are empty.
// Manual aliases are curated separately and are not derived here.
func DeriveAliases(item CatalogItem) []Alias {
	var out []Alias

	if item.NormBrand() != "" && item.NormModel() != "" {
		raw := item.Brand() + " " + item.Model()
		// Derive through the normalizer rather than joining the stored columns:
		// a brand ending in a letter and a model starting with a digit must glue
		// exactly the way a query would ("X" + "3" -> "x3", not "x 3").
		out = append(out, ReconstructAlias(
			item.Tenant(), item.ID(), AliasBrandModel, raw, normalize.Normalize(raw),
		))
	}
	if item.NormModel() != "" {
		out = append(out, ReconstructAlias(
			item.Tenant(), item.ID(), AliasModelOnly, item.Model(), item.NormModel(),
		))
	}
	if item.NormBrand() != "" {
		out = append(out, ReconstructAlias(
			item.Tenant(), item.ID(), AliasBrandOnly, item.Brand(), item.NormBrand(),
		))
	}
	return out
}
