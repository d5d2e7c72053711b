package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/resolvex/internal/normalize"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// CatalogItem is an offerable product or service (immutable value object).
// Normalized columns are derived from the raw fields at construction time and
// are never mutated by the resolution engine.
type CatalogItem struct {
	id          string
	tenant      string
	title       string
	brand       string
	model       string
	normTitle   string
	normBrand   string
	normModel   string
	url         string
	description string
	createdAt   int64
	updatedAt   int64
}

func validateIdentifier(kind, s string) error {
	if s == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, kind)
	}
	if len(s) > 64 {
		return fmt.Errorf("%w: %s too long (max 64)", ErrInvalidInput, kind)
	}
	if !idRegex.MatchString(s) {
		return fmt.Errorf("%w: %s must be alphanumeric with underscores and hyphens", ErrInvalidInput, kind)
	}
	return nil
}

// NewCatalogItem validates raw fields and derives the normalized columns.
// Title is required and must survive normalization; brand and model are both
// optional. An item without either is still matchable through its title and
// manual aliases, and the passage filter refuses rather than guesses for it.
func NewCatalogItem(id, tenant, title, brand, model, url, description string) (CatalogItem, error) {
	if err := validateIdentifier("item id", id); err != nil {
		return CatalogItem{}, err
	}
	if err := validateIdentifier("tenant", tenant); err != nil {
		return CatalogItem{}, err
	}
	normTitle := normalize.Normalize(title)
	if normTitle == "" {
		return CatalogItem{}, fmt.Errorf("%w: item title is required", ErrInvalidInput)
	}

	now := time.Now().UnixMilli()
	return CatalogItem{
		id:          id,
		tenant:      tenant,
		title:       title,
		brand:       brand,
		model:       model,
		normTitle:   normTitle,
		normBrand:   normalize.Normalize(brand),
		normModel:   normalize.Normalize(model),
		url:         url,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructCatalogItem rebuilds an item from storage without validation or
// re-derivation. The stored normalized columns are trusted as written.
func ReconstructCatalogItem(
	id, tenant, title, brand, model string,
	normTitle, normBrand, normModel string,
	url, description string,
	createdAt, updatedAt int64,
) CatalogItem {
	return CatalogItem{
		id: id, tenant: tenant,
		title: title, brand: brand, model: model,
		normTitle: normTitle, normBrand: normBrand, normModel: normModel,
		url: url, description: description,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// WithTimestamps returns a copy carrying the given creation and update times.
// Used on updates to preserve the original creation time.
func (i CatalogItem) WithTimestamps(createdAt, updatedAt int64) CatalogItem {
	i.createdAt = createdAt
	i.updatedAt = updatedAt
	return i
}

// ID returns the item identifier.
func (i *CatalogItem) ID() string { return i.id }

// Tenant returns the owning tenant identifier.
func (i *CatalogItem) Tenant() string { return i.tenant }

// Title returns the raw display title.
func (i *CatalogItem) Title() string { return i.title }

// Brand returns the raw brand.
func (i *CatalogItem) Brand() string { return i.brand }

// Model returns the raw model.
func (i *CatalogItem) Model() string { return i.model }

// NormTitle returns the normalized title.
func (i *CatalogItem) NormTitle() string { return i.normTitle }

// NormBrand returns the normalized brand ("" when no brand).
func (i *CatalogItem) NormBrand() string { return i.normBrand }

// NormModel returns the normalized model ("" when no model).
func (i *CatalogItem) NormModel() string { return i.normModel }

// URL returns the destination URL.
func (i *CatalogItem) URL() string { return i.url }

// Description returns the free-form description.
func (i *CatalogItem) Description() string { return i.description }

// CreatedAt returns the creation time in unix millis.
func (i *CatalogItem) CreatedAt() int64 { return i.createdAt }

// UpdatedAt returns the last write time in unix millis.
func (i *CatalogItem) UpdatedAt() int64 { return i.updatedAt }

// SearchText returns the combined normalized text indexed for full-text
// search: title, brand, and model joined with single spaces, duplicates kept
// (term frequency is part of the relevance signal).
func (i *CatalogItem) SearchText() string {
	s := i.normTitle
	if i.normBrand != "" {
		s += " " + i.normBrand
	}
	if i.normModel != "" {
		s += " " + i.normModel
	}
	return s
}
