package item

import (
	"strconv"

	"github.com/kailas-cloud/resolvex/internal/domain"
)

// Hash field names for catalog item documents. search_text and tenant are the
// indexed columns (TEXT and TAG respectively).
const (
	fieldID          = "id"
	fieldTenant      = "tenant"
	fieldTitle       = "title"
	fieldBrand       = "brand"
	fieldModel       = "model"
	fieldNormTitle   = "norm_title"
	fieldNormBrand   = "norm_brand"
	fieldNormModel   = "norm_model"
	fieldURL         = "url"
	fieldDescription = "description"
	fieldSearchText  = "search_text"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

// itemReturnFields lists every column fetched on reads and list searches.
var itemReturnFields = []string{
	fieldID, fieldTenant, fieldTitle, fieldBrand, fieldModel,
	fieldNormTitle, fieldNormBrand, fieldNormModel,
	fieldURL, fieldDescription, fieldCreatedAt, fieldUpdatedAt,
}

// itemToHash converts a domain CatalogItem to a map for HSET.
func itemToHash(it domain.CatalogItem) map[string]string {
	return map[string]string{
		fieldID:          it.ID(),
		fieldTenant:      it.Tenant(),
		fieldTitle:       it.Title(),
		fieldBrand:       it.Brand(),
		fieldModel:       it.Model(),
		fieldNormTitle:   it.NormTitle(),
		fieldNormBrand:   it.NormBrand(),
		fieldNormModel:   it.NormModel(),
		fieldURL:         it.URL(),
		fieldDescription: it.Description(),
		fieldSearchText:  it.SearchText(),
		fieldCreatedAt:   strconv.FormatInt(it.CreatedAt(), 10),
		fieldUpdatedAt:   strconv.FormatInt(it.UpdatedAt(), 10),
	}
}

// itemFromHash hydrates a domain CatalogItem from an HGETALL result map.
// Stored normalized columns are trusted as written.
func itemFromHash(m map[string]string) domain.CatalogItem {
	createdAt, _ := strconv.ParseInt(m[fieldCreatedAt], 10, 64)
	updatedAt, _ := strconv.ParseInt(m[fieldUpdatedAt], 10, 64)
	return domain.ReconstructCatalogItem(
		m[fieldID], m[fieldTenant],
		m[fieldTitle], m[fieldBrand], m[fieldModel],
		m[fieldNormTitle], m[fieldNormBrand], m[fieldNormModel],
		m[fieldURL], m[fieldDescription],
		createdAt, updatedAt,
	)
}
