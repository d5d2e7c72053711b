package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyPrefix namespaces every Redis key written by this engine.
const KeyPrefix = "resolvex:"

// ItemKey returns the hash key for a catalog item.
func ItemKey(tenant, itemID string) string {
	return KeyPrefix + "item:" + tenant + ":" + itemID
}

// AliasKey returns the hash key for an alias. The digest of the normalized
// form keys the entry, so two aliases of the same (item, kind) with the same
// normalized text collapse into one stored entry.
func AliasKey(tenant, itemID string, kind AliasKind, norm string) string {
	h := sha256.Sum256([]byte(norm))
	return KeyPrefix + "alias:" + tenant + ":" + itemID + ":" + string(kind) + ":" + hex.EncodeToString(h[:8])
}

// ModelKey returns the reservation key enforcing (tenant, normalized model)
// uniqueness. Its value is the owning item id.
func ModelKey(tenant, normModel string) string {
	return KeyPrefix + "model:" + tenant + ":" + normModel
}

// VocabKey returns the cache key for a tenant's in-domain vocabulary.
func VocabKey(tenant string) string {
	return KeyPrefix + "vocab:" + tenant
}

// ItemIndexName is the FT index over catalog item hashes.
const ItemIndexName = KeyPrefix + "items:idx"

// AliasIndexName is the FT index over alias hashes.
const AliasIndexName = KeyPrefix + "aliases:idx"
