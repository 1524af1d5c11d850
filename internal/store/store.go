// Package store implements the flat, whole-collection entity store the
// engines depend on: one JSON-encoded collection per storage key, with
// per-key advisory locking to serialize read-modify-write cycles.
// There is no cross-key transaction; operations touching two
// collections perform each key's write independently.
package store

import "context"

// Storage keys, one per entity kind, plus the metadata record.
const (
	KeyProducts              = "products"
	KeyVariationTypes        = "variation-types"
	KeyVariations            = "variations"
	KeyProductVariationItems = "product-variation-items"
	KeyCompositionItems      = "composition-items"
	KeyMeta                  = "catalog-meta"
)

// CollectionKeys lists every entity collection (excludes metadata).
var CollectionKeys = []string{
	KeyProducts,
	KeyVariationTypes,
	KeyVariations,
	KeyProductVariationItems,
	KeyCompositionItems,
}

// EntityStore is the contract the repositories consume. FindAll decodes
// the whole collection into out (a pointer to a slice); a missing key
// decodes as an empty collection. Set atomically replaces the
// collection. Update runs fn on the raw collection bytes under the
// key's advisory lock (raw is nil when the key does not exist yet).
type EntityStore interface {
	FindAll(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, in any) error
	Update(ctx context.Context, key string, fn func(raw []byte) ([]byte, error)) error
	Close() error
}
