package variation

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	// Variation types
	CreateType(ctx context.Context, t *model.VariationType) error
	FindAllTypes(ctx context.Context) ([]model.VariationType, error)
	FindTypeByID(ctx context.Context, id string) (*model.VariationType, error)
	UpdateType(ctx context.Context, t *model.VariationType) error
	DeleteType(ctx context.Context, id string) error
	IsTypeNameUnique(ctx context.Context, name, excludeID string) (bool, error)

	// Variations (values under a type)
	CreateVariation(ctx context.Context, v *model.Variation) error
	FindAllVariations(ctx context.Context) ([]model.Variation, error)
	FindVariationsByType(ctx context.Context, typeID string) ([]model.Variation, error)
	FindVariationByID(ctx context.Context, id string) (*model.Variation, error)
	UpdateVariation(ctx context.Context, v *model.Variation) error
	DeleteVariation(ctx context.Context, id string) error
	IsVariationNameUnique(ctx context.Context, typeID, name, excludeID string) (bool, error)

	// Product variation items. FindItemsByProduct preserves insertion
	// order; display ordering by SortOrder is the usecase's concern.
	CreateItem(ctx context.Context, item *model.ProductVariationItem) error
	FindItemsByProduct(ctx context.Context, productSKU string) ([]model.ProductVariationItem, error)
	FindItemByID(ctx context.Context, id string) (*model.ProductVariationItem, error)
	UpdateItem(ctx context.Context, item *model.ProductVariationItem) error
	DeleteItem(ctx context.Context, id string) error
	DeleteItemsByProduct(ctx context.Context, productSKU string) (int, error)
	CountItemsByProduct(ctx context.Context, productSKU string) (int, error)
}
