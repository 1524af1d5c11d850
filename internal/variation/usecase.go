package variation

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/variation/dto"
)

type UseCase interface {
	// Variation types
	CreateType(ctx context.Context, input *dto.CreateTypeInput) (*model.VariationType, error)
	ListTypes(ctx context.Context) ([]model.VariationType, error)
	UpdateType(ctx context.Context, input *dto.UpdateTypeInput) (*model.VariationType, error)
	DeleteType(ctx context.Context, id string) error

	// Variations
	CreateVariation(ctx context.Context, input *dto.CreateVariationInput) (*model.Variation, error)
	ListVariations(ctx context.Context, typeID string) ([]model.Variation, error)
	UpdateVariation(ctx context.Context, input *dto.UpdateVariationInput) (*model.Variation, error)
	DeleteVariation(ctx context.Context, id string) error

	// Product variation items
	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.ProductVariationItem, error)
	ListItems(ctx context.Context, productSKU string) ([]model.ProductVariationItem, error)
	GetItem(ctx context.Context, id string) (*model.ProductVariationItem, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.ProductVariationItem, error)
	DeleteItem(ctx context.Context, id string) error
	ReorderItems(ctx context.Context, productSKU string, orderedIDs []string) error
	CountItems(ctx context.Context, productSKU string) (int, error)

	// GenerateItems materializes every combination of the selected
	// types' values as items of the product, skipping combinations that
	// already exist.
	GenerateItems(ctx context.Context, input *dto.GenerateItemsInput) ([]model.ProductVariationItem, error)

	// ValidateTypeSelection enforces that at most one selected type
	// modifies weight and at most one modifies dimensions.
	ValidateTypeSelection(ctx context.Context, typeIDs []string) error
}
