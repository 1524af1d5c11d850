package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, sku string) error

	// Uniqueness probes: SKU is exact, name is case-insensitive.
	IsSKUUnique(ctx context.Context, sku string) (bool, error)
	IsNameUnique(ctx context.Context, name, excludeSKU string) (bool, error)
}
