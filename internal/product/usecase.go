package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, sku string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)

	// DeleteProduct refuses while the product (or any of its variation
	// addresses) is referenced as a composition child, unless cascade is
	// set, in which case all dependent composition edges and variation
	// items are removed first.
	DeleteProduct(ctx context.Context, sku string, cascade bool) error

	// FinishChecks reports the minimum-variation / minimum-composition
	// counts; the caller decides when to gate on them.
	FinishChecks(ctx context.Context, sku string) (*dto.FinishReport, error)
}
