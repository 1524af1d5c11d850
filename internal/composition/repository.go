package composition

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, item *model.CompositionItem) error
	FindAll(ctx context.Context) ([]model.CompositionItem, error)
	FindByParent(ctx context.Context, parentSKU string) ([]model.CompositionItem, error)
	FindByChild(ctx context.Context, childSKU string) ([]model.CompositionItem, error)
	FindByID(ctx context.Context, id string) (*model.CompositionItem, error)
	Update(ctx context.Context, item *model.CompositionItem) error
	Delete(ctx context.Context, id string) error

	// DeleteByParent and DeleteByChild remove every edge keyed on the
	// given addresses and report how many were removed.
	DeleteByParent(ctx context.Context, parentSKUs ...string) (int, error)
	DeleteByChild(ctx context.Context, childSKUs ...string) (int, error)

	PairExists(ctx context.Context, parentSKU, childSKU string) (bool, error)
	CountByParent(ctx context.Context, parentSKU string) (int, error)
}
