package composition

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/composition/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type UseCase interface {
	// CreateItem validates the edge (self-composition, quantity, parent
	// and child eligibility, duplicate pair, cycle, depth) strictly
	// before anything is written.
	CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.CompositionItem, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.CompositionItem, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, parentSKU string) ([]model.CompositionItem, error)

	// CalculateWeight recomputes the aggregate weight on every call.
	// A missing child contributes 0 (best-effort degradation); run
	// ValidateComplexity or the create pipeline for strictness.
	CalculateWeight(ctx context.Context, parentSKU string) (float64, error)

	WouldCreateCycle(ctx context.Context, parentSKU, childSKU string) (bool, error)
	BuildTree(ctx context.Context, parentSKU string, maxDepth int) (*dto.TreeNode, error)
	ValidateComplexity(ctx context.Context, parentSKU string) (*dto.ComplexityReport, error)
}
