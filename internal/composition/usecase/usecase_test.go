package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/composition"
	"github.com/fekuna/omnipos-catalog-service/internal/composition/dto"
	compRepo "github.com/fekuna/omnipos-catalog-service/internal/composition/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	prodRepo "github.com/fekuna/omnipos-catalog-service/internal/product/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	varRepo "github.com/fekuna/omnipos-catalog-service/internal/variation/repository"
)

type fixture struct {
	uc       composition.UseCase
	edges    composition.Repository
	products *prodRepo.StoreRepository
	items    *varRepo.StoreRepository
}

func newFixture(t *testing.T, limits composition.Limits) *fixture {
	t.Helper()
	s, err := store.Open(&store.Config{InMemory: true}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	products := prodRepo.NewStoreRepository(s)
	items := varRepo.NewStoreRepository(s)
	edges := compRepo.NewStoreRepository(s)
	return &fixture{
		uc:       NewCompositionUseCase(edges, products, items, limits, logger.NewNop()),
		edges:    edges,
		products: products,
		items:    items,
	}
}

func (f *fixture) addProduct(t *testing.T, skuStr string, weight float64, isComposite, hasVariation bool) {
	t.Helper()
	p := &model.Product{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		SKU:          skuStr,
		Name:         "Product " + skuStr,
		IsComposite:  isComposite,
		HasVariation: hasVariation,
	}
	if !isComposite && weight > 0 {
		p.Weight = &weight
	}
	require.NoError(t, f.products.Create(context.Background(), p))
}

func (f *fixture) addItem(t *testing.T, productSKU, itemID, name string, weightOverride *float64) {
	t.Helper()
	item := &model.ProductVariationItem{
		BaseModel:      model.BaseModel{ID: itemID, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		ProductSKU:     productSKU,
		Name:           &name,
		WeightOverride: weightOverride,
	}
	require.NoError(t, f.items.CreateItem(context.Background(), item))
}

func (f *fixture) addEdge(t *testing.T, parent, child string, quantity int) {
	t.Helper()
	_, err := f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: parent, ChildSKU: child, Quantity: quantity,
	})
	require.NoError(t, err)
}

func TestCalculateWeightSingleLevel(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "PART-A", 1.0, false, false)
	f.addProduct(t, "PART-B", 0.5, false, false)
	f.addProduct(t, "KIT-1", 0, true, false)
	f.addEdge(t, "KIT-1", "PART-A", 2)
	f.addEdge(t, "KIT-1", "PART-B", 4)

	weight, err := f.uc.CalculateWeight(context.Background(), "KIT-1")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, weight, 1e-9)
}

func TestCalculateWeightNested(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "SCREW", 0.018, false, false)
	f.addProduct(t, "PANEL", 2.0, false, false)
	f.addProduct(t, "BRACKET", 0, true, false)
	f.addProduct(t, "CABINET", 0, true, false)
	f.addEdge(t, "BRACKET", "SCREW", 4)
	f.addEdge(t, "BRACKET", "PANEL", 1)
	f.addEdge(t, "CABINET", "BRACKET", 2)
	f.addEdge(t, "CABINET", "SCREW", 1)

	// 2 * (4*0.018 + 2.0) + 0.018
	weight, err := f.uc.CalculateWeight(context.Background(), "CABINET")
	require.NoError(t, err)
	assert.InDelta(t, 4.162, weight, 1e-9)
}

func TestCalculateWeightMissingChildIsZero(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "PART-A", 1.5, false, false)
	f.addProduct(t, "KIT-1", 0, true, false)
	f.addEdge(t, "KIT-1", "PART-A", 2)

	// A dangling edge, inserted behind the validation pipeline.
	require.NoError(t, f.edges.Create(context.Background(), &model.CompositionItem{
		BaseModel: model.BaseModel{ID: uuid.New().String()},
		ParentSKU: "KIT-1", ChildSKU: "GHOST", Quantity: 3,
	}))

	weight, err := f.uc.CalculateWeight(context.Background(), "KIT-1")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, weight, 1e-9)
}

func TestCalculateWeightVariationOverride(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "SHIRT", 0.2, false, true)
	heavy := 0.35
	f.addItem(t, "SHIRT", "item-xl", "XL", &heavy)
	f.addItem(t, "SHIRT", "item-s", "S", nil)
	f.addProduct(t, "BUNDLE", 0, true, false)
	f.addEdge(t, "BUNDLE", "SHIRT#item-xl", 2)
	f.addEdge(t, "BUNDLE", "SHIRT#item-s", 1)

	// 2*0.35 + 1*0.2 (no override falls back to the base weight)
	weight, err := f.uc.CalculateWeight(context.Background(), "BUNDLE")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, weight, 1e-9)
}

func TestCreateItemRejectsSelfComposition(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "KIT-1", 0, true, true)
	f.addItem(t, "KIT-1", "item-1", "Default", nil)

	_, err := f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: "KIT-1", ChildSKU: "KIT-1", Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	// The base SKU rule also catches a product containing its own combination.
	_, err = f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: "KIT-1", ChildSKU: "KIT-1#item-1", Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
}

func TestCreateItemRejectsVariableProductDirectly(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "SHIRT", 0.2, false, true)
	f.addItem(t, "SHIRT", "item-1", "Red", nil)
	f.addProduct(t, "BUNDLE", 0, true, false)

	_, err := f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: "BUNDLE", ChildSKU: "SHIRT", Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "cannot be referenced directly")

	// The specific combination is the valid form.
	_, err = f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: "BUNDLE", ChildSKU: "SHIRT#item-1", Quantity: 1,
	})
	require.NoError(t, err)
}

func TestCreateItemRejectsForeignVariation(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "SHIRT", 0.2, false, true)
	f.addProduct(t, "HAT", 0.1, false, true)
	f.addItem(t, "HAT", "hat-item", "Blue", nil)
	f.addProduct(t, "BUNDLE", 0, true, false)

	_, err := f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: "BUNDLE", ChildSKU: "SHIRT#hat-item", Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "does not belong")
}

func TestCreateItemRejectsDuplicatePair(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "PART-A", 1.0, false, false)
	f.addProduct(t, "KIT-1", 0, true, false)
	f.addEdge(t, "KIT-1", "PART-A", 1)

	_, err := f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: "KIT-1", ChildSKU: "PART-A", Quantity: 2,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateItemRejectsCycleWithoutWriting(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "ALPHA", 0, true, false)
	f.addProduct(t, "BETA", 0, true, false)
	f.addProduct(t, "LEAF", 0.1, false, false)
	f.addEdge(t, "ALPHA", "BETA", 1)
	f.addEdge(t, "BETA", "LEAF", 1)

	before, err := f.edges.FindAll(context.Background())
	require.NoError(t, err)

	_, err = f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: "BETA", ChildSKU: "ALPHA", Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "circular")

	after, err := f.edges.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCreateItemEnforcesDepthLimit(t *testing.T) {
	f := newFixture(t, composition.Limits{MaxDepth: 3})
	f.addProduct(t, "L1", 0, true, false)
	f.addProduct(t, "L2", 0, true, false)
	f.addProduct(t, "L3", 0, true, false)
	f.addProduct(t, "LEAF", 0.1, false, false)
	f.addEdge(t, "L2", "L3", 1)
	f.addEdge(t, "L3", "LEAF", 1)

	// L2's subtree is 3 levels already; one more parent passes the cap.
	_, err := f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ParentSKU: "L1", ChildSKU: "L2", Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, composition.IsDepthExceeded(err))
}

func TestWouldCreateCycle(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "ALPHA", 0, true, false)
	f.addProduct(t, "BETA", 0, true, false)
	f.addProduct(t, "GAMMA", 0.1, false, false)
	f.addEdge(t, "ALPHA", "BETA", 1)
	f.addEdge(t, "BETA", "GAMMA", 1)

	ctx := context.Background()
	cyclic, err := f.uc.WouldCreateCycle(ctx, "BETA", "ALPHA")
	require.NoError(t, err)
	assert.True(t, cyclic, "indirect cycle")

	cyclic, err = f.uc.WouldCreateCycle(ctx, "ALPHA", "ALPHA")
	require.NoError(t, err)
	assert.True(t, cyclic, "direct cycle")

	cyclic, err = f.uc.WouldCreateCycle(ctx, "ALPHA", "GAMMA")
	require.NoError(t, err)
	assert.False(t, cyclic)
}

func TestBuildTree(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "SCREW", 0.018, false, false)
	f.addProduct(t, "PANEL", 2.0, false, false)
	f.addProduct(t, "BRACKET", 0, true, false)
	f.addProduct(t, "CABINET", 0, true, false)
	f.addEdge(t, "BRACKET", "SCREW", 4)
	f.addEdge(t, "BRACKET", "PANEL", 1)
	f.addEdge(t, "CABINET", "BRACKET", 2)

	tree, err := f.uc.BuildTree(context.Background(), "CABINET", 0)
	require.NoError(t, err)

	assert.Equal(t, "CABINET", tree.SKU)
	assert.Equal(t, 1, tree.Quantity)
	assert.Equal(t, 0, tree.Depth)
	require.Len(t, tree.Children, 1)

	bracket := tree.Children[0]
	assert.Equal(t, "BRACKET", bracket.SKU)
	assert.Equal(t, 2, bracket.Quantity)
	assert.Equal(t, 1, bracket.Depth)
	require.Len(t, bracket.Children, 2)
	assert.InDelta(t, 2.072, bracket.CalculatedWeight, 1e-9)
	assert.InDelta(t, 4.144, bracket.TotalWeight, 1e-9)
	assert.InDelta(t, 4.144, tree.TotalWeight, 1e-9)
}

func TestBuildTreeMarksMissingChildren(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "KIT-1", 0, true, false)
	require.NoError(t, f.edges.Create(context.Background(), &model.CompositionItem{
		BaseModel: model.BaseModel{ID: uuid.New().String()},
		ParentSKU: "KIT-1", ChildSKU: "GHOST", Quantity: 1,
	}))

	tree, err := f.uc.BuildTree(context.Background(), "KIT-1", 0)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.True(t, tree.Children[0].Missing)
	assert.Zero(t, tree.Children[0].TotalWeight)
}

func TestValidateComplexity(t *testing.T) {
	t.Run("small tree is valid with no warnings", func(t *testing.T) {
		f := newFixture(t, composition.DefaultLimits())
		f.addProduct(t, "PART-A", 1.0, false, false)
		f.addProduct(t, "KIT-1", 0, true, false)
		f.addEdge(t, "KIT-1", "PART-A", 1)

		report, err := f.uc.ValidateComplexity(context.Background(), "KIT-1")
		require.NoError(t, err)
		assert.True(t, report.IsValid)
		assert.Empty(t, report.Warnings)
		assert.Equal(t, 1, report.MaxDepth)
		assert.Equal(t, 2, report.TotalItems)
	})

	t.Run("deep tree warns but stays valid", func(t *testing.T) {
		f := newFixture(t, composition.Limits{WarnDepth: 1})
		f.addProduct(t, "LEAF", 0.1, false, false)
		f.addProduct(t, "MID", 0, true, false)
		f.addProduct(t, "TOP", 0, true, false)
		f.addEdge(t, "MID", "LEAF", 1)
		f.addEdge(t, "TOP", "MID", 1)

		report, err := f.uc.ValidateComplexity(context.Background(), "TOP")
		require.NoError(t, err)
		assert.True(t, report.IsValid)
		require.Len(t, report.Warnings, 1)
		assert.Contains(t, report.Warnings[0], "deeper than recommended")
	})

	t.Run("tree past the hard depth ceiling is invalid", func(t *testing.T) {
		f := newFixture(t, composition.Limits{MaxDepth: 2})
		f.addProduct(t, "LEAF", 0.1, false, false)
		f.addProduct(t, "D1", 0, true, false)
		f.addProduct(t, "D2", 0, true, false)
		f.addProduct(t, "D3", 0, true, false)
		f.addEdge(t, "D3", "LEAF", 1)
		// Behind the pipeline: the chain D1 -> D2 -> D3 makes 4 levels,
		// which the create path would never have allowed.
		for _, pair := range [][2]string{{"D2", "D3"}, {"D1", "D2"}} {
			require.NoError(t, f.edges.Create(context.Background(), &model.CompositionItem{
				BaseModel: model.BaseModel{ID: uuid.New().String()},
				ParentSKU: pair[0], ChildSKU: pair[1], Quantity: 1,
			}))
		}

		report, err := f.uc.ValidateComplexity(context.Background(), "D1")
		require.NoError(t, err)
		assert.False(t, report.IsValid)
	})
}

func TestUpdateAndDeleteItem(t *testing.T) {
	f := newFixture(t, composition.DefaultLimits())
	f.addProduct(t, "PART-A", 1.0, false, false)
	f.addProduct(t, "KIT-1", 0, true, false)

	ctx := context.Background()
	item, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{
		ParentSKU: "KIT-1", ChildSKU: "PART-A", Quantity: 1,
	})
	require.NoError(t, err)

	updated, err := f.uc.UpdateItem(ctx, &dto.UpdateItemInput{ID: item.ID, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	_, err = f.uc.UpdateItem(ctx, &dto.UpdateItemInput{ID: item.ID, Quantity: 0})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, f.uc.DeleteItem(ctx, item.ID))
	err = f.uc.DeleteItem(ctx, item.ID)
	assert.True(t, apperr.IsNotFound(err))
}
