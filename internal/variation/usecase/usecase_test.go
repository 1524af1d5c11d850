package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	compRepo "github.com/fekuna/omnipos-catalog-service/internal/composition/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	prodRepo "github.com/fekuna/omnipos-catalog-service/internal/product/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
	"github.com/fekuna/omnipos-catalog-service/internal/variation"
	varRepo "github.com/fekuna/omnipos-catalog-service/internal/variation/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/variation/dto"
)

type fixture struct {
	uc       variation.UseCase
	repo     variation.Repository
	products *prodRepo.StoreRepository
	edges    *compRepo.StoreRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(&store.Config{InMemory: true}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	products := prodRepo.NewStoreRepository(s)
	repo := varRepo.NewStoreRepository(s)
	edges := compRepo.NewStoreRepository(s)
	return &fixture{
		uc:       NewVariationUseCase(repo, products, edges, logger.NewNop()),
		repo:     repo,
		products: products,
		edges:    edges,
	}
}

func (f *fixture) addProduct(t *testing.T, skuStr string, hasVariation bool) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &model.Product{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		SKU:          skuStr,
		Name:         "Product " + skuStr,
		HasVariation: hasVariation,
	}))
}

// addType and addValue go through the usecase so uniqueness rules apply.
func (f *fixture) addType(t *testing.T, name string, modWeight, modDims bool) *model.VariationType {
	t.Helper()
	vt, err := f.uc.CreateType(context.Background(), &dto.CreateTypeInput{
		Name: name, ModifiesWeight: modWeight, ModifiesDimensions: modDims,
	})
	require.NoError(t, err)
	return vt
}

func (f *fixture) addValue(t *testing.T, typeID, name string) *model.Variation {
	t.Helper()
	v, err := f.uc.CreateVariation(context.Background(), &dto.CreateVariationInput{
		VariationTypeID: typeID, Name: name,
	})
	require.NoError(t, err)
	return v
}

func TestCreateTypeRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.addType(t, "Color", false, false)

	_, err := f.uc.CreateType(context.Background(), &dto.CreateTypeInput{Name: "Color"})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
}

func TestDeleteTypeBlockedWhileValuesExist(t *testing.T) {
	f := newFixture(t)
	color := f.addType(t, "Color", false, false)
	red := f.addValue(t, color.ID, "Red")

	err := f.uc.DeleteType(context.Background(), color.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	require.NoError(t, f.uc.DeleteVariation(context.Background(), red.ID))
	require.NoError(t, f.uc.DeleteType(context.Background(), color.ID))
}

func TestValidateTypeSelection(t *testing.T) {
	f := newFixture(t)
	size := f.addType(t, "Size", true, true)
	color := f.addType(t, "Color", false, false)
	material := f.addType(t, "Material", true, false)

	ctx := context.Background()
	require.NoError(t, f.uc.ValidateTypeSelection(ctx, []string{size.ID, color.ID}))

	err := f.uc.ValidateTypeSelection(ctx, []string{size.ID, material.ID})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "modify weight")
}

func TestCreateItemDuplicateCombinationRejected(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "SHIRT", true)
	color := f.addType(t, "Color", false, false)
	size := f.addType(t, "Size", false, false)
	red := f.addValue(t, color.ID, "Red")
	small := f.addValue(t, size.ID, "S")

	ctx := context.Background()
	_, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{
		ProductSKU: "SHIRT",
		Selections: map[string]string{color.ID: red.ID, size.ID: small.ID},
	})
	require.NoError(t, err)

	// Same combination, different map order.
	_, err = f.uc.CreateItem(ctx, &dto.CreateItemInput{
		ProductSKU: "SHIRT",
		Selections: map[string]string{size.ID: small.ID, color.ID: red.ID},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateItemRequiresVariationsEnabled(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "PLAIN", false)

	_, err := f.uc.CreateItem(context.Background(), &dto.CreateItemInput{ProductSKU: "PLAIN"})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
}

func TestCreateItemRejectsValueFromWrongType(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "SHIRT", true)
	color := f.addType(t, "Color", false, false)
	size := f.addType(t, "Size", false, false)
	red := f.addValue(t, color.ID, "Red")

	_, err := f.uc.CreateItem(context.Background(), &dto.CreateItemInput{
		ProductSKU: "SHIRT",
		Selections: map[string]string{size.ID: red.ID},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "does not belong")
}

func TestCreateItemAutoNamesSelectionlessItems(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "KIT-1", true)
	ctx := context.Background()

	first, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{ProductSKU: "KIT-1"})
	require.NoError(t, err)
	require.NotNil(t, first.Name)
	assert.Equal(t, "Variation 1", *first.Name)

	second, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{ProductSKU: "KIT-1"})
	require.NoError(t, err)
	assert.Equal(t, "Variation 2", *second.Name)

	// Deleting the first frees its slot; the gap is refilled.
	require.NoError(t, f.uc.DeleteItem(ctx, first.ID))
	third, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{ProductSKU: "KIT-1"})
	require.NoError(t, err)
	assert.Equal(t, "Variation 1", *third.Name)
}

func TestCreateItemRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "KIT-1", true)
	ctx := context.Background()

	name := "Deluxe"
	_, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{ProductSKU: "KIT-1", Name: &name})
	require.NoError(t, err)

	lower := "deluxe"
	_, err = f.uc.CreateItem(ctx, &dto.CreateItemInput{ProductSKU: "KIT-1", Name: &lower})
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
}

// captureLogger records Info fields so tests can assert on them.
type captureLogger struct {
	fields []zap.Field
}

func (c *captureLogger) Debug(msg string, fields ...zap.Field) {}
func (c *captureLogger) Info(msg string, fields ...zap.Field)  { c.fields = append(c.fields, fields...) }
func (c *captureLogger) Warn(msg string, fields ...zap.Field)  {}
func (c *captureLogger) Error(msg string, fields ...zap.Field) {}
func (c *captureLogger) Fatal(msg string, fields ...zap.Field) {}
func (c *captureLogger) Sync() error                           { return nil }

func (c *captureLogger) intField(key string) (int64, bool) {
	for _, f := range c.fields {
		if f.Key == key {
			return f.Integer, true
		}
	}
	return 0, false
}

func TestGenerateItemsSkipsExisting(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "SHIRT", true)
	color := f.addType(t, "Color", false, false)
	size := f.addType(t, "Size", false, false)
	red := f.addValue(t, color.ID, "Red")
	f.addValue(t, color.ID, "Blue")
	small := f.addValue(t, size.ID, "S")
	f.addValue(t, size.ID, "M")
	f.addValue(t, size.ID, "L")

	ctx := context.Background()
	_, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{
		ProductSKU: "SHIRT",
		Selections: map[string]string{color.ID: red.ID, size.ID: small.ID},
	})
	require.NoError(t, err)

	log := &captureLogger{}
	uc := NewVariationUseCase(f.repo, f.products, f.edges, log)
	created, err := uc.GenerateItems(ctx, &dto.GenerateItemsInput{
		ProductSKU: "SHIRT",
		TypeIDs:    []string{color.ID, size.ID},
	})
	require.NoError(t, err)
	assert.Len(t, created, 5) // 2x3 minus the pre-existing combination

	skipped, ok := log.intField("skipped_existing")
	require.True(t, ok)
	assert.EqualValues(t, 1, skipped)

	count, err := f.uc.CountItems(ctx, "SHIRT")
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	// Idempotent: a second run has nothing left to create.
	created, err = f.uc.GenerateItems(ctx, &dto.GenerateItemsInput{
		ProductSKU: "SHIRT",
		TypeIDs:    []string{color.ID, size.ID},
	})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestDeleteVariationBlockedWhileSelected(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "SHIRT", true)
	color := f.addType(t, "Color", false, false)
	red := f.addValue(t, color.ID, "Red")

	ctx := context.Background()
	item, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{
		ProductSKU: "SHIRT",
		Selections: map[string]string{color.ID: red.ID},
	})
	require.NoError(t, err)

	err = f.uc.DeleteVariation(ctx, red.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	require.NoError(t, f.uc.DeleteItem(ctx, item.ID))
	require.NoError(t, f.uc.DeleteVariation(ctx, red.ID))
}

func TestDeleteItemBlockedWhileComposed(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "SHIRT", true)
	ctx := context.Background()

	item, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{ProductSKU: "SHIRT"})
	require.NoError(t, err)

	edge := &model.CompositionItem{
		BaseModel: model.BaseModel{ID: uuid.New().String()},
		ParentSKU: "BUNDLE",
		ChildSKU:  "SHIRT#" + item.ID,
		Quantity:  1,
	}
	require.NoError(t, f.edges.Create(ctx, edge))

	err = f.uc.DeleteItem(ctx, item.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "composition child")

	require.NoError(t, f.edges.Delete(ctx, edge.ID))
	require.NoError(t, f.uc.DeleteItem(ctx, item.ID))
}

func TestListItemsMixedSortOrders(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "KIT-1", true)
	ctx := context.Background()

	five, one := 5, 1
	var ids []string
	for _, tc := range []struct {
		name  string
		order *int
	}{
		{"Late", &five},
		{"Unordered", nil},
		{"Early", &one},
	} {
		n := tc.name
		item, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{
			ProductSKU: "KIT-1", Name: &n, SortOrder: tc.order,
		})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	// Explicitly ordered items come first by value; the unordered item
	// trails in insertion order.
	items, err := f.uc.ListItems(ctx, "KIT-1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, ids[2], items[0].ID)
	assert.Equal(t, ids[0], items[1].ID)
	assert.Equal(t, ids[1], items[2].ID)
}

func TestUpdateItemOverrideSemantics(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "KIT-1", true)
	ctx := context.Background()

	name := "Deluxe"
	weight := 2.5
	item, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{
		ProductSKU: "KIT-1", Name: &name, WeightOverride: &weight,
	})
	require.NoError(t, err)

	// A nil override clears it; a nil name keeps the current one.
	updated, err := f.uc.UpdateItem(ctx, &dto.UpdateItemInput{ID: item.ID})
	require.NoError(t, err)
	assert.Nil(t, updated.WeightOverride)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Deluxe", *updated.Name)
}

func TestReorderItemsAndListOrder(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "KIT-1", true)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"First", "Second", "Third"} {
		n := name
		item, err := f.uc.CreateItem(ctx, &dto.CreateItemInput{ProductSKU: "KIT-1", Name: &n})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	// Reverse the display order.
	require.NoError(t, f.uc.ReorderItems(ctx, "KIT-1", []string{ids[2], ids[1], ids[0]}))

	items, err := f.uc.ListItems(ctx, "KIT-1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, ids[2], items[0].ID)
	assert.Equal(t, ids[0], items[2].ID)

	err = f.uc.ReorderItems(ctx, "KIT-1", []string{"unknown-id"})
	assert.True(t, apperr.IsNotFound(err))
}
