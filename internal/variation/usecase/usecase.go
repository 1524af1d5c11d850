// Package usecase implements the variation combination engine:
// combination generation, selection-hash uniqueness, effective-value
// resolution, and the type-selection constraints.
package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/composition"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/sku"
	"github.com/fekuna/omnipos-catalog-service/internal/validate"
	"github.com/fekuna/omnipos-catalog-service/internal/variation"
	"github.com/fekuna/omnipos-catalog-service/internal/variation/dto"
)

type variationUseCase struct {
	repo         variation.Repository
	products     product.Repository
	compositions composition.Repository
	logger       logger.ZapLogger
}

func NewVariationUseCase(
	repo variation.Repository,
	products product.Repository,
	compositions composition.Repository,
	log logger.ZapLogger,
) variation.UseCase {
	return &variationUseCase{
		repo:         repo,
		products:     products,
		compositions: compositions,
		logger:       log,
	}
}

// --- Variation types ---

func (uc *variationUseCase) CreateType(ctx context.Context, input *dto.CreateTypeInput) (*model.VariationType, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	unique, err := uc.repo.IsTypeNameUnique(ctx, input.Name, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperr.BusinessRulef("variation type name %q already exists", input.Name).
			With("name", input.Name)
	}

	now := time.Now()
	t := &model.VariationType{
		BaseModel:          model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:               input.Name,
		ModifiesWeight:     input.ModifiesWeight,
		ModifiesDimensions: input.ModifiesDimensions,
	}
	if err := uc.repo.CreateType(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *variationUseCase) ListTypes(ctx context.Context) ([]model.VariationType, error) {
	return uc.repo.FindAllTypes(ctx)
}

func (uc *variationUseCase) UpdateType(ctx context.Context, input *dto.UpdateTypeInput) (*model.VariationType, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	t, err := uc.repo.FindTypeByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("variation type", input.ID)
	}

	unique, err := uc.repo.IsTypeNameUnique(ctx, input.Name, input.ID)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperr.BusinessRulef("variation type name %q already exists", input.Name).
			With("name", input.Name)
	}

	t.Name = input.Name
	t.ModifiesWeight = input.ModifiesWeight
	t.ModifiesDimensions = input.ModifiesDimensions
	t.UpdatedAt = time.Now()
	if err := uc.repo.UpdateType(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (uc *variationUseCase) DeleteType(ctx context.Context, id string) error {
	t, err := uc.repo.FindTypeByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return apperr.NotFound("variation type", id)
	}

	values, err := uc.repo.FindVariationsByType(ctx, id)
	if err != nil {
		return err
	}
	if len(values) > 0 {
		return apperr.BusinessRulef("variation type %q is referenced by %d variation(s) and cannot be deleted", t.Name, len(values)).
			With("variation_type_id", id).
			With("count", len(values))
	}
	return uc.repo.DeleteType(ctx, id)
}

// --- Variations ---

func (uc *variationUseCase) CreateVariation(ctx context.Context, input *dto.CreateVariationInput) (*model.Variation, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	t, err := uc.repo.FindTypeByID(ctx, input.VariationTypeID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("variation type", input.VariationTypeID)
	}

	unique, err := uc.repo.IsVariationNameUnique(ctx, input.VariationTypeID, input.Name, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperr.BusinessRulef("variation name %q already exists under type %q", input.Name, t.Name).
			With("name", input.Name).
			With("variation_type_id", input.VariationTypeID)
	}

	now := time.Now()
	v := &model.Variation{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		VariationTypeID: input.VariationTypeID,
		Name:            input.Name,
	}
	if err := uc.repo.CreateVariation(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (uc *variationUseCase) ListVariations(ctx context.Context, typeID string) ([]model.Variation, error) {
	if typeID == "" {
		return uc.repo.FindAllVariations(ctx)
	}
	return uc.repo.FindVariationsByType(ctx, typeID)
}

func (uc *variationUseCase) UpdateVariation(ctx context.Context, input *dto.UpdateVariationInput) (*model.Variation, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	v, err := uc.repo.FindVariationByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound("variation", input.ID)
	}

	unique, err := uc.repo.IsVariationNameUnique(ctx, v.VariationTypeID, input.Name, input.ID)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperr.BusinessRulef("variation name %q already exists under this type", input.Name).
			With("name", input.Name)
	}

	v.Name = input.Name
	v.UpdatedAt = time.Now()
	if err := uc.repo.UpdateVariation(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (uc *variationUseCase) DeleteVariation(ctx context.Context, id string) error {
	v, err := uc.repo.FindVariationByID(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return apperr.NotFound("variation", id)
	}

	// Blocked while any item's selections reference this value.
	products, err := uc.productsReferencingVariation(ctx, id)
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return apperr.BusinessRulef("variation %q is used by variation items of %d product(s) and cannot be deleted", v.Name, len(products)).
			With("variation_id", id).
			With("product_skus", products)
	}
	return uc.repo.DeleteVariation(ctx, id)
}

func (uc *variationUseCase) productsReferencingVariation(ctx context.Context, variationID string) ([]string, error) {
	// Items are stored per product; scan all products' items.
	all, err := uc.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for i := range all {
		items, err := uc.repo.FindItemsByProduct(ctx, all[i].SKU)
		if err != nil {
			return nil, err
		}
		for j := range items {
			for _, vid := range items[j].Selections {
				if vid == variationID && !seen[items[j].ProductSKU] {
					seen[items[j].ProductSKU] = true
					out = append(out, items[j].ProductSKU)
				}
			}
		}
	}
	return out, nil
}

// --- Type selection constraint ---

func (uc *variationUseCase) ValidateTypeSelection(ctx context.Context, typeIDs []string) error {
	var weightType, dimensionsType *model.VariationType
	for _, id := range typeIDs {
		t, err := uc.repo.FindTypeByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return apperr.NotFound("variation type", id)
		}
		if t.ModifiesWeight {
			if weightType != nil {
				return apperr.BusinessRulef("only one selected variation type may modify weight: both %q and %q do", weightType.Name, t.Name).
					With("conflicting_type", t.Name)
			}
			tCopy := *t
			weightType = &tCopy
		}
		if t.ModifiesDimensions {
			if dimensionsType != nil {
				return apperr.BusinessRulef("only one selected variation type may modify dimensions: both %q and %q do", dimensionsType.Name, t.Name).
					With("conflicting_type", t.Name)
			}
			tCopy := *t
			dimensionsType = &tCopy
		}
	}
	return nil
}

// --- Product variation items ---

func (uc *variationUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.ProductVariationItem, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	p, err := uc.products.FindBySKU(ctx, input.ProductSKU)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product", input.ProductSKU)
	}
	if !p.HasVariation {
		return nil, apperr.BusinessRulef("product %q does not have variations enabled", p.SKU).
			With("sku", p.SKU)
	}

	if input.DimensionsOverride != nil && !input.DimensionsOverride.IsPositive() {
		return nil, apperr.Validation("dimensions override must be a positive triple")
	}

	if err := uc.checkSelections(ctx, input.Selections); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindItemsByProduct(ctx, input.ProductSKU)
	if err != nil {
		return nil, err
	}

	if len(input.Selections) > 0 {
		hash := model.SelectionHash(input.Selections)
		for i := range existing {
			if existing[i].SelectionHash() == hash {
				return nil, apperr.BusinessRulef("this combination already exists for product %q", input.ProductSKU).
					With("sku", input.ProductSKU).
					With("selection_hash", hash)
			}
		}
	}

	name := input.Name
	if name == nil && len(input.Selections) == 0 {
		generated := nextName(existing)
		name = &generated
	}
	if name != nil {
		if err := checkItemNameUnique(existing, *name, ""); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	item := &model.ProductVariationItem{
		BaseModel:          model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductSKU:         input.ProductSKU,
		Selections:         input.Selections,
		Name:               name,
		WeightOverride:     input.WeightOverride,
		DimensionsOverride: input.DimensionsOverride,
		SortOrder:          input.SortOrder,
	}
	if err := uc.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// checkSelections verifies every selected type and value exists, the
// value belongs to the type, and the selected types respect the
// modifies-weight/modifies-dimensions constraints.
func (uc *variationUseCase) checkSelections(ctx context.Context, selections map[string]string) error {
	if len(selections) == 0 {
		return nil
	}
	typeIDs := make([]string, 0, len(selections))
	for typeID := range selections {
		typeIDs = append(typeIDs, typeID)
	}
	sort.Strings(typeIDs)

	if err := uc.ValidateTypeSelection(ctx, typeIDs); err != nil {
		return err
	}
	for _, typeID := range typeIDs {
		variationID := selections[typeID]
		v, err := uc.repo.FindVariationByID(ctx, variationID)
		if err != nil {
			return err
		}
		if v == nil {
			return apperr.NotFound("variation", variationID)
		}
		if v.VariationTypeID != typeID {
			return apperr.BusinessRulef("variation %q does not belong to variation type %q", v.Name, typeID).
				With("variation_id", variationID).
				With("variation_type_id", typeID)
		}
	}
	return nil
}

func (uc *variationUseCase) ListItems(ctx context.Context, productSKU string) ([]model.ProductVariationItem, error) {
	items, err := uc.repo.FindItemsByProduct(ctx, productSKU)
	if err != nil {
		return nil, err
	}
	// Display order: items with a SortOrder first, ordered by value;
	// items without one follow in insertion order. SliceStable keeps
	// the tie order.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].SortOrder, items[j].SortOrder
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return items, nil
}

func (uc *variationUseCase) GetItem(ctx context.Context, id string) (*model.ProductVariationItem, error) {
	item, err := uc.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("variation item", id)
	}
	return item, nil
}

func (uc *variationUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.ProductVariationItem, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	item, err := uc.repo.FindItemByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("variation item", input.ID)
	}

	if input.DimensionsOverride != nil && !input.DimensionsOverride.IsPositive() {
		return nil, apperr.Validation("dimensions override must be a positive triple")
	}
	if err := uc.checkSelections(ctx, input.Selections); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindItemsByProduct(ctx, item.ProductSKU)
	if err != nil {
		return nil, err
	}

	if len(input.Selections) > 0 {
		hash := model.SelectionHash(input.Selections)
		for i := range existing {
			if existing[i].ID != item.ID && existing[i].SelectionHash() == hash {
				return nil, apperr.BusinessRulef("this combination already exists for product %q", item.ProductSKU).
					With("sku", item.ProductSKU).
					With("selection_hash", hash)
			}
		}
	}
	if input.Name != nil {
		if err := checkItemNameUnique(existing, *input.Name, item.ID); err != nil {
			return nil, err
		}
	}

	// Replace-vs-patch split per the dto contract: selections and the
	// overrides are replaced wholesale, name and sort order only when sent.
	item.Selections = input.Selections
	if input.Name != nil {
		item.Name = input.Name
	}
	item.WeightOverride = input.WeightOverride
	item.DimensionsOverride = input.DimensionsOverride
	if input.SortOrder != nil {
		item.SortOrder = input.SortOrder
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *variationUseCase) DeleteItem(ctx context.Context, id string) error {
	item, err := uc.repo.FindItemByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.NotFound("variation item", id)
	}

	// Blocked while the combination is addressed by any composition
	// edge, as a child or as a per-combination template parent.
	address := sku.BuildVariationAddress(item.ProductSKU, item.ID)
	asChild, err := uc.compositions.FindByChild(ctx, address)
	if err != nil {
		return err
	}
	if len(asChild) > 0 {
		parents := make([]string, 0, len(asChild))
		for i := range asChild {
			parents = append(parents, asChild[i].ParentSKU)
		}
		return apperr.BusinessRulef("variation %q is used as a composition child by %d item(s) and cannot be deleted", address, len(asChild)).
			With("address", address).
			With("parent_skus", parents)
	}
	asParent, err := uc.compositions.FindByParent(ctx, address)
	if err != nil {
		return err
	}
	if len(asParent) > 0 {
		return apperr.BusinessRulef("variation %q carries its own composition template (%d item(s)); delete those first", address, len(asParent)).
			With("address", address).
			With("count", len(asParent))
	}

	return uc.repo.DeleteItem(ctx, id)
}

func (uc *variationUseCase) ReorderItems(ctx context.Context, productSKU string, orderedIDs []string) error {
	items, err := uc.repo.FindItemsByProduct(ctx, productSKU)
	if err != nil {
		return err
	}
	byID := make(map[string]*model.ProductVariationItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	for position, id := range orderedIDs {
		item, ok := byID[id]
		if !ok {
			return apperr.NotFound("variation item", id)
		}
		order := position
		item.SortOrder = &order
		item.UpdatedAt = time.Now()
		if err := uc.repo.UpdateItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (uc *variationUseCase) CountItems(ctx context.Context, productSKU string) (int, error) {
	return uc.repo.CountItemsByProduct(ctx, productSKU)
}

// GenerateItems materializes the cartesian product of the selected
// types' values, skipping combinations the product already has.
func (uc *variationUseCase) GenerateItems(ctx context.Context, input *dto.GenerateItemsInput) ([]model.ProductVariationItem, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	p, err := uc.products.FindBySKU(ctx, input.ProductSKU)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product", input.ProductSKU)
	}
	if !p.HasVariation {
		return nil, apperr.BusinessRulef("product %q does not have variations enabled", p.SKU).
			With("sku", p.SKU)
	}
	if err := uc.ValidateTypeSelection(ctx, input.TypeIDs); err != nil {
		return nil, err
	}

	valuesByType := make(map[string][]string, len(input.TypeIDs))
	for _, typeID := range input.TypeIDs {
		values, err := uc.repo.FindVariationsByType(ctx, typeID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(values))
		for i := range values {
			ids = append(ids, values[i].ID)
		}
		valuesByType[typeID] = ids
	}

	existing, err := uc.repo.FindItemsByProduct(ctx, input.ProductSKU)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for i := range existing {
		if h := existing[i].SelectionHash(); h != "" {
			seen[h] = true
		}
	}

	var created []model.ProductVariationItem
	skipped := 0
	for selections := range variation.Combinations(input.TypeIDs, valuesByType) {
		hash := model.SelectionHash(selections)
		if seen[hash] {
			skipped++
			continue
		}
		seen[hash] = true

		now := time.Now()
		item := model.ProductVariationItem{
			BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			ProductSKU: input.ProductSKU,
			Selections: selections,
		}
		if err := uc.repo.CreateItem(ctx, &item); err != nil {
			return nil, err
		}
		created = append(created, item)
	}

	uc.logger.Info("generated variation combinations",
		zap.String("sku", input.ProductSKU),
		zap.Int("created", len(created)),
		zap.Int("skipped_existing", skipped))
	return created, nil
}

func nextName(existing []model.ProductVariationItem) string {
	names := make([]string, 0, len(existing))
	for i := range existing {
		if existing[i].Name != nil {
			names = append(names, *existing[i].Name)
		}
	}
	return variation.NextDefaultName(names)
}

func checkItemNameUnique(existing []model.ProductVariationItem, name, excludeID string) error {
	for i := range existing {
		if existing[i].ID == excludeID || existing[i].Name == nil {
			continue
		}
		if strings.EqualFold(*existing[i].Name, name) {
			return apperr.BusinessRulef("variation name %q already exists for this product", name).
				With("name", name)
		}
	}
	return nil
}
