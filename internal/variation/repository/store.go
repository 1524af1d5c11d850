package repository

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/store"
)

type StoreRepository struct {
	store store.EntityStore
}

func NewStoreRepository(s store.EntityStore) *StoreRepository {
	return &StoreRepository{store: s}
}

// --- Variation types ---

func (r *StoreRepository) CreateType(ctx context.Context, t *model.VariationType) error {
	return mutate(ctx, r.store, store.KeyVariationTypes, func(rows []model.VariationType) ([]model.VariationType, error) {
		for i := range rows {
			if rows[i].ID == t.ID {
				return nil, apperr.BusinessRulef("variation type id %q already exists", t.ID)
			}
		}
		return append(rows, *t), nil
	})
}

func (r *StoreRepository) FindAllTypes(ctx context.Context) ([]model.VariationType, error) {
	var rows []model.VariationType
	if err := r.store.FindAll(ctx, store.KeyVariationTypes, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StoreRepository) FindTypeByID(ctx context.Context, id string) (*model.VariationType, error) {
	rows, err := r.FindAllTypes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (r *StoreRepository) UpdateType(ctx context.Context, t *model.VariationType) error {
	return mutate(ctx, r.store, store.KeyVariationTypes, func(rows []model.VariationType) ([]model.VariationType, error) {
		for i := range rows {
			if rows[i].ID == t.ID {
				rows[i] = *t
				return rows, nil
			}
		}
		return nil, apperr.NotFound("variation type", t.ID)
	})
}

func (r *StoreRepository) DeleteType(ctx context.Context, id string) error {
	return mutate(ctx, r.store, store.KeyVariationTypes, func(rows []model.VariationType) ([]model.VariationType, error) {
		next := make([]model.VariationType, 0, len(rows))
		for i := range rows {
			if rows[i].ID != id {
				next = append(next, rows[i])
			}
		}
		return next, nil
	})
}

func (r *StoreRepository) IsTypeNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	rows, err := r.FindAllTypes(ctx)
	if err != nil {
		return false, err
	}
	for i := range rows {
		if rows[i].ID == excludeID {
			continue
		}
		if strings.EqualFold(rows[i].Name, name) {
			return false, nil
		}
	}
	return true, nil
}

// --- Variations ---

func (r *StoreRepository) CreateVariation(ctx context.Context, v *model.Variation) error {
	return mutate(ctx, r.store, store.KeyVariations, func(rows []model.Variation) ([]model.Variation, error) {
		for i := range rows {
			if rows[i].ID == v.ID {
				return nil, apperr.BusinessRulef("variation id %q already exists", v.ID)
			}
		}
		return append(rows, *v), nil
	})
}

func (r *StoreRepository) FindAllVariations(ctx context.Context) ([]model.Variation, error) {
	var rows []model.Variation
	if err := r.store.FindAll(ctx, store.KeyVariations, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StoreRepository) FindVariationsByType(ctx context.Context, typeID string) ([]model.Variation, error) {
	rows, err := r.FindAllVariations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Variation, 0, len(rows))
	for i := range rows {
		if rows[i].VariationTypeID == typeID {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func (r *StoreRepository) FindVariationByID(ctx context.Context, id string) (*model.Variation, error) {
	rows, err := r.FindAllVariations(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (r *StoreRepository) UpdateVariation(ctx context.Context, v *model.Variation) error {
	return mutate(ctx, r.store, store.KeyVariations, func(rows []model.Variation) ([]model.Variation, error) {
		for i := range rows {
			if rows[i].ID == v.ID {
				rows[i] = *v
				return rows, nil
			}
		}
		return nil, apperr.NotFound("variation", v.ID)
	})
}

func (r *StoreRepository) DeleteVariation(ctx context.Context, id string) error {
	return mutate(ctx, r.store, store.KeyVariations, func(rows []model.Variation) ([]model.Variation, error) {
		next := make([]model.Variation, 0, len(rows))
		for i := range rows {
			if rows[i].ID != id {
				next = append(next, rows[i])
			}
		}
		return next, nil
	})
}

func (r *StoreRepository) IsVariationNameUnique(ctx context.Context, typeID, name, excludeID string) (bool, error) {
	rows, err := r.FindVariationsByType(ctx, typeID)
	if err != nil {
		return false, err
	}
	for i := range rows {
		if rows[i].ID == excludeID {
			continue
		}
		if strings.EqualFold(rows[i].Name, name) {
			return false, nil
		}
	}
	return true, nil
}

// --- Product variation items ---

func (r *StoreRepository) CreateItem(ctx context.Context, item *model.ProductVariationItem) error {
	return mutate(ctx, r.store, store.KeyProductVariationItems, func(rows []model.ProductVariationItem) ([]model.ProductVariationItem, error) {
		for i := range rows {
			if rows[i].ID == item.ID {
				return nil, apperr.BusinessRulef("variation item id %q already exists", item.ID)
			}
		}
		return append(rows, *item), nil
	})
}

func (r *StoreRepository) FindItemsByProduct(ctx context.Context, productSKU string) ([]model.ProductVariationItem, error) {
	var rows []model.ProductVariationItem
	if err := r.store.FindAll(ctx, store.KeyProductVariationItems, &rows); err != nil {
		return nil, err
	}
	out := make([]model.ProductVariationItem, 0, len(rows))
	for i := range rows {
		if rows[i].ProductSKU == productSKU {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func (r *StoreRepository) FindItemByID(ctx context.Context, id string) (*model.ProductVariationItem, error) {
	var rows []model.ProductVariationItem
	if err := r.store.FindAll(ctx, store.KeyProductVariationItems, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (r *StoreRepository) UpdateItem(ctx context.Context, item *model.ProductVariationItem) error {
	return mutate(ctx, r.store, store.KeyProductVariationItems, func(rows []model.ProductVariationItem) ([]model.ProductVariationItem, error) {
		for i := range rows {
			if rows[i].ID == item.ID {
				rows[i] = *item
				return rows, nil
			}
		}
		return nil, apperr.NotFound("variation item", item.ID)
	})
}

func (r *StoreRepository) DeleteItem(ctx context.Context, id string) error {
	return mutate(ctx, r.store, store.KeyProductVariationItems, func(rows []model.ProductVariationItem) ([]model.ProductVariationItem, error) {
		next := make([]model.ProductVariationItem, 0, len(rows))
		for i := range rows {
			if rows[i].ID != id {
				next = append(next, rows[i])
			}
		}
		return next, nil
	})
}

func (r *StoreRepository) DeleteItemsByProduct(ctx context.Context, productSKU string) (int, error) {
	deleted := 0
	err := mutate(ctx, r.store, store.KeyProductVariationItems, func(rows []model.ProductVariationItem) ([]model.ProductVariationItem, error) {
		next := make([]model.ProductVariationItem, 0, len(rows))
		for i := range rows {
			if rows[i].ProductSKU == productSKU {
				deleted++
				continue
			}
			next = append(next, rows[i])
		}
		return next, nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *StoreRepository) CountItemsByProduct(ctx context.Context, productSKU string) (int, error) {
	items, err := r.FindItemsByProduct(ctx, productSKU)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// mutate runs a typed read-modify-write cycle on one collection under
// the store's per-key lock.
func mutate[T any](ctx context.Context, s store.EntityStore, key string, fn func(rows []T) ([]T, error)) error {
	return s.Update(ctx, key, func(raw []byte) ([]byte, error) {
		var rows []T
		if raw != nil {
			if err := json.Unmarshal(raw, &rows); err != nil {
				return nil, apperr.Storage("decode collection "+key, err)
			}
		}
		next, err := fn(rows)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, apperr.Storage("encode collection "+key, err)
		}
		return out, nil
	})
}
