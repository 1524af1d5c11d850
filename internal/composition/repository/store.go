package repository

import (
	"context"
	"encoding/json"

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

func (r *StoreRepository) Create(ctx context.Context, item *model.CompositionItem) error {
	return r.mutate(ctx, func(rows []model.CompositionItem) ([]model.CompositionItem, error) {
		for i := range rows {
			if rows[i].ID == item.ID {
				return nil, apperr.BusinessRulef("composition item id %q already exists", item.ID)
			}
		}
		return append(rows, *item), nil
	})
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]model.CompositionItem, error) {
	var rows []model.CompositionItem
	if err := r.store.FindAll(ctx, store.KeyCompositionItems, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StoreRepository) FindByParent(ctx context.Context, parentSKU string) ([]model.CompositionItem, error) {
	rows, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.CompositionItem, 0, len(rows))
	for i := range rows {
		if rows[i].ParentSKU == parentSKU {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func (r *StoreRepository) FindByChild(ctx context.Context, childSKU string) ([]model.CompositionItem, error) {
	rows, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.CompositionItem, 0, len(rows))
	for i := range rows {
		if rows[i].ChildSKU == childSKU {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id string) (*model.CompositionItem, error) {
	rows, err := r.FindAll(ctx)
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

func (r *StoreRepository) Update(ctx context.Context, item *model.CompositionItem) error {
	return r.mutate(ctx, func(rows []model.CompositionItem) ([]model.CompositionItem, error) {
		for i := range rows {
			if rows[i].ID == item.ID {
				rows[i] = *item
				return rows, nil
			}
		}
		return nil, apperr.NotFound("composition item", item.ID)
	})
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(ctx, func(rows []model.CompositionItem) ([]model.CompositionItem, error) {
		next := make([]model.CompositionItem, 0, len(rows))
		for i := range rows {
			if rows[i].ID != id {
				next = append(next, rows[i])
			}
		}
		return next, nil
	})
}

func (r *StoreRepository) DeleteByParent(ctx context.Context, parentSKUs ...string) (int, error) {
	return r.deleteMatching(ctx, func(row *model.CompositionItem) bool {
		for _, sku := range parentSKUs {
			if row.ParentSKU == sku {
				return true
			}
		}
		return false
	})
}

func (r *StoreRepository) DeleteByChild(ctx context.Context, childSKUs ...string) (int, error) {
	return r.deleteMatching(ctx, func(row *model.CompositionItem) bool {
		for _, sku := range childSKUs {
			if row.ChildSKU == sku {
				return true
			}
		}
		return false
	})
}

func (r *StoreRepository) PairExists(ctx context.Context, parentSKU, childSKU string) (bool, error) {
	rows, err := r.FindAll(ctx)
	if err != nil {
		return false, err
	}
	for i := range rows {
		if rows[i].ParentSKU == parentSKU && rows[i].ChildSKU == childSKU {
			return true, nil
		}
	}
	return false, nil
}

func (r *StoreRepository) CountByParent(ctx context.Context, parentSKU string) (int, error) {
	rows, err := r.FindByParent(ctx, parentSKU)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *StoreRepository) deleteMatching(ctx context.Context, match func(*model.CompositionItem) bool) (int, error) {
	deleted := 0
	err := r.mutate(ctx, func(rows []model.CompositionItem) ([]model.CompositionItem, error) {
		next := make([]model.CompositionItem, 0, len(rows))
		for i := range rows {
			if match(&rows[i]) {
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

func (r *StoreRepository) mutate(ctx context.Context, fn func(rows []model.CompositionItem) ([]model.CompositionItem, error)) error {
	return r.store.Update(ctx, store.KeyCompositionItems, func(raw []byte) ([]byte, error) {
		var rows []model.CompositionItem
		if raw != nil {
			if err := json.Unmarshal(raw, &rows); err != nil {
				return nil, apperr.Storage("decode composition items collection", err)
			}
		}
		next, err := fn(rows)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []model.CompositionItem{}
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, apperr.Storage("encode composition items collection", err)
		}
		return out, nil
	})
}
