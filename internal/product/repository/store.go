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

func (r *StoreRepository) Create(ctx context.Context, p *model.Product) error {
	return r.mutate(ctx, func(rows []model.Product) ([]model.Product, error) {
		for i := range rows {
			if rows[i].ID == p.ID {
				return nil, apperr.BusinessRulef("product id %q already exists", p.ID)
			}
		}
		return append(rows, *p), nil
	})
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var rows []model.Product
	if err := r.store.FindAll(ctx, store.KeyProducts, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StoreRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	rows, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].SKU == sku {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (r *StoreRepository) Update(ctx context.Context, p *model.Product) error {
	return r.mutate(ctx, func(rows []model.Product) ([]model.Product, error) {
		for i := range rows {
			if rows[i].SKU == p.SKU {
				rows[i] = *p
				return rows, nil
			}
		}
		return nil, apperr.NotFound("product", p.SKU)
	})
}

func (r *StoreRepository) Delete(ctx context.Context, sku string) error {
	return r.mutate(ctx, func(rows []model.Product) ([]model.Product, error) {
		next := make([]model.Product, 0, len(rows))
		for i := range rows {
			if rows[i].SKU != sku {
				next = append(next, rows[i])
			}
		}
		return next, nil
	})
}

func (r *StoreRepository) IsSKUUnique(ctx context.Context, sku string) (bool, error) {
	p, err := r.FindBySKU(ctx, sku)
	if err != nil {
		return false, err
	}
	return p == nil, nil
}

func (r *StoreRepository) IsNameUnique(ctx context.Context, name, excludeSKU string) (bool, error) {
	rows, err := r.FindAll(ctx)
	if err != nil {
		return false, err
	}
	for i := range rows {
		if rows[i].SKU == excludeSKU {
			continue
		}
		if strings.EqualFold(rows[i].Name, name) {
			return false, nil
		}
	}
	return true, nil
}

func (r *StoreRepository) mutate(ctx context.Context, fn func(rows []model.Product) ([]model.Product, error)) error {
	return r.store.Update(ctx, store.KeyProducts, func(raw []byte) ([]byte, error) {
		var rows []model.Product
		if raw != nil {
			if err := json.Unmarshal(raw, &rows); err != nil {
				return nil, apperr.Storage("decode products collection", err)
			}
		}
		next, err := fn(rows)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []model.Product{}
		}
		out, err := json.Marshal(next)
		if err != nil {
			return nil, apperr.Storage("encode products collection", err)
		}
		return out, nil
	})
}
