// Package usecase implements product lifecycle rules: flag-transition
// guards, deletion safety, and cascade deletion across the composition
// graph and variation items.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/composition"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/sku"
	"github.com/fekuna/omnipos-catalog-service/internal/validate"
	"github.com/fekuna/omnipos-catalog-service/internal/variation"
)

type productUseCase struct {
	repo         product.Repository
	variations   variation.Repository
	compositions composition.Repository
	logger       logger.ZapLogger
}

func NewProductUseCase(
	repo product.Repository,
	variations variation.Repository,
	compositions composition.Repository,
	log logger.ZapLogger,
) product.UseCase {
	return &productUseCase{
		repo:         repo,
		variations:   variations,
		compositions: compositions,
		logger:       log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if err := checkWeightAndDimensions(input.Weight, input.Dimensions, input.IsComposite); err != nil {
		return nil, err
	}

	unique, err := uc.repo.IsSKUUnique(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperr.BusinessRulef("SKU %q already exists", input.SKU).With("sku", input.SKU)
	}
	unique, err = uc.repo.IsNameUnique(ctx, input.Name, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperr.BusinessRulef("product name %q already exists", input.Name).With("name", input.Name)
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		SKU:          input.SKU,
		Name:         input.Name,
		Weight:       input.Weight,
		Dimensions:   input.Dimensions,
		IsComposite:  input.IsComposite,
		HasVariation: input.HasVariation,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, skuStr string) (*model.Product, error) {
	p, err := uc.repo.FindBySKU(ctx, skuStr)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product", skuStr)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	all, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := make([]model.Product, 0, len(all))
	for i := range all {
		p := &all[i]
		if filters.IsComposite != nil && p.IsComposite != *filters.IsComposite {
			continue
		}
		if filters.HasVariation != nil && p.HasVariation != *filters.HasVariation {
			continue
		}
		if q := filters.SearchQuery; q != "" {
			lq := strings.ToLower(q)
			if !strings.Contains(strings.ToLower(p.Name), lq) &&
				!strings.Contains(strings.ToLower(p.SKU), lq) {
				continue
			}
		}
		filtered = append(filtered, *p)
	}
	count := len(filtered)

	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filters.PageSize
		if start > count {
			start = count
		}
		end := start + filters.PageSize
		if end > count {
			end = count
		}
		filtered = filtered[start:end]
	}
	return filtered, count, nil
}

// UpdateProduct changes everything but the SKU. Disabling hasVariation
// or isComposite is a hard rejection while dependent rows exist; the
// UI's "this will delete your data" warning is advisory framing around
// this same rule, not a second enforcement layer.
func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	p, err := uc.repo.FindBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product", input.SKU)
	}

	if err := checkWeightAndDimensions(input.Weight, input.Dimensions, input.IsComposite); err != nil {
		return nil, err
	}

	if !strings.EqualFold(p.Name, input.Name) {
		unique, err := uc.repo.IsNameUnique(ctx, input.Name, p.SKU)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, apperr.BusinessRulef("product name %q already exists", input.Name).With("name", input.Name)
		}
	}

	if p.HasVariation && !input.HasVariation {
		count, err := uc.variations.CountItemsByProduct(ctx, p.SKU)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperr.BusinessRulef("cannot disable variations for %q: %d variation item(s) still exist", p.SKU, count).
				With("sku", p.SKU).
				With("count", count)
		}
	}
	if p.IsComposite && !input.IsComposite {
		count, err := uc.compositions.CountByParent(ctx, p.SKU)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperr.BusinessRulef("cannot disable composition for %q: %d composition item(s) still exist", p.SKU, count).
				With("sku", p.SKU).
				With("count", count)
		}
	}

	p.Name = input.Name
	p.Weight = input.Weight
	p.Dimensions = input.Dimensions
	p.IsComposite = input.IsComposite
	p.HasVariation = input.HasVariation
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, skuStr string, cascade bool) error {
	p, err := uc.repo.FindBySKU(ctx, skuStr)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("product", skuStr)
	}

	addresses, err := uc.childAddresses(ctx, p)
	if err != nil {
		return err
	}

	var blockers []string
	for _, address := range addresses {
		edges, err := uc.compositions.FindByChild(ctx, address)
		if err != nil {
			return err
		}
		for i := range edges {
			blockers = append(blockers, edges[i].ParentSKU)
		}
	}
	if len(blockers) > 0 && !cascade {
		return apperr.BusinessRulef("product %q is used as a composition child by %d item(s)", p.SKU, len(blockers)).
			With("sku", p.SKU).
			With("used_as_child_by", blockers)
	}

	// Cascade order: edges where it is the parent (plain and every
	// variation address), edges where it is the child, its variation
	// items, then the product itself. Each collection's write is
	// independent; there is no cross-key transaction.
	if _, err := uc.compositions.DeleteByParent(ctx, addresses...); err != nil {
		return err
	}
	if _, err := uc.compositions.DeleteByChild(ctx, addresses...); err != nil {
		return err
	}
	if p.HasVariation {
		if _, err := uc.variations.DeleteItemsByProduct(ctx, p.SKU); err != nil {
			return err
		}
	}
	if err := uc.repo.Delete(ctx, p.SKU); err != nil {
		return err
	}

	uc.logger.Info("product deleted",
		zap.String("sku", p.SKU),
		zap.Bool("cascade", cascade))
	return nil
}

// childAddresses returns every address the product can appear under in
// the composition graph: its plain SKU plus one variation address per
// variation item.
func (uc *productUseCase) childAddresses(ctx context.Context, p *model.Product) ([]string, error) {
	addresses := []string{p.SKU}
	if !p.HasVariation {
		return addresses, nil
	}
	items, err := uc.variations.FindItemsByProduct(ctx, p.SKU)
	if err != nil {
		return nil, err
	}
	for i := range items {
		addresses = append(addresses, sku.BuildVariationAddress(p.SKU, items[i].ID))
	}
	return addresses, nil
}

func (uc *productUseCase) FinishChecks(ctx context.Context, skuStr string) (*dto.FinishReport, error) {
	p, err := uc.repo.FindBySKU(ctx, skuStr)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product", skuStr)
	}

	report := &dto.FinishReport{SKU: p.SKU}
	if p.HasVariation {
		count, err := uc.variations.CountItemsByProduct(ctx, p.SKU)
		if err != nil {
			return nil, err
		}
		report.VariationItemCount = count
		report.MissingVariationItems = count == 0
	}
	if p.IsComposite {
		count, err := uc.compositions.CountByParent(ctx, p.SKU)
		if err != nil {
			return nil, err
		}
		report.CompositionItemCount = count
		report.MissingCompositionItems = count == 0
	}
	return report, nil
}

// checkWeightAndDimensions enforces that composite products never store
// a weight (it is always derived) and that stored values are positive.
func checkWeightAndDimensions(weight *float64, dimensions *model.Dimensions, isComposite bool) error {
	if isComposite && weight != nil {
		return apperr.BusinessRule("a composite product cannot store a weight; it is derived from its composition").
			With("weight", *weight)
	}
	if weight != nil && *weight <= 0 {
		return apperr.Validation("weight must be positive").With("weight", *weight)
	}
	if dimensions != nil && !dimensions.IsPositive() {
		return apperr.Validation("dimensions must be a positive triple")
	}
	return nil
}
