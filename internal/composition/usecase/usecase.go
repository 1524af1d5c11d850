// Package usecase implements the composition graph engine: recursive
// weight aggregation, cycle detection, tree construction, and the
// pre-insert validation pipeline that protects the graph's invariants.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
	"github.com/fekuna/omnipos-catalog-service/internal/composition"
	"github.com/fekuna/omnipos-catalog-service/internal/composition/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/sku"
	"github.com/fekuna/omnipos-catalog-service/internal/variation"
)

type compositionUseCase struct {
	repo       composition.Repository
	products   product.Repository
	variations variation.Repository
	limits     composition.Limits
	logger     logger.ZapLogger
}

func NewCompositionUseCase(
	repo composition.Repository,
	products product.Repository,
	variations variation.Repository,
	limits composition.Limits,
	log logger.ZapLogger,
) composition.UseCase {
	return &compositionUseCase{
		repo:       repo,
		products:   products,
		variations: variations,
		limits:     limits.Normalize(),
		logger:     log,
	}
}

// nodeKind is resolved once per node before recursing, so the hot path
// never re-derives the kind from delimiter sniffing.
type nodeKind int

const (
	kindSimple nodeKind = iota
	kindComposite
	kindVariation
)

type resolvedNode struct {
	kind    nodeKind
	ref     sku.Ref
	product *model.Product
	item    *model.ProductVariationItem // set when kind == kindVariation
}

func (uc *compositionUseCase) resolveNode(ctx context.Context, address string) (*resolvedNode, error) {
	ref, err := sku.DecodeLegacy(address)
	if err != nil {
		return nil, err
	}

	p, err := uc.products.FindBySKU(ctx, ref.ProductSKU)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product", ref.ProductSKU)
	}

	if !ref.IsVariation() {
		if p.IsComposite {
			return &resolvedNode{kind: kindComposite, ref: ref, product: p}, nil
		}
		return &resolvedNode{kind: kindSimple, ref: ref, product: p}, nil
	}

	item, err := uc.variations.FindItemByID(ctx, ref.VariationID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.ProductSKU != ref.ProductSKU {
		return nil, apperr.NotFound("variation item", ref.String())
	}
	return &resolvedNode{kind: kindVariation, ref: ref, product: p, item: item}, nil
}

// contentEdges returns the composition edges defining a node's content.
// A combination of a composite product uses its own template when one
// exists, falling back to the base product's template otherwise.
func (uc *compositionUseCase) contentEdges(ctx context.Context, node *resolvedNode, address string) ([]model.CompositionItem, error) {
	switch node.kind {
	case kindComposite:
		return uc.repo.FindByParent(ctx, address)
	case kindVariation:
		if !node.product.IsComposite {
			return nil, nil
		}
		edges, err := uc.repo.FindByParent(ctx, address)
		if err != nil {
			return nil, err
		}
		if len(edges) > 0 {
			return edges, nil
		}
		return uc.repo.FindByParent(ctx, node.ref.ProductSKU)
	default:
		return nil, nil
	}
}

// --- Weight calculation ---

func (uc *compositionUseCase) CalculateWeight(ctx context.Context, parentSKU string) (float64, error) {
	// Memoized per call; nothing is cached across requests, the weight
	// is recomputed on every read.
	memo := make(map[string]float64)
	return uc.nodeWeight(ctx, parentSKU, 0, memo)
}

func (uc *compositionUseCase) nodeWeight(ctx context.Context, address string, depth int, memo map[string]float64) (float64, error) {
	if depth > uc.limits.MaxDepth {
		return 0, composition.DepthExceededError(address, uc.limits.MaxDepth)
	}
	if w, ok := memo[address]; ok {
		return w, nil
	}

	node, err := uc.resolveNode(ctx, address)
	if err != nil {
		if apperr.IsNotFound(err) {
			// Best-effort degradation: a dangling child contributes 0
			// instead of failing the whole aggregate.
			uc.logger.Warn("missing composition child treated as zero weight",
				zap.String("sku", address))
			return 0, nil
		}
		return 0, err
	}

	var weight float64
	switch node.kind {
	case kindSimple:
		weight = node.product.StoredWeight()
	case kindVariation:
		if node.item.WeightOverride != nil {
			weight = *node.item.WeightOverride
		} else if node.product.IsComposite {
			weight, err = uc.sumEdges(ctx, node, address, depth, memo)
			if err != nil {
				return 0, err
			}
		} else {
			weight = variation.EffectiveWeight(node.item, node.product.StoredWeight())
		}
	case kindComposite:
		weight, err = uc.sumEdges(ctx, node, address, depth, memo)
		if err != nil {
			return 0, err
		}
	}

	memo[address] = weight
	return weight, nil
}

func (uc *compositionUseCase) sumEdges(ctx context.Context, node *resolvedNode, address string, depth int, memo map[string]float64) (float64, error) {
	edges, err := uc.contentEdges(ctx, node, address)
	if err != nil {
		return 0, err
	}
	var total float64
	for i := range edges {
		childWeight, err := uc.nodeWeight(ctx, edges[i].ChildSKU, depth+1, memo)
		if err != nil {
			return 0, err
		}
		total += float64(edges[i].Quantity) * childWeight
	}
	return total, nil
}

// --- Cycle detection ---

func (uc *compositionUseCase) WouldCreateCycle(ctx context.Context, parentSKU, childSKU string) (bool, error) {
	// Direct cycle on the base SKU, covering variation-addressed forms.
	if sku.Base(parentSKU) == sku.Base(childSKU) {
		return true, nil
	}

	bases := make(map[string]bool)
	if err := uc.collectSubtreeBases(ctx, childSKU, 0, bases); err != nil {
		return false, err
	}
	return bases[sku.Base(parentSKU)], nil
}

// collectSubtreeBases walks the child's full composition tree and
// records every base SKU it reaches. The depth cap guarantees
// termination even if persisted data already contains a cycle.
func (uc *compositionUseCase) collectSubtreeBases(ctx context.Context, address string, depth int, bases map[string]bool) error {
	if depth > uc.limits.MaxDepth {
		return composition.DepthExceededError(address, uc.limits.MaxDepth)
	}
	bases[sku.Base(address)] = true

	node, err := uc.resolveNode(ctx, address)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	edges, err := uc.contentEdges(ctx, node, address)
	if err != nil {
		return err
	}
	for i := range edges {
		if err := uc.collectSubtreeBases(ctx, edges[i].ChildSKU, depth+1, bases); err != nil {
			return err
		}
	}
	return nil
}

// subtreeDepth reports how many levels the tree rooted at address has
// (a leaf is 1).
func (uc *compositionUseCase) subtreeDepth(ctx context.Context, address string, depth int) (int, error) {
	if depth > uc.limits.MaxDepth {
		return 0, composition.DepthExceededError(address, uc.limits.MaxDepth)
	}

	node, err := uc.resolveNode(ctx, address)
	if err != nil {
		if apperr.IsNotFound(err) {
			return 1, nil
		}
		return 0, err
	}

	edges, err := uc.contentEdges(ctx, node, address)
	if err != nil {
		return 0, err
	}
	deepest := 1
	for i := range edges {
		d, err := uc.subtreeDepth(ctx, edges[i].ChildSKU, depth+1)
		if err != nil {
			return 0, err
		}
		if d+1 > deepest {
			deepest = d + 1
		}
	}
	return deepest, nil
}

// --- Edge CRUD ---

// CreateItem validates in a fixed order and stops at the first
// violation; nothing is persisted when any step rejects.
func (uc *compositionUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.CompositionItem, error) {
	parentRef, err := sku.Parse(input.ParentSKU)
	if err != nil {
		return nil, err
	}
	childRef, err := sku.Parse(input.ChildSKU)
	if err != nil {
		return nil, err
	}

	// 1. No self-composition, on the base SKU so variation-addressed
	// forms of the same product are rejected too.
	if parentRef.ProductSKU == childRef.ProductSKU {
		return nil, apperr.BusinessRulef("product %q cannot be composed of itself", parentRef.ProductSKU).
			With("sku", parentRef.ProductSKU)
	}

	// 2. Positive quantity.
	if input.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be a positive integer").
			With("quantity", input.Quantity)
	}

	// 3. Parent exists and is composite.
	parent, err := uc.products.FindBySKU(ctx, parentRef.ProductSKU)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperr.NotFound("product", parentRef.ProductSKU)
	}
	if !parent.IsComposite {
		return nil, apperr.BusinessRulef("product %q is not composite and cannot have composition items", parent.SKU).
			With("sku", parent.SKU)
	}
	if parentRef.IsVariation() {
		if err := uc.checkVariationRef(ctx, parent, parentRef); err != nil {
			return nil, err
		}
	}

	// 4. Child eligibility.
	child, err := uc.products.FindBySKU(ctx, childRef.ProductSKU)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, apperr.NotFound("product", childRef.ProductSKU)
	}
	if childRef.IsVariation() {
		if !child.HasVariation {
			return nil, apperr.BusinessRulef("product %q has no variations; %q is not a valid address", child.SKU, input.ChildSKU).
				With("sku", child.SKU)
		}
		if err := uc.checkVariationRef(ctx, child, childRef); err != nil {
			return nil, err
		}
	} else if child.HasVariation {
		return nil, apperr.BusinessRulef("product %q has variations and cannot be referenced directly; reference a specific combination (%s#<variationId>)", child.SKU, child.SKU).
			With("sku", child.SKU)
	}

	// 5. No duplicate (parent, child) pair.
	exists, err := uc.repo.PairExists(ctx, input.ParentSKU, input.ChildSKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.BusinessRulef("composition item %q -> %q already exists", input.ParentSKU, input.ChildSKU).
			With("parent_sku", input.ParentSKU).
			With("child_sku", input.ChildSKU)
	}

	// 6. No cycle reachable from the parent.
	cyclic, err := uc.WouldCreateCycle(ctx, input.ParentSKU, input.ChildSKU)
	if err != nil {
		return nil, err
	}
	if cyclic {
		return nil, apperr.BusinessRulef("adding %q under %q would create a circular dependency", input.ChildSKU, input.ParentSKU).
			With("parent_sku", input.ParentSKU).
			With("child_sku", input.ChildSKU)
	}

	// 7. Resulting tree stays inside the depth limit.
	childDepth, err := uc.subtreeDepth(ctx, input.ChildSKU, 0)
	if err != nil {
		return nil, err
	}
	if childDepth+1 > uc.limits.MaxDepth {
		return nil, composition.DepthExceededError(input.ParentSKU, uc.limits.MaxDepth)
	}

	now := time.Now()
	item := &model.CompositionItem{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ParentSKU: input.ParentSKU,
		ChildSKU:  input.ChildSKU,
		Quantity:  input.Quantity,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *compositionUseCase) checkVariationRef(ctx context.Context, p *model.Product, ref sku.Ref) error {
	if !p.HasVariation {
		return apperr.BusinessRulef("product %q has no variations; %q is not a valid address", p.SKU, ref.String()).
			With("sku", p.SKU)
	}
	item, err := uc.variations.FindItemByID(ctx, ref.VariationID)
	if err != nil {
		return err
	}
	if item == nil || item.ProductSKU != p.SKU {
		return apperr.BusinessRulef("variation %q does not belong to product %q", ref.VariationID, p.SKU).
			With("sku", p.SKU).
			With("variation_id", ref.VariationID)
	}
	return nil
}

func (uc *compositionUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.CompositionItem, error) {
	if input.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be a positive integer").
			With("quantity", input.Quantity)
	}
	item, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("composition item", input.ID)
	}

	item.Quantity = input.Quantity
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *compositionUseCase) DeleteItem(ctx context.Context, id string) error {
	item, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperr.NotFound("composition item", id)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *compositionUseCase) ListItems(ctx context.Context, parentSKU string) ([]model.CompositionItem, error) {
	return uc.repo.FindByParent(ctx, parentSKU)
}

// --- Tree construction ---

func (uc *compositionUseCase) BuildTree(ctx context.Context, parentSKU string, maxDepth int) (*dto.TreeNode, error) {
	if maxDepth <= 0 {
		maxDepth = uc.limits.MaxDepth
	}
	return uc.buildNode(ctx, parentSKU, 1, 0, maxDepth)
}

func (uc *compositionUseCase) buildNode(ctx context.Context, address string, quantity, depth, maxDepth int) (*dto.TreeNode, error) {
	if depth > maxDepth {
		return nil, composition.DepthExceededError(address, maxDepth)
	}

	node := &dto.TreeNode{
		SKU:      address,
		Quantity: quantity,
		Depth:    depth,
		Children: []*dto.TreeNode{},
	}

	res, err := uc.resolveNode(ctx, address)
	if err != nil {
		if apperr.IsNotFound(err) {
			// Same degradation policy as weight calculation.
			node.Missing = true
			node.TotalWeight = 0
			return node, nil
		}
		return nil, err
	}

	node.Name = res.product.Name
	node.Weight = res.product.Weight
	node.IsComposite = res.product.IsComposite
	node.HasVariation = res.product.HasVariation
	if res.kind == kindVariation {
		node.IsVariation = true
		node.ParentProductSKU = res.ref.ProductSKU
		if res.item.Name != nil {
			node.Name = res.product.Name + " - " + *res.item.Name
		}
	}

	edges, err := uc.contentEdges(ctx, res, address)
	if err != nil {
		return nil, err
	}

	switch {
	case res.kind == kindVariation && res.item.WeightOverride != nil:
		node.CalculatedWeight = *res.item.WeightOverride
	case len(edges) > 0:
		var sum float64
		for i := range edges {
			child, err := uc.buildNode(ctx, edges[i].ChildSKU, edges[i].Quantity, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			sum += child.TotalWeight
		}
		node.CalculatedWeight = sum
	case res.kind == kindVariation:
		node.CalculatedWeight = variation.EffectiveWeight(res.item, res.product.StoredWeight())
	default:
		node.CalculatedWeight = res.product.StoredWeight()
	}

	node.TotalWeight = node.CalculatedWeight * float64(quantity)
	return node, nil
}

// --- Complexity validation ---

func (uc *compositionUseCase) ValidateComplexity(ctx context.Context, parentSKU string) (*dto.ComplexityReport, error) {
	report := &dto.ComplexityReport{SKU: parentSKU, Warnings: []string{}, IsValid: true}

	// Generous allowance so the report can describe trees past the hard
	// ceiling instead of aborting at it.
	tree, err := uc.BuildTree(ctx, parentSKU, uc.limits.MaxDepth*2)
	if err != nil {
		if composition.IsDepthExceeded(err) {
			report.MaxDepth = uc.limits.MaxDepth * 2
			report.IsValid = false
			report.Warnings = append(report.Warnings, "composition tree exceeds the maximum traversal depth")
			return report, nil
		}
		return nil, err
	}

	report.MaxDepth, report.TotalItems = measureTree(tree)

	if report.MaxDepth > uc.limits.MaxDepth || report.TotalItems > uc.limits.MaxItems {
		report.IsValid = false
	}
	if report.MaxDepth > uc.limits.WarnDepth {
		report.Warnings = append(report.Warnings,
			"composition nests deeper than recommended; consider flattening intermediate assemblies")
	}
	if report.TotalItems > uc.limits.WarnItems {
		report.Warnings = append(report.Warnings,
			"composition contains an unusually large number of items; weight calculations may be slow")
	}
	return report, nil
}

func measureTree(node *dto.TreeNode) (maxDepth, totalItems int) {
	maxDepth = node.Depth
	totalItems = 1
	for _, child := range node.Children {
		d, n := measureTree(child)
		if d > maxDepth {
			maxDepth = d
		}
		totalItems += n
	}
	return maxDepth, totalItems
}
