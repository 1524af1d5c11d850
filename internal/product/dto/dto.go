package dto

type ProductFilters struct {
	IsComposite  *bool
	HasVariation *bool
	SearchQuery  string // matched against name and SKU, case-insensitive
	Page         int
	PageSize     int
}

// FinishReport exposes the counts the workflow boundary gates on: a
// variable product needs at least one variation item before creation
// can finish, a composite product at least one composition item.
type FinishReport struct {
	SKU                     string `json:"sku"`
	VariationItemCount      int    `json:"variation_item_count"`
	CompositionItemCount    int    `json:"composition_item_count"`
	MissingVariationItems   bool   `json:"missing_variation_items"`
	MissingCompositionItems bool   `json:"missing_composition_items"`
}

// DeleteBlockers reports why a product cannot be deleted without
// cascading: the composition edges that reference it as a child.
type DeleteBlockers struct {
	SKU           string   `json:"sku"`
	UsedAsChildBy []string `json:"used_as_child_by"`
}
