package model

// CompositionItem is one parent->child edge with a quantity multiplier
// in the bill-of-materials graph. ParentSKU and ChildSKU may be a plain
// product SKU or a variation address (productSku#variationItemID). The
// edge set over these nodes must remain acyclic.
type CompositionItem struct {
	BaseModel
	ParentSKU string `json:"parent_sku"`
	ChildSKU  string `json:"child_sku"`
	Quantity  int    `json:"quantity"` // positive
}
