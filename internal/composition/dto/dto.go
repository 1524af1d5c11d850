package dto

// TreeNode is one node of a composition tree. CalculatedWeight of an
// internal node is the sum of its children's TotalWeight; TotalWeight
// is CalculatedWeight times the edge quantity leading to the node.
type TreeNode struct {
	SKU              string      `json:"sku"`
	Name             string      `json:"name"`
	Weight           *float64    `json:"weight"` // stored weight, nil when derived
	CalculatedWeight float64     `json:"calculated_weight"`
	TotalWeight      float64     `json:"total_weight"`
	Quantity         int         `json:"quantity"`
	IsComposite      bool        `json:"is_composite"`
	HasVariation     bool        `json:"has_variation"`
	IsVariation      bool        `json:"is_variation,omitempty"`
	ParentProductSKU string      `json:"parent_product_sku,omitempty"`
	Missing          bool        `json:"missing,omitempty"`
	Depth            int         `json:"depth"`
	Children         []*TreeNode `json:"children"`
}

// ComplexityReport is the two-tier complexity verdict: warnings are
// advisory, IsValid flips only at the hard ceilings.
type ComplexityReport struct {
	SKU        string   `json:"sku"`
	MaxDepth   int      `json:"max_depth"`
	TotalItems int      `json:"total_items"`
	Warnings   []string `json:"warnings"`
	IsValid    bool     `json:"is_valid"`
}
