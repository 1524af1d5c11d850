package model

import (
	"sort"
	"strings"
)

type VariationType struct {
	BaseModel
	Name               string `json:"name"` // unique case-insensitively
	ModifiesWeight     bool   `json:"modifies_weight"`
	ModifiesDimensions bool   `json:"modifies_dimensions"`
}

// Variation is one concrete value of a VariationType (e.g. "Red" under "Color").
type Variation struct {
	BaseModel
	VariationTypeID string `json:"variation_type_id"`
	Name            string `json:"name"` // unique case-insensitively within its type
}

// ProductVariationItem is one concrete combination for a product.
// Selections map variation type id to variation id. Items of a
// composite+variation product typically have empty selections and use
// Name as the only discriminator.
type ProductVariationItem struct {
	BaseModel
	ProductSKU         string            `json:"product_sku"`
	Selections         map[string]string `json:"selections"`
	Name               *string           `json:"name"`
	WeightOverride     *float64          `json:"weight_override"`
	DimensionsOverride *Dimensions       `json:"dimensions_override"`
	SortOrder          *int              `json:"sort_order"`
}

// SelectionHash is the canonical, order-independent encoding of a
// selection map: entries sorted by type id and joined as
// "type:value|type:value|...". Two items are the same combination iff
// their hashes are equal.
func SelectionHash(selections map[string]string) string {
	if len(selections) == 0 {
		return ""
	}
	typeIDs := make([]string, 0, len(selections))
	for typeID := range selections {
		typeIDs = append(typeIDs, typeID)
	}
	sort.Strings(typeIDs)

	pairs := make([]string, 0, len(typeIDs))
	for _, typeID := range typeIDs {
		pairs = append(pairs, typeID+":"+selections[typeID])
	}
	return strings.Join(pairs, "|")
}

func (i *ProductVariationItem) SelectionHash() string {
	return SelectionHash(i.Selections)
}
