package dto

import "github.com/fekuna/omnipos-catalog-service/internal/model"

type CreateTypeInput struct {
	Name               string `json:"name" validate:"required,max=50"`
	ModifiesWeight     bool   `json:"modifies_weight"`
	ModifiesDimensions bool   `json:"modifies_dimensions"`
}

type UpdateTypeInput struct {
	ID                 string `json:"id" validate:"required"`
	Name               string `json:"name" validate:"required,max=50"`
	ModifiesWeight     bool   `json:"modifies_weight"`
	ModifiesDimensions bool   `json:"modifies_dimensions"`
}

type CreateVariationInput struct {
	VariationTypeID string `json:"variation_type_id" validate:"required"`
	Name            string `json:"name" validate:"required,max=50"`
}

type UpdateVariationInput struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required,max=50"`
}

type CreateItemInput struct {
	ProductSKU         string            `json:"product_sku" validate:"required"`
	Selections         map[string]string `json:"selections" validate:"omitempty"`
	Name               *string           `json:"name" validate:"omitempty,max=100"`
	WeightOverride     *float64          `json:"weight_override" validate:"omitempty,gt=0"`
	DimensionsOverride *model.Dimensions `json:"dimensions_override" validate:"omitempty"`
	SortOrder          *int              `json:"sort_order"`
}

// UpdateItemInput replaces Selections, WeightOverride, and
// DimensionsOverride wholesale: sending null clears them, so an
// override can be removed. Name and SortOrder change only when
// provided, since nil is their only "keep current" signal.
type UpdateItemInput struct {
	ID                 string            `json:"id" validate:"required"`
	Selections         map[string]string `json:"selections" validate:"omitempty"`
	Name               *string           `json:"name" validate:"omitempty,max=100"`
	WeightOverride     *float64          `json:"weight_override" validate:"omitempty,gt=0"`
	DimensionsOverride *model.Dimensions `json:"dimensions_override" validate:"omitempty"`
	SortOrder          *int              `json:"sort_order"`
}

type GenerateItemsInput struct {
	ProductSKU string   `json:"product_sku" validate:"required"`
	TypeIDs    []string `json:"type_ids" validate:"required,min=1"`
}
