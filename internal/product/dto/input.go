package dto

import "github.com/fekuna/omnipos-catalog-service/internal/model"

type CreateProductInput struct {
	SKU          string            `json:"sku" validate:"required,sku"`
	Name         string            `json:"name" validate:"required,max=100"`
	Weight       *float64          `json:"weight" validate:"omitempty,gt=0"`
	Dimensions   *model.Dimensions `json:"dimensions" validate:"omitempty"`
	IsComposite  bool              `json:"is_composite"`
	HasVariation bool              `json:"has_variation"`
}

type UpdateProductInput struct {
	SKU          string            `json:"sku" validate:"required"` // lookup key, immutable
	Name         string            `json:"name" validate:"required,max=100"`
	Weight       *float64          `json:"weight"`
	Dimensions   *model.Dimensions `json:"dimensions"`
	IsComposite  bool              `json:"is_composite"`
	HasVariation bool              `json:"has_variation"`
}
