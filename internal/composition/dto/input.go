package dto

type CreateItemInput struct {
	ParentSKU string `json:"parent_sku" validate:"required"`
	ChildSKU  string `json:"child_sku" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateItemInput struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}
