package model

// Dimensions is a positive length/width/height triple. Overrides are
// all-or-nothing: a variation either carries a full triple or none.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (d Dimensions) IsPositive() bool {
	return d.Length > 0 && d.Width > 0 && d.Height > 0
}

type Product struct {
	BaseModel
	SKU          string      `json:"sku"` // immutable after creation
	Name         string      `json:"name"`
	Weight       *float64    `json:"weight"` // must be nil when IsComposite (derived)
	Dimensions   *Dimensions `json:"dimensions"`
	IsComposite  bool        `json:"is_composite"`
	HasVariation bool        `json:"has_variation"`
}

// StoredWeight returns the stored weight, or 0 when absent. Composite
// products never store a weight; callers derive it from the graph.
func (p *Product) StoredWeight() float64 {
	if p.Weight == nil {
		return 0
	}
	return *p.Weight
}
