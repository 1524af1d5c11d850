package composition

import (
	"errors"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
)

// Limits bounds graph traversals and the complexity policy. MaxDepth
// and MaxItems are hard ceilings; WarnDepth and WarnItems only produce
// advisory warnings.
type Limits struct {
	MaxDepth  int
	WarnDepth int
	WarnItems int
	MaxItems  int
}

func DefaultLimits() Limits {
	return Limits{
		MaxDepth:  10,
		WarnDepth: 5,
		WarnItems: 50,
		MaxItems:  100,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.WarnDepth <= 0 {
		l.WarnDepth = d.WarnDepth
	}
	if l.WarnItems <= 0 {
		l.WarnItems = d.WarnItems
	}
	if l.MaxItems <= 0 {
		l.MaxItems = d.MaxItems
	}
	return l
}

// Normalize fills zero fields with defaults.
func (l Limits) Normalize() Limits { return l.withDefaults() }

const reasonDepthExceeded = "max_depth_exceeded"

// DepthExceededError is the distinct error for a traversal passing the
// hard depth cap. It terminates pathological nesting as well as true
// cycles that slipped into persisted data.
func DepthExceededError(address string, maxDepth int) *apperr.Error {
	return apperr.BusinessRulef("composition tree for %q exceeds maximum depth %d", address, maxDepth).
		With("reason", reasonDepthExceeded).
		With("sku", address).
		With("max_depth", maxDepth)
}

func IsDepthExceeded(err error) bool {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Fields["reason"] == reasonDepthExceeded
	}
	return false
}
