// Package sku translates between plain product SKUs and the synthetic
// addresses that reference one specific variation combination of a
// product as if it were a standalone product.
//
// The canonical address is "productSku#variationItemID". Two legacy
// string forms exist in old persisted data and are handled only by
// DecodeLegacy; new edges are always built with the canonical form.
package sku

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/apperr"
)

const (
	variationDelim  = "#"
	legacyNameDelim = ":"
	displayMarker   = "-VAR-"
)

// Ref is a resolved SKU reference: either a plain product or one
// specific variation combination of a product.
type Ref struct {
	ProductSKU  string
	VariationID string
}

func Plain(productSKU string) Ref {
	return Ref{ProductSKU: productSKU}
}

func Variation(productSKU, variationID string) Ref {
	return Ref{ProductSKU: productSKU, VariationID: variationID}
}

func (r Ref) IsVariation() bool {
	return r.VariationID != ""
}

// String renders the canonical address form.
func (r Ref) String() string {
	if r.VariationID == "" {
		return r.ProductSKU
	}
	return r.ProductSKU + variationDelim + r.VariationID
}

// BuildVariationAddress returns the canonical "productSku#variationID"
// address. This is the only format used for constructing new edges.
func BuildVariationAddress(productSKU, variationID string) string {
	return productSKU + variationDelim + variationID
}

// Parse decodes a canonical address. A string without "#" is a plain
// product SKU. Legacy forms are rejected here; callers reading old
// persisted data use DecodeLegacy instead.
func Parse(address string) (Ref, error) {
	if address == "" {
		return Ref{}, apperr.Validation("empty SKU address")
	}
	if !strings.Contains(address, variationDelim) {
		return Plain(address), nil
	}
	productSKU, variationID, _ := strings.Cut(address, variationDelim)
	if productSKU == "" || variationID == "" {
		return Ref{}, apperr.Validationf("malformed variation address %q", address)
	}
	return Variation(productSKU, variationID), nil
}

// DecodeLegacy decodes any historical address form. Check order is
// "#", then ":", then "-VAR-"; a string containing "#" always wins.
//
// The ":" form carried a variation name rather than an id and would
// need a name lookup against state that no longer exists; no live data
// uses it, so it fails with a descriptive error instead of guessing.
// The "-VAR-" form is a truncated display hash, not reversible to an
// id, and is never valid for addressing.
func DecodeLegacy(address string) (Ref, error) {
	switch {
	case strings.Contains(address, variationDelim):
		return Parse(address)
	case strings.Contains(address, legacyNameDelim):
		return Ref{}, apperr.BusinessRulef(
			"legacy name-based variation address %q is not supported; re-save the edge with the canonical productSku#variationId form", address).
			With("address", address)
	case strings.Contains(address, displayMarker):
		return Ref{}, apperr.BusinessRulef(
			"display SKU %q is opaque and cannot be used for addressing", address).
			With("address", address)
	default:
		return Parse(address)
	}
}

// IsVariationAddress reports whether s is any variation address form,
// canonical or legacy.
func IsVariationAddress(s string) bool {
	return strings.Contains(s, variationDelim) ||
		strings.Contains(s, legacyNameDelim) ||
		strings.Contains(s, displayMarker)
}

// Base returns the base product SKU of any address form.
func Base(s string) string {
	if base, _, found := strings.Cut(s, variationDelim); found {
		return base
	}
	if base, _, found := strings.Cut(s, legacyNameDelim); found {
		return base
	}
	if idx := strings.Index(s, displayMarker); idx >= 0 {
		return s[:idx]
	}
	return s
}

// DisplaySKU builds the human-meaningful display identifier for a
// combination: the product SKU plus the first 8 hex characters of the
// hashed selection hash. Display-only; never parsed back.
func DisplaySKU(productSKU, selectionHash string) string {
	sum := sha256.Sum256([]byte(selectionHash))
	return productSKU + displayMarker + strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}
