package variation

import (
	"fmt"
	"iter"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Combinations yields the cartesian product of the selected variation
// types' value lists, one selection map per combination. The sequence
// is lazy and restartable, so large type×value counts never
// materialize at once. Empty input, or any type with no values, yields
// an empty sequence; a single type yields one combination per value.
//
// Iteration order is stable: the last type advances fastest.
func Combinations(typeIDs []string, valuesByType map[string][]string) iter.Seq[map[string]string] {
	return func(yield func(map[string]string) bool) {
		if len(typeIDs) == 0 {
			return
		}
		for _, typeID := range typeIDs {
			if len(valuesByType[typeID]) == 0 {
				return
			}
		}

		indexes := make([]int, len(typeIDs))
		for {
			selections := make(map[string]string, len(typeIDs))
			for i, typeID := range typeIDs {
				selections[typeID] = valuesByType[typeID][indexes[i]]
			}
			if !yield(selections) {
				return
			}

			// Advance the odometer, last type fastest.
			pos := len(typeIDs) - 1
			for ; pos >= 0; pos-- {
				indexes[pos]++
				if indexes[pos] < len(valuesByType[typeIDs[pos]]) {
					break
				}
				indexes[pos] = 0
			}
			if pos < 0 {
				return
			}
		}
	}
}

// EffectiveWeight resolves the weight actually used for a variation
// item: its override when present, otherwise the base value.
func EffectiveWeight(item *model.ProductVariationItem, baseWeight float64) float64 {
	if item != nil && item.WeightOverride != nil {
		return *item.WeightOverride
	}
	return baseWeight
}

// EffectiveDimensions resolves dimensions the same way. The override is
// all-or-nothing: when present, all three values come from it.
func EffectiveDimensions(item *model.ProductVariationItem, base *model.Dimensions) *model.Dimensions {
	if item != nil && item.DimensionsOverride != nil {
		return item.DimensionsOverride
	}
	return base
}

// DefaultNamePrefix is the stem of auto-generated item names.
const DefaultNamePrefix = "Variation "

// NextDefaultName returns the smallest unused "Variation N" among the
// given names: gaps are filled before extending past the maximum.
func NextDefaultName(existing []string) string {
	used := make(map[string]bool, len(existing))
	for _, name := range existing {
		used[name] = true
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s%d", DefaultNamePrefix, n)
		if !used[candidate] {
			return candidate
		}
	}
}
