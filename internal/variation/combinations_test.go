package variation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

func collect(typeIDs []string, valuesByType map[string][]string) []map[string]string {
	var out []map[string]string
	for sel := range Combinations(typeIDs, valuesByType) {
		out = append(out, sel)
	}
	return out
}

func TestCombinations(t *testing.T) {
	t.Run("3x2 cartesian product", func(t *testing.T) {
		got := collect(
			[]string{"color", "size"},
			map[string][]string{
				"color": {"red", "green", "blue"},
				"size":  {"s", "m"},
			},
		)
		require.Len(t, got, 6)

		// Last type advances fastest.
		assert.Equal(t, map[string]string{"color": "red", "size": "s"}, got[0])
		assert.Equal(t, map[string]string{"color": "red", "size": "m"}, got[1])
		assert.Equal(t, map[string]string{"color": "green", "size": "s"}, got[2])
		assert.Equal(t, map[string]string{"color": "blue", "size": "m"}, got[5])
	})

	t.Run("single type", func(t *testing.T) {
		got := collect([]string{"color"}, map[string][]string{"color": {"red", "blue"}})
		require.Len(t, got, 2)
		assert.Equal(t, map[string]string{"color": "red"}, got[0])
	})

	t.Run("no types yields nothing", func(t *testing.T) {
		assert.Empty(t, collect(nil, nil))
	})

	t.Run("type without values yields nothing", func(t *testing.T) {
		got := collect(
			[]string{"color", "size"},
			map[string][]string{"color": {"red"}},
		)
		assert.Empty(t, got)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		count := 0
		for range Combinations([]string{"n"}, map[string][]string{"n": {"1", "2", "3"}}) {
			count++
			if count == 2 {
				break
			}
		}
		assert.Equal(t, 2, count)
	})
}

func TestSelectionHashOrderIndependence(t *testing.T) {
	a := model.SelectionHash(map[string]string{"size": "m", "color": "red"})
	b := model.SelectionHash(map[string]string{"color": "red", "size": "m"})
	assert.Equal(t, "color:red|size:m", a)
	assert.Equal(t, a, b)
	assert.Empty(t, model.SelectionHash(nil))
}

func TestNextDefaultName(t *testing.T) {
	assert.Equal(t, "Variation 1", NextDefaultName(nil))
	assert.Equal(t, "Variation 2", NextDefaultName([]string{"Variation 1"}))

	// Gaps are filled before extending.
	assert.Equal(t, "Variation 2", NextDefaultName([]string{"Variation 1", "Variation 3"}))
	assert.Equal(t, "Variation 1", NextDefaultName([]string{"Custom Name", "Variation 3"}))
}

func TestEffectiveWeightAndDimensions(t *testing.T) {
	override := 2.5
	dims := &model.Dimensions{Length: 1, Width: 2, Height: 3}

	item := &model.ProductVariationItem{WeightOverride: &override, DimensionsOverride: dims}
	assert.Equal(t, 2.5, EffectiveWeight(item, 1.0))
	assert.Equal(t, dims, EffectiveDimensions(item, nil))

	plain := &model.ProductVariationItem{}
	base := &model.Dimensions{Length: 9, Width: 9, Height: 9}
	assert.Equal(t, 1.0, EffectiveWeight(plain, 1.0))
	assert.Equal(t, base, EffectiveDimensions(plain, base))
	assert.Equal(t, 0.0, EffectiveWeight(nil, 0))
}
