package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate_MetalItemWithDimensions(t *testing.T) {
	estimate := Estimate(map[string]any{
		"material": "metal",
		"length":   100.0,
		"width":    50.0,
	})

	// 100*50 cm² is 0.5 m², exactly the floor; 100 * 0.5 * 1.2 = 60.
	assert.Equal(t, 60.0, estimate.MaterialCost)
	assert.Equal(t, 50.0, estimate.LaborCost)
	assert.Equal(t, 27.5, estimate.OverheadCost)
	assert.Equal(t, 137.5, estimate.Total())
}

func TestEstimate_AreaFloorAppliesToTinyItems(t *testing.T) {
	estimate := Estimate(map[string]any{
		"material": "wood",
		"length":   10.0,
		"width":    10.0,
	})

	// 0.01 m² clamps to the 0.5 floor.
	assert.Equal(t, 50.0, estimate.MaterialCost)
}

func TestEstimate_AreaAttributeOverridesDimensions(t *testing.T) {
	estimate := Estimate(map[string]any{
		"material": "glass",
		"length":   200.0,
		"width":    100.0,
		"area":     3.0,
	})

	// area * 50 replaces the dimension-derived base; factor still applies.
	assert.Equal(t, 225.0, estimate.MaterialCost)
}

func TestEstimate_FeatureAndFinishFactorsScaleLabor(t *testing.T) {
	estimate := Estimate(map[string]any{
		"features": "adjustable height, wheels",
		"finish":   "glossy",
	})

	// 50 * 1.3 * 1.2 * 1.3 = 101.4
	assert.Equal(t, 101.4, estimate.LaborCost)
}

func TestEstimate_UnknownMaterialDefaultsToUnitFactor(t *testing.T) {
	known := Estimate(map[string]any{"material": "wood"})
	unknown := Estimate(map[string]any{"material": "carbon fiber"})

	assert.Equal(t, known.MaterialCost, unknown.MaterialCost)
}

func TestEstimate_ToleratesMixedValueTypes(t *testing.T) {
	estimate := Estimate(map[string]any{
		"material": "fabric",
		"length":   "120", // string from a form
		"width":    json.Number("80"),
	})

	// 120*80 = 9600 cm² = 0.96 m²; 100 * 0.96 * 0.8 = 76.8
	assert.Equal(t, 76.8, estimate.MaterialCost)
}

func TestEstimate_EmptySpecsProducesBaseline(t *testing.T) {
	estimate := Estimate(nil)

	assert.Equal(t, 100.0, estimate.MaterialCost)
	assert.Equal(t, 50.0, estimate.LaborCost)
	assert.Equal(t, 37.5, estimate.OverheadCost)
}

func TestEstimate_GarbageDimensionsIgnored(t *testing.T) {
	estimate := Estimate(map[string]any{
		"material": "plastic",
		"length":   "tall",
		"width":    []string{"not", "a", "number"},
	})

	assert.Equal(t, 60.0, estimate.MaterialCost, "base 100 * 0.6, dimensions skipped")
}
