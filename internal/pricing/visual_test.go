package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeItemPrice_DeskWithUpgrades(t *testing.T) {
	specs := []Spec{
		{Name: "Material", Options: []string{"Wood", "Metal"}, Modifiers: []float64{0, 40}},
		{Name: "Size", Options: []string{"Standard", "Large"}, Modifiers: []float64{0, 20}},
	}
	selections := map[string]string{
		"Material": "Metal",
		"Size":     "Large",
	}

	quote := ComputeItemPrice(300, 375, specs, selections, 2, "pcs")

	assert.Equal(t, 60.0, quote.ModifierPercent)
	assert.Equal(t, 480.0, quote.FinalCost)
	assert.Equal(t, 600.0, quote.FinalPrice)
	assert.Equal(t, 960.0, quote.TotalCost)
	assert.Equal(t, 1200.0, quote.TotalPrice)
	assert.Equal(t, 240.0, quote.Profit)
	assert.Equal(t, 25.0, quote.ProfitMargin)
	assert.Equal(t, "pcs", quote.Unit)
}

func TestComputeItemPrice_NoSelectionsKeepsBaseFigures(t *testing.T) {
	quote := ComputeItemPrice(100, 150, nil, nil, 1, "pcs")

	assert.Equal(t, 0.0, quote.ModifierPercent)
	assert.Equal(t, 100.0, quote.FinalCost)
	assert.Equal(t, 150.0, quote.FinalPrice)
	assert.Equal(t, 50.0, quote.ProfitMargin)
}

func TestComputeItemPrice_ZeroCostYieldsZeroMargin(t *testing.T) {
	quote := ComputeItemPrice(0, 90, nil, nil, 2, "pcs")

	assert.Equal(t, 0.0, quote.TotalCost)
	assert.Equal(t, 180.0, quote.TotalPrice)
	assert.Equal(t, 180.0, quote.Profit)
	assert.Equal(t, 0.0, quote.ProfitMargin)
}

func TestComputeItemPrice_NegativeModifierDiscounts(t *testing.T) {
	specs := []Spec{
		{Name: "Size", Options: []string{"Compact"}, Modifiers: []float64{-25}},
	}

	quote := ComputeItemPrice(200, 280, specs, map[string]string{"Size": "Compact"}, 1, "pcs")

	assert.Equal(t, 150.0, quote.FinalCost)
	assert.Equal(t, 210.0, quote.FinalPrice)
}
