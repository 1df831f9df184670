package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func selectorSpecs() []Spec {
	return []Spec{
		{
			Name:      "Material",
			Options:   []string{"Wood", "Metal", "Glass"},
			Modifiers: []float64{0, 20, 50},
		},
		{
			Name:      "Size",
			Options:   []string{"Small", "Medium", "Large"},
			Modifiers: []float64{-10, 0, 40},
		},
		{
			Name:      "Finish",
			Options:   []string{"Matte", "Glossy"},
			Modifiers: []float64{0, 15},
		},
	}
}

func TestResolveModifier_StacksAdditively(t *testing.T) {
	selections := map[string]string{
		"Material": "Metal",
		"Size":     "Large",
		"Finish":   "Glossy",
	}

	modifier := ResolveModifier(selectorSpecs(), selections)

	assert.Equal(t, 75.0, modifier, "20 + 40 + 15 should stack")
}

func TestResolveModifier_OrderIndependent(t *testing.T) {
	specs := selectorSpecs()
	reversed := []Spec{specs[2], specs[1], specs[0]}
	selections := map[string]string{
		"Material": "Glass",
		"Size":     "Small",
	}

	assert.Equal(t, ResolveModifier(specs, selections), ResolveModifier(reversed, selections))
}

func TestResolveModifier_UnknownSelectionContributesZero(t *testing.T) {
	selections := map[string]string{
		"Material": "Marble", // not an option
		"Size":     "Medium",
	}

	assert.Equal(t, 0.0, ResolveModifier(selectorSpecs(), selections))
}

func TestResolveModifier_UnselectedSpecIgnored(t *testing.T) {
	selections := map[string]string{"Material": "Metal"}

	assert.Equal(t, 20.0, ResolveModifier(selectorSpecs(), selections))
}

func TestResolveModifier_CaseSensitiveMatching(t *testing.T) {
	selections := map[string]string{"Material": "metal"}

	assert.Equal(t, 0.0, ResolveModifier(selectorSpecs(), selections),
		"lowercase label must not match the 'Metal' option")
}

func TestResolveModifier_ShortModifierList(t *testing.T) {
	specs := []Spec{
		{
			Name:      "Color",
			Options:   []string{"White", "Black", "Oak"},
			Modifiers: []float64{0, 5}, // no entry for Oak
		},
	}

	assert.Equal(t, 0.0, ResolveModifier(specs, map[string]string{"Color": "Oak"}))
	assert.Equal(t, 5.0, ResolveModifier(specs, map[string]string{"Color": "Black"}))
}

func TestResolveModifier_FirstDuplicateOptionWins(t *testing.T) {
	specs := []Spec{
		{
			Name:      "Leg Style",
			Options:   []string{"Tapered", "Tapered"},
			Modifiers: []float64{10, 99},
		},
	}

	assert.Equal(t, 10.0, ResolveModifier(specs, map[string]string{"Leg Style": "Tapered"}))
}

func TestResolveModifier_NegativeModifiers(t *testing.T) {
	selections := map[string]string{
		"Material": "Wood",
		"Size":     "Small",
	}

	assert.Equal(t, -10.0, ResolveModifier(selectorSpecs(), selections))
}
