package quotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func pinnedClock() func() time.Time {
	at := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	return func() time.Time { return at }
}

func TestCodeGenerator_FullFields(t *testing.T) {
	gen := NewCodeGeneratorAt(pinnedClock())

	code := gen.Generate("Dining Table", "Furniture", "Tables", map[string]string{
		"material": "Wood",
		"length":   "120",
		"width":    "60",
	})

	suffix := code[len(code)-4:]
	assert.Equal(t, "FUR-TAB-WOO-120x60-"+suffix, code)
	assert.Len(t, suffix, 4)
}

func TestCodeGenerator_DeterministicWithPinnedClock(t *testing.T) {
	gen := NewCodeGeneratorAt(pinnedClock())

	first := gen.Generate("Shelf", "Storage", "Shelving", nil)
	second := gen.Generate("Shelf", "Storage", "Shelving", nil)

	assert.Equal(t, first, second)
}

func TestCodeGenerator_CustomFallbackWithoutTaxonomy(t *testing.T) {
	gen := NewCodeGeneratorAt(pinnedClock())

	code := gen.Generate("Bespoke Bar Stool", "", "", nil)

	assert.Contains(t, code, "CUSTOM-BESPOKE-BAR-STOOL-")
}

func TestCodeGenerator_PartialDimensionsOmitted(t *testing.T) {
	gen := NewCodeGeneratorAt(pinnedClock())

	code := gen.Generate("Bench", "Furniture", "Seating", map[string]string{
		"material": "metal",
		"length":   "150", // width missing
	})

	assert.NotContains(t, code, "150x")
	assert.Contains(t, code, "FUR-SEA-MET-")
}

func TestCodeGenerator_ShortFieldsKeptWhole(t *testing.T) {
	gen := NewCodeGeneratorAt(pinnedClock())

	code := gen.Generate("TV Unit", "AV", "TV", nil)

	assert.Contains(t, code, "AV-TV-")
}
