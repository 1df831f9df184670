package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CostEstimate is the output of the heuristic estimator: a three-way cost
// split suitable for a line that has no explicit cost entered.
type CostEstimate struct {
	MaterialCost float64
	LaborCost    float64
	OverheadCost float64
}

// Total returns the summed per-unit cost of the estimate.
func (e CostEstimate) Total() float64 {
	return Round2(e.MaterialCost + e.LaborCost + e.OverheadCost)
}

var materialFactors = map[string]float64{
	"wood":    1.0,
	"metal":   1.2,
	"glass":   1.5,
	"fabric":  0.8,
	"plastic": 0.6,
}

var finishFactors = map[string]float64{
	"matte":    1.0,
	"glossy":   1.3,
	"textured": 1.4,
	"natural":  1.1,
}

// Estimate synthesizes a material/labor/overhead cost split from qualitative
// specification attributes. It is a best-effort default, not authoritative:
// callers may always override the result with explicit costs.
//
// Material starts at a base of 100, scaled by a material-type factor. When
// both "length" and "width" parse as numbers, the base is scaled by the item
// area in m² (inputs are cm²) with a 0.5 floor; an "area" attribute instead
// replaces the base with area * 50. Labor starts at 50, scaled up for
// "adjustable" and "wheels" feature flags and by the finish type. Overhead is
// a flat 25% of material + labor. Unparsable or missing attributes are
// ignored, never an error.
func Estimate(specs map[string]any) CostEstimate {
	base := 100.0

	length, lengthOK := parseNumeric(specs["length"])
	width, widthOK := parseNumeric(specs["width"])
	if lengthOK && widthOK {
		area := length * width / 10000 // cm² to m²
		base *= math.Max(area, 0.5)
	}

	if area, ok := parseNumeric(specs["area"]); ok {
		base = area * 50 // cost per square meter
	}

	factor, ok := materialFactors[strings.ToLower(stringValue(specs["material"]))]
	if !ok {
		factor = 1.0
	}
	material := Round2(base * factor)

	labor := 50.0
	features := strings.ToLower(stringValue(specs["features"]))
	if strings.Contains(features, "adjustable") {
		labor *= 1.3
	}
	if strings.Contains(features, "wheels") {
		labor *= 1.2
	}

	finishFactor, ok := finishFactors[strings.ToLower(stringValue(specs["finish"]))]
	if !ok {
		finishFactor = 1.0
	}
	labor = Round2(labor * finishFactor)

	return CostEstimate{
		MaterialCost: material,
		LaborCost:    labor,
		OverheadCost: Round2((material + labor) * 0.25),
	}
}

// parseNumeric accepts the value shapes a JSON specifications bag can carry.
func parseNumeric(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
