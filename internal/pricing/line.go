package pricing

import (
	"fmt"
	"math"
)

// LineInput carries the raw inputs for costing a single document line.
//
// Two cost representations are supported: an explicit CostPerUnit, or a
// material/labor/overhead split. When CostPerUnit is positive it wins and
// the split is ignored; otherwise the split is summed. A zero value means
// "not supplied" for SellingPricePerUnit and ProfitMarginPercent, mirroring
// how the workflow forms leave untouched fields at zero.
type LineInput struct {
	Quantity            float64
	CostPerUnit         float64
	MaterialCost        float64
	LaborCost           float64
	OverheadCost        float64
	SellingPricePerUnit float64
	ProfitMarginPercent float64
	VATRatePercent      float64
}

// LineTotals is the fully derived state of one line. TotalCost is the
// effective cost per unit; TotalSellingAmount is quantity-scaled and
// VAT-inclusive. ProfitAmount is computed on the pre-VAT selling amount.
type LineTotals struct {
	Quantity            float64
	TotalCost           float64
	SellingPricePerUnit float64
	ProfitMarginPercent float64
	TotalSellingAmount  float64
	ProfitAmount        float64
	VATAmount           float64

	// ConsistencyWarning is set when both a selling price and a profit
	// margin were supplied and they disagree. Neither value is adjusted;
	// the document carries what the user entered.
	ConsistencyWarning string
}

// Round2 rounds a monetary value to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UnitCost returns the effective cost per unit for a line input: the
// explicit cost when one was entered, otherwise the sum of the
// material/labor/overhead split.
func UnitCost(in LineInput) float64 {
	if in.CostPerUnit > 0 {
		return Round2(in.CostPerUnit)
	}
	return Round2(in.MaterialCost) + Round2(in.LaborCost) + Round2(in.OverheadCost)
}

// CalculateLine derives all output figures for one line.
//
// Price/margin reconciliation, in priority order:
//  1. margin supplied, price not: price = cost * (1 + margin/100)
//  2. price supplied, margin not, cost > 0: margin = (price-cost)/cost * 100
//  3. both supplied: both kept as-is (a warning is attached if they disagree)
//  4. cost == 0: margin stays 0, never a division error
//
// Arithmetic edge cases never fail; the function is total over non-negative
// inputs.
func CalculateLine(in LineInput) LineTotals {
	totalCost := UnitCost(in)
	price := Round2(in.SellingPricePerUnit)
	margin := Round2(in.ProfitMarginPercent)
	warning := ""

	switch {
	case margin != 0 && price == 0:
		price = Round2(totalCost * (1 + margin/100))
	case price != 0 && margin == 0 && totalCost > 0:
		margin = Round2((price - totalCost) / totalCost * 100)
	case price != 0 && margin != 0 && totalCost > 0:
		implied := Round2((price - totalCost) / totalCost * 100)
		if math.Abs(implied-margin) > 0.01 {
			warning = fmt.Sprintf(
				"selling price %.2f implies a margin of %.2f%%, but %.2f%% was entered",
				price, implied, margin)
		}
	}

	quantity := Round2(in.Quantity)
	sellingBeforeVAT := Round2(quantity * price)
	vat := Round2(sellingBeforeVAT * Round2(in.VATRatePercent) / 100)

	return LineTotals{
		Quantity:            quantity,
		TotalCost:           totalCost,
		SellingPricePerUnit: price,
		ProfitMarginPercent: margin,
		TotalSellingAmount:  Round2(sellingBeforeVAT + vat),
		ProfitAmount:        Round2(quantity * (price - totalCost)),
		VATAmount:           vat,
		ConsistencyWarning:  warning,
	}
}
