package pricing

// ItemQuote is the response of a visual-selector pricing query: base and
// modifier-adjusted unit figures plus quantity-scaled totals.
type ItemQuote struct {
	BaseCost        float64 `json:"base_cost"`
	BasePrice       float64 `json:"base_price"`
	ModifierPercent float64 `json:"modifier_percent"`
	FinalCost       float64 `json:"final_cost"`
	FinalPrice      float64 `json:"final_price"`
	TotalCost       float64 `json:"total_cost"`
	TotalPrice      float64 `json:"total_price"`
	Profit          float64 `json:"profit"`
	ProfitMargin    float64 `json:"profit_margin"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
}

// ComputeItemPrice prices a configured catalog item: the aggregate
// specification modifier scales both the unit cost and the unit price, and
// totals follow from the quantity. Margin is relative to total cost and
// degrades to 0 when the cost is zero.
func ComputeItemPrice(baseCost, basePrice float64, specs []Spec, selections map[string]string, quantity float64, unit string) ItemQuote {
	modifier := ResolveModifier(specs, selections)

	finalCost := Round2(baseCost * (1 + modifier/100))
	finalPrice := Round2(basePrice * (1 + modifier/100))
	totalCost := Round2(finalCost * quantity)
	totalPrice := Round2(finalPrice * quantity)
	profit := Round2(totalPrice - totalCost)

	margin := 0.0
	if totalCost > 0 {
		margin = Round2(profit / totalCost * 100)
	}

	return ItemQuote{
		BaseCost:        baseCost,
		BasePrice:       basePrice,
		ModifierPercent: modifier,
		FinalCost:       finalCost,
		FinalPrice:      finalPrice,
		TotalCost:       totalCost,
		TotalPrice:      totalPrice,
		Profit:          profit,
		ProfitMargin:    margin,
		Quantity:        quantity,
		Unit:            unit,
	}
}
