package pricing

// DocumentTotals aggregates line totals across one pre-quotation document.
type DocumentTotals struct {
	EstimatedTotalCost    float64
	EstimatedSellingPrice float64
	TotalProfitAmount     float64
	TotalVATAmount        float64
	OverallProfitMargin   float64
}

// Rollup recomputes document totals as a full fold over the current lines.
// There is no incremental update path: callers always pass every line, so the
// result can never drift from line-level state.
//
// TotalCost on each line is per-unit and is scaled by quantity here;
// TotalSellingAmount, ProfitAmount and VATAmount are already
// quantity-scaled per-line totals and are summed directly.
func Rollup(lines []LineTotals) DocumentTotals {
	var totalCost, totalSelling, totalProfit, totalVAT float64

	for _, line := range lines {
		totalCost += Round2(line.TotalCost) * Round2(line.Quantity)
		totalSelling += Round2(line.TotalSellingAmount)
		totalProfit += Round2(line.ProfitAmount)
		totalVAT += Round2(line.VATAmount)
	}

	totals := DocumentTotals{
		EstimatedTotalCost:    Round2(totalCost),
		EstimatedSellingPrice: Round2(totalSelling),
		TotalProfitAmount:     Round2(totalProfit),
		TotalVATAmount:        Round2(totalVAT),
	}

	if totals.EstimatedTotalCost > 0 {
		totals.OverallProfitMargin = Round2(totals.TotalProfitAmount / totals.EstimatedTotalCost * 100)
	}

	return totals
}
