package domain

import (
	"fmt"
	"time"

	"prequote-service/internal/pricing"
)

// Status is the workflow state of a pre-quotation document. Only Draft
// documents are mutable.
type Status string

const (
	StatusDraft       Status = "Draft"
	StatusSubmitted   Status = "Submitted to Manufacturing"
	StatusCostingDone Status = "Costing Done"
	StatusApproved    Status = "Approved Internally"
	StatusConverted   Status = "Converted to Quotation"
	StatusRejected    Status = "Rejected"
)

var allowedTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusCostingDone, StatusRejected},
	StatusCostingDone: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusConverted, StatusRejected},
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PreQuotationLine is one priced row of a pre-quotation. Either CostPerUnit
// is entered directly, or the material/labor/overhead split is used; an
// explicit CostPerUnit wins. Derived fields are overwritten on every
// recalculation and must not be set by callers.
type PreQuotationLine struct {
	ID                 int64             `json:"id"`
	ItemName           string            `json:"item_name"`
	ItemCode           string            `json:"item_code,omitempty"`
	Category           string            `json:"category,omitempty"`
	Subcategory        string            `json:"subcategory,omitempty"`
	Description        string            `json:"description,omitempty"`
	Quantity           float64           `json:"quantity"`
	UOM                string            `json:"uom"`
	CostPerUnit        float64           `json:"cost_per_unit"`
	MaterialCost       float64           `json:"material_cost"`
	LaborCost          float64           `json:"labor_cost"`
	OverheadCost       float64           `json:"overhead_cost"`
	SellingPricePerUnit float64          `json:"selling_price_per_unit"`
	ProfitMarginPercent float64          `json:"profit_margin_percent"`
	VATRate            float64           `json:"vat_rate"`
	Specifications     map[string]string `json:"specifications,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	ManufacturingNotes string            `json:"manufacturing_notes,omitempty"`

	// Derived.
	TotalCost          float64 `json:"total_cost"` // per unit
	TotalSellingAmount float64 `json:"total_selling_amount"`
	ProfitAmount       float64 `json:"profit_amount"`
	TotalVATAmount     float64 `json:"total_vat_amount"`
	ConsistencyWarning string  `json:"consistency_warning,omitempty"`
}

func (l *PreQuotationLine) pricingInput() pricing.LineInput {
	return pricing.LineInput{
		Quantity:            l.Quantity,
		CostPerUnit:         l.CostPerUnit,
		MaterialCost:        l.MaterialCost,
		LaborCost:           l.LaborCost,
		OverheadCost:        l.OverheadCost,
		SellingPricePerUnit: l.SellingPricePerUnit,
		ProfitMarginPercent: l.ProfitMarginPercent,
		VATRatePercent:      l.VATRate,
	}
}

// UnitCost returns the effective cost per unit of the line.
func (l *PreQuotationLine) UnitCost() float64 {
	return pricing.UnitCost(l.pricingInput())
}

// CalculateTotals recomputes all derived fields of the line. Derived selling
// price and margin are written back so later edits see resolved values, the
// same way the entry form behaves.
func (l *PreQuotationLine) CalculateTotals() pricing.LineTotals {
	totals := pricing.CalculateLine(l.pricingInput())
	l.TotalCost = totals.TotalCost
	l.SellingPricePerUnit = totals.SellingPricePerUnit
	l.ProfitMarginPercent = totals.ProfitMarginPercent
	l.TotalSellingAmount = totals.TotalSellingAmount
	l.ProfitAmount = totals.ProfitAmount
	l.TotalVATAmount = totals.VATAmount
	l.ConsistencyWarning = totals.ConsistencyWarning
	return totals
}

// CostBreakdown returns the per-line figures used by reports.
func (l *PreQuotationLine) CostBreakdown() map[string]float64 {
	return map[string]float64{
		"cost_per_unit":          pricing.Round2(l.CostPerUnit),
		"material_cost":          pricing.Round2(l.MaterialCost),
		"labor_cost":             pricing.Round2(l.LaborCost),
		"overhead_cost":          pricing.Round2(l.OverheadCost),
		"total_cost":             pricing.Round2(l.TotalCost),
		"selling_price_per_unit": pricing.Round2(l.SellingPricePerUnit),
		"profit_margin_percent":  pricing.Round2(l.ProfitMarginPercent),
		"profit_amount_per_unit": pricing.Round2(l.SellingPricePerUnit - l.TotalCost),
		"total_selling_amount":   pricing.Round2(l.TotalSellingAmount),
		"total_profit_amount":    pricing.Round2(l.ProfitAmount),
		"total_vat_amount":       pricing.Round2(l.TotalVATAmount),
	}
}

// PreQuotation is the mutable draft document of the approval workflow. It
// exclusively owns its lines; discarding the document discards them.
type PreQuotation struct {
	ID            int64              `json:"id"`
	Customer      string             `json:"customer,omitempty"`
	Lead          string             `json:"lead,omitempty"`
	ContactPerson string             `json:"contact_person,omitempty"`
	Date          time.Time          `json:"date"`
	ValidUntil    *time.Time         `json:"valid_until,omitempty"`
	Status        Status             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	Lines         []PreQuotationLine `json:"lines"`

	// Derived.
	EstimatedTotalCost    float64 `json:"estimated_total_cost"`
	EstimatedSellingPrice float64 `json:"estimated_selling_price"`
	TotalProfitAmount     float64 `json:"total_profit_amount"`
	TotalVATAmount        float64 `json:"total_vat_amount"`
	OverallProfitMargin   float64 `json:"overall_profit_margin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Editable reports whether the document may still be mutated.
func (d *PreQuotation) Editable() bool {
	return d.Status == "" || d.Status == StatusDraft
}

// CostingEditable reports whether cost figures may still be entered. Sales
// edits the full document in Draft; manufacturing enters its costing while
// the document sits with them, before Costing Done.
func (d *PreQuotation) CostingEditable() bool {
	return d.Editable() || d.Status == StatusSubmitted
}

// CalculateTotals recalculates every line, then folds line totals into
// document totals. It runs on every mutation and immediately before the
// document is persisted; totals are never patched incrementally.
func (d *PreQuotation) CalculateTotals() {
	lineTotals := make([]pricing.LineTotals, 0, len(d.Lines))
	for i := range d.Lines {
		lineTotals = append(lineTotals, d.Lines[i].CalculateTotals())
	}

	totals := pricing.Rollup(lineTotals)
	d.EstimatedTotalCost = totals.EstimatedTotalCost
	d.EstimatedSellingPrice = totals.EstimatedSellingPrice
	d.TotalProfitAmount = totals.TotalProfitAmount
	d.TotalVATAmount = totals.TotalVATAmount
	d.OverallProfitMargin = totals.OverallProfitMargin
}

// Validate enforces the invariants required before the document may leave
// draft state or be persisted.
func (d *PreQuotation) Validate() error {
	if d.Customer == "" && d.Lead == "" {
		return &ValidationError{Field: "customer", Message: "either a customer or a lead is required"}
	}
	if len(d.Lines) == 0 {
		return &ValidationError{Field: "lines", Message: "please add at least one item"}
	}
	for i := range d.Lines {
		line := &d.Lines[i]
		if line.ItemName == "" {
			return &ValidationError{Field: "item_name", Line: i + 1, Message: "item name is required for all items"}
		}
		if line.Quantity <= 0 {
			return &ValidationError{Field: "quantity", Line: i + 1, Message: "quantity must be greater than 0 for all items"}
		}
	}
	return nil
}

// ValidateCosting gates the move into Costing Done: every line needs a
// positive effective unit cost and the document total must be positive.
func (d *PreQuotation) ValidateCosting() error {
	for i := range d.Lines {
		if d.Lines[i].UnitCost() <= 0 {
			return &ValidationError{Field: "cost_per_unit", Line: i + 1,
				Message: fmt.Sprintf("please provide estimated unit cost for item: %s", d.Lines[i].ItemName)}
		}
	}
	if d.EstimatedTotalCost <= 0 {
		return &ValidationError{Field: "estimated_total_cost", Message: "total estimated cost must be greater than zero"}
	}
	return nil
}

// Transition moves the document to the next workflow state, running the
// validation gates that guard each transition. Invalid moves leave the
// document untouched.
func (d *PreQuotation) Transition(next Status) error {
	current := d.Status
	if current == "" {
		current = StatusDraft
	}
	if !current.CanTransitionTo(next) {
		return &PreconditionError{Message: fmt.Sprintf("cannot move from %q to %q", current, next)}
	}

	switch next {
	case StatusSubmitted:
		if err := d.Validate(); err != nil {
			return err
		}
	case StatusCostingDone:
		d.CalculateTotals()
		if err := d.ValidateCosting(); err != nil {
			return err
		}
	}

	d.Status = next
	return nil
}

// ApplyBulkCosting sets uniform material/labor/overhead rates across every
// line; nil parameters leave the corresponding component untouched. Totals
// are fully recomputed afterwards.
func (d *PreQuotation) ApplyBulkCosting(materialRate, laborRate, overheadRate *float64) {
	for i := range d.Lines {
		line := &d.Lines[i]
		if materialRate != nil {
			line.MaterialCost = pricing.Round2(*materialRate)
		}
		if laborRate != nil {
			line.LaborCost = pricing.Round2(*laborRate)
		}
		if overheadRate != nil {
			line.OverheadCost = pricing.Round2(*overheadRate)
		}
	}
	d.CalculateTotals()
}

// ApplyBulkProfitMargin sets a uniform margin on every line and re-derives
// each selling price from the line's current cost.
func (d *PreQuotation) ApplyBulkProfitMargin(marginPercent float64) {
	for i := range d.Lines {
		line := &d.Lines[i]
		line.ProfitMarginPercent = pricing.Round2(marginPercent)
		if cost := line.UnitCost(); cost > 0 {
			line.SellingPricePerUnit = pricing.Round2(cost * (1 + marginPercent/100))
		}
	}
	d.CalculateTotals()
}

// AutoEstimateCosting fills the cost split of every line that has no
// explicit cost entered, using the heuristic estimator over the line's
// specification attributes. Lines with an explicit cost are left alone.
func (d *PreQuotation) AutoEstimateCosting() {
	for i := range d.Lines {
		line := &d.Lines[i]
		if line.CostPerUnit > 0 {
			continue
		}
		specs := make(map[string]any, len(line.Specifications))
		for k, v := range line.Specifications {
			specs[k] = v
		}
		estimate := pricing.Estimate(specs)
		line.MaterialCost = estimate.MaterialCost
		line.LaborCost = estimate.LaborCost
		line.OverheadCost = estimate.OverheadCost
	}
	d.CalculateTotals()
}

// LineSummary is the per-line section of a pricing summary.
type LineSummary struct {
	ItemName      string             `json:"item_name"`
	Quantity      float64            `json:"quantity"`
	CostBreakdown map[string]float64 `json:"cost_breakdown"`
}

// PricingSummary is the reporting view of a document's pricing state.
type PricingSummary struct {
	TotalItems            int           `json:"total_items"`
	TotalQuantity         float64       `json:"total_quantity"`
	EstimatedTotalCost    float64       `json:"estimated_total_cost"`
	EstimatedSellingPrice float64       `json:"estimated_selling_price"`
	TotalProfitAmount     float64       `json:"total_profit_amount"`
	OverallProfitMargin   float64       `json:"overall_profit_margin"`
	Lines                 []LineSummary `json:"lines"`
}

// Summary assembles the pricing summary from current line state.
func (d *PreQuotation) Summary() PricingSummary {
	summary := PricingSummary{
		TotalItems:            len(d.Lines),
		EstimatedTotalCost:    d.EstimatedTotalCost,
		EstimatedSellingPrice: d.EstimatedSellingPrice,
		TotalProfitAmount:     d.TotalProfitAmount,
		OverallProfitMargin:   d.OverallProfitMargin,
	}
	for i := range d.Lines {
		line := &d.Lines[i]
		summary.TotalQuantity += pricing.Round2(line.Quantity)
		summary.Lines = append(summary.Lines, LineSummary{
			ItemName:      line.ItemName,
			Quantity:      pricing.Round2(line.Quantity),
			CostBreakdown: line.CostBreakdown(),
		})
	}
	return summary
}

// WorksheetLine is one row of a manufacturing worksheet.
type WorksheetLine struct {
	ItemName           string            `json:"item_name"`
	Description        string            `json:"description,omitempty"`
	Quantity           float64           `json:"quantity"`
	UOM                string            `json:"uom"`
	Specifications     map[string]string `json:"specifications,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	ManufacturingNotes string            `json:"manufacturing_notes,omitempty"`
	EstimatedCost      float64           `json:"estimated_cost"`
}

// Worksheet is the specification handoff given to manufacturing for costing.
type Worksheet struct {
	PreQuotationID     int64           `json:"pre_quotation_id"`
	Customer           string          `json:"customer"`
	Date               time.Time       `json:"date"`
	EstimatedTotalCost float64         `json:"estimated_total_cost"`
	Lines              []WorksheetLine `json:"lines"`
}

// ManufacturingWorksheet builds the worksheet view of the document.
func (d *PreQuotation) ManufacturingWorksheet() Worksheet {
	customer := d.Customer
	if customer == "" {
		customer = d.ContactPerson
	}
	ws := Worksheet{
		PreQuotationID:     d.ID,
		Customer:           customer,
		Date:               d.Date,
		EstimatedTotalCost: pricing.Round2(d.EstimatedTotalCost),
	}
	for i := range d.Lines {
		line := &d.Lines[i]
		ws.Lines = append(ws.Lines, WorksheetLine{
			ItemName:           line.ItemName,
			Description:        line.Description,
			Quantity:           pricing.Round2(line.Quantity),
			UOM:                line.UOM,
			Specifications:     line.Specifications,
			Notes:              line.Notes,
			ManufacturingNotes: line.ManufacturingNotes,
			EstimatedCost:      pricing.Round2(line.TotalCost),
		})
	}
	return ws
}
