package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prequote-service/internal/domain"
	"prequote-service/internal/pricing"
	"prequote-service/internal/store"
)

const customItemGroup = "Custom Furniture"

// Materializer converts approved pre-quotations into formal quotations.
type Materializer struct {
	docs    store.PreQuotationStorer
	items   store.SalesItemStorer
	quotes  store.QuotationStorer
	codeGen *CodeGenerator
	now     func() time.Time
}

// NewMaterializer wires a materializer over the given stores.
func NewMaterializer(docs store.PreQuotationStorer, items store.SalesItemStorer, quotes store.QuotationStorer) *Materializer {
	return &Materializer{
		docs:    docs,
		items:   items,
		quotes:  quotes,
		codeGen: NewCodeGenerator(),
		now:     time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (m *Materializer) WithClock(now func() time.Time) *Materializer {
	m.now = now
	m.codeGen = NewCodeGeneratorAt(now)
	return m
}

// Materialize creates a quotation from an approved pre-quotation: every line
// gets a sales item (created on first use, looked up by code afterwards), a
// quotation is written with the frozen line figures, and the source document
// is stamped converted. The returned quotation includes its new ID.
//
// The operation fails with a PreconditionError when the document is not in
// the Approved Internally state; nothing is written in that case.
func (m *Materializer) Materialize(ctx context.Context, preQuotationID int64) (*domain.Quotation, error) {
	doc, err := m.docs.GetPreQuotationByID(ctx, preQuotationID)
	if err != nil {
		return nil, fmt.Errorf("load pre-quotation %d: %w", preQuotationID, err)
	}

	if doc.Status != domain.StatusApproved {
		return nil, &domain.PreconditionError{
			Message: fmt.Sprintf("pre-quotation %d must be approved before creating a quotation (status is %q)", doc.ID, doc.Status),
		}
	}

	customer := doc.Customer
	if customer == "" {
		customer = doc.ContactPerson
	}

	quotation := &domain.Quotation{
		PreQuotationID:  doc.ID,
		CustomerName:    customer,
		TransactionDate: m.now(),
		ValidUntil:      doc.ValidUntil,
	}

	for i := range doc.Lines {
		line := &doc.Lines[i]

		code, err := m.ensureSalesItem(ctx, line)
		if err != nil {
			return nil, fmt.Errorf("ensure sales item for line %d: %w", i+1, err)
		}

		quotation.Lines = append(quotation.Lines, domain.QuotationLine{
			ItemCode:    code,
			ItemName:    line.ItemName,
			Description: line.Description,
			Quantity:    line.Quantity,
			UOM:         line.UOM,
			Rate:        line.SellingPricePerUnit,
			Amount:      line.TotalSellingAmount,
			VATRate:     line.VATRate,
		})
	}

	created, err := m.quotes.CreateQuotation(ctx, quotation)
	if err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}

	if err := m.docs.UpdatePreQuotationStatus(ctx, doc.ID, domain.StatusConverted); err != nil {
		return nil, fmt.Errorf("mark pre-quotation %d converted: %w", doc.ID, err)
	}

	return created, nil
}

// ensureSalesItem returns the sales item code for a line, creating the item
// when it does not exist yet. Generated codes use the line's category and
// subcategory when the selector flow recorded them, falling back to the
// CUSTOM-<name> stem otherwise. An existing code, including one hit by the
// legacy timestamp collision window, is reused as-is.
func (m *Materializer) ensureSalesItem(ctx context.Context, line *domain.PreQuotationLine) (string, error) {
	code := line.ItemCode
	if code == "" {
		code = m.codeGen.Generate(line.ItemName, line.Category, line.Subcategory, line.Specifications)
	}

	_, err := m.items.GetSalesItemByCode(ctx, code)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, store.ErrSalesItemNotFound) {
		return "", err
	}

	description := line.Description
	item := &domain.SalesItem{
		Code:          code,
		Name:          line.ItemName,
		ItemGroup:     customItemGroup,
		StockUOM:      line.UOM,
		ValuationRate: line.UnitCost(),
	}
	if description != "" {
		item.Description = &description
	}

	if _, err := m.items.CreateSalesItem(ctx, item); err != nil {
		if errors.Is(err, store.ErrSalesItemExists) {
			return code, nil
		}
		return "", err
	}
	return code, nil
}

// PreviewTotals carries the quotation preview totals with an indicative tax.
type PreviewTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// PreviewLine is one row of a quotation preview.
type PreviewLine struct {
	ItemName    string  `json:"item_name"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	UOM         string  `json:"uom"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Preview is a non-binding render of what the quotation would look like.
type Preview struct {
	Customer   string        `json:"customer"`
	Date       time.Time     `json:"date"`
	ValidUntil *time.Time    `json:"valid_until,omitempty"`
	Lines      []PreviewLine `json:"lines"`
	Totals     PreviewTotals `json:"totals"`
}

const previewTaxRate = 0.15

// BuildPreview renders a quotation preview from the document's current line
// state, applying the indicative 15% tax used by the sales team.
func BuildPreview(doc *domain.PreQuotation, now time.Time) Preview {
	customer := doc.Customer
	if customer == "" {
		customer = doc.ContactPerson
	}

	preview := Preview{
		Customer:   customer,
		Date:       now,
		ValidUntil: doc.ValidUntil,
		Totals: PreviewTotals{
			Subtotal: pricing.Round2(doc.EstimatedSellingPrice),
			Tax:      pricing.Round2(doc.EstimatedSellingPrice * previewTaxRate),
			Total:    pricing.Round2(doc.EstimatedSellingPrice * (1 + previewTaxRate)),
		},
	}

	for i := range doc.Lines {
		line := &doc.Lines[i]
		preview.Lines = append(preview.Lines, PreviewLine{
			ItemName:    line.ItemName,
			Description: line.Description,
			Quantity:    pricing.Round2(line.Quantity),
			UOM:         line.UOM,
			Rate:        pricing.Round2(line.SellingPricePerUnit),
			Amount:      pricing.Round2(line.TotalSellingAmount),
		})
	}

	return preview
}
