package domain

import "time"

// QuotationLine is one row of a formal quotation, carrying the generated
// sales item code and the figures frozen from the source pre-quotation line.
type QuotationLine struct {
	ID          int64   `json:"id"`
	ItemCode    string  `json:"item_code"`
	ItemName    string  `json:"item_name"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	UOM         string  `json:"uom"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
	VATRate     float64 `json:"vat_rate"`
}

// Quotation is the formal sales document materialized from an approved
// pre-quotation. It is immutable once created.
type Quotation struct {
	ID              int64           `json:"id"`
	PreQuotationID  int64           `json:"pre_quotation_id"`
	CustomerName    string          `json:"customer_name"`
	TransactionDate time.Time       `json:"transaction_date"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
	Lines           []QuotationLine `json:"lines"`
	CreatedAt       time.Time       `json:"created_at"`
}
