package domain

import (
	"time"

	"prequote-service/internal/pricing"
)

// SpecKind enumerates the input types a specification definition can take
// in the visual selector.
type SpecKind string

const (
	SpecKindSelect SpecKind = "Select"
	SpecKindText   SpecKind = "Text"
	SpecKindNumber SpecKind = "Number"
)

// SpecificationDefinition describes one configurable attribute of a catalog
// item: an ordered list of option labels and a parallel list of percentage
// price modifiers. The modifier list may legitimately be shorter than the
// option list; options past its end carry no modifier.
type SpecificationDefinition struct {
	Name           string    `json:"name"`
	Kind           SpecKind  `json:"kind"`
	Options        []string  `json:"options"`
	PriceModifiers []float64 `json:"price_modifiers"`
	DefaultValue   string    `json:"default_value,omitempty"`
	IsRequired     bool      `json:"is_required"`
}

// ItemImage is one image attached to a catalog item.
type ItemImage struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

// Category is a top-level node of the visual selector tree.
type Category struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"` // e.g. FURN; uppercased, stable across imports
	Name        string    `json:"name"`
	Icon        *string   `json:"icon,omitempty"`
	Description *string   `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Subcategory belongs to one category.
type Subcategory struct {
	ID           int64     `json:"id"`
	CategoryCode string    `json:"category_code"`
	Code         string    `json:"code"` // e.g. FURN_TABLES
	Name         string    `json:"name"`
	Icon         *string   `json:"icon,omitempty"`
	Description  *string   `json:"description,omitempty"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CatalogItem is a configurable item master within a subcategory, carrying
// its base cost/price and specification definitions. It is read-only
// reference data during pricing.
type CatalogItem struct {
	ID              int64                     `json:"id"`
	SubcategoryCode string                    `json:"subcategory_code"`
	Code            string                    `json:"code"` // e.g. EXEC_DESK_001
	Name            string                    `json:"name"`
	Description     *string                   `json:"description,omitempty"`
	BaseCost        float64                   `json:"base_cost"`
	BasePrice       float64                   `json:"base_price"`
	Unit            string                    `json:"unit"`
	SortOrder       int                       `json:"sort_order"`
	IsActive        bool                      `json:"is_active"`
	Specifications  []SpecificationDefinition `json:"specifications"`
	Images          []ItemImage               `json:"images"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// ProfitMargin returns the catalog margin implied by base cost and price,
// or 0 when the base cost is zero.
func (i *CatalogItem) ProfitMargin() float64 {
	if i.BaseCost <= 0 {
		return 0
	}
	return pricing.Round2((i.BasePrice - i.BaseCost) / i.BaseCost * 100)
}

// NormalizeImages repairs the primary-image invariant before a write: at
// most one image may be primary, and if none is flagged while images exist
// the first becomes primary. Multiple primaries keep only the first.
func (i *CatalogItem) NormalizeImages() {
	seenPrimary := false
	for idx := range i.Images {
		if i.Images[idx].IsPrimary {
			if seenPrimary {
				i.Images[idx].IsPrimary = false
			}
			seenPrimary = true
		}
	}
	if !seenPrimary && len(i.Images) > 0 {
		i.Images[0].IsPrimary = true
	}
}

// PrimaryImageURL returns the URL of the primary image, or "" when the item
// has no images.
func (i *CatalogItem) PrimaryImageURL() string {
	for _, img := range i.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	return ""
}

// PricingSpecs adapts the item's specification definitions to the resolver's
// input shape.
func (i *CatalogItem) PricingSpecs() []pricing.Spec {
	specs := make([]pricing.Spec, 0, len(i.Specifications))
	for _, def := range i.Specifications {
		specs = append(specs, pricing.Spec{
			Name:      def.Name,
			Options:   def.Options,
			Modifiers: def.PriceModifiers,
		})
	}
	return specs
}

// SalesItem is a formal catalog entry generated when a pre-quotation is
// converted; quotation lines reference it by code.
type SalesItem struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	ItemGroup     string    `json:"item_group"`
	StockUOM      string    `json:"stock_uom"`
	ValuationRate float64   `json:"valuation_rate"`
	CreatedAt     time.Time `json:"created_at"`
}
