package store

import (
	"context"

	"prequote-service/internal/domain"
)

// CatalogStorer defines the database operations for the visual selector
// reference data. Items are always loaded with their specification
// definitions and images.
type CatalogStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByCode(ctx context.Context, code string) (*domain.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)

	CreateSubcategory(ctx context.Context, sub *domain.Subcategory) (*domain.Subcategory, error)
	GetSubcategoryByCode(ctx context.Context, code string) (*domain.Subcategory, error)
	ListSubcategories(ctx context.Context, activeOnly bool) ([]domain.Subcategory, error)
	UpdateSubcategory(ctx context.Context, sub *domain.Subcategory) (*domain.Subcategory, error)

	CreateItem(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error)
	GetItemByCode(ctx context.Context, code string) (*domain.CatalogItem, error)
	ListItems(ctx context.Context, activeOnly bool) ([]domain.CatalogItem, error)
	UpdateItem(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error)
}

// ListPreQuotationsParams holds parameters for listing pre-quotations.
type ListPreQuotationsParams struct {
	Limit  int
	Offset int
	Status *domain.Status
}

// PreQuotationStorer defines the database operations for pre-quotation
// documents. Lines are owned by their document and are always written and
// read together with it.
type PreQuotationStorer interface {
	CreatePreQuotation(ctx context.Context, doc *domain.PreQuotation) (*domain.PreQuotation, error)
	GetPreQuotationByID(ctx context.Context, id int64) (*domain.PreQuotation, error)
	ListPreQuotations(ctx context.Context, params ListPreQuotationsParams) ([]domain.PreQuotation, int, error)
	UpdatePreQuotation(ctx context.Context, doc *domain.PreQuotation) (*domain.PreQuotation, error)
	UpdatePreQuotationStatus(ctx context.Context, id int64, status domain.Status) error
	DeletePreQuotation(ctx context.Context, id int64) error
}

// SalesItemStorer defines the operations for generated sales items.
type SalesItemStorer interface {
	GetSalesItemByCode(ctx context.Context, code string) (*domain.SalesItem, error)
	CreateSalesItem(ctx context.Context, item *domain.SalesItem) (*domain.SalesItem, error)
}

// QuotationStorer defines the operations for formal quotations.
type QuotationStorer interface {
	CreateQuotation(ctx context.Context, q *domain.Quotation) (*domain.Quotation, error)
	GetQuotationByID(ctx context.Context, id int64) (*domain.Quotation, error)
}
