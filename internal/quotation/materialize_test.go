package quotation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prequote-service/internal/domain"
	"prequote-service/internal/store"
)

// MockPreQuotationStorer is a mock implementation of store.PreQuotationStorer
type MockPreQuotationStorer struct {
	mock.Mock
}

func (m *MockPreQuotationStorer) CreatePreQuotation(ctx context.Context, doc *domain.PreQuotation) (*domain.PreQuotation, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreQuotation), args.Error(1)
}

func (m *MockPreQuotationStorer) GetPreQuotationByID(ctx context.Context, id int64) (*domain.PreQuotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreQuotation), args.Error(1)
}

func (m *MockPreQuotationStorer) ListPreQuotations(ctx context.Context, params store.ListPreQuotationsParams) ([]domain.PreQuotation, int, error) {
	args := m.Called(ctx, params)
	var docs []domain.PreQuotation
	if arg0 := args.Get(0); arg0 != nil {
		docs = arg0.([]domain.PreQuotation)
	}
	return docs, args.Int(1), args.Error(2)
}

func (m *MockPreQuotationStorer) UpdatePreQuotation(ctx context.Context, doc *domain.PreQuotation) (*domain.PreQuotation, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreQuotation), args.Error(1)
}

func (m *MockPreQuotationStorer) UpdatePreQuotationStatus(ctx context.Context, id int64, status domain.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPreQuotationStorer) DeletePreQuotation(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSalesItemStorer is a mock implementation of store.SalesItemStorer
type MockSalesItemStorer struct {
	mock.Mock
}

func (m *MockSalesItemStorer) GetSalesItemByCode(ctx context.Context, code string) (*domain.SalesItem, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesItem), args.Error(1)
}

func (m *MockSalesItemStorer) CreateSalesItem(ctx context.Context, item *domain.SalesItem) (*domain.SalesItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesItem), args.Error(1)
}

// MockQuotationStorer is a mock implementation of store.QuotationStorer
type MockQuotationStorer struct {
	mock.Mock
}

func (m *MockQuotationStorer) CreateQuotation(ctx context.Context, q *domain.Quotation) (*domain.Quotation, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

func (m *MockQuotationStorer) GetQuotationByID(ctx context.Context, id int64) (*domain.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quotation), args.Error(1)
}

func approvedDocument() *domain.PreQuotation {
	doc := &domain.PreQuotation{
		ID:       12,
		Customer: "Acme Interiors",
		Status:   domain.StatusApproved,
		Lines: []domain.PreQuotationLine{
			{
				ItemName:            "Conference Table",
				Quantity:            2,
				UOM:                 "Nos",
				CostPerUnit:         400,
				ProfitMarginPercent: 25,
				Specifications:      map[string]string{"material": "wood"},
			},
		},
	}
	doc.CalculateTotals()
	return doc
}

func TestMaterializer_Materialize_Success(t *testing.T) {
	docs := new(MockPreQuotationStorer)
	items := new(MockSalesItemStorer)
	quotes := new(MockQuotationStorer)
	m := NewMaterializer(docs, items, quotes).WithClock(pinnedClock())

	doc := approvedDocument()
	docs.On("GetPreQuotationByID", mock.Anything, int64(12)).Return(doc, nil).Once()

	items.On("GetSalesItemByCode", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, store.ErrSalesItemNotFound).Once()
	items.On("CreateSalesItem", mock.Anything, mock.MatchedBy(func(item *domain.SalesItem) bool {
		return item.Name == "Conference Table" &&
			item.ItemGroup == "Custom Furniture" &&
			item.StockUOM == "Nos" &&
			item.ValuationRate == 400
	})).Return(&domain.SalesItem{ID: 1}, nil).Once()

	quotes.On("CreateQuotation", mock.Anything, mock.MatchedBy(func(q *domain.Quotation) bool {
		return q.PreQuotationID == 12 &&
			q.CustomerName == "Acme Interiors" &&
			len(q.Lines) == 1 &&
			q.Lines[0].Rate == 500 &&
			q.Lines[0].Amount == 1000
	})).Return(&domain.Quotation{ID: 77, PreQuotationID: 12}, nil).Once()

	docs.On("UpdatePreQuotationStatus", mock.Anything, int64(12), domain.StatusConverted).
		Return(nil).Once()

	created, err := m.Materialize(context.Background(), 12)

	require.NoError(t, err)
	assert.Equal(t, int64(77), created.ID)
	docs.AssertExpectations(t)
	items.AssertExpectations(t)
	quotes.AssertExpectations(t)
}

func TestMaterializer_Materialize_RequiresApprovedStatus(t *testing.T) {
	docs := new(MockPreQuotationStorer)
	m := NewMaterializer(docs, new(MockSalesItemStorer), new(MockQuotationStorer))

	doc := approvedDocument()
	doc.Status = domain.StatusDraft
	docs.On("GetPreQuotationByID", mock.Anything, int64(12)).Return(doc, nil).Once()

	created, err := m.Materialize(context.Background(), 12)

	require.Error(t, err)
	var pErr *domain.PreconditionError
	assert.True(t, errors.As(err, &pErr))
	assert.Nil(t, created)
	docs.AssertExpectations(t)
}

func TestMaterializer_Materialize_ReusesExistingSalesItem(t *testing.T) {
	docs := new(MockPreQuotationStorer)
	items := new(MockSalesItemStorer)
	quotes := new(MockQuotationStorer)
	m := NewMaterializer(docs, items, quotes).WithClock(pinnedClock())

	doc := approvedDocument()
	doc.Lines[0].ItemCode = "FUR-TAB-WOO-0001"
	docs.On("GetPreQuotationByID", mock.Anything, int64(12)).Return(doc, nil).Once()

	items.On("GetSalesItemByCode", mock.Anything, "FUR-TAB-WOO-0001").
		Return(&domain.SalesItem{ID: 3, Code: "FUR-TAB-WOO-0001"}, nil).Once()

	quotes.On("CreateQuotation", mock.Anything, mock.MatchedBy(func(q *domain.Quotation) bool {
		return q.Lines[0].ItemCode == "FUR-TAB-WOO-0001"
	})).Return(&domain.Quotation{ID: 78}, nil).Once()

	docs.On("UpdatePreQuotationStatus", mock.Anything, int64(12), domain.StatusConverted).
		Return(nil).Once()

	_, err := m.Materialize(context.Background(), 12)

	require.NoError(t, err)
	items.AssertNotCalled(t, "CreateSalesItem", mock.Anything, mock.Anything)
}

func TestMaterializer_Materialize_PrefixedCodeFromLineTaxonomy(t *testing.T) {
	docs := new(MockPreQuotationStorer)
	items := new(MockSalesItemStorer)
	quotes := new(MockQuotationStorer)
	m := NewMaterializer(docs, items, quotes).WithClock(pinnedClock())

	doc := approvedDocument()
	doc.Lines[0].Category = "Furniture"
	doc.Lines[0].Subcategory = "Tables"
	docs.On("GetPreQuotationByID", mock.Anything, int64(12)).Return(doc, nil).Once()

	items.On("GetSalesItemByCode", mock.Anything, mock.MatchedBy(func(code string) bool {
		return strings.HasPrefix(code, "FUR-TAB-WOO-")
	})).Return(nil, store.ErrSalesItemNotFound).Once()
	items.On("CreateSalesItem", mock.Anything, mock.MatchedBy(func(item *domain.SalesItem) bool {
		return strings.HasPrefix(item.Code, "FUR-TAB-WOO-")
	})).Return(&domain.SalesItem{ID: 2}, nil).Once()

	quotes.On("CreateQuotation", mock.Anything, mock.MatchedBy(func(q *domain.Quotation) bool {
		return strings.HasPrefix(q.Lines[0].ItemCode, "FUR-TAB-WOO-")
	})).Return(&domain.Quotation{ID: 80}, nil).Once()
	docs.On("UpdatePreQuotationStatus", mock.Anything, int64(12), domain.StatusConverted).
		Return(nil).Once()

	_, err := m.Materialize(context.Background(), 12)

	require.NoError(t, err)
	items.AssertExpectations(t)
	quotes.AssertExpectations(t)
}

func TestMaterializer_Materialize_ToleratesCreateRace(t *testing.T) {
	docs := new(MockPreQuotationStorer)
	items := new(MockSalesItemStorer)
	quotes := new(MockQuotationStorer)
	m := NewMaterializer(docs, items, quotes).WithClock(pinnedClock())

	doc := approvedDocument()
	docs.On("GetPreQuotationByID", mock.Anything, int64(12)).Return(doc, nil).Once()

	items.On("GetSalesItemByCode", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, store.ErrSalesItemNotFound).Once()
	items.On("CreateSalesItem", mock.Anything, mock.Anything).
		Return(nil, store.ErrSalesItemExists).Once()

	quotes.On("CreateQuotation", mock.Anything, mock.Anything).
		Return(&domain.Quotation{ID: 79}, nil).Once()
	docs.On("UpdatePreQuotationStatus", mock.Anything, int64(12), domain.StatusConverted).
		Return(nil).Once()

	_, err := m.Materialize(context.Background(), 12)

	require.NoError(t, err)
}

func TestBuildPreview(t *testing.T) {
	doc := approvedDocument()
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	preview := BuildPreview(doc, now)

	assert.Equal(t, "Acme Interiors", preview.Customer)
	assert.Equal(t, now, preview.Date)
	require.Len(t, preview.Lines, 1)
	assert.Equal(t, 500.0, preview.Lines[0].Rate)
	assert.Equal(t, 1000.0, preview.Lines[0].Amount)
	assert.Equal(t, 1000.0, preview.Totals.Subtotal)
	assert.Equal(t, 150.0, preview.Totals.Tax)
	assert.Equal(t, 1150.0, preview.Totals.Total)
}
