package importer

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"prequote-service/internal/domain"
	"prequote-service/internal/store"
)

// fakeCatalog is an in-memory store.CatalogStorer; enough to observe the
// importer's upsert behavior without a database.
type fakeCatalog struct {
	categories    map[string]*domain.Category
	subcategories map[string]*domain.Subcategory
	items         map[string]*domain.CatalogItem
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories:    map[string]*domain.Category{},
		subcategories: map[string]*domain.Subcategory{},
		items:         map[string]*domain.CatalogItem{},
	}
}

func (f *fakeCatalog) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if _, ok := f.categories[c.Code]; ok {
		return nil, store.ErrCategoryCodeExists
	}
	clone := *c
	f.categories[c.Code] = &clone
	return &clone, nil
}

func (f *fakeCatalog) GetCategoryByCode(_ context.Context, code string) (*domain.Category, error) {
	c, ok := f.categories[code]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCatalog) ListCategories(_ context.Context, _ bool) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCatalog) UpdateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if _, ok := f.categories[c.Code]; !ok {
		return nil, store.ErrCategoryNotFound
	}
	clone := *c
	f.categories[c.Code] = &clone
	return &clone, nil
}

func (f *fakeCatalog) CreateSubcategory(_ context.Context, s *domain.Subcategory) (*domain.Subcategory, error) {
	if _, ok := f.subcategories[s.Code]; ok {
		return nil, store.ErrSubcategoryExists
	}
	clone := *s
	f.subcategories[s.Code] = &clone
	return &clone, nil
}

func (f *fakeCatalog) GetSubcategoryByCode(_ context.Context, code string) (*domain.Subcategory, error) {
	s, ok := f.subcategories[code]
	if !ok {
		return nil, store.ErrSubcategoryNotFound
	}
	return s, nil
}

func (f *fakeCatalog) ListSubcategories(_ context.Context, _ bool) ([]domain.Subcategory, error) {
	var out []domain.Subcategory
	for _, s := range f.subcategories {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeCatalog) UpdateSubcategory(_ context.Context, s *domain.Subcategory) (*domain.Subcategory, error) {
	if _, ok := f.subcategories[s.Code]; !ok {
		return nil, store.ErrSubcategoryNotFound
	}
	clone := *s
	f.subcategories[s.Code] = &clone
	return &clone, nil
}

func (f *fakeCatalog) CreateItem(_ context.Context, i *domain.CatalogItem) (*domain.CatalogItem, error) {
	if _, ok := f.items[i.Code]; ok {
		return nil, store.ErrItemCodeExists
	}
	clone := *i
	f.items[i.Code] = &clone
	return &clone, nil
}

func (f *fakeCatalog) GetItemByCode(_ context.Context, code string) (*domain.CatalogItem, error) {
	i, ok := f.items[code]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	return i, nil
}

func (f *fakeCatalog) ListItems(_ context.Context, _ bool) ([]domain.CatalogItem, error) {
	var out []domain.CatalogItem
	for _, i := range f.items {
		out = append(out, *i)
	}
	return out, nil
}

func (f *fakeCatalog) UpdateItem(_ context.Context, i *domain.CatalogItem) (*domain.CatalogItem, error) {
	if _, ok := f.items[i.Code]; !ok {
		return nil, store.ErrItemNotFound
	}
	clone := *i
	f.items[i.Code] = &clone
	return &clone, nil
}

func writeSheet(t *testing.T, f *excelize.File, sheet string, rows [][]string) {
	t.Helper()
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
}

func buildWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	writeSheet(t, f, "Categories", [][]string{
		{"Category ID", "Category Name", "Icon", "Description", "Sort Order"},
		{"furn", "Furniture", "sofa", "All furniture", "1"},
		{"", "No ID Row", "", "", ""},
	})
	writeSheet(t, f, "Subcategories", [][]string{
		{"Subcategory ID", "Category", "Subcategory Name", "Sort Order"},
		{"furn_tables", "furn", "Tables", "1"},
	})
	writeSheet(t, f, "Items", [][]string{
		{"Item ID", "Subcategory", "Item Name", "Base Cost", "Base Price", "Unit", "Image URL"},
		{"din_table_001", "furn_tables", "Dining Table", "300", "375", "pcs", "table.jpg"},
	})
	writeSheet(t, f, "Specifications", [][]string{
		{"Item ID", "Spec Name", "Spec Type", "Options", "Price Modifier", "Is Required"},
		{"DIN_TABLE_001", "Material", "Select", "Wood, Metal", "0, 20", "yes"},
		{"DIN_TABLE_001", "Size", "Select", "Standard, Large", "0, 40", "no"},
	})

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImporter_ImportWorkbook(t *testing.T) {
	catalog := newFakeCatalog()
	imp := New(catalog)

	result, err := imp.ImportWorkbook(context.Background(), buildWorkbook(t))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Categories)
	assert.Equal(t, 1, result.Subcategories)
	assert.Equal(t, 1, result.Items)
	assert.Equal(t, 2, result.Specifications)
	require.Len(t, result.Errors, 1, "the row without a Category ID is reported, not fatal")
	assert.Contains(t, result.Errors[0], "Category ID")

	category, err := catalog.GetCategoryByCode(context.Background(), "FURN")
	require.NoError(t, err)
	assert.Equal(t, "Furniture", category.Name)
	require.NotNil(t, category.Icon)
	assert.Equal(t, "sofa", *category.Icon)

	item, err := catalog.GetItemByCode(context.Background(), "DIN_TABLE_001")
	require.NoError(t, err)
	assert.Equal(t, "FURN_TABLES", item.SubcategoryCode)
	assert.Equal(t, 300.0, item.BaseCost)
	assert.Equal(t, "table.jpg", item.PrimaryImageURL())

	require.Len(t, item.Specifications, 2, "specification sheet replaces the item's spec list")
	assert.Equal(t, "Material", item.Specifications[0].Name)
	assert.Equal(t, []string{"Wood", "Metal"}, item.Specifications[0].Options)
	assert.Equal(t, []float64{0, 20}, item.Specifications[0].PriceModifiers)
	assert.True(t, item.Specifications[0].IsRequired)
	assert.Equal(t, "Size", item.Specifications[1].Name)
}

func TestImporter_ImportWorkbook_ReimportUpdates(t *testing.T) {
	catalog := newFakeCatalog()
	imp := New(catalog)

	_, err := imp.ImportWorkbook(context.Background(), buildWorkbook(t))
	require.NoError(t, err)

	// Amend the price and re-import the same codes.
	f := excelize.NewFile()
	defer f.Close()
	writeSheet(t, f, "Items", [][]string{
		{"Item ID", "Subcategory", "Item Name", "Base Cost", "Base Price", "Unit"},
		{"din_table_001", "furn_tables", "Dining Table", "320", "400", "pcs"},
	})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := imp.ImportWorkbook(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Items)

	item, err := catalog.GetItemByCode(context.Background(), "DIN_TABLE_001")
	require.NoError(t, err)
	assert.Equal(t, 320.0, item.BaseCost)
	assert.Equal(t, 400.0, item.BasePrice)
	require.Len(t, item.Specifications, 2, "update keeps previously imported specifications")
	assert.Equal(t, "table.jpg", item.PrimaryImageURL(), "update keeps existing images when none supplied")
}

func TestImporter_ImportWorkbook_UnreadableStream(t *testing.T) {
	imp := New(newFakeCatalog())

	_, err := imp.ImportWorkbook(context.Background(), bytes.NewReader([]byte("not an xlsx")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}

func TestImporter_ImportWorkbook_MissingItemForSpecs(t *testing.T) {
	imp := New(newFakeCatalog())

	f := excelize.NewFile()
	defer f.Close()
	writeSheet(t, f, "Specifications", [][]string{
		{"Item ID", "Spec Name", "Options", "Price Modifier"},
		{"GHOST_001", "Material", "Wood", "0"},
	})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := imp.ImportWorkbook(context.Background(), &buf)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Specifications)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], fmt.Sprintf("Specifications: %s", "GHOST_001"))
}
