// Package importer loads visual selector reference data from an Excel
// workbook. The workbook uses one sheet per entity (Categories,
// Subcategories, Items, Specifications) with a header row; rows are
// upserted so re-importing an amended workbook updates existing records.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"prequote-service/internal/domain"
	"prequote-service/internal/store"
)

const (
	sheetCategories     = "Categories"
	sheetSubcategories  = "Subcategories"
	sheetItems          = "Items"
	sheetSpecifications = "Specifications"
)

// Result summarizes an import run: per-sheet upsert counts plus the row
// errors that were skipped. Row errors never abort the run.
type Result struct {
	Categories     int      `json:"categories"`
	Subcategories  int      `json:"subcategories"`
	Items          int      `json:"items"`
	Specifications int      `json:"specifications"`
	Errors         []string `json:"errors,omitempty"`
}

// Importer reads catalog workbooks into the store.
type Importer struct {
	catalog store.CatalogStorer
}

// New creates an Importer over the given catalog store.
func New(catalog store.CatalogStorer) *Importer {
	return &Importer{catalog: catalog}
}

// ImportWorkbook reads an xlsx stream and upserts every recognized sheet.
// Missing sheets are skipped. The error return is reserved for unreadable
// workbooks; data problems land in Result.Errors.
func (imp *Importer) ImportWorkbook(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	result := &Result{}

	if rows, ok := sheetRows(f, sheetCategories); ok {
		result.Categories = imp.importCategories(ctx, rows, result)
	}
	if rows, ok := sheetRows(f, sheetSubcategories); ok {
		result.Subcategories = imp.importSubcategories(ctx, rows, result)
	}
	if rows, ok := sheetRows(f, sheetItems); ok {
		result.Items = imp.importItems(ctx, rows, result)
	}
	if rows, ok := sheetRows(f, sheetSpecifications); ok {
		result.Specifications = imp.importSpecifications(ctx, rows, result)
	}

	return result, nil
}

// sheetRows returns the data rows of a sheet as header-keyed maps.
func sheetRows(f *excelize.File, sheet string) ([]map[string]string, bool) {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return nil, false
	}

	header := rows[0]
	data := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		empty := true
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			if value != "" {
				empty = false
			}
			record[strings.TrimSpace(name)] = value
		}
		if !empty {
			data = append(data, record)
		}
	}
	return data, true
}

func (imp *Importer) importCategories(ctx context.Context, rows []map[string]string, result *Result) int {
	count := 0
	for _, row := range rows {
		code := strings.ToUpper(row["Category ID"])
		if code == "" {
			result.Errors = append(result.Errors, "Categories: row without Category ID skipped")
			continue
		}

		category := &domain.Category{
			Code:      code,
			Name:      row["Category Name"],
			SortOrder: parseInt(row["Sort Order"]),
			IsActive:  true,
		}
		if icon := row["Icon"]; icon != "" {
			category.Icon = &icon
		}
		if desc := row["Description"]; desc != "" {
			category.Description = &desc
		}

		if err := imp.upsertCategory(ctx, category); err != nil {
			log.Printf("ERROR: category import for %s failed: %v", code, err)
			result.Errors = append(result.Errors, fmt.Sprintf("Categories: %s: %v", code, err))
			continue
		}
		count++
	}
	return count
}

func (imp *Importer) upsertCategory(ctx context.Context, category *domain.Category) error {
	_, err := imp.catalog.GetCategoryByCode(ctx, category.Code)
	if errors.Is(err, store.ErrCategoryNotFound) {
		_, err = imp.catalog.CreateCategory(ctx, category)
		return err
	}
	if err != nil {
		return err
	}
	_, err = imp.catalog.UpdateCategory(ctx, category)
	return err
}

func (imp *Importer) importSubcategories(ctx context.Context, rows []map[string]string, result *Result) int {
	count := 0
	for _, row := range rows {
		code := strings.ToUpper(row["Subcategory ID"])
		if code == "" {
			result.Errors = append(result.Errors, "Subcategories: row without Subcategory ID skipped")
			continue
		}

		sub := &domain.Subcategory{
			Code:         code,
			CategoryCode: strings.ToUpper(row["Category"]),
			Name:         row["Subcategory Name"],
			SortOrder:    parseInt(row["Sort Order"]),
			IsActive:     true,
		}
		if icon := row["Icon"]; icon != "" {
			sub.Icon = &icon
		}
		if desc := row["Description"]; desc != "" {
			sub.Description = &desc
		}

		if err := imp.upsertSubcategory(ctx, sub); err != nil {
			log.Printf("ERROR: subcategory import for %s failed: %v", code, err)
			result.Errors = append(result.Errors, fmt.Sprintf("Subcategories: %s: %v", code, err))
			continue
		}
		count++
	}
	return count
}

func (imp *Importer) upsertSubcategory(ctx context.Context, sub *domain.Subcategory) error {
	_, err := imp.catalog.GetSubcategoryByCode(ctx, sub.Code)
	if errors.Is(err, store.ErrSubcategoryNotFound) {
		_, err = imp.catalog.CreateSubcategory(ctx, sub)
		return err
	}
	if err != nil {
		return err
	}
	_, err = imp.catalog.UpdateSubcategory(ctx, sub)
	return err
}

func (imp *Importer) importItems(ctx context.Context, rows []map[string]string, result *Result) int {
	count := 0
	for _, row := range rows {
		code := strings.ToUpper(row["Item ID"])
		if code == "" {
			result.Errors = append(result.Errors, "Items: row without Item ID skipped")
			continue
		}

		item := &domain.CatalogItem{
			Code:            code,
			SubcategoryCode: strings.ToUpper(row["Subcategory"]),
			Name:            row["Item Name"],
			BaseCost:        parseFloat(row["Base Cost"]),
			BasePrice:       parseFloat(row["Base Price"]),
			Unit:            defaultString(row["Unit"], "pcs"),
			SortOrder:       parseInt(row["Sort Order"]),
			IsActive:        true,
		}
		if desc := row["Description"]; desc != "" {
			item.Description = &desc
		}
		if url := row["Image URL"]; url != "" {
			item.Images = []domain.ItemImage{{URL: url, IsPrimary: true}}
		}

		if err := imp.upsertItem(ctx, item); err != nil {
			log.Printf("ERROR: item import for %s failed: %v", code, err)
			result.Errors = append(result.Errors, fmt.Sprintf("Items: %s: %v", code, err))
			continue
		}
		count++
	}
	return count
}

func (imp *Importer) upsertItem(ctx context.Context, item *domain.CatalogItem) error {
	existing, err := imp.catalog.GetItemByCode(ctx, item.Code)
	if errors.Is(err, store.ErrItemNotFound) {
		_, err = imp.catalog.CreateItem(ctx, item)
		return err
	}
	if err != nil {
		return err
	}
	// Specification rows live on their own sheet; keep what the item has.
	item.Specifications = existing.Specifications
	if len(item.Images) == 0 {
		item.Images = existing.Images
	}
	_, err = imp.catalog.UpdateItem(ctx, item)
	return err
}

// importSpecifications replaces the specification list of each referenced
// item with the rows found in the sheet, preserving row order per item.
func (imp *Importer) importSpecifications(ctx context.Context, rows []map[string]string, result *Result) int {
	specsByItem := make(map[string][]domain.SpecificationDefinition)
	var itemOrder []string

	for _, row := range rows {
		itemCode := strings.ToUpper(row["Item ID"])
		specName := row["Spec Name"]
		if itemCode == "" || specName == "" {
			result.Errors = append(result.Errors, "Specifications: row without Item ID or Spec Name skipped")
			continue
		}

		if _, seen := specsByItem[itemCode]; !seen {
			itemOrder = append(itemOrder, itemCode)
		}
		specsByItem[itemCode] = append(specsByItem[itemCode], domain.SpecificationDefinition{
			Name:           specName,
			Kind:           domain.SpecKind(defaultString(row["Spec Type"], string(domain.SpecKindSelect))),
			Options:        splitList(row["Options"]),
			PriceModifiers: splitFloats(row["Price Modifier"]),
			DefaultValue:   row["Default Value"],
			IsRequired:     parseBool(row["Is Required"]),
		})
	}

	count := 0
	for _, itemCode := range itemOrder {
		item, err := imp.catalog.GetItemByCode(ctx, itemCode)
		if err != nil {
			log.Printf("ERROR: specification import for %s failed: %v", itemCode, err)
			result.Errors = append(result.Errors, fmt.Sprintf("Specifications: %s: %v", itemCode, err))
			continue
		}
		item.Specifications = specsByItem[itemCode]
		if _, err := imp.catalog.UpdateItem(ctx, item); err != nil {
			log.Printf("ERROR: specification import for %s failed: %v", itemCode, err)
			result.Errors = append(result.Errors, fmt.Sprintf("Specifications: %s: %v", itemCode, err))
			continue
		}
		count += len(specsByItem[itemCode])
	}
	return count
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func splitFloats(value string) []float64 {
	if value == "" {
		return nil
	}
	var out []float64
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseInt(value string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(value))
	return n
}

func parseFloat(value string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
