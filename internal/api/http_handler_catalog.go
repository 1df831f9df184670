package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"prequote-service/internal/domain"
	"prequote-service/internal/pricing"
)

// --- Category handlers ---

// CategoryInput defines the expected input for creating or updating a category.
type CategoryInput struct {
	Code        string  `json:"code" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=255"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty"`
	SortOrder   int     `json:"sort_order" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

func (in *CategoryInput) toDomain() *domain.Category {
	category := &domain.Category{
		Code:        strings.ToUpper(in.Code),
		Name:        in.Name,
		Icon:        in.Icon,
		Description: in.Description,
		SortOrder:   in.SortOrder,
		IsActive:    true,
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}
	return category
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.catalog.CreateCategory(r.Context(), input.toDomain())
	if err != nil {
		respondWithDomainError(w, err, "Failed to create category")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	categories, err := h.catalog.ListCategories(r.Context(), activeOnly)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve categories")
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var input CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	input.Code = chi.URLParam(r, "code")
	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.catalog.UpdateCategory(r.Context(), input.toDomain())
	if err != nil {
		respondWithDomainError(w, err, "Failed to update category")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// --- Subcategory handlers ---

// SubcategoryInput defines the expected input for creating a subcategory.
type SubcategoryInput struct {
	Code         string  `json:"code" validate:"required,max=50"`
	CategoryCode string  `json:"category_code" validate:"required,max=50"`
	Name         string  `json:"name" validate:"required,max=255"`
	Icon         *string `json:"icon" validate:"omitempty,max=50"`
	Description  *string `json:"description" validate:"omitempty"`
	SortOrder    int     `json:"sort_order" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"is_active"`
}

func (h *HTTPHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var input SubcategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	sub := &domain.Subcategory{
		Code:         strings.ToUpper(input.Code),
		CategoryCode: strings.ToUpper(input.CategoryCode),
		Name:         input.Name,
		Icon:         input.Icon,
		Description:  input.Description,
		SortOrder:    input.SortOrder,
		IsActive:     true,
	}
	if input.IsActive != nil {
		sub.IsActive = *input.IsActive
	}

	created, err := h.catalog.CreateSubcategory(r.Context(), sub)
	if err != nil {
		respondWithDomainError(w, err, "Failed to create subcategory")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	subs, err := h.catalog.ListSubcategories(r.Context(), activeOnly)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve subcategories")
		return
	}
	respondWithJSON(w, http.StatusOK, subs)
}

// --- Item handlers ---

// SpecificationInput mirrors domain.SpecificationDefinition at the API boundary.
type SpecificationInput struct {
	Name           string    `json:"name" validate:"required,max=100"`
	Kind           string    `json:"kind" validate:"omitempty,oneof=Select Text Number"`
	Options        []string  `json:"options"`
	PriceModifiers []float64 `json:"price_modifiers"`
	DefaultValue   string    `json:"default_value"`
	IsRequired     bool      `json:"is_required"`
}

// ItemInput defines the expected input for creating or updating a catalog item.
type ItemInput struct {
	Code            string               `json:"code" validate:"required,max=50"`
	SubcategoryCode string               `json:"subcategory_code" validate:"required,max=50"`
	Name            string               `json:"name" validate:"required,max=255"`
	Description     *string              `json:"description" validate:"omitempty"`
	BaseCost        float64              `json:"base_cost" validate:"gte=0"`
	BasePrice       float64              `json:"base_price" validate:"gte=0"`
	Unit            string               `json:"unit" validate:"omitempty,max=20"`
	SortOrder       int                  `json:"sort_order" validate:"omitempty,gte=0"`
	IsActive        *bool                `json:"is_active"`
	Specifications  []SpecificationInput `json:"specifications" validate:"dive"`
	Images          []domain.ItemImage   `json:"images"`
}

func (in *ItemInput) toDomain() *domain.CatalogItem {
	item := &domain.CatalogItem{
		Code:            strings.ToUpper(in.Code),
		SubcategoryCode: strings.ToUpper(in.SubcategoryCode),
		Name:            in.Name,
		Description:     in.Description,
		BaseCost:        in.BaseCost,
		BasePrice:       in.BasePrice,
		Unit:            in.Unit,
		SortOrder:       in.SortOrder,
		IsActive:        true,
		Images:          in.Images,
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	for _, spec := range in.Specifications {
		kind := domain.SpecKind(spec.Kind)
		if kind == "" {
			kind = domain.SpecKindSelect
		}
		item.Specifications = append(item.Specifications, domain.SpecificationDefinition{
			Name:           spec.Name,
			Kind:           kind,
			Options:        spec.Options,
			PriceModifiers: spec.PriceModifiers,
			DefaultValue:   spec.DefaultValue,
			IsRequired:     spec.IsRequired,
		})
	}
	return item
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	created, err := h.catalog.CreateItem(r.Context(), input.toDomain())
	if err != nil {
		respondWithDomainError(w, err, "Failed to create item")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	item, err := h.catalog.GetItemByCode(r.Context(), code)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve item")
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var input ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	input.Code = chi.URLParam(r, "code")
	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	updated, err := h.catalog.UpdateItem(r.Context(), input.toDomain())
	if err != nil {
		respondWithDomainError(w, err, "Failed to update item")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// --- Catalog tree ---

// TreeSpec is one specification definition inside the catalog tree response.
type TreeSpec struct {
	Name           string    `json:"name"`
	Kind           string    `json:"type"`
	Options        []string  `json:"options"`
	DefaultValue   string    `json:"default_value,omitempty"`
	PriceModifiers []float64 `json:"price_modifier"`
	IsRequired     bool      `json:"is_required"`
}

// TreeItem is one item node of the catalog tree response.
type TreeItem struct {
	Name           string              `json:"name"`
	Description    *string             `json:"description,omitempty"`
	BaseCost       float64             `json:"base_cost"`
	BasePrice      float64             `json:"base_price"`
	Unit           string              `json:"unit"`
	ImageURL       string              `json:"image_url,omitempty"`
	Specifications map[string]TreeSpec `json:"specifications"`
}

// TreeSubcategory is one subcategory node of the catalog tree response.
type TreeSubcategory struct {
	Name        string              `json:"name"`
	Icon        *string             `json:"icon,omitempty"`
	Description *string             `json:"description,omitempty"`
	Items       map[string]TreeItem `json:"items"`
}

// TreeCategory is one category node of the catalog tree response.
type TreeCategory struct {
	Name          string                     `json:"name"`
	Icon          *string                    `json:"icon,omitempty"`
	Description   *string                    `json:"description,omitempty"`
	Subcategories map[string]TreeSubcategory `json:"subcategories"`
}

// GetCatalogTree assembles the hierarchical visual selector payload from
// active entries only, honoring sort order within each level.
func (h *HTTPHandler) GetCatalogTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.catalog.ListCategories(ctx, true)
	if err != nil {
		respondWithDomainError(w, err, "Failed to assemble catalog")
		return
	}
	subcategories, err := h.catalog.ListSubcategories(ctx, true)
	if err != nil {
		respondWithDomainError(w, err, "Failed to assemble catalog")
		return
	}
	items, err := h.catalog.ListItems(ctx, true)
	if err != nil {
		respondWithDomainError(w, err, "Failed to assemble catalog")
		return
	}

	tree := make(map[string]TreeCategory, len(categories))
	for _, category := range categories {
		node := TreeCategory{
			Name:          category.Name,
			Icon:          category.Icon,
			Description:   category.Description,
			Subcategories: map[string]TreeSubcategory{},
		}

		for _, sub := range subcategories {
			if sub.CategoryCode != category.Code {
				continue
			}
			subNode := TreeSubcategory{
				Name:        sub.Name,
				Icon:        sub.Icon,
				Description: sub.Description,
				Items:       map[string]TreeItem{},
			}

			for i := range items {
				item := &items[i]
				if item.SubcategoryCode != sub.Code {
					continue
				}
				specs := make(map[string]TreeSpec, len(item.Specifications))
				for _, def := range item.Specifications {
					specs[def.Name] = TreeSpec{
						Name:           def.Name,
						Kind:           string(def.Kind),
						Options:        def.Options,
						DefaultValue:   def.DefaultValue,
						PriceModifiers: def.PriceModifiers,
						IsRequired:     def.IsRequired,
					}
				}
				subNode.Items[item.Code] = TreeItem{
					Name:           item.Name,
					Description:    item.Description,
					BaseCost:       item.BaseCost,
					BasePrice:      item.BasePrice,
					Unit:           item.Unit,
					ImageURL:       item.PrimaryImageURL(),
					Specifications: specs,
				}
			}

			node.Subcategories[sub.Code] = subNode
		}

		tree[category.Code] = node
	}

	respondWithJSON(w, http.StatusOK, tree)
}

// --- Pricing query ---

// ComputePriceInput defines the input for a visual-selector pricing query.
type ComputePriceInput struct {
	ItemCode   string            `json:"item_code" validate:"required"`
	Selections map[string]string `json:"selections"`
	Quantity   float64           `json:"quantity" validate:"required,gt=0"`
}

// ComputePrice resolves the specification modifier for the selected options
// and prices the configured item.
func (h *HTTPHandler) ComputePrice(w http.ResponseWriter, r *http.Request) {
	var input ComputePriceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	item, err := h.catalog.GetItemByCode(r.Context(), strings.ToUpper(input.ItemCode))
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve item")
		return
	}

	quote := pricing.ComputeItemPrice(item.BaseCost, item.BasePrice, item.PricingSpecs(), input.Selections, input.Quantity, item.Unit)
	respondWithJSON(w, http.StatusOK, quote)
}

// --- Catalog import ---

const maxImportSize = 20 << 20 // 20 MiB

// ImportCatalog accepts an xlsx upload (multipart field "file", or a raw
// body) and upserts the workbook's catalog sheets.
func (h *HTTPHandler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	reader := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}

	result, err := h.importer.ImportWorkbook(r.Context(), reader)
	if err != nil {
		log.Printf("ERROR: catalog import failed: %v", err)
		respondWithError(w, http.StatusBadRequest, "Failed to read workbook: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
