package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"prequote-service/internal/domain"
	"prequote-service/internal/importer"
	"prequote-service/internal/quotation"
	"prequote-service/internal/store"
)

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog      store.CatalogStorer
	docs         store.PreQuotationStorer
	quotes       store.QuotationStorer
	materializer *quotation.Materializer
	importer     *importer.Importer
	validate     *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(catalog store.CatalogStorer, docs store.PreQuotationStorer, quotes store.QuotationStorer, m *quotation.Materializer) *HTTPHandler {
	return &HTTPHandler{
		catalog:      catalog,
		docs:         docs,
		quotes:       quotes,
		materializer: m,
		importer:     importer.New(catalog),
		validate:     validator.New(),
	}
}

// RegisterRoutes mounts all endpoints under /api/v1.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.GetCatalogTree)
		r.Post("/catalog/import", h.ImportCatalog)

		r.Post("/categories", h.CreateCategory)
		r.Get("/categories", h.ListCategories)
		r.Put("/categories/{code}", h.UpdateCategory)

		r.Post("/subcategories", h.CreateSubcategory)
		r.Get("/subcategories", h.ListSubcategories)

		r.Post("/items", h.CreateItem)
		r.Get("/items/{code}", h.GetItem)
		r.Put("/items/{code}", h.UpdateItem)

		r.Post("/pricing/compute", h.ComputePrice)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", h.CreateDocument)
			r.Get("/", h.ListDocuments)
			r.Get("/{id}", h.GetDocument)
			r.Put("/{id}", h.UpdateDocument)
			r.Delete("/{id}", h.DeleteDocument)

			r.Post("/{id}/transition", h.TransitionDocument)
			r.Post("/{id}/bulk-costing", h.BulkCosting)
			r.Post("/{id}/bulk-margin", h.BulkMargin)
			r.Post("/{id}/auto-estimate", h.AutoEstimate)
			r.Post("/{id}/convert", h.ConvertDocument)
			r.Get("/{id}/preview", h.PreviewDocument)
			r.Get("/{id}/summary", h.DocumentSummary)
			r.Get("/{id}/worksheet", h.DocumentWorksheet)
		})

		r.Get("/quotations/{id}", h.GetQuotation)
	})
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
			http.Error(w, `{"error": "Internal server error during JSON encoding"}`, http.StatusInternalServerError)
		}
	}
}

// respondWithDomainError maps domain and store errors onto HTTP statuses:
// validation → 400, workflow preconditions → 409, missing records → 404,
// duplicates → 409, everything else → 500.
func respondWithDomainError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *domain.ValidationError
	var preconditionErr *domain.PreconditionError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &preconditionErr):
		respondWithError(w, http.StatusConflict, preconditionErr.Error())
	case errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrSubcategoryNotFound),
		errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, store.ErrPreQuotationNotFound),
		errors.Is(err, store.ErrSalesItemNotFound),
		errors.Is(err, store.ErrQuotationNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrCategoryCodeExists),
		errors.Is(err, store.ErrSubcategoryExists),
		errors.Is(err, store.ErrItemCodeExists),
		errors.Is(err, store.ErrSalesItemExists):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: %s: %v", fallback, err)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}
