package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"prequote-service/internal/domain"
	"prequote-service/internal/quotation"
	"prequote-service/internal/store"
)

// LineInput defines one line of a pre-quotation request payload.
type LineInput struct {
	ItemName            string            `json:"item_name" validate:"required,max=255"`
	ItemCode            string            `json:"item_code" validate:"omitempty,max=100"`
	Category            string            `json:"category" validate:"omitempty,max=100"`
	Subcategory         string            `json:"subcategory" validate:"omitempty,max=100"`
	Description         string            `json:"description"`
	Quantity            float64           `json:"quantity" validate:"required,gt=0"`
	UOM                 string            `json:"uom" validate:"omitempty,max=20"`
	CostPerUnit         float64           `json:"cost_per_unit" validate:"gte=0"`
	MaterialCost        float64           `json:"material_cost" validate:"gte=0"`
	LaborCost           float64           `json:"labor_cost" validate:"gte=0"`
	OverheadCost        float64           `json:"overhead_cost" validate:"gte=0"`
	SellingPricePerUnit float64           `json:"selling_price_per_unit" validate:"gte=0"`
	ProfitMarginPercent float64           `json:"profit_margin_percent" validate:"gte=0"`
	VATRate             float64           `json:"vat_rate" validate:"gte=0,lte=100"`
	Specifications      map[string]string `json:"specifications"`
	Notes               string            `json:"notes"`
	ManufacturingNotes  string            `json:"manufacturing_notes"`
}

// DocumentInput defines the payload for creating or updating a pre-quotation.
type DocumentInput struct {
	Customer      string      `json:"customer"`
	Lead          string      `json:"lead"`
	ContactPerson string      `json:"contact_person"`
	Date          *time.Time  `json:"date"`
	ValidUntil    *time.Time  `json:"valid_until"`
	Notes         string      `json:"notes"`
	Lines         []LineInput `json:"lines" validate:"required,min=1,dive"`
}

func (in *DocumentInput) toDomain() *domain.PreQuotation {
	doc := &domain.PreQuotation{
		Customer:      in.Customer,
		Lead:          in.Lead,
		ContactPerson: in.ContactPerson,
		ValidUntil:    in.ValidUntil,
		Notes:         in.Notes,
		Status:        domain.StatusDraft,
		Date:          time.Now(),
	}
	if in.Date != nil {
		doc.Date = *in.Date
	}
	for _, line := range in.Lines {
		uom := line.UOM
		if uom == "" {
			uom = "Nos"
		}
		doc.Lines = append(doc.Lines, domain.PreQuotationLine{
			ItemName:            line.ItemName,
			ItemCode:            line.ItemCode,
			Category:            line.Category,
			Subcategory:         line.Subcategory,
			Description:         line.Description,
			Quantity:            line.Quantity,
			UOM:                 uom,
			CostPerUnit:         line.CostPerUnit,
			MaterialCost:        line.MaterialCost,
			LaborCost:           line.LaborCost,
			OverheadCost:        line.OverheadCost,
			SellingPricePerUnit: line.SellingPricePerUnit,
			ProfitMarginPercent: line.ProfitMarginPercent,
			VATRate:             line.VATRate,
			Specifications:      line.Specifications,
			Notes:               line.Notes,
			ManufacturingNotes:  line.ManufacturingNotes,
		})
	}
	return doc
}

func documentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *HTTPHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var input DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	doc := input.toDomain()
	doc.CalculateTotals()
	if err := doc.Validate(); err != nil {
		respondWithDomainError(w, err, "Failed to create pre-quotation")
		return
	}

	created, err := h.docs.CreatePreQuotation(r.Context(), doc)
	if err != nil {
		respondWithDomainError(w, err, "Failed to create pre-quotation")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	params := store.ListPreQuotationsParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.Status(statusParam)
		params.Status = &status
	}

	docs, totalCount, err := h.docs.ListPreQuotations(r.Context(), params)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve pre-quotations")
		return
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}

	response := struct {
		Data       []domain.PreQuotation `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"total_items"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}{Data: docs}
	response.Pagination.Page = page
	response.Pagination.Limit = limit
	response.Pagination.TotalItems = totalCount
	response.Pagination.TotalPages = totalPages

	respondWithJSON(w, http.StatusOK, response)
}

func (h *HTTPHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	doc, err := h.docs.GetPreQuotationByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve pre-quotation")
		return
	}
	respondWithJSON(w, http.StatusOK, doc)
}

func (h *HTTPHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	var input DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	existing, err := h.docs.GetPreQuotationByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve pre-quotation")
		return
	}
	if !existing.Editable() {
		respondWithDomainError(w, &domain.PreconditionError{
			Message: "pre-quotation can only be edited in draft state",
		}, "")
		return
	}

	doc := input.toDomain()
	doc.ID = id
	doc.Status = existing.Status
	doc.CalculateTotals()
	if err := doc.Validate(); err != nil {
		respondWithDomainError(w, err, "Failed to update pre-quotation")
		return
	}

	updated, err := h.docs.UpdatePreQuotation(r.Context(), doc)
	if err != nil {
		respondWithDomainError(w, err, "Failed to update pre-quotation")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	if err := h.docs.DeletePreQuotation(r.Context(), id); err != nil {
		respondWithDomainError(w, err, "Failed to delete pre-quotation")
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Workflow ---

// TransitionInput names the target workflow status.
type TransitionInput struct {
	Status string `json:"status" validate:"required"`
}

func (h *HTTPHandler) TransitionDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	var input TransitionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	doc, err := h.docs.GetPreQuotationByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve pre-quotation")
		return
	}

	if err := doc.Transition(domain.Status(input.Status)); err != nil {
		respondWithDomainError(w, err, "Failed to transition pre-quotation")
		return
	}

	updated, err := h.docs.UpdatePreQuotation(r.Context(), doc)
	if err != nil {
		respondWithDomainError(w, err, "Failed to persist transition")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// --- Bulk operations ---

// BulkCostingInput carries optional uniform cost rates; omitted components
// are left untouched on every line.
type BulkCostingInput struct {
	MaterialRate *float64 `json:"material_rate" validate:"omitempty,gte=0"`
	LaborRate    *float64 `json:"labor_rate" validate:"omitempty,gte=0"`
	OverheadRate *float64 `json:"overhead_rate" validate:"omitempty,gte=0"`
}

func (h *HTTPHandler) BulkCosting(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	var input BulkCostingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	h.mutateDocument(w, r, id, func(doc *domain.PreQuotation) {
		doc.ApplyBulkCosting(input.MaterialRate, input.LaborRate, input.OverheadRate)
	})
}

// BulkMarginInput carries the uniform profit margin to apply.
type BulkMarginInput struct {
	ProfitMarginPercent float64 `json:"profit_margin_percent" validate:"gte=0"`
}

func (h *HTTPHandler) BulkMargin(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	var input BulkMarginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	h.mutateDocument(w, r, id, func(doc *domain.PreQuotation) {
		doc.ApplyBulkProfitMargin(input.ProfitMarginPercent)
	})
}

func (h *HTTPHandler) AutoEstimate(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	h.mutateDocument(w, r, id, func(doc *domain.PreQuotation) {
		doc.AutoEstimateCosting()
	})
}

// mutateDocument applies a costing mutation and persists the recalculated
// document. Costing stays open through the submitted state so manufacturing
// can enter its figures before Costing Done. Recalculation always happens
// inside mutate, before the write.
func (h *HTTPHandler) mutateDocument(w http.ResponseWriter, r *http.Request, id int64, mutate func(*domain.PreQuotation)) {
	doc, err := h.docs.GetPreQuotationByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve pre-quotation")
		return
	}
	if !doc.CostingEditable() {
		respondWithDomainError(w, &domain.PreconditionError{
			Message: "costs can only be modified in draft or submitted state",
		}, "")
		return
	}

	mutate(doc)

	updated, err := h.docs.UpdatePreQuotation(r.Context(), doc)
	if err != nil {
		respondWithDomainError(w, err, "Failed to update pre-quotation")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// --- Conversion and reads ---

func (h *HTTPHandler) ConvertDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	created, err := h.materializer.Materialize(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to create quotation")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) PreviewDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	doc, err := h.docs.GetPreQuotationByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve pre-quotation")
		return
	}
	respondWithJSON(w, http.StatusOK, quotation.BuildPreview(doc, time.Now()))
}

func (h *HTTPHandler) DocumentSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	doc, err := h.docs.GetPreQuotationByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve pre-quotation")
		return
	}
	respondWithJSON(w, http.StatusOK, doc.Summary())
}

func (h *HTTPHandler) DocumentWorksheet(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid pre-quotation ID format")
		return
	}

	doc, err := h.docs.GetPreQuotationByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve pre-quotation")
		return
	}
	respondWithJSON(w, http.StatusOK, doc.ManufacturingWorksheet())
}

func (h *HTTPHandler) GetQuotation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	q, err := h.quotes.GetQuotationByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err, "Failed to retrieve quotation")
		return
	}
	respondWithJSON(w, http.StatusOK, q)
}
