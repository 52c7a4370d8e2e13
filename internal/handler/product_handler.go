package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	products service.ProductService
	catalog  service.CatalogService
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products service.ProductService, catalogSvc service.CatalogService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		catalog:  catalogSvc,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	created, err := h.products.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Generate handles POST /api/products/generate requests.
func (h *ProductHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	created, err := h.products.Generate(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/products requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := service.ListingQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Sort:     r.URL.Query().Get("sort"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid limit parameter", h.logger)
			return
		}
		query.Limit = limit
	}

	items, err := h.catalog.List(r.Context(), query)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Resolve handles GET /api/products/{ref} requests. ref may be a numeric
// id, a slug or a composite virtual id; an explicit variant id comes from
// ?variant= and every other query parameter is an axis=value selection.
func (h *ProductHandler) Resolve(w http.ResponseWriter, r *http.Request, rawRef string) {
	ref := catalog.ParseRef(rawRef)

	var variantID int64
	if v := r.URL.Query().Get("variant"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid variant parameter", h.logger)
			return
		}
		variantID = id
	}

	selection := make(map[string]string)
	for key, values := range r.URL.Query() {
		if key == "variant" || len(values) == 0 {
			continue
		}
		selection[key] = values[0]
	}

	view, err := h.catalog.Resolve(r.Context(), ref, variantID, selection)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid product ID", h.logger)
		return
	}

	var req service.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	updated, err := h.products.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, model.ErrCodeInvalidJSON, "invalid product ID", h.logger)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
