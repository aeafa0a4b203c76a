package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"lokal-bknd/internal/models"
	"lokal-bknd/internal/services"
	"lokal-bknd/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BusinessHandler struct {
	service *services.BusinessService
	logr    *zap.Logger
}

func NewBusinessHandler(svc *services.BusinessService, logr *zap.Logger) *BusinessHandler {
	return &BusinessHandler{service: svc, logr: logr}
}

// ListBusinesses handles GET /api/businesses
func (h *BusinessHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	params := models.BusinessFilterParams{
		Categories:  utils.ParseQueryList(q, "category"),
		Locations:   utils.ParseQueryList(q, "location"),
		PriceRanges: utils.ParseQueryList(q, "price"),
		Search:      q.Get("search"),
	}
	if v := q.Get("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		params.Offset, _ = strconv.Atoi(v)
	}

	response, err := h.service.ListBusinesses(ctx, params)
	if err != nil {
		h.logr.Error("failed to list businesses", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve businesses",
		})
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetBusiness handles GET /api/businesses/{id}; the path segment is a UUID or
// a slug.
func (h *BusinessHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idOrSlug := chi.URLParam(r, "id")

	var business *models.Business
	var err error

	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		business, err = h.service.GetBusinessByID(ctx, id)
	} else {
		business, err = h.service.GetBusinessBySlug(ctx, idOrSlug)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "business not found",
			})
			return
		}
		h.logr.Error("failed to get business", zap.Error(err), zap.String("id", idOrSlug))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve business",
		})
		return
	}

	writeJSON(w, http.StatusOK, business)
}

// GetCategories handles GET /api/categories
func (h *BusinessHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.service.GetCategories(ctx)
	if err != nil {
		h.logr.Error("failed to get categories", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve categories",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}
