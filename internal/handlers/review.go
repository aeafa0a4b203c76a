package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"lokal-bknd/internal/middleware"
	"lokal-bknd/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service *services.ReviewService
	logr    *zap.Logger
}

func NewReviewHandler(svc *services.ReviewService, logr *zap.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logr: logr}
}

// CreateReview handles POST /api/businesses/{id}/reviews (JWT protected)
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	businessID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid business id",
		})
		return
	}

	userIDStr, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "review body is required",
		})
		return
	}

	review, err := h.service.CreateReview(ctx, businessID, userID, req)
	if err != nil {
		h.logr.Error("failed to create review", zap.Error(err),
			zap.String("business_id", businessID.String()))
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

// ListReviews handles GET /api/businesses/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	businessID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid business id",
		})
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	reviews, total, err := h.service.ListReviews(ctx, businessID, limit, offset)
	if err != nil {
		h.logr.Error("failed to list reviews", zap.Error(err),
			zap.String("business_id", businessID.String()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve reviews",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  reviews,
		"total": total,
	})
}
