package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"lokal-bknd/internal/services"

	"go.uber.org/zap"
)

// SeedHandler exposes the OSM ingestion pipeline over HTTP.
type SeedHandler struct {
	service *services.SeedService
	logr    *zap.Logger
}

func NewSeedHandler(svc *services.SeedService, logr *zap.Logger) *SeedHandler {
	return &SeedHandler{service: svc, logr: logr}
}

// Seed handles POST /api/businesses/seed. Body: {limit?, category?, dryRun?}.
func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.SeedRequest
	if r.Body != nil {
		// an empty body means "use defaults"
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid request body",
			})
			return
		}
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}

	result, err := h.service.Seed(ctx, req)
	if err != nil {
		h.writeSeedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Preview handles GET /api/businesses/seed?limit=&category= — same fetch+map,
// nothing written.
func (h *SeedHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit := 20
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	businesses, err := h.service.Preview(ctx, limit, q.Get("category"))
	if err != nil {
		h.writeSeedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":      len(businesses),
		"businesses": businesses,
		"preview":    true,
	})
}

// writeSeedError maps pipeline failures to their {error, details} bodies.
func (h *SeedHandler) writeSeedError(w http.ResponseWriter, err error) {
	var se *services.SeedError
	if errors.As(err, &se) {
		h.logr.Error("seed run failed",
			zap.Int("status", se.Status), zap.String("reason", se.Message), zap.String("details", se.Details))
		body := map[string]string{"error": se.Message}
		if se.Details != "" {
			body["details"] = se.Details
		}
		writeJSON(w, se.Status, body)
		return
	}

	h.logr.Error("seed run failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "seed run failed",
		"details": err.Error(),
	})
}

// writeJSON writes a JSON response (shared by all handlers in this package)
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}
