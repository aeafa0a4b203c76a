package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"

	"lokal-bknd/internal/logger"
	"lokal-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Fetcher is the upstream source of raw OSM elements.
type Fetcher interface {
	FetchAreaBusinesses(ctx context.Context, limit int, category string) ([]models.OverpassElement, error)
}

// SeedService runs the ingestion pipeline: fetch raw elements, map them to
// businesses, upsert them through the conflict-strategy cascade, then seed
// placeholder stats.
type SeedService struct {
	db    *bun.DB
	fetch Fetcher
	logr  *logger.Logger
}

func NewSeedService(db *bun.DB, fetch Fetcher, logr *logger.Logger) *SeedService {
	return &SeedService{db: db, fetch: fetch, logr: logr}
}

// SeedRequest is the JSON body of POST /api/businesses/seed
type SeedRequest struct {
	Limit    int    `json:"limit,omitempty"`
	Category string `json:"category,omitempty"`
	DryRun   bool   `json:"dryRun,omitempty"`
}

// SeedResult is the success payload of a seed run
type SeedResult struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Count      int               `json:"count"`
	Businesses []models.Business `json:"businesses"`
	Warnings   []string          `json:"warnings,omitempty"`
	DryRun     bool              `json:"dryRun,omitempty"`
}

// SeedError carries the status and the `{error, details}` body surfaced to
// the caller. Details is a message, never a stack trace.
type SeedError struct {
	Status  int
	Message string
	Details string
}

func (e *SeedError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func seedFailure(status int, message string, err error) *SeedError {
	se := &SeedError{Status: status, Message: message}
	if err != nil {
		se.Details = err.Error()
	}
	return se
}

// conflictStrategy is one step of the insertion cascade. apply decorates a
// batch insert with its conflict handling; the last strategy leaves the
// insert plain.
type conflictStrategy struct {
	name  string
	apply func(*bun.InsertQuery) *bun.InsertQuery
}

var businessUpdateColumns = []string{
	"name", "category", "location", "address", "phone",
	"website", "description", "price_range", "latitude", "longitude",
}

func upsertOn(target string) func(*bun.InsertQuery) *bun.InsertQuery {
	return func(q *bun.InsertQuery) *bun.InsertQuery {
		q = q.On("CONFLICT (" + target + ") DO UPDATE")
		for _, col := range businessUpdateColumns {
			q = q.Set(col + " = EXCLUDED." + col)
		}
		return q.Set("updated_at = NOW()")
	}
}

// Ordered cascade: natural key first, slug if the schema lacks the composite
// constraint, plain insert as the last resort.
var insertStrategies = []conflictStrategy{
	{name: "natural-key upsert", apply: upsertOn("source, source_id")},
	{name: "slug upsert", apply: upsertOn("slug")},
	{name: "plain insert", apply: func(q *bun.InsertQuery) *bun.InsertQuery { return q }},
}

// Seed runs one ingestion pass. With DryRun set it stops after mapping and
// returns the preview without touching the store.
func (s *SeedService) Seed(ctx context.Context, req SeedRequest) (*SeedResult, error) {
	raw, err := s.fetch.FetchAreaBusinesses(ctx, req.Limit, req.Category)
	if err != nil {
		return nil, seedFailure(http.StatusBadGateway, "failed to fetch businesses from Overpass", err)
	}
	if len(raw) == 0 {
		return nil, seedFailure(http.StatusNotFound, "no businesses found for the requested area", nil)
	}

	businesses := make([]models.Business, 0, len(raw))
	for _, el := range raw {
		businesses = append(businesses, MapToBusiness(el))
	}

	if req.DryRun {
		return &SeedResult{
			Success:    true,
			Message:    fmt.Sprintf("dry run: %d businesses mapped, nothing inserted", len(businesses)),
			Count:      len(businesses),
			Businesses: businesses,
			DryRun:     true,
		}, nil
	}

	inserted, err := s.insertBusinesses(ctx, businesses)
	if err != nil {
		return nil, err
	}

	warnings := s.seedStats(ctx, inserted)

	return &SeedResult{
		Success:    true,
		Message:    fmt.Sprintf("seeded %d businesses", len(inserted)),
		Count:      len(inserted),
		Businesses: inserted,
		Warnings:   warnings,
	}, nil
}

// Preview re-runs fetch+map and returns the unsaved mapping, used by the
// read-only GET variant of the seed endpoint.
func (s *SeedService) Preview(ctx context.Context, limit int, category string) ([]models.Business, error) {
	raw, err := s.fetch.FetchAreaBusinesses(ctx, limit, category)
	if err != nil {
		return nil, seedFailure(http.StatusBadGateway, "failed to fetch businesses from Overpass", err)
	}

	businesses := make([]models.Business, 0, len(raw))
	for _, el := range raw {
		businesses = append(businesses, MapToBusiness(el))
	}
	return businesses, nil
}

// insertBusinesses walks the strategy cascade until one batch insert
// succeeds. Only if every strategy errors does the run fail.
func (s *SeedService) insertBusinesses(ctx context.Context, businesses []models.Business) ([]models.Business, error) {
	var lastErr error

	for _, strategy := range insertStrategies {
		rows := make([]models.Business, len(businesses))
		copy(rows, businesses)

		q := s.db.NewInsert().Model(&rows).Returning("*")
		q = strategy.apply(q)

		if _, err := q.Exec(ctx); err != nil {
			s.logr.Warn("insert strategy failed, falling through",
				zap.String("strategy", strategy.name), zap.Error(err))
			lastErr = err
			continue
		}

		if len(rows) == 0 {
			return nil, seedFailure(http.StatusInternalServerError, "nothing inserted", nil)
		}

		s.logr.Info("businesses inserted",
			zap.String("strategy", strategy.name), zap.Int("count", len(rows)))
		return rows, nil
	}

	return nil, seedFailure(http.StatusInternalServerError, "failed to insert businesses", lastErr)
}

// seedStats writes one placeholder stats row per inserted business, keyed on
// business_id. Failures never abort the run; they come back as warnings.
func (s *SeedService) seedStats(ctx context.Context, businesses []models.Business) []string {
	var warnings []string

	stats := make([]models.BusinessStats, 0, len(businesses))
	for _, b := range businesses {
		stats = append(stats, placeholderStats(b.ID))
	}

	_, err := s.db.NewInsert().
		Model(&stats).
		On("CONFLICT (business_id) DO UPDATE").
		Set("total_reviews = EXCLUDED.total_reviews").
		Set("average_rating = EXCLUDED.average_rating").
		Set("rating_histogram = EXCLUDED.rating_histogram").
		Set("service_score = EXCLUDED.service_score").
		Set("price_score = EXCLUDED.price_score").
		Set("ambience_score = EXCLUDED.ambience_score").
		Set("updated_at = NOW()").
		Exec(ctx)
	if err != nil {
		s.logr.Warn("stats seeding failed", zap.Error(err))
		warnings = append(warnings, "stats seeding failed: "+err.Error())
	}

	return warnings
}

// placeholderStats fabricates small starter numbers so freshly ingested
// businesses do not render as completely unrated. They are overwritten by
// real aggregates once reviews arrive.
func placeholderStats(businessID uuid.UUID) models.BusinessStats {
	// 0..4 reviews averaging 3.5..4.8
	total := rand.Intn(5)
	avg := math.Round((3.5+rand.Float64()*1.3)*10) / 10

	hist := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	for i := 0; i < total; i++ {
		bucket := int(math.Round(avg)) + rand.Intn(3) - 1
		if bucket < 1 {
			bucket = 1
		}
		if bucket > 5 {
			bucket = 5
		}
		hist[strconv.Itoa(bucket)]++
	}

	return models.BusinessStats{
		BusinessID:      businessID,
		TotalReviews:    total,
		AverageRating:   avg,
		RatingHistogram: hist,
		ServiceScore:    70 + rand.Intn(28), // 70..97
		PriceScore:      70 + rand.Intn(28),
		AmbienceScore:   70 + rand.Intn(28),
	}
}
