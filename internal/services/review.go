package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"lokal-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ReviewService handles review submission and keeps business stats in sync
// with the stored reviews.
type ReviewService struct {
	db *bun.DB
}

func NewReviewService(db *bun.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReviewRequest represents the request body
type CreateReviewRequest struct {
	Rating int     `json:"rating"`
	Title  *string `json:"title,omitempty"`
	Body   string  `json:"body"`
}

// CreateReview stores a review and recomputes the owning business's stats
// from the real review rows, replacing any ingestion-time placeholders.
func (s *ReviewService) CreateReview(ctx context.Context, businessID, userID uuid.UUID, req CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	// The business must exist before we accept a review for it
	exists, err := s.db.NewSelect().
		Model((*models.Business)(nil)).
		Where("id = ?", businessID).
		Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("business not found")
	}

	review := &models.Review{
		BusinessID: businessID,
		UserID:     userID,
		Rating:     req.Rating,
		Title:      req.Title,
		Body:       req.Body,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := s.db.NewInsert().Model(review).Exec(ctx); err != nil {
		return nil, err
	}

	if err := s.RecomputeStats(ctx, businessID); err != nil {
		return nil, fmt.Errorf("review stored but stats recompute failed: %w", err)
	}

	return review, nil
}

// ListReviews returns a business's reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]models.Review, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var reviews []models.Review
	total, err := s.db.NewSelect().
		Model(&reviews).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// RecomputeStats rebuilds count, average and histogram from the reviews
// table and upserts them on business_id. The service/price/ambience scores
// are left to their existing values via the conflict update.
func (s *ReviewService) RecomputeStats(ctx context.Context, businessID uuid.UUID) error {
	var rows []struct {
		Rating int `bun:"rating"`
		Count  int `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*models.Review)(nil)).
		Column("rating").
		ColumnExpr("COUNT(*) AS count").
		Where("business_id = ?", businessID).
		Group("rating").
		Scan(ctx, &rows)
	if err != nil {
		return err
	}

	hist := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	total := 0
	sum := 0
	for _, row := range rows {
		hist[strconv.Itoa(row.Rating)] = row.Count
		total += row.Count
		sum += row.Rating * row.Count
	}

	avg := 0.0
	if total > 0 {
		avg = math.Round(float64(sum)/float64(total)*100) / 100
	}

	stats := &models.BusinessStats{
		BusinessID:      businessID,
		TotalReviews:    total,
		AverageRating:   avg,
		RatingHistogram: hist,
	}

	_, err = s.db.NewInsert().
		Model(stats).
		On("CONFLICT (business_id) DO UPDATE").
		Set("total_reviews = EXCLUDED.total_reviews").
		Set("average_rating = EXCLUDED.average_rating").
		Set("rating_histogram = EXCLUDED.rating_histogram").
		Set("updated_at = NOW()").
		Exec(ctx)
	return err
}
