package services

import (
	"context"
	"strings"

	"lokal-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BusinessService serves the discovery read API over ingested businesses.
type BusinessService struct {
	db *bun.DB
}

func NewBusinessService(db *bun.DB) *BusinessService {
	return &BusinessService{db: db}
}

// ListBusinesses returns a filtered, paginated page of businesses with their
// stats attached.
func (s *BusinessService) ListBusinesses(
	ctx context.Context,
	params models.BusinessFilterParams,
) (*models.BusinessListResponse, error) {

	var businesses []models.Business

	q := s.db.NewSelect().
		Model(&businesses).
		Relation("Stats")

	if len(params.Categories) > 0 {
		lower := make([]string, len(params.Categories))
		for i, c := range params.Categories {
			lower[i] = strings.ToLower(c)
		}
		q = q.Where("LOWER(b.category) IN (?)", bun.In(lower))
	}

	if len(params.Locations) > 0 {
		lower := make([]string, len(params.Locations))
		for i, l := range params.Locations {
			lower[i] = strings.ToLower(l)
		}
		q = q.Where("LOWER(b.location) IN (?)", bun.In(lower))
	}

	if len(params.PriceRanges) > 0 {
		q = q.Where("b.price_range IN (?)", bun.In(params.PriceRanges))
	}

	if params.Search != "" {
		q = q.Where("b.name ILIKE ?", "%"+params.Search+"%")
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	total, err := q.Order("name ASC").
		Limit(limit).
		Offset(params.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}

	return &models.BusinessListResponse{
		Data:  businesses,
		Total: total,
	}, nil
}

// GetBusinessByID returns one business with its stats.
func (s *BusinessService) GetBusinessByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	business := new(models.Business)
	err := s.db.NewSelect().
		Model(business).
		Relation("Stats").
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return business, nil
}

// GetBusinessBySlug returns one business with its stats, looked up by slug.
func (s *BusinessService) GetBusinessBySlug(ctx context.Context, slug string) (*models.Business, error) {
	business := new(models.Business)
	err := s.db.NewSelect().
		Model(business).
		Relation("Stats").
		Where("b.slug = ?", slug).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return business, nil
}

// GetCategories returns the distinct categories currently listed, with counts.
func (s *BusinessService) GetCategories(ctx context.Context) ([]models.CategoryCount, error) {
	var categories []models.CategoryCount
	err := s.db.NewSelect().
		Model((*models.Business)(nil)).
		Column("category").
		ColumnExpr("COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(ctx, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
