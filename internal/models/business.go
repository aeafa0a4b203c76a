package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Price tiers, cheapest to most expensive.
const (
	PriceBudget   = "$"
	PriceModerate = "$$"
	PricePremium  = "$$$"
	PriceLuxury   = "$$$$"
)

// SourceOverpass marks businesses ingested from the Overpass API.
const SourceOverpass = "overpass"

// Business is a listed local business. Rows ingested from OSM carry
// source="overpass" and a source_id stable across ingestion runs.
type Business struct {
	bun.BaseModel `bun:"table:businesses,alias:b"`

	ID          uuid.UUID `bun:",pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Slug        string    `bun:"slug,notnull" json:"slug"`
	Category    string    `bun:"category,notnull" json:"category"`
	Location    string    `bun:"location,notnull" json:"location"`
	Address     *string   `bun:"address" json:"address,omitempty"`
	Phone       *string   `bun:"phone" json:"phone,omitempty"`
	Website     *string   `bun:"website" json:"website,omitempty"`
	Description *string   `bun:"description" json:"description,omitempty"`
	PriceRange  string    `bun:"price_range,notnull,default:'$$'" json:"price_range"`
	Verified    bool      `bun:"verified,notnull,default:false" json:"verified"`
	Latitude    *float64  `bun:"latitude" json:"latitude,omitempty"`
	Longitude   *float64  `bun:"longitude" json:"longitude,omitempty"`
	Source      string    `bun:"source,notnull" json:"source"`
	SourceID    string    `bun:"source_id,notnull" json:"source_id"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	// Relations
	Stats *BusinessStats `bun:"rel:has-one,join:id=business_id" json:"stats,omitempty"`
}

// BusinessStats is the per-business review aggregate, one row per business.
// Seeding writes placeholder values; stored reviews overwrite them with real
// aggregates.
type BusinessStats struct {
	bun.BaseModel `bun:"table:business_stats,alias:bs"`

	ID              uuid.UUID      `bun:",pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	BusinessID      uuid.UUID      `bun:"business_id,notnull,type:uuid" json:"business_id"`
	TotalReviews    int            `bun:"total_reviews,notnull" json:"total_reviews"`
	AverageRating   float64        `bun:"average_rating,notnull" json:"average_rating"`
	RatingHistogram map[string]int `bun:"rating_histogram,type:jsonb" json:"rating_histogram"`
	ServiceScore    int            `bun:"service_score,notnull" json:"service_score"`
	PriceScore      int            `bun:"price_score,notnull" json:"price_score"`
	AmbienceScore   int            `bun:"ambience_score,notnull" json:"ambience_score"`
	UpdatedAt       time.Time      `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// BusinessFilterParams defines query parameters for listing businesses
type BusinessFilterParams struct {
	Categories  []string
	Locations   []string
	PriceRanges []string
	Search      string
	Limit       int
	Offset      int
}

// BusinessListResponse represents the paginated listing response
type BusinessListResponse struct {
	Data  []Business `json:"data"`
	Total int        `json:"total"`
}

// CategoryCount is one row of the category facet
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
