package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Review is a single user review of a business.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID         uuid.UUID `bun:",pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	BusinessID uuid.UUID `bun:"business_id,notnull,type:uuid" json:"business_id"`
	UserID     uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Rating     int       `bun:"rating,notnull" json:"rating"`
	Title      *string   `bun:"title" json:"title,omitempty"`
	Body       string    `bun:"body,notnull" json:"body"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
