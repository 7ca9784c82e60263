package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Quote struct {
	ID               uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	UploadedModelID  uuid.UUID             `gorm:"type:uuid;index" json:"uploaded_model_id"`
	Material         Material              `gorm:"type:varchar(10)" json:"material"`
	Quality          PrintQuality          `gorm:"type:varchar(10)" json:"quality"`
	InfillPct        int                   `gorm:"type:int" json:"infill_pct"`
	Characterization ModelCharacterization `gorm:"type:jsonb;serializer:json" json:"characterization"`
	Cost             CostBreakdown         `gorm:"type:jsonb;serializer:json" json:"cost"`
	Recommendation   Recommendation        `gorm:"type:jsonb;serializer:json" json:"recommendation"`
	TotalCost        float64               `gorm:"type:decimal(12,2)" json:"total_cost"`
	ExpireAt         time.Time             `gorm:"index" json:"expire_at"`
	CreatedAt        time.Time             `json:"created_at"`
}

type QuoteRepo interface {
	Save(ctx context.Context, q *Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	ListRecent(ctx context.Context, limit int) ([]Quote, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
