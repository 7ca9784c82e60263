package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type UploadedModel struct {
	ID               uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	OriginalName     string                `gorm:"size:255" json:"original_name"`
	SizeBytes        int64                 `gorm:"not null;default:0" json:"size_bytes"`
	Material         Material              `gorm:"type:varchar(10)" json:"material"`
	Quality          PrintQuality          `gorm:"type:varchar(10)" json:"quality"`
	InfillPct        int                   `gorm:"type:int" json:"infill_pct"`
	Geometry         Geometry              `gorm:"type:jsonb;serializer:json" json:"geometry"`
	Characterization ModelCharacterization `gorm:"type:jsonb;serializer:json" json:"characterization"`
	CreatedAt        time.Time             `json:"created_at"`
}

func (m UploadedModel) File() ModelFile {
	return ModelFile{OriginalName: m.OriginalName, SizeBytes: m.SizeBytes}
}

type UploadedModelRepo interface {
	Save(ctx context.Context, m *UploadedModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*UploadedModel, error)
}
