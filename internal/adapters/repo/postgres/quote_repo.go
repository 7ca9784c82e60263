package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/printquote/internal/domain"
)

type QuoteRepo struct{ db *gorm.DB }

func NewQuoteRepo(db *gorm.DB) *QuoteRepo { return &QuoteRepo{db: db} }

func (r *QuoteRepo) Save(ctx context.Context, q *domain.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *QuoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var q domain.Quote
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// ListRecent devuelve las últimas cotizaciones, más nuevas primero
func (r *QuoteRepo) ListRecent(ctx context.Context, limit int) ([]domain.Quote, error) {
	if limit <= 0 {
		limit = 200
	}
	var list []domain.Quote
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteExpired borra cotizaciones vencidas y devuelve cuántas se eliminaron
func (r *QuoteRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expire_at < ?", now).Delete(&domain.Quote{})
	return res.RowsAffected, res.Error
}
