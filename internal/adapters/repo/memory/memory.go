// Package memory keeps uploaded models and quotes in process memory. It backs the service
// when no database is configured and the use case tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/printquote/internal/domain"
)

type UploadedModelRepo struct {
	mu     sync.RWMutex
	models map[uuid.UUID]domain.UploadedModel
}

func NewUploadedModelRepo() *UploadedModelRepo {
	return &UploadedModelRepo{models: map[uuid.UUID]domain.UploadedModel{}}
}

func (r *UploadedModelRepo) Save(_ context.Context, m *domain.UploadedModel) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[m.ID] = *m
	return nil
}

func (r *UploadedModelRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.UploadedModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

type QuoteRepo struct {
	mu     sync.RWMutex
	quotes map[uuid.UUID]domain.Quote
}

func NewQuoteRepo() *QuoteRepo {
	return &QuoteRepo{quotes: map[uuid.UUID]domain.Quote{}}
}

func (r *QuoteRepo) Save(_ context.Context, q *domain.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[q.ID] = *q
	return nil
}

func (r *QuoteRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &q, nil
}

func (r *QuoteRepo) ListRecent(_ context.Context, limit int) ([]domain.Quote, error) {
	if limit <= 0 {
		limit = 200
	}
	r.mu.RLock()
	list := make([]domain.Quote, 0, len(r.quotes))
	for _, q := range r.quotes {
		list = append(list, q)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *QuoteRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, q := range r.quotes {
		if q.ExpireAt.Before(now) {
			delete(r.quotes, id)
			n++
		}
	}
	return n, nil
}
