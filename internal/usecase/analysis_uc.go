package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/printquote/internal/analyzer"
	"github.com/phenrril/printquote/internal/domain"
	"github.com/phenrril/printquote/internal/metrics"
)

const DefaultQuoteTTL = 72 * time.Hour

type AnalysisUC struct {
	Models        domain.UploadedModelRepo
	Quotes        domain.QuoteRepo
	Config        *analyzer.ConfigStore
	Characterizer *analyzer.Characterizer
	Estimator     *analyzer.Estimator
	Metrics       *metrics.Registry
	QuoteTTL      time.Duration

	cache *geometryCache
	now   func() time.Time
}

func NewAnalysisUC(models domain.UploadedModelRepo, quotes domain.QuoteRepo, cfg *analyzer.ConfigStore, rnd analyzer.Random, m *metrics.Registry) *AnalysisUC {
	if m == nil {
		m = metrics.NewRegistry()
	}
	return &AnalysisUC{
		Models:        models,
		Quotes:        quotes,
		Config:        cfg,
		Characterizer: analyzer.NewCharacterizer(cfg, rnd),
		Estimator:     analyzer.NewEstimator(cfg),
		Metrics:       m,
		QuoteTTL:      DefaultQuoteTTL,
		cache:         newGeometryCache(DefaultGeometryCacheSize),
		now:           time.Now,
	}
}

// Estimate characterizes a file and prices it without storing anything.
func (uc *AnalysisUC) Estimate(file domain.ModelFile, opts domain.PrintOptions) domain.Estimate {
	opts = uc.Config.Resolve(opts)
	ch := uc.Characterizer.Analyze(file, opts)
	uc.Metrics.RecordAnalysis(string(ch.Complexity))
	est := uc.Estimator.Estimate(ch, opts)
	uc.recordQuote(opts, est.Cost)
	return est
}

// Analyze characterizes an uploaded file and stores it so it can be quoted later.
func (uc *AnalysisUC) Analyze(ctx context.Context, file domain.ModelFile, opts domain.PrintOptions) (*domain.UploadedModel, error) {
	opts = uc.Config.Resolve(opts)
	g := uc.Characterizer.Measure(file)
	ch := uc.Characterizer.Derive(g, opts)

	m := &domain.UploadedModel{
		ID:               uuid.New(),
		OriginalName:     file.OriginalName,
		SizeBytes:        file.SizeBytes,
		Material:         opts.Material,
		Quality:          opts.Quality,
		InfillPct:        *opts.Infill,
		Geometry:         g,
		Characterization: ch,
		CreatedAt:        uc.now(),
	}
	if err := uc.Models.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("guardar modelo: %w", err)
	}
	uc.Metrics.SetCacheEntries(uc.cache.put(m.ID, g, uc.now()))
	uc.Metrics.RecordAnalysis(string(ch.Complexity))

	log.Info().
		Str("model_id", m.ID.String()).
		Str("file", file.OriginalName).
		Int64("size_bytes", file.SizeBytes).
		Int("volume", ch.Volume).
		Int("weight", ch.Weight).
		Str("complexity", string(ch.Complexity)).
		Msg("modelo analizado")
	return m, nil
}

func (uc *AnalysisUC) GetModel(ctx context.Context, id uuid.UUID) (*domain.UploadedModel, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: model id", domain.ErrInvalidInput)
	}
	return uc.Models.FindByID(ctx, id)
}

// Quote prices an uploaded model with the given options. The geometry comes from the cache
// or the stored model; characterization, cost and recommendation are recomputed every time.
func (uc *AnalysisUC) Quote(ctx context.Context, modelID uuid.UUID, opts domain.PrintOptions) (*domain.Quote, error) {
	g, err := uc.geometry(ctx, modelID)
	if err != nil {
		return nil, err
	}
	opts = uc.Config.Resolve(opts)
	ch := uc.Characterizer.Derive(g, opts)
	est := uc.Estimator.Estimate(ch, opts)

	total, _ := strconv.ParseFloat(est.Cost.TotalCost, 64)
	now := uc.now()
	q := &domain.Quote{
		ID:               uuid.New(),
		UploadedModelID:  modelID,
		Material:         opts.Material,
		Quality:          opts.Quality,
		InfillPct:        *opts.Infill,
		Characterization: ch,
		Cost:             est.Cost,
		Recommendation:   est.Recommendation,
		TotalCost:        total,
		ExpireAt:         now.Add(uc.ttl()),
		CreatedAt:        now,
	}
	if err := uc.Quotes.Save(ctx, q); err != nil {
		return nil, fmt.Errorf("guardar cotización: %w", err)
	}
	uc.recordQuote(opts, est.Cost)
	log.Debug().Str("quote_id", q.ID.String()).Str("model_id", modelID.String()).Str("total", est.Cost.TotalCost).Msg("cotización")
	return q, nil
}

func (uc *AnalysisUC) GetQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: quote id", domain.ErrInvalidInput)
	}
	return uc.Quotes.FindByID(ctx, id)
}

func (uc *AnalysisUC) ListQuotes(ctx context.Context, limit int) ([]domain.Quote, error) {
	return uc.Quotes.ListRecent(ctx, limit)
}

// SetGeometryCacheSize replaces the geometry cache with an empty one holding at most n entries.
func (uc *AnalysisUC) SetGeometryCacheSize(n int) {
	uc.cache = newGeometryCache(n)
	uc.Metrics.SetCacheEntries(0)
}

// PurgeExpiredQuotes removes quotes whose ExpireAt has passed and drops geometries that
// were not used for longer than the quote TTL.
func (uc *AnalysisUC) PurgeExpiredQuotes(ctx context.Context) (int64, error) {
	now := uc.now()
	if dropped := uc.cache.expire(now.Add(-uc.ttl())); dropped > 0 {
		uc.Metrics.SetCacheEntries(uc.cache.len())
		log.Debug().Int("entradas", dropped).Msg("geometrías vencidas")
	}
	n, err := uc.Quotes.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("eliminadas", n).Msg("cotizaciones vencidas")
	}
	return n, nil
}

func (uc *AnalysisUC) AnalyzerConfig() domain.AnalyzerConfig {
	return uc.Config.Snapshot()
}

func (uc *AnalysisUC) UpdateAnalyzerConfig(p domain.ConfigPatch) (domain.AnalyzerConfig, error) {
	cfg, err := uc.Config.Update(p)
	if err != nil {
		uc.Metrics.RecordConfigUpdate(false)
		log.Warn().Err(err).Msg("config del analizador rechazada")
		return domain.AnalyzerConfig{}, err
	}
	uc.Metrics.RecordConfigUpdate(true)
	log.Info().
		Float64("machine_hourly_rate", cfg.MachineHourlyRate).
		Int("default_infill", cfg.DefaultInfill).
		Int("materials", len(cfg.MaterialDensities)).
		Int("qualities", len(cfg.PrintSpeeds)).
		Msg("config del analizador actualizada")
	return cfg, nil
}

// ClearCache drops every cached geometry and returns how many entries were removed.
// Costs are never cached, so quotes are unaffected beyond re-reading stored geometry.
func (uc *AnalysisUC) ClearCache() int {
	n := uc.cache.clear()
	uc.Metrics.SetCacheEntries(0)
	log.Info().Int("entradas", n).Msg("cache de geometría limpiada")
	return n
}

func (uc *AnalysisUC) geometry(ctx context.Context, id uuid.UUID) (domain.Geometry, error) {
	if id == uuid.Nil {
		return domain.Geometry{}, fmt.Errorf("%w: model id", domain.ErrInvalidInput)
	}
	if g, ok := uc.cache.get(id, uc.now()); ok {
		uc.Metrics.RecordCacheLookup(true)
		return g, nil
	}
	uc.Metrics.RecordCacheLookup(false)

	m, err := uc.Models.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Geometry{}, err
		}
		return domain.Geometry{}, fmt.Errorf("buscar modelo: %w", err)
	}
	uc.Metrics.SetCacheEntries(uc.cache.put(id, m.Geometry, uc.now()))
	return m.Geometry, nil
}

func (uc *AnalysisUC) ttl() time.Duration {
	if uc.QuoteTTL <= 0 {
		return DefaultQuoteTTL
	}
	return uc.QuoteTTL
}

func (uc *AnalysisUC) recordQuote(opts domain.PrintOptions, cost domain.CostBreakdown) {
	total, _ := strconv.ParseFloat(cost.TotalCost, 64)
	uc.Metrics.RecordQuote(string(opts.Material), string(opts.Quality), total)
}
