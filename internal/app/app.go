package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/phenrril/printquote/internal/adapters/httpserver"
	"github.com/phenrril/printquote/internal/adapters/repo/memory"
	"github.com/phenrril/printquote/internal/adapters/repo/postgres"
	"github.com/phenrril/printquote/internal/analyzer"
	"github.com/phenrril/printquote/internal/config"
	"github.com/phenrril/printquote/internal/domain"
	"github.com/phenrril/printquote/internal/metrics"
	"github.com/phenrril/printquote/internal/usecase"
)

type App struct {
	DB             *gorm.DB
	Config         config.Config
	AnalyzerConfig *analyzer.ConfigStore
	AnalysisUC     *usecase.AnalysisUC
	Metrics        *metrics.Registry
}

// NewApp wires repositories, analyzer and use case. db may be nil only with the memory driver.
func NewApp(db *gorm.DB, cfg config.Config) (*App, error) {
	var (
		models domain.UploadedModelRepo
		quotes domain.QuoteRepo
	)
	switch cfg.DBDriver {
	case config.DriverMemory:
		models = memory.NewUploadedModelRepo()
		quotes = memory.NewQuoteRepo()
	default:
		if db == nil {
			return nil, errors.New("db requerida para driver postgres")
		}
		models = postgres.NewUploadedModelRepo(db)
		quotes = postgres.NewQuoteRepo(db)
	}

	store := analyzer.NewConfigStore(domain.DefaultAnalyzerConfig())
	if !cfg.Analyzer.Empty() {
		if _, err := store.Update(cfg.Analyzer); err != nil {
			return nil, err
		}
	}

	rnd := analyzer.DefaultRandom()
	if cfg.RandSeed != nil {
		rnd = analyzer.NewSeededRandom(*cfg.RandSeed)
	}

	reg := metrics.DefaultRegistry()
	uc := usecase.NewAnalysisUC(models, quotes, store, rnd, reg)
	if cfg.QuoteTTL > 0 {
		uc.QuoteTTL = cfg.QuoteTTL
	}
	if cfg.GeometryCacheSize > 0 {
		uc.SetGeometryCacheSize(cfg.GeometryCacheSize)
	}

	return &App{DB: db, Config: cfg, AnalyzerConfig: store, AnalysisUC: uc, Metrics: reg}, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.AnalysisUC, a.Metrics)
}

func (a *App) Migrate() error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.AutoMigrate(&domain.UploadedModel{}, &domain.Quote{}); err != nil {
		return err
	}
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_quotes_created_at ON quotes(created_at)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_uploaded_models_created_at ON uploaded_models(created_at)").Error
	return nil
}

// RunQuoteJanitor purges expired quotes every interval until ctx is done.
func (a *App) RunQuoteJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := a.AnalysisUC.PurgeExpiredQuotes(ctx); err != nil {
				log.Error().Err(err).Msg("purgar cotizaciones")
			}
		}
	}
}
