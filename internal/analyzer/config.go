package analyzer

import (
	"sync"
	"sync/atomic"

	"github.com/phenrril/printquote/internal/domain"
	"github.com/phenrril/printquote/internal/validation"
)

// ConfigStore owns the analyzer configuration. Readers load an immutable snapshot without
// locking; Update builds a merged copy and swaps it in, so a reader sees either the old or
// the new configuration and never a mix.
type ConfigStore struct {
	mu  sync.Mutex
	cur atomic.Pointer[domain.AnalyzerConfig]
}

func NewConfigStore(base domain.AnalyzerConfig) *ConfigStore {
	s := &ConfigStore{}
	c := base.Clone()
	s.cur.Store(&c)
	return s
}

// Snapshot returns a copy of the current configuration.
func (s *ConfigStore) Snapshot() domain.AnalyzerConfig {
	return s.load().Clone()
}

func (s *ConfigStore) load() *domain.AnalyzerConfig {
	return s.cur.Load()
}

// Update merges p into the current configuration and returns the snapshot it stored.
// Only the fields present in p are replaced.
func (s *ConfigStore) Update(p domain.ConfigPatch) (domain.AnalyzerConfig, error) {
	if err := validation.ValidateConfigPatch(&p); err != nil {
		return domain.AnalyzerConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.load().Clone()
	if p.MaterialDensities != nil {
		next.MaterialDensities = make(map[domain.Material]float64, len(p.MaterialDensities))
		for k, v := range p.MaterialDensities {
			next.MaterialDensities[k] = v
		}
	}
	if p.PrintSpeeds != nil {
		next.PrintSpeeds = make(map[domain.PrintQuality]float64, len(p.PrintSpeeds))
		for k, v := range p.PrintSpeeds {
			next.PrintSpeeds[k] = v
		}
	}
	if p.MachineHourlyRate != nil {
		next.MachineHourlyRate = *p.MachineHourlyRate
	}
	if p.DefaultInfill != nil {
		next.DefaultInfill = *p.DefaultInfill
	}
	s.cur.Store(&next)
	return next.Clone(), nil
}

// Resolve fills in defaults. Materials and qualities outside the configured sets fall back to
// pla and standard; infill is clamped to 0..100.
func (s *ConfigStore) Resolve(opts domain.PrintOptions) domain.PrintOptions {
	return resolve(s.load(), opts)
}

func resolve(cfg *domain.AnalyzerConfig, opts domain.PrintOptions) domain.PrintOptions {
	out := domain.PrintOptions{Material: domain.DefaultMaterial, Quality: domain.DefaultQuality}
	if _, ok := cfg.MaterialDensities[opts.Material]; ok {
		out.Material = opts.Material
	}
	if _, ok := cfg.PrintSpeeds[opts.Quality]; ok {
		out.Quality = opts.Quality
	}
	infill := cfg.DefaultInfill
	if opts.Infill != nil {
		infill = *opts.Infill
	}
	out.Infill = domain.IntPtr(clampPercent(infill))
	return out
}

func density(cfg *domain.AnalyzerConfig, m domain.Material) float64 {
	if d, ok := cfg.MaterialDensities[m]; ok {
		return d
	}
	return cfg.MaterialDensities[domain.DefaultMaterial]
}

func printSpeed(cfg *domain.AnalyzerConfig, q domain.PrintQuality) float64 {
	if v, ok := cfg.PrintSpeeds[q]; ok {
		return v
	}
	return cfg.PrintSpeeds[domain.DefaultQuality]
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
