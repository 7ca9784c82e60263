package analyzer

import (
	"math/rand/v2"
	"sync"
)

// Random is the single source of every stochastic draw in the characterizer.
type Random interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom draws from the process-wide generator.
func DefaultRandom() Random { return globalRandom{} }

type seededRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRandom returns a reproducible source, safe for concurrent use.
func NewSeededRandom(seed uint64) Random {
	return &seededRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRandom) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func uniform(r Random, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func chance(r Random, p float64) bool {
	return r.Float64() < p
}
