package analyzer

import (
	"testing"

	"github.com/phenrril/printquote/internal/domain"
)

// sequenceRandom replays fixed draws, cycling when exhausted.
type sequenceRandom struct {
	vals []float64
	i    int
}

func (s *sequenceRandom) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func newTestAnalyzer(t *testing.T, draws ...float64) (*Characterizer, *Estimator, *ConfigStore) {
	t.Helper()
	store := NewConfigStore(domain.DefaultAnalyzerConfig())
	var rnd Random = NewSeededRandom(42)
	if len(draws) > 0 {
		rnd = &sequenceRandom{vals: draws}
	}
	return NewCharacterizer(store, rnd), NewEstimator(store), store
}

const tenMB = 10 * 1024 * 1024
