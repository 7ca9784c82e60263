package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/printquote/internal/domain"
)

func baseCharacterization() domain.ModelCharacterization {
	return domain.ModelCharacterization{
		Dimensions:  domain.Dimensions{X: 8, Y: 8, Z: 5},
		Volume:      150,
		Weight:      50,
		PrintTime:   2,
		Complexity:  domain.ComplexityMedium,
		MeshQuality: domain.MeshQuality{Manifold: true, Watertight: true, NonIntersecting: true, Problems: []string{}},
	}
}

func TestRecommendDefaults(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)

	got := e.Recommend(baseCharacterization())

	assert.Nil(t, got.SuggestedMaterial)
	require.NotNil(t, got.SuggestedQuality)
	assert.Equal(t, domain.QualityStandard, *got.SuggestedQuality)
	require.NotNil(t, got.SuggestedInfill)
	assert.Equal(t, 20, *got.SuggestedInfill)
	assert.Empty(t, got.WarningMessages)
	assert.Empty(t, got.OptimizationTips)
	assert.NotNil(t, got.WarningMessages)
	assert.NotNil(t, got.OptimizationTips)
}

func TestRecommendMaterial(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)

	tall := baseCharacterization()
	tall.Dimensions.Z = 16
	tall.Volume = 500
	got := e.Recommend(tall)
	require.NotNil(t, got.SuggestedMaterial)
	assert.Equal(t, domain.MaterialPLA, *got.SuggestedMaterial)
	assert.Contains(t, got.OptimizationTips, TipTallPLA)
	assert.NotContains(t, got.OptimizationTips, TipLargePETG)

	large := baseCharacterization()
	large.Volume = 201
	got = e.Recommend(large)
	require.NotNil(t, got.SuggestedMaterial)
	assert.Equal(t, domain.MaterialPETG, *got.SuggestedMaterial)
	assert.Contains(t, got.OptimizationTips, TipLargePETG)
}

func TestRecommendQuality(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)

	c := baseCharacterization()
	c.TriangleCount = 120000
	c.Complexity = complexityFor(c.TriangleCount)
	got := e.Recommend(c)
	assert.Equal(t, domain.ComplexityHigh, c.Complexity)
	assert.Equal(t, domain.QualityHigh, *got.SuggestedQuality)
	assert.Contains(t, got.OptimizationTips, TipHighQuality)

	c.Complexity = domain.ComplexityLow
	got = e.Recommend(c)
	assert.Equal(t, domain.QualityDraft, *got.SuggestedQuality)
	assert.Contains(t, got.OptimizationTips, TipDraftQuality)
}

func TestRecommendInfill(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)

	heavy := baseCharacterization()
	heavy.Weight = 250
	heavy.Dimensions = domain.Dimensions{X: 3, Y: 3, Z: 5}
	got := e.Recommend(heavy)
	assert.Equal(t, 15, *got.SuggestedInfill)
	assert.Contains(t, got.OptimizationTips, TipHeavyInfill)

	// heavy wins even when the model is also tall and thin
	heavy.Dimensions.Z = 12
	got = e.Recommend(heavy)
	assert.Equal(t, 15, *got.SuggestedInfill)

	thin := baseCharacterization()
	thin.Weight = 50
	thin.Dimensions = domain.Dimensions{X: 3, Y: 3, Z: 12}
	got = e.Recommend(thin)
	assert.Equal(t, 30, *got.SuggestedInfill)
	assert.Contains(t, got.OptimizationTips, TipTallThinInfill)
}

func TestRecommendWarningsOrder(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)

	c := baseCharacterization()
	c.MeshQuality.Problems = []string{ProblemNonManifold, ProblemInvertedNormals}
	c.PrintTime = 9.5
	c.Dimensions.X = 21

	got := e.Recommend(c)

	assert.Equal(t, []string{ProblemNonManifold, ProblemInvertedNormals, WarnLongPrint, WarnBuildVolume}, got.WarningMessages)
}

func TestRecommendBuildVolumeAnyAxis(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)

	for name, tc := range map[string]struct {
		dims domain.Dimensions
		warn bool
	}{
		"fits":      {domain.Dimensions{X: 20, Y: 20, Z: 20}, false},
		"wide":      {domain.Dimensions{X: 20.1, Y: 3, Z: 3}, true},
		"deep":      {domain.Dimensions{X: 3, Y: 25, Z: 3}, true},
		"tall":      {domain.Dimensions{X: 3, Y: 3, Z: 21}, true},
		"all large": {domain.Dimensions{X: 30, Y: 30, Z: 30}, true},
	} {
		t.Run(name, func(t *testing.T) {
			c := baseCharacterization()
			c.Dimensions = tc.dims
			got := e.Recommend(c)
			if tc.warn {
				assert.Contains(t, got.WarningMessages, WarnBuildVolume)
			} else {
				assert.NotContains(t, got.WarningMessages, WarnBuildVolume)
			}
		})
	}
}

func TestRecommendIsDeterministic(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)
	c := baseCharacterization()
	c.Weight = 300
	c.MeshQuality.Problems = []string{ProblemNotWatertight}

	assert.Equal(t, e.Recommend(c), e.Recommend(c))
}

func TestEstimateBundlesResults(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)
	c := baseCharacterization()
	opts := domain.PrintOptions{Material: domain.MaterialABS}

	got := e.Estimate(c, opts)

	assert.Equal(t, c, got.Characterization)
	assert.Equal(t, e.Cost(c, opts), got.Cost)
	assert.Equal(t, e.Recommend(c), got.Recommendation)
}
