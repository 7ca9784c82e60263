package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/printquote/internal/domain"
)

func TestCostBreakdown(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)
	c := domain.ModelCharacterization{Weight: 120, PrintTime: 2.4}

	got := e.Cost(c, domain.PrintOptions{Material: domain.MaterialPLA, Quality: domain.QualityStandard, Infill: domain.IntPtr(20)})

	assert.Equal(t, "0.25", got.MaterialCost)
	assert.Equal(t, "0.54", got.TimeCost)
	assert.Equal(t, "0.79", got.TotalCost)

	b := got.Breakdown
	assert.Equal(t, domain.MaterialPLA, b.Material)
	assert.Equal(t, domain.QualityStandard, b.Quality)
	assert.Equal(t, 20, b.Infill)
	assert.Equal(t, 0.005, b.PricePerGram)
	assert.Equal(t, 0.6, b.BaseMaterialCost)
	assert.Equal(t, 1.0, b.QualityMultiplier)
	assert.InDelta(t, 0.82, b.InfillMultiplier, 1e-12)
	assert.Equal(t, 1.5, b.HourlyRate)
	assert.Equal(t, 0.3, b.TimeScalingFactor)
	assert.Equal(t, 0.5, b.TotalPriceDiscountFactor)
}

func TestCostUnknownMaterialFallsBackToPLA(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)
	c := domain.ModelCharacterization{Weight: 120, PrintTime: 2.4}

	pla := e.Cost(c, domain.PrintOptions{Material: domain.MaterialPLA, Infill: domain.IntPtr(20)})
	unknown := e.Cost(c, domain.PrintOptions{Material: "carbon-unicorn", Infill: domain.IntPtr(20)})

	assert.Equal(t, pla, unknown)
	assert.Equal(t, domain.MaterialPLA, unknown.Breakdown.Material)
}

func TestCostUnknownQualityUsesStandardMultiplier(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)

	got := e.Cost(domain.ModelCharacterization{Weight: 50, PrintTime: 1}, domain.PrintOptions{Quality: "museum"})

	assert.Equal(t, domain.QualityStandard, got.Breakdown.Quality)
	assert.Equal(t, 1.0, got.Breakdown.QualityMultiplier)
}

func TestCostQualityMultipliers(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)
	c := domain.ModelCharacterization{Weight: 100, PrintTime: 1}

	want := map[domain.PrintQuality]float64{
		domain.QualityDraft:    0.7,
		domain.QualityStandard: 1.0,
		domain.QualityHigh:     1.15,
		domain.QualityUltra:    1.3,
	}
	for q, m := range want {
		got := e.Cost(c, domain.PrintOptions{Quality: q})
		assert.Equal(t, m, got.Breakdown.QualityMultiplier, string(q))
	}
}

func TestCostMaterialPrices(t *testing.T) {
	_, e, _ := newTestAnalyzer(t)
	c := domain.ModelCharacterization{Weight: 100}

	want := map[domain.Material]float64{
		domain.MaterialPLA:   0.005,
		domain.MaterialABS:   0.006,
		domain.MaterialPETG:  0.007,
		domain.MaterialTPU:   0.01,
		domain.MaterialNylon: 0.015,
	}
	for m, p := range want {
		got := e.Cost(c, domain.PrintOptions{Material: m})
		assert.Equal(t, p, got.Breakdown.PricePerGram, string(m))
	}
}

func TestCostReadsCurrentHourlyRate(t *testing.T) {
	_, e, store := newTestAnalyzer(t)
	c := domain.ModelCharacterization{PrintTime: 10}

	before := e.Cost(c, domain.PrintOptions{})
	rate := 3.0
	_, err := store.Update(domain.ConfigPatch{MachineHourlyRate: &rate})
	require.NoError(t, err)
	after := e.Cost(c, domain.PrintOptions{})

	assert.Equal(t, "2.25", before.TimeCost)
	assert.Equal(t, "4.50", after.TimeCost)
	assert.Equal(t, 3.0, after.Breakdown.HourlyRate)
}

func TestInfillMultiplierBounds(t *testing.T) {
	assert.InDelta(t, 0.7, InfillMultiplier(0), 1e-12)
	assert.InDelta(t, 1.0, InfillMultiplier(50), 1e-12)
	assert.InDelta(t, 1.3, InfillMultiplier(100), 1e-12)
	assert.InDelta(t, 1.3, InfillMultiplier(250), 1e-12)
	assert.InDelta(t, 0.7, InfillMultiplier(-4), 1e-12)
}
