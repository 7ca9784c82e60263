package analyzer

import (
	"math"
	"strconv"

	"github.com/phenrril/printquote/internal/domain"
)

const (
	timeScalingFactor   = 0.3
	totalDiscountFactor = 0.5
)

// pricePerGram covers every built-in material. Materials added through configuration without an
// entry here are priced as pla.
var pricePerGram = map[domain.Material]float64{
	domain.MaterialPLA:   0.005,
	domain.MaterialABS:   0.006,
	domain.MaterialPETG:  0.007,
	domain.MaterialTPU:   0.01,
	domain.MaterialNylon: 0.015,
}

var qualityMultiplier = map[domain.PrintQuality]float64{
	domain.QualityDraft:    0.7,
	domain.QualityStandard: 1.0,
	domain.QualityHigh:     1.15,
	domain.QualityUltra:    1.3,
}

// Estimator prices a characterization and suggests print settings. Nothing is cached: every
// call reads the current configuration.
type Estimator struct {
	cfg *ConfigStore
}

func NewEstimator(cfg *ConfigStore) *Estimator {
	return &Estimator{cfg: cfg}
}

func (e *Estimator) Cost(c domain.ModelCharacterization, opts domain.PrintOptions) domain.CostBreakdown {
	cfg := e.cfg.load()
	o := resolve(cfg, opts)
	infill := *o.Infill

	ppg := materialPrice(o.Material)
	qm := qualityFactor(o.Quality)
	im := InfillMultiplier(infill)

	materialCost := float64(c.Weight) * ppg
	adjusted := materialCost * qm * im
	timeCost := c.PrintTime * cfg.MachineHourlyRate * timeScalingFactor
	total := (adjusted + timeCost) * totalDiscountFactor

	return domain.CostBreakdown{
		MaterialCost: money(adjusted * totalDiscountFactor),
		TimeCost:     money(timeCost * totalDiscountFactor),
		TotalCost:    money(total),
		Breakdown: domain.CostFactors{
			Material:                 o.Material,
			Quality:                  o.Quality,
			Infill:                   infill,
			PricePerGram:             ppg,
			BaseMaterialCost:         round2(materialCost),
			QualityMultiplier:        qm,
			InfillMultiplier:         im,
			HourlyRate:               cfg.MachineHourlyRate,
			TimeScalingFactor:        timeScalingFactor,
			TotalPriceDiscountFactor: totalDiscountFactor,
		},
	}
}

// InfillMultiplier scales material cost from 0.7 at 0% infill to 1.3 at 100%.
func InfillMultiplier(infill int) float64 {
	return 0.7 + float64(clampPercent(infill))/100*0.6
}

func materialPrice(m domain.Material) float64 {
	if p, ok := pricePerGram[m]; ok {
		return p
	}
	return pricePerGram[domain.DefaultMaterial]
}

func qualityFactor(q domain.PrintQuality) float64 {
	if f, ok := qualityMultiplier[q]; ok {
		return f
	}
	return qualityMultiplier[domain.DefaultQuality]
}

func money(v float64) string {
	r := round2(v)
	if r == 0 {
		r = math.Abs(r)
	}
	return strconv.FormatFloat(r, 'f', 2, 64)
}
