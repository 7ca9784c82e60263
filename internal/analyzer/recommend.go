package analyzer

import "github.com/phenrril/printquote/internal/domain"

const (
	TipTallPLA        = "Use PLA for tall prints to reduce warping"
	TipLargePETG      = "PETG gives better layer adhesion for large volumes"
	TipHighQuality    = "High quality captures the fine detail of complex models"
	TipDraftQuality   = "Draft quality is enough for simple geometry and prints faster"
	TipHeavyInfill    = "Lower infill for heavy models to save material and time"
	TipTallThinInfill = "Higher infill for stability on tall, thin models"

	WarnLongPrint   = "Long print time: consider splitting the model into parts"
	WarnBuildVolume = "A dimension exceeds 20 cm: check the printer build volume"
)

// Recommend suggests material, quality and infill for c. It is deterministic; each axis is
// decided independently.
func (e *Estimator) Recommend(c domain.ModelCharacterization) domain.Recommendation {
	rec := domain.Recommendation{
		WarningMessages:  []string{},
		OptimizationTips: []string{},
	}
	d := c.Dimensions

	switch {
	case d.Z > 15:
		rec.SuggestedMaterial = materialPtr(domain.MaterialPLA)
		rec.OptimizationTips = append(rec.OptimizationTips, TipTallPLA)
	case c.Volume > 200:
		rec.SuggestedMaterial = materialPtr(domain.MaterialPETG)
		rec.OptimizationTips = append(rec.OptimizationTips, TipLargePETG)
	}

	switch c.Complexity {
	case domain.ComplexityHigh:
		rec.SuggestedQuality = qualityPtr(domain.QualityHigh)
		rec.OptimizationTips = append(rec.OptimizationTips, TipHighQuality)
	case domain.ComplexityLow:
		rec.SuggestedQuality = qualityPtr(domain.QualityDraft)
		rec.OptimizationTips = append(rec.OptimizationTips, TipDraftQuality)
	default:
		rec.SuggestedQuality = qualityPtr(domain.QualityStandard)
	}

	switch {
	case c.Weight > 200:
		rec.SuggestedInfill = domain.IntPtr(15)
		rec.OptimizationTips = append(rec.OptimizationTips, TipHeavyInfill)
	case d.Z > 10 && d.X < 5 && d.Y < 5:
		rec.SuggestedInfill = domain.IntPtr(30)
		rec.OptimizationTips = append(rec.OptimizationTips, TipTallThinInfill)
	default:
		rec.SuggestedInfill = domain.IntPtr(20)
	}

	rec.WarningMessages = append(rec.WarningMessages, c.MeshQuality.Problems...)
	if c.PrintTime > 8 {
		rec.WarningMessages = append(rec.WarningMessages, WarnLongPrint)
	}
	if d.Max() > 20 {
		rec.WarningMessages = append(rec.WarningMessages, WarnBuildVolume)
	}
	return rec
}

// Estimate runs cost and recommendation over the same characterization.
func (e *Estimator) Estimate(c domain.ModelCharacterization, opts domain.PrintOptions) domain.Estimate {
	return domain.Estimate{
		Characterization: c,
		Cost:             e.Cost(c, opts),
		Recommendation:   e.Recommend(c),
	}
}

func materialPtr(m domain.Material) *domain.Material { return &m }

func qualityPtr(q domain.PrintQuality) *domain.PrintQuality { return &q }
