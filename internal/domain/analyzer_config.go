package domain

// AnalyzerConfig holds the calibration values shared by the characterizer and the estimator.
// The keys of MaterialDensities and PrintSpeeds are the supported materials and quality tiers.
type AnalyzerConfig struct {
	MaterialDensities map[Material]float64     `json:"material_densities"`
	PrintSpeeds       map[PrintQuality]float64 `json:"print_speeds"`
	MachineHourlyRate float64                  `json:"machine_hourly_rate"`
	DefaultInfill     int                      `json:"default_infill"`
}

func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MaterialDensities: map[Material]float64{
			MaterialPLA:   1.24,
			MaterialABS:   1.04,
			MaterialPETG:  1.27,
			MaterialTPU:   1.21,
			MaterialNylon: 1.14,
		},
		PrintSpeeds: map[PrintQuality]float64{
			QualityDraft:    1.2,
			QualityStandard: 0.8,
			QualityHigh:     0.5,
			QualityUltra:    0.4,
		},
		MachineHourlyRate: 1.5,
		DefaultInfill:     20,
	}
}

// Clone returns a deep copy so the result can be handed out without sharing maps.
func (c AnalyzerConfig) Clone() AnalyzerConfig {
	out := c
	out.MaterialDensities = make(map[Material]float64, len(c.MaterialDensities))
	for k, v := range c.MaterialDensities {
		out.MaterialDensities[k] = v
	}
	out.PrintSpeeds = make(map[PrintQuality]float64, len(c.PrintSpeeds))
	for k, v := range c.PrintSpeeds {
		out.PrintSpeeds[k] = v
	}
	return out
}

// ConfigPatch is a partial update: nil fields keep their current value, non-nil fields
// replace the whole top-level value.
type ConfigPatch struct {
	MaterialDensities map[Material]float64     `json:"material_densities" validate:"omitempty,min=1,dive,keys,required,endkeys,gt=0"`
	PrintSpeeds       map[PrintQuality]float64 `json:"print_speeds" validate:"omitempty,min=1,dive,keys,required,endkeys,gt=0"`
	MachineHourlyRate *float64                 `json:"machine_hourly_rate" validate:"omitempty,gte=0"`
	DefaultInfill     *int                     `json:"default_infill" validate:"omitempty,min=0,max=100"`
}

func (p ConfigPatch) Empty() bool {
	return p.MaterialDensities == nil && p.PrintSpeeds == nil && p.MachineHourlyRate == nil && p.DefaultInfill == nil
}
