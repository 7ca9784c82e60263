package domain

// ModelFile describes an uploaded model. The analyzer never reads the bytes.
type ModelFile struct {
	OriginalName string `json:"original_name"`
	SizeBytes    int64  `json:"size_bytes"`
}

// PrintOptions as requested by the customer. Empty fields are resolved against the
// analyzer configuration; Infill is a pointer so that 0% can be told apart from "unset".
type PrintOptions struct {
	Material Material     `json:"material,omitempty"`
	Quality  PrintQuality `json:"quality,omitempty"`
	Infill   *int         `json:"infill,omitempty"`
}

func IntPtr(v int) *int { return &v }

type Dimensions struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (d Dimensions) Max() float64 {
	m := d.X
	if d.Y > m {
		m = d.Y
	}
	if d.Z > m {
		m = d.Z
	}
	return m
}

type MeshQuality struct {
	Manifold        bool     `json:"manifold"`
	Watertight      bool     `json:"watertight"`
	NonIntersecting bool     `json:"non_intersecting"`
	Problems        []string `json:"problems"`
}

// Geometry is the measured part of a characterization: everything that does not depend on
// print options.
type Geometry struct {
	Dimensions    Dimensions  `json:"dimensions"`
	TriangleCount int         `json:"triangle_count"`
	MeshQuality   MeshQuality `json:"mesh_quality"`
}

type ModelCharacterization struct {
	Dimensions    Dimensions  `json:"dimensions"`
	Volume        int         `json:"volume"`
	Weight        int         `json:"weight"`
	PrintTime     float64     `json:"print_time"`
	TriangleCount int         `json:"triangle_count"`
	LayerCount    int         `json:"layer_count"`
	MeshQuality   MeshQuality `json:"mesh_quality"`
	Hollowness    int         `json:"hollowness"`
	SurfaceArea   int         `json:"surface_area"`
	Complexity    Complexity  `json:"complexity"`
}

// Geometry returns the option-independent part of c.
func (c ModelCharacterization) Geometry() Geometry {
	return Geometry{Dimensions: c.Dimensions, TriangleCount: c.TriangleCount, MeshQuality: c.MeshQuality}
}

type CostFactors struct {
	Material                 Material     `json:"material"`
	Quality                  PrintQuality `json:"quality"`
	Infill                   int          `json:"infill"`
	PricePerGram             float64      `json:"price_per_gram"`
	BaseMaterialCost         float64      `json:"base_material_cost"`
	QualityMultiplier        float64      `json:"quality_multiplier"`
	InfillMultiplier         float64      `json:"infill_multiplier"`
	HourlyRate               float64      `json:"hourly_rate"`
	TimeScalingFactor        float64      `json:"time_scaling_factor"`
	TotalPriceDiscountFactor float64      `json:"total_price_discount_factor"`
}

// CostBreakdown amounts are decimal strings with two places.
type CostBreakdown struct {
	MaterialCost string      `json:"material_cost"`
	TimeCost     string      `json:"time_cost"`
	TotalCost    string      `json:"total_cost"`
	Breakdown    CostFactors `json:"breakdown"`
}

type Recommendation struct {
	SuggestedMaterial *Material     `json:"suggested_material"`
	SuggestedQuality  *PrintQuality `json:"suggested_quality"`
	SuggestedInfill   *int          `json:"suggested_infill"`
	WarningMessages   []string      `json:"warning_messages"`
	OptimizationTips  []string      `json:"optimization_tips"`
}

// Estimate bundles the three results the analyzer produces for one request.
type Estimate struct {
	Characterization ModelCharacterization `json:"characterization"`
	Cost             CostBreakdown         `json:"cost"`
	Recommendation   Recommendation        `json:"recommendation"`
}
