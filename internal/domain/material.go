package domain

type Material string

const (
	MaterialPLA   Material = "pla"
	MaterialABS   Material = "abs"
	MaterialPETG  Material = "petg"
	MaterialTPU   Material = "tpu"
	MaterialNylon Material = "nylon"
)

// DefaultMaterial is used whenever a request names no material or one outside the configured set.
const DefaultMaterial = MaterialPLA

type PrintQuality string

const (
	QualityDraft    PrintQuality = "draft"
	QualityStandard PrintQuality = "standard"
	QualityHigh     PrintQuality = "high"
	QualityUltra    PrintQuality = "ultra"
)

const DefaultQuality = QualityStandard

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)
