package analyzer

import (
	"math"

	"github.com/phenrril/printquote/internal/domain"
)

const (
	bytesPerMB = 1024 * 1024
	// minSizeBytes stands in for empty or negative uploads so the scale stays finite.
	minSizeBytes = 1

	occupancyFactor     = 0.7
	shellFraction       = 0.12
	weightCalibration   = 0.65
	surfaceAreaFactor   = 1.5
	trianglesPerMB      = 10000
	baseTriangleCount   = 1000
	highTriangleCount   = 100000
	mediumTriangleCount = 50000

	probManifold        = 0.8
	probWatertight      = 0.7
	probNonIntersecting = 0.75
	probInvertedNormals = 0.1

	// floorEpsilon absorbs float error in floor(z / layerHeight), e.g. 1.2/0.1.
	floorEpsilon = 1e-9
)

const (
	ProblemNonManifold      = "Non-manifold edges detected"
	ProblemNotWatertight    = "Mesh is not watertight"
	ProblemSelfIntersecting = "Self-intersecting faces detected"
	ProblemInvertedNormals  = "Some normals may be inverted"
)

// Characterizer estimates physical properties of a model from its file descriptor. The
// geometry is synthesized from the file size through the Random source; swapping Measure
// for real mesh parsing leaves Derive and the Estimator untouched.
type Characterizer struct {
	cfg *ConfigStore
	rnd Random
}

func NewCharacterizer(cfg *ConfigStore, rnd Random) *Characterizer {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	return &Characterizer{cfg: cfg, rnd: rnd}
}

func (c *Characterizer) Analyze(file domain.ModelFile, opts domain.PrintOptions) domain.ModelCharacterization {
	return c.Derive(c.Measure(file), opts)
}

// Measure produces the option-independent geometry. All random draws happen here.
func (c *Characterizer) Measure(file domain.ModelFile) domain.Geometry {
	sizeMB := fileSizeMB(file.SizeBytes)
	maxDim := math.Cbrt(sizeMB * 10)

	dims := domain.Dimensions{
		X: round1(maxDim * uniform(c.rnd, 0.8, 1.2)),
		Y: round1(maxDim * uniform(c.rnd, 0.8, 1.2)),
		Z: round1(maxDim * uniform(c.rnd, 0.4, 0.7)),
	}

	mq := domain.MeshQuality{
		Manifold:        chance(c.rnd, probManifold),
		Watertight:      chance(c.rnd, probWatertight),
		NonIntersecting: chance(c.rnd, probNonIntersecting),
		Problems:        []string{},
	}
	if !mq.Manifold {
		mq.Problems = append(mq.Problems, ProblemNonManifold)
	}
	if !mq.Watertight {
		mq.Problems = append(mq.Problems, ProblemNotWatertight)
	}
	if !mq.NonIntersecting {
		mq.Problems = append(mq.Problems, ProblemSelfIntersecting)
	}
	if chance(c.rnd, probInvertedNormals) {
		mq.Problems = append(mq.Problems, ProblemInvertedNormals)
	}

	return domain.Geometry{
		Dimensions:    dims,
		TriangleCount: int(math.Floor(sizeMB*trianglesPerMB + baseTriangleCount)),
		MeshQuality:   mq,
	}
}

// Derive computes every option-dependent quantity from g. It is deterministic.
func (c *Characterizer) Derive(g domain.Geometry, opts domain.PrintOptions) domain.ModelCharacterization {
	cfg := c.cfg.load()
	o := resolve(cfg, opts)
	infill := *o.Infill
	d := g.Dimensions

	volume := int(math.Floor(d.X * d.Y * d.Z * occupancyFactor))

	infillFraction := float64(infill) / 100 * (1 - shellFraction)
	filled := shellFraction + infillFraction
	weight := int(math.Floor(float64(volume) * density(cfg, o.Material) * filled * weightCalibration))

	printTime := 0.0
	if speed := printSpeed(cfg, o.Quality); speed > 0 {
		printTime = round1(float64(volume) / (speed * 100))
	}

	problems := make([]string, len(g.MeshQuality.Problems))
	copy(problems, g.MeshQuality.Problems)
	mq := g.MeshQuality
	mq.Problems = problems

	return domain.ModelCharacterization{
		Dimensions:    d,
		Volume:        volume,
		Weight:        weight,
		PrintTime:     printTime,
		TriangleCount: g.TriangleCount,
		LayerCount:    int(math.Floor(d.Z/layerHeight(o.Quality) + floorEpsilon)),
		MeshQuality:   mq,
		Hollowness:    100 - infill,
		SurfaceArea:   int(math.Floor(float64(volume) * surfaceAreaFactor)),
		Complexity:    complexityFor(g.TriangleCount),
	}
}

func fileSizeMB(sizeBytes int64) float64 {
	if sizeBytes < minSizeBytes {
		sizeBytes = minSizeBytes
	}
	return float64(sizeBytes) / bytesPerMB
}

func layerHeight(q domain.PrintQuality) float64 {
	switch q {
	case domain.QualityDraft:
		return 0.3
	case domain.QualityHigh:
		return 0.1
	default:
		return 0.2
	}
}

func complexityFor(triangles int) domain.Complexity {
	switch {
	case triangles > highTriangleCount:
		return domain.ComplexityHigh
	case triangles > mediumTriangleCount:
		return domain.ComplexityMedium
	default:
		return domain.ComplexityLow
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
