package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phenrril/printquote/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// OptionsRequest is the shape of print options accepted at the API edge.
type OptionsRequest struct {
	Material string `json:"material" validate:"omitempty,max=20"`
	Quality  string `json:"quality" validate:"omitempty,max=20"`
	Infill   *int   `json:"infill" validate:"omitempty,min=0,max=100"`
}

// ModelFileRequest is an upload descriptor sent as JSON instead of multipart.
type ModelFileRequest struct {
	OriginalName string `json:"original_name" validate:"required,max=255"`
	SizeBytes    int64  `json:"size_bytes" validate:"gte=0"`
}

// ValidateConfigPatch checks an analyzer configuration update. A replaced densities map must
// keep the default material and a replaced speeds map the default quality, since unknown
// values fall back to them.
func ValidateConfigPatch(p *domain.ConfigPatch) error {
	if p == nil {
		return invalid(errors.New("config patch cannot be nil"))
	}
	if p.Empty() {
		return invalid(errors.New("config patch has no fields"))
	}
	if err := validate.Struct(p); err != nil {
		return invalid(formatValidationError(err))
	}
	if p.MaterialDensities != nil {
		if _, ok := p.MaterialDensities[domain.DefaultMaterial]; !ok {
			return invalid(fmt.Errorf("MaterialDensities: must include %q", domain.DefaultMaterial))
		}
	}
	if p.PrintSpeeds != nil {
		if _, ok := p.PrintSpeeds[domain.DefaultQuality]; !ok {
			return invalid(fmt.Errorf("PrintSpeeds: must include %q", domain.DefaultQuality))
		}
	}
	return nil
}

func ValidateOptions(req *OptionsRequest) error {
	if req == nil {
		return invalid(errors.New("options cannot be nil"))
	}
	if err := validate.Struct(req); err != nil {
		return invalid(formatValidationError(err))
	}
	return nil
}

func ValidateModelFile(req *ModelFileRequest) error {
	if req == nil {
		return invalid(errors.New("model file cannot be nil"))
	}
	if err := validate.Struct(req); err != nil {
		return invalid(formatValidationError(err))
	}
	return nil
}

// ToPrintOptions normalizes case and whitespace. Unknown materials and qualities pass through;
// the analyzer falls back to its defaults for them.
func (r OptionsRequest) ToPrintOptions() domain.PrintOptions {
	return domain.PrintOptions{
		Material: domain.Material(strings.ToLower(strings.TrimSpace(r.Material))),
		Quality:  domain.PrintQuality(strings.ToLower(strings.TrimSpace(r.Quality))),
		Infill:   r.Infill,
	}
}

// ParseInfill accepts free text such as "20", " 20 % " or "20.0". Empty input means unset.
func ParseInfill(raw string) (*int, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, invalid(fmt.Errorf("Infill: %q is not a number", raw))
	}
	return InfillFromFloat(f)
}

// InfillFromFloat accepts whole percentages written as floats (20, 20.0). Fractions and
// non-finite values are rejected rather than truncated.
func InfillFromFloat(f float64) (*int, error) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return nil, invalid(errors.New("Infill: must be a finite number"))
	case f < 0 || f > 100:
		return nil, invalid(fmt.Errorf("Infill: %v is outside 0..100", f))
	case f != math.Trunc(f):
		return nil, invalid(fmt.Errorf("Infill: %v is not a whole percentage", f))
	}
	n := int(f)
	return &n, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: is required", e.Field()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s", e.Field(), e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s: must be at most %s", e.Field(), e.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s validation", e.Field(), e.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
