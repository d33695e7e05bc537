package chart

import (
	"fmt"
	"math"

	"grafico/internal/core"
)

// ValidateSpec structurally validates a specification before it leaves the
// pipeline. A failure here is a pipeline defect, not bad user input: nothing
// that fails validation may be persisted or returned. Every error wraps
// core.ErrSpecInvalid.
func ValidateSpec(spec Spec) error {
	switch spec.Type {
	case ChartTypePie, ChartTypeLine, ChartTypeBar:
	default:
		return specErr("unknown chart type %q", spec.Type)
	}
	if spec.Title == "" {
		return specErr("missing title")
	}
	if len(spec.Series) == 0 {
		return specErr("no series")
	}
	for _, s := range spec.Series {
		if s.Name == "" {
			return specErr("series without a name")
		}
		for i, v := range s.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return specErr("series %q has a non-finite value at index %d", s.Name, i)
			}
		}
	}

	if spec.Type == ChartTypePie {
		return validatePie(spec)
	}
	return validateAxisChart(spec)
}

func validatePie(spec Spec) error {
	if len(spec.Series) != 1 {
		return specErr("pie chart requires exactly one series, got %d", len(spec.Series))
	}
	s := spec.Series[0]
	if len(s.Data) == 0 {
		return specErr("pie series is empty")
	}
	if len(s.Labels) != len(s.Data) {
		return specErr("pie series has %d labels for %d values", len(s.Labels), len(s.Data))
	}
	if len(spec.Legend) != len(s.Labels) {
		return specErr("pie legend has %d entries for %d slices", len(spec.Legend), len(s.Labels))
	}
	for i, label := range s.Labels {
		if spec.Legend[i] != label {
			return specErr("pie legend entry %d (%q) does not match slice label %q", i, spec.Legend[i], label)
		}
	}
	return nil
}

func validateAxisChart(spec Spec) error {
	if spec.XAxis == nil {
		return specErr("%s chart requires an x axis", spec.Type)
	}
	if len(spec.XAxis.Labels) == 0 {
		return specErr("x axis has no labels")
	}
	if len(spec.Legend) != len(spec.Series) {
		return specErr("legend has %d entries for %d series", len(spec.Legend), len(spec.Series))
	}
	for i, s := range spec.Series {
		if len(s.Data) != len(spec.XAxis.Labels) {
			return specErr("series %q has %d values for %d axis labels", s.Name, len(s.Data), len(spec.XAxis.Labels))
		}
		if len(s.Labels) != 0 {
			return specErr("series %q carries slice labels on an axis chart", s.Name)
		}
		if spec.Legend[i] != s.Name {
			return specErr("legend entry %d (%q) does not match series name %q", i, spec.Legend[i], s.Name)
		}
	}
	return nil
}

func specErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", core.ErrSpecInvalid, fmt.Sprintf(format, args...))
}
