// Package chart computes donut chart geometry from labeled amounts.
//
// The normalization keeps every slice wide enough to see and hover while
// preserving the chart total, so tooltips can show real amounts even though
// the drawn angles are distorted.
package chart

import (
	"errors"
	"fmt"
	"math"
)

const (
	fullCircleDeg = 360.0

	// relativeEpsilon guards the infeasibility checks against rounding noise.
	relativeEpsilon = 1e-12

	// fallbackValue is the adjusted value given to every slice when the
	// total is zero and proportions carry no meaning.
	fallbackValue = 1.0
)

// ErrInvalidInput is wrapped by every precondition failure of Normalize.
var ErrInvalidInput = errors.New("invalid chart input")

// Slice is one labeled amount of a proportion chart.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Result pairs the original value of a slice with the value used to draw it.
type Result struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Adjusted float64 `json:"adjusted"`
}

// Normalize returns one Result per slice, in input order, such that every
// slice spans at least minAngleDeg degrees once drawn while the sum of the
// adjusted values stays equal to the sum of the inputs.
//
// When the constraint cannot be met (minAngleDeg*n >= 360) or the total is
// zero, every slice gets the same adjusted value instead. Invalid input is
// rejected with an error wrapping ErrInvalidInput and no partial result.
func Normalize(slices []Slice, minAngleDeg float64) ([]Result, error) {
	results, _, err := normalize(slices, minAngleDeg)
	return results, err
}

// normalize also reports whether the equal-distribution fallback was used.
func normalize(slices []Slice, minAngleDeg float64) ([]Result, bool, error) {
	if err := validate(slices, minAngleDeg); err != nil {
		return nil, false, err
	}

	n := float64(len(slices))
	var total float64
	for _, s := range slices {
		total += s.Value
	}
	if math.IsInf(total, 0) {
		return nil, false, fmt.Errorf("%w: sum of values overflows", ErrInvalidInput)
	}

	if minAngleDeg*n >= fullCircleDeg || total <= 0 {
		return uniform(slices, equalShare(total, n)), true, nil
	}

	minValue := minAngleDeg / fullCircleDeg * total
	if minAngleDeg > 0 && minValue <= 0 {
		// Subnormal total: the minimum underflowed, so no split can keep
		// every adjusted value positive.
		return uniform(slices, equalShare(total, n)), true, nil
	}

	small := make([]bool, len(slices))
	var smallCount int
	for i, s := range slices {
		if s.Value < minValue {
			small[i] = true
			smallCount++
		}
	}

	// Scaling the large slices down can push one of them under the minimum,
	// so reclassify until no large slice shrinks below it. The set of small
	// slices only grows, which bounds the loop by len(slices).
	var scale float64
	for {
		reserved := float64(smallCount) * minValue
		if reserved >= total-relativeEpsilon*total {
			return uniform(slices, equalShare(total, n)), true, nil
		}

		var largeSum float64
		for i, s := range slices {
			if !small[i] {
				largeSum += s.Value
			}
		}
		scale = 0
		if largeSum > 0 {
			scale = (total - reserved) / largeSum
		}

		moved := false
		for i, s := range slices {
			if !small[i] && s.Value*scale < minValue {
				small[i] = true
				smallCount++
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	results := make([]Result, len(slices))
	for i, s := range slices {
		adjusted := s.Value * scale
		if small[i] {
			adjusted = minValue
		}
		results[i] = Result{Label: s.Label, Value: s.Value, Adjusted: adjusted}
	}
	return results, false, nil
}

// equalShare is total/n, or fallbackValue when that is not positive.
func equalShare(total, n float64) float64 {
	if eq := total / n; eq > 0 {
		return eq
	}
	return fallbackValue
}

func uniform(slices []Slice, value float64) []Result {
	results := make([]Result, len(slices))
	for i, s := range slices {
		results[i] = Result{Label: s.Label, Value: s.Value, Adjusted: value}
	}
	return results
}

func validate(slices []Slice, minAngleDeg float64) error {
	if len(slices) == 0 {
		return fmt.Errorf("%w: no slices", ErrInvalidInput)
	}
	if err := ValidateMinAngle(minAngleDeg); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(slices))
	for i, s := range slices {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			return fmt.Errorf("%w: slice %d (%q) value %v is not finite", ErrInvalidInput, i, s.Label, s.Value)
		}
		if s.Value < 0 {
			return fmt.Errorf("%w: slice %d (%q) value %v is negative", ErrInvalidInput, i, s.Label, s.Value)
		}
		if _, dup := seen[s.Label]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidInput, s.Label)
		}
		seen[s.Label] = struct{}{}
	}
	return nil
}

// ValidateMinAngle checks the constraint on its own, for callers that need
// to reject a bad angle before any slices are known.
func ValidateMinAngle(minAngleDeg float64) error {
	if math.IsNaN(minAngleDeg) || math.IsInf(minAngleDeg, 0) {
		return fmt.Errorf("%w: minimum angle %v is not finite", ErrInvalidInput, minAngleDeg)
	}
	if minAngleDeg < 0 {
		return fmt.Errorf("%w: minimum angle %v is negative", ErrInvalidInput, minAngleDeg)
	}
	return nil
}
