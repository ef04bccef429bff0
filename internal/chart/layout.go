package chart

import "math"

// Arc is a drawable donut segment. Angles are in radians, clockwise from 0.
type Arc struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Adjusted   float64 `json:"adjusted"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
}

// Span returns the angular width of the arc in radians.
func (a Arc) Span() float64 {
	return a.EndAngle - a.StartAngle
}

// SpanDegrees returns the angular width of the arc in degrees.
func (a Arc) SpanDegrees() float64 {
	return a.Span() * 180 / math.Pi
}

// Layout places results one after another starting at angle 0, in input
// order. The last arc is pinned to 2π so rounding never leaves a gap.
func Layout(results []Result) []Arc {
	var total float64
	for _, r := range results {
		total += r.Adjusted
	}

	arcs := make([]Arc, len(results))
	var angle float64
	for i, r := range results {
		var span float64
		if total > 0 {
			span = 2 * math.Pi * r.Adjusted / total
		}
		arcs[i] = Arc{
			Label:      r.Label,
			Value:      r.Value,
			Adjusted:   r.Adjusted,
			StartAngle: angle,
			EndAngle:   angle + span,
		}
		angle += span
	}
	if len(arcs) > 0 && total > 0 {
		arcs[len(arcs)-1].EndAngle = 2 * math.Pi
	}
	return arcs
}
