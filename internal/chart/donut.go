package chart

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultMinAngleDeg is the minimum slice width used by the dashboard donut.
const DefaultMinAngleDeg = 45.0

// Formatter renders amounts for tooltips in a single fixed locale.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter returns the en-IN rupee formatter used by the dashboard.
func NewFormatter() *Formatter {
	return &Formatter{
		printer: message.NewPrinter(language.MustParse("en-IN")),
		unit:    currency.INR,
	}
}

// Format renders v with the currency symbol, rounded to two decimals.
func (f *Formatter) Format(v float64) string {
	return f.printer.Sprintf("%v %v", currency.Symbol(f.unit), number.Decimal(v, number.Scale(2)))
}

// Tooltip describes an arc using its original, undistorted value.
func (f *Formatter) Tooltip(a Arc) string {
	return a.Label + ": " + f.Format(a.Value)
}

// Segment is an arc together with its hover text.
type Segment struct {
	Arc
	Tooltip string `json:"tooltip"`
}

// Donut is everything a client needs to draw the category donut.
type Donut struct {
	Total       float64   `json:"total"`
	MinAngleDeg float64   `json:"min_angle_deg"`
	Fallback    bool      `json:"fallback"`
	Segments    []Segment `json:"segments"`
}

// BuildDonut normalizes slices, lays them out, and attaches tooltips.
// A nil formatter falls back to NewFormatter.
func BuildDonut(slices []Slice, minAngleDeg float64, f *Formatter) (Donut, error) {
	results, fallback, err := normalize(slices, minAngleDeg)
	if err != nil {
		return Donut{}, err
	}
	if f == nil {
		f = NewFormatter()
	}

	d := Donut{MinAngleDeg: minAngleDeg, Fallback: fallback}
	for _, s := range slices {
		d.Total += s.Value
	}
	for _, a := range Layout(results) {
		d.Segments = append(d.Segments, Segment{Arc: a, Tooltip: f.Tooltip(a)})
	}
	return d, nil
}
