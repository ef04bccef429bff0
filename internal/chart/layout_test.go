package chart

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_SequentialFromZero(t *testing.T) {
	rs := []Result{
		{Label: "a", Value: 1, Adjusted: 1},
		{Label: "b", Value: 3, Adjusted: 3},
		{Label: "c", Value: 0, Adjusted: 4},
	}
	arcs := Layout(rs)
	require.Len(t, arcs, 3)

	assert.Equal(t, 0.0, arcs[0].StartAngle)
	assert.InDelta(t, math.Pi/4, arcs[0].EndAngle, 1e-12)
	assert.Equal(t, arcs[0].EndAngle, arcs[1].StartAngle)
	assert.Equal(t, arcs[1].EndAngle, arcs[2].StartAngle)
	assert.Equal(t, 2*math.Pi, arcs[2].EndAngle)
	assert.InDelta(t, 180.0, arcs[2].SpanDegrees(), 1e-9)

	for i, a := range arcs {
		assert.Equal(t, rs[i].Label, a.Label)
		assert.Equal(t, rs[i].Value, a.Value)
	}
}

func TestLayout_Empty(t *testing.T) {
	assert.Empty(t, Layout(nil))
}

func TestBuildDonut(t *testing.T) {
	d, err := BuildDonut([]Slice{{"Rent", 1234}, {"Snacks", 0}}, 45, nil)
	require.NoError(t, err)

	assert.False(t, d.Fallback)
	assert.Equal(t, 1234.0, d.Total)
	assert.Equal(t, 45.0, d.MinAngleDeg)
	require.Len(t, d.Segments, 2)

	assert.InDelta(t, 45.0, d.Segments[1].SpanDegrees(), 1e-9)
	assert.True(t, strings.HasPrefix(d.Segments[0].Tooltip, "Rent: "))
	assert.Contains(t, d.Segments[0].Tooltip, "1,234")
	assert.Contains(t, d.Segments[0].Tooltip, "₹")
}

func TestBuildDonut_Fallback(t *testing.T) {
	d, err := BuildDonut([]Slice{{"a", 1}, {"b", 2}, {"c", 3}}, 130, NewFormatter())
	require.NoError(t, err)
	assert.True(t, d.Fallback)
	for _, s := range d.Segments {
		assert.InDelta(t, 120.0, s.SpanDegrees(), 1e-9)
	}
}

func TestBuildDonut_Invalid(t *testing.T) {
	_, err := BuildDonut(nil, 45, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
