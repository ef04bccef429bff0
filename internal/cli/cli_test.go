package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/chart"
	"budget/internal/storage"
)

func TestParseSlices(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []chart.Slice
		wantErr string
	}{
		{
			name: "simple",
			args: []string{"rent=1000", "food=12.5"},
			want: []chart.Slice{{Label: "rent", Value: 1000}, {Label: "food", Value: 12.5}},
		},
		{
			name: "label containing equals",
			args: []string{"a=b=3"},
			want: []chart.Slice{{Label: "a=b", Value: 3}},
		},
		{
			name: "trims spaces",
			args: []string{" fun = 7 "},
			want: []chart.Slice{{Label: "fun", Value: 7}},
		},
		{name: "missing separator", args: []string{"rent"}, wantErr: "want label=value"},
		{name: "empty label", args: []string{"=4"}, wantErr: "want label=value"},
		{name: "blank label", args: []string{"  =4"}, wantErr: "empty label"},
		{name: "bad number", args: []string{"rent=lots"}, wantErr: "invalid slice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSlices(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := New(&out, &errOut).Execute(context.Background(), args)
	return out.String(), errOut.String(), err
}

func TestDonutCommand_Table(t *testing.T) {
	out, _, err := run(t, "donut", "rent=1000", "snacks=0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "LABEL"))
	assert.True(t, strings.HasPrefix(lines[1], "rent"))
	assert.Contains(t, lines[2], "45.00")
	assert.NotContains(t, out, "cannot be met")
}

func TestDonutCommand_JSONFallback(t *testing.T) {
	out, _, err := run(t, "donut", "--min-angle", "130", "--json", "a=30", "b=20", "c=50")
	require.NoError(t, err)

	var d chart.Donut
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.True(t, d.Fallback)
	require.Len(t, d.Segments, 3)
	for _, s := range d.Segments {
		assert.InDelta(t, 120, s.SpanDegrees(), 1e-9)
	}
	assert.Equal(t, []float64{30, 20, 50}, []float64{d.Segments[0].Value, d.Segments[1].Value, d.Segments[2].Value})
}

func TestDonutCommand_Errors(t *testing.T) {
	_, errOut, err := run(t, "donut", "a=1", "a=2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, chart.ErrInvalidInput))
	assert.Contains(t, errOut, "Error:")

	_, _, err = run(t, "donut", "--min-angle", "-1", "a=1")
	assert.ErrorIs(t, err, chart.ErrInvalidInput)

	_, _, err = run(t, "donut")
	assert.Error(t, err)
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "budget.db")

	out, _, err := run(t, "migrate", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	// Second run is a no-op.
	_, _, err = run(t, "migrate", "--db", dbPath)
	require.NoError(t, err)

	repo, err := storage.NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	cats, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "income", cats[0].Name)
}
