package services

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"budget/internal/cache"
	"budget/internal/chart"
	"budget/internal/core"
	"budget/internal/log"
)

// DashboardSummary is the payload of the dashboard page.
type DashboardSummary struct {
	Totals   core.Summary
	Spending []core.DateTotal
	Income   []core.DateTotal
	Donut    chart.Donut
}

// DashboardService builds chart data from stored aggregates.
type DashboardService struct {
	store           AggregateStore
	donuts          cache.Cache[chart.Donut]
	versions        cache.Versioned
	formatter       *chart.Formatter
	defaultMinAngle float64
	logger          *log.StructuredLogger
}

// NewDashboardService wires the service. A nil donut cache disables caching.
// versions, usually the cache.Manager the donut cache is registered with,
// keeps donuts computed before a concurrent write out of the cache.
func NewDashboardService(store AggregateStore, donuts cache.Cache[chart.Donut], versions cache.Versioned, formatter *chart.Formatter, defaultMinAngle float64) *DashboardService {
	if formatter == nil {
		formatter = chart.NewFormatter()
	}
	return &DashboardService{
		store:           store,
		donuts:          donuts,
		versions:        versions,
		formatter:       formatter,
		defaultMinAngle: defaultMinAngle,
		logger:          log.NewStructuredLogger(log.FromContext(context.Background()).WithComponent(log.ComponentDashboard)),
	}
}

// DefaultMinAngle is the angle used when a caller does not pick one.
func (s *DashboardService) DefaultMinAngle() float64 {
	return s.defaultMinAngle
}

// Donut returns the spending-by-category donut, income excluded. With no
// spending at all it returns an empty chart rather than an error.
func (s *DashboardService) Donut(ctx context.Context, minAngleDeg float64) (chart.Donut, error) {
	if err := chart.ValidateMinAngle(minAngleDeg); err != nil {
		return chart.Donut{}, err
	}

	key := strconv.FormatFloat(minAngleDeg, 'g', -1, 64)
	if s.donuts != nil {
		if d, ok := s.donuts.Get(key); ok {
			s.logger.LogDonutCache(ctx, "Donut served from cache", minAngleDeg, true)
			return d, nil
		}
	}

	var gen uint64
	if s.versions != nil {
		gen = s.versions.Generation()
	}

	totals, err := s.store.CategoryTotals(ctx)
	if err != nil {
		return chart.Donut{}, fmt.Errorf("load category totals: %w", err)
	}

	slices := make([]chart.Slice, 0, len(totals))
	for _, t := range totals {
		if core.IsIncomeName(t.Name) {
			continue
		}
		slices = append(slices, chart.Slice{Label: t.Name, Value: t.Amount.Units()})
	}

	d := chart.Donut{MinAngleDeg: minAngleDeg, Segments: []chart.Segment{}}
	if len(slices) > 0 {
		d, err = chart.BuildDonut(slices, minAngleDeg, s.formatter)
		if err != nil {
			return chart.Donut{}, fmt.Errorf("build donut: %w", err)
		}
		s.logger.LogDonutBuilt(ctx, minAngleDeg, len(slices), d.Fallback)
	}

	if s.donuts != nil {
		store := func() { s.donuts.Set(key, d) }
		if s.versions == nil {
			store()
		} else if !s.versions.IfCurrent(gen, store) {
			s.logger.LogDonutCache(ctx, "Skipped caching donut built before a write", minAngleDeg, false)
		}
	}
	return d, nil
}

// Summary loads cards, line chart series, and the donut concurrently.
func (s *DashboardService) Summary(ctx context.Context) (DashboardSummary, error) {
	var out DashboardSummary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.store.Totals(gctx)
		if err != nil {
			return fmt.Errorf("load totals: %w", err)
		}
		out.Totals = t
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.DateTotals(gctx, false)
		if err != nil {
			return fmt.Errorf("load spending by day: %w", err)
		}
		out.Spending = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.DateTotals(gctx, true)
		if err != nil {
			return fmt.Errorf("load income by day: %w", err)
		}
		out.Income = rows
		return nil
	})
	g.Go(func() error {
		d, err := s.Donut(gctx, s.defaultMinAngle)
		if err != nil {
			return err
		}
		out.Donut = d
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}
	return out, nil
}
