package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/analytics"
)

// MockAnalyticsEngine implements analytics.Engine for testing
type MockAnalyticsEngine struct {
	// GenerateReportFn allows test cases to mock the GenerateReport behavior.
	// GenerateDashboard delegates to it with analytics.RangeAll.
	GenerateReportFn func(ctx context.Context, userID uuid.UUID, rng analytics.TimeRange) (*analytics.Report, error)

	// BuildFn allows test cases to mock the Build behavior
	BuildFn func(userID uuid.UUID, h analytics.History, rng analytics.TimeRange) *analytics.Report

	// Default values used when functions aren't explicitly defined
	Report *analytics.Report
	Err    error
}

var _ analytics.Engine = (*MockAnalyticsEngine)(nil)

// GenerateDashboard implements the analytics.Engine interface
func (m *MockAnalyticsEngine) GenerateDashboard(ctx context.Context, userID uuid.UUID) (*analytics.Report, error) {
	return m.GenerateReport(ctx, userID, analytics.RangeAll)
}

// GenerateReport implements the analytics.Engine interface
func (m *MockAnalyticsEngine) GenerateReport(
	ctx context.Context,
	userID uuid.UUID,
	rng analytics.TimeRange,
) (*analytics.Report, error) {
	if m.GenerateReportFn != nil {
		return m.GenerateReportFn(ctx, userID, rng)
	}
	return m.Report, m.Err
}

// Build implements the analytics.Engine interface
func (m *MockAnalyticsEngine) Build(userID uuid.UUID, h analytics.History, rng analytics.TimeRange) *analytics.Report {
	if m.BuildFn != nil {
		return m.BuildFn(userID, h, rng)
	}
	return m.Report
}
