package http

import (
	"context"

	"secustats/internal/dataset"
	"secustats/internal/stats"
)

// DataServiceInterface defines the interface for data operations
type DataServiceInterface interface {
	Overview(ctx context.Context) (stats.Overview, error)
	Report(ctx context.Context) (dataset.LoadReport, error)
	Indicators(ctx context.Context) ([]string, error)
	Years(ctx context.Context) ([]int, error)
	Departments(ctx context.Context) ([]stats.Department, error)
	Series(ctx context.Context, f stats.Filter) ([]stats.IndicatorSeries, error)
	Summary(ctx context.Context, f stats.Filter) ([]stats.IndicatorSummary, error)
	Ranking(ctx context.Context, indicator string, f stats.Filter, top int) (stats.Ranking, error)
}
