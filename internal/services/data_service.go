package services

import (
	"context"
	"fmt"
	"log/slog"

	"secustats/internal/dataset"
	"secustats/internal/stats"
)

// DataService exposes the dashboard aggregations over the cached dataset.
type DataService struct {
	store  *dataset.Store
	logger *slog.Logger
}

// NewDataService creates a new data service using default logger
func NewDataService(store *dataset.Store) *DataService {
	return NewDataServiceWithLogger(store, slog.Default())
}

// NewDataServiceWithLogger creates a new data service with a specific logger
func NewDataServiceWithLogger(store *dataset.Store, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("DataService initialized",
		slog.String("dataset_file", store.Path()))

	return &DataService{
		store:  store,
		logger: logger,
	}
}

// Overview returns the dataset summary for the dashboard header.
func (ds *DataService) Overview(ctx context.Context) (stats.Overview, error) {
	d, err := ds.store.Get(ctx)
	if err != nil {
		return stats.Overview{}, err
	}
	return stats.Summarize(d), nil
}

// Report returns the diagnostics of the last dataset load.
func (ds *DataService) Report(ctx context.Context) (dataset.LoadReport, error) {
	d, err := ds.store.Get(ctx)
	if err != nil {
		return dataset.LoadReport{}, err
	}
	return d.Report(), nil
}

// Indicators returns the distinct infraction categories, sorted.
func (ds *DataService) Indicators(ctx context.Context) ([]string, error) {
	d, err := ds.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, ErrNoData
	}
	return d.Indicators(), nil
}

// Years returns the distinct observation years, ascending.
func (ds *DataService) Years(ctx context.Context) ([]int, error) {
	d, err := ds.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, ErrNoData
	}
	return d.Years(), nil
}

// Departments returns the distinct departments with their zone labels.
func (ds *DataService) Departments(ctx context.Context) ([]stats.Department, error) {
	d, err := ds.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if d.Len() == 0 {
		return nil, ErrNoData
	}
	return stats.Departments(d), nil
}

// Series returns the national time series matching the filter.
func (ds *DataService) Series(ctx context.Context, f stats.Filter) ([]stats.IndicatorSeries, error) {
	d, err := ds.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := ds.validateFilter(d, f); err != nil {
		return nil, err
	}

	series := stats.NationalSeries(d, f)
	if len(series) == 0 {
		return nil, ErrEmptySelection
	}
	return series, nil
}

// Summary returns the per-indicator evolution summaries under the filter.
func (ds *DataService) Summary(ctx context.Context, f stats.Filter) ([]stats.IndicatorSummary, error) {
	d, err := ds.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := ds.validateFilter(d, f); err != nil {
		return nil, err
	}

	summaries := stats.SummarizeIndicators(d, f)
	if len(summaries) == 0 {
		return nil, ErrEmptySelection
	}
	return summaries, nil
}

// Ranking returns the departments with the highest average yearly value for
// the indicator. A non-positive top keeps the default ranking size.
func (ds *DataService) Ranking(ctx context.Context, indicator string, f stats.Filter, top int) (stats.Ranking, error) {
	d, err := ds.store.Get(ctx)
	if err != nil {
		return stats.Ranking{}, err
	}
	if !containsString(d.Indicators(), indicator) {
		return stats.Ranking{}, fmt.Errorf("%w: %s", ErrIndicatorNotFound, indicator)
	}
	if err := ds.validateFilter(d, f); err != nil {
		return stats.Ranking{}, err
	}

	ranking := stats.DepartmentRanking(d, indicator, f, top)
	if len(ranking.Entries) == 0 {
		return stats.Ranking{}, ErrEmptySelection
	}
	return ranking, nil
}

// validateFilter rejects filters that name dimensions absent from the
// dataset, so callers get a 404-shaped error instead of an empty chart.
func (ds *DataService) validateFilter(d *dataset.Dataset, f stats.Filter) error {
	if d.Len() == 0 {
		return ErrNoData
	}

	if f.StartYear != 0 && f.EndYear != 0 && f.StartYear > f.EndYear {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, f.StartYear, f.EndYear)
	}

	first, last, _ := d.YearRange()
	if f.StartYear != 0 && f.StartYear > last {
		return fmt.Errorf("%w: %d", ErrYearNotFound, f.StartYear)
	}
	if f.EndYear != 0 && f.EndYear < first {
		return fmt.Errorf("%w: %d", ErrYearNotFound, f.EndYear)
	}

	for _, indicator := range f.Indicators {
		if !containsString(d.Indicators(), indicator) {
			return fmt.Errorf("%w: %s", ErrIndicatorNotFound, indicator)
		}
	}

	if len(f.DeptCodes) > 0 {
		known := make(map[string]struct{})
		for _, r := range d.Records() {
			known[r.DeptCode] = struct{}{}
		}
		for _, code := range f.DeptCodes {
			if _, ok := known[code]; !ok {
				return fmt.Errorf("%w: %s", ErrDepartmentNotFound, code)
			}
		}
	}

	return nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
