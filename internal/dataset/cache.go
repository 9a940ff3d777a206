package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store caches the parsed dataset for the lifetime of the process, keyed by
// the file's modification time. The dashboard loads the file once per
// session; replacing the file on disk is picked up on the next request.
// Concurrent first loads are collapsed into a single read.
type Store struct {
	path   string
	opts   Options
	logger *slog.Logger

	// onLoad, when set, observes every completed load attempt.
	onLoad func(report LoadReport, err error)

	group singleflight.Group

	mu      sync.RWMutex
	ds      *Dataset
	modTime time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithLoadObserver registers a callback invoked after every load attempt,
// for metrics.
func WithLoadObserver(fn func(report LoadReport, err error)) StoreOption {
	return func(s *Store) { s.onLoad = fn }
}

// NewStore creates a dataset store for the file at path.
func NewStore(path string, opts Options, logger *slog.Logger, storeOpts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		opts:   opts,
		logger: logger.With(slog.String("component", "dataset_store")),
	}
	for _, opt := range storeOpts {
		opt(s)
	}
	return s
}

// Path returns the dataset file path.
func (s *Store) Path() string { return s.path }

// Get returns the cached dataset, loading or reloading it when the file is
// new or changed on disk.
func (s *Store) Get(ctx context.Context) (*Dataset, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (download the chronological series from data.gouv.fr and place it in the data directory)", ErrDatasetNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to stat dataset file: %w", err)
	}

	s.mu.RLock()
	ds, modTime := s.ds, s.modTime
	s.mu.RUnlock()

	if ds != nil && modTime.Equal(info.ModTime()) {
		return ds, nil
	}

	// Collapse concurrent (re)loads of the same file version.
	v, err, _ := s.group.Do(info.ModTime().String(), func() (interface{}, error) {
		return s.load(ctx, info.ModTime())
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// load parses the file and swaps the cached dataset.
func (s *Store) load(ctx context.Context, modTime time.Time) (*Dataset, error) {
	start := time.Now()

	ds, err := Load(s.path, s.opts)
	if s.onLoad != nil {
		var report LoadReport
		if ds != nil {
			report = ds.Report()
		}
		s.onLoad(report, err)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil, err
	}

	report := ds.Report()
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", s.path),
		slog.Int("loaded", report.Loaded),
		slog.Int("rejected", report.Rejected),
		slog.Int("filtered", report.Filtered),
		slog.Int("derived_dept_codes", report.DerivedDeptCodes),
		slog.String("duration", time.Since(start).String()))

	s.mu.Lock()
	s.ds = ds
	s.modTime = modTime
	s.mu.Unlock()

	return ds, nil
}

// Invalidate drops the cached dataset, forcing a reload on the next Get.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.ds = nil
	s.modTime = time.Time{}
	s.mu.Unlock()
}
