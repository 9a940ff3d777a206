package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secustats/internal/dataset"
	"secustats/internal/stats"
)

const testCSV = "Unite_temps;Zone_geographique;Valeurs;Indicateur\n" +
	"2021;75-Paris;100;Cambriolages\n" +
	"2022;75-Paris;150;Cambriolages\n" +
	"2023;75-Paris;120;Cambriolages\n" +
	"2021;13-Marseille;50;Cambriolages\n" +
	"2022;13-Marseille;60;Cambriolages\n" +
	"2023;13-Marseille;70;Cambriolages\n" +
	"2022;75-Paris;30;Vols avec violence\n" +
	"2023;75-Paris;45;Vols avec violence\n"

func newTestService(t *testing.T, csv string) *DataService {
	t.Helper()

	path := filepath.Join(t.TempDir(), "serieschrono-datagouv.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	store := dataset.NewStore(path, dataset.DefaultOptions(), nil)
	return NewDataService(store)
}

func TestDataService_Overview(t *testing.T) {
	svc := newTestService(t, testCSV)

	o, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, o.Records)
	assert.Equal(t, 2021, o.FirstYear)
	assert.Equal(t, 2023, o.LastYear)
	assert.Equal(t, 2, o.Indicators)
	assert.Equal(t, 2, o.Departments)
}

func TestDataService_Indicators(t *testing.T) {
	svc := newTestService(t, testCSV)

	indicators, err := svc.Indicators(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Cambriolages", "Vols avec violence"}, indicators)
}

func TestDataService_Years(t *testing.T) {
	svc := newTestService(t, testCSV)

	years, err := svc.Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022, 2023}, years)
}

func TestDataService_Departments(t *testing.T) {
	svc := newTestService(t, testCSV)

	depts, err := svc.Departments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []stats.Department{
		{DeptCode: "13", Zone: "13-Marseille"},
		{DeptCode: "75", Zone: "75-Paris"},
	}, depts)
}

func TestDataService_Series(t *testing.T) {
	svc := newTestService(t, testCSV)

	series, err := svc.Series(context.Background(), stats.Filter{
		Indicators: []string{"Cambriolages"},
	})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, []stats.SeriesPoint{
		{Year: 2021, Value: 150},
		{Year: 2022, Value: 210},
		{Year: 2023, Value: 190},
	}, series[0].Points)
}

func TestDataService_Series_UnknownIndicator(t *testing.T) {
	svc := newTestService(t, testCSV)

	_, err := svc.Series(context.Background(), stats.Filter{
		Indicators: []string{"Homicides"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndicatorNotFound)
	assert.Contains(t, err.Error(), "Homicides")
}

func TestDataService_Series_UnknownDepartment(t *testing.T) {
	svc := newTestService(t, testCSV)

	_, err := svc.Series(context.Background(), stats.Filter{
		DeptCodes: []string{"99"},
	})
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}

func TestDataService_Series_YearValidation(t *testing.T) {
	svc := newTestService(t, testCSV)
	ctx := context.Background()

	_, err := svc.Series(ctx, stats.Filter{StartYear: 2030})
	assert.ErrorIs(t, err, ErrYearNotFound)

	_, err = svc.Series(ctx, stats.Filter{EndYear: 2010})
	assert.ErrorIs(t, err, ErrYearNotFound)

	_, err = svc.Series(ctx, stats.Filter{StartYear: 2023, EndYear: 2021})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDataService_Summary(t *testing.T) {
	svc := newTestService(t, testCSV)

	summaries, err := svc.Summary(context.Background(), stats.Filter{
		Indicators: []string{"Vols avec violence"},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, 15, s.Change)
	require.NotNil(t, s.ChangePct)
	assert.InDelta(t, 50.0, *s.ChangePct, 0.001)
}

func TestDataService_Ranking(t *testing.T) {
	svc := newTestService(t, testCSV)

	ranking, err := svc.Ranking(context.Background(), "Cambriolages", stats.Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, ranking.Entries, 2)
	assert.Equal(t, "75", ranking.Entries[0].DeptCode)
	assert.Equal(t, 1, ranking.Entries[0].Rank)
}

func TestDataService_Ranking_UnknownIndicator(t *testing.T) {
	svc := newTestService(t, testCSV)

	_, err := svc.Ranking(context.Background(), "Homicides", stats.Filter{}, 0)
	assert.ErrorIs(t, err, ErrIndicatorNotFound)
}

func TestDataService_MissingFile(t *testing.T) {
	store := dataset.NewStore(filepath.Join(t.TempDir(), "nope.csv"), dataset.DefaultOptions(), nil)
	svc := NewDataService(store)

	_, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, dataset.ErrDatasetNotFound)
}

func TestHealthService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serieschrono-datagouv.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))
	store := dataset.NewStore(path, dataset.DefaultOptions(), nil)

	hs := NewHealthService("1.2.3", "2026-08-29", store, nil)

	status := hs.Health(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)

	ready, detail := hs.Ready(context.Background())
	assert.True(t, ready)
	assert.Equal(t, "up", detail.Status)

	v := hs.Version()
	assert.Equal(t, "1.2.3", v.Version)
	assert.Equal(t, "2026-08-29", v.BuildTime)
	assert.NotEmpty(t, v.GoVersion)
}

func TestHealthService_DatasetMissing(t *testing.T) {
	store := dataset.NewStore(filepath.Join(t.TempDir(), "nope.csv"), dataset.DefaultOptions(), nil)
	hs := NewHealthService("dev", "", store, nil)

	status := hs.Health(context.Background())
	assert.Equal(t, "degraded", status.Status)

	ready, detail := hs.Ready(context.Background())
	assert.False(t, ready)
	assert.Equal(t, "down", detail.Status)
}
