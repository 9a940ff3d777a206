package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secustats/internal/dataset"
)

func rec(year int, dept, zone, indicator string, value int) dataset.Record {
	return dataset.Record{
		Year:      year,
		GeoZone:   zone,
		Value:     value,
		Indicator: indicator,
		DeptCode:  dept,
	}
}

func testDataset() *dataset.Dataset {
	records := []dataset.Record{
		rec(2021, "75", "75-Paris", "Cambriolages", 100),
		rec(2022, "75", "75-Paris", "Cambriolages", 150),
		rec(2023, "75", "75-Paris", "Cambriolages", 120),
		rec(2021, "13", "13-Bouches-du-Rhone", "Cambriolages", 50),
		rec(2022, "13", "13-Bouches-du-Rhone", "Cambriolages", 60),
		rec(2023, "13", "13-Bouches-du-Rhone", "Cambriolages", 70),
		rec(2022, "75", "75-Paris", "Vols avec violence", 30),
		rec(2023, "75", "75-Paris", "Vols avec violence", 45),
	}
	return dataset.New(records, dataset.LoadReport{TotalRows: 8, Loaded: 8})
}

func TestNationalSeries(t *testing.T) {
	series := NationalSeries(testDataset(), Filter{})
	require.Len(t, series, 2)

	// Sorted by indicator name.
	assert.Equal(t, "Cambriolages", series[0].Indicator)
	assert.Equal(t, []SeriesPoint{
		{Year: 2021, Value: 150},
		{Year: 2022, Value: 210},
		{Year: 2023, Value: 190},
	}, series[0].Points)

	assert.Equal(t, "Vols avec violence", series[1].Indicator)
	assert.Equal(t, []SeriesPoint{
		{Year: 2022, Value: 30},
		{Year: 2023, Value: 45},
	}, series[1].Points)
}

func TestNationalSeries_Filtered(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		check  func(t *testing.T, series []IndicatorSeries)
	}{
		{
			name:   "by indicator",
			filter: Filter{Indicators: []string{"Vols avec violence"}},
			check: func(t *testing.T, series []IndicatorSeries) {
				require.Len(t, series, 1)
				assert.Equal(t, "Vols avec violence", series[0].Indicator)
			},
		},
		{
			name:   "by year range",
			filter: Filter{StartYear: 2022, EndYear: 2022},
			check: func(t *testing.T, series []IndicatorSeries) {
				require.Len(t, series, 2)
				assert.Equal(t, []SeriesPoint{{Year: 2022, Value: 210}}, series[0].Points)
			},
		},
		{
			name:   "by department",
			filter: Filter{DeptCodes: []string{"13"}},
			check: func(t *testing.T, series []IndicatorSeries) {
				require.Len(t, series, 1)
				assert.Equal(t, []SeriesPoint{
					{Year: 2021, Value: 50},
					{Year: 2022, Value: 60},
					{Year: 2023, Value: 70},
				}, series[0].Points)
			},
		},
		{
			name:   "nothing matches",
			filter: Filter{Indicators: []string{"Homicides"}},
			check: func(t *testing.T, series []IndicatorSeries) {
				assert.Empty(t, series)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, NationalSeries(testDataset(), tt.filter))
		})
	}
}

func TestSummarizeIndicators(t *testing.T) {
	summaries := SummarizeIndicators(testDataset(), Filter{Indicators: []string{"Cambriolages"}})
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "Cambriolages", s.Indicator)
	assert.Equal(t, 2021, s.FirstYear)
	assert.Equal(t, 2023, s.LastYear)
	assert.Equal(t, 150, s.FirstValue)
	assert.Equal(t, 190, s.LastValue)
	assert.Equal(t, 40, s.Change)
	require.NotNil(t, s.ChangePct)
	assert.InDelta(t, 26.666, *s.ChangePct, 0.001)
	assert.Equal(t, 550, s.Total)
	assert.InDelta(t, 183.333, s.AnnualMean, 0.001)
	assert.Equal(t, YearValue{Year: 2022, Value: 210}, s.Max)
	assert.Equal(t, YearValue{Year: 2021, Value: 150}, s.Min)
}

func TestSummarizeIndicators_ZeroFirstYear(t *testing.T) {
	records := []dataset.Record{
		rec(2021, "75", "75-Paris", "Homicides", 0),
		rec(2022, "75", "75-Paris", "Homicides", 12),
	}
	ds := dataset.New(records, dataset.LoadReport{Loaded: 2})

	summaries := SummarizeIndicators(ds, Filter{})
	require.Len(t, summaries, 1)

	// Relative evolution is undefined from a zero baseline.
	assert.Nil(t, summaries[0].ChangePct)
	assert.Equal(t, 12, summaries[0].Change)
}

func TestDepartmentRanking(t *testing.T) {
	ranking := DepartmentRanking(testDataset(), "Cambriolages", Filter{}, 0)
	require.Len(t, ranking.Entries, 2)

	first := ranking.Entries[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "75", first.DeptCode)
	assert.Equal(t, "75-Paris", first.Zone)
	assert.InDelta(t, 123.333, first.Mean, 0.001)
	// Sample standard deviation of {100, 150, 120}.
	assert.InDelta(t, 25.166, first.StdDev, 0.001)
	assert.Equal(t, 3, first.Years)

	second := ranking.Entries[1]
	assert.Equal(t, 2, second.Rank)
	assert.Equal(t, "13", second.DeptCode)
	assert.InDelta(t, 60.0, second.Mean, 0.001)
	assert.InDelta(t, 10.0, second.StdDev, 0.001)
}

func TestDepartmentRanking_TopN(t *testing.T) {
	ranking := DepartmentRanking(testDataset(), "Cambriolages", Filter{}, 1)
	require.Len(t, ranking.Entries, 1)
	assert.Equal(t, "75", ranking.Entries[0].DeptCode)
}

func TestDepartmentRanking_SingleYearStdDev(t *testing.T) {
	records := []dataset.Record{
		rec(2023, "75", "75-Paris", "Cambriolages", 100),
	}
	ds := dataset.New(records, dataset.LoadReport{Loaded: 1})

	ranking := DepartmentRanking(ds, "Cambriolages", Filter{}, 0)
	require.Len(t, ranking.Entries, 1)
	assert.Equal(t, 100.0, ranking.Entries[0].Mean)
	assert.Equal(t, 0.0, ranking.Entries[0].StdDev)
	assert.False(t, math.IsNaN(ranking.Entries[0].StdDev))
}

func TestSummarize(t *testing.T) {
	ds := testDataset()
	o := Summarize(ds)

	assert.Equal(t, 8, o.Records)
	assert.Equal(t, 2021, o.FirstYear)
	assert.Equal(t, 2023, o.LastYear)
	assert.Equal(t, 2, o.Indicators)
	assert.Equal(t, 2, o.Departments)
}

func TestSummarize_Empty(t *testing.T) {
	ds := dataset.New(nil, dataset.LoadReport{})
	o := Summarize(ds)

	assert.Zero(t, o.Records)
	assert.Zero(t, o.FirstYear)
	assert.Zero(t, o.LastYear)
}

func TestDepartments(t *testing.T) {
	depts := Departments(testDataset())
	assert.Equal(t, []Department{
		{DeptCode: "13", Zone: "13-Bouches-du-Rhone"},
		{DeptCode: "75", Zone: "75-Paris"},
	}, depts)
}
