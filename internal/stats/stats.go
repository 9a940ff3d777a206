package stats

import (
	"math"
	"sort"

	"secustats/internal/dataset"
)

// DefaultRankingSize is the number of departments kept in a ranking.
const DefaultRankingSize = 15

// Filter restricts the records an aggregation runs over. Zero values mean
// "no restriction" for the corresponding dimension.
type Filter struct {
	// Indicators keeps only the named infraction categories.
	Indicators []string `json:"indicators,omitempty"`
	// StartYear and EndYear bound the observation years, inclusive.
	StartYear int `json:"start_year,omitempty"`
	EndYear   int `json:"end_year,omitempty"`
	// DeptCodes keeps only the named departments.
	DeptCodes []string `json:"dept_codes,omitempty"`
}

// Matches reports whether the record passes the filter.
func (f Filter) Matches(r dataset.Record) bool {
	if f.StartYear != 0 && r.Year < f.StartYear {
		return false
	}
	if f.EndYear != 0 && r.Year > f.EndYear {
		return false
	}
	if len(f.Indicators) > 0 && !contains(f.Indicators, r.Indicator) {
		return false
	}
	if len(f.DeptCodes) > 0 && !contains(f.DeptCodes, r.DeptCode) {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// SeriesPoint is one year of a national time series.
type SeriesPoint struct {
	Year  int `json:"year"`
	Value int `json:"value"`
}

// IndicatorSeries is the national yearly total for one indicator: the sum of
// all department values per year.
type IndicatorSeries struct {
	Indicator string        `json:"indicator"`
	Points    []SeriesPoint `json:"points"`
}

// NationalSeries aggregates the filtered records into one national time
// series per indicator, years ascending. Indicators with no matching records
// are absent from the result.
func NationalSeries(ds *dataset.Dataset, f Filter) []IndicatorSeries {
	totals := make(map[string]map[int]int)

	for _, r := range ds.Records() {
		if !f.Matches(r) {
			continue
		}
		byYear, ok := totals[r.Indicator]
		if !ok {
			byYear = make(map[int]int)
			totals[r.Indicator] = byYear
		}
		byYear[r.Year] += r.Value
	}

	series := make([]IndicatorSeries, 0, len(totals))
	for indicator, byYear := range totals {
		points := make([]SeriesPoint, 0, len(byYear))
		for year, value := range byYear {
			points = append(points, SeriesPoint{Year: year, Value: value})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
		series = append(series, IndicatorSeries{Indicator: indicator, Points: points})
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Indicator < series[j].Indicator })
	return series
}

// YearValue pairs a value with its observation year.
type YearValue struct {
	Year  int `json:"year"`
	Value int `json:"value"`
}

// IndicatorSummary describes how one indicator evolved nationally over the
// selected period.
type IndicatorSummary struct {
	Indicator string `json:"indicator"`

	FirstYear  int `json:"first_year"`
	LastYear   int `json:"last_year"`
	FirstValue int `json:"first_value"`
	LastValue  int `json:"last_value"`

	// Change is the absolute evolution between the first and last year.
	Change int `json:"change"`
	// ChangePct is the relative evolution in percent. Nil when the first
	// year's total is zero, where the ratio is undefined.
	ChangePct *float64 `json:"change_pct,omitempty"`

	Total      int     `json:"total"`
	AnnualMean float64 `json:"annual_mean"`

	Max YearValue `json:"max"`
	Min YearValue `json:"min"`
}

// SummarizeIndicators computes the evolution summary of each indicator's
// national series under the filter. Indicators with no matching records are
// absent from the result.
func SummarizeIndicators(ds *dataset.Dataset, f Filter) []IndicatorSummary {
	series := NationalSeries(ds, f)
	summaries := make([]IndicatorSummary, 0, len(series))

	for _, s := range series {
		points := s.Points
		first := points[0]
		last := points[len(points)-1]

		summary := IndicatorSummary{
			Indicator:  s.Indicator,
			FirstYear:  first.Year,
			LastYear:   last.Year,
			FirstValue: first.Value,
			LastValue:  last.Value,
			Change:     last.Value - first.Value,
			Max:        YearValue(points[0]),
			Min:        YearValue(points[0]),
		}

		if first.Value != 0 {
			pct := float64(last.Value-first.Value) / float64(first.Value) * 100
			summary.ChangePct = &pct
		}

		for _, p := range points {
			summary.Total += p.Value
			if p.Value > summary.Max.Value {
				summary.Max = YearValue(p)
			}
			if p.Value < summary.Min.Value {
				summary.Min = YearValue(p)
			}
		}
		summary.AnnualMean = float64(summary.Total) / float64(len(points))

		summaries = append(summaries, summary)
	}

	return summaries
}

// RankingEntry is one department's position in a ranking.
type RankingEntry struct {
	Rank     int    `json:"rank"`
	DeptCode string `json:"dept_code"`
	// Zone is the full geo zone label of the department, e.g. "75-Paris".
	Zone string `json:"zone"`
	// Mean is the department's average yearly value over the period.
	Mean float64 `json:"mean"`
	// StdDev is the sample standard deviation of the yearly values. Zero
	// when the department has a single observation year.
	StdDev float64 `json:"std_dev"`
	// Years is the number of observation years behind the mean.
	Years int `json:"years"`
}

// Ranking is the list of departments with the highest average yearly value
// for one indicator.
type Ranking struct {
	Indicator string         `json:"indicator"`
	Entries   []RankingEntry `json:"entries"`
}

// DepartmentRanking ranks departments by their average yearly value for the
// filtered records, highest first, keeping the top entries. A non-positive
// top keeps DefaultRankingSize entries.
func DepartmentRanking(ds *dataset.Dataset, indicator string, f Filter, top int) Ranking {
	if top <= 0 {
		top = DefaultRankingSize
	}
	f.Indicators = []string{indicator}

	type deptAgg struct {
		zone   string
		byYear map[int]int
	}
	depts := make(map[string]*deptAgg)

	for _, r := range ds.Records() {
		if !f.Matches(r) {
			continue
		}
		agg, ok := depts[r.DeptCode]
		if !ok {
			agg = &deptAgg{zone: r.GeoZone, byYear: make(map[int]int)}
			depts[r.DeptCode] = agg
		}
		// A department can appear under several zone labels over time;
		// keep the lexically smallest for stable output.
		if r.GeoZone < agg.zone {
			agg.zone = r.GeoZone
		}
		agg.byYear[r.Year] += r.Value
	}

	entries := make([]RankingEntry, 0, len(depts))
	for code, agg := range depts {
		mean, stddev := meanStdDev(agg.byYear)
		entries = append(entries, RankingEntry{
			DeptCode: code,
			Zone:     agg.zone,
			Mean:     mean,
			StdDev:   stddev,
			Years:    len(agg.byYear),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Mean != entries[j].Mean {
			return entries[i].Mean > entries[j].Mean
		}
		return entries[i].DeptCode < entries[j].DeptCode
	})

	if len(entries) > top {
		entries = entries[:top]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return Ranking{Indicator: indicator, Entries: entries}
}

// meanStdDev returns the mean and sample standard deviation of the yearly
// values.
func meanStdDev(byYear map[int]int) (mean, stddev float64) {
	n := float64(len(byYear))
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range byYear {
		sum += float64(v)
	}
	mean = sum / n

	if n < 2 {
		return mean, 0
	}

	var sq float64
	for _, v := range byYear {
		d := float64(v) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / (n - 1))
}

// Overview summarizes the dataset for the dashboard header.
type Overview struct {
	Records     int `json:"records"`
	FirstYear   int `json:"first_year"`
	LastYear    int `json:"last_year"`
	Indicators  int `json:"indicators"`
	Departments int `json:"departments"`

	// Load diagnostics from the last file read.
	Rejected         int `json:"rejected"`
	Filtered         int `json:"filtered"`
	DerivedDeptCodes int `json:"derived_dept_codes"`
}

// Summarize builds the dataset overview.
func Summarize(ds *dataset.Dataset) Overview {
	deptSet := make(map[string]struct{})
	for _, r := range ds.Records() {
		deptSet[r.DeptCode] = struct{}{}
	}

	report := ds.Report()
	o := Overview{
		Records:          ds.Len(),
		Indicators:       len(ds.Indicators()),
		Departments:      len(deptSet),
		Rejected:         report.Rejected,
		Filtered:         report.Filtered,
		DerivedDeptCodes: report.DerivedDeptCodes,
	}
	if first, last, ok := ds.YearRange(); ok {
		o.FirstYear = first
		o.LastYear = last
	}
	return o
}

// Department pairs a department code with its zone label.
type Department struct {
	DeptCode string `json:"dept_code"`
	Zone     string `json:"zone"`
}

// Departments returns the distinct department codes of the dataset with a
// representative zone label, sorted by code.
func Departments(ds *dataset.Dataset) []Department {
	depts := make(map[string]string)
	for _, r := range ds.Records() {
		if zone, ok := depts[r.DeptCode]; !ok || r.GeoZone < zone {
			depts[r.DeptCode] = r.GeoZone
		}
	}

	entries := make([]Department, 0, len(depts))
	for code, zone := range depts {
		entries = append(entries, Department{DeptCode: code, Zone: zone})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].DeptCode < entries[j].DeptCode })
	return entries
}
