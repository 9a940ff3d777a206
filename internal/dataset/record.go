package dataset

import "sort"

// Record is one normalized row of the public-security statistics export.
type Record struct {
	// Year is the observation period (Unite_temps).
	Year int `json:"year"`
	// GeoZone is the combined department code and name label,
	// e.g. "75-Paris" (Zone_geographique).
	GeoZone string `json:"geo_zone"`
	// Value is the count of recorded incidents (Valeurs). Never negative.
	Value int `json:"value"`
	// Indicator is the category of infraction (Indicateur).
	Indicator string `json:"indicator"`
	// DeptCode is the 2-3 character department code. Always present after
	// normalization: taken from Code_dep when the column exists, derived
	// from GeoZone otherwise.
	DeptCode string `json:"dept_code"`
}

// LoadReport summarizes a load for diagnostics. Rejected rows never block the
// dashboard; they are surfaced here and in the logs.
type LoadReport struct {
	// TotalRows is the number of data rows read from the file.
	TotalRows int `json:"total_rows"`
	// Loaded is the number of valid records kept.
	Loaded int `json:"loaded"`
	// Rejected is the number of rows dropped because they failed parsing
	// or normalization.
	Rejected int `json:"rejected"`
	// Filtered is the number of valid rows excluded by the metropolitan
	// department filter. Distinct from Rejected: these rows parsed fine.
	Filtered int `json:"filtered"`
	// DerivedDeptCodes is the number of records whose department code was
	// derived from the geo zone label.
	DerivedDeptCodes int `json:"derived_dept_codes"`
	// RowErrors is a capped sample of rejection diagnostics.
	RowErrors []RowError `json:"row_errors,omitempty"`
}

// Dataset is the immutable in-memory table of valid records plus its load
// diagnostics. It is built once by Load and never mutated afterwards, so it
// is safe for concurrent readers without locking.
type Dataset struct {
	records []Record
	report  LoadReport

	years      []int
	indicators []string
	zones      []string
}

// New builds a dataset from already-normalized records. Load is the normal
// entry point; New serves tooling and tests that assemble records directly.
func New(records []Record, report LoadReport) *Dataset {
	return newDataset(records, report)
}

// newDataset builds a Dataset and memoizes its distinct years, indicators and
// geo zones in sorted order.
func newDataset(records []Record, report LoadReport) *Dataset {
	yearSet := make(map[int]struct{})
	indicatorSet := make(map[string]struct{})
	zoneSet := make(map[string]struct{})

	for _, r := range records {
		yearSet[r.Year] = struct{}{}
		indicatorSet[r.Indicator] = struct{}{}
		zoneSet[r.GeoZone] = struct{}{}
	}

	ds := &Dataset{
		records:    records,
		report:     report,
		years:      make([]int, 0, len(yearSet)),
		indicators: make([]string, 0, len(indicatorSet)),
		zones:      make([]string, 0, len(zoneSet)),
	}

	for y := range yearSet {
		ds.years = append(ds.years, y)
	}
	for ind := range indicatorSet {
		ds.indicators = append(ds.indicators, ind)
	}
	for z := range zoneSet {
		ds.zones = append(ds.zones, z)
	}

	sort.Ints(ds.years)
	sort.Strings(ds.indicators)
	sort.Strings(ds.zones)

	return ds
}

// Records returns the valid records. Callers must not modify the slice.
func (ds *Dataset) Records() []Record { return ds.records }

// Report returns the load diagnostics.
func (ds *Dataset) Report() LoadReport { return ds.report }

// Len returns the number of valid records.
func (ds *Dataset) Len() int { return len(ds.records) }

// Years returns the distinct observation years in ascending order.
func (ds *Dataset) Years() []int { return ds.years }

// Indicators returns the distinct infraction categories in sorted order.
func (ds *Dataset) Indicators() []string { return ds.indicators }

// Zones returns the distinct geo zone labels in sorted order.
func (ds *Dataset) Zones() []string { return ds.zones }

// YearRange returns the first and last observation years. ok is false when
// the dataset has no records.
func (ds *Dataset) YearRange() (first, last int, ok bool) {
	if len(ds.years) == 0 {
		return 0, 0, false
	}
	return ds.years[0], ds.years[len(ds.years)-1], true
}
