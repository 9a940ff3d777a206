package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Required columns of the data.gouv.fr chronological series export.
const (
	ColumnYear      = "Unite_temps"
	ColumnGeoZone   = "Zone_geographique"
	ColumnValue     = "Valeurs"
	ColumnIndicator = "Indicateur"
	// ColumnDeptCode is optional; the code is derived from the geo zone
	// label when the column is absent.
	ColumnDeptCode = "Code_dep"
)

// Options configures a load.
type Options struct {
	// Delimiter is the field separator. The upstream export uses ';'.
	Delimiter rune
	// Encoding names the text encoding of the file: "latin-1",
	// "iso-8859-1", "windows-1252" or "utf-8". The upstream export is
	// latin-1, not UTF-8.
	Encoding string
	// MetropolitanOnly keeps only metropolitan France and Corsica
	// (two-digit department codes 01 through 95), matching the scope of
	// the dashboard charts.
	MetropolitanOnly bool
	// MaxRowErrors caps the RowError sample kept in the LoadReport.
	// Rejections beyond the cap are still counted.
	MaxRowErrors int
}

// DefaultOptions returns the options matching the upstream government export.
func DefaultOptions() Options {
	return Options{
		Delimiter:        ';',
		Encoding:         "latin-1",
		MetropolitanOnly: true,
		MaxRowErrors:     20,
	}
}

// Load reads the statistics CSV at path and returns the normalized dataset.
//
// Missing file and missing required columns are fatal. Rows that fail type
// coercion or department-code derivation are dropped and counted in the
// LoadReport, never aborting the load.
func Load(path string, opts Options) (*Dataset, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	if opts.Encoding == "" {
		opts.Encoding = "latin-1"
	}
	if opts.MaxRowErrors == 0 {
		opts.MaxRowErrors = 20
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (download the chronological series from data.gouv.fr and place it in the data directory)", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	reader, err := decodingReader(bufio.NewReader(file), opts.Encoding)
	if err != nil {
		return nil, err
	}

	return parse(reader, opts)
}

// decodingReader wraps r with a decoder for the named single-byte encoding.
func decodingReader(r io.Reader, name string) (io.Reader, error) {
	var dec *encoding.Decoder
	switch strings.ToLower(name) {
	case "latin-1", "iso-8859-1":
		dec = charmap.ISO8859_1.NewDecoder()
	case "windows-1252":
		dec = charmap.Windows1252.NewDecoder()
	case "utf-8":
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
	return transform.NewReader(r, dec), nil
}

// parse reads the CSV stream and builds the dataset.
func parse(r io.Reader, opts Options) (*Dataset, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = opts.Delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var (
		records []Record
		report  LoadReport
	)

	reject := func(line int, reason string) {
		report.Rejected++
		if len(report.RowErrors) < opts.MaxRowErrors {
			report.RowErrors = append(report.RowErrors, RowError{Line: line, Reason: reason})
		}
	}

	line := 1 // header line
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			reject(line, fmt.Sprintf("malformed CSV row: %v", err))
			continue
		}
		if isRowEmpty(row) {
			continue
		}
		report.TotalRows++

		rec, derived, reason := normalizeRow(row, columns)
		if reason != "" {
			reject(line, reason)
			continue
		}
		if opts.MetropolitanOnly && !isMetropolitan(rec.DeptCode) {
			report.Filtered++
			continue
		}
		if derived {
			report.DerivedDeptCodes++
		}
		records = append(records, rec)
	}

	report.Loaded = len(records)

	slog.Debug("dataset parsed",
		slog.Int("total_rows", report.TotalRows),
		slog.Int("loaded", report.Loaded),
		slog.Int("rejected", report.Rejected),
		slog.Int("filtered", report.Filtered))

	return newDataset(records, report), nil
}

// columnIndexes holds the position of each known column. -1 means absent.
type columnIndexes struct {
	year      int
	geoZone   int
	value     int
	indicator int
	deptCode  int
}

// mapColumns resolves header names to field positions and verifies that all
// required columns are present.
func mapColumns(header []string) (columnIndexes, error) {
	idx := columnIndexes{year: -1, geoZone: -1, value: -1, indicator: -1, deptCode: -1}

	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnYear:
			idx.year = i
		case ColumnGeoZone:
			idx.geoZone = i
		case ColumnValue:
			idx.value = i
		case ColumnIndicator:
			idx.indicator = i
		case ColumnDeptCode:
			idx.deptCode = i
		}
	}

	var missing []string
	for _, col := range []struct {
		name string
		pos  int
	}{
		{ColumnYear, idx.year},
		{ColumnGeoZone, idx.geoZone},
		{ColumnValue, idx.value},
		{ColumnIndicator, idx.indicator},
	} {
		if col.pos == -1 {
			missing = append(missing, col.name)
		}
	}

	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return idx, nil
}

// normalizeRow validates and coerces one data row. It returns the record, a
// flag telling whether the department code was derived from the geo zone, and
// an empty reason on success.
func normalizeRow(row []string, columns columnIndexes) (Record, bool, string) {
	field := func(pos int) (string, bool) {
		if pos < 0 || pos >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[pos]), true
	}

	yearField, ok := field(columns.year)
	if !ok {
		return Record{}, false, ReasonTruncatedRow
	}
	zone, ok := field(columns.geoZone)
	if !ok {
		return Record{}, false, ReasonTruncatedRow
	}
	valueField, ok := field(columns.value)
	if !ok {
		return Record{}, false, ReasonTruncatedRow
	}
	indicator, ok := field(columns.indicator)
	if !ok {
		return Record{}, false, ReasonTruncatedRow
	}

	year, err := strconv.Atoi(yearField)
	if err != nil {
		return Record{}, false, ReasonBadYear
	}

	value, err := strconv.Atoi(valueField)
	if err != nil || value < 0 {
		return Record{}, false, ReasonBadValue
	}

	if zone == "" {
		return Record{}, false, ReasonEmptyZone
	}
	if indicator == "" {
		return Record{}, false, ReasonEmptyIndicator
	}

	deptCode := ""
	if columns.deptCode >= 0 {
		deptCode, _ = field(columns.deptCode)
	}

	derived := false
	if deptCode == "" {
		var ok bool
		deptCode, ok = DeriveDeptCode(zone)
		if !ok {
			return Record{}, false, ReasonDeptCodeUnderived
		}
		derived = true
	}

	deptCode = normalizeDeptCode(deptCode)
	if len(deptCode) < 2 || len(deptCode) > 3 {
		return Record{}, false, ReasonBadDeptCode
	}

	return Record{
		Year:      year,
		GeoZone:   zone,
		Value:     value,
		Indicator: indicator,
		DeptCode:  deptCode,
	}, derived, ""
}

// DeriveDeptCode extracts the department code from a geo zone label such as
// "75-Paris": the substring before the first '-'. Labels without a separator
// or with a non 2-3 digit prefix cannot be derived.
func DeriveDeptCode(zone string) (string, bool) {
	prefix, _, found := strings.Cut(zone, "-")
	if !found {
		return "", false
	}
	prefix = strings.TrimSpace(prefix)
	if len(prefix) < 2 || len(prefix) > 3 {
		return "", false
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return prefix, true
}

// normalizeDeptCode left-pads single-digit numeric codes to the conventional
// two characters ("5" becomes "05").
func normalizeDeptCode(code string) string {
	if len(code) == 1 && code[0] >= '0' && code[0] <= '9' {
		return "0" + code
	}
	return code
}

// isMetropolitan reports whether the code identifies a metropolitan France or
// Corsica department: a two-digit number from 01 to 95.
func isMetropolitan(code string) bool {
	if len(code) != 2 {
		return false
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 95
}

// isRowEmpty reports whether every field of the row is blank.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// IsFatal reports whether err is one of the loader's fatal error kinds, as
// opposed to per-row diagnostics which never surface as errors.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDatasetNotFound) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrUnsupportedEncoding)
}
