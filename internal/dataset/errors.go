package dataset

import "errors"

// Loader errors
var (
	// ErrDatasetNotFound means the CSV export is not at the configured path.
	// Fatal: the user must download the file and place it in the data
	// directory before the dashboard can start.
	ErrDatasetNotFound = errors.New("dataset file not found")

	// ErrMissingColumn means the file lacks one of the required columns.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyDataset means the file contained no data rows at all.
	ErrEmptyDataset = errors.New("dataset file is empty")

	// ErrUnsupportedEncoding means the configured encoding has no decoder.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// RowError describes a single rejected row. Rejections are diagnostics, not
// failures: the load succeeds with the remaining valid rows.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Row rejection reasons
const (
	ReasonTruncatedRow      = "row has fewer fields than the header"
	ReasonBadYear           = "Unite_temps is not an integer"
	ReasonBadValue          = "Valeurs is not a non-negative integer"
	ReasonEmptyZone         = "Zone_geographique is empty"
	ReasonEmptyIndicator    = "Indicateur is empty"
	ReasonDeptCodeUnderived = "department code cannot be derived from Zone_geographique"
	ReasonBadDeptCode       = "department code is not 2-3 characters"
)
