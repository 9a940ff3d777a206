package services

import "errors"

// Data service errors
var (
	// Selection errors
	ErrIndicatorNotFound  = errors.New("indicator not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrYearNotFound       = errors.New("year not covered by the dataset")
	ErrEmptySelection     = errors.New("no records match the selected filters")
	ErrInvalidRange       = errors.New("start year is after end year")

	// Dataset errors
	ErrNoData = errors.New("dataset contains no records")

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
