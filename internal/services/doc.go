// Package services implements the business logic layer between the HTTP
// handlers and the dataset store, ensuring that aggregation rules and filter
// validation are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection for loose coupling
//	3. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
//	- DataService: filter validation and dashboard aggregations
//	- HealthService: liveness, readiness and build information
//
// # Error Handling
//
// Services return sentinel errors that handlers map to HTTP problem
// responses:
//
//	- ErrIndicatorNotFound, ErrDepartmentNotFound, ErrYearNotFound for
//	  filters naming dimensions absent from the dataset
//	- ErrEmptySelection when valid filters match no records
//	- ErrNoData when the dataset loaded but holds no usable rows
//
// Dataset loader errors (missing file, missing columns) pass through
// unwrapped so handlers can map them to availability problems.
package services
