// Package exporter writes dashboard aggregations to downloadable files.
//
// Rankings and indicator summaries can be exported as CSV (with a UTF-8 BOM
// for Excel compatibility) or as XLSX workbooks. All writers stream to an
// io.Writer so handlers can write straight to the HTTP response.
//
// Example usage:
//
//	ranking := stats.DepartmentRanking(ds, "Cambriolages", stats.Filter{}, 15)
//	err := exporter.WriteRankingXLSX(w, ranking)
package exporter
