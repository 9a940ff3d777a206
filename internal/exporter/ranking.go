package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"secustats/internal/stats"
)

var rankingHeaders = []string{"Rang", "Code departement", "Zone geographique", "Moyenne annuelle", "Ecart-type", "Annees"}

// WriteRankingCSV writes the ranking as CSV with a UTF-8 BOM so Excel picks
// up the encoding.
func WriteRankingCSV(w io.Writer, r stats.Ranking) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(rankingHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, e := range r.Entries {
		record := []string{
			strconv.Itoa(e.Rank),
			e.DeptCode,
			e.Zone,
			formatFloat(e.Mean),
			formatFloat(e.StdDev),
			strconv.Itoa(e.Years),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write rank %d: %w", e.Rank, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteRankingXLSX writes the ranking as an XLSX workbook with one sheet
// named after the indicator.
func WriteRankingXLSX(w io.Writer, r stats.Ranking) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(r.Indicator)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range rankingHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, e := range r.Entries {
		values := []interface{}{e.Rank, e.DeptCode, e.Zone, e.Mean, e.StdDev, e.Years}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write rank %d: %w", e.Rank, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

var summaryHeaders = []string{"Indicateur", "Premiere annee", "Derniere annee", "Evolution", "Evolution (%)", "Total", "Moyenne annuelle", "Maximum", "Annee du maximum", "Minimum", "Annee du minimum"}

// WriteSummaryCSV writes the indicator summaries as CSV with a UTF-8 BOM.
func WriteSummaryCSV(w io.Writer, summaries []stats.IndicatorSummary) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(summaryHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, s := range summaries {
		pct := ""
		if s.ChangePct != nil {
			pct = formatFloat(*s.ChangePct)
		}
		record := []string{
			s.Indicator,
			strconv.Itoa(s.FirstYear),
			strconv.Itoa(s.LastYear),
			strconv.Itoa(s.Change),
			pct,
			strconv.Itoa(s.Total),
			formatFloat(s.AnnualMean),
			strconv.Itoa(s.Max.Value),
			strconv.Itoa(s.Max.Year),
			strconv.Itoa(s.Min.Value),
			strconv.Itoa(s.Min.Year),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write summary for %s: %w", s.Indicator, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatFloat renders values with two decimals, matching the dashboard
// display.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// sheetName truncates the indicator to the 31-character XLSX sheet name
// limit.
func sheetName(indicator string) string {
	if indicator == "" {
		return "Classement"
	}
	runes := []rune(indicator)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
