package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"secustats/internal/stats"
)

func testRanking() stats.Ranking {
	return stats.Ranking{
		Indicator: "Cambriolages",
		Entries: []stats.RankingEntry{
			{Rank: 1, DeptCode: "75", Zone: "75-Paris", Mean: 123.33, StdDev: 25.17, Years: 3},
			{Rank: 2, DeptCode: "13", Zone: "13-Bouches-du-Rhone", Mean: 60, StdDev: 10, Years: 3},
		},
	}
}

func TestWriteRankingCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRankingCSV(&buf, testRanking()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"), "missing UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(rankingHeaders, ";"), lines[0])
	assert.Equal(t, "1;75;75-Paris;123.33;25.17;3", lines[1])
	assert.Equal(t, "2;13;13-Bouches-du-Rhone;60.00;10.00;3", lines[2])
}

func TestWriteRankingXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRankingXLSX(&buf, testRanking()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "Cambriolages")

	rows, err := f.GetRows("Cambriolages")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, rankingHeaders, rows[0])
	assert.Equal(t, "75", rows[1][1])
	assert.Equal(t, "75-Paris", rows[1][2])
}

func TestWriteSummaryCSV(t *testing.T) {
	pct := 26.67
	summaries := []stats.IndicatorSummary{
		{
			Indicator:  "Cambriolages",
			FirstYear:  2021,
			LastYear:   2023,
			FirstValue: 150,
			LastValue:  190,
			Change:     40,
			ChangePct:  &pct,
			Total:      550,
			AnnualMean: 183.33,
			Max:        stats.YearValue{Year: 2022, Value: 210},
			Min:        stats.YearValue{Year: 2021, Value: 150},
		},
		{
			// Zero baseline leaves the percentage blank.
			Indicator: "Homicides",
			FirstYear: 2021,
			LastYear:  2022,
			Change:    12,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, summaries))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(buf.String(), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Cambriolages;2021;2023;40;26.67;550;183.33")
	assert.Contains(t, lines[2], "Homicides;2021;2022;12;;")
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Classement", sheetName(""))
	assert.Equal(t, "Cambriolages", sheetName("Cambriolages"))

	long := strings.Repeat("a", 40)
	assert.Len(t, sheetName(long), 31)
}
