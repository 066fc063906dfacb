// Package export renders report tables as CSV, one row per logical
// record with flat columns.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/types"
)

// Table names accepted by Rows.
const (
	TableWeeklyLoad = "weekly-load"
	TableRatios     = "ratios"
	TableCompliance = "compliance"
	TableTeamTrend  = "team-trend"
	TableDuplicates = "duplicates"
	TableAnomalies  = "anomalies"
	TableMalformed  = "malformed"
)

// Tables lists every exportable table name.
func Tables() []string {
	return []string{
		TableWeeklyLoad,
		TableRatios,
		TableCompliance,
		TableTeamTrend,
		TableDuplicates,
		TableAnomalies,
		TableMalformed,
	}
}

// Rows flattens one report table into a header row plus data rows.
// Row order follows the report: players alphabetically, weeks
// chronologically, so identical reports export identical files.
func Rows(r *types.Report, table string) ([][]string, error) {
	switch table {
	case TableWeeklyLoad:
		return weeklyLoadRows(r), nil
	case TableRatios:
		return ratioRows(r), nil
	case TableCompliance:
		return complianceRows(r), nil
	case TableTeamTrend:
		return trendRows(r), nil
	case TableDuplicates:
		return duplicateRows(r), nil
	case TableAnomalies:
		return anomalyRows(r), nil
	case TableMalformed:
		return malformedRows(r), nil
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

// Write renders rows as CSV.
func Write(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("csv write failed: %w", err)
	}
	return nil
}

func weeklyLoadRows(r *types.Report) [][]string {
	rows := [][]string{{"player_id", "player_name", "week", "load"}}
	for _, row := range r.WeeklyLoad {
		for _, week := range r.Weeks {
			load, ok := row.Loads[week]
			if !ok {
				continue
			}
			rows = append(rows, []string{row.PlayerID, row.PlayerName, week, num(load)})
		}
	}
	return rows
}

func ratioRows(r *types.Report) [][]string {
	rows := [][]string{{"player_id", "player_name", "week", "acute", "chronic", "ratio", "risk"}}
	for _, row := range r.Ratios {
		for _, week := range r.Weeks {
			cell, ok := row.Cells[week]
			if !ok {
				continue
			}
			ratio := ""
			if cell.Ratio != nil {
				ratio = num(*cell.Ratio)
			}
			rows = append(rows, []string{
				row.PlayerID, row.PlayerName, week,
				num(cell.Acute), num(cell.Chronic), ratio, cell.Risk,
			})
		}
	}
	return rows
}

func complianceRows(r *types.Report) [][]string {
	rows := [][]string{{"player_id", "player_name", "week", "expected", "actual", "rate", "cumulative_rate"}}
	for _, row := range r.Compliance {
		for _, week := range r.Weeks {
			cell, ok := row.Cells[week]
			if !ok {
				continue
			}
			rows = append(rows, []string{
				row.PlayerID, row.PlayerName, week,
				strconv.Itoa(cell.Expected), strconv.Itoa(cell.Actual),
				num(cell.Rate), num(cell.CumulativeRate),
			})
		}
	}
	return rows
}

func trendRows(r *types.Report) [][]string {
	rows := [][]string{{"week", "team_cumulative_rate"}}
	for _, p := range r.TeamTrend {
		rows = append(rows, []string{p.Week, num(p.Rate)})
	}
	return rows
}

func duplicateRows(r *types.Report) [][]string {
	rows := [][]string{{"player_id", "key", "entry_ids", "count"}}
	for _, c := range r.Duplicates {
		rows = append(rows, []string{c.PlayerID, c.Key, strings.Join(c.EntryIDs, ";"), strconv.Itoa(c.Count)})
	}
	return rows
}

func anomalyRows(r *types.Report) [][]string {
	rows := [][]string{{"entry_id", "kind", "detail"}}
	for _, a := range r.Anomalies {
		rows = append(rows, []string{a.EntryID, a.Kind, a.Detail})
	}
	return rows
}

func malformedRows(r *types.Report) [][]string {
	rows := [][]string{{"entry_id", "reason"}}
	for _, m := range r.Malformed {
		rows = append(rows, []string{m.EntryID, m.Reason})
	}
	return rows
}

// num renders a table cell value without exponent notation.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
