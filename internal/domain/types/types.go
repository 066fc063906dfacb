// Package types contains the report shapes shared between the service,
// the HTTP API, and the CSV export.
package types

// WeeklyLoadRow is one player's row in the weekly load table.
// Loads is keyed by ISO week label ("2025-W36") and holds the summed
// training load rounded to 2 decimals.
type WeeklyLoadRow struct {
	PlayerID   string             `json:"player_id"`
	PlayerName string             `json:"player_name"`
	Loads      map[string]float64 `json:"loads"`
}

// RatioCell is one week's acute:chronic figures for a player.
// Ratio is nil when the chronic load is zero.
type RatioCell struct {
	Acute   float64  `json:"acute"`
	Chronic float64  `json:"chronic"`
	Ratio   *float64 `json:"ratio"`
	Risk    string   `json:"risk"`
}

// RatioRow is one player's row in the ratio/risk table, keyed by week label.
type RatioRow struct {
	PlayerID   string               `json:"player_id"`
	PlayerName string               `json:"player_name"`
	Cells      map[string]RatioCell `json:"cells"`
}

// ComplianceCell compares expected and actual registrations for one week.
type ComplianceCell struct {
	Expected       int     `json:"expected"`
	Actual         int     `json:"actual"`
	Rate           float64 `json:"rate"`
	CumulativeRate float64 `json:"cumulative_rate"`
}

// ComplianceRow is one player's row in the compliance table, keyed by week label.
type ComplianceRow struct {
	PlayerID   string                    `json:"player_id"`
	PlayerName string                    `json:"player_name"`
	Cells      map[string]ComplianceCell `json:"cells"`
}

// TrendPoint is one week of the team cumulative compliance trend.
type TrendPoint struct {
	Week string  `json:"week"`
	Rate float64 `json:"rate"`
}

// DuplicateCluster reports a group of entries attributable to the same
// player and session (or date, when no session reference exists).
// EntryIDs lists the primary entry first.
type DuplicateCluster struct {
	PlayerID string   `json:"player_id"`
	Key      string   `json:"key"`
	EntryIDs []string `json:"entry_ids"`
	Count    int      `json:"count"`
}

// AnomalyRecord reports a single data-quality issue on an entry.
type AnomalyRecord struct {
	EntryID string `json:"entry_id"`
	Kind    string `json:"kind"`
	Detail  string `json:"detail"`
}

// MalformedEntry reports an entry rejected by structural validation.
type MalformedEntry struct {
	EntryID string `json:"entry_id"`
	Reason  string `json:"reason"`
}

// Summary holds the headline figures shown above the tables.
type Summary struct {
	TeamComplianceRate float64 `json:"team_compliance_rate"`
	SessionCount       int     `json:"session_count"`
	DuplicateEntries   int     `json:"duplicate_entries"`
	AnomalyCount       int     `json:"anomaly_count"`
	MalformedCount     int     `json:"malformed_count"`
}

// Report is the full data-quality and workload report for one team.
// All slices are sorted deterministically: players alphabetically by
// display name, weeks chronologically.
type Report struct {
	Team       string             `json:"team"`
	Weeks      []string           `json:"weeks"`
	WeeklyLoad []WeeklyLoadRow    `json:"weekly_load"`
	Ratios     []RatioRow         `json:"ratios"`
	Compliance []ComplianceRow    `json:"compliance"`
	TeamTrend  []TrendPoint       `json:"team_trend"`
	Duplicates []DuplicateCluster `json:"duplicates"`
	Anomalies  []AnomalyRecord    `json:"anomalies"`
	Malformed  []MalformedEntry   `json:"malformed"`
	Summary    Summary            `json:"summary"`
}
