// Package compliance compares actual against expected RPE registrations
// per player, per week, and cumulatively.
package compliance

import (
	"sort"
	"time"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/schedule"
)

// Cell holds one player's figures for one week. Rates are exact
// quotients; over-registration is visible as a rate above 1.0.
type Cell struct {
	Expected       int
	Actual         int
	Rate           float64
	CumExpected    int
	CumActual      int
	CumulativeRate float64
}

// Row is one player/week record. Rows for a player cover every schedule
// week in order, so cumulative figures read as a trend.
type Row struct {
	PlayerID string
	Week     model.Week
	Cell     Cell
}

// TrendPoint is the team's mean cumulative compliance for one week,
// averaged over non-exempt players with a non-zero cumulative expectation.
type TrendPoint struct {
	Week model.Week
	Rate float64
}

// Result is the full compliance computation for one team and period.
type Result struct {
	Rows  []Row
	Trend []TrendPoint
}

// Calculate computes per-week and cumulative compliance for every
// non-exempt roster player. Exempt players are excluded from numerator
// and denominator alike; they still appear in the duplicate and anomaly
// reports upstream. The exemption set is an explicit argument, never
// ambient state, so concurrent reports cannot observe each other's
// overrides.
func Calculate(players []model.Player, idx *schedule.Index, team string, from, to time.Time, primaries []model.Entry, exempt map[string]bool) Result {
	weeks := idx.Weeks(team, from, to)
	expectedPerWeek := idx.SessionsPerWeek(team, from, to)

	// Distinct team sessions with at least one primary entry, per player
	// per week. Entries without a resolvable team session never count.
	type key struct {
		playerID string
		week     model.Week
	}
	actual := make(map[key]map[string]bool)
	for _, e := range primaries {
		if !e.HasSession() {
			continue
		}
		sess, ok := idx.ByID(e.SessionID)
		if !ok || sess.Team != team {
			continue
		}
		if !from.IsZero() && sess.Date.Before(from) {
			continue
		}
		if !to.IsZero() && sess.Date.After(to) {
			continue
		}
		k := key{playerID: e.PlayerID, week: sess.Week()}
		if actual[k] == nil {
			actual[k] = make(map[string]bool)
		}
		actual[k][e.SessionID] = true
	}

	ordered := make([]model.Player, 0, len(players))
	for _, p := range players {
		if p.Team != team || exempt[p.PlayerID] {
			continue
		}
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].PlayerID < ordered[j].PlayerID })

	var res Result
	cumRates := make(map[model.Week][]float64)
	for _, p := range ordered {
		cumExpected, cumActual := 0, 0
		for _, w := range weeks {
			expected := expectedPerWeek[w]
			got := len(actual[key{playerID: p.PlayerID, week: w}])
			cumExpected += expected
			cumActual += got
			cell := Cell{
				Expected:       expected,
				Actual:         got,
				Rate:           rate(got, expected),
				CumExpected:    cumExpected,
				CumActual:      cumActual,
				CumulativeRate: rate(cumActual, cumExpected),
			}
			res.Rows = append(res.Rows, Row{PlayerID: p.PlayerID, Week: w, Cell: cell})
			if cumExpected > 0 {
				cumRates[w] = append(cumRates[w], cell.CumulativeRate)
			}
		}
	}

	for _, w := range weeks {
		rates := cumRates[w]
		if len(rates) == 0 {
			continue
		}
		var sum float64
		for _, r := range rates {
			sum += r
		}
		res.Trend = append(res.Trend, TrendPoint{Week: w, Rate: sum / float64(len(rates))})
	}
	return res
}

// rate is the exact quotient actual/expected, vacuously 1.0 when nothing
// was expected. Never clamped: over-registration must stay visible.
func rate(actual, expected int) float64 {
	if expected == 0 {
		return 1.0
	}
	return float64(actual) / float64(expected)
}
