// Package schedule indexes session records for lookup and
// expected-registration counting.
package schedule

import (
	"sort"
	"time"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
)

// Index provides session lookups over one immutable snapshot.
type Index struct {
	byID   map[string]model.Session
	byTeam map[string][]model.Session
}

// New builds an Index from a session snapshot. Sessions are deduplicated by
// identifier; when the snapshot carries the same id twice the record with
// the earliest date wins so rebuilds stay deterministic.
func New(sessions []model.Session) *Index {
	idx := &Index{
		byID:   make(map[string]model.Session, len(sessions)),
		byTeam: make(map[string][]model.Session),
	}
	ordered := make([]model.Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].SessionID < ordered[j].SessionID
	})
	for _, s := range ordered {
		if _, dup := idx.byID[s.SessionID]; dup {
			continue
		}
		idx.byID[s.SessionID] = s
		idx.byTeam[s.Team] = append(idx.byTeam[s.Team], s)
	}
	return idx
}

// ByID looks up a session by identifier. The second return value is false
// when the id is unknown so callers can classify an entry as orphaned
// instead of failing.
func (x *Index) ByID(id string) (model.Session, bool) {
	s, ok := x.byID[id]
	return s, ok
}

// Sessions returns the team's distinct sessions in [from, to], sorted by
// date then id. Zero from/to values leave the respective bound open.
func (x *Index) Sessions(team string, from, to time.Time) []model.Session {
	var out []model.Session
	for _, s := range x.byTeam[team] {
		if !from.IsZero() && s.Date.Before(from) {
			continue
		}
		if !to.IsZero() && s.Date.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Weeks returns the distinct ISO weeks with at least one session for the
// team in [from, to], chronologically.
func (x *Index) Weeks(team string, from, to time.Time) []model.Week {
	seen := make(map[model.Week]bool)
	var weeks []model.Week
	for _, s := range x.Sessions(team, from, to) {
		w := s.Week()
		if !seen[w] {
			seen[w] = true
			weeks = append(weeks, w)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}

// SessionsPerWeek returns the expected-registration denominator per week:
// the number of distinct sessions the team has in each ISO week of
// [from, to]. One expected registration per player per non-exempt session.
func (x *Index) SessionsPerWeek(team string, from, to time.Time) map[model.Week]int {
	counts := make(map[model.Week]int)
	for _, s := range x.Sessions(team, from, to) {
		counts[s.Week()]++
	}
	return counts
}

// Count returns the number of distinct sessions for the team in [from, to].
func (x *Index) Count(team string, from, to time.Time) int {
	return len(x.Sessions(team, from, to))
}
