// Package dedupe finds multiple RPE entries attributable to the same
// player for the same session or date.
package dedupe

import (
	"sort"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
)

// Cluster is a group of entries sharing a duplicate key. EntryIDs lists
// the primary entry first, then the remaining entries in tie-break order.
type Cluster struct {
	PlayerID string
	Key      string
	EntryIDs []string
	Count    int
}

// Result carries the primary entry of every group plus the clusters that
// actually contain duplicates.
type Result struct {
	// Primaries holds exactly one entry per (player, key) group, the one
	// that feeds workload and compliance aggregation. Sorted by
	// (player, date, entry id).
	Primaries []model.Entry

	// Clusters reports every group with more than one entry, sorted by
	// (player, key). All members appear here, primaries included.
	Clusters []Cluster
}

// Detect groups normalized entries by (player, session-id-if-present-else-
// date) and selects a deterministic primary per group: earliest submission
// timestamp wins, ties broken by lowest entry id.
func Detect(entries []model.Entry) Result {
	type groupKey struct {
		playerID string
		key      string
	}

	groups := make(map[groupKey][]model.Entry)
	var order []groupKey
	for _, e := range entries {
		k := groupKey{playerID: e.PlayerID, key: keyOf(e)}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}

	var res Result
	for _, k := range order {
		members := groups[k]
		sort.Slice(members, func(i, j int) bool { return wins(members[i], members[j]) })
		res.Primaries = append(res.Primaries, members[0])
		if len(members) < 2 {
			continue
		}
		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = m.EntryID
		}
		res.Clusters = append(res.Clusters, Cluster{
			PlayerID: k.playerID,
			Key:      k.key,
			EntryIDs: ids,
			Count:    len(members),
		})
	}

	sort.Slice(res.Primaries, func(i, j int) bool {
		a, b := res.Primaries[i], res.Primaries[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.EntryID < b.EntryID
	})
	sort.Slice(res.Clusters, func(i, j int) bool {
		a, b := res.Clusters[i], res.Clusters[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		return a.Key < b.Key
	})
	return res
}

// keyOf returns the duplicate grouping key: the session id when the entry
// carries one, otherwise the calendar date.
func keyOf(e model.Entry) string {
	if e.HasSession() {
		return e.SessionID
	}
	return e.Date.Format("2006-01-02")
}

// wins reports whether a beats b as the group primary. Earliest submission
// timestamp wins; equal timestamps fall back to the lowest entry id so the
// order is total.
func wins(a, b model.Entry) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.EntryID < b.EntryID
}
