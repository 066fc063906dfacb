// Package normalize validates raw RPE entry documents and separates
// well-formed entries from structurally invalid ones.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
)

// RPE score bounds. Scores are self-reported on a fixed 1..10 scale.
const (
	minScore = 1
	maxScore = 10
)

// Malformed is an entry rejected by structural validation. It is reported,
// never silently dropped.
type Malformed struct {
	EntryID string
	Reason  string
}

// Result separates the snapshot into well-formed entries and the
// malformed bucket.
type Result struct {
	Entries   []model.Entry
	Malformed []Malformed
}

// Entries normalizes a raw entry snapshot. The pass is pure and total: a
// bad record is classified into the malformed bucket and never aborts the
// run. Well-formed entries come back sorted by (player, date, entry id).
func Entries(raw []model.RawEntry) Result {
	var res Result
	for _, r := range raw {
		entry, reasons := normalizeOne(r)
		if len(reasons) > 0 {
			res.Malformed = append(res.Malformed, Malformed{
				EntryID: r.EntryID,
				Reason:  strings.Join(reasons, "; "),
			})
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	sort.Slice(res.Entries, func(i, j int) bool {
		a, b := res.Entries[i], res.Entries[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.EntryID < b.EntryID
	})
	sort.Slice(res.Malformed, func(i, j int) bool {
		return res.Malformed[i].EntryID < res.Malformed[j].EntryID
	})
	return res
}

func normalizeOne(r model.RawEntry) (model.Entry, []string) {
	var reasons []string

	playerID, ok := asID(r.PlayerID)
	if !ok || playerID == "" {
		reasons = append(reasons, "missing player reference")
	}

	sessionID, ok := asID(r.SessionID)
	if !ok {
		// A session reference is optional, but when present it must be an id.
		reasons = append(reasons, "session reference is not an identifier")
	}

	date, ok := asTime(r.Date)
	if !ok {
		reasons = append(reasons, "missing or unparseable date")
	}

	score, ok := asInt(r.Score)
	switch {
	case !ok:
		reasons = append(reasons, "rpe score is not a number")
	case score < minScore || score > maxScore:
		reasons = append(reasons, fmt.Sprintf("rpe score %d outside 1-10", score))
	}

	minutes, ok := asInt(r.Minutes)
	switch {
	case !ok:
		reasons = append(reasons, "training minutes is not a number")
	case minutes < 0:
		reasons = append(reasons, fmt.Sprintf("negative training minutes %d", minutes))
	}

	// The submission timestamp is optional; absent timestamps stay zero and
	// sort before any real one in the duplicate tie-break.
	ts, _ := asTime(r.Timestamp)

	if len(reasons) > 0 {
		return model.Entry{}, reasons
	}
	return model.Entry{
		EntryID:   r.EntryID,
		PlayerID:  playerID,
		SessionID: sessionID,
		Date:      truncateToDay(date),
		Score:     score,
		Minutes:   minutes,
		Timestamp: ts,
	}, nil
}

// asID coerces a player or session reference to a string. Historic
// documents store ids as strings, ints, or floats. A nil value is an
// absent reference, which is valid (empty id, ok).
func asID(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(t), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.Itoa(int(t)), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return "", false
	default:
		return "", false
	}
}

// asInt coerces a numeric field. Strings are accepted because older
// registrations stored scores as text.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// asTime coerces a date or timestamp field. Accepts time.Time and the two
// string encodings seen in the store.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
