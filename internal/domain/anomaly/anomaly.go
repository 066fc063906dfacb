// Package anomaly flags entries referencing missing or unknown sessions
// and submissions outside a session's valid window.
package anomaly

import (
	"fmt"
	"sort"
	"time"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/schedule"
)

// Kind identifies an anomaly rule category.
type Kind string

// Anomaly kinds. MissingSessionID and OrphanSessionID are mutually
// exclusive by construction: the first requires the reference to be
// absent, the second requires it to be present.
const (
	KindMissingSessionID     Kind = "missing_session_id"
	KindOrphanSessionID      Kind = "orphan_session_id"
	KindTimestampOutOfWindow Kind = "timestamp_out_of_window"
)

// DefaultGraceWindow is how long after a session's date a submission is
// still considered in-window, extended to the end of the day it lands on.
// A policy value, not derived from data.
const DefaultGraceWindow = 48 * time.Hour

// Record reports one anomaly on one entry.
type Record struct {
	EntryID string
	Kind    Kind
	Detail  string
}

// Detector classifies primary entries against a team's schedule.
type Detector struct {
	idx   *schedule.Index
	team  string
	grace time.Duration
}

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithGraceWindow overrides the submission grace window.
func WithGraceWindow(grace time.Duration) Option {
	return func(d *Detector) {
		if grace > 0 {
			d.grace = grace
		}
	}
}

// NewDetector creates a detector for one team over one schedule snapshot.
func NewDetector(idx *schedule.Index, team string, opts ...Option) *Detector {
	d := &Detector{
		idx:   idx,
		team:  team,
		grace: DefaultGraceWindow,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies each entry. At most one record is produced per entry:
// an absent reference is a missing-session anomaly, an unknown one is an
// orphan, and only entries with a resolvable session can be checked
// against the submission window. Records come back sorted by entry id.
func (d *Detector) Detect(entries []model.Entry) []Record {
	var records []Record
	for _, e := range entries {
		if !e.HasSession() {
			records = append(records, Record{
				EntryID: e.EntryID,
				Kind:    KindMissingSessionID,
				Detail:  fmt.Sprintf("entry dated %s has no session reference", e.Date.Format("2006-01-02")),
			})
			continue
		}
		sess, ok := d.idx.ByID(e.SessionID)
		if !ok || sess.Team != d.team {
			records = append(records, Record{
				EntryID: e.EntryID,
				Kind:    KindOrphanSessionID,
				Detail:  fmt.Sprintf("session %s is not scheduled for team %s", e.SessionID, d.team),
			})
			continue
		}
		if e.Timestamp.IsZero() {
			continue
		}
		lo, hi := d.window(sess.Date)
		if e.Timestamp.Before(lo) || !e.Timestamp.Before(hi) {
			records = append(records, Record{
				EntryID: e.EntryID,
				Kind:    KindTimestampOutOfWindow,
				Detail: fmt.Sprintf("submitted %s outside window [%s, %s)",
					e.Timestamp.UTC().Format(time.RFC3339),
					lo.Format(time.RFC3339),
					hi.Format(time.RFC3339)),
			})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].EntryID != records[j].EntryID {
			return records[i].EntryID < records[j].EntryID
		}
		return records[i].Kind < records[j].Kind
	})
	return records
}

// window returns the valid submission interval [lo, hi) for a session
// date: from the start of the session day until the end of the calendar
// day reached by day-start plus the grace window.
func (d *Detector) window(sessionDate time.Time) (time.Time, time.Time) {
	y, m, day := sessionDate.UTC().Date()
	lo := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	gy, gm, gd := lo.Add(d.grace).Date()
	hi := time.Date(gy, gm, gd, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return lo, hi
}
