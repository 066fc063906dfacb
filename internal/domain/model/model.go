// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// SessionType enumerates the session kinds used by the club.
// T1..T4 are training categories; M is a match.
type SessionType string

// Known session types. Mirrors the session documents.
const (
	SessionT1    SessionType = "T1"
	SessionT2    SessionType = "T2"
	SessionT3    SessionType = "T3"
	SessionT4    SessionType = "T4"
	SessionMatch SessionType = "M"
)

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case SessionT1, SessionT2, SessionT3, SessionT4, SessionMatch:
		return true
	}
	return false
}

// Player is read-only roster reference data.
type Player struct {
	PlayerID  string `bson:"player_id"`
	FirstName string `bson:"player_first_name"`
	LastName  string `bson:"player_last_name"`
	Team      string `bson:"team"`
}

// DisplayName renders the roster display form "Last, First".
func (p Player) DisplayName() string {
	last := strings.TrimSpace(p.LastName)
	first := strings.TrimSpace(p.FirstName)
	switch {
	case last == "" && first == "":
		return p.PlayerID
	case last == "":
		return first
	case first == "":
		return last
	}
	return last + ", " + first
}

// Session is a scheduled training session or match.
// SessionID is YYYYMMDD + team and uniquely determines team and date.
type Session struct {
	SessionID       string      `bson:"session_id"`
	Team            string      `bson:"team"`
	Date            time.Time   `bson:"date"`
	Type            SessionType `bson:"session_type"`
	DurationMinutes int         `bson:"duration"`
	WeekNumber      int         `bson:"weeknumber"`
}

// Week returns the ISO week the session belongs to. The stored weeknumber
// is preferred when it names a week that exists in the date's ISO year;
// a missing or out-of-range value falls back to the week derived from the
// session date, so a corrupt document can never yield a week no calendar
// day maps to.
func (s Session) Week() Week {
	y, w := s.Date.ISOWeek()
	if s.WeekNumber >= 1 && s.WeekNumber <= weeksInISOYear(y) {
		w = s.WeekNumber
	}
	return Week{Year: y, Number: w}
}

// weeksInISOYear returns the number of ISO weeks in year, 52 or 53.
func weeksInISOYear(year int) int {
	// Dec 28 always falls in the last ISO week of its year.
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// RawEntry is an RPE registration exactly as fetched from the store, before
// normalization. Field types are loose on purpose: historic documents mix
// string and numeric encodings for ids and scores.
type RawEntry struct {
	EntryID   string `bson:"-"`
	PlayerID  any    `bson:"player_id"`
	SessionID any    `bson:"session_id"`
	Date      any    `bson:"date"`
	Score     any    `bson:"rpe_score"`
	Minutes   any    `bson:"training_minutes"`
	Timestamp any    `bson:"timestamp"`
}

// Entry is a normalized, well-formed RPE registration.
type Entry struct {
	EntryID   string
	PlayerID  string
	SessionID string // empty when the registration carries no session reference
	Date      time.Time
	Score     int
	Minutes   int
	Timestamp time.Time
}

// HasSession reports whether the entry references a session.
func (e Entry) HasSession() bool { return e.SessionID != "" }

// Load returns the entry's training-load contribution: score × minutes.
func (e Entry) Load() float64 { return float64(e.Score) * float64(e.Minutes) }

// Week is an ISO week (Monday-start), the aggregation bucket for all
// weekly tables.
type Week struct {
	Year   int
	Number int
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Number: w}
}

// Label renders the week as "2025-W36". Labels sort chronologically as
// plain strings, which the table builders rely on.
func (w Week) Label() string { return fmt.Sprintf("%04d-W%02d", w.Year, w.Number) }

// Before reports whether w precedes other.
func (w Week) Before(other Week) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Number < other.Number
}

// Monday returns the first day of the week at 00:00 UTC.
func (w Week) Monday() time.Time {
	// Jan 4 is always in ISO week 1.
	t := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, -1)
	}
	return t.AddDate(0, 0, (w.Number-1)*7)
}

// Sunday returns the last day of the week at 00:00 UTC, the week-ending
// date used for acute and chronic load windows.
func (w Week) Sunday() time.Time {
	return w.Monday().AddDate(0, 0, 6)
}
