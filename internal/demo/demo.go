// Package demo generates a deterministic synthetic snapshot so the
// service can run against the memory store without a database. The
// generated data exercises every report section: duplicates, orphan and
// missing session references, late submissions, and malformed records.
package demo

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
)

// Injection rates, per generated registration.
const (
	submitRate    = 0.88
	duplicateRate = 0.03
	orphanRate    = 0.01
	missingRate   = 0.02
	malformedRate = 0.01
	lateRate      = 0.02
)

var firstNames = []string{
	"Lars", "Milan", "Noah", "Seppe", "Arne", "Wout", "Jef", "Stan",
	"Lowie", "Vic", "Tuur", "Warre", "Senne", "Kobe", "Lenn", "Mats",
	"Jarne", "Ferre", "Timo", "Rune",
}

var lastNames = []string{
	"Peeters", "Janssens", "Maes", "Jacobs", "Mertens", "Willems",
	"Claes", "Goossens", "Wouters", "De Smet", "Dubois", "Lambert",
	"Martens", "Segers", "Verhoeven", "Pauwels", "Hermans", "Aerts",
	"Declercq", "Vermeulen",
}

// Snapshot is a complete generated data set for the memory store.
type Snapshot struct {
	Players  []model.Player
	Sessions []model.Session
	Entries  []model.RawEntry
}

// Generator builds snapshots from a fixed seed.
type Generator struct {
	seed           int64
	weeks          int
	playersPerTeam int
	teams          []string
	seasonStart    time.Time
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed fixes the random source. Equal seeds produce equal snapshots.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithWeeks sets the number of schedule weeks per team.
func WithWeeks(weeks int) Option {
	return func(g *Generator) {
		if weeks > 0 {
			g.weeks = weeks
		}
	}
}

// WithPlayersPerTeam sizes each generated roster.
func WithPlayersPerTeam(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.playersPerTeam = n
		}
	}
}

// WithTeams sets the team codes to generate.
func WithTeams(teams []string) Option {
	return func(g *Generator) {
		if len(teams) > 0 {
			g.teams = teams
		}
	}
}

// WithSeasonStart sets the Monday the first schedule week begins on.
func WithSeasonStart(start time.Time) Option {
	return func(g *Generator) { g.seasonStart = start }
}

// NewGenerator creates a generator with defaults: two squads, twelve
// weeks, season starting early August.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		seed:           42,
		weeks:          12,
		playersPerTeam: 18,
		teams:          []string{"U18", "U21"},
		seasonStart:    time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the snapshot. The output is fully determined by the
// generator's configuration.
func (g *Generator) Generate() Snapshot {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic seed for reproducible snapshots
	var snap Snapshot
	entrySeq := 0

	for teamIdx, team := range g.teams {
		players := g.roster(team, teamIdx)
		snap.Players = append(snap.Players, players...)

		sessions := g.schedule(team, rng)
		snap.Sessions = append(snap.Sessions, sessions...)

		for _, sess := range sessions {
			for _, p := range players {
				if rng.Float64() > submitRate {
					continue
				}
				entrySeq++
				entry := g.entry(entrySeq, p, sess, rng)
				snap.Entries = append(snap.Entries, entry)

				if rng.Float64() < duplicateRate {
					entrySeq++
					dup := entry
					dup.EntryID = entryID(entrySeq)
					dup.Score = 1 + rng.Intn(10)
					dup.Timestamp = entry.Timestamp.(time.Time).Add(time.Duration(1+rng.Intn(30)) * time.Minute)
					snap.Entries = append(snap.Entries, dup)
				}
			}
		}
	}
	return snap
}

func (g *Generator) roster(team string, teamIdx int) []model.Player {
	base := (teamIdx + 1) * 21000
	players := make([]model.Player, 0, g.playersPerTeam)
	for i := 0; i < g.playersPerTeam; i++ {
		players = append(players, model.Player{
			PlayerID:  fmt.Sprintf("%d", base+100+i),
			FirstName: firstNames[i%len(firstNames)],
			LastName:  lastNames[(i+teamIdx)%len(lastNames)],
			Team:      team,
		})
	}
	return players
}

// schedule lays out three trainings plus a match per week.
func (g *Generator) schedule(team string, rng *rand.Rand) []model.Session {
	plan := []struct {
		dayOffset int
		kind      model.SessionType
	}{
		{0, model.SessionT1},
		{2, model.SessionT2},
		{3, model.SessionT3},
		{6, model.SessionMatch},
	}
	var sessions []model.Session
	for w := 0; w < g.weeks; w++ {
		monday := g.seasonStart.AddDate(0, 0, w*7)
		for _, p := range plan {
			date := monday.AddDate(0, 0, p.dayOffset)
			duration := 75 + 5*rng.Intn(7)
			if p.kind == model.SessionMatch {
				duration = 90
			}
			_, week := date.ISOWeek()
			sessions = append(sessions, model.Session{
				SessionID:       date.Format("20060102") + team,
				Team:            team,
				Date:            date,
				Type:            p.kind,
				DurationMinutes: duration,
				WeekNumber:      week,
			})
		}
	}
	return sessions
}

func (g *Generator) entry(seq int, p model.Player, sess model.Session, rng *rand.Rand) model.RawEntry {
	score := 3 + rng.Intn(6)
	if sess.Type == model.SessionMatch {
		score = 6 + rng.Intn(5)
	}
	minutes := sess.DurationMinutes - rng.Intn(15)
	ts := sess.Date.Add(time.Duration(18+rng.Intn(5)) * time.Hour)
	if rng.Float64() < lateRate {
		ts = sess.Date.AddDate(0, 0, 3+rng.Intn(3))
	}

	e := model.RawEntry{
		EntryID:   entryID(seq),
		PlayerID:  p.PlayerID,
		SessionID: sess.SessionID,
		Date:      sess.Date,
		Score:     score,
		Minutes:   minutes,
		Timestamp: ts,
	}

	switch roll := rng.Float64(); {
	case roll < malformedRate:
		e.Score = "n/a"
	case roll < malformedRate+orphanRate:
		e.SessionID = "99999999" + sess.Team
	case roll < malformedRate+orphanRate+missingRate:
		e.SessionID = nil
	}
	return e
}

func entryID(seq int) string {
	return fmt.Sprintf("rpe-%06d", seq)
}
