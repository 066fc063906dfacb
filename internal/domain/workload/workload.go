// Package workload computes weekly training load and rolling
// acute/chronic figures from primary RPE entries.
package workload

import (
	"sort"
	"time"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
)

// Rolling window lengths. Acute is the trailing week; chronic is the
// trailing month expressed as an average week.
const (
	acuteWindowDays   = 7
	chronicWindowDays = 28
	chronicWeeks      = 4
)

// Band classifies an acute:chronic ratio.
type Band string

// Risk bands. The three bands partition the real line; BandUnknown is the
// sentinel for an undefined ratio (zero chronic load).
const (
	BandLow      Band = "low"
	BandModerate Band = "moderate"
	BandHigh     Band = "high"
	BandUnknown  Band = "unknown"
)

// Thresholds are the ratio boundaries between bands. Values at OuterLow
// and OuterHigh are high risk; values at InnerLow and InnerHigh are low
// risk.
type Thresholds struct {
	OuterLow  float64
	InnerLow  float64
	InnerHigh float64
	OuterHigh float64
}

// DefaultThresholds reconstructs the club's color coding: 0.75/1.35 outer
// bounds with a 0.85..1.25 low-risk core.
func DefaultThresholds() Thresholds {
	return Thresholds{OuterLow: 0.75, InnerLow: 0.85, InnerHigh: 1.25, OuterHigh: 1.35}
}

// valid reports whether the thresholds are strictly ordered.
func (t Thresholds) valid() bool {
	return t.OuterLow < t.InnerLow && t.InnerLow < t.InnerHigh && t.InnerHigh < t.OuterHigh
}

// WeekLoad is one player's summed load for one ISO week.
type WeekLoad struct {
	PlayerID string
	Week     model.Week
	Load     float64
}

// RatioPoint is one player's rolling figures for one week-ending date.
// Ratio is nil when the chronic load is zero.
type RatioPoint struct {
	PlayerID string
	Week     model.Week
	WeekEnd  time.Time
	Acute    float64
	Chronic  float64
	Ratio    *float64
	Risk     Band
}

// Aggregator computes load aggregates with configurable risk thresholds.
type Aggregator struct {
	thresholds Thresholds
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithThresholds overrides the risk band boundaries. Invalid (unordered)
// thresholds are ignored.
func WithThresholds(t Thresholds) Option {
	return func(a *Aggregator) {
		if t.valid() {
			a.thresholds = t
		}
	}
}

// NewAggregator creates an aggregator with default thresholds.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WeeklyLoads sums rpe_score × training_minutes per player per ISO week
// over the given primary entries. Rows come back sorted by (player, week).
func (a *Aggregator) WeeklyLoads(entries []model.Entry) []WeekLoad {
	type key struct {
		playerID string
		week     model.Week
	}
	sums := make(map[key]float64)
	for _, e := range entries {
		k := key{playerID: e.PlayerID, week: model.WeekOf(e.Date)}
		sums[k] += e.Load()
	}
	out := make([]WeekLoad, 0, len(sums))
	for k, load := range sums {
		out = append(out, WeekLoad{PlayerID: k.playerID, Week: k.week, Load: load})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].Week.Before(out[j].Week)
	})
	return out
}

// Ratios derives acute load, chronic load, and their ratio for every
// player at every given week-ending date. Acute is the trailing 7-day
// load sum; chronic is the trailing 28-day sum divided by 4. A zero
// chronic load leaves the ratio nil and the band unknown — never a
// division fault.
func (a *Aggregator) Ratios(entries []model.Entry, weeks []model.Week) []RatioPoint {
	daily := make(map[string]map[time.Time]float64)
	var players []string
	for _, e := range entries {
		if daily[e.PlayerID] == nil {
			daily[e.PlayerID] = make(map[time.Time]float64)
			players = append(players, e.PlayerID)
		}
		daily[e.PlayerID][e.Date] += e.Load()
	}
	sort.Strings(players)

	var out []RatioPoint
	for _, playerID := range players {
		days := daily[playerID]
		for _, week := range weeks {
			end := week.Sunday()
			acute := trailingSum(days, end, acuteWindowDays)
			chronic := trailingSum(days, end, chronicWindowDays) / chronicWeeks
			p := RatioPoint{
				PlayerID: playerID,
				Week:     week,
				WeekEnd:  end,
				Acute:    acute,
				Chronic:  chronic,
				Risk:     BandUnknown,
			}
			if chronic != 0 {
				ratio := acute / chronic
				p.Ratio = &ratio
				p.Risk = a.Classify(ratio)
			}
			out = append(out, p)
		}
	}
	return out
}

// Classify maps a finite ratio to exactly one risk band. Boundary values
// resolve to the stricter band they touch at the inner bounds and to high
// risk at the outer bounds.
func (a *Aggregator) Classify(ratio float64) Band {
	t := a.thresholds
	switch {
	case ratio <= t.OuterLow || ratio >= t.OuterHigh:
		return BandHigh
	case ratio >= t.InnerLow && ratio <= t.InnerHigh:
		return BandLow
	default:
		return BandModerate
	}
}

// trailingSum sums the daily loads in the windowDays days ending on end
// (inclusive).
func trailingSum(days map[time.Time]float64, end time.Time, windowDays int) float64 {
	var sum float64
	for i := 0; i < windowDays; i++ {
		sum += days[end.AddDate(0, 0, -i)]
	}
	return sum
}
