// Package service provides the core analytics service that implements
// the dependencies required by the HTTP API. It owns the lifecycle of a
// report computation: one snapshot fetch, one pass of normalization,
// detectors, aggregation, and assembly.
package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pdemaers/player-wellness-dashboard/internal/adapters/repository"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/anomaly"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/compliance"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/dedupe"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/normalize"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/schedule"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/types"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/workload"
	"github.com/pdemaers/player-wellness-dashboard/pkg/logger"
	"github.com/pdemaers/player-wellness-dashboard/pkg/metrics"
)

// ReportRequest carries the arguments of one report computation. The
// exemption override is an explicit per-call value, never ambient state:
// two concurrent reports for different teams cannot observe each other's
// overrides.
type ReportRequest struct {
	Team string `validate:"required"`

	// From/To bound the reporting period by session and entry date. Both
	// zero means the whole stored season.
	From time.Time
	To   time.Time

	// ExemptOverride, when non-nil, replaces the configured default
	// exemption list for the team. An empty non-nil slice clears it.
	ExemptOverride []string
}

// Service computes data-quality and workload reports over store snapshots.
// Report computations are side-effect-free and share no mutable state, so
// any number may run concurrently.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	validate   *validator.Validate
	aggregator *workload.Aggregator

	// Configuration
	teams         []string
	graceWindow   time.Duration
	thresholds    workload.Thresholds
	defaultExempt map[string][]string

	// State
	started bool
	reports atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithTeams sets the team codes accepted by report requests.
func WithTeams(teams []string) Option {
	return func(s *Service) {
		if len(teams) > 0 {
			s.teams = teams
		}
	}
}

// WithGraceWindow sets the submission grace window for the timestamp
// anomaly rule.
func WithGraceWindow(grace time.Duration) Option {
	return func(s *Service) {
		if grace > 0 {
			s.graceWindow = grace
		}
	}
}

// WithRiskThresholds sets the acute:chronic risk band boundaries.
func WithRiskThresholds(t workload.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = t
	}
}

// WithDefaultExemptions sets the per-team default exemption lists.
func WithDefaultExemptions(exempt map[string][]string) Option {
	return func(s *Service) {
		if exempt != nil {
			s.defaultExempt = exempt
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		teams:         []string{"U18", "U21"},
		graceWindow:   anomaly.DefaultGraceWindow,
		thresholds:    workload.DefaultThresholds(),
		defaultExempt: map[string][]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		return fmt.Errorf("no store configured")
	}

	s.validate = validator.New()
	s.aggregator = workload.NewAggregator(workload.WithThresholds(s.thresholds))
	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Any("teams", s.teams),
		logger.String("graceWindow", s.graceWindow.String()),
	)
	return nil
}

// Stop shuts the service down. Computations in flight are unaffected;
// they hold their snapshot already.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// Report runs the full pipeline for one team and period. Per-record
// issues never abort the computation; they surface in the report's
// duplicate, anomaly, and malformed sections. Fetch failures abort the
// affected report only.
func (s *Service) Report(ctx context.Context, req ReportRequest) (*types.Report, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	if err := s.validateRequest(req); err != nil {
		metrics.RecordReportFailure("invalid_request")
		return nil, err
	}

	start := time.Now()
	snap, err := s.fetch(ctx, req.Team)
	if err != nil {
		metrics.RecordReportFailure("fetch_failed")
		s.logger.Error(ctx, "snapshot fetch failed", logger.String("team", req.Team), logger.Error(err))
		return nil, err
	}
	metrics.RecordSnapshotFetch(time.Since(start))

	report := s.compute(req, snap)

	s.reports.Add(1)
	metrics.RecordReportGenerated(time.Since(start))
	metrics.RecordQualityCounts(len(report.Duplicates), len(report.Anomalies), len(report.Malformed))
	s.logger.Info(ctx, "report generated",
		logger.String("team", req.Team),
		logger.Int("weeks", len(report.Weeks)),
		logger.Int("duplicates", len(report.Duplicates)),
		logger.Int("anomalies", len(report.Anomalies)),
		logger.Int("malformed", len(report.Malformed)),
	)
	return report, nil
}

// Teams returns the team codes accepted by report requests.
func (s *Service) Teams() []string {
	out := make([]string, len(s.teams))
	copy(out, s.teams)
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"started":          s.started,
		"teams":            s.teams,
		"graceWindowHours": int(s.graceWindow / time.Hour),
		"reportsGenerated": s.reports.Load(),
	}
}

func (s *Service) validateRequest(req ReportRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !slices.Contains(s.teams, req.Team) {
		return fmt.Errorf("%w: unknown team %q", ErrInvalidRequest, req.Team)
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.To.Before(req.From) {
		return fmt.Errorf("%w: period end precedes start", ErrInvalidRequest)
	}
	return nil
}

// snapshot is the immutable input of one report computation.
type snapshot struct {
	players  []model.Player
	sessions []model.Session
	entries  []model.RawEntry
}

// fetch reads the three collections once. Any failure aborts the report
// for this team; no partial tables are emitted.
func (s *Service) fetch(ctx context.Context, team string) (*snapshot, error) {
	players, err := s.store.Roster(ctx)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	sessions, err := s.store.Sessions(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	entries, err := s.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("entries: %w", err)
	}
	return &snapshot{players: players, sessions: sessions, entries: entries}, nil
}

// compute runs normalization, detectors, aggregation, and assembly over
// one snapshot. Pure: identical snapshot and configuration produce
// byte-identical tables.
func (s *Service) compute(req ReportRequest, snap *snapshot) *types.Report {
	idx := schedule.New(snap.sessions)

	roster := make([]model.Player, 0, len(snap.players))
	onTeam := make(map[string]model.Player)
	for _, p := range snap.players {
		if p.Team != req.Team {
			continue
		}
		roster = append(roster, p)
		onTeam[p.PlayerID] = p
	}

	norm := normalize.Entries(snap.entries)

	// Scope entries to the team's roster and the requested period.
	// Orphaned and session-less entries stay in: the detectors exist to
	// report them.
	var teamEntries []model.Entry
	for _, e := range norm.Entries {
		if _, ok := onTeam[e.PlayerID]; !ok {
			continue
		}
		if !req.From.IsZero() && e.Date.Before(req.From) {
			continue
		}
		if !req.To.IsZero() && e.Date.After(req.To) {
			continue
		}
		teamEntries = append(teamEntries, e)
	}

	ded := dedupe.Detect(teamEntries)

	detector := anomaly.NewDetector(idx, req.Team, anomaly.WithGraceWindow(s.graceWindow))
	anomalies := detector.Detect(ded.Primaries)

	weeks := s.coveredWeeks(idx, req, ded.Primaries)
	loads := s.aggregator.WeeklyLoads(ded.Primaries)
	ratios := s.aggregator.Ratios(ded.Primaries, weeks)

	exempt := s.effectiveExemptions(req)
	comp := compliance.Calculate(roster, idx, req.Team, req.From, req.To, ded.Primaries, exempt)

	return s.assemble(req, idx, roster, weeks, norm, ded, anomalies, loads, ratios, comp, exempt)
}

// effectiveExemptions resolves the exemption set for this call: the
// admin override when supplied, otherwise the configured default.
func (s *Service) effectiveExemptions(req ReportRequest) map[string]bool {
	ids := s.defaultExempt[req.Team]
	if req.ExemptOverride != nil {
		ids = req.ExemptOverride
	}
	exempt := make(map[string]bool, len(ids))
	for _, id := range ids {
		exempt[id] = true
	}
	return exempt
}

// coveredWeeks returns the continuous ISO week range spanning the team's
// schedule and the primary entries, so trailing windows have a column for
// every week even when a week had no sessions.
func (s *Service) coveredWeeks(idx *schedule.Index, req ReportRequest, primaries []model.Entry) []model.Week {
	var all []model.Week
	all = append(all, idx.Weeks(req.Team, req.From, req.To)...)
	for _, e := range primaries {
		all = append(all, model.WeekOf(e.Date))
	}
	if len(all) == 0 {
		return nil
	}
	first, last := all[0], all[0]
	for _, w := range all[1:] {
		if w.Before(first) {
			first = w
		}
		if last.Before(w) {
			last = w
		}
	}
	var weeks []model.Week
	for d := first.Monday(); ; d = d.AddDate(0, 0, 7) {
		w := model.WeekOf(d)
		weeks = append(weeks, w)
		if w == last {
			break
		}
	}
	return weeks
}

// assemble composes the derived records into the response tables. No
// computation beyond assembly, sorting (players alphabetically, weeks
// chronologically), and rounding at the table boundary.
func (s *Service) assemble(
	req ReportRequest,
	idx *schedule.Index,
	roster []model.Player,
	weeks []model.Week,
	norm normalize.Result,
	ded dedupe.Result,
	anomalies []anomaly.Record,
	loads []workload.WeekLoad,
	ratios []workload.RatioPoint,
	comp compliance.Result,
	exempt map[string]bool,
) *types.Report {
	names := make(map[string]string, len(roster))
	ordered := make([]model.Player, len(roster))
	copy(ordered, roster)
	sort.Slice(ordered, func(i, j int) bool {
		ni, nj := ordered[i].DisplayName(), ordered[j].DisplayName()
		if ni != nj {
			return ni < nj
		}
		return ordered[i].PlayerID < ordered[j].PlayerID
	})
	for _, p := range ordered {
		names[p.PlayerID] = p.DisplayName()
	}

	report := &types.Report{Team: req.Team}
	for _, w := range weeks {
		report.Weeks = append(report.Weeks, w.Label())
	}

	loadByPlayer := make(map[string]map[string]float64)
	for _, l := range loads {
		if loadByPlayer[l.PlayerID] == nil {
			loadByPlayer[l.PlayerID] = make(map[string]float64)
		}
		loadByPlayer[l.PlayerID][l.Week.Label()] = round2(l.Load)
	}
	ratioByPlayer := make(map[string]map[string]types.RatioCell)
	for _, r := range ratios {
		if ratioByPlayer[r.PlayerID] == nil {
			ratioByPlayer[r.PlayerID] = make(map[string]types.RatioCell)
		}
		cell := types.RatioCell{
			Acute:   round2(r.Acute),
			Chronic: round2(r.Chronic),
			Risk:    string(r.Risk),
		}
		if r.Ratio != nil {
			rounded := round2(*r.Ratio)
			cell.Ratio = &rounded
		}
		ratioByPlayer[r.PlayerID][r.Week.Label()] = cell
	}
	compByPlayer := make(map[string]map[string]types.ComplianceCell)
	for _, row := range comp.Rows {
		if compByPlayer[row.PlayerID] == nil {
			compByPlayer[row.PlayerID] = make(map[string]types.ComplianceCell)
		}
		compByPlayer[row.PlayerID][row.Week.Label()] = types.ComplianceCell{
			Expected:       row.Cell.Expected,
			Actual:         row.Cell.Actual,
			Rate:           round2(row.Cell.Rate),
			CumulativeRate: round2(row.Cell.CumulativeRate),
		}
	}

	for _, p := range ordered {
		report.WeeklyLoad = append(report.WeeklyLoad, types.WeeklyLoadRow{
			PlayerID:   p.PlayerID,
			PlayerName: names[p.PlayerID],
			Loads:      orEmptyLoads(loadByPlayer[p.PlayerID]),
		})
		report.Ratios = append(report.Ratios, types.RatioRow{
			PlayerID:   p.PlayerID,
			PlayerName: names[p.PlayerID],
			Cells:      orEmptyRatios(ratioByPlayer[p.PlayerID]),
		})
		if !exempt[p.PlayerID] {
			report.Compliance = append(report.Compliance, types.ComplianceRow{
				PlayerID:   p.PlayerID,
				PlayerName: names[p.PlayerID],
				Cells:      orEmptyCompliance(compByPlayer[p.PlayerID]),
			})
		}
	}

	for _, t := range comp.Trend {
		report.TeamTrend = append(report.TeamTrend, types.TrendPoint{
			Week: t.Week.Label(),
			Rate: round2(t.Rate),
		})
	}

	duplicateEntries := 0
	for _, c := range ded.Clusters {
		report.Duplicates = append(report.Duplicates, types.DuplicateCluster{
			PlayerID: c.PlayerID,
			Key:      c.Key,
			EntryIDs: c.EntryIDs,
			Count:    c.Count,
		})
		duplicateEntries += c.Count
	}
	for _, a := range anomalies {
		report.Anomalies = append(report.Anomalies, types.AnomalyRecord{
			EntryID: a.EntryID,
			Kind:    string(a.Kind),
			Detail:  a.Detail,
		})
	}
	for _, m := range norm.Malformed {
		report.Malformed = append(report.Malformed, types.MalformedEntry{
			EntryID: m.EntryID,
			Reason:  m.Reason,
		})
	}

	teamRate := 1.0
	if len(comp.Trend) > 0 {
		teamRate = comp.Trend[len(comp.Trend)-1].Rate
	}
	report.Summary = types.Summary{
		TeamComplianceRate: round2(teamRate),
		SessionCount:       idx.Count(req.Team, req.From, req.To),
		DuplicateEntries:   duplicateEntries,
		AnomalyCount:       len(report.Anomalies),
		MalformedCount:     len(report.Malformed),
	}
	return report
}

func orEmptyLoads(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func orEmptyRatios(m map[string]types.RatioCell) map[string]types.RatioCell {
	if m == nil {
		return map[string]types.RatioCell{}
	}
	return m
}

func orEmptyCompliance(m map[string]types.ComplianceCell) map[string]types.ComplianceCell {
	if m == nil {
		return map[string]types.ComplianceCell{}
	}
	return m
}

// round2 rounds to 2 decimals, the fixed precision of every table cell.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
