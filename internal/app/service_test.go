package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pdemaers/player-wellness-dashboard/internal/adapters/repository"
	service "github.com/pdemaers/player-wellness-dashboard/internal/app"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/types"
)

// failingStore simulates an unreachable backend.
type failingStore struct{}

func (failingStore) Roster(context.Context) ([]model.Player, error) {
	return nil, fmt.Errorf("%w: connection reset", repository.ErrFetch)
}

func (failingStore) Sessions(context.Context, string) ([]model.Session, error) {
	return nil, fmt.Errorf("%w: connection reset", repository.ErrFetch)
}

func (failingStore) Entries(context.Context) ([]model.RawEntry, error) {
	return nil, fmt.Errorf("%w: connection reset", repository.ErrFetch)
}

func seededStore() *repository.MemoryStore {
	sessionDay := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	return repository.NewMemoryStore(
		repository.WithPlayers([]model.Player{
			{PlayerID: "21234", FirstName: "Lukas", LastName: "Peeters", Team: "U21"},
			{PlayerID: "21301", FirstName: "Arne", LastName: "Claes", Team: "U21"},
			{PlayerID: "18100", FirstName: "Milan", LastName: "Janssens", Team: "U18"},
		}),
		repository.WithSessions([]model.Session{
			{SessionID: "20250901U21", Team: "U21", Date: sessionDay, Type: model.SessionT1, DurationMinutes: 90},
		}),
		repository.WithRawEntries([]model.RawEntry{
			{
				EntryID: "rpe-000001", PlayerID: "21234", SessionID: "20250901U21",
				Date: "2025-09-01", Score: 6, Minutes: 90,
				Timestamp: time.Date(2025, 9, 2, 8, 0, 0, 0, time.UTC),
			},
			{
				EntryID: "rpe-000002", PlayerID: "21234", SessionID: "20250901U21",
				Date: "2025-09-01", Score: 8, Minutes: 90,
				Timestamp: time.Date(2025, 9, 2, 8, 5, 0, 0, time.UTC),
			},
			{
				EntryID: "rpe-000003", PlayerID: "21301", SessionID: "99999999U21",
				Date: "2025-09-01", Score: 5, Minutes: 60,
				Timestamp: time.Date(2025, 9, 2, 9, 0, 0, 0, time.UTC),
			},
		}),
	)
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service without a store", t, func() {
		svc := service.New()

		Convey("Then starting fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
		})
	})

	Convey("Given an unstarted service", t, func() {
		svc := service.New(service.WithStore(seededStore()))

		Convey("Then reports are refused", func() {
			_, err := svc.Report(context.Background(), service.ReportRequest{Team: "U21"})
			So(err, ShouldWrap, service.ErrNotStarted)
		})
	})

	Convey("Given a started service", t, func() {
		svc := service.New(service.WithStore(seededStore()))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then starting again is a no-op", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})

		Convey("Then Teams returns a copy of the configured codes", func() {
			So(svc.Teams(), ShouldResemble, []string{"U18", "U21"})
		})

		Convey("Then GetStats reports service state", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["graceWindowHours"], ShouldEqual, 48)
		})
	})
}

func TestReportValidation(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithStore(seededStore()))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When the team is missing", func() {
			_, err := svc.Report(ctx, service.ReportRequest{})
			So(err, ShouldWrap, service.ErrInvalidRequest)
		})

		Convey("When the team is unknown", func() {
			_, err := svc.Report(ctx, service.ReportRequest{Team: "U15"})
			So(err, ShouldWrap, service.ErrInvalidRequest)
		})

		Convey("When the period end precedes the start", func() {
			_, err := svc.Report(ctx, service.ReportRequest{
				Team: "U21",
				From: time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			})
			So(err, ShouldWrap, service.ErrInvalidRequest)
		})
	})
}

func TestReportFetchFailure(t *testing.T) {
	Convey("Given a service over an unreachable store", t, func() {
		svc := service.New(service.WithStore(failingStore{}))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When requesting a report", func() {
			_, err := svc.Report(context.Background(), service.ReportRequest{Team: "U21"})

			Convey("Then the fetch error surfaces unmasked", func() {
				So(err, ShouldWrap, repository.ErrFetch)
			})
		})
	})
}

func TestReportPipeline(t *testing.T) {
	Convey("Given a season with a duplicate and an orphan entry", t, func() {
		svc := service.New(service.WithStore(seededStore()))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When generating the U21 report", func() {
			report, err := svc.Report(ctx, service.ReportRequest{Team: "U21"})
			So(err, ShouldBeNil)

			Convey("Then only the one schedule week is covered", func() {
				So(report.Team, ShouldEqual, "U21")
				So(report.Weeks, ShouldResemble, []string{"2025-W36"})
			})

			Convey("Then players are ordered by display name", func() {
				So(report.WeeklyLoad, ShouldHaveLength, 2)
				So(report.WeeklyLoad[0].PlayerName, ShouldEqual, "Claes, Arne")
				So(report.WeeklyLoad[1].PlayerName, ShouldEqual, "Peeters, Lukas")
			})

			Convey("Then the duplicate's primary feeds the load table", func() {
				// The earlier submission (score 6) wins: 6 x 90 = 540.
				So(report.WeeklyLoad[1].Loads["2025-W36"], ShouldEqual, 540)
				So(report.Duplicates, ShouldHaveLength, 1)
				So(report.Duplicates[0].EntryIDs, ShouldResemble, []string{"rpe-000001", "rpe-000002"})
				So(report.Summary.DuplicateEntries, ShouldEqual, 2)
			})

			Convey("Then the orphan entry is flagged but still loaded", func() {
				So(report.Anomalies, ShouldHaveLength, 1)
				So(report.Anomalies[0].EntryID, ShouldEqual, "rpe-000003")
				So(report.Anomalies[0].Kind, ShouldEqual, "orphan_session_id")
				So(report.WeeklyLoad[0].Loads["2025-W36"], ShouldEqual, 300)
			})

			Convey("Then compliance counts only resolvable team sessions", func() {
				So(report.Compliance, ShouldHaveLength, 2)
				So(report.Compliance[0].Cells["2025-W36"].Rate, ShouldEqual, 0.0)
				So(report.Compliance[1].Cells["2025-W36"].Rate, ShouldEqual, 1.0)
				So(report.Summary.TeamComplianceRate, ShouldEqual, 0.5)
				So(report.Summary.SessionCount, ShouldEqual, 1)
			})

			Convey("Then identical requests produce byte-identical reports", func() {
				again, err := svc.Report(ctx, service.ReportRequest{Team: "U21"})
				So(err, ShouldBeNil)

				first, err := json.Marshal(report)
				So(err, ShouldBeNil)
				second, err := json.Marshal(again)
				So(err, ShouldBeNil)
				So(string(second), ShouldEqual, string(first))
			})
		})

		Convey("When the exemption override excludes a player", func() {
			report, err := svc.Report(ctx, service.ReportRequest{
				Team:           "U21",
				ExemptOverride: []string{"21301"},
			})
			So(err, ShouldBeNil)

			Convey("Then the player leaves compliance but keeps a load row", func() {
				So(report.Compliance, ShouldHaveLength, 1)
				So(report.Compliance[0].PlayerID, ShouldEqual, "21234")
				So(report.WeeklyLoad, ShouldHaveLength, 2)
				So(report.Summary.TeamComplianceRate, ShouldEqual, 1.0)
			})
		})

		Convey("When the period excludes every entry", func() {
			report, err := svc.Report(ctx, service.ReportRequest{
				Team: "U21",
				From: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
			})
			So(err, ShouldBeNil)

			Convey("Then the report is empty but well-formed", func() {
				So(report.Weeks, ShouldBeEmpty)
				So(report.Duplicates, ShouldBeEmpty)
				So(report.Anomalies, ShouldBeEmpty)
				So(report.Summary.SessionCount, ShouldEqual, 0)
				So(report.Summary.TeamComplianceRate, ShouldEqual, 1.0)
			})
		})
	})

	Convey("Given a session document with a corrupt stored week number", t, func() {
		store := repository.NewMemoryStore(
			repository.WithPlayers([]model.Player{
				{PlayerID: "21234", FirstName: "Lukas", LastName: "Peeters", Team: "U21"},
			}),
			repository.WithSessions([]model.Session{
				// 2025 has 52 ISO weeks; 53 names no calendar week.
				{SessionID: "20250901U21", Team: "U21", Date: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
					Type: model.SessionT1, DurationMinutes: 90, WeekNumber: 53},
			}),
			repository.WithRawEntries([]model.RawEntry{
				{EntryID: "rpe-000020", PlayerID: "21234", SessionID: "20250901U21",
					Date: "2025-09-01", Score: 6, Minutes: 90,
					Timestamp: time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC)},
			}),
		)
		svc := service.New(service.WithStore(store))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When generating the report", func() {
			type result struct {
				report *types.Report
				err    error
			}
			done := make(chan result, 1)
			go func() {
				report, err := svc.Report(context.Background(), service.ReportRequest{Team: "U21"})
				done <- result{report: report, err: err}
			}()

			Convey("Then it completes with the week derived from the date", func() {
				select {
				case res := <-done:
					So(res.err, ShouldBeNil)
					So(res.report.Weeks, ShouldResemble, []string{"2025-W36"})
					So(res.report.Compliance[0].Cells["2025-W36"].Rate, ShouldEqual, 1.0)
				case <-time.After(5 * time.Second):
					So("report generation", ShouldEqual, "completed within 5s")
				}
			})
		})
	})

	Convey("Given a snapshot with a malformed entry", t, func() {
		store := repository.NewMemoryStore(
			repository.WithPlayers([]model.Player{
				{PlayerID: "21234", FirstName: "Lukas", LastName: "Peeters", Team: "U21"},
			}),
			repository.WithSessions([]model.Session{
				{SessionID: "20250901U21", Team: "U21", Date: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), Type: model.SessionT1},
			}),
			repository.WithRawEntries([]model.RawEntry{
				{EntryID: "rpe-000010", PlayerID: "21234", SessionID: "20250901U21",
					Date: "2025-09-01", Score: "n/a", Minutes: 90},
			}),
		)
		svc := service.New(service.WithStore(store))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When generating the report", func() {
			report, err := svc.Report(context.Background(), service.ReportRequest{Team: "U21"})
			So(err, ShouldBeNil)

			Convey("Then the entry is reported, not silently dropped", func() {
				So(report.Malformed, ShouldHaveLength, 1)
				So(report.Malformed[0].EntryID, ShouldEqual, "rpe-000010")
				So(report.Malformed[0].Reason, ShouldContainSubstring, "not a number")
				So(report.Summary.MalformedCount, ShouldEqual, 1)
			})

			Convey("Then it contributes to no aggregate", func() {
				So(report.WeeklyLoad[0].Loads, ShouldBeEmpty)
				So(report.Compliance[0].Cells["2025-W36"].Actual, ShouldEqual, 0)
			})
		})
	})
}
