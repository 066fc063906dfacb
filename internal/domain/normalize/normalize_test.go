package normalize_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
	"github.com/pdemaers/player-wellness-dashboard/internal/domain/normalize"
)

func TestEntries(t *testing.T) {
	Convey("Given a clean raw entry", t, func() {
		raw := []model.RawEntry{{
			EntryID:   "rpe-000001",
			PlayerID:  "21234",
			SessionID: "20250901U21",
			Date:      time.Date(2025, 9, 1, 14, 30, 0, 0, time.UTC),
			Score:     6,
			Minutes:   90,
			Timestamp: time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC),
		}}

		Convey("When normalizing", func() {
			res := normalize.Entries(raw)

			Convey("Then it passes with the date truncated to the day", func() {
				So(res.Malformed, ShouldBeEmpty)
				So(res.Entries, ShouldHaveLength, 1)
				e := res.Entries[0]
				So(e.PlayerID, ShouldEqual, "21234")
				So(e.SessionID, ShouldEqual, "20250901U21")
				So(e.Date, ShouldEqual, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
				So(e.Score, ShouldEqual, 6)
				So(e.Minutes, ShouldEqual, 90)
			})
		})
	})

	Convey("Given historic type encodings", t, func() {
		raw := []model.RawEntry{{
			EntryID:   "rpe-000002",
			PlayerID:  21234, // numeric player reference
			SessionID: nil,   // absent session reference is valid
			Date:      "2025-09-01 14:30:00",
			Score:     "7", // score stored as text
			Minutes:   float64(75),
		}}

		Convey("When normalizing", func() {
			res := normalize.Entries(raw)

			Convey("Then the coercions all succeed", func() {
				So(res.Malformed, ShouldBeEmpty)
				So(res.Entries, ShouldHaveLength, 1)
				e := res.Entries[0]
				So(e.PlayerID, ShouldEqual, "21234")
				So(e.HasSession(), ShouldBeFalse)
				So(e.Score, ShouldEqual, 7)
				So(e.Minutes, ShouldEqual, 75)
				So(e.Timestamp.IsZero(), ShouldBeTrue)
			})
		})
	})

	Convey("Given structurally invalid entries", t, func() {
		raw := []model.RawEntry{
			{EntryID: "rpe-000010", PlayerID: nil, Date: "2025-09-01", Score: 5, Minutes: 60},
			{EntryID: "rpe-000011", PlayerID: "21234", Date: "yesterday", Score: 5, Minutes: 60},
			{EntryID: "rpe-000012", PlayerID: "21234", Date: "2025-09-01", Score: "n/a", Minutes: 60},
			{EntryID: "rpe-000013", PlayerID: "21234", Date: "2025-09-01", Score: 11, Minutes: 60},
			{EntryID: "rpe-000014", PlayerID: "21234", Date: "2025-09-01", Score: 0, Minutes: 60},
			{EntryID: "rpe-000015", PlayerID: "21234", Date: "2025-09-01", Score: 5, Minutes: -15},
		}

		Convey("When normalizing", func() {
			res := normalize.Entries(raw)

			Convey("Then every record lands in the malformed bucket with a reason", func() {
				So(res.Entries, ShouldBeEmpty)
				So(res.Malformed, ShouldHaveLength, 6)
				So(res.Malformed[0].Reason, ShouldContainSubstring, "missing player reference")
				So(res.Malformed[1].Reason, ShouldContainSubstring, "unparseable date")
				So(res.Malformed[2].Reason, ShouldContainSubstring, "not a number")
				So(res.Malformed[3].Reason, ShouldContainSubstring, "outside 1-10")
				So(res.Malformed[4].Reason, ShouldContainSubstring, "outside 1-10")
				So(res.Malformed[5].Reason, ShouldContainSubstring, "negative training minutes")
			})
		})
	})

	Convey("Given an entry with several defects", t, func() {
		raw := []model.RawEntry{{
			EntryID: "rpe-000020",
			Score:   "n/a",
			Minutes: -1,
		}}

		Convey("When normalizing", func() {
			res := normalize.Entries(raw)

			Convey("Then all reasons are joined in one record", func() {
				So(res.Malformed, ShouldHaveLength, 1)
				r := res.Malformed[0].Reason
				So(r, ShouldContainSubstring, "missing player reference")
				So(r, ShouldContainSubstring, "date")
				So(r, ShouldContainSubstring, "not a number")
				So(r, ShouldContainSubstring, "; ")
			})
		})
	})

	Convey("Given entries in arbitrary input order", t, func() {
		raw := []model.RawEntry{
			{EntryID: "rpe-b", PlayerID: "21301", Date: "2025-09-01", Score: 5, Minutes: 60},
			{EntryID: "rpe-c", PlayerID: "21234", Date: "2025-09-03", Score: 5, Minutes: 60},
			{EntryID: "rpe-a", PlayerID: "21234", Date: "2025-09-01", Score: 5, Minutes: 60},
		}

		Convey("When normalizing", func() {
			res := normalize.Entries(raw)

			Convey("Then output is sorted by player, date, then entry id", func() {
				So(res.Entries[0].EntryID, ShouldEqual, "rpe-a")
				So(res.Entries[1].EntryID, ShouldEqual, "rpe-c")
				So(res.Entries[2].EntryID, ShouldEqual, "rpe-b")
			})
		})
	})

	Convey("Given a session reference that is not an identifier", t, func() {
		raw := []model.RawEntry{{
			EntryID:   "rpe-000030",
			PlayerID:  "21234",
			SessionID: 1.5,
			Date:      "2025-09-01",
			Score:     5,
			Minutes:   60,
		}}

		res := normalize.Entries(raw)

		Convey("Then the entry is malformed", func() {
			So(res.Entries, ShouldBeEmpty)
			So(res.Malformed, ShouldHaveLength, 1)
			So(res.Malformed[0].Reason, ShouldContainSubstring, "session reference")
		})
	})
}
