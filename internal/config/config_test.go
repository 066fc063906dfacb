package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pdemaers/player-wellness-dashboard/internal/config"
)

func TestDefaults(t *testing.T) {
	Convey("Given no configuration file or environment", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then defaults load and validate", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8090")
			So(cfg.Teams, ShouldResemble, []string{"U18", "U21"})
			So(cfg.GraceWindowHours, ShouldEqual, 48)
			So(cfg.Store, ShouldEqual, config.StoreMemory)
			So(cfg.Risk.OuterLow, ShouldEqual, 0.75)
			So(cfg.Risk.InnerLow, ShouldEqual, 0.85)
			So(cfg.Risk.InnerHigh, ShouldEqual, 1.25)
			So(cfg.Risk.OuterHigh, ShouldEqual, 1.35)
			So(cfg.Demo.Seed, ShouldEqual, 42)
		})
	})
}

func TestEnvOverrides(t *testing.T) {
	Convey("Given PWD_ environment overrides", t, func() {
		t.Setenv("PWD_ADDR", ":9000")
		t.Setenv("PWD_LOG_LEVEL", "debug")

		cfg, err := config.Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9000")
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})
}

func TestFileOverrides(t *testing.T) {
	Convey("Given a YAML configuration file", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		yaml := "addr: \":7070\"\n" +
			"grace_window_hours: 24\n" +
			"teams:\n  - U15\n  - U17\n" +
			"risk:\n  outer_low: 0.7\n  inner_low: 0.9\n  inner_high: 1.1\n  outer_high: 1.4\n"
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("PWD_CONFIG", path)

		cfg, err := config.Load(context.Background())

		Convey("Then file values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.GraceWindowHours, ShouldEqual, 24)
			So(cfg.Teams, ShouldResemble, []string{"U15", "U17"})
			So(cfg.Risk.OuterHigh, ShouldEqual, 1.4)
		})
	})

	Convey("Given a missing configuration file", t, func() {
		t.Setenv("PWD_CONFIG", "/nonexistent/config.yaml")

		_, err := config.Load(context.Background())

		Convey("Then loading fails with the load sentinel", func() {
			So(err, ShouldWrap, config.ErrLoadConfig)
		})
	})
}

func TestValidation(t *testing.T) {
	write := func(t *testing.T, yaml string) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("PWD_CONFIG", path)
	}

	Convey("Given an unknown store backend", t, func() {
		write(t, "store: redis\n")
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})

	Convey("Given the mongo store without a URI", t, func() {
		write(t, "store: mongo\n")
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})

	Convey("Given a non-positive grace window", t, func() {
		write(t, "grace_window_hours: 0\n")
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})

	Convey("Given unordered risk thresholds", t, func() {
		write(t, "risk:\n  outer_low: 1.5\n  inner_low: 0.9\n  inner_high: 1.1\n  outer_high: 0.5\n")
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})
}
