package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/vedichart/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 8)
			convey.So(cfg.TrackedBodies, convey.ShouldResemble,
				[]string{"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter", "Saturn"})
			convey.So(cfg.RequiredBodies, convey.ShouldResemble, []string{"Moon"})
			convey.So(cfg.ShutdownTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad setting each", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"log level", func(c *config.Config) { c.LogLevel = "verbose" }},
			{"log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"queue size", func(c *config.Config) { c.QueueSize = 0 }},
			{"worker count", func(c *config.Config) { c.WorkerCount = -1 }},
			{"dedupe size", func(c *config.Config) { c.DedupeSize = 0 }},
			{"shard count", func(c *config.Config) { c.ShardCount = -4 }},
			{"shutdown timeout", func(c *config.Config) { c.ShutdownTimeoutMS = 0 }},
			{"tracked body", func(c *config.Config) { c.TrackedBodies = []string{"Sun", " "} }},
			{"required body", func(c *config.Config) { c.RequiredBodies = []string{""} }},
		}
		for _, tc := range cases {
			convey.Convey("When the "+tc.name+" is invalid", func() {
				cfg := config.New(context.Background())
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then Validate wraps ErrInvalidConfig", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When worker count is zero", func() {
			cfg := config.New(context.Background())
			cfg.WorkerCount = 0

			convey.Convey("Then it is accepted", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
