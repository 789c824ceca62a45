package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/okian/vedichart/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.TrackedBodies, convey.ShouldHaveLength, 7)
				convey.So(cfg.RequiredBodies, convey.ShouldResemble, []string{"Moon"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("VEDIC_LOG_LEVEL", "debug")
			_ = os.Setenv("VEDIC_METRICS_ADDR", ":9100")
			_ = os.Setenv("VEDIC_QUEUE_SIZE", "64")
			_ = os.Setenv("VEDIC_WORKER_COUNT", "16")
			_ = os.Setenv("VEDIC_TRACKED_BODIES", "Sun, Moon,Mars")
			_ = os.Setenv("VEDIC_REQUIRED_BODIES", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9100")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.TrackedBodies, convey.ShouldResemble, []string{"Sun", "Moon", "Mars"})
				convey.So(cfg.RequiredBodies, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
log_format: json
queue_size: 300
worker_count: 4
dedupe_size: 600
shard_count: 2
tracked_bodies: [Sun, Moon]
shutdown_timeout_ms: 250
`)
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.Load(ctx, tmpFile)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 600)
				convey.So(cfg.ShardCount, convey.ShouldEqual, 2)
				convey.So(cfg.TrackedBodies, convey.ShouldResemble, []string{"Sun", "Moon"})
				convey.So(cfg.RequiredBodies, convey.ShouldResemble, []string{"Moon"})
				convey.So(cfg.ShutdownTimeoutMS, convey.ShouldEqual, 250)
			})
		})

		convey.Convey("When the file comes from VEDIC_CONFIG and env overrides it", func() {
			tmpFile := createTempConfigFile(`
queue_size: 300
worker_count: 24
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("VEDIC_CONFIG", tmpFile)
			_ = os.Setenv("VEDIC_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.Load(ctx, tmpFile)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			cfg, err := config.Load(ctx, "/non/existent/file.yaml")

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("VEDIC_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a loaded value fails validation", func() {
			_ = os.Setenv("VEDIC_QUEUE_SIZE", "-100")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "queue_size")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"VEDIC_CONFIG",
		"VEDIC_LOG_LEVEL",
		"VEDIC_METRICS_ADDR",
		"VEDIC_QUEUE_SIZE",
		"VEDIC_WORKER_COUNT",
		"VEDIC_TRACKED_BODIES",
		"VEDIC_REQUIRED_BODIES",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "vedichart-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
