package service

import (
	"time"

	"github.com/okian/vedichart/internal/adapters/mq/worker"
	"github.com/okian/vedichart/internal/domain/chart"
	"github.com/okian/vedichart/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued chart requests.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request fingerprints are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of shards in the chart store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithTrackedBodies sets the bodies every chart reports on.
func WithTrackedBodies(bodies ...string) Option {
	return func(s *Service) {
		s.chartOpts = append(s.chartOpts, chart.WithTrackedBodies(bodies...))
	}
}

// WithRequiredBodies sets the bodies whose absence aborts a chart. No
// arguments means nothing is required.
func WithRequiredBodies(bodies ...string) Option {
	return func(s *Service) {
		s.chartOpts = append(s.chartOpts, chart.WithRequiredBodies(bodies...))
	}
}

// WithShutdownTimeout bounds how long Stop waits for queued requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFailureListener registers a callback for submitted requests that a
// worker could not complete.
func WithFailureListener(fn worker.FailureHandler) Option {
	return func(s *Service) {
		s.onFailure = fn
	}
}
