// Package service wires the chart pipeline to the queue, the worker pool
// and the chart store.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/vedichart/internal/adapters/mq/queue"
	"github.com/okian/vedichart/internal/adapters/mq/worker"
	"github.com/okian/vedichart/internal/adapters/repository"
	"github.com/okian/vedichart/internal/domain/chart"
	"github.com/okian/vedichart/internal/domain/dedupe"
	"github.com/okian/vedichart/internal/domain/model"
	"github.com/okian/vedichart/pkg/logger"
	"github.com/okian/vedichart/pkg/metrics"
)

// Service computes and stores natal charts.
type Service struct {
	mu sync.RWMutex

	// Core components
	assembler *chart.Assembler
	store     *repository.MemoryStore
	deduper   dedupe.Deduper
	queue     *queue.InMemoryQueue
	pool      *worker.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	shardCount      int
	shutdownTimeout time.Duration
	chartOpts       []chart.Option
	onFailure       worker.FailureHandler

	started bool
	drained bool

	logger logger.Logger
}

// BatchResult is the outcome of one request in ComputeBatch.
type BatchResult struct {
	Request model.Request
	Record  repository.Record
	Err     error
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       1024,
		dedupeSize:      10_000,
		shardCount:      8,
		shutdownTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.assembler = chart.NewAssembler(s.chartOpts...)
	return s
}

// Start initializes the store, the queue and the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.store = repository.NewMemoryStore(ctx, repository.WithShardCount(s.shardCount))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.assembler, s.store,
		worker.WithFailureHandler(s.release),
		worker.WithCompletionHandler(s.settle),
	)
	s.pool.Start(ctx)

	s.started = true
	s.drained = false
	s.logger.Info(ctx, "chart service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Any("trackedBodies", s.assembler.TrackedBodies()),
		logger.Any("requiredBodies", s.assembler.RequiredBodies()),
	)
	return nil
}

// Stop drains the queue and shuts the service down. Requests still queued
// when the shutdown timeout expires are dropped.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping chart service...", logger.Int("queued", s.queue.Len()))

	err := s.drain(ctx)
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "chart service stopped")
	return err
}

// Drain stops accepting submissions and waits until every queued request
// has been processed or ctx ends. Stored charts stay readable until Stop.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	return s.drain(ctx)
}

// drain shuts the worker pool down once. Callers hold s.mu.
func (s *Service) drain(ctx context.Context) error {
	if s.drained {
		return nil
	}
	s.drained = true
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
		return err
	}
	return nil
}

// Submit validates req and queues it for the workers. A request without an
// ID gets one. duplicate is true when the user's stored chart was computed
// from the same inputs, or the same inputs are still queued; nothing is
// queued then.
func (s *Service) Submit(ctx context.Context, req model.Request) (id string, duplicate bool, err error) { //nolint:gocritic // hugeParam
	if err := s.ready(); err != nil {
		return "", false, err
	}
	if err := req.Validate(); err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	fp := req.Fingerprint()
	if s.stored(ctx, req.UserID, fp) || s.deduper.SeenAndRecord(ctx, fp) {
		metrics.RecordDuplicateSubmission()
		s.logger.Debug(ctx, "duplicate chart request, skipping",
			logger.String("request_id", req.ID),
			logger.String("user_id", req.UserID),
			logger.String("fingerprint", fp),
		)
		return req.ID, true, nil
	}

	if err := s.queue.Enqueue(ctx, req); err != nil {
		s.deduper.Unrecord(ctx, fp)
		return "", false, fmt.Errorf("submit %s: %w", req.ID, err)
	}
	return req.ID, false, nil
}

// Compute assembles and stores a chart synchronously. When the user's
// stored chart was computed from identical inputs it is returned as is.
func (s *Service) Compute(ctx context.Context, req model.Request) (repository.Record, error) { //nolint:gocritic // hugeParam
	if err := s.ready(); err != nil {
		return repository.Record{}, err
	}
	if err := req.Validate(); err != nil {
		return repository.Record{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	fp := req.Fingerprint()
	if rec, err := s.store.Get(ctx, req.UserID); err == nil && rec.Fingerprint == fp {
		metrics.RecordDuplicateSubmission()
		return rec, nil
	}

	start := time.Now()
	c, err := s.assembler.Assemble(ctx, req)
	if err != nil {
		metrics.RecordChartFailure(chart.Reason(err))
		return repository.Record{}, fmt.Errorf("compute %s: %w", req.ID, err)
	}
	for _, d := range c.Diagnostics {
		metrics.RecordBodyDiagnostic(string(d.Stage))
	}
	metrics.RecordChartComputed(float64(time.Since(start).Milliseconds()))

	if _, err := s.store.Save(ctx, repository.Record{
		UserID:      req.UserID,
		RequestID:   req.ID,
		Fingerprint: fp,
		Chart:       c,
		Summaries:   c.Summaries(),
	}); err != nil {
		return repository.Record{}, fmt.Errorf("store %s: %w", req.ID, err)
	}
	return s.store.Get(ctx, req.UserID)
}

// ComputeBatch runs Compute for every request, at most one per worker at a
// time. Results keep the order of reqs. Per-request failures are reported in
// the results; the returned error is set only when ctx ends first.
func (s *Service) ComputeBatch(ctx context.Context, reqs []model.Request) ([]BatchResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pool.Size())

	for i := range reqs {
		if err := gctx.Err(); err != nil {
			results[i] = BatchResult{Request: reqs[i], Err: err}
			continue
		}
		g.Go(func() error {
			rec, err := s.Compute(gctx, reqs[i])
			results[i] = BatchResult{Request: reqs[i], Record: rec, Err: err}
			if err != nil {
				s.logger.Warn(gctx, "chart computation failed",
					logger.String("user_id", reqs[i].UserID),
					logger.Error(err),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("compute batch: %w", err)
	}
	return results, nil
}

// Chart returns the stored chart for a user.
func (s *Service) Chart(ctx context.Context, userID string) (repository.Record, error) {
	if err := s.ready(); err != nil {
		return repository.Record{}, err
	}
	return s.store.Get(ctx, userID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		stored := s.store.Count(context.Background())
		stats["queueLength"] = s.queue.Len()
		stats["storedCharts"] = stored
		stats["fingerprints"] = s.deduper.Size()

		metrics.UpdateStoredCharts(stored)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// stored reports whether the user's chart was computed from fingerprint fp.
func (s *Service) stored(ctx context.Context, userID, fp string) bool {
	rec, err := s.store.Get(ctx, userID)
	return err == nil && rec.Fingerprint == fp
}

// settle forgets a stored request's fingerprint. From then on the store
// alone decides whether the same inputs are a duplicate, so a user can
// return to earlier inputs after submitting different ones.
func (s *Service) settle(ctx context.Context, rec repository.Record) { //nolint:gocritic // hugeParam
	s.deduper.Unrecord(ctx, rec.Fingerprint)
}

// release forgets a failed request so it can be submitted again.
func (s *Service) release(ctx context.Context, req model.Request, err error) { //nolint:gocritic // hugeParam
	s.deduper.Unrecord(ctx, req.Fingerprint())
	if s.onFailure != nil {
		s.onFailure(ctx, req, err)
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Warn(ctx, "chart request released after failure",
		logger.String("request_id", req.ID),
		logger.String("user_id", req.UserID),
		logger.Error(err),
	)
}
