// Package worker assembles queued chart requests and stores the results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/vedichart/internal/adapters/mq/queue"
	"github.com/okian/vedichart/internal/adapters/repository"
	"github.com/okian/vedichart/internal/domain/chart"
	"github.com/okian/vedichart/internal/domain/model"
	"github.com/okian/vedichart/pkg/logger"
	"github.com/okian/vedichart/pkg/metrics"
)

// ErrShutdownTimeout is returned when workers do not drain in time.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")

// Assembler computes a chart for a request.
type Assembler interface {
	Assemble(ctx context.Context, req model.Request) (chart.Chart, error)
}

// Saver persists a computed chart.
type Saver interface {
	Save(ctx context.Context, rec repository.Record) (bool, error)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// FailureHandler is told about every request a worker gives up on.
type FailureHandler func(ctx context.Context, req model.Request, err error)

// CompletionHandler is told about every record a worker has stored.
type CompletionHandler func(ctx context.Context, rec repository.Record)

// InMemoryWorker processes requests from a Queue.
type InMemoryWorker struct {
	queue     Queue
	assembler Assembler
	saver     Saver
	name      string
	onFailure FailureHandler
	onDone    CompletionHandler

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, a Assembler, s Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		assembler: a,
		saver:     s,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes requests until the queue is drained and closed, ctx is
// done, or Stop is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, req); err != nil {
				w.logger.Error(ctx, "chart request failed",
					logger.String("request_id", req.ID),
					logger.String("user_id", req.UserID),
					logger.Error(err),
				)
			}
		}
	}
}

// Stop makes Run return after the request in hand.
func (w *InMemoryWorker) Stop() {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
}

// Done is closed when Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, req model.Request) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	c, err := w.assembler.Assemble(ctx, req)
	if err != nil {
		metrics.RecordChartFailure(chart.Reason(err))
		return w.fail(ctx, req, fmt.Errorf("assemble: %w", err))
	}
	for _, d := range c.Diagnostics {
		metrics.RecordBodyDiagnostic(string(d.Stage))
		w.logger.Warn(ctx, "body left out of chart",
			logger.String("request_id", req.ID),
			logger.String("body", d.Body),
			logger.String("stage", string(d.Stage)),
			logger.Error(d.Err),
		)
	}
	metrics.RecordChartComputed(float64(time.Since(start).Milliseconds()))

	rec := repository.Record{
		UserID:      req.UserID,
		RequestID:   req.ID,
		Fingerprint: req.Fingerprint(),
		Chart:       c,
		Summaries:   c.Summaries(),
	}
	if _, err := w.saver.Save(ctx, rec); err != nil {
		return w.fail(ctx, req, fmt.Errorf("save: %w", err))
	}
	if w.onDone != nil {
		w.onDone(ctx, rec)
	}

	w.logger.Debug(ctx, "chart stored",
		logger.String("request_id", req.ID),
		logger.Int("planets", len(c.Planets)),
		logger.Int("diagnostics", len(c.Diagnostics)),
	)
	return nil
}

func (w *InMemoryWorker) fail(ctx context.Context, req model.Request, err error) error { //nolint:gocritic // hugeParam
	metrics.RecordWorkerError()
	if w.onFailure != nil {
		w.onFailure(ctx, req, err)
	}
	return err
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses
// one worker per CPU.
func NewPool(workerCount int, q Queue, a Assembler, s Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, a, s, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it. If ctx
// ends first the workers are told to stop and ErrShutdownTimeout is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			for _, rest := range p.workers {
				rest.Stop()
			}
			return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
		}
	}
	return nil
}
