package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/vedichart/internal/adapters/mq/queue"
	"github.com/okian/vedichart/internal/adapters/provider"
	"github.com/okian/vedichart/internal/adapters/repository"
	service "github.com/okian/vedichart/internal/app"
	"github.com/okian/vedichart/internal/domain/chart"
	"github.com/okian/vedichart/internal/domain/model"
	"github.com/okian/vedichart/pkg/logger"
)

// ErrChartsFailed is returned when at least one chart could not be computed.
var ErrChartsFailed = errors.New("charts failed")

// submitRetryInterval is how long a submission waits for room in a full queue.
const submitRetryInterval = 10 * time.Millisecond

// output is the printed result for one job.
type output struct {
	UserID       string          `json:"userId"`
	RequestID    string          `json:"requestId,omitempty"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
	SupersededBy string          `json:"supersededBy,omitempty"`
	Chart        *chart.Chart    `json:"chart,omitempty"`
	Summaries    []chart.Summary `json:"summaries,omitempty"`
	Error        string          `json:"error,omitempty"`
}

func (o *output) fill(rec repository.Record, summaryOnly bool) { //nolint:gocritic // hugeParam
	o.RequestID = rec.RequestID
	o.UpdatedAt = &rec.UpdatedAt
	o.Summaries = rec.Summaries
	if !summaryOnly {
		o.Chart = &rec.Chart
	}
}

// failures collects the errors of submitted requests by request id.
type failures struct {
	mu   sync.Mutex
	errs map[string]error
}

func (f *failures) record(_ context.Context, req model.Request, err error) { //nolint:gocritic // hugeParam
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[req.ID] = err
}

func (f *failures) of(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[id]
}

func newComputeCmd(c *cli) *cobra.Command {
	var (
		pretty      bool
		summaryOnly bool
		async       bool
	)

	cmd := &cobra.Command{
		Use:   "compute <job.yaml>...",
		Short: "Compute the charts described by job files",
		Long: `Reads chart jobs (YAML or JSON, several documents per file) and prints
one result per job as a JSON array. Each job names a user, a birth time and
location, and the Horizons ephemeris of each body.

With --async the jobs are queued for the worker pool and the results are
read back from the chart store once the queue has drained.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.Named("cli")

			reqs, err := provider.NewFileProvider(args...).Requests(ctx)
			if err != nil {
				return err
			}

			stopMetrics := startMetrics(ctx, c.cfg.MetricsAddr)
			defer stopMetrics()

			failed := &failures{errs: make(map[string]error)}
			svc := service.New(
				service.WithLogger(logger.Named("service")),
				service.WithWorkerCount(c.cfg.WorkerCount),
				service.WithQueueSize(c.cfg.QueueSize),
				service.WithDedupeSize(c.cfg.DedupeSize),
				service.WithShardCount(c.cfg.ShardCount),
				service.WithTrackedBodies(c.cfg.TrackedBodies...),
				service.WithRequiredBodies(c.cfg.RequiredBodies...),
				service.WithShutdownTimeout(c.cfg.ShutdownTimeout()),
				service.WithFailureListener(failed.record),
			)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := svc.Stop(); err != nil {
					log.Warn(ctx, "service stop", logger.Error(err))
				}
			}()

			var out []output
			if async {
				out, err = computeAsync(ctx, svc, reqs, failed, summaryOnly)
			} else {
				out, err = computeSync(ctx, svc, reqs, summaryOnly)
			}
			if out == nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			if encErr := enc.Encode(out); encErr != nil {
				return fmt.Errorf("write results: %w", encErr)
			}

			errCount := 0
			for _, o := range out {
				if o.Error != "" {
					errCount++
				}
			}
			log.Info(ctx, "charts computed",
				logger.Int("jobs", len(reqs)),
				logger.Int("failed", errCount),
				logger.Bool("async", async),
			)
			if err != nil {
				return err
			}
			if errCount > 0 {
				return fmt.Errorf("%w: %d of %d", ErrChartsFailed, errCount, len(reqs))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	cmd.Flags().BoolVar(&summaryOnly, "summary", false, "Print only the per-body summaries")
	cmd.Flags().BoolVar(&async, "async", false, "Queue jobs for the worker pool instead of computing them in place")
	return cmd
}

// computeSync assembles every job in place through ComputeBatch.
func computeSync(ctx context.Context, svc *service.Service, reqs []model.Request, summaryOnly bool) ([]output, error) {
	results, err := svc.ComputeBatch(ctx, reqs)
	if results == nil {
		return nil, err
	}
	out := make([]output, len(results))
	for i, r := range results {
		out[i] = output{UserID: r.Request.UserID}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			continue
		}
		out[i].fill(r.Record, summaryOnly)
	}
	return out, err
}

// computeAsync submits every job to the queue, drains it and reads the
// stored charts back. A job whose user was recomputed from later inputs
// reports the request that superseded it.
func computeAsync(ctx context.Context, svc *service.Service, reqs []model.Request, failed *failures, summaryOnly bool) ([]output, error) {
	ids := make([]string, len(reqs))
	errs := make([]error, len(reqs))
	for i := range reqs {
		ids[i], errs[i] = submit(ctx, svc, reqs[i])
	}

	if err := svc.Drain(ctx); err != nil {
		return nil, err
	}

	out := make([]output, len(reqs))
	for i := range reqs {
		req := reqs[i]
		out[i] = output{UserID: req.UserID, RequestID: ids[i]}
		err := errs[i]
		if err == nil {
			err = failed.of(ids[i])
		}
		if err == nil {
			rec, getErr := svc.Chart(ctx, req.UserID)
			if getErr != nil {
				err = getErr
			} else {
				if rec.Fingerprint != req.Fingerprint() {
					out[i].SupersededBy = rec.RequestID
				}
				out[i].fill(rec, summaryOnly)
				out[i].RequestID = ids[i]
			}
		}
		if err != nil {
			out[i].Error = err.Error()
		}
	}
	return out, nil
}

// submit queues req, waiting while the queue is full.
func submit(ctx context.Context, svc *service.Service, req model.Request) (string, error) { //nolint:gocritic // hugeParam
	for {
		id, _, err := svc.Submit(ctx, req)
		if !errors.Is(err, queue.ErrFull) {
			return id, err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(submitRetryInterval):
		}
	}
}
