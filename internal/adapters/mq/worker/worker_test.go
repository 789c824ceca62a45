package worker_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/okian/vedichart/internal/adapters/mq/queue"
	"github.com/okian/vedichart/internal/adapters/mq/worker"
	"github.com/okian/vedichart/internal/adapters/repository"
	"github.com/okian/vedichart/internal/domain/astro"
	"github.com/okian/vedichart/internal/domain/chart"
	"github.com/okian/vedichart/internal/domain/ephemeris"
	"github.com/okian/vedichart/internal/domain/model"
	logging "github.com/okian/vedichart/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logging.Init(logging.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}

type mockAssembler struct {
	mu    sync.Mutex
	fail  map[string]error
	calls int
}

func (m *mockAssembler) Assemble(_ context.Context, req model.Request) (chart.Chart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.fail[req.UserID]; err != nil {
		return chart.Chart{}, err
	}
	return chart.Chart{
		Planets:     []chart.Planet{{Name: "Moon"}},
		Diagnostics: []chart.Diagnostic{{Body: "Mars", Stage: chart.StageMissing, Err: chart.ErrNotProvided}},
	}, nil
}

type mockSaver struct {
	mu      sync.Mutex
	records map[string]repository.Record
	err     error
}

func newMockSaver() *mockSaver {
	return &mockSaver{records: make(map[string]repository.Record)}
}

func (m *mockSaver) Save(_ context.Context, rec repository.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, existed := m.records[rec.UserID]
	m.records[rec.UserID] = rec
	return !existed, nil
}

func (m *mockSaver) get(userID string) (repository.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	return rec, ok
}

func request(userID string) model.Request {
	return model.Request{
		ID:        "req-" + userID,
		UserID:    userID,
		BirthTime: time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC),
		Ephemeris: []ephemeris.Input{
			ephemeris.FromRecord("Moon", ephemeris.Record{JulianDate: astro.J2000, RA: 222.6, DEC: -10.9}),
			ephemeris.FromRecord("Sun", ephemeris.Record{JulianDate: astro.J2000, RA: 281.29, DEC: -23.01}),
		},
	}
}

// runUntilDrained enqueues reqs, closes the queue and waits for w to finish.
func runUntilDrained(w *worker.InMemoryWorker, q *queue.InMemoryQueue, reqs ...model.Request) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, r := range reqs {
		convey.So(q.Enqueue(ctx, r), convey.ShouldBeNil)
	}
	convey.So(q.Close(), convey.ShouldBeNil)
	go w.Run(ctx)
	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		convey.So("worker did not drain the queue", convey.ShouldBeEmpty)
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		saver := newMockSaver()

		convey.Convey("When it assembles with the real assembler", func() {
			w := worker.NewInMemoryWorker(q, chart.NewAssembler(), saver, worker.WithName("test-worker"))
			req := request("user-1")
			runUntilDrained(w, q, req)

			convey.Convey("Then the chart is stored under the user", func() {
				rec, ok := saver.get("user-1")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(rec.RequestID, convey.ShouldEqual, "req-user-1")
				convey.So(rec.Fingerprint, convey.ShouldEqual, req.Fingerprint())
				convey.So(len(rec.Chart.Planets), convey.ShouldEqual, 4)
				convey.So(rec.Summaries, convey.ShouldHaveLength, 4)
				convey.So(rec.Chart.Diagnostics, convey.ShouldHaveLength, 5)
			})
		})

		convey.Convey("When assembly fails for one user", func() {
			asm := &mockAssembler{fail: map[string]error{
				"user-bad": &chart.AssemblyError{Body: "Moon", Kind: chart.ErrMissingBody},
			}}
			var (
				mu     sync.Mutex
				failed []string
				causes []error
			)
			onFailure := func(_ context.Context, req model.Request, err error) {
				mu.Lock()
				defer mu.Unlock()
				failed = append(failed, req.UserID)
				causes = append(causes, err)
			}
			w := worker.NewInMemoryWorker(q, asm, saver, worker.WithFailureHandler(onFailure))
			runUntilDrained(w, q, request("user-bad"), request("user-ok"))

			convey.Convey("Then the others are still stored and the failure is reported", func() {
				_, ok := saver.get("user-bad")
				convey.So(ok, convey.ShouldBeFalse)
				_, ok = saver.get("user-ok")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(failed, convey.ShouldResemble, []string{"user-bad"})
				convey.So(errors.Is(causes[0], chart.ErrMissingBody), convey.ShouldBeTrue)
				convey.So(asm.calls, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a completion handler is registered", func() {
			var done []repository.Record
			w := worker.NewInMemoryWorker(q, &mockAssembler{}, saver,
				worker.WithCompletionHandler(func(_ context.Context, rec repository.Record) { done = append(done, rec) }))
			req := request("user-1")
			runUntilDrained(w, q, req)

			convey.Convey("Then it sees each stored record", func() {
				convey.So(done, convey.ShouldHaveLength, 1)
				convey.So(done[0].RequestID, convey.ShouldEqual, "req-user-1")
				convey.So(done[0].Fingerprint, convey.ShouldEqual, req.Fingerprint())
			})
		})

		convey.Convey("When saving fails", func() {
			saver.err = errors.New("disk full")
			var failures, completions int
			w := worker.NewInMemoryWorker(q, &mockAssembler{}, saver,
				worker.WithFailureHandler(func(context.Context, model.Request, error) { failures++ }),
				worker.WithCompletionHandler(func(context.Context, repository.Record) { completions++ }))
			runUntilDrained(w, q, request("user-1"))

			convey.Convey("Then the failure handler runs instead of the completion handler", func() {
				convey.So(failures, convey.ShouldEqual, 1)
				convey.So(completions, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the worker is stopped", func() {
			w := worker.NewInMemoryWorker(q, &mockAssembler{}, saver)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)
			w.Stop()
			w.Stop()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker did not stop", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		saver := newMockSaver()
		p := worker.NewPool(3, q, &mockAssembler{}, saver)
		convey.So(p.Size(), convey.ShouldEqual, 3)
		p.Start(ctx)

		convey.Convey("When requests are queued and the pool shuts down", func() {
			for i := range 30 {
				convey.So(q.Enqueue(ctx, request(fmt.Sprintf("user-%d", i))), convey.ShouldBeNil)
			}
			shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
			defer shutdownCancel()
			err := p.Shutdown(shutdownCtx)

			convey.Convey("Then every queued request is processed first", func() {
				convey.So(err, convey.ShouldBeNil)
				for i := range 30 {
					_, ok := saver.get(fmt.Sprintf("user-%d", i))
					convey.So(ok, convey.ShouldBeTrue)
				}
			})
		})

		convey.Convey("When shutdown runs out of time", func() {
			expired, expire := context.WithCancel(ctx)
			expire()
			err := p.Shutdown(expired)

			convey.Convey("Then it reports the timeout", func() {
				if err != nil {
					convey.So(errors.Is(err, worker.ErrShutdownTimeout), convey.ShouldBeTrue)
				}
			})
		})
	})
}
