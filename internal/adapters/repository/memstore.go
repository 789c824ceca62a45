package repository

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/vedichart/pkg/metrics"
)

const (
	defaultShardCount            = 16
	defaultMetricsUpdateInterval = 5 * time.Second
)

type shard struct {
	mu      sync.RWMutex
	records map[string]Record
}

// MemoryStore is a sharded in-memory Store. Users hash to a shard so
// writers for different users rarely contend.
type MemoryStore struct {
	shards                []*shard
	shardCount            int
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		shardCount:            defaultShardCount,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   time.Now,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]Record)}
	}

	metrics.UpdateStoredCharts(0)
	s.startMetricsUpdater(ctx)
	return s
}

func (s *MemoryStore) shardFor(userID string) *shard {
	return s.shards[xxhash.Sum64String(userID)%uint64(len(s.shards))]
}

// Save implements Store.Save.
func (s *MemoryStore) Save(ctx context.Context, rec Record) (bool, error) { //nolint:gocritic // hugeParam: record is copied into the map anyway
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("save", float64(time.Since(start).Milliseconds())) }()

	if rec.UserID == "" {
		return false, ErrMissingUserID
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	rec.UpdatedAt = s.now().UTC()
	sh := s.shardFor(rec.UserID)
	sh.mu.Lock()
	_, existed := sh.records[rec.UserID]
	sh.records[rec.UserID] = rec
	sh.mu.Unlock()

	return !existed, nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, userID string) (Record, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("get", float64(time.Since(start).Milliseconds())) }()

	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	sh := s.shardFor(userID)
	sh.mu.RLock()
	rec, ok := sh.records[userID]
	sh.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("delete", float64(time.Since(start).Milliseconds())) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	sh := s.shardFor(userID)
	sh.mu.Lock()
	delete(sh.records, userID)
	sh.mu.Unlock()
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.records)
		sh.mu.RUnlock()
	}
	return n
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoredCharts(s.Count(ctx))
			}
		}
	}()
}
