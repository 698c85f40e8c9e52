// Package syncer owns the authoritative in-memory report list. It is the
// only component that mutates it, always by whole-snapshot replacement,
// and the only one that decides when to fall back to the local cache.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/observability"
	"github.com/couchcryptid/safespot-sync/internal/store"
)

// SnapshotCache is the degraded-mode mirror of the last known report set.
type SnapshotCache interface {
	Save(reports []domain.Report) error
	Load() ([]domain.Report, error)
}

// Listener receives the authoritative list after every replacement.
// Called outside the synchronizer's lock; the slice must be treated as
// read-only.
type Listener func(reports []domain.Report)

// Synchronizer mediates between the store subscription, the local cache,
// and everything downstream (renderer, stream consumers).
type Synchronizer struct {
	store   store.Client
	cache   SnapshotCache
	logger  *slog.Logger
	metrics *observability.Metrics

	ready atomic.Bool
	seq   atomic.Uint64

	mu          sync.Mutex
	reports     []domain.Report
	appliedSeq  uint64
	degraded    bool
	listeners   map[int]Listener
	listenerSeq int

	dispose     store.Disposer
	disposeOnce sync.Once
}

// New creates a Synchronizer. Call Start to open the subscription.
func New(st store.Client, cache SnapshotCache, logger *slog.Logger, metrics *observability.Metrics) *Synchronizer {
	return &Synchronizer{
		store:     st,
		cache:     cache,
		logger:    logger,
		metrics:   metrics,
		listeners: make(map[int]Listener),
	}
}

// Start opens the store subscription. If it cannot be opened at all the
// synchronizer falls back to the cache immediately and returns the error;
// there is no automatic retry either way.
func (s *Synchronizer) Start(ctx context.Context) error {
	dispose, err := s.store.Subscribe(ctx, s.handleSnapshot, s.handleError)
	if err != nil {
		s.logger.Error("subscription failed to open", "error", err)
		s.fallback()
		return err
	}

	s.mu.Lock()
	s.dispose = dispose
	s.mu.Unlock()

	s.metrics.SubscriptionActive.Set(1)
	s.logger.Info("store subscription opened")
	return nil
}

// handleSnapshot replaces the authoritative list. A newer snapshot fully
// supersedes an older one; two snapshots are never merged, and a stale
// callback never overwrites a newer list.
func (s *Synchronizer) handleSnapshot(reports []domain.Report) {
	seq := s.seq.Add(1)

	s.mu.Lock()
	if seq <= s.appliedSeq {
		s.mu.Unlock()
		s.metrics.SnapshotsStale.Inc()
		return
	}
	s.appliedSeq = seq
	s.reports = reports
	s.degraded = false
	listeners := s.listenerList()
	s.mu.Unlock()

	s.ready.Store(true)
	s.metrics.SnapshotsReceived.Inc()
	s.metrics.SnapshotSize.Observe(float64(len(reports)))
	s.metrics.FallbackActive.Set(0)
	s.logger.Debug("snapshot applied", "reports", len(reports))

	// Mirror every successful receipt so degraded mode stays fresh.
	if err := s.cache.Save(reports); err != nil {
		s.metrics.CacheErrors.Inc()
		s.logger.Warn("cache save failed", "error", err)
	}

	for _, l := range listeners {
		l(reports)
	}
}

// handleError is the terminal subscription error path: switch to the
// cached snapshot and stay there. No error escapes to the event source.
func (s *Synchronizer) handleError(err error) {
	s.logger.Error("subscription failed, entering degraded mode", "error", err)
	s.metrics.SubscriptionActive.Set(0)
	s.fallback()
}

func (s *Synchronizer) fallback() {
	cached, err := s.cache.Load()
	if err != nil {
		s.metrics.CacheErrors.Inc()
		s.logger.Warn("cache load failed, serving empty list", "error", err)
		cached = nil
	}

	seq := s.seq.Add(1)

	s.mu.Lock()
	if seq <= s.appliedSeq {
		// A live snapshot raced ahead of the failure; keep it.
		s.mu.Unlock()
		return
	}
	s.appliedSeq = seq
	s.reports = cached
	s.degraded = true
	listeners := s.listenerList()
	s.mu.Unlock()

	s.ready.Store(true)
	s.metrics.FallbackActive.Set(1)
	s.logger.Info("serving from local cache", "reports", len(cached))

	for _, l := range listeners {
		l(cached)
	}
}

// Submit persists a composed report. Success or not, the best-known list
// is mirrored to the cache so offline viewing stays possible. A failed
// report is not retried automatically; the caller surfaces the notice and
// leaves retrying to the user.
func (s *Synchronizer) Submit(ctx context.Context, report domain.Report) (string, error) {
	id, err := s.store.Create(ctx, report)

	if cacheErr := s.cache.Save(s.Reports()); cacheErr != nil {
		s.metrics.CacheErrors.Inc()
		s.logger.Warn("cache save failed", "error", cacheErr)
	}

	if err != nil {
		s.metrics.SubmitErrors.Inc()
		s.logger.Error("report submission failed", "error", err, "category", report.Category)
		return "", err
	}

	s.metrics.ReportsSubmitted.Inc()
	return id, nil
}

// Reports returns a copy of the authoritative list.
func (s *Synchronizer) Reports() []domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Stats derives the rolling counters from the authoritative list.
func (s *Synchronizer) Stats() domain.Stats {
	s.mu.Lock()
	reports := s.reports
	s.mu.Unlock()
	return domain.ComputeStats(reports)
}

// Degraded reports whether the list came from the local cache.
func (s *Synchronizer) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// AddListener registers fn for every list replacement and returns its
// unregister function.
func (s *Synchronizer) AddListener(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listenerSeq++
	id := s.listenerSeq
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Synchronizer) listenerList() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

// CheckReadiness returns nil once a snapshot (live or fallback) has been
// applied.
func (s *Synchronizer) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no report snapshot applied yet")
	}
	return nil
}

// Close releases the store subscription. Safe to call more than once;
// the disposer runs exactly once.
func (s *Synchronizer) Close() {
	s.disposeOnce.Do(func() {
		s.mu.Lock()
		dispose := s.dispose
		s.mu.Unlock()

		if dispose != nil {
			dispose()
		}
		s.metrics.SubscriptionActive.Set(0)
		s.logger.Info("store subscription released")
	})
}
