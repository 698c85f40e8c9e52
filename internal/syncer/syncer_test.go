package syncer_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/observability"
	"github.com/couchcryptid/safespot-sync/internal/store"
	"github.com/couchcryptid/safespot-sync/internal/syncer"
)

// --- fakes ---

type fakeStore struct {
	onSnapshot store.SnapshotFunc
	onError    store.ErrorFunc

	subscribeErr error
	createErr    error
	created      []domain.Report
	disposals    int
}

func (f *fakeStore) Subscribe(_ context.Context, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) (store.Disposer, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.onSnapshot = onSnapshot
	f.onError = onError
	return func() { f.disposals++ }, nil
}

func (f *fakeStore) Create(_ context.Context, report domain.Report) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, report)
	return "new-id", nil
}

type fakeCache struct {
	saved   [][]domain.Report
	stored  []domain.Report
	saveErr error
	loadErr error
}

func (f *fakeCache) Save(reports []domain.Report) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, reports)
	return nil
}

func (f *fakeCache) Load() ([]domain.Report, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.stored, nil
}

func sampleReports() []domain.Report {
	return []domain.Report{
		{ID: "r1", Category: domain.CategoryFlooding, Severity: domain.SeverityHigh, Description: "Street flooded", Timestamp: 200},
		{ID: "r2", Category: domain.CategoryDebris, Severity: domain.SeverityLow, Description: "Branch down", Timestamp: 100},
	}
}

func newSyncer(t *testing.T, st *fakeStore, c *fakeCache) *syncer.Synchronizer {
	t.Helper()
	s := syncer.New(st, c, slog.Default(), observability.NewMetricsForTesting())
	t.Cleanup(s.Close)
	return s
}

// --- tests ---

func TestSynchronizer_SnapshotReplacesList(t *testing.T) {
	st := &fakeStore{}
	c := &fakeCache{}
	s := newSyncer(t, st, c)

	require.NoError(t, s.Start(context.Background()))
	require.Error(t, s.CheckReadiness(context.Background()), "not ready before first snapshot")

	var seen [][]domain.Report
	s.AddListener(func(reports []domain.Report) { seen = append(seen, reports) })

	st.onSnapshot(sampleReports())

	assert.Equal(t, sampleReports(), s.Reports())
	assert.NoError(t, s.CheckReadiness(context.Background()))
	assert.False(t, s.Degraded())
	require.Len(t, seen, 1)
	require.Len(t, c.saved, 1, "successful receipt mirrored to cache")

	// A newer snapshot fully supersedes, never merges.
	st.onSnapshot(sampleReports()[:1])
	assert.Equal(t, sampleReports()[:1], s.Reports())
	require.Len(t, seen, 2)
}

func TestSynchronizer_FallbackToCache(t *testing.T) {
	st := &fakeStore{}
	c := &fakeCache{stored: sampleReports()}
	s := newSyncer(t, st, c)

	require.NoError(t, s.Start(context.Background()))

	st.onError(errors.New("permission denied"))

	assert.Equal(t, sampleReports(), s.Reports(), "rendered list equals the cache contents")
	assert.True(t, s.Degraded())
	assert.NoError(t, s.CheckReadiness(context.Background()), "degraded mode still serves")
}

func TestSynchronizer_FallbackWithBrokenCache(t *testing.T) {
	st := &fakeStore{}
	c := &fakeCache{loadErr: errors.New("disk gone")}
	s := newSyncer(t, st, c)

	require.NoError(t, s.Start(context.Background()))

	// Must not panic, must not surface the cache error.
	st.onError(errors.New("network down"))

	assert.Empty(t, s.Reports())
	assert.True(t, s.Degraded())
}

func TestSynchronizer_SubscribeFailureFallsBackImmediately(t *testing.T) {
	st := &fakeStore{subscribeErr: store.ErrUnavailable}
	c := &fakeCache{stored: sampleReports()}
	s := newSyncer(t, st, c)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, sampleReports(), s.Reports())
	assert.True(t, s.Degraded())
}

func TestSynchronizer_Submit(t *testing.T) {
	t.Run("success persists and mirrors", func(t *testing.T) {
		st := &fakeStore{}
		c := &fakeCache{}
		s := newSyncer(t, st, c)
		require.NoError(t, s.Start(context.Background()))
		st.onSnapshot(sampleReports())
		c.saved = nil

		report := domain.Report{Lat: 1, Lng: 2, Category: domain.CategoryLighting, Severity: domain.SeverityLow, Description: "dark corner", Timestamp: 300}
		id, err := s.Submit(context.Background(), report)

		require.NoError(t, err)
		assert.Equal(t, "new-id", id)
		require.Len(t, st.created, 1)
		require.Len(t, c.saved, 1, "best-known list mirrored after submit")
		assert.Equal(t, sampleReports(), c.saved[0], "mirror holds the pre-snapshot list; the new report arrives with the next snapshot")
	})

	t.Run("store failure still mirrors and surfaces the error", func(t *testing.T) {
		st := &fakeStore{createErr: store.ErrUnavailable}
		c := &fakeCache{}
		s := newSyncer(t, st, c)
		require.NoError(t, s.Start(context.Background()))
		st.onSnapshot(sampleReports())
		c.saved = nil

		_, err := s.Submit(context.Background(), domain.Report{Category: domain.CategoryOther, Severity: domain.SeverityLow, Description: "x"})

		assert.ErrorIs(t, err, store.ErrUnavailable)
		require.Len(t, c.saved, 1)
		assert.Equal(t, sampleReports(), s.Reports(), "authoritative list untouched by the failure")
	})

	t.Run("cache failure during submit is swallowed", func(t *testing.T) {
		st := &fakeStore{}
		c := &fakeCache{saveErr: errors.New("disk full")}
		s := newSyncer(t, st, c)
		require.NoError(t, s.Start(context.Background()))

		id, err := s.Submit(context.Background(), domain.Report{Category: domain.CategoryOther, Severity: domain.SeverityLow, Description: "x"})
		require.NoError(t, err)
		assert.Equal(t, "new-id", id)
	})
}

func TestSynchronizer_SnapshotAfterFallbackRestoresLiveMode(t *testing.T) {
	st := &fakeStore{}
	c := &fakeCache{stored: sampleReports()[:1]}
	s := newSyncer(t, st, c)
	require.NoError(t, s.Start(context.Background()))

	st.onError(errors.New("blip"))
	require.True(t, s.Degraded())

	st.onSnapshot(sampleReports())
	assert.False(t, s.Degraded())
	assert.Equal(t, sampleReports(), s.Reports())
}

func TestSynchronizer_ListenerUnregister(t *testing.T) {
	st := &fakeStore{}
	s := newSyncer(t, st, &fakeCache{})
	require.NoError(t, s.Start(context.Background()))

	var calls int
	remove := s.AddListener(func([]domain.Report) { calls++ })

	st.onSnapshot(sampleReports())
	remove()
	st.onSnapshot(sampleReports())

	assert.Equal(t, 1, calls)
}

func TestSynchronizer_CloseDisposesExactlyOnce(t *testing.T) {
	st := &fakeStore{}
	s := newSyncer(t, st, &fakeCache{})
	require.NoError(t, s.Start(context.Background()))

	s.Close()
	s.Close()

	assert.Equal(t, 1, st.disposals)
}
