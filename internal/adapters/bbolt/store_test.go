package bbolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/fpvcompat/internal/domain/compat"
	"github.com/corey/fpvcompat/internal/domain/part"
	"github.com/corey/fpvcompat/internal/ports"
)

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

// makeTestRun evaluates a small catalog into a run.
func makeTestRun(created time.Time) *ports.Run {
	tab := part.Normalize([]part.Raw{
		{"sku": "F1", "type": "frame", "name": "5in", "frame_max_prop_in": 5},
		{"sku": "P1", "type": "prop", "name": "5x4", "prop_diameter_in": 5.1, "prop_hub": "T"},
		{"sku": "M1", "type": "motor", "name": "1103", "shaft_mm": 3},
	})
	return &ports.Run{
		RunInfo: ports.RunInfo{
			ID:        uuid.NewString(),
			CreatedAt: created.UTC().Truncate(time.Millisecond),
			Headroom:  1.2,
			Sources:   []string{"parts/frames.csv"},
			Parts:     tab.Len(),
		},
		Results: compat.Build(tab, 1.2),
	}
}

func TestStore_SaveLoadRun_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	run := makeTestRun(time.Now())
	require.NoError(t, store.SaveRun(run))

	got, err := store.LoadRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.RunInfo, got.RunInfo)
	require.Equal(t, run.Results.Keys(), got.Results.Keys(), "rule order survives sorted keys")

	prop, ok := got.Results.Get("Compat_frame_prop")
	require.True(t, ok)
	require.Len(t, prop.Edges, 1)
	assert.Equal(t, compat.StatusFail, prop.Edges[0].Status)
	assert.Equal(t, []any{5.0, 5.1}, prop.Edges[0].Values)

	hub, _ := got.Results.Get("Compat_motor_prop_hub")
	require.Len(t, hub.Edges, 1)
	assert.Equal(t, []any{3.0, nil, "T-MOUNT"}, hub.Edges[0].Values, "unknown values survive as nil")

	empty, _ := got.Results.Get("Compat_cap_esc")
	assert.NotNil(t, empty.Edges)
	assert.Empty(t, empty.Edges)
	assert.Equal(t, compat.Summarize(run.Results), compat.Summarize(got.Results))
}

func TestStore_SaveRun_Replaces(t *testing.T) {
	store, _ := newTestStore(t)
	run := makeTestRun(time.Now())
	require.NoError(t, store.SaveRun(run))

	run.Results = compat.Build(part.Table{}, 1.2)[:2]
	run.Parts = 0
	require.NoError(t, store.SaveRun(run))

	got, err := store.LoadRun(run.ID)
	require.NoError(t, err)
	assert.Len(t, got.Results, 2, "stale tables are dropped")
	assert.Zero(t, got.Parts)
}

func TestStore_SaveRun_Invalid(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveRun(nil))
	assert.Error(t, store.SaveRun(&ports.Run{}))
}

func TestStore_LatestAndList(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.LatestRun()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := makeTestRun(base)
	newer := makeTestRun(base.Add(time.Hour))
	mid := makeTestRun(base.Add(time.Minute))
	for _, r := range []*ports.Run{old, newer, mid} {
		require.NoError(t, store.SaveRun(r))
	}

	list, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{newer.ID, mid.ID, old.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	latest, err := store.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestStore_LoadRun_Missing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.LoadRun("nope")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, store.SaveRun(makeTestRun(time.Now())))
	_, err = store.LoadRun("nope")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestStore_DeleteRun(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.DeleteRun("never-existed"), "idempotent on empty db")

	run := makeTestRun(time.Now())
	require.NoError(t, store.SaveRun(run))
	require.NoError(t, store.DeleteRun(run.ID))
	require.NoError(t, store.DeleteRun(run.ID))

	_, err := store.LoadRun(run.ID)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestStore_StateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restart.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	run := makeTestRun(time.Now())
	require.NoError(t, store.SaveRun(run))
	require.NoError(t, store.Close())

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	latest, err := store2.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, run.Results.EdgeCount(), latest.Results.EdgeCount())
}

func TestDecodeTable_RejectsUnknownFormat(t *testing.T) {
	_, err := decodeTable(nil)
	assert.Error(t, err)
	_, err = decodeTable([]byte{9, 1, 2})
	assert.ErrorContains(t, err, "unsupported table format")
}

// =============================================================================
// Lock contention: the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2)
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "released.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.SaveRun(makeTestRun(time.Now())))
	store1.Close()

	store2, err := NewStore(path)
	require.NoError(t, err, "open after close should succeed")
	defer store2.Close()

	list, err := store2.ListRuns()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
