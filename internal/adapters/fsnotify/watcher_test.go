package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func csvOnly(path string) bool { return strings.HasSuffix(path, ".csv") }

// startWatcher watches paths and returns the callback channel.
func startWatcher(t *testing.T, accept func(string) bool, paths ...string) (*Watcher, <-chan string) {
	t.Helper()
	w, err := NewWatcher(accept)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 16)
	require.NoError(t, w.Watch(paths, func(path string) { changed <- path }))

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestWatcher_DetectsFileChangeInDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "frames.csv")
	require.NoError(t, os.WriteFile(file, []byte("sku\n"), 0644))

	_, changed := startWatcher(t, csvOnly, dir)
	require.NoError(t, os.WriteFile(file, []byte("sku\nF1\n"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for file change")
	assert.Equal(t, file, path)
}

func TestWatcher_DetectsNewAndDeletedFile(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, csvOnly, dir)

	newFile := filepath.Join(dir, "motors.csv")
	require.NoError(t, os.WriteFile(newFile, []byte("sku\n"), 0644))
	path, ok := waitForCallback(changed, 2*time.Second)
	require.True(t, ok, "expected callback for new file")
	assert.Equal(t, newFile, path)

	time.Sleep(2 * debounceInterval)
	require.NoError(t, os.Remove(newFile))
	path, ok = waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for deleted file")
	assert.Equal(t, newFile, path)
}

func TestWatcher_FiltersUnacceptedAndEditorFiles(t *testing.T) {
	dir := t.TempDir()
	_, changed := startWatcher(t, csvOnly, dir)

	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "parts.csv.swp"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "parts.csv~"), []byte("x"), 0644)

	_, ok := waitForCallback(changed, 500*time.Millisecond)
	assert.False(t, ok, "should not have received callback for filtered files")

	file := filepath.Join(dir, "parts.csv")
	require.NoError(t, os.WriteFile(file, []byte("sku\n"), 0644))
	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok)
	assert.Equal(t, file, path)
}

func TestWatcher_SingleFileIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0644))

	_, changed := startWatcher(t, csvOnly, file)

	os.WriteFile(filepath.Join(dir, "other.csv"), []byte("sku\n"), 0644)
	_, ok := waitForCallback(changed, 500*time.Millisecond)
	assert.False(t, ok, "sibling of a watched file is not reported")

	require.NoError(t, os.WriteFile(file, []byte(`[{"sku":"A"}]`), 0644))
	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "explicit file is reported regardless of the filter")
	assert.Equal(t, file, path)
}

func TestWatcher_StopCleanup(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(nil)
	require.NoError(t, err)

	callCount := 0
	var mu sync.Mutex
	err = w.Watch([]string{dir}, func(path string) {
		mu.Lock()
		callCount++
		mu.Unlock()
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())

	mu.Lock()
	countAfterStop := callCount
	mu.Unlock()

	os.WriteFile(filepath.Join(dir, "after_stop.csv"), []byte("sku\n"), 0644)
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	countAfterWrite := callCount
	mu.Unlock()
	assert.Equal(t, countAfterStop, countAfterWrite, "callbacks fired after Stop()")

	// Double-stop should be safe
	assert.NoError(t, w.Stop())
}

func TestShouldIgnorePath(t *testing.T) {
	assert.True(t, shouldIgnorePath("/x/.DS_Store"))
	assert.True(t, shouldIgnorePath("/x/a.csv.swp"))
	assert.True(t, shouldIgnorePath("/x/.#a.csv"))
	assert.False(t, shouldIgnorePath("/x/a.csv"))
}

func TestDebouncer(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)
	t0 := time.Unix(0, 0)

	assert.True(t, d.allow("/a.csv", t0))
	assert.False(t, d.allow("/a.csv", t0.Add(10*time.Millisecond)), "repeat within interval")
	assert.True(t, d.allow("/b.csv", t0.Add(20*time.Millisecond)))
	assert.Len(t, d.last, 2)

	assert.True(t, d.allow("/c.csv", t0.Add(200*time.Millisecond)))
	assert.Len(t, d.last, 1, "stale paths pruned")
	assert.True(t, d.allow("/a.csv", t0.Add(300*time.Millisecond)))
}
