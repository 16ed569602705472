package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestA = `
endpoints:
  - template: api/Blog/{id:int}
    name: BlogItem
    defaults:
      controller: Blog
  - template: api/{controller}/{action=Index}
    name: Conventional
`

const manifestB = `
endpoints:
  - template: files/{*path}
    name: Files
`

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewFileSourceLoadsEagerly(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, t.TempDir(), manifestA)

	src, err := NewFileSource(path)
	require.NoError(t, err)

	endpoints, version := src.Snapshot()
	assert.Equal(t, int64(1), version)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "BlogItem", endpoints[0].Name)
	assert.Equal(t, "api/Blog/{id:int}", endpoints[0].Template)
	assert.Equal(t, "Blog", endpoints[0].Defaults["controller"])
}

func TestNewFileSourceRejectsBadManifest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{{"},
		{"missing template", "endpoints:\n  - name: NoTemplate\n"},
		{"malformed template", "endpoints:\n  - template: api/{broken\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeManifest(t, t.TempDir(), tt.content)
			_, err := NewFileSource(path)
			assert.Error(t, err)
		})
	}
}

func TestFileSourceForceReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, manifestA)

	src, err := NewFileSource(path)
	require.NoError(t, err)

	writeManifest(t, dir, manifestB)
	require.NoError(t, src.ForceReload())

	endpoints, version := src.Snapshot()
	assert.Equal(t, int64(2), version)
	require.Len(t, endpoints, 1)
	assert.Equal(t, "Files", endpoints[0].Name)
}

func TestFileSourceWatchReloads(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, manifestA)

	src, err := NewFileSource(path, WithDebounceDelay(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, src.Start(ctx))
	defer func() { assert.NoError(t, src.Stop()) }()

	writeManifest(t, dir, manifestB)

	require.Eventually(t, func() bool {
		_, version := src.Snapshot()
		return version > 1
	}, 5*time.Second, 20*time.Millisecond)

	endpoints, _ := src.Snapshot()
	require.Len(t, endpoints, 1)
	assert.Equal(t, "Files", endpoints[0].Name)
}

func TestFileSourceStopAfterFailedStart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, manifestA)

	src, err := NewFileSource(path)
	require.NoError(t, err)

	// Removing the watched directory makes Start fail after the eager
	// load already succeeded.
	require.NoError(t, os.RemoveAll(dir))
	require.Error(t, src.Start(context.Background()))

	// A failed Start leaves the source stopped; Stop must return
	// immediately instead of waiting on a watch loop that never ran.
	done := make(chan error, 1)
	go func() { done <- src.Stop() }()

	select {
	case stopErr := <-done:
		assert.NoError(t, stopErr)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after a failed Start")
	}

	// The last good endpoint set still serves.
	endpoints, version := src.Snapshot()
	assert.Equal(t, int64(1), version)
	assert.Len(t, endpoints, 2)
}

func TestFileSourceKeepsLastGoodSetOnBadReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, manifestA)

	errCh := make(chan error, 1)
	src, err := NewFileSource(path,
		WithDebounceDelay(10*time.Millisecond),
		WithErrorCallback(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, src.Start(ctx))
	defer func() { assert.NoError(t, src.Stop()) }()

	writeManifest(t, dir, "endpoints:\n  - template: api/{broken\n")

	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}

	// The last good endpoint set and version survive the bad reload.
	endpoints, version := src.Snapshot()
	assert.Equal(t, int64(1), version)
	assert.Len(t, endpoints, 2)
}
