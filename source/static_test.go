package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSourceSnapshotIsolation(t *testing.T) {
	t.Parallel()

	src := NewStaticSource(Endpoint{Template: "api/{id}", Name: "api"})

	endpoints, version := src.Snapshot()
	require.Len(t, endpoints, 1)
	assert.Equal(t, int64(1), version)

	// Mutating the returned slice must not affect the source.
	endpoints[0].Name = "tampered"
	again, _ := src.Snapshot()
	assert.Equal(t, "api", again[0].Name)
}

func TestStaticSourceVersioning(t *testing.T) {
	t.Parallel()

	src := NewStaticSource()
	assert.Equal(t, int64(1), src.Version())

	src.Add(Endpoint{Template: "a", Name: "a"})
	assert.Equal(t, int64(2), src.Version())

	src.Set(Endpoint{Template: "b", Name: "b"}, Endpoint{Template: "c", Name: "c"})
	assert.Equal(t, int64(3), src.Version())

	endpoints, version := src.Snapshot()
	assert.Len(t, endpoints, 2)
	assert.Equal(t, int64(3), version)

	src.Bump()
	assert.Equal(t, int64(4), src.Version())
}

func TestStaticSourceRemove(t *testing.T) {
	t.Parallel()

	src := NewStaticSource(
		Endpoint{Template: "a", Name: "keep"},
		Endpoint{Template: "b", Name: "drop"},
		Endpoint{Template: "c", Name: "drop"},
	)

	assert.True(t, src.Remove("drop"))
	endpoints, version := src.Snapshot()
	require.Len(t, endpoints, 1)
	assert.Equal(t, "keep", endpoints[0].Name)
	assert.Equal(t, int64(2), version)

	// Removing a missing name does not bump the version.
	assert.False(t, src.Remove("drop"))
	assert.Equal(t, int64(2), src.Version())
}
