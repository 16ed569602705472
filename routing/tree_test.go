package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/routecore/constraint"
	"github.com/vyrodovalexey/routecore/source"
)

func buildTree(t *testing.T, endpoints []source.Endpoint) *Tree {
	t.Helper()
	inbound, _, _, err := BuildEntries(endpoints, constraint.DefaultRegistry(), true)
	require.NoError(t, err)
	return NewTree(inbound)
}

func TestTreeMatchBasics(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{Template: "api/Blog/{id}", Name: "blog"},
		{Template: "api/Blog/List", Name: "list"},
		{Template: "api/{controller}/{action=Index}/{id?}", Name: "conventional"},
	})

	tests := []struct {
		name   string
		path   string
		want   string // matched entry name, "" for no match
		values RouteValues
	}{
		{
			name:   "literal segment wins over parameter",
			path:   "/api/Blog/List",
			want:   "list",
			values: RouteValues{},
		},
		{
			name:   "parameter binds path value",
			path:   "/api/Blog/42",
			want:   "blog",
			values: RouteValues{"id": "42"},
		},
		{
			name:   "case-insensitive literals",
			path:   "/API/blog/LIST",
			want:   "list",
			values: RouteValues{},
		},
		{
			name:   "defaulted segment omitted",
			path:   "/api/News",
			want:   "conventional",
			values: RouteValues{"controller": "News", "action": "Index"},
		},
		{
			name:   "optional segment supplied",
			path:   "/api/News/Show/7",
			want:   "conventional",
			values: RouteValues{"controller": "News", "action": "Show", "id": "7"},
		},
		{
			name: "no structural match",
			path: "/metrics",
		},
		{
			name: "too many segments",
			path: "/api/News/Show/7/extra",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, ok := tree.Match(tt.path)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}

			require.True(t, ok)
			assert.Equal(t, tt.want, m.Entry.Name)
			for k, v := range tt.values {
				assert.Equal(t, v, m.Values[k], "value %q", k)
			}
			assert.NotEmpty(t, m.Values[GroupKey])
		})
	}
}

func TestTreeMatchConstraintRejection(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{Template: "api/Blog/{id:int}", Name: "byID"},
		{Template: "api/Blog/{slug}", Name: "bySlug"},
	})

	// Numeric value satisfies the constrained, more specific entry.
	m, ok := tree.Match("/api/Blog/42")
	require.True(t, ok)
	assert.Equal(t, "byID", m.Entry.Name)
	assert.Equal(t, "42", m.Values["id"])

	// Non-numeric value falls through to the next candidate.
	m, ok = tree.Match("/api/Blog/hello-world")
	require.True(t, ok)
	assert.Equal(t, "bySlug", m.Entry.Name)
	assert.Equal(t, "hello-world", m.Values["slug"])
}

func TestTreeMatchConstraintOnlyEntry(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{Template: "api/Blog/{id:int}", Name: "byID"},
	})

	_, ok := tree.Match("/api/Blog/abc")
	assert.False(t, ok)
}

func TestTreeMatchCatchAll(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{Template: "files/{*path}", Name: "files"},
		{Template: "files/readme", Name: "readme"},
	})

	// Literal loses no specificity to the catch-all.
	m, ok := tree.Match("/files/readme")
	require.True(t, ok)
	assert.Equal(t, "readme", m.Entry.Name)

	m, ok = tree.Match("/files/docs/go/spec.html")
	require.True(t, ok)
	assert.Equal(t, "files", m.Entry.Name)
	assert.Equal(t, "docs/go/spec.html", m.Values["path"])

	// Empty remainder: the catch-all still matches, with no bound value.
	m, ok = tree.Match("/files")
	require.True(t, ok)
	assert.Equal(t, "files", m.Entry.Name)
	_, bound := m.Values["path"]
	assert.False(t, bound)
}

func TestTreeMatchCatchAllDefault(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{Template: "docs/{*slug=hello}", Name: "docs"},
	})

	m, ok := tree.Match("/docs")
	require.True(t, ok)
	assert.Equal(t, "hello", m.Values["slug"])

	m, ok = tree.Match("/docs/a/b")
	require.True(t, ok)
	assert.Equal(t, "a/b", m.Values["slug"])
}

func TestTreeMatchComplexSegment(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{Template: "files/{name}.{ext}", Name: "file"},
	})

	m, ok := tree.Match("/files/report.pdf")
	require.True(t, ok)
	assert.Equal(t, "report", m.Values["name"])
	assert.Equal(t, "pdf", m.Values["ext"])

	_, ok = tree.Match("/files/noextension")
	assert.False(t, ok)
}

func TestTreeMatchDefaultsDoNotOverrideBoundValues(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{
			Template: "shop/{category=all}",
			Defaults: map[string]string{"currency": "usd"},
			Name:     "shop",
		},
	})

	m, ok := tree.Match("/shop/books")
	require.True(t, ok)
	assert.Equal(t, "books", m.Values["category"])
	assert.Equal(t, "usd", m.Values["currency"])

	m, ok = tree.Match("/shop")
	require.True(t, ok)
	assert.Equal(t, "all", m.Values["category"])
}

func TestTreeMatchRootTemplate(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{Template: "", Name: "root", Defaults: map[string]string{"controller": "Home"}},
	})

	m, ok := tree.Match("/")
	require.True(t, ok)
	assert.Equal(t, "root", m.Entry.Name)
	assert.Equal(t, "Home", m.Values["controller"])

	_, ok = tree.Match("/anything")
	assert.False(t, ok)
}

func TestTreeMatchOrderBeatsPrecedence(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, []source.Endpoint{
		{Template: "api/{x}", Order: -1, Name: "early"},
		{Template: "api/items", Order: 0, Name: "literal"},
	})

	m, ok := tree.Match("/api/items")
	require.True(t, ok)
	assert.Equal(t, "early", m.Entry.Name)
}

func TestTreeMatchPanickingConstraintFailsCandidateOnly(t *testing.T) {
	t.Parallel()

	registry := constraint.DefaultRegistry()
	registry.Register("explosive", func(args []string) (constraint.Constraint, error) {
		return constraint.Func(func(param, value string, values map[string]string) bool {
			panic("boom")
		}), nil
	})

	inbound, _, _, err := BuildEntries([]source.Endpoint{
		{Template: "api/{id:explosive}", Name: "volatile"},
		{Template: "api/{id}", Name: "fallback"},
	}, registry, true)
	require.NoError(t, err)

	tree := NewTree(inbound)
	m, ok := tree.Match("/api/7")
	require.True(t, ok)
	assert.Equal(t, "fallback", m.Entry.Name)
}
