package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/routecore/constraint"
	"github.com/vyrodovalexey/routecore/source"
)

func buildLinkGenerator(t *testing.T, endpoints []source.Endpoint) *LinkGenerator {
	t.Helper()
	_, outbound, _, err := BuildEntries(endpoints, constraint.DefaultRegistry(), true)
	require.NoError(t, err)
	return NewLinkGenerator(outbound)
}

func TestGenerateBasics(t *testing.T) {
	t.Parallel()

	gen := buildLinkGenerator(t, []source.Endpoint{
		{Template: "api/Blog/{id}", Name: "BlogItem"},
		{Template: "api/Blog", Name: "BlogIndex"},
	})

	tests := []struct {
		name    string
		route   string
		values  RouteValues
		want    string
		wantErr error
	}{
		{
			name:   "substitutes parameter",
			route:  "BlogItem",
			values: RouteValues{"id": "42"},
			want:   "/api/Blog/42",
		},
		{
			name:  "literal-only template",
			route: "BlogIndex",
			want:  "/api/Blog",
		},
		{
			name:   "route name is case-insensitive",
			route:  "blogitem",
			values: RouteValues{"id": "1"},
			want:   "/api/Blog/1",
		},
		{
			name:    "missing required value",
			route:   "BlogItem",
			wantErr: ErrLinkNotFound,
		},
		{
			name:    "unknown route name",
			route:   "Nope",
			wantErr: ErrLinkNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := gen.Generate(tt.route, tt.values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateOmitsTrailingDefaultedSegments(t *testing.T) {
	t.Parallel()

	gen := buildLinkGenerator(t, []source.Endpoint{
		{Template: "{controller}/{action=Index}/{id?}", Name: "conventional"},
	})

	// Unsupplied trailing segments collapse to the shortest URL.
	u, err := gen.Generate("conventional", RouteValues{"controller": "Home"})
	require.NoError(t, err)
	assert.Equal(t, "/Home", u)

	// An explicitly supplied default is kept.
	u, err = gen.Generate("conventional", RouteValues{"controller": "Home", "action": "Index"})
	require.NoError(t, err)
	assert.Equal(t, "/Home/Index", u)

	// A supplied later segment forces the defaulted one before it.
	u, err = gen.Generate("conventional", RouteValues{"controller": "Home", "id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/Home/Index/7", u)
}

func TestGenerateRequiredLinkValues(t *testing.T) {
	t.Parallel()

	gen := buildLinkGenerator(t, []source.Endpoint{
		{
			Template: "api/Blog/{action}",
			Name:     "Blog",
			Defaults: map[string]string{"action": "Index"},
			Identity: map[string]string{"controller": "Blog", "action": "Index"},
		},
		{
			Template: "api/Blog/{action}",
			Name:     "Blog",
			Identity: map[string]string{"controller": "Blog", "action": "List"},
		},
	})

	// The supplied action selects between the two endpoints sharing the
	// template.
	u, err := gen.Generate("Blog", RouteValues{"action": "List", "controller": "Blog"})
	require.NoError(t, err)
	assert.Equal(t, "/api/Blog/List", u)

	// Defaults can satisfy identity values the caller omits; comparison
	// is case-insensitive.
	u, err = gen.Generate("Blog", RouteValues{"controller": "blog"})
	require.NoError(t, err)
	assert.Equal(t, "/api/Blog/Index", u)

	// No endpoint claims this identity.
	_, err = gen.Generate("Blog", RouteValues{"action": "Delete", "controller": "Blog"})
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestGenerateAmbiguity(t *testing.T) {
	t.Parallel()

	gen := buildLinkGenerator(t, []source.Endpoint{
		{Template: "a/{x}", Name: "Dup"},
		{Template: "b/{x}", Name: "Dup"},
	})

	// Two eligible entries with identical (order, precedence): refuse to
	// guess.
	_, err := gen.Generate("Dup", RouteValues{"x": "1"})
	assert.ErrorIs(t, err, ErrAmbiguousLink)
}

func TestGeneratePrecedenceSelectsMoreSpecific(t *testing.T) {
	t.Parallel()

	gen := buildLinkGenerator(t, []source.Endpoint{
		{Template: "posts/{id}", Name: "Post"},
		{Template: "posts/{id}/{slug=untitled}", Name: "Post", Order: 1},
	})

	u, err := gen.Generate("Post", RouteValues{"id": "5"})
	require.NoError(t, err)
	assert.Equal(t, "/posts/5", u)
}

func TestGenerateEscapesValues(t *testing.T) {
	t.Parallel()

	gen := buildLinkGenerator(t, []source.Endpoint{
		{Template: "search/{query}", Name: "Search"},
		{Template: "files/{*path}", Name: "Files"},
	})

	u, err := gen.Generate("Search", RouteValues{"query": "a b/c"})
	require.NoError(t, err)
	assert.Equal(t, "/search/a%20b%2Fc", u)

	// Catch-all values keep their slashes; each piece is escaped.
	u, err = gen.Generate("Files", RouteValues{"path": "docs/go spec/ch 1"})
	require.NoError(t, err)
	assert.Equal(t, "/files/docs/go%20spec/ch%201", u)
}

func TestGenerateCatchAllOmitted(t *testing.T) {
	t.Parallel()

	gen := buildLinkGenerator(t, []source.Endpoint{
		{Template: "files/{*path}", Name: "Files"},
	})

	u, err := gen.Generate("Files", nil)
	require.NoError(t, err)
	assert.Equal(t, "/files", u)
}
