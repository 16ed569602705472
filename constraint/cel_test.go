package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCELConstraint_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		expr   string
		param  string
		value  string
		values map[string]string
		want   bool
	}{
		{
			name:  "value predicate true",
			expr:  "cel(value.size() >= 2)",
			value: "ab",
			want:  true,
		},
		{
			name:  "value predicate false",
			expr:  "cel(value.size() >= 2)",
			value: "a",
			want:  false,
		},
		{
			name:  "param available",
			expr:  "cel(param == 'id')",
			param: "id",
			value: "anything",
			want:  true,
		},
		{
			name:   "cross-parameter lookup",
			expr:   "cel(values['controller'] == 'Blog')",
			value:  "5",
			values: map[string]string{"controller": "Blog"},
			want:   true,
		},
		{
			name:  "missing key is an eval error, not a panic",
			expr:  "cel(values['controller'] == 'Blog')",
			value: "5",
			want:  false,
		},
		{
			name:  "expression with comma survives argument splitting",
			expr:  "cel(value in ['a', 'b'])",
			value: "b",
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := DefaultRegistry().Resolve(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Match(tt.param, tt.value, tt.values))
		})
	}
}

func TestCELConstraint_CompileErrors(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	_, err := r.Resolve("cel(value ==)")
	assert.Error(t, err)

	_, err = r.Resolve("cel(value + 'x')")
	assert.Error(t, err, "non-bool output must be rejected")

	_, err = r.Resolve("cel")
	assert.Error(t, err, "expression is required")
}
