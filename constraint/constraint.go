// Package constraint provides parameter constraint evaluation for route
// matching.
//
// A constraint decides whether a candidate route value is acceptable for
// a parameter. Constraints are referenced from route templates by key
// (e.g. "{id:int}", "{name:length(2,5)}") and resolved through a
// pluggable Registry. The routing engine depends only on the Constraint
// capability; constraint kinds are registered and owned here.
package constraint

import (
	"fmt"
	"strings"
	"sync"
)

// Constraint evaluates a single route value.
//
// param is the parameter name, value the candidate string value, and
// values all route values bound so far (extracted segments plus
// defaults). Implementations must be safe for concurrent use.
type Constraint interface {
	Match(param, value string, values map[string]string) bool
}

// Func adapts a plain function to the Constraint interface.
type Func func(param, value string, values map[string]string) bool

// Match implements Constraint.
func (f Func) Match(param, value string, values map[string]string) bool {
	return f(param, value, values)
}

// Factory builds a Constraint from inline template arguments, e.g.
// "length(2,5)" invokes the "length" factory with ["2", "5"].
type Factory func(args []string) (Constraint, error)

// Registry resolves constraint keys to Constraint instances. Resolved
// constraints are cached by full key so repeated rebuilds reuse compiled
// state (regexes, CEL programs).
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	cache     map[string]Constraint
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		cache:     make(map[string]Constraint),
	}
}

// DefaultRegistry creates a registry with all builtin constraint kinds
// registered, including the CEL expression constraint.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	r.Register("cel", celFactory)
	return r
}

// Register registers a constraint factory under the given kind name.
// Registering an existing kind replaces it and invalidates cached
// resolutions of that kind.
func (r *Registry) Register(kind string, factory Factory) {
	kind = strings.ToLower(kind)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[kind] = factory
	for key := range r.cache {
		if kindOf(key) == kind {
			delete(r.cache, key)
		}
	}
}

// Resolve parses a constraint key from a template (kind plus optional
// inline arguments) and returns the Constraint it denotes.
func (r *Registry) Resolve(key string) (Constraint, error) {
	r.mu.RLock()
	if c, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return c, nil
	}
	r.mu.RUnlock()

	kind, args, err := parseKey(key)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cache[key]; ok {
		return c, nil
	}

	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown constraint kind %q in %q", kind, key)
	}

	c, err := factory(args)
	if err != nil {
		return nil, fmt.Errorf("constraint %q: %w", key, err)
	}

	r.cache[key] = c
	return c, nil
}

// kindOf returns the kind portion of a constraint key.
func kindOf(key string) string {
	if i := strings.IndexByte(key, '('); i >= 0 {
		return strings.ToLower(key[:i])
	}
	return strings.ToLower(key)
}

// parseKey splits a constraint key into kind and inline arguments.
// Arguments are split on commas outside parentheses, braces and
// brackets, so regex quantifiers and classes stay intact.
func parseKey(key string) (kind string, args []string, err error) {
	open := strings.IndexByte(key, '(')
	if open < 0 {
		return strings.ToLower(key), nil, nil
	}
	if !strings.HasSuffix(key, ")") {
		return "", nil, fmt.Errorf("unbalanced constraint arguments in %q", key)
	}

	kind = strings.ToLower(key[:open])
	inner := key[open+1 : len(key)-1]
	if inner == "" {
		return kind, nil, nil
	}

	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, inner[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, inner[start:])

	return kind, args, nil
}
