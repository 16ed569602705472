// Package routing implements the attribute route matching engine:
// precedence computation, entry tables, the segment tree used for
// inbound matching and outbound link generation.
package routing

import (
	"regexp"

	"github.com/vyrodovalexey/routecore/constraint"
	"github.com/vyrodovalexey/routecore/template"
)

// GroupKey is the reserved default-value key carrying the opaque group
// identifier of a merged inbound entry. Several endpoints may share one
// inbound entry; downstream dispatch re-disambiguates by this value.
const GroupKey = "__route_group"

// RouteValues maps parameter names to string values.
type RouteValues map[string]string

// clone returns a copy of the values map.
func (v RouteValues) clone() RouteValues {
	out := make(RouteValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// KeyValue is an ordered (key, value) pair.
type KeyValue struct {
	Key   string
	Value string
}

// paramConstraint binds a resolved constraint to a parameter name.
type paramConstraint struct {
	param string
	key   string
	check constraint.Constraint
}

// InboundEntry is a route-table row used to match incoming paths.
// Entries are immutable after the build that produced them.
type InboundEntry struct {
	// Template is the parsed route template.
	Template *template.Template

	// Defaults are values merged into a match result for parameters not
	// present in the path, including the group identifier under
	// GroupKey.
	Defaults RouteValues

	// ConstraintKeys maps parameter names to their constraint keys, for
	// introspection.
	ConstraintKeys map[string]string

	// Order is the explicit priority; lower sorts first.
	Order int

	// Precedence is the computed inbound specificity; lower is tried
	// first.
	Precedence int64

	// Name is the optional route name.
	Name string

	// constraints are the resolved constraint evaluators.
	constraints []paramConstraint

	// segmentPatterns holds compiled matchers for complex (multi-part)
	// segments, keyed by segment index.
	segmentPatterns map[int]*regexp.Regexp

	// index is the declaration position within the endpoint set, the
	// final tie-breaker.
	index int
}

// OutboundEntry is a route-table row used to generate URLs. Unlike
// inbound entries, outbound entries are never merged: one per endpoint.
type OutboundEntry struct {
	Template *template.Template

	// Defaults are the endpoint defaults plus parameter defaults from
	// the template text.
	Defaults RouteValues

	// ConstraintKeys maps parameter names to their constraint keys.
	ConstraintKeys map[string]string

	Order      int
	Precedence int64
	Name       string

	// RequiredLinkValues must all be satisfied by the caller's supplied
	// values (or the entry defaults) for this entry to be eligible.
	RequiredLinkValues []KeyValue

	index int
}

// Match is the result of a successful inbound match.
type Match struct {
	// Entry is the inbound entry that matched.
	Entry *InboundEntry

	// Values are the extracted path parameters merged with the entry
	// defaults, including the group identifier.
	Values RouteValues
}

// entryLess orders inbound entries by (Order, Precedence, declaration
// index). The triple is a total order: ties are impossible.
func entryLess(a, b *InboundEntry) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if a.Precedence != b.Precedence {
		return a.Precedence < b.Precedence
	}
	return a.index < b.index
}

// outboundLess orders outbound entries by (Order, Precedence,
// declaration index).
func outboundLess(a, b *OutboundEntry) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if a.Precedence != b.Precedence {
		return a.Precedence < b.Precedence
	}
	return a.index < b.index
}
