package routing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/routecore/constraint"
	"github.com/vyrodovalexey/routecore/source"
	"github.com/vyrodovalexey/routecore/template"
)

// BuildEntries transforms an endpoint-set snapshot into the inbound and
// outbound route tables. It is a pure function of its inputs: rebuilding
// from the same snapshot yields identical tables.
//
// Endpoints sharing an identical (template text, order, name) tuple are
// merged into one inbound entry whose defaults are the union with
// first-occurrence-wins per key; the merged entry carries a
// deterministic group identifier under GroupKey. Outbound entries are
// never merged: one per endpoint, carrying that endpoint's identity
// values as required link values.
//
// In lenient mode (strict=false) endpoints with malformed templates or
// unresolvable constraints are collected in skipped and left out of the
// tables; in strict mode the first such endpoint fails the whole build.
func BuildEntries(
	endpoints []source.Endpoint,
	registry *constraint.Registry,
	strict bool,
) (inbound []*InboundEntry, outbound []*OutboundEntry, skipped []*BuildError, err error) {
	groups := make(map[groupKey]*InboundEntry)

	for i, ep := range endpoints {
		in, out, buildErr := buildEndpoint(i, ep, registry)
		if buildErr != nil {
			if strict {
				return nil, nil, nil, buildErr
			}
			skipped = append(skipped, buildErr)
			continue
		}

		outbound = append(outbound, out)

		key := groupKey{text: in.Template.Text(), order: in.Order, name: in.Name}
		if existing, ok := groups[key]; ok {
			// First default wins across merged endpoints; later
			// duplicate keys are dropped silently.
			for k, v := range in.Defaults {
				if _, dup := existing.Defaults[k]; !dup {
					existing.Defaults[k] = v
				}
			}
			continue
		}

		in.Defaults[GroupKey] = groupID(key)
		groups[key] = in
		inbound = append(inbound, in)
	}

	sort.Slice(inbound, func(i, j int) bool { return entryLess(inbound[i], inbound[j]) })
	sort.Slice(outbound, func(i, j int) bool { return outboundLess(outbound[i], outbound[j]) })

	return inbound, outbound, skipped, nil
}

// groupKey identifies the inbound entry an endpoint belongs to.
type groupKey struct {
	text  string
	order int
	name  string
}

// groupID derives the opaque group identifier for a merged inbound
// entry. uuid v5 over the merge key keeps rebuilds byte-for-byte
// idempotent.
func groupID(key groupKey) string {
	material := fmt.Sprintf("%s\x00%d\x00%s", key.text, key.order, key.name)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(material)).String()
}

// buildEndpoint builds the inbound (pre-merge) and outbound entries for
// a single endpoint.
func buildEndpoint(
	index int,
	ep source.Endpoint,
	registry *constraint.Registry,
) (*InboundEntry, *OutboundEntry, *BuildError) {
	fail := func(cause error) *BuildError {
		return &BuildError{Endpoint: ep.Name, Template: ep.Template, Cause: cause}
	}

	tmpl, err := template.Parse(ep.Template)
	if err != nil {
		return nil, nil, fail(err)
	}

	defaults := entryDefaults(tmpl, ep.Defaults)
	keys := constraintKeys(tmpl, ep.Constraints)

	resolved := make([]paramConstraint, 0, len(keys))
	for _, param := range sortedKeys(keys) {
		c, err := registry.Resolve(keys[param])
		if err != nil {
			return nil, nil, fail(err)
		}
		resolved = append(resolved, paramConstraint{param: param, key: keys[param], check: c})
	}

	patterns, err := compileSegmentPatterns(tmpl)
	if err != nil {
		return nil, nil, fail(err)
	}

	in := &InboundEntry{
		Template:        tmpl,
		Defaults:        defaults,
		ConstraintKeys:  keys,
		Order:           ep.Order,
		Precedence:      ComputeInbound(tmpl),
		Name:            ep.Name,
		constraints:     resolved,
		segmentPatterns: patterns,
		index:           index,
	}

	out := &OutboundEntry{
		Template:           tmpl,
		Defaults:           defaults.clone(),
		ConstraintKeys:     keys,
		Order:              ep.Order,
		Precedence:         ComputeOutbound(tmpl),
		Name:               ep.Name,
		RequiredLinkValues: requiredLinkValues(ep.Identity),
		index:              index,
	}

	return in, out, nil
}

// entryDefaults merges endpoint-level defaults with parameter defaults
// inlined in the template text. Endpoint-level defaults win.
func entryDefaults(tmpl *template.Template, epDefaults map[string]string) RouteValues {
	defaults := make(RouteValues, len(epDefaults)+1)
	for k, v := range epDefaults {
		defaults[k] = v
	}
	for _, p := range tmpl.Parameters() {
		if p.HasDefault {
			if _, ok := defaults[p.Name]; !ok {
				defaults[p.Name] = p.Default
			}
		}
	}
	return defaults
}

// constraintKeys merges endpoint-level constraints with constraints
// inlined in the template text. Inline constraints win.
func constraintKeys(tmpl *template.Template, epConstraints map[string]string) map[string]string {
	keys := make(map[string]string, len(epConstraints))
	for k, v := range epConstraints {
		keys[k] = v
	}
	for _, p := range tmpl.Parameters() {
		if p.ConstraintKey != "" {
			keys[p.Name] = p.ConstraintKey
		}
	}
	return keys
}

// requiredLinkValues converts the endpoint identity map into an ordered
// pair sequence, sorted by key for determinism.
func requiredLinkValues(identity map[string]string) []KeyValue {
	if len(identity) == 0 {
		return nil
	}
	out := make([]KeyValue, 0, len(identity))
	for _, k := range sortedKeys(identity) {
		out = append(out, KeyValue{Key: k, Value: identity[k]})
	}
	return out
}

// compileSegmentPatterns compiles matchers for complex (multi-part)
// segments. Simple segments are matched structurally and need none.
func compileSegmentPatterns(tmpl *template.Template) (map[int]*regexp.Regexp, error) {
	var patterns map[int]*regexp.Regexp

	for i, seg := range tmpl.Segments() {
		if seg.IsSimple() {
			continue
		}

		var b strings.Builder
		b.WriteString("(?i)^")
		for _, part := range seg.Parts {
			if part.IsParameter {
				b.WriteString("(?P<")
				b.WriteString(part.Name)
				b.WriteString(">[^/]+)")
			} else {
				b.WriteString(regexp.QuoteMeta(part.Literal))
			}
		}
		b.WriteString("$")

		re, err := regexp.Compile(b.String())
		if err != nil {
			return nil, fmt.Errorf("cannot compile matcher for segment %d: %w", i, err)
		}

		if patterns == nil {
			patterns = make(map[int]*regexp.Regexp)
		}
		patterns[i] = re
	}

	return patterns, nil
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
