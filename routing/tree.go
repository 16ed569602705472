package routing

import (
	"sort"
	"strings"

	"github.com/vyrodovalexey/routecore/template"
)

// Tree is the precedence-ordered match structure over inbound entries.
// Candidates are narrowed by structural shape (literal segment
// prefixes, segment counts, catch-all reach) before any constraint is
// evaluated, so a request never pays for entries it cannot structurally
// match.
//
// The tree is immutable after construction and safe for concurrent use.
type Tree struct {
	root *treeNode
}

// treeNode is one segment-depth position in the tree.
type treeNode struct {
	// literals maps lowercased literal segments to children.
	literals map[string]*treeNode

	// dynamic is the child reached through any parameter or mixed
	// segment at this depth.
	dynamic *treeNode

	// entries can terminate at this depth: their remaining template
	// segments, if any, are all omissible.
	entries []*InboundEntry

	// catchAlls are anchored at this depth and consume the remainder of
	// the path, including an empty remainder.
	catchAlls []*InboundEntry
}

func newTreeNode() *treeNode {
	return &treeNode{}
}

// NewTree builds a match tree over the given inbound entries.
func NewTree(entries []*InboundEntry) *Tree {
	t := &Tree{root: newTreeNode()}
	for _, e := range entries {
		t.insert(e)
	}
	return t
}

// insert threads an entry through the tree, registering it at every
// depth where a request path may legally terminate.
func (t *Tree) insert(e *InboundEntry) {
	segs := e.Template.Segments()
	current := t.root

	for depth, seg := range segs {
		if seg.CatchAll() != nil {
			current.catchAlls = append(current.catchAlls, e)
			return
		}

		if omissibleFrom(segs, depth) {
			current.entries = append(current.entries, e)
		}

		current = current.child(seg)
	}

	current.entries = append(current.entries, e)
}

// child returns (creating if needed) the child node for a template
// segment.
func (n *treeNode) child(seg template.Segment) *treeNode {
	if seg.IsSimple() && !seg.Parts[0].IsParameter {
		if n.literals == nil {
			n.literals = make(map[string]*treeNode)
		}
		label := strings.ToLower(seg.Parts[0].Literal)
		child, ok := n.literals[label]
		if !ok {
			child = newTreeNode()
			n.literals[label] = child
		}
		return child
	}

	if n.dynamic == nil {
		n.dynamic = newTreeNode()
	}
	return n.dynamic
}

// omissibleFrom reports whether every template segment from depth
// onward may be absent from a request path: all parts are parameters
// that are optional or defaulted (catch-alls are handled separately and
// are always omissible).
func omissibleFrom(segs []template.Segment, depth int) bool {
	for _, seg := range segs[depth:] {
		for _, part := range seg.Parts {
			if !part.IsParameter {
				return false
			}
			if part.IsCatchAll {
				continue
			}
			if !part.IsOptional && !part.HasDefault {
				return false
			}
		}
	}
	return true
}

// Match finds the best-matching inbound entry for a request path.
// Candidates are evaluated in (order, precedence, declaration) order;
// the first candidate whose shape binds and whose constraints all pass
// wins. Returns false if no entry matches.
func (t *Tree) Match(path string) (*Match, bool) {
	segs := splitPath(path)

	var candidates []*InboundEntry
	collect(t.root, segs, 0, &candidates)
	if len(candidates) == 0 {
		return nil, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		return entryLess(candidates[i], candidates[j])
	})

	for _, e := range candidates {
		if values, ok := bindEntry(e, segs); ok {
			return &Match{Entry: e, Values: values}, true
		}
	}
	return nil, false
}

// collect gathers structurally compatible entries by walking the path
// segments through the tree.
func collect(n *treeNode, segs []string, depth int, out *[]*InboundEntry) {
	if n == nil {
		return
	}

	// Catch-alls anchored here reach any remaining suffix.
	*out = append(*out, n.catchAlls...)

	if depth == len(segs) {
		*out = append(*out, n.entries...)
		return
	}

	if n.literals != nil {
		collect(n.literals[strings.ToLower(segs[depth])], segs, depth+1, out)
	}
	collect(n.dynamic, segs, depth+1, out)
}

// splitPath splits a request path into segments. The root path has no
// segments.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// bindEntry attempts to bind the path segments to the entry's template,
// merge defaults and satisfy constraints. This is the only place
// constraints are evaluated.
func bindEntry(e *InboundEntry, segs []string) (RouteValues, bool) {
	values := make(RouteValues)
	tSegs := e.Template.Segments()

	idx := 0
	for si, seg := range tSegs {
		if ca := seg.CatchAll(); ca != nil {
			rest := strings.Join(segs[idx:], "/")
			if rest != "" {
				values[ca.Name] = rest
			}
			idx = len(segs)
			break
		}

		if idx >= len(segs) {
			// Path exhausted: remaining segments must be omissible;
			// defaulted parameters surface their defaults below.
			if !omissibleFrom(tSegs, si) {
				return nil, false
			}
			break
		}

		if !bindSegment(e, si, seg, segs[idx], values) {
			return nil, false
		}
		idx++
	}

	if idx < len(segs) {
		return nil, false
	}

	// Entry defaults fill parameters the path did not supply; bound
	// values always win.
	for k, v := range e.Defaults {
		if _, ok := values[k]; !ok {
			values[k] = v
		}
	}

	for _, pc := range e.constraints {
		value, ok := values[pc.param]
		if !ok {
			// Absent optional parameters are not constrained.
			continue
		}
		if !evalConstraint(pc, value, values) {
			return nil, false
		}
	}

	return values, true
}

// bindSegment binds one path segment against one template segment.
func bindSegment(e *InboundEntry, si int, seg template.Segment, raw string, values RouteValues) bool {
	if seg.IsSimple() {
		part := seg.Parts[0]
		if !part.IsParameter {
			return strings.EqualFold(part.Literal, raw)
		}
		if raw == "" {
			return false
		}
		values[part.Name] = raw
		return true
	}

	re := e.segmentPatterns[si]
	if re == nil {
		return false
	}
	matches := re.FindStringSubmatch(raw)
	if matches == nil {
		return false
	}
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" && i < len(matches) {
			values[name] = matches[i]
		}
	}
	return true
}

// evalConstraint runs one constraint, treating a panicking evaluator as
// a failed match for this candidate only.
func evalConstraint(pc paramConstraint, value string, values RouteValues) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return pc.check.Match(pc.param, value, values)
}
