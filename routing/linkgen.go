package routing

import (
	"net/url"
	"sort"
	"strings"
)

// LinkGenerator resolves route names and values to URLs over an
// immutable outbound entry table.
type LinkGenerator struct {
	byName map[string][]*OutboundEntry
}

// NewLinkGenerator indexes outbound entries by route name. Entries per
// name keep (order, precedence, declaration) ordering. Name lookup is
// case-insensitive.
func NewLinkGenerator(entries []*OutboundEntry) *LinkGenerator {
	g := &LinkGenerator{byName: make(map[string][]*OutboundEntry)}
	for _, e := range entries {
		key := strings.ToLower(e.Name)
		g.byName[key] = append(g.byName[key], e)
	}
	for _, list := range g.byName {
		sort.Slice(list, func(i, j int) bool { return outboundLess(list[i], list[j]) })
	}
	return g
}

// Generate builds a URL for the named route from the supplied values.
//
// Eligible entries are those whose required link values are all
// satisfied by the supplied values or the entry defaults, and whose
// template can be fully populated. The winner is the eligible entry
// with the lowest (order, precedence); if a second eligible entry ties
// exactly on both, generation fails with ErrAmbiguousLink rather than
// silently picking one.
func (g *LinkGenerator) Generate(name string, values RouteValues) (string, error) {
	candidates := g.byName[strings.ToLower(name)]

	var (
		winner    *OutboundEntry
		winnerURL string
	)
	for _, e := range candidates {
		if !requiredValuesSatisfied(e, values) {
			continue
		}
		u, ok := expandTemplate(e, values)
		if !ok {
			continue
		}

		if winner == nil {
			winner, winnerURL = e, u
			continue
		}
		if e.Order == winner.Order && e.Precedence == winner.Precedence {
			return "", ErrAmbiguousLink
		}
		// Entries are pre-sorted; every later candidate loses.
		break
	}

	if winner == nil {
		return "", ErrLinkNotFound
	}
	return winnerURL, nil
}

// requiredValuesSatisfied checks the entry's required link values
// against supplied values and entry defaults. Value comparison is
// case-insensitive, matching path literal comparison.
func requiredValuesSatisfied(e *OutboundEntry, values RouteValues) bool {
	for _, kv := range e.RequiredLinkValues {
		got, ok := values[kv.Key]
		if !ok {
			got, ok = e.Defaults[kv.Key]
		}
		if !ok || !strings.EqualFold(got, kv.Value) {
			return false
		}
	}
	return true
}

// expandTemplate substitutes values into the entry's template. Supplied
// values win over defaults. Trailing segments whose parameters were not
// supplied by the caller are omitted, producing the shortest equivalent
// URL. Returns false if a required parameter has no value.
func expandTemplate(e *OutboundEntry, values RouteValues) (string, bool) {
	type renderedSegment struct {
		text      string
		supplied  bool // any value in the segment came from the caller
		omissible bool // omitting the segment still yields a matching URL
	}

	segs := e.Template.Segments()
	rendered := make([]renderedSegment, 0, len(segs))

	for _, seg := range segs {
		var (
			b         strings.Builder
			supplied  bool
			omissible = true
		)

		for _, part := range seg.Parts {
			if !part.IsParameter {
				b.WriteString(part.Literal)
				omissible = false
				continue
			}

			if !part.IsOptional && !part.HasDefault && !part.IsCatchAll {
				omissible = false
			}

			value, fromCaller := values[part.Name]
			if !fromCaller {
				value = e.Defaults[part.Name]
			}

			if value == "" {
				if part.IsCatchAll || part.IsOptional {
					continue
				}
				return "", false
			}

			supplied = supplied || fromCaller
			if part.IsCatchAll {
				b.WriteString(escapeCatchAll(value))
			} else {
				b.WriteString(url.PathEscape(value))
			}
		}

		rendered = append(rendered, renderedSegment{
			text:      b.String(),
			supplied:  supplied,
			omissible: omissible,
		})
	}

	// Trim trailing omissible segments that the caller did not
	// explicitly supply: {controller}/{action=Index} with only a
	// controller yields /Home, not /Home/Index. A segment is never
	// trimmed when matching the shorter URL would bind differently.
	end := len(rendered)
	for end > 0 {
		seg := rendered[end-1]
		if seg.supplied || !seg.omissible {
			break
		}
		end--
	}

	parts := make([]string, 0, end)
	for _, seg := range rendered[:end] {
		if seg.text == "" {
			// An empty segment before a kept one cannot be omitted.
			return "", false
		}
		parts = append(parts, seg.text)
	}

	return "/" + strings.Join(parts, "/"), true
}

// escapeCatchAll escapes a catch-all value per path segment, keeping
// its slashes.
func escapeCatchAll(value string) string {
	pieces := strings.Split(value, "/")
	for i, p := range pieces {
		pieces[i] = url.PathEscape(p)
	}
	return strings.Join(pieces, "/")
}
