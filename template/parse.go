package template

import (
	"strings"
)

// Parse parses a route template string into its immutable representation.
// Leading and trailing slashes are ignored; the empty template matches
// the root path.
func Parse(text string) (*Template, error) {
	trimmed := strings.Trim(text, "/")

	t := &Template{text: text}
	if trimmed == "" {
		return t, nil
	}

	raw := strings.Split(trimmed, "/")
	t.segments = make([]Segment, 0, len(raw))

	offset := 0
	for i, rawSeg := range raw {
		if rawSeg == "" {
			return nil, &ParseError{Template: text, Position: offset, Message: "empty path segment"}
		}

		seg, err := parseSegment(text, rawSeg, offset)
		if err != nil {
			return nil, err
		}
		t.segments = append(t.segments, seg)

		for _, p := range seg.Parts {
			if !p.IsParameter {
				continue
			}
			if t.Parameter(p.Name) != nil {
				return nil, &ParseError{
					Template: text,
					Position: offset,
					Message:  "duplicate parameter name " + p.Name,
				}
			}
			if p.IsCatchAll && i != len(raw)-1 {
				return nil, &ParseError{
					Template: text,
					Position: offset,
					Message:  "catch-all parameter must be the last part of the last segment",
				}
			}
			t.params = append(t.params, p)
		}

		offset += len(rawSeg) + 1
	}

	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// statically known templates.
func MustParse(text string) *Template {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// parseSegment splits one slash-delimited segment into literal and
// parameter parts. offset is the segment's position within the full
// template, used for error reporting only.
func parseSegment(text, seg string, offset int) (Segment, error) {
	var (
		parts   []Part
		literal strings.Builder
	)

	flushLiteral := func() {
		if literal.Len() > 0 {
			parts = append(parts, Part{Literal: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(seg) {
		switch {
		case strings.HasPrefix(seg[i:], "{{"):
			literal.WriteByte('{')
			i += 2

		case strings.HasPrefix(seg[i:], "}}"):
			literal.WriteByte('}')
			i += 2

		case seg[i] == '{':
			end := findClosingBrace(seg, i)
			if end < 0 {
				return Segment{}, &ParseError{Template: text, Position: offset + i, Message: "unbalanced '{'"}
			}
			flushLiteral()

			part, err := parseParameter(text, seg[i+1:end], offset+i)
			if err != nil {
				return Segment{}, err
			}

			if len(parts) > 0 && parts[len(parts)-1].IsParameter {
				return Segment{}, &ParseError{
					Template: text,
					Position: offset + i,
					Message:  "two consecutive parameters must be separated by a literal",
				}
			}
			parts = append(parts, part)
			i = end + 1

		case seg[i] == '}':
			return Segment{}, &ParseError{Template: text, Position: offset + i, Message: "unbalanced '}'"}

		default:
			literal.WriteByte(seg[i])
			i++
		}
	}
	flushLiteral()

	if len(parts) > 1 {
		for _, p := range parts {
			if p.IsCatchAll {
				return Segment{}, &ParseError{
					Template: text,
					Position: offset,
					Message:  "catch-all parameter cannot share a segment with other parts",
				}
			}
		}
	}

	return Segment{Parts: parts}, nil
}

// findClosingBrace returns the index of the '}' matching the '{' at
// open, accounting for nested braces in constraint arguments (e.g.
// regex quantifiers like {2,5}). Returns -1 if unbalanced.
func findClosingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseParameter parses the inner text of a '{...}' placeholder.
func parseParameter(text, inner string, pos int) (Part, error) {
	part := Part{IsParameter: true}

	if rest, ok := strings.CutPrefix(inner, "*"); ok {
		part.IsCatchAll = true
		inner = rest
	}

	if rest, ok := strings.CutSuffix(inner, "?"); ok {
		part.IsOptional = true
		inner = rest
	}

	if name, dflt, ok := cutTopLevel(inner, '='); ok {
		part.Default = dflt
		part.HasDefault = true
		inner = name
	}

	if name, key, ok := cutTopLevel(inner, ':'); ok {
		if key == "" {
			return Part{}, &ParseError{Template: text, Position: pos, Message: "empty constraint key"}
		}
		part.ConstraintKey = key
		inner = name
	}

	part.Name = inner
	if !isValidParameterName(part.Name) {
		return Part{}, &ParseError{Template: text, Position: pos, Message: "invalid parameter name " + strings.TrimSpace(inner)}
	}
	if part.IsCatchAll && part.IsOptional {
		return Part{}, &ParseError{Template: text, Position: pos, Message: "catch-all parameter cannot be optional"}
	}
	if part.IsOptional && part.HasDefault {
		return Part{}, &ParseError{Template: text, Position: pos, Message: "optional parameter cannot have a default value"}
	}

	return part, nil
}

// cutTopLevel splits s around the first occurrence of sep that is not
// inside parentheses, so constraint arguments like regex(a=b) or
// range(1:2) stay intact.
func cutTopLevel(s string, sep byte) (before, after string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

// isValidParameterName reports whether name is a non-empty identifier
// made of letters, digits and underscores.
func isValidParameterName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}
