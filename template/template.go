// Package template implements parsing and representation of attribute
// route templates.
//
// A template is a URL path pattern made of slash-separated segments.
// Each segment contains literal text, parameter placeholders, or a mix
// of both:
//
//	api/Blog/{id}
//	api/Blog/{id:int}
//	api/Blog/{id=17}
//	api/Blog/{id?}
//	files/{*path}
//	v{version}/users
//
// Parameter placeholders support an optional constraint key, an optional
// default value and an optional marker. A catch-all parameter (leading
// '*') consumes all remaining path segments. Literal braces are escaped
// by doubling: '{{' and '}}'.
package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTemplate is the sentinel error for templates that violate
// the template grammar or its structural invariants. Check with
// errors.Is.
var ErrMalformedTemplate = errors.New("malformed route template")

// ParseError describes why a template could not be parsed.
type ParseError struct {
	Template string
	Position int
	Message  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid route template %q at position %d: %s", e.Template, e.Position, e.Message)
}

// Is checks if the error matches the target.
func (e *ParseError) Is(target error) bool {
	if target == ErrMalformedTemplate {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// Part is a single piece of a segment: either literal text or a
// parameter placeholder.
type Part struct {
	// Literal holds the literal text. Empty for parameter parts.
	Literal string

	// Name is the parameter name. Empty for literal parts.
	Name string

	// IsParameter reports whether the part is a parameter placeholder.
	IsParameter bool

	// IsOptional reports whether the parameter may be omitted from a
	// request path ('{id?}').
	IsOptional bool

	// IsCatchAll reports whether the parameter consumes all remaining
	// path segments ('{*path}').
	IsCatchAll bool

	// ConstraintKey is the constraint expression attached to the
	// parameter, including inline arguments (e.g. "int",
	// "length(2,5)"). Empty if the parameter is unconstrained.
	ConstraintKey string

	// Default is the default value for the parameter. Only meaningful
	// when HasDefault is true.
	Default    string
	HasDefault bool
}

// Segment is one slash-delimited piece of a template.
type Segment struct {
	Parts []Part
}

// IsSimple reports whether the segment consists of exactly one part.
func (s Segment) IsSimple() bool {
	return len(s.Parts) == 1
}

// HasParameter reports whether any part of the segment is a parameter.
func (s Segment) HasParameter() bool {
	for i := range s.Parts {
		if s.Parts[i].IsParameter {
			return true
		}
	}
	return false
}

// CatchAll returns the catch-all parameter part of the segment, or nil.
func (s Segment) CatchAll() *Part {
	for i := range s.Parts {
		if s.Parts[i].IsCatchAll {
			return &s.Parts[i]
		}
	}
	return nil
}

// Template is the parsed, immutable representation of a route template.
type Template struct {
	text     string
	segments []Segment
	params   []Part
}

// Text returns the original template text.
func (t *Template) Text() string {
	return t.text
}

// Segments returns the parsed segments. Callers must not modify the
// returned slice.
func (t *Template) Segments() []Segment {
	return t.segments
}

// Parameters returns all parameter parts in declaration order. Callers
// must not modify the returned slice.
func (t *Template) Parameters() []Part {
	return t.params
}

// HasCatchAll reports whether the template ends with a catch-all
// parameter.
func (t *Template) HasCatchAll() bool {
	if len(t.segments) == 0 {
		return false
	}
	return t.segments[len(t.segments)-1].CatchAll() != nil
}

// Parameter returns the parameter part with the given name, or nil.
// Parameter names are compared case-insensitively.
func (t *Template) Parameter(name string) *Part {
	for i := range t.params {
		if strings.EqualFold(t.params[i].Name, name) {
			return &t.params[i]
		}
	}
	return nil
}
