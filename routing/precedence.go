package routing

import (
	"github.com/vyrodovalexey/routecore/template"
)

// Segment specificity digits. Lower is more specific; earlier segments
// are most significant, so templates diverge on their first structural
// difference.
const (
	digitOmitted              = 0
	digitLiteral              = 1
	digitConstrainedParameter = 2
	digitParameter            = 3
	digitConstrainedCatchAll  = 4
	digitCatchAll             = 5
)

// maxRatedSegments is the number of decimal positions in a precedence
// value. Segments beyond this depth do not influence precedence; the
// explicit order and declaration index still break such ties.
const maxRatedSegments = 18

// ComputeInbound computes the inbound (request matching) precedence of a
// template. It is a pure function of the template structure: literal
// segments beat constrained parameters, which beat unconstrained ones;
// catch-alls sort last. Lower values are tried first.
//
// Each segment contributes one decimal digit, first segment most
// significant, padded with zeros to a fixed width so templates of
// different lengths stay comparable: api/Blog/{id} (113...) always beats
// api/{*rest} (15...).
func ComputeInbound(t *template.Template) int64 {
	return compute(t, inboundDigit)
}

// ComputeOutbound computes the outbound (link generation) precedence of
// a template. Link generation reasons about value-substitution cost:
// parameters that can fall back to a default are cheaper to fill than
// ones the caller must supply.
func ComputeOutbound(t *template.Template) int64 {
	return compute(t, outboundDigit)
}

func compute(t *template.Template, digit func(template.Segment) int64) int64 {
	segs := t.Segments()

	var p int64
	for i := 0; i < maxRatedSegments; i++ {
		d := int64(digitOmitted)
		if i < len(segs) {
			d = digit(segs[i])
		}
		p = p*10 + d
	}
	return p
}

// inboundDigit rates one segment for request matching. A complex
// multi-part segment rates as its least specific part.
func inboundDigit(seg template.Segment) int64 {
	if ca := seg.CatchAll(); ca != nil {
		if ca.ConstraintKey != "" {
			return digitConstrainedCatchAll
		}
		return digitCatchAll
	}

	var digit int64 = digitLiteral
	for _, part := range seg.Parts {
		d := int64(digitLiteral)
		if part.IsParameter {
			if part.ConstraintKey != "" {
				d = digitConstrainedParameter
			} else {
				d = digitParameter
			}
		}
		if d > digit {
			digit = d
		}
	}
	return digit
}

// outboundDigit rates one segment for link generation.
func outboundDigit(seg template.Segment) int64 {
	if seg.CatchAll() != nil {
		return digitCatchAll
	}

	var digit int64 = digitLiteral
	for _, part := range seg.Parts {
		d := int64(digitLiteral)
		if part.IsParameter {
			if part.HasDefault {
				d = digitConstrainedParameter
			} else {
				d = digitParameter
			}
		}
		if d > digit {
			digit = d
		}
	}
	return digit
}
