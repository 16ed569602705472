package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// registerBuiltins installs the standard constraint kinds.
func registerBuiltins(r *Registry) {
	r.Register("int", noArgs("int", Func(matchInt)))
	r.Register("long", noArgs("long", Func(matchInt)))
	r.Register("bool", noArgs("bool", Func(matchBool)))
	r.Register("float", noArgs("float", Func(matchFloat)))
	r.Register("double", noArgs("double", Func(matchFloat)))
	r.Register("alpha", noArgs("alpha", Func(matchAlpha)))
	r.Register("guid", noArgs("guid", Func(matchGUID)))
	r.Register("datetime", noArgs("datetime", Func(matchDateTime)))
	r.Register("length", lengthFactory)
	r.Register("minlength", minLengthFactory)
	r.Register("maxlength", maxLengthFactory)
	r.Register("min", minFactory)
	r.Register("max", maxFactory)
	r.Register("range", rangeFactory)
	r.Register("regex", regexFactory)
}

// noArgs wraps a fixed constraint into a factory that rejects inline
// arguments.
func noArgs(kind string, c Constraint) Factory {
	return func(args []string) (Constraint, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%s constraint takes no arguments", kind)
		}
		return c, nil
	}
}

func matchInt(_, value string, _ map[string]string) bool {
	_, err := strconv.ParseInt(value, 10, 64)
	return err == nil
}

func matchBool(_, value string, _ map[string]string) bool {
	_, err := strconv.ParseBool(value)
	return err == nil
}

func matchFloat(_, value string, _ map[string]string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func matchAlpha(_, value string, _ map[string]string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func matchGUID(_, value string, _ map[string]string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

// dateTimeLayouts are the accepted datetime representations, most
// specific first.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func matchDateTime(_, value string, _ map[string]string) bool {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func lengthFactory(args []string) (Constraint, error) {
	switch len(args) {
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("length argument must be an integer: %w", err)
		}
		return Func(func(_, value string, _ map[string]string) bool {
			return utf8.RuneCountInString(value) == n
		}), nil
	case 2:
		lo, hi, err := intPair(args)
		if err != nil {
			return nil, err
		}
		return Func(func(_, value string, _ map[string]string) bool {
			n := utf8.RuneCountInString(value)
			return n >= lo && n <= hi
		}), nil
	default:
		return nil, fmt.Errorf("length constraint takes 1 or 2 arguments, got %d", len(args))
	}
}

func minLengthFactory(args []string) (Constraint, error) {
	n, err := singleInt("minlength", args)
	if err != nil {
		return nil, err
	}
	return Func(func(_, value string, _ map[string]string) bool {
		return utf8.RuneCountInString(value) >= n
	}), nil
}

func maxLengthFactory(args []string) (Constraint, error) {
	n, err := singleInt("maxlength", args)
	if err != nil {
		return nil, err
	}
	return Func(func(_, value string, _ map[string]string) bool {
		return utf8.RuneCountInString(value) <= n
	}), nil
}

func minFactory(args []string) (Constraint, error) {
	n, err := singleInt("min", args)
	if err != nil {
		return nil, err
	}
	return Func(func(_, value string, _ map[string]string) bool {
		v, err := strconv.ParseInt(value, 10, 64)
		return err == nil && v >= int64(n)
	}), nil
}

func maxFactory(args []string) (Constraint, error) {
	n, err := singleInt("max", args)
	if err != nil {
		return nil, err
	}
	return Func(func(_, value string, _ map[string]string) bool {
		v, err := strconv.ParseInt(value, 10, 64)
		return err == nil && v <= int64(n)
	}), nil
}

func rangeFactory(args []string) (Constraint, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("range constraint takes 2 arguments, got %d", len(args))
	}
	lo, hi, err := intPair(args)
	if err != nil {
		return nil, err
	}
	return Func(func(_, value string, _ map[string]string) bool {
		v, err := strconv.ParseInt(value, 10, 64)
		return err == nil && v >= int64(lo) && v <= int64(hi)
	}), nil
}

func regexFactory(args []string) (Constraint, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("regex constraint requires a pattern")
	}

	// Commas inside the pattern that survived argument splitting are
	// rejoined; the pattern is the whole argument list.
	pattern := args[0]
	for _, a := range args[1:] {
		pattern += "," + a
	}

	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return Func(func(_, value string, _ map[string]string) bool {
		return re.MatchString(value)
	}), nil
}

func singleInt(kind string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s constraint takes 1 argument, got %d", kind, len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s argument must be an integer: %w", kind, err)
	}
	return n, nil
}

func intPair(args []string) (lo, hi int, err error) {
	lo, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("argument must be an integer: %w", err)
	}
	hi, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("argument must be an integer: %w", err)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("lower bound %d exceeds upper bound %d", lo, hi)
	}
	return lo, hi, nil
}
