package constraint

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// celEnv is the shared CEL environment for expression constraints.
// Built lazily; the environment is immutable and safe for concurrent
// compilation.
var (
	celEnvOnce sync.Once
	celEnvInst *cel.Env
	celEnvErr  error
)

// celEnvironment returns the CEL environment exposing the route value
// being evaluated:
//
//	param  - the parameter name (string)
//	value  - the candidate value (string)
//	values - all route values bound so far (map<string, string>)
func celEnvironment() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnvInst, celEnvErr = cel.NewEnv(
			cel.Variable("param", cel.StringType),
			cel.Variable("value", cel.StringType),
			cel.Variable("values", cel.MapType(cel.StringType, cel.StringType)),
		)
	})
	return celEnvInst, celEnvErr
}

// celConstraint evaluates a compiled CEL expression against a route
// value. The expression must produce a bool; evaluation errors count as
// a failed match.
type celConstraint struct {
	program cel.Program
}

// celFactory compiles a CEL expression constraint, e.g.
// "{id:cel(value.size() > 2 && value != values.controller)}".
func celFactory(args []string) (Constraint, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("cel constraint requires an expression")
	}
	expression := strings.Join(args, ",")

	env, err := celEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	return &celConstraint{program: program}, nil
}

// Match implements Constraint.
func (c *celConstraint) Match(param, value string, values map[string]string) bool {
	if values == nil {
		values = map[string]string{}
	}

	result, _, err := c.program.Eval(map[string]any{
		"param":  param,
		"value":  value,
		"values": values,
	})
	if err != nil {
		return false
	}

	matched, ok := result.Value().(bool)
	return ok && matched
}
