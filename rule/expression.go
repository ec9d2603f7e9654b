package rule

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Variable names visible to an expression rule.
const (
	CandidateVar = "candidate"
	ReferenceVar = "reference"
)

// A user supplied CEL boolean expression over candidate and reference, e.g.
//
//	candidate - reference < 0.5 && reference - candidate < 0.5
//
// An expression that fails to evaluate for a pair does not match.
type Expression[T Value] struct {
	Source  string
	program cel.Program
}

func NewExpression[T Value](source string) (*Expression[T], error) {
	if source == "" {
		return nil, errors.New("empty expression")
	}
	typ := cel.DoubleType
	var zero T
	if _, ok := any(zero).(int64); ok {
		typ = cel.IntType
	}
	env, err := cel.NewEnv(
		cel.Variable(CandidateVar, typ),
		cel.Variable(ReferenceVar, typ),
		ext.Math(),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(source)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q yields %s, not bool", source, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("plan expression %q: %w", source, err)
	}
	return &Expression[T]{Source: source, program: program}, nil
}

func (e *Expression[T]) Parse(raw string) (T, error) {
	var v T
	switch p := any(&v).(type) {
	case *int64:
		i, err := parseInt(raw)
		if err != nil {
			return v, err
		}
		*p = i
	case *float64:
		f, err := parseFloat(raw)
		if err != nil {
			return v, err
		}
		*p = f
	}
	return v, nil
}

func (e *Expression[T]) Match(candidate T, reference T) bool {
	out, _, err := e.program.Eval(map[string]any{
		CandidateVar: candidate,
		ReferenceVar: reference,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
