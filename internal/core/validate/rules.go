package validate

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Rule is a cross-field refinement: Expr must evaluate to true, otherwise
// Message is reported against Field.
type Rule struct {
	Field   string
	Expr    string
	Message string
}

type compiledRule struct {
	Rule
	prg cel.Program
}

// RuleSet is a compiled list of refinements over a fixed set of variables.
// Variables are dynamically typed; a missing optional value is passed as nil
// and compares equal to `null`.
type RuleSet struct {
	vars  []string
	rules []compiledRule
}

// Compile builds a RuleSet. Every variable referenced by an expression
// must be listed in vars.
func Compile(vars []string, rules ...Rule) (*RuleSet, error) {
	opts := make([]cel.EnvOption, 0, len(vars))
	for _, v := range vars {
		opts = append(opts, cel.Variable(v, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	rs := &RuleSet{vars: vars, rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, iss := env.Compile(r.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("compile rule for %s: %w", r.Field, iss.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule for %s: %w", r.Field, err)
		}
		rs.rules = append(rs.rules, compiledRule{Rule: r, prg: prg})
	}
	return rs, nil
}

// MustCompile is Compile for package-level rule declarations.
func MustCompile(vars []string, rules ...Rule) *RuleSet {
	rs, err := Compile(vars, rules...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Check evaluates every rule against the activation and returns the
// messages of the rules that did not hold.
func (rs *RuleSet) Check(activation map[string]any) map[string]string {
	if rs == nil || len(rs.rules) == 0 {
		return nil
	}
	input := make(map[string]any, len(rs.vars))
	for _, v := range rs.vars {
		input[v] = activation[v]
	}

	var out map[string]string
	for _, r := range rs.rules {
		val, _, err := r.prg.Eval(input)
		if err == nil && val == types.True {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		if _, seen := out[r.Field]; !seen {
			out[r.Field] = r.Message
		}
	}
	return out
}

// Optional dereferences p for use in an activation; nil stays nil.
func Optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Struct runs the field constraints of s and, only when they all hold, the
// cross-field rules against vars. extra checks run last, under the same
// condition, and may add messages of their own.
func Struct(s any, rules *RuleSet, vars func() map[string]any, extra ...func(Errors)) error {
	errs := Errors{}
	errs.Merge(Fields(s))
	if len(errs) > 0 {
		return errs.Err()
	}
	if rules != nil && vars != nil {
		errs.Merge(rules.Check(vars()))
	}
	for _, fn := range extra {
		fn(errs)
	}
	return errs.Err()
}
