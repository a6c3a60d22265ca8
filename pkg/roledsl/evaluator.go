// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package roledsl

import (
	"context"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/rolecall/rolecall/pkg/authz"
)

// globSeparator keeps glob wildcards from crossing reference segments,
// so "invoice:*" does not match "invoice:2024:draft".
const globSeparator = ':'

// Compiled is a parsed expression with its glob patterns precompiled.
// Pattern errors surface at compile time, not at decision time.
type Compiled struct {
	expr  *Expr
	globs map[string]glob.Glob
}

// Compile parses text and precompiles it for evaluation.
func Compile(text string) (*Compiled, error) {
	expr, err := Parse(text)
	if err != nil {
		return nil, err
	}

	globs := make(map[string]glob.Glob)
	if err := precompileGlobs(expr, globs); err != nil {
		return nil, oops.In("roledsl").
			With("expression", text).
			Wrap(err)
	}
	return &Compiled{expr: expr, globs: globs}, nil
}

// Predicate adapts the compiled expression to the authz predicate
// shape. Evaluation is total: missing attributes and type mismatches
// make the enclosing comparison false, never an error.
func (c *Compiled) Predicate() authz.Predicate {
	return func(_ context.Context, user, target any) (bool, error) {
		return c.Eval(user, target), nil
	}
}

// Eval evaluates the expression against the attributes of user and
// target.
func (c *Compiled) Eval(user, target any) bool {
	env := &env{
		user:   authz.AttrsOf(user),
		target: authz.AttrsOf(target),
		globs:  c.globs,
	}
	return evalExpr(env, c.expr)
}

func precompileGlobs(e *Expr, cache map[string]glob.Glob) error {
	for _, and := range e.Or {
		for _, u := range and.And {
			if err := precompileUnary(u, cache); err != nil {
				return err
			}
		}
	}
	return nil
}

func precompileUnary(u *Unary, cache map[string]glob.Glob) error {
	if u.Not != nil {
		return precompileUnary(u.Not, cache)
	}
	p := u.Primary
	switch {
	case p.Sub != nil:
		return precompileGlobs(p.Sub, cache)
	case p.Comparison != nil && p.Comparison.Op == "like":
		pattern := *p.Comparison.Right.Lit.Str
		if _, ok := cache[pattern]; ok {
			return nil
		}
		g, err := glob.Compile(pattern, globSeparator)
		if err != nil {
			return oops.Code("INVALID_PATTERN").
				With("pattern", pattern).
				Wrap(err)
		}
		cache[pattern] = g
	}
	return nil
}

// env carries the resolved attribute maps for one evaluation.
type env struct {
	user   map[string]any
	target map[string]any
	globs  map[string]glob.Glob
}

// lookup resolves an attribute path, walking nested maps. The second
// return is false when any segment is missing.
func (e *env) lookup(p *Path) (any, bool) {
	var current any
	switch p.Root {
	case "user":
		current = e.user
	case "target":
		current = e.target
	}
	for _, seg := range p.Segs {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// evalExpr: OR over conjunctions, short-circuit on true.
func evalExpr(env *env, e *Expr) bool {
	for _, and := range e.Or {
		if evalAnd(env, and) {
			return true
		}
	}
	return false
}

// evalAnd: AND over unaries, short-circuit on false.
func evalAnd(env *env, a *AndExpr) bool {
	for _, u := range a.And {
		if !evalUnary(env, u) {
			return false
		}
	}
	return true
}

func evalUnary(env *env, u *Unary) bool {
	if u.Not != nil {
		return !evalUnary(env, u.Not)
	}
	return evalPrimary(env, u.Primary)
}

func evalPrimary(env *env, p *Primary) bool {
	switch {
	case p.Sub != nil:
		return evalExpr(env, p.Sub)
	case p.Has != nil:
		_, ok := env.lookup(p.Has)
		return ok
	case p.Bool != nil:
		return *p.Bool == "true"
	case p.Comparison != nil:
		return evalComparison(env, p.Comparison)
	default:
		return false
	}
}

func evalComparison(env *env, c *Comparison) bool {
	left, ok := env.lookup(c.Left)
	if !ok {
		return false
	}

	switch c.Op {
	case "in":
		for _, lit := range c.List {
			if looseEqual(left, lit.value()) {
				return true
			}
		}
		return false

	case "like":
		s, ok := left.(string)
		if !ok {
			return false
		}
		g, ok := env.globs[*c.Right.Lit.Str]
		if !ok {
			return false
		}
		return g.Match(s)

	default:
		right, ok := resolveOperand(env, c.Right)
		if !ok {
			return false
		}
		return compare(c.Op, left, right)
	}
}

func resolveOperand(env *env, o *Operand) (any, bool) {
	if o.Path != nil {
		return env.lookup(o.Path)
	}
	return o.Lit.value(), true
}

func compare(op string, left, right any) bool {
	switch op {
	case "==":
		return looseEqual(left, right)
	case "!=":
		return !looseEqual(left, right)
	}

	// Ordering operators: numbers first, then strings.
	ln, lok := toFloat(left)
	rn, rok := toFloat(right)
	if lok && rok {
		switch op {
		case "<":
			return ln < rn
		case "<=":
			return ln <= rn
		case ">":
			return ln > rn
		case ">=":
			return ln >= rn
		}
		return false
	}

	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		switch op {
		case "<":
			return ls < rs
		case "<=":
			return ls <= rs
		case ">":
			return ls > rs
		case ">=":
			return ls >= rs
		}
	}
	return false
}

// looseEqual compares across numeric representations so YAML-decoded
// ints compare equal to DSL float literals. Mismatched types are
// unequal, not an error.
func looseEqual(left, right any) bool {
	if ln, ok := toFloat(left); ok {
		rn, ok := toFloat(right)
		return ok && ln == rn
	}
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
