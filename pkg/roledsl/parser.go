// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package roledsl

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/samber/oops"
)

// parser is the singleton participle parser instance.
var parser *participle.Parser[Expr]

func init() {
	var err error
	parser, err = NewParser()
	if err != nil {
		panic(fmt.Sprintf("failed to build condition parser: %v", err))
	}
}

// NewParser builds the participle parser for condition expressions.
func NewParser() (*participle.Parser[Expr], error) {
	p, err := participle.Build[Expr](
		participle.Lexer(exprLexer),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, oops.In("roledsl").Wrapf(err, "building parser")
	}
	return p, nil
}

// Parse parses a condition expression into an AST. Returns a
// definition-time error with position info on failure.
func Parse(text string) (*Expr, error) {
	expr, err := parser.ParseString("", text)
	if err != nil {
		return nil, oops.In("roledsl").
			Code("PARSE_FAILED").
			With("expression", text).
			Wrap(err)
	}
	if err := validateExpr(expr); err != nil {
		return nil, oops.In("roledsl").
			With("expression", text).
			Wrap(err)
	}
	return expr, nil
}

func validateExpr(e *Expr) error {
	for _, and := range e.Or {
		for _, u := range and.And {
			if err := validateUnary(u); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateUnary(u *Unary) error {
	if u.Not != nil {
		return validateUnary(u.Not)
	}
	return validatePrimary(u.Primary)
}

func validatePrimary(p *Primary) error {
	switch {
	case p.Sub != nil:
		return validateExpr(p.Sub)
	case p.Comparison != nil:
		return validateComparison(p.Comparison)
	default:
		return nil
	}
}

// validateComparison enforces operator/operand pairing: "in" takes a
// bracketed literal list, "like" takes a string pattern, everything
// else takes a single operand.
func validateComparison(c *Comparison) error {
	switch c.Op {
	case "in":
		if len(c.List) == 0 {
			return oops.Code("INVALID_CONDITION").
				Errorf("%s: 'in' requires a literal list", c.Pos)
		}
	case "like":
		if c.Right == nil || c.Right.Lit == nil || c.Right.Lit.Str == nil {
			return oops.Code("INVALID_CONDITION").
				Errorf("%s: 'like' requires a string pattern", c.Pos)
		}
	default:
		if c.Right == nil {
			return oops.Code("INVALID_CONDITION").
				Errorf("%s: operator %q requires an operand", c.Pos, c.Op)
		}
	}
	return nil
}
