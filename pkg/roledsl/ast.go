// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

// Package roledsl implements the condition expression language used by
// role documents. Expressions evaluate over the attributes of a user
// and a target and compile into authz predicates.
//
// Examples:
//
//	user.admin == true
//	user.id == target.owner_id
//	target.state in ["draft", "review"] && !has(target.locked_by)
//	target.ref like "invoice:*"
package roledsl

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer defines the token types for condition expressions. The
// multi-character operators must be listed before their one-character
// prefixes.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Number", Pattern: `[-+]?\d+(\.\d+)?`},
	{Name: "OpLe", Pattern: `<=`},
	{Name: "OpGe", Pattern: `>=`},
	{Name: "OpEq", Pattern: `==`},
	{Name: "OpNe", Pattern: `!=`},
	{Name: "OpAnd", Pattern: `&&`},
	{Name: "OpOr", Pattern: `\|\|`},
	{Name: "OpLt", Pattern: `<`},
	{Name: "OpGt", Pattern: `>`},
	{Name: "Bang", Pattern: `!`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Punct", Pattern: `[()\[\],]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Expr is a disjunction of conjunctions: a || b || c.
type Expr struct {
	Pos lexer.Position `parser:""`
	Or  []*AndExpr     `parser:"@@ ( OpOr @@ )*"`
}

// AndExpr is a conjunction: a && b && c.
type AndExpr struct {
	Pos lexer.Position `parser:""`
	And []*Unary       `parser:"@@ ( OpAnd @@ )*"`
}

// Unary is an optionally negated primary.
type Unary struct {
	Pos     lexer.Position `parser:""`
	Not     *Unary         `parser:"  Bang @@"`
	Primary *Primary       `parser:"| @@"`
}

// Primary is a parenthesized subexpression, an attribute-existence
// check, a boolean literal, or a comparison.
type Primary struct {
	Pos        lexer.Position `parser:""`
	Sub        *Expr          `parser:"  '(' @@ ')'"`
	Has        *Path          `parser:"| 'has' '(' @@ ')'"`
	Bool       *string        `parser:"| @('true' | 'false')"`
	Comparison *Comparison    `parser:"| @@"`
}

// Comparison is "path op operand", "path like pattern", or
// "path in [literals]". The in-list form parses into List; every other
// operator parses into Right. Post-parse validation enforces the pairing.
type Comparison struct {
	Pos   lexer.Position `parser:""`
	Left  *Path          `parser:"@@"`
	Op    string         `parser:"@(OpEq | OpNe | OpLe | OpGe | OpLt | OpGt | 'like' | 'in')"`
	List  []*Literal     `parser:"( '[' @@ ( ',' @@ )* ']'"`
	Right *Operand       `parser:"| @@ )"`
}

// Path is an attribute reference rooted at the user or the target,
// e.g. target.owner.id.
type Path struct {
	Pos  lexer.Position `parser:""`
	Root string         `parser:"@('user' | 'target')"`
	Segs []string       `parser:"( Dot @Ident )+"`
}

// String renders the path in source form.
func (p *Path) String() string {
	return p.Root + "." + strings.Join(p.Segs, ".")
}

// Operand is the right-hand side of a comparison: another attribute
// path or a literal.
type Operand struct {
	Pos  lexer.Position `parser:""`
	Path *Path          `parser:"  @@"`
	Lit  *Literal       `parser:"| @@"`
}

// Literal is a string, number, or boolean constant.
type Literal struct {
	Pos   lexer.Position `parser:""`
	Str   *string        `parser:"  @String"`
	Num   *float64       `parser:"| @Number"`
	True  bool           `parser:"| @'true'"`
	False bool           `parser:"| @'false'"`
}

// value returns the literal as a Go value.
func (l *Literal) value() any {
	switch {
	case l.Str != nil:
		return *l.Str
	case l.Num != nil:
		return *l.Num
	case l.True:
		return true
	default:
		return false
	}
}
