// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

// Package rolefile loads declarative YAML role documents and compiles
// them into authz roles. Detect and condition clauses are expressions in
// the pkg/roledsl language; every malformed document fails at definition
// time, never during a decision.
package rolefile

import (
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/rolecall/rolecall/pkg/authz"
	"github.com/rolecall/rolecall/pkg/roledsl"
)

// Document is one role document: kind hierarchy edges plus role
// definitions.
type Document struct {
	// Kinds maps a child kind to its parent kind.
	Kinds map[string]string `yaml:"kinds,omitempty" json:"kinds,omitempty"`
	Roles []RoleSpec        `yaml:"roles" json:"roles"`
}

// RoleSpec declares one role. An absent detect clause means the role
// matches every user/target pair; a role without grants is valid and
// grants nothing.
type RoleSpec struct {
	Name   string      `yaml:"name" json:"name"`
	Detect string      `yaml:"detect,omitempty" json:"detect,omitempty"`
	Grants []GrantSpec `yaml:"grants,omitempty" json:"grants,omitempty"`
}

// GrantSpec declares a permission bucket: actions on one target kind,
// optionally gated by a condition. "*" as the kind matches every target.
type GrantSpec struct {
	Actions []string `yaml:"actions" json:"actions"`
	On      string   `yaml:"on" json:"on"`
	When    string   `yaml:"when,omitempty" json:"when,omitempty"`
}

// Parse validates data against the document schema and decodes it.
func Parse(data []byte) (*Document, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oops.In("rolefile").
			Code("INVALID_YAML").
			Wrap(err)
	}
	return &doc, nil
}

// Load reads and parses a role document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.In("rolefile").
			Code("READ_FAILED").
			With("path", path).
			Wrap(err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return doc, nil
}

// Apply compiles the document and registers its kinds and roles. Role
// compilation happens first, so a malformed role leaves the registry
// untouched; an invalid kind edge fails the apply before any role is
// added.
func (d *Document) Apply(reg *authz.Registry) error {
	roles, err := d.Compile()
	if err != nil {
		return err
	}
	for child, parent := range d.Kinds {
		if err := reg.Kinds().Register(authz.Kind(child), authz.Kind(parent)); err != nil {
			return err
		}
	}
	reg.Add(roles...)
	return nil
}

// Compile builds the document's roles without registering them.
func (d *Document) Compile() ([]*authz.Role, error) {
	roles := make([]*authz.Role, 0, len(d.Roles))
	for _, spec := range d.Roles {
		role, err := compileRole(spec)
		if err != nil {
			return nil, oops.With("role", spec.Name).Wrap(err)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func compileRole(spec RoleSpec) (*authz.Role, error) {
	b := authz.NewRoleBuilder(spec.Name)

	if spec.Detect != "" {
		compiled, err := roledsl.Compile(spec.Detect)
		if err != nil {
			return nil, err
		}
		b.Detect(compiled.Predicate())
	}

	for _, g := range spec.Grants {
		var condition authz.Predicate
		if g.When != "" {
			compiled, err := roledsl.Compile(g.When)
			if err != nil {
				return nil, err
			}
			condition = compiled.Predicate()
		}

		actions := make([]authz.Action, len(g.Actions))
		for i, a := range g.Actions {
			actions[i] = authz.Action(a)
		}
		b.CanWhen(authz.Kind(g.On), condition, actions...)
	}

	return b.Build()
}

// LoadAll loads several role documents into the registry in order.
func LoadAll(reg *authz.Registry, paths []string) error {
	for _, path := range paths {
		doc, err := Load(path)
		if err != nil {
			return err
		}
		if err := doc.Apply(reg); err != nil {
			return oops.With("path", path).Wrap(err)
		}
	}
	return nil
}
