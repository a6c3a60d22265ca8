// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package main

import (
	"encoding/json"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rolecall/rolecall/pkg/authz"
	"github.com/rolecall/rolecall/pkg/rolefile"
)

// NewCheckCmd creates the check subcommand.
func NewCheckCmd() *cobra.Command {
	var (
		roleFiles  []string
		action     string
		userKind   string
		userAttrs  string
		targetKind string
		target     string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate one authorization request against role documents",
		Long: `Load role documents, then decide whether the given user may perform
the action on the target. Users and targets are described by a kind and a
JSON attribute object. Omitting --user checks with an absent user.

Prints "allow" or "deny". A denial is a normal outcome, not an error.`,
		Example: `  rolecall check --roles roles.yaml --action edit \
      --user-kind user --user '{"id":"u1","admin":true}' \
      --target-kind user --target '{"id":"u2"}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			files := append(cfg.Policy.Files, roleFiles...)
			if len(files) == 0 {
				return oops.Code("CONFIG_INVALID").
					Errorf("no role documents given (use --roles or policy.files)")
			}

			reg := authz.NewRegistry()
			if err := rolefile.LoadAll(reg, files); err != nil {
				return err
			}

			user, err := buildEntity(userKind, userAttrs)
			if err != nil {
				return oops.With("flag", "--user").Wrap(err)
			}
			tgt, err := buildEntity(targetKind, target)
			if err != nil {
				return oops.With("flag", "--target").Wrap(err)
			}

			allowed, err := authz.NewAuthorizer(reg).
				CanAs(cmd.Context(), user, authz.Action(action), tgt)
			if err != nil {
				return err
			}

			if allowed {
				cmd.Println("allow")
			} else {
				cmd.Println("deny")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roleFiles, "roles", nil, "role document files (repeatable)")
	cmd.Flags().StringVar(&action, "action", "", "action to check")
	cmd.Flags().StringVar(&userKind, "user-kind", "", "kind of the requesting user")
	cmd.Flags().StringVar(&userAttrs, "user", "", "user attributes as JSON (omit for absent user)")
	cmd.Flags().StringVar(&targetKind, "target-kind", "", "kind of the target")
	cmd.Flags().StringVar(&target, "target", "", "target attributes as JSON")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}

// buildEntity turns kind + JSON attrs flags into a Record. Both empty
// means no entity (nil).
func buildEntity(kind, attrsJSON string) (any, error) {
	if kind == "" && attrsJSON == "" {
		return nil, nil
	}
	attrs := map[string]any{}
	if attrsJSON != "" {
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			return nil, oops.Code("INVALID_ATTRS").Wrap(err)
		}
	}
	return authz.Record{Kind: authz.Kind(kind), Attrs: attrs}, nil
}
