// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rolecall/rolecall/pkg/authz"
	"github.com/rolecall/rolecall/pkg/rolefile"
)

// NewLintCmd creates the lint subcommand.
func NewLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [files...]",
		Short: "Validate role documents",
		Long: `Validate role documents against the document schema and compile every
detect/when expression. Reports the first error per file; exits non-zero
if any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}

			failed := 0
			for _, path := range args {
				if err := lintFile(path); err != nil {
					failed++
					cmd.PrintErrf("%s: %v\n", path, err)
					continue
				}
				cmd.Printf("%s: ok\n", path)
			}
			if failed > 0 {
				cmd.SilenceUsage = true
				return oops.Code("LINT_FAILED").
					With("files", failed).
					Errorf("%d role document(s) failed validation", failed)
			}
			return nil
		},
	}
	return cmd
}

// lintFile parses and compiles one document, including kind hierarchy
// registration, without touching any shared registry.
func lintFile(path string) error {
	doc, err := rolefile.Load(path)
	if err != nil {
		return err
	}
	return doc.Apply(authz.NewRegistry())
}
