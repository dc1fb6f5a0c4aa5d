// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toeirei/keyledger/internal/logging"
)

func newDebugCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "debug",
		Short:       "Dump debug information about config, env and flags",
		Args:        cobra.NoArgs,
		Annotations: configOnly,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "--- KEYLEDGER DEBUG ---")
			used := a.configUsed
			if used == "" {
				used = "(none, defaults)"
			}
			fmt.Fprintf(out, "Config file used: %s\n", used)

			// Never print the password hash.
			shown := a.cfg
			if shown.Admin.PasswordHash != "" {
				shown.Admin.PasswordHash = "<set>"
			}
			b, err := yaml.Marshal(shown)
			if err != nil {
				logging.Errorf("could not marshal settings: %v", err)
			} else {
				fmt.Fprintln(out, "-- settings --")
				fmt.Fprint(out, string(b))
			}

			fmt.Fprintln(out, "-- flags --")
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				fmt.Fprintf(out, "%s = %s\n", f.Name, f.Value.String())
			})

			fmt.Fprintln(out, "-- environment (KEYLEDGER_*) --")
			for _, e := range os.Environ() {
				if strings.HasPrefix(e, "KEYLEDGER_") {
					if strings.HasPrefix(e, "KEYLEDGER_ADMIN_PASSWORD_HASH=") {
						e = "KEYLEDGER_ADMIN_PASSWORD_HASH=<set>"
					}
					fmt.Fprintln(out, e)
				}
			}
			fmt.Fprintf(out, "PWD=%s\n", os.Getenv("PWD"))
			fmt.Fprintln(out, "--- END DEBUG ---")
		},
	}
}
