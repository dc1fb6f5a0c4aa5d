// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/keyledger/internal/i18n"
	"golang.org/x/term"
)

// readPassword reads a password without echo when stdin is a terminal and
// falls back to a plain line read otherwise.
var readPassword = func(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "login [username]",
		Short:       "Log in as the operator",
		Args:        cobra.MaximumNArgs(1),
		Annotations: public,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			username := a.cfg.Admin.Login
			if len(args) == 1 {
				username = args[0]
			}
			if username == "" {
				username = "admin"
			}

			password, _ := cmd.Flags().GetString("password")
			if !cmd.Flags().Changed("password") {
				fmt.Fprint(out, i18n.T("login.password_prompt"))
				p, err := readPassword(cmd.InOrStdin())
				fmt.Fprintln(out)
				if err != nil {
					return fmt.Errorf("could not read password: %w", err)
				}
				password = p
			}

			ctx, cancel := opContext(cmd)
			defer cancel()
			ok, err := a.gate.Login(ctx, username, password)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New(i18n.T("login.invalid_credentials"))
			}
			fmt.Fprintln(out, i18n.T("login.success", username))
			return nil
		},
	}
	cmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "End the operator session",
		Args:        cobra.NoArgs,
		Annotations: public,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opContext(cmd)
			defer cancel()
			if err := a.gate.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("logout.success"))
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the current session",
		Args:        cobra.NoArgs,
		Annotations: public,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.gate.Current()
			if !s.IsAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("whoami.anonymous"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("whoami.logged_in", s.Login, s.Since.Local().Format(timeLayout)))
			return nil
		},
	}
}
