// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
	"github.com/toeirei/keyledger/internal/model"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage employees",
	}
	cmd.AddCommand(newUserAddCmd(a), newUserListCmd(a), newUserEditCmd(a), newUserDeleteCmd(a))
	return cmd
}

func addUserFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("email", "", "e-mail address")
	cmd.Flags().String("department", "", "department")
}

func applyUserFlags(cmd *cobra.Command, in *model.UserInput) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("name", &in.Name)
	set("email", &in.Email)
	set("department", &in.Department)
}

func lookupUser(l *ledger.Ledger, id string) (model.User, error) {
	if u, ok := l.User(id); ok {
		return u, nil
	}
	return model.User{}, fmt.Errorf("%s: %w", i18n.T("user.not_found", id), ledger.ErrNotFound)
}

func newUserAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in model.UserInput
			applyUserFlags(cmd, &in)
			if strings.TrimSpace(in.Name) == "" {
				return errors.New(i18n.T("user.error_required"))
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			u, err := a.ledger.AddUser(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("user.added", u.Name, u.ID))
			return nil
		},
	}
	addUserFlags(cmd)
	return cmd
}

func newUserListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List employees",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := a.ledger.Users()
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("user.list_empty"))
				return nil
			}
			held := make(map[string]int)
			for _, as := range a.ledger.ActiveAssignments() {
				held[as.UserID]++
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, i18n.T("user.list_header"))
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, u.Department, held[u.ID])
			}
			return w.Flush()
		},
	}
}

func newUserEditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an employee's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := lookupUser(a.ledger, args[0])
			if err != nil {
				return err
			}
			in := model.UserInput{Name: u.Name, Email: u.Email, Department: u.Department}
			applyUserFlags(cmd, &in)
			if strings.TrimSpace(in.Name) == "" {
				return errors.New(i18n.T("user.error_required"))
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			if _, err := a.ledger.UpdateUser(ctx, u.ID, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("user.updated", u.ID))
			return nil
		},
	}
	addUserFlags(cmd)
	return cmd
}

func newUserDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an employee who holds no keys",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := lookupUser(a.ledger, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			if err := a.ledger.DeleteUser(ctx, u.ID); err != nil {
				if errors.Is(err, ledger.ErrConflict) {
					return errors.New(i18n.T("user.error_delete_holding", u.Name))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("user.deleted", u.Name))
			return nil
		},
	}
}
