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

const timeLayout = "2006-01-02 15:04"

// resolveKey finds a key by id first and by barcode second.
func resolveKey(l *ledger.Ledger, ref string) (model.Key, error) {
	if k, ok := l.Key(ref); ok {
		return k, nil
	}
	if k, ok := l.KeyByBarcode(ref); ok {
		return k, nil
	}
	return model.Key{}, fmt.Errorf("%s: %w", i18n.T("key.not_found", ref), ledger.ErrNotFound)
}

func availability(k model.Key) string {
	if k.IsAvailable {
		return i18n.T("key.status_available")
	}
	return i18n.T("key.status_assigned")
}

func newKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the key catalog",
	}
	cmd.AddCommand(newKeyAddCmd(a), newKeyListCmd(a), newKeyShowCmd(a), newKeyEditCmd(a), newKeyDeleteCmd(a))
	return cmd
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().String("barcode", "", "barcode printed on the key tag")
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("description", "", "free-form description")
	cmd.Flags().String("location", "", "where the key is kept")
}

// applyKeyFlags overwrites the fields of in whose flags were set.
func applyKeyFlags(cmd *cobra.Command, in *model.KeyInput) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("barcode", &in.Barcode)
	set("name", &in.Name)
	set("description", &in.Description)
	set("location", &in.Location)
}

func newKeyAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in model.KeyInput
			applyKeyFlags(cmd, &in)
			in.Barcode = strings.TrimSpace(in.Barcode)
			if in.Barcode == "" || strings.TrimSpace(in.Name) == "" {
				return errors.New(i18n.T("key.error_required"))
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			k, err := a.ledger.AddKey(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("key.added", k.Name, k.ID))
			return nil
		},
	}
	addKeyFlags(cmd)
	return cmd
}

func newKeyListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all keys",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := a.ledger.Keys()
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("key.list_empty"))
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, i18n.T("key.list_header"))
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", k.ID, k.Barcode, k.Name, k.Location, availability(k))
			}
			return w.Flush()
		},
	}
}

func newKeyShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|barcode>",
		Short: "Show a key and its custody history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := resolveKey(a.ledger, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", k)
			if k.Description != "" {
				fmt.Fprintf(out, "  %s\n", k.Description)
			}
			fmt.Fprintf(out, "  %s\n", availability(k))
			if open, ok := a.ledger.OpenAssignmentForKey(k.ID); ok {
				fmt.Fprintln(out, "  "+i18n.T("key.held_by", a.ledger.UserName(open.UserID), open.AssignedAt.Local().Format(timeLayout)))
			}
			return printHistory(out, a.ledger, a.ledger.History(ledger.HistoryFilter{KeyID: k.ID}))
		},
	}
}

func newKeyEditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id|barcode>",
		Short: "Change a key's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := resolveKey(a.ledger, args[0])
			if err != nil {
				return err
			}
			in := model.KeyInput{Barcode: k.Barcode, Name: k.Name, Description: k.Description, Location: k.Location}
			applyKeyFlags(cmd, &in)
			if strings.TrimSpace(in.Barcode) == "" || strings.TrimSpace(in.Name) == "" {
				return errors.New(i18n.T("key.error_required"))
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			if _, err := a.ledger.UpdateKey(ctx, k.ID, in); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("key.updated", k.ID))
			return nil
		},
	}
	addKeyFlags(cmd)
	return cmd
}

func newKeyDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id|barcode>",
		Aliases: []string{"rm"},
		Short:   "Delete a key that is not assigned",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := resolveKey(a.ledger, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opContext(cmd)
			defer cancel()
			if err := a.ledger.DeleteKey(ctx, k.ID); err != nil {
				if errors.Is(err, ledger.ErrConflict) {
					return errors.New(i18n.T("key.error_delete_assigned", k.Name))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("key.deleted", k.Name))
			return nil
		},
	}
}
