// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
	"github.com/toeirei/keyledger/internal/model"
)

// lookupBarcode resolves a scanned barcode or returns the translated alert.
func lookupBarcode(l *ledger.Ledger, barcode string) (model.Key, error) {
	if k, ok := l.KeyByBarcode(barcode); ok {
		return k, nil
	}
	return model.Key{}, fmt.Errorf("%s: %w", i18n.T("scan.not_found"), ledger.ErrNotFound)
}

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <barcode>",
		Short: "Look up a key by its barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := lookupBarcode(a.ledger, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, k.String())
			if k.Description != "" {
				fmt.Fprintln(out, "  "+k.Description)
			}
			if open, ok := a.ledger.OpenAssignmentForKey(k.ID); ok {
				fmt.Fprintln(out, "  "+i18n.T("scan.already_issued"))
				fmt.Fprintln(out, "  "+i18n.T("key.held_by", a.ledger.UserName(open.UserID), open.AssignedAt.Local().Format(timeLayout)))
				fmt.Fprintln(out, "  "+i18n.T("scan.return_hint", open.ID))
				return nil
			}
			fmt.Fprintln(out, "  "+i18n.T("key.status_available"))
			return nil
		},
	}
}

func newAssignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <barcode> <user-id>",
		Short: "Issue a key to an employee",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := lookupBarcode(a.ledger, args[0])
			if err != nil {
				return err
			}
			u, err := lookupUser(a.ledger, args[1])
			if err != nil {
				return err
			}
			notes, _ := cmd.Flags().GetString("notes")

			ctx, cancel := opContext(cmd)
			defer cancel()
			as, err := a.ledger.AssignKey(ctx, k.ID, u.ID, notes)
			if err != nil {
				if errors.Is(err, ledger.ErrConflict) {
					return errors.New(i18n.T("scan.already_issued"))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("assign.success", k.Name, u.Name, as.ID))
			return nil
		},
	}
	cmd.Flags().String("notes", "", "optional note stored with the assignment")
	return cmd
}

func newReturnCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "return [assignment-id]",
		Short: "Take a key back",
		Long: `Closes an open assignment. Pass the assignment id, or --barcode to
return whatever assignment is open for the scanned key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			barcode, _ := cmd.Flags().GetString("barcode")
			if (barcode == "") == (len(args) == 0) {
				return errors.New(i18n.T("return.error_usage"))
			}

			ctx, cancel := opContext(cmd)
			defer cancel()
			var (
				as  model.Assignment
				err error
			)
			if barcode != "" {
				if _, lerr := lookupBarcode(a.ledger, barcode); lerr != nil {
					return lerr
				}
				as, err = a.ledger.ReturnByBarcode(ctx, barcode)
			} else {
				as, err = a.ledger.ReturnKey(ctx, args[0])
			}
			if err != nil {
				if errors.Is(err, ledger.ErrNotFound) {
					return fmt.Errorf("%s: %w", i18n.T("return.error_not_open"), err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("return.success", a.ledger.KeyName(as.KeyID), a.ledger.UserName(as.UserID)))
			return nil
		},
	}
	cmd.Flags().String("barcode", "", "return the open assignment of this key")
	return cmd
}

func newActiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List keys that are currently out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			active := a.ledger.ActiveAssignments()
			if len(active) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("active.empty"))
				return nil
			}
			now := time.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, i18n.T("active.header"))
			for _, as := range active {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					as.ID, a.ledger.KeyName(as.KeyID), a.ledger.UserName(as.UserID),
					as.AssignedAt.Local().Format(timeLayout), as.Duration(now).Round(time.Minute))
			}
			return w.Flush()
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the custody history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f ledger.HistoryFilter
			f.KeyID, _ = cmd.Flags().GetString("key")
			f.UserID, _ = cmd.Flags().GetString("user")
			if f.KeyID != "" {
				// Accept a barcode as well; ids of deleted keys still filter.
				if k, err := resolveKey(a.ledger, f.KeyID); err == nil {
					f.KeyID = k.ID
				}
			}
			return printHistory(cmd.OutOrStdout(), a.ledger, a.ledger.History(f))
		},
	}
	cmd.Flags().String("key", "", "only this key (id or barcode)")
	cmd.Flags().String("user", "", "only this employee id")
	return cmd
}

func printHistory(out io.Writer, l *ledger.Ledger, history []model.Assignment) error {
	if len(history) == 0 {
		fmt.Fprintln(out, i18n.T("history.empty"))
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, i18n.T("history.header"))
	for _, as := range history {
		returned := i18n.T("history.still_out")
		if as.ReturnedAt != nil {
			returned = as.ReturnedAt.Local().Format(timeLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			as.ID, l.KeyName(as.KeyID), l.UserName(as.UserID),
			as.AssignedAt.Local().Format(timeLayout), returned, as.Notes)
	}
	return w.Flush()
}
