// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/keyledger/buildvars"
	"github.com/toeirei/keyledger/internal/backup"
	"github.com/toeirei/keyledger/internal/config"
	"github.com/toeirei/keyledger/internal/db"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/session"
)

// configOnly marks commands that need the configuration but no store.
var configOnly = map[string]string{publicAnnotation: "true", "keyledger/no-store": "true"}

func versionString() string {
	return fmt.Sprintf("%s (commit %s)", buildvars.VersionOrDefault("dev"), buildvars.CommitOrDefault("unknown"))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number of Keyledger",
		Args:        cobra.NoArgs,
		Annotations: configOnly,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Keyledger %s\n", versionString())
			if buildvars.BuildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildvars.BuildDate)
			}
		},
	}
}

// promptForConfirmation prints prompt and reads one answer line.
func promptForConfirmation(in io.Reader, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(strings.ToLower(answer))
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Back up the ledger to a compressed file",
		Long: `Exports all keys, employees and assignments into a Zstandard-compressed
JSON file. Without an argument the file is named keyledger-backup-<date>.json.zst.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			filename := backup.DefaultFilename(time.Now())
			if len(args) == 1 {
				filename = backup.WithExtension(args[0])
			}
			fmt.Fprintln(out, i18n.T("backup.cli_starting"))
			data, err := backup.WriteFile(filename, a.ledger)
			if err != nil {
				return errors.New(i18n.T("backup.cli_error_write", err))
			}
			fmt.Fprintln(out, i18n.T("backup.cli_success", filename, len(data.Keys), len(data.Users), len(data.Assignments)))
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the ledger with the contents of a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				answer := promptForConfirmation(cmd.InOrStdin(), out, i18n.T("restore.cli_confirm"))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, i18n.T("restore.cli_aborted"))
					return nil
				}
			}
			fmt.Fprintln(out, i18n.T("restore.cli_starting", args[0]))
			ctx, cancel := opContext(cmd)
			defer cancel()
			data, err := backup.RestoreFile(ctx, args[0], a.ledger)
			if err != nil {
				return errors.New(i18n.T("restore.cli_error", err))
			}
			fmt.Fprintln(out, i18n.T("restore.cli_success", len(data.Keys), len(data.Users), len(data.Assignments)))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newDoctorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the ledger for inconsistencies",
		Long: `Verifies that every key's availability matches its open assignments and
that the history only references existing records. With --repair, key
availability is re-derived from the history and saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			violations := a.ledger.Verify()
			if len(violations) == 0 {
				fmt.Fprintln(out, i18n.T("doctor.ok"))
				return nil
			}
			critical := 0
			for _, v := range violations {
				fmt.Fprintln(out, v.String())
				if v.IsCritical() {
					critical++
				}
			}
			if repair, _ := cmd.Flags().GetBool("repair"); repair {
				ctx, cancel := opContext(cmd)
				defer cancel()
				fixed, err := a.ledger.Repair(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, i18n.T("doctor.repaired", fixed))
				return nil
			}
			if critical > 0 {
				return errors.New(i18n.T("doctor.critical", critical))
			}
			return nil
		},
	}
	cmd.Flags().Bool("repair", false, "fix key availability from the assignment history")
	return cmd
}

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "maintain",
		Short: "Run engine-specific maintenance (VACUUM, ANALYZE, OPTIMIZE)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opContext(cmd)
			defer cancel()
			if err := db.RunDBMaintenance(ctx, a.cfg.Database.Type, a.cfg.Database.Dsn); err != nil {
				return fmt.Errorf("maintenance failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Maintenance completed successfully")
			return nil
		},
	})
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage the configuration file",
		Annotations: configOnly,
	}

	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the current configuration to keyledger.yaml",
		Args:        cobra.NoArgs,
		Annotations: configOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetBool("system")
			path, err := config.WriteConfigFile(&a.cfg, system)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", path))
			return nil
		},
	}
	initCmd.Flags().Bool("system", false, "write the system-wide file instead of the user file")

	hashCmd := &cobra.Command{
		Use:         "hash-password",
		Short:       "Print a bcrypt hash for admin.password_hash",
		Args:        cobra.NoArgs,
		Annotations: configOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, i18n.T("login.password_prompt"))
			p, err := readPassword(cmd.InOrStdin())
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			h, err := session.HashPassword(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, h)
			return nil
		},
	}

	cmd.AddCommand(initCmd, hashCmd)
	return cmd
}
