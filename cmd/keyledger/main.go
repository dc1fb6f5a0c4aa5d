// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Keyledger using Cobra. It
// defines the root command, loads configuration, opens the store and wires
// the ledger and the session gate for every subcommand.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/keyledger/internal/config"
	"github.com/toeirei/keyledger/internal/db"
	"github.com/toeirei/keyledger/internal/i18n"
	"github.com/toeirei/keyledger/internal/ledger"
	"github.com/toeirei/keyledger/internal/logging"
	"github.com/toeirei/keyledger/internal/session"
	"github.com/toeirei/keyledger/internal/tui"
)

// opTimeout bounds each store round trip issued by a command.
const opTimeout = 30 * time.Second

// publicAnnotation marks commands that run without a logged-in session.
const publicAnnotation = "keyledger/public"

var public = map[string]string{publicAnnotation: "true"}

// main is the entry point of the application.
func main() {
	if err := execute(context.Background(), os.Args[1:]); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}

func execute(ctx context.Context, args []string) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	defer a.close()
	return root.ExecuteContext(ctx)
}

// app carries the services shared by all commands. It is populated by the
// root command's PersistentPreRunE.
type app struct {
	cfg        config.Config
	configUsed string
	store      db.Store
	ledger     *ledger.Ledger
	gate       *session.Gate

	// runTUI starts the interactive UI; tests replace it.
	runTUI func(ctx context.Context, a *app) error
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
}

// opContext returns a context bounded by opTimeout.
func opContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, opTimeout)
}

// newRootCmd creates and configures a new root cobra command.
// Each call returns a fresh command tree so tests can run commands in
// isolation.
func newRootCmd(a *app) *cobra.Command {
	if a.runTUI == nil {
		a.runTUI = func(ctx context.Context, a *app) error {
			return tui.Run(ctx, a.ledger, a.gate)
		}
	}

	cmd := &cobra.Command{
		Use:   "keyledger",
		Short: "Keyledger tracks who holds which physical key.",
		Long: `Keyledger keeps a ledger of physical keys and the employees they are
handed to. Scan (or type) a key's barcode to issue it, scan it again to take it
back, and review who has held it.

Running without a subcommand launches the interactive TUI.`,
		Annotations:   public,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if isCobraBuiltin(cmd) {
				return nil
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			if cmd.Annotations[publicAnnotation] == "true" {
				return nil
			}
			if !a.gate.IsAuthenticated() {
				return errors.New(i18n.T("cli.login_required"))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetOutput(io.Discard)
			defer logging.SetOutput(os.Stderr)
			return a.runTUI(cmd.Context(), a)
		},
	}

	cmd.Version = versionString()

	cmd.PersistentFlags().String("config", "", "config file")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("language", "en", `Interface language ("en", "ru")`)
	cmd.PersistentFlags().String("database.type", "sqlite", "Database type (sqlite, postgres, mysql, redis, memory)")
	cmd.PersistentFlags().String("database.dsn", "./keyledger.db", "Database connection string (DSN)")

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newKeyCmd(a),
		newUserCmd(a),
		newScanCmd(a),
		newAssignCmd(a),
		newReturnCmd(a),
		newActiveCmd(a),
		newHistoryCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newDoctorCmd(a),
		newDBCmd(a),
		newConfigCmd(a),
		newDebugCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration and opens the services. Errors other than a
// missing config file abort the command.
func (a *app) setup(cmd *cobra.Command) error {
	explicit, err := configPathFromFlags(cmd)
	if err != nil {
		return err
	}

	a.cfg, err = config.LoadConfig[config.Config](cmd, config.Defaults(), explicit)
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		// First run: persist the defaults so the file is discoverable.
		if path, werr := config.WriteConfigFile(&a.cfg, false); werr != nil {
			logging.Warnf("could not write default config file: %v", werr)
		} else {
			a.configUsed = path
			logging.Infof("wrote default config to %s", path)
		}
	case err != nil:
		return fmt.Errorf("error loading config: %w", err)
	}
	if explicit != nil {
		a.configUsed = *explicit
	}

	logging.SetDebug(a.cfg.Debug)
	i18n.Init(a.cfg.Language)

	// Commands that only inspect or write configuration never touch the store.
	if cmd.Annotations["keyledger/no-store"] == "true" {
		return nil
	}

	store, err := db.NewStoreFromDSN(a.cfg.Database.Type, a.cfg.Database.Dsn)
	if err != nil {
		return errors.New(i18n.T("cli.error_init_db", err))
	}
	a.store = store

	cred, err := session.NewCredential(a.cfg.Admin.Login, a.cfg.Admin.PasswordHash)
	if err != nil {
		return err
	}
	a.ledger = ledger.New(store, ledger.WithSeedDemoData(a.cfg.SeedDemoData))
	a.gate = session.NewGate(store, cred)

	ctx, cancel := opContext(cmd)
	defer cancel()
	if err := a.gate.Hydrate(ctx); err != nil {
		return err
	}
	if err := a.ledger.Hydrate(ctx); err != nil {
		return errors.New(i18n.T("cli.error_hydrate", err))
	}
	return nil
}

func configPathFromFlags(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// isCobraBuiltin reports whether cmd is one of cobra's generated help or
// completion commands, which never touch the store.
func isCobraBuiltin(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}
