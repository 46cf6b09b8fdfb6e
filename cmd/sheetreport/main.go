// Package main provides sheetreport, a headless companion to the sheetadmin TUI.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bekirdag/sheetadmin/internal/config"
	"github.com/bekirdag/sheetadmin/internal/export"
	"github.com/bekirdag/sheetadmin/internal/store"
	"github.com/bekirdag/sheetadmin/internal/trc"
	"github.com/bekirdag/sheetadmin/internal/viewmodel"
)

type globalFlags struct {
	configPath string
	host       string
	sheet      string
	token      string
	gotoURL    string
	stateDir   string
}

type app struct {
	flags  globalFlags
	stdin  io.Reader
	stdout io.Writer
	tf     viewmodel.TimeFormatter
	logger *log.Logger
}

func main() {
	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		tf:     viewmodel.NewTimeFormatter(),
		logger: log.New(os.Stderr, "sheetreport: ", 0),
	}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sheetreport",
		Short:         "Inspect and administer a hosted sheet from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "Path to config.yaml (default: user config dir)")
	pf.StringVar(&a.flags.host, "host", "", "Host API base URL")
	pf.StringVar(&a.flags.sheet, "sheet", "", "Sheet id")
	pf.StringVar(&a.flags.token, "token", "", "Bearer token for the host API")
	pf.StringVar(&a.flags.gotoURL, "goto-url", "", "Base URL used to open companion plugins")
	pf.StringVar(&a.flags.stateDir, "state-dir", "", "Directory for the recent-sheets database (default: user config dir)")

	root.AddCommand(
		a.showCmd(),
		a.refreshCmd(),
		a.deleteColumnCmd(),
		a.exportCmd(),
		a.recentCmd(),
		a.actionsCmd(),
	)
	return root
}

func (a *app) settings() (config.Config, error) {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.Override(a.flags.host, a.flags.sheet, a.flags.token, a.flags.gotoURL)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (a *app) openStore() *store.Store {
	dir := a.flags.stateDir
	if dir == "" {
		dir = config.Dir()
	}
	db, err := store.Open(dir)
	if err != nil {
		a.logger.Printf("warning: recent sheets unavailable: %v", err)
		return nil
	}
	return db
}

// load fetches the current view state and records the sheet as recently opened.
func (a *app) load(ctx context.Context, cfg config.Config, db *store.Store) (viewmodel.State, error) {
	sheets, _ := trc.Connect(cfg)
	state, err := viewmodel.Load(ctx, sheets, a.tf)
	if err != nil {
		return viewmodel.State{}, err
	}
	if err := db.TouchSheet(store.RecentSheet{Host: cfg.Host, SheetID: cfg.Sheet, Name: state.Name, Version: state.LatestVersion}); err != nil {
		a.logger.Printf("warning: recording recent sheet: %v", err)
	}
	return state, nil
}

func (a *app) record(db *store.Store, sheetID, action, column string, actionErr error) {
	if err := db.RecordAction(sheetID, action, column, actionErr); err != nil {
		a.logger.Printf("warning: recording action: %v", err)
	}
}

func (a *app) showCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the sheet summary, columns, sync status and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.settings()
			if err != nil {
				return err
			}
			db := a.openStore()
			defer db.Close()

			state, err := a.load(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			if asJSON {
				return writeStateJSON(a.stdout, state)
			}
			return writeStateText(a.stdout, state)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	return cmd
}

func (a *app) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Ask the host to re-pull the sheet's source data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.settings()
			if err != nil {
				return err
			}
			db := a.openStore()
			defer db.Close()

			_, admin := trc.Connect(cfg)
			err = viewmodel.Refresh(cmd.Context(), admin)
			a.record(db, cfg.Sheet, "refresh", "", err)
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
			fmt.Fprintln(a.stdout, "Refresh requested.")
			return nil
		},
	}
}

func (a *app) deleteColumnCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-column NAME",
		Short: "Delete a question or derived column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.settings()
			if err != nil {
				return err
			}
			db := a.openStore()
			defer db.Close()

			state, err := a.load(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			row, ok := state.FindColumn(args[0])
			if !ok {
				return fmt.Errorf("column %q not found in sheet %s", args[0], cfg.Sheet)
			}

			var confirm viewmodel.Confirmer = viewmodel.Confirmed
			if !yes {
				confirm = promptConfirmer(a.stdin, a.stdout)
			}
			_, admin := trc.Connect(cfg)
			err = viewmodel.DeleteColumn(cmd.Context(), admin, confirm, row)
			switch {
			case errors.Is(err, viewmodel.ErrDeclined):
				fmt.Fprintln(a.stdout, "Delete cancelled.")
				return nil
			case errors.Is(err, viewmodel.ErrNotDeletable):
				return err
			}
			a.record(db, cfg.Sheet, "delete-column", row.Name, err)
			if err != nil {
				return fmt.Errorf("delete column %s: %w", row.Name, err)
			}
			fmt.Fprintf(a.stdout, "Deleted column %s.\n", row.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Do not ask for confirmation")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the view to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(out) == "" {
				return errors.New("--out is required")
			}
			cfg, err := a.settings()
			if err != nil {
				return err
			}
			db := a.openStore()
			defer db.Close()

			state, err := a.load(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			if err := export.SaveAs(out, state); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote %s (%d columns, %d history entries).\n", out, len(state.Columns), len(state.History))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output .xlsx path")
	return cmd
}

func (a *app) recentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db := a.openStore()
			defer db.Close()
			sheets, err := db.RecentSheets(limit)
			if err != nil {
				return err
			}
			return writeRecent(a.stdout, sheets, a.tf)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sheets")
	return cmd
}

func (a *app) actionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List admin actions recorded for the sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.flags.configPath)
			if err != nil {
				return err
			}
			cfg.Override(a.flags.host, a.flags.sheet, a.flags.token, a.flags.gotoURL)
			if strings.TrimSpace(cfg.Sheet) == "" {
				return errors.New("missing required settings: sheet")
			}
			db := a.openStore()
			defer db.Close()
			records, err := db.Actions(cfg.Sheet, limit)
			if err != nil {
				return err
			}
			return writeActions(a.stdout, records, a.tf)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of actions")
	return cmd
}

func promptConfirmer(in io.Reader, out io.Writer) viewmodel.Confirmer {
	reader := bufio.NewReader(in)
	return viewmodel.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}
