package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bekirdag/sheetadmin/internal/config"
	"github.com/bekirdag/sheetadmin/internal/store"
	"github.com/bekirdag/sheetadmin/internal/trc"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default: user config dir)")
	host := flag.String("host", "", "Host API base URL")
	sheetID := flag.String("sheet", "", "Sheet id")
	token := flag.String("token", "", "Bearer token for the host API")
	gotoURL := flag.String("goto-url", "", "Base URL used to open companion plugins")
	theme := flag.String("theme", "", "Markdown rendering theme: auto, light, or dark")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	cfg.Override(*host, *sheetID, *token, *gotoURL)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	if err := run(cfg, *theme); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, theme string) error {
	configDir := resolveConfigDir()
	ui, uiPath := loadUIConfig(configDir)
	if theme != "" {
		ui.Theme = parseTheme(theme).String()
	}

	db, err := store.Open(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: recent sheets unavailable:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetry := newTelemetryLogger(filepath.Join(configDir, "telemetry.jsonl"), newTelemetrySessionID(), resolveTelemetryUserID())
	defer telemetry.Close()

	sheets, admin := trc.Connect(cfg)
	m := newModel(modelOptions{
		ctx:          ctx,
		host:         cfg.Host,
		sheetID:      cfg.Sheet,
		gotoURL:      cfg.GotoURL,
		source:       sheets,
		admin:        admin,
		store:        db,
		telemetry:    telemetry,
		pollInterval: cfg.PollInterval,
		ui:           ui,
		uiPath:       uiPath,
	})

	_, err = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	return err
}
