package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"evodash/internal/api"
	"evodash/internal/config"
	"evodash/internal/logging"
	"evodash/internal/store"
	"evodash/internal/token"
	"evodash/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logger.Sync()

	slot := token.New(cfg.Auth.TokenPath)
	if err := slot.Load(); err != nil {
		logger.Warn("token load failed", zap.Error(err))
	}

	client := api.New(cfg.Server.BaseURL, slot,
		api.WithTimeout(time.Duration(cfg.Server.TimeoutSeconds)*time.Second),
		api.WithLogger(logger),
	)

	// stores
	session := store.NewSessionStore(client, slot, logger)
	runs := store.NewRunStore(client, logger)
	programs := store.NewProgramCatalog(client, logger)
	toasts := store.NewNotificationQueue(logger)
	theme := store.NewThemeStore(store.Theme(cfg.UI.Theme))

	app := tui.New(ctx, cfg, client, tui.Stores{
		Session:  session,
		Runs:     runs,
		Programs: programs,
		Toasts:   toasts,
		Theme:    theme,
	}, slot.Get() != "", logger)

	p := tea.NewProgram(app, tea.WithAltScreen())

	// Handlers fire only once the program is running, so wiring them to p
	// after construction is safe.
	client.SetUnauthorizedHandler(func() {
		session.ForceLogout()
		p.Send(tui.SessionExpiredMsg{})
	})
	toasts.SetListener(func() {
		p.Send(tui.ToastsChangedMsg{})
	})

	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}
