package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ilkoid/gomi-ai/internal/ui"
	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/tui"
	"github.com/ilkoid/gomi-ai/pkg/utils"
)

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Start the interactive TUI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd.Context())
		},
	}
}

// runUI собирает пайплайн и блокируется в Bubble Tea программе.
func runUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	emitter := events.NewChanEmitter(64)
	defer func() {
		// Сначала отмена: Emit, ждущий места в буфере, освобождает канал
		cancel()
		emitter.Close()
	}()

	app, err := buildComponents(emitter)
	if err != nil {
		return err
	}
	serveMetrics(ctx, app.metrics)

	utils.Info("Starting TUI", "api", app.client.BaseURL(), "log", utils.LogPath())
	return ui.Run(ctx, ui.Config{
		Orchestrator: app.orch,
		Source:       app.source,
		Health:       app.client,
		Events:       emitter.Subscribe(),
		Colors:       tui.GetColorScheme(cfg.App.ColorScheme),
		HealthPoll:   time.Duration(cfg.App.HealthPollMs) * time.Millisecond,
		Title:        "gomi",
		Debug:        debug || cfg.App.Debug,
	})
}
