package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the classification service is up and the model is loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildComponents(events.NopEmitter{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			status, err := app.client.Health(cmd.Context())
			if err != nil {
				opErr := gomi.AsOperationError(err)
				fmt.Fprintf(out, "✗ %s: %s\n", app.client.BaseURL(), opErr.Localized(lang))
				return fmt.Errorf("service is unavailable (%s)", opErr.Kind)
			}

			fmt.Fprintf(out, "URL:          %s\n", app.client.BaseURL())
			fmt.Fprintf(out, "Status:       %s\n", status.Status)
			fmt.Fprintf(out, "App:          %s %s\n", status.AppName, status.Version)
			fmt.Fprintf(out, "Model loaded: %t\n", status.ModelLoaded)
			if status.Timestamp != "" {
				fmt.Fprintf(out, "Timestamp:    %s\n", status.Timestamp)
			}

			if !status.IsHealthy() {
				return fmt.Errorf("service is not ready")
			}
			fmt.Fprintln(out, "✓ Ready")
			return nil
		},
	}
}
