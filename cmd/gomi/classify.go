package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ilkoid/gomi-ai/internal/ui"
	"github.com/ilkoid/gomi-ai/pkg/events"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/tui"
	"github.com/ilkoid/gomi-ai/pkg/utils"
)

func classifyCmd() *cobra.Command {
	var (
		asJSON bool
		width  int
	)

	cmd := &cobra.Command{
		Use:   "classify <path|s3://key>...",
		Short: "Classify one or more photos and print the disposal guidance",
		Long: `Classify sends each photo through the same pipeline as the TUI:
validation, optional compression, upload, result card.

Files are processed one after another. The command fails if any photo fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			emitter := events.NewChanEmitter(16)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				printNotes(cmd.ErrOrStderr(), emitter.Subscribe())
			}()
			defer func() {
				emitter.Close()
				wg.Wait()
			}()

			app, err := buildComponents(emitter)
			if err != nil {
				return err
			}
			colors := tui.GetColorScheme(cfg.App.ColorScheme)
			out := cmd.OutOrStdout()

			failed := 0
			for i, ref := range args {
				if i > 0 && !asJSON {
					fmt.Fprintln(out)
				}

				file, err := app.source.Open(ctx, ref)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "✗ Cannot open %s: %v\n", ref, err)
					failed++
					continue
				}
				if err := app.orch.Select(ctx, file); err != nil {
					return err
				}

				result, err := app.orch.Submit(ctx)
				if err != nil {
					failed++
					utils.Warn("Classify command failed", "ref", ref, "error", err)
					fmt.Fprintln(cmd.ErrOrStderr(), ui.ErrorCard(file.Name, gomi.AsOperationError(err), lang, colors))
					continue
				}

				if asJSON {
					if err := writeJSON(out, ref, result); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(out, ui.ResultCard(result, lang, colors, width))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d photos failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON lines")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width of the result card")
	return cmd
}

// printNotes печатает события сжатия до закрытия канала.
func printNotes(w io.Writer, sub events.Subscriber) {
	for ev := range sub.Events() {
		data, ok := ev.Data.(events.CompressionData)
		if !ok {
			continue
		}
		if data.Applied {
			fmt.Fprintf(w, "· Compressed %.2fMB → %.2fMB (%dx%d)\n",
				toMB(data.OriginalSize), toMB(data.OutputSize), data.Width, data.Height)
		} else if data.Reason != "" {
			fmt.Fprintf(w, "· Sent original image: %s\n", data.Reason)
		}
	}
}

// writeJSON пишет одну строку {"ref": ..., "result": ...}.
func writeJSON(w io.Writer, ref string, result *gomi.ClassificationResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(struct {
		Ref    string                     `json:"ref"`
		Result *gomi.ClassificationResult `json:"result"`
	}{ref, result})
}

func toMB(size int64) float64 {
	return float64(size) / 1024 / 1024
}
