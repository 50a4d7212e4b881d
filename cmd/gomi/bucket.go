package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ilkoid/gomi-ai/pkg/s3storage"
	"github.com/ilkoid/gomi-ai/pkg/upload"
)

var keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

func bucketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Browse photos stored in the S3 bucket",
	}
	cmd.AddCommand(bucketListCmd())
	return cmd
}

func bucketListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List images in the bucket (use the printed s3:// refs with classify)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.S3.Enabled() {
				return fmt.Errorf("s3 storage is not configured (set s3 section in config)")
			}
			client, err := s3storage.New(cfg.S3)
			if err != nil {
				return fmt.Errorf("failed to init s3: %w", err)
			}

			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}

			var objects []s3storage.StoredObject
			if all {
				objects, err = client.ListFiles(cmd.Context(), prefix)
			} else {
				objects, err = client.ListImages(cmd.Context(), prefix)
			}
			if err != nil {
				return fmt.Errorf("list %s/%s: %w", client.Bucket(), prefix, err)
			}

			out := cmd.OutOrStdout()
			if len(objects) == 0 {
				fmt.Fprintln(out, "Bucket is empty (or no images found).")
				return nil
			}
			for _, obj := range objects {
				fmt.Fprintf(out, "%-10s %-16s %s\n",
					humanize.IBytes(uint64(obj.Size)),
					humanize.Time(obj.LastModified),
					keyStyle.Render(upload.BucketScheme+obj.Key))
			}
			fmt.Fprintf(out, "\n%d objects in %s\n", len(objects), client.Bucket())
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every object, not only images")
	return cmd
}
