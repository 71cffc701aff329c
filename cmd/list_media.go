package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"forum-geni/pkg/models"
)

// newListMediaCmd creates a new command for listing media files
func newListMediaCmd() *cobra.Command {
	var filter models.MediaFilter

	cmd := &cobra.Command{
		Use:   "list-media",
		Short: "List gallery media",
		Long:  `List gallery images and videos, optionally narrowed to a year, a category or an event.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, service, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			items, err := service.GetFilteredGalleryMedia(cmd.Context(), cfg.RootFolderID, filter)
			if err != nil {
				return err
			}
			listMedia(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Year, "year", "", "Only list media of this year")
	cmd.Flags().StringVar(&filter.Category, "category", "", "Only list media of this category")
	cmd.Flags().StringVar(&filter.Event, "event", "", "Only list media of this event")

	return cmd
}

// listMedia prints one media file per entry
func listMedia(w io.Writer, items []models.GalleryMediaItem) {
	for i, item := range items {
		fmt.Fprintf(w, "%d. [%s] %s / %s / %s / %s\n", i+1, item.Type, item.Year, item.Category, item.Event, item.Name)
		fmt.Fprintf(w, "   URL: %s\n", item.URL)
		fmt.Fprintf(w, "   Thumbnail: %s\n", item.ThumbnailURL)
	}

	fmt.Fprintf(w, "Total: %d media\n", len(items))
}
