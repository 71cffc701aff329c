package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"forum-geni/pkg/models"
)

// newShowGalleryCmd creates a new command for showing the gallery tree
func newShowGalleryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-gallery",
		Short: "Show the gallery tree",
		Long:  `Walk the Drive root folder and print every year, category and event with its media count.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, service, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			structure, err := service.GetGalleryStructure(cmd.Context(), cfg.RootFolderID)
			if err != nil {
				return err
			}
			showGallery(cmd.OutOrStdout(), structure)
			return nil
		},
	}
}

// showGallery prints the gallery tree
func showGallery(w io.Writer, structure models.GalleryStructure) {
	fmt.Fprintln(w, "Gallery:")
	fmt.Fprintln(w, "================")

	for _, year := range structure.Years {
		fmt.Fprintf(w, "%s (%d media)\n", year.Name, year.TotalMediaCount)
		for _, category := range year.Categories {
			fmt.Fprintf(w, "  %s (%d media)\n", category.Name, category.TotalMediaCount)
			for _, event := range category.Events {
				fmt.Fprintf(w, "    %s: %d media\n", event.Name, event.MediaCount)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d years, %d categories, %d events, %d media\n",
		structure.TotalYears, structure.TotalCategories, structure.TotalEvents, structure.TotalMedia)
}
