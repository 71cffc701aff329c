package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"forum-geni/pkg/models"
)

// newListCategoriesCmd creates a new command for listing categories
func newListCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-categories",
		Short: "List all gallery categories",
		Long:  `List all gallery categories across years with their event and media counts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, service, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			summaries, err := service.GetCategorySummaries(cmd.Context(), cfg.RootFolderID)
			if err != nil {
				return err
			}
			listCategories(cmd.OutOrStdout(), summaries)
			return nil
		},
	}
}

// listCategories displays all categories and the years they appear in
func listCategories(w io.Writer, summaries []models.CategorySummary) {
	fmt.Fprintln(w, "Gallery Categories:")
	fmt.Fprintln(w, "================")

	for _, summary := range summaries {
		fmt.Fprintf(w, "%s\n", summary.Name)
		fmt.Fprintf(w, "  Years: %s\n", strings.Join(summary.Years, ", "))
		fmt.Fprintf(w, "  Events: %d\n", summary.EventCount)
		fmt.Fprintf(w, "  Media: %d\n", summary.MediaCount)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d categories\n", len(summaries))
}
