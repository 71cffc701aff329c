package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newInvalidateCmd creates a new command for dropping cached gallery entries
func newInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate [tag...]",
		Short: "Drop cached gallery entries",
		Long: `Drop the cached gallery entries of the given tags (gallery-structure,
gallery-media), or all of them when no tag is given. Only useful with the redis
cache backend, the memory cache lives inside the server process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, service, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			tags, err := service.Invalidate(cmd.Context(), args...)
			if err != nil {
				return err
			}
			for _, tag := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", tag)
			}
			return nil
		},
	}
}
