package cmd

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"forum-geni/pkg/drive"
	"forum-geni/pkg/services"
)

// newExportCmd creates a new command for exporting gallery data
func newExportCmd() *cobra.Command {
	var (
		bucket string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export gallery data",
		Long: `Export the gallery structure as JSON. Without a bucket the JSON is printed,
otherwise a timestamped snapshot and latest.json are uploaded to Cloud Storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, service, err := setup(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			structure, err := service.GetGalleryStructure(ctx, cfg.RootFolderID)
			if err != nil {
				return err
			}

			if bucket == "" {
				bucket = cfg.SnapshotBucket
			}
			if bucket == "" {
				data, err := json.MarshalIndent(structure, "", "  ")
				if err != nil {
					return fmt.Errorf("error marshaling data: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			credentials, err := drive.LoadCredentials(cfg.ServiceAccountKey, cfg.ServiceAccountFile)
			if err != nil {
				return err
			}
			client, err := storage.NewClient(ctx, option.WithCredentialsJSON(credentials))
			if err != nil {
				return fmt.Errorf("storage.NewClient: %w", err)
			}
			defer client.Close()

			publisher := services.NewSnapshotPublisher(services.NewGCSWriter(client, bucket), prefix)
			names, err := publisher.Publish(ctx, structure)
			if err != nil {
				return err
			}
			for _, name := range names {
				logger.Info("snapshot uploaded", zap.String("bucket", bucket), zap.String("object", name))
				fmt.Fprintf(cmd.OutOrStdout(), "gs://%s/%s\n", bucket, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Upload the snapshot to this bucket (defaults to SNAPSHOT_BUCKET)")
	cmd.Flags().StringVar(&prefix, "prefix", "gallery", "Object name prefix of the uploaded snapshot")

	return cmd
}
