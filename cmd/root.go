package cmd

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forum-geni/pkg/cache"
	"forum-geni/pkg/config"
	"forum-geni/pkg/drive"
	"forum-geni/pkg/logging"
	"forum-geni/pkg/services"
)

// settings holds the environment merged with the command line flags
var settings = config.NewViper()

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "forum-geni",
		Short: "Forum Geni serves the association media gallery",
		Long: `Forum Geni builds the media gallery of the association from a Google Drive
folder tree (Year / Category / Event) and serves it over HTTP, together with the
role protected admin area.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}

	// Persistent flags override the matching environment variables
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "Load environment variables from this file when it exists")
	flags.String("root-folder", "", "Set the GALLERY_ROOT_FOLDER_ID (overrides environment variable)")
	flags.StringP("port", "p", "", "Set the PORT (overrides environment variable)")
	flags.String("cache-backend", "", "Set the CACHE_BACKEND, memory or redis (overrides environment variable)")
	flags.String("log-level", "", "Set the LOG_LEVEL (overrides environment variable)")
	_ = settings.BindPFlag(config.KeyRootFolderID, flags.Lookup("root-folder"))
	_ = settings.BindPFlag(config.KeyPort, flags.Lookup("port"))
	_ = settings.BindPFlag(config.KeyCacheBackend, flags.Lookup("cache-backend"))
	_ = settings.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newShowGalleryCmd())
	rootCmd.AddCommand(newListCategoriesCmd())
	rootCmd.AddCommand(newListMediaCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newInvalidateCmd())
	rootCmd.AddCommand(newCheckAccessCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	return config.Load(settings)
}

// newGalleryService wires the Drive client, the cache store and the gallery
// service from cfg
func newGalleryService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*services.Service, error) {
	credentials, err := drive.LoadCredentials(cfg.ServiceAccountKey, cfg.ServiceAccountFile)
	if err != nil {
		return nil, err
	}

	client, err := drive.NewGoogleClient(ctx, credentials, drive.Options{
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStore(ctx, cfg.CacheBackend, cfg.RedisURL, logger)
	if err != nil {
		return nil, err
	}

	return services.NewService(client, store, services.Options{
		BatchSize:      cfg.BatchSize,
		CacheTTL:       cfg.CacheTTL,
		ThumbnailWidth: cfg.ThumbnailWidth,
		Logger:         logger,
	}), nil
}

// setup loads the configuration, the logger and the gallery service shared
// by every Drive backed command
func setup(ctx context.Context) (*config.Config, *zap.Logger, *services.Service, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	service, err := newGalleryService(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return cfg, logger, service, nil
}
