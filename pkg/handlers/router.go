package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forum-geni/pkg/logging"
	"forum-geni/pkg/metrics"
)

// DefaultMetricsPath is where the Prometheus endpoint is mounted
const DefaultMetricsPath = "/metrics"

// Dependencies are everything the router needs to serve requests
type Dependencies struct {
	Gallery          GalleryService
	RootFolderID     string
	RevalidateSecret string
	JWTSecret        string
	ViewsDir         string
	MetricsPath      string
	Logger           *zap.Logger
}

// NewHandler builds a Handler from its dependencies
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		gallery:          deps.Gallery,
		rootID:           deps.RootFolderID,
		revalidateSecret: deps.RevalidateSecret,
		viewsDir:         deps.ViewsDir,
		logger:           logger,
	}
}

// NewRouter registers every route on a new gin engine
func NewRouter(deps Dependencies) *gin.Engine {
	h := NewHandler(deps)

	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(h.logger), metrics.Middleware())

	metricsPath := deps.MetricsPath
	if metricsPath == "" {
		metricsPath = DefaultMetricsPath
	}
	metrics.Register(router, metricsPath)

	router.GET("/health/live", h.LiveHandler)
	router.GET("/health/ready", h.ReadyHandler)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/gallery")
	})
	router.GET("/gallery", h.GalleryHandler)

	api := router.Group("/api")
	api.GET("/gallery", h.StructureHandler)
	api.GET("/gallery/media", h.MediaHandler)
	api.GET("/gallery/categories", h.CategoriesHandler)
	api.POST("/revalidate", h.RevalidateHandler)
	api.GET("/access", Authenticate(deps.JWTSecret), h.AccessHandler)

	admin := router.Group("/admin", Authenticate(deps.JWTSecret), h.RequireRoute())
	admin.GET("", h.AdminHandler)
	admin.GET("/gallery", h.AdminGalleryHandler)
	admin.DELETE("/cache", h.AdminCacheHandler)

	return router
}
