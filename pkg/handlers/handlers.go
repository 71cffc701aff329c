package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/eknkc/pug"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forum-geni/pkg/logging"
	"forum-geni/pkg/models"
	"forum-geni/pkg/services"
)

// galleryErrorMessage is the only failure detail shown to visitors
const galleryErrorMessage = "Could not load the gallery. Please try again later."

const readinessTimeout = 5 * time.Second

// GalleryService is what the handlers need from the gallery aggregator
type GalleryService interface {
	GetGalleryStructure(ctx context.Context, rootID string) (models.GalleryStructure, error)
	GetFilteredGalleryMedia(ctx context.Context, rootID string, filter models.MediaFilter) ([]models.GalleryMediaItem, error)
	GetCategorySummaries(ctx context.Context, rootID string) ([]models.CategorySummary, error)
	Invalidate(ctx context.Context, tags ...string) ([]string, error)
	CheckRoot(ctx context.Context, rootID string) error
}

// Handler serves the gallery pages, the gallery API and the admin endpoints
type Handler struct {
	gallery          GalleryService
	rootID           string
	revalidateSecret string
	viewsDir         string
	logger           *zap.Logger
}

// GalleryHandler handles requests for the gallery index page
func (h *Handler) GalleryHandler(c *gin.Context) {
	structure, err := h.gallery.GetGalleryStructure(c.Request.Context(), h.rootID)
	if err != nil {
		h.galleryError(c, err)
		h.render(c, http.StatusBadGateway, "error.pug", gin.H{"Message": galleryErrorMessage})
		return
	}

	h.render(c, http.StatusOK, "gallery.pug", structure)
}

// StructureHandler returns the whole gallery tree as JSON
func (h *Handler) StructureHandler(c *gin.Context) {
	structure, err := h.gallery.GetGalleryStructure(c.Request.Context(), h.rootID)
	if err != nil {
		h.galleryError(c, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": galleryErrorMessage})
		return
	}

	c.JSON(http.StatusOK, structure)
}

// MediaHandler returns the flattened media list, filtered by the year,
// category and event query parameters
func (h *Handler) MediaHandler(c *gin.Context) {
	filter := models.MediaFilter{
		Year:     c.Query("year"),
		Category: c.Query("category"),
		Event:    c.Query("event"),
	}

	items, err := h.gallery.GetFilteredGalleryMedia(c.Request.Context(), h.rootID, filter)
	if err != nil {
		h.galleryError(c, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": galleryErrorMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filter": filter,
		"total":  len(items),
		"media":  items,
	})
}

// CategoriesHandler returns the category summaries
func (h *Handler) CategoriesHandler(c *gin.Context) {
	summaries, err := h.gallery.GetCategorySummaries(c.Request.Context(), h.rootID)
	if err != nil {
		h.galleryError(c, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": galleryErrorMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": summaries})
}

// LiveHandler reports that the process is up
func (h *Handler) LiveHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyHandler reports whether the gallery root folder is reachable
func (h *Handler) ReadyHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.gallery.CheckRoot(ctx, h.rootID); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "degraded",
			"component": "drive",
			"error":     err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) galleryError(c *gin.Context, err error) {
	logger := logging.FromContext(c, h.logger)
	if errors.Is(err, services.ErrFetchGallery) {
		logger.Error("gallery unavailable", zap.Error(err))
	} else {
		logger.Error("gallery request failed", zap.Error(err))
	}
	_ = c.Error(err)
}

// render executes a pug view. A broken template degrades to plain text so
// the status code still reaches the client.
func (h *Handler) render(c *gin.Context, status int, name string, data any) {
	template, err := pug.CompileFile(filepath.Join(h.viewsDir, name), pug.Options{})
	if err != nil {
		logging.FromContext(c, h.logger).Error("template error", zap.String("view", name), zap.Error(err))
		c.String(status, http.StatusText(status))
		return
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := template.Execute(c.Writer, data); err != nil {
		logging.FromContext(c, h.logger).Error("template execution error", zap.String("view", name), zap.Error(err))
	}
}
