package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forum-geni/pkg/logging"
	"forum-geni/pkg/rbac"
	"forum-geni/pkg/services"
)

// AdminHandler returns the current user with the capabilities of their role
func (h *Handler) AdminHandler(c *gin.Context) {
	session, _ := CurrentSession(c)

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    session.UserID,
			"email": session.Email,
			"role":  session.Role,
			"label": session.Role.Label(),
		},
		"capabilities": rbac.CapabilitiesFor(session.Role),
	})
}

// AdminGalleryHandler returns the gallery totals and the category summaries
func (h *Handler) AdminGalleryHandler(c *gin.Context) {
	structure, err := h.gallery.GetGalleryStructure(c.Request.Context(), h.rootID)
	if err != nil {
		h.galleryError(c, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": galleryErrorMessage})
		return
	}

	summaries, err := h.gallery.GetCategorySummaries(c.Request.Context(), h.rootID)
	if err != nil {
		h.galleryError(c, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": galleryErrorMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"years":      structure.TotalYears,
			"categories": structure.TotalCategories,
			"events":     structure.TotalEvents,
			"media":      structure.TotalMedia,
		},
		"categories": summaries,
	})
}

// AdminCacheHandler drops the cached gallery entries. An optional tag query
// parameter limits the invalidation to one entry.
func (h *Handler) AdminCacheHandler(c *gin.Context) {
	h.invalidate(c, c.Query("tag"))
}

// AccessHandler reports whether the current user may open the given path
func (h *Handler) AccessHandler(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	session, _ := CurrentSession(c)
	decision := rbac.CanAccessRoute(session.Role, path)
	c.JSON(http.StatusOK, gin.H{
		"path":         path,
		"allowed":      decision.Allowed,
		"requiredRole": decision.RequiredRole,
		"message":      decision.Message,
	})
}

// RevalidateHandler lets the content pipeline drop cached gallery entries.
// The caller authenticates with the shared revalidation secret.
func (h *Handler) RevalidateHandler(c *gin.Context) {
	if !h.validRevalidateSecret(c.GetHeader("Authorization")) {
		logging.FromContext(c, h.logger).Warn("revalidation rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid revalidation secret"})
		return
	}

	h.invalidate(c, c.Query("tag"))
}

func (h *Handler) invalidate(c *gin.Context, tag string) {
	var tags []string
	if tag != "" {
		tags = []string{tag}
	}

	invalidated, err := h.gallery.Invalidate(c.Request.Context(), tags...)
	if err != nil {
		if errors.Is(err, services.ErrUnknownTag) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logging.FromContext(c, h.logger).Error("cache invalidation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cache invalidation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"revalidated": true,
		"tags":        invalidated,
		"now":         time.Now().UnixMilli(),
	})
}

func (h *Handler) validRevalidateSecret(header string) bool {
	if h.revalidateSecret == "" {
		return false
	}
	token := extractBearerToken(header)
	if token == "" {
		token = strings.TrimSpace(header)
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.revalidateSecret)) == 1
}
