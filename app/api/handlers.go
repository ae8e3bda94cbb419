package api

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lysyi3m/sitemap-comb/app/cfg"
	"github.com/lysyi3m/sitemap-comb/app/sitemap"
)

//go:embed assets/sitemap.xsl
var defaultStylesheet []byte

// NewHandler wires the sitemap endpoints. An empty stylesheetPath serves the
// embedded stylesheet; a nil metrics handler leaves /metrics unregistered.
func NewHandler(generator GeneratorInterface, options OptionsInterface,
	sitemapCache SitemapCacheInterface, stylesheetPath string, metrics http.Handler) *Handler {
	return &Handler{
		generator:      generator,
		options:        options,
		sitemapCache:   sitemapCache,
		stylesheetPath: stylesheetPath,
		metrics:        metrics,
	}
}

func (h *Handler) GetStylesheet(c *gin.Context) {
	stylesheet := defaultStylesheet

	if h.stylesheetPath != "" {
		data, err := os.ReadFile(h.stylesheetPath)
		if err != nil {
			slog.Error("Failed to read stylesheet", "path", h.stylesheetPath, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		stylesheet = data
	}

	c.Data(http.StatusOK, "text/xsl; charset=utf-8", stylesheet)
}

func (h *Handler) GetSitemap(c *gin.Context) {
	options, err := h.options.Get()
	if err != nil {
		slog.Error("Invalid sitemap options", "path", h.options.Path(), "error", err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	// Only the request that runs the build sets the id
	var buildID string
	xml, hit, err := h.sitemapCache.GetOrBuild(c.Request.Context(), func(ctx context.Context) (string, error) {
		buildID = uuid.NewString()
		slog.Debug("Building sitemap", "build", buildID)
		return h.generator.Run(ctx, options)
	})

	if err != nil {
		switch {
		case errors.Is(err, sitemap.ErrConfiguration):
			c.String(http.StatusInternalServerError, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			slog.Error("Sitemap build timed out", "error", err)
			c.String(http.StatusServiceUnavailable, "sitemap build timed out")
		case errors.Is(err, context.Canceled):
			slog.Debug("Sitemap request canceled", "error", err)
			c.Status(http.StatusServiceUnavailable)
		default:
			slog.Error("Sitemap generation error", "error", err)
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	if buildID != "" {
		c.Header("X-Sitemap-Build", buildID)
	}

	c.String(http.StatusOK, xml)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.GetVersion(),
		"cache":     h.sitemapCache.Store().Health(),
	}

	options := map[string]interface{}{
		"path":   h.options.Path(),
		"status": "ok",
	}
	if _, err := h.options.Get(); err != nil {
		options["status"] = "invalid"
		options["error"] = err.Error()
	}
	health["options"] = options

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIFlushCache(c *gin.Context) {
	if err := h.sitemapCache.Invalidate(); err != nil {
		slog.Error("Cache error", "operation", "flush", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to flush cache",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sitemap cache flushed",
	})
}
