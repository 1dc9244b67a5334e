package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/slug"
	"github.com/blog-content-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles the article API endpoints
type ArticleHandler struct {
	articles *store.ArticleStore
	cfg      *config.Config
	auth     *authenticator
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articles *store.ArticleStore, cfg *config.Config, auth *authenticator, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		cfg:      cfg,
		auth:     auth,
		log:      log.With().Str("handler", "articles").Logger(),
	}
}

// List handles GET /api/articles
// Query params: drafts, page, pageSize, paginate. Drafts require admin.
func (h *ArticleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	showDrafts := c.Query("drafts") == "true"
	if showDrafts && h.auth.currentAdmin(c) == nil {
		challenge(c)
		return
	}

	if c.Query("paginate") == "true" {
		page, err := strconv.Atoi(c.Query("page"))
		if err != nil {
			page = 1
		}
		pageSize, err := strconv.Atoi(c.Query("pageSize"))
		if err != nil {
			pageSize = h.cfg.Blog.PageSize
		}

		status := models.StatusPublished
		if showDrafts {
			status = models.StatusDraft
		}

		result, err := h.articles.ListPaginated(ctx, page, pageSize, status)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to list articles")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	var entries []models.IndexEntry
	var err error
	if showDrafts {
		entries, err = h.articles.ListDrafts(ctx)
	} else {
		entries, err = h.articles.ListPublished(ctx)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list articles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}
	if entries == nil {
		entries = []models.IndexEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// Save handles POST /api/articles
func (h *ArticleHandler) Save(c *gin.Context) {
	var article models.Article
	if err := c.ShouldBindJSON(&article); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article payload"})
		return
	}

	id, err := h.articles.Save(c.Request.Context(), &article)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// GetByPermalink handles GET /api/articles/:permalink
// Drafts are only visible to authenticated admins.
func (h *ArticleHandler) GetByPermalink(c *gin.Context) {
	permalink := c.Param("permalink")

	article, err := h.articles.GetByPermalink(c.Request.Context(), permalink)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		h.log.Error().Err(err).Str("permalink", permalink).Msg("Failed to get article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get article"})
		return
	}

	if article.Status == models.StatusDraft && h.auth.currentAdmin(c) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, article)
}

// Update handles PUT /api/articles/:permalink with a partial payload. Only
// the supplied fields are applied; the identifier is preserved.
func (h *ArticleHandler) Update(c *gin.Context) {
	permalink := c.Param("permalink")

	var patch models.ArticlePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article payload"})
		return
	}

	updated, err := h.articles.Update(c.Request.Context(), permalink, &patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		h.log.Error().Err(err).Str("permalink", permalink).Msg("Failed to update article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": updated.ID})
}

// Delete handles DELETE /api/articles/:permalink
func (h *ArticleHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	permalink := c.Param("permalink")

	article, err := h.articles.GetByPermalink(ctx, permalink)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}
		h.log.Error().Err(err).Str("permalink", permalink).Msg("Failed to get article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete article"})
		return
	}

	if err := h.articles.Delete(ctx, article.ID); err != nil {
		h.log.Error().Err(err).Str("id", article.ID).Msg("Failed to delete article")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Export handles GET /api/export with a full JSON dump of every article.
func (h *ArticleHandler) Export(c *gin.Context) {
	articles, err := h.articles.ExportAll(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export articles"})
		return
	}

	filename := fmt.Sprintf("blog-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.IndentedJSON(http.StatusOK, articles)
}

// Import handles POST /api/import. The body is a JSON array of articles;
// failures are reported per item and never abort the batch.
func (h *ArticleHandler) Import(c *gin.Context) {
	var articles []models.Article
	if err := c.ShouldBindJSON(&articles); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import data. Expected array of articles."})
		return
	}

	result := h.articles.ImportMany(c.Request.Context(), articles)

	message := fmt.Sprintf("Successfully imported %d articles", result.Imported)
	if len(result.Errors) > 0 {
		message = fmt.Sprintf("%s with %d errors", message, len(result.Errors))
	}

	h.log.Info().Int("imported", result.Imported).Int("errors", len(result.Errors)).Msg("Import completed")
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imported": result.Imported,
		"errors":   result.Errors,
		"message":  message,
	})
}

// Categories handles GET /api/categories with a label -> count mapping over
// published articles.
func (h *ArticleHandler) Categories(c *gin.Context) {
	categories, err := h.articles.Categories(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GenerateSlug handles POST /api/generate-slug, returning a slug for the
// given title that is unique against the current index.
func (h *ArticleHandler) GenerateSlug(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	entries, err := h.articles.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to generate slug")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate slug"})
		return
	}

	taken := make(map[string]string, len(entries))
	for _, e := range entries {
		taken[e.Permalink] = e.ID
	}

	c.JSON(http.StatusOK, gin.H{"slug": slug.EnsureUnique(slug.Make(req.Title), taken, "")})
}

// Debug handles GET /api/debug with a dump of the index/record relationship.
func (h *ArticleHandler) Debug(c *gin.Context) {
	report, err := h.articles.Debug(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Debug report failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build debug report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// FixMissing handles POST /api/fix-missing-articles, recreating placeholder
// records for index entries whose full record was lost.
func (h *ArticleHandler) FixMissing(c *gin.Context) {
	repaired, err := h.articles.Repair(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Repair failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to repair articles"})
		return
	}
	if repaired == nil {
		repaired = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "repaired": repaired, "count": len(repaired)})
}
