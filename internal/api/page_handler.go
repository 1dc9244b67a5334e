package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/render"
	"github.com/blog-content-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PageHandler renders the HTML pages and the feed documents. Templates come
// from the remote theme source and are filled by the substitution engine.
type PageHandler struct {
	articles *store.ArticleStore
	fetcher  *render.Fetcher
	cfg      *config.Config
	log      zerolog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(articles *store.ArticleStore, fetcher *render.Fetcher, cfg *config.Config, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		articles: articles,
		fetcher:  fetcher,
		cfg:      cfg,
		log:      log.With().Str("handler", "pages").Logger(),
	}
}

// themeURL resolves the theme for this request. A theme query parameter
// selects a theme under the configured base URL without touching shared
// state.
func (h *PageHandler) themeURL(c *gin.Context) string {
	if theme := c.Query("theme"); theme != "" && h.cfg.Site.ThemeBaseURL != "" {
		return h.cfg.Site.ThemeBaseURL + theme + "/"
	}
	return h.cfg.Site.ThemeURL
}

// siteData returns the template variables shared by every page. The key names
// are the placeholder names the theme files use.
func (h *PageHandler) siteData() map[string]string {
	return map[string]string{
		"siteName":        h.cfg.Site.Name,
		"siteDescription": h.cfg.Site.Description,
		"keyWords":        h.cfg.Site.Keywords,
		"copyRight":       h.cfg.Site.CopyRight,
		"codeBeforHead":   h.cfg.Site.CodeBeforeHead,
		"codeBeforBody":   h.cfg.Site.CodeBeforeBody,
	}
}

func (h *PageHandler) renderPage(c *gin.Context, name string, status int, data map[string]string) {
	tpl, err := h.fetcher.Template(c.Request.Context(), h.themeURL(c), name)
	if err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("Template fetch failed")
		c.String(http.StatusInternalServerError, "Error loading template: %s", err.Error())
		return
	}
	c.Data(status, "text/html; charset=utf-8", []byte(render.Render(tpl, data)))
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	h.renderPage(c, "index", http.StatusOK, h.siteData())
}

// Article handles GET /article/:permalink. Drafts and missing articles fall
// through to the 404 page.
func (h *PageHandler) Article(c *gin.Context) {
	permalink := c.Param("permalink")

	article, err := h.articles.GetByPermalink(c.Request.Context(), permalink)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.log.Error().Err(err).Str("permalink", permalink).Msg("Failed to load article")
		c.String(http.StatusInternalServerError, "Error loading article")
		return
	}
	if article.Status == models.StatusDraft {
		h.NotFound(c)
		return
	}

	content := article.ContentMarkdown
	if content == "" {
		content = article.Content
	}

	data := h.siteData()
	data["title"] = article.Title
	data["createDate"] = displayDate(article.CreateDate)
	data["label"] = article.Label
	data["img"] = article.Img
	data["content"] = content

	h.renderPage(c, "article", http.StatusOK, data)
}

// AdminHome handles GET /admin/
func (h *PageHandler) AdminHome(c *gin.Context) {
	h.renderPage(c, "admin", http.StatusOK, h.siteData())
}

// AdminEdit handles GET /admin/edit
func (h *PageHandler) AdminEdit(c *gin.Context) {
	action := "New"
	if c.Query("permalink") != "" {
		action = "Edit"
	}
	data := h.siteData()
	data["action"] = action
	h.renderPage(c, "edit", http.StatusOK, data)
}

// AdminUsers handles GET /admin/users
func (h *PageHandler) AdminUsers(c *gin.Context) {
	h.renderPage(c, "admin-users", http.StatusOK, h.siteData())
}

// Bookmarks handles GET /bookmarks
func (h *PageHandler) Bookmarks(c *gin.Context) {
	h.renderPage(c, "bookmarks", http.StatusOK, h.siteData())
}

// RSS handles GET /rss.xml
func (h *PageHandler) RSS(c *gin.Context) {
	articles, err := h.articles.ListPublished(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build RSS feed")
		c.String(http.StatusInternalServerError, "Error generating RSS feed")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(render.RSS(h.cfg.Site, articles)))
}

// Sitemap handles GET /sitemap.xml
func (h *PageHandler) Sitemap(c *gin.Context) {
	articles, err := h.articles.ListPublished(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build sitemap")
		c.String(http.StatusInternalServerError, "Error generating sitemap")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(render.Sitemap(h.cfg.Site, articles)))
}

// Robots handles GET /robots.txt
func (h *PageHandler) Robots(c *gin.Context) {
	c.String(http.StatusOK, h.cfg.Site.Robots)
}

// NotFound renders the themed 404 page, with a plain-text fallback when the
// theme itself cannot be fetched.
func (h *PageHandler) NotFound(c *gin.Context) {
	tpl, err := h.fetcher.Template(c.Request.Context(), h.themeURL(c), "404")
	if err != nil {
		c.String(http.StatusNotFound, "404 - Page Not Found")
		return
	}
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(render.Render(tpl, h.siteData())))
}

func displayDate(createDate string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, createDate); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return createDate
}
