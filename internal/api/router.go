package api

import (
	"net/http"
	"time"

	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/render"
	"github.com/blog-content-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(articles *store.ArticleStore, admins *store.AdminDirectory, fetcher *render.Fetcher, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	auth := &authenticator{admins: admins, log: log}

	// Handlers
	articleHandler := NewArticleHandler(articles, cfg, auth, log)
	adminHandler := NewAdminHandler(admins, log)
	pageHandler := NewPageHandler(articles, fetcher, cfg, log)

	// Health check
	router.GET("/health", healthCheck)

	// JSON API
	api := router.Group("/api")
	{
		api.GET("/articles", articleHandler.List)
		api.POST("/articles", auth.requireAdmin(), articleHandler.Save)
		api.GET("/articles/:permalink", articleHandler.GetByPermalink)
		api.PUT("/articles/:permalink", auth.requireAdmin(), articleHandler.Update)
		api.DELETE("/articles/:permalink", auth.requireAdmin(), articleHandler.Delete)

		// Export auth is deployment policy; debug and repair always need it.
		if cfg.Blog.ExportRequiresAuth {
			api.GET("/export", auth.requireAdmin(), articleHandler.Export)
		} else {
			api.GET("/export", articleHandler.Export)
		}
		api.POST("/import", auth.requireAdmin(), articleHandler.Import)
		api.GET("/categories", articleHandler.Categories)
		api.POST("/generate-slug", articleHandler.GenerateSlug)
		api.GET("/debug", auth.requireAdmin(), articleHandler.Debug)
		api.POST("/fix-missing-articles", auth.requireAdmin(), articleHandler.FixMissing)

		adminAPI := api.Group("/admins", auth.requireSuperadmin())
		{
			adminAPI.GET("", adminHandler.List)
			adminAPI.POST("", adminHandler.Create)
			adminAPI.PUT("/:id", adminHandler.Update)
			adminAPI.DELETE("/:id", adminHandler.Delete)
		}
	}

	// HTML pages and feeds
	router.GET("/", pageHandler.Index)
	router.GET("/article/:permalink", pageHandler.Article)
	router.GET("/bookmarks", pageHandler.Bookmarks)
	router.GET("/rss.xml", pageHandler.RSS)
	router.GET("/sitemap.xml", pageHandler.Sitemap)
	router.GET("/robots.txt", pageHandler.Robots)

	adminPages := router.Group("/admin", auth.requireAdmin())
	{
		adminPages.GET("/", pageHandler.AdminHome)
		adminPages.GET("/edit", pageHandler.AdminEdit)
		adminPages.GET("/users", pageHandler.AdminUsers)
	}

	router.NoRoute(pageHandler.NotFound)

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "blog-content-api",
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
