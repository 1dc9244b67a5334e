package api

import (
	"net/http"

	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const ctxAdminKey = "admin"

// authenticator resolves HTTP Basic credentials against the admin directory.
type authenticator struct {
	admins *store.AdminDirectory
	log    zerolog.Logger
}

// currentAdmin returns the authenticated admin for the request, or nil when
// the credentials are missing or invalid.
func (a *authenticator) currentAdmin(c *gin.Context) *models.Admin {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		return nil
	}
	admin, err := a.admins.Verify(c.Request.Context(), username, password)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to verify credentials")
		return nil
	}
	return admin
}

// challenge rejects the request with a Basic auth challenge.
func challenge(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="Blog Admin", charset="UTF-8"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
}

// requireAdmin only lets authenticated admins through.
func (a *authenticator) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := a.currentAdmin(c)
		if admin == nil {
			challenge(c)
			return
		}
		c.Set(ctxAdminKey, admin)
		c.Next()
	}
}

// requireSuperadmin only lets superadmins through.
func (a *authenticator) requireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin := a.currentAdmin(c)
		if admin == nil {
			challenge(c)
			return
		}
		if admin.Role != models.RoleSuperadmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. Superadmin required."})
			return
		}
		c.Set(ctxAdminKey, admin)
		c.Next()
	}
}

// adminFromContext returns the admin stored by the auth middleware, or nil.
func adminFromContext(c *gin.Context) *models.Admin {
	if v, ok := c.Get(ctxAdminKey); ok {
		if admin, ok := v.(*models.Admin); ok {
			return admin
		}
	}
	return nil
}
