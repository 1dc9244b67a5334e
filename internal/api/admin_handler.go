package api

import (
	"net/http"
	"time"

	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminHandler handles the administrator management endpoints. All routes are
// guarded by the superadmin middleware; passwords never leave the server.
type AdminHandler struct {
	admins *store.AdminDirectory
	log    zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admins *store.AdminDirectory, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		admins: admins,
		log:    log.With().Str("handler", "admins").Logger(),
	}
}

// List handles GET /api/admins
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list admins")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list admins"})
		return
	}

	safe := make([]models.Admin, 0, len(admins))
	for _, a := range admins {
		safe = append(safe, a.Safe())
	}
	c.JSON(http.StatusOK, safe)
}

// Create handles POST /api/admins
func (h *AdminHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin payload"})
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, password, and email are required"})
		return
	}

	existing, err := h.admins.GetByUsername(ctx, req.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check username")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create admin"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}

	newAdmin := &models.Admin{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Role:      role,
		Status:    models.AdminStatusActive,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := h.admins.Save(ctx, newAdmin); err != nil {
		h.log.Error().Err(err).Msg("Failed to save admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create admin"})
		return
	}

	h.log.Info().Str("username", newAdmin.Username).Str("role", newAdmin.Role).Msg("Admin created")
	c.JSON(http.StatusOK, gin.H{"success": true, "admin": newAdmin.Safe()})
}

// Update handles PUT /api/admins/:id with a partial payload. The identifier
// is preserved.
func (h *AdminHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	existing, err := h.admins.GetByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update admin"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}

	var patch models.AdminPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin payload"})
		return
	}

	updated := models.MergeAdmin(existing, &patch)
	if _, err := h.admins.Save(ctx, updated); err != nil {
		h.log.Error().Err(err).Msg("Failed to save admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update admin"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "admin": updated.Safe()})
}

// Delete handles DELETE /api/admins/:id. Admins cannot delete their own
// account.
func (h *AdminHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	existing, err := h.admins.GetByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete admin"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}

	if current := adminFromContext(c); current != nil && current.ID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	if err := h.admins.Delete(ctx, id); err != nil {
		h.log.Error().Err(err).Msg("Failed to delete admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete admin"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
