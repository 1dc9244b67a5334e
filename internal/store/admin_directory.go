package store

import (
	"context"
	"fmt"
	"time"

	"github.com/blog-content-api/internal/kvstore"
	"github.com/blog-content-api/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminDirectory manages the administrator collection. The whole collection is
// one SYSTEM_ADMINS record; it is small enough that no separate index exists.
type AdminDirectory struct {
	kv  kvstore.Store
	log zerolog.Logger
}

// NewAdminDirectory creates an AdminDirectory over kv.
func NewAdminDirectory(kv kvstore.Store, log zerolog.Logger) *AdminDirectory {
	return &AdminDirectory{
		kv:  kv,
		log: log.With().Str("service", "admins").Logger(),
	}
}

// List returns all administrator accounts.
func (d *AdminDirectory) List(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	if _, err := d.kv.GetJSON(ctx, keyAdmins, &admins); err != nil {
		return nil, fmt.Errorf("read admins: %w", err)
	}
	return admins, nil
}

// Save upserts an admin by id and returns the id.
func (d *AdminDirectory) Save(ctx context.Context, admin *models.Admin) (string, error) {
	admins, err := d.List(ctx)
	if err != nil {
		return "", err
	}

	replaced := false
	for i := range admins {
		if admins[i].ID == admin.ID {
			admins[i] = *admin
			replaced = true
			break
		}
	}
	if !replaced {
		admins = append(admins, *admin)
	}

	if err := d.kv.PutJSON(ctx, keyAdmins, admins); err != nil {
		return "", fmt.Errorf("persist admins: %w", err)
	}
	return admin.ID, nil
}

// Delete removes the admin with the given id.
func (d *AdminDirectory) Delete(ctx context.Context, id string) error {
	admins, err := d.List(ctx)
	if err != nil {
		return err
	}
	filtered := make([]models.Admin, 0, len(admins))
	for _, a := range admins {
		if a.ID != id {
			filtered = append(filtered, a)
		}
	}
	if err := d.kv.PutJSON(ctx, keyAdmins, filtered); err != nil {
		return fmt.Errorf("persist admins: %w", err)
	}
	return nil
}

// GetByUsername returns the admin with the given username, or nil.
func (d *AdminDirectory) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	admins, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		if admins[i].Username == username {
			return &admins[i], nil
		}
	}
	return nil, nil
}

// GetByID returns the admin with the given id, or nil.
func (d *AdminDirectory) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	admins, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		if admins[i].ID == id {
			return &admins[i], nil
		}
	}
	return nil, nil
}

// Verify checks credentials against the directory. Comparison is plain text;
// only active accounts may authenticate. Returns nil when the credentials do
// not match.
func (d *AdminDirectory) Verify(ctx context.Context, username, password string) (*models.Admin, error) {
	admin, err := d.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, nil
	}
	if admin.Password == password && admin.Status == models.AdminStatusActive {
		return admin, nil
	}
	return nil, nil
}

// EnsureDefaultAdmin seeds a superadmin with fixed default credentials when
// the directory is empty. Bootstrap convenience only; the credentials must be
// changed immediately on a real deployment.
func (d *AdminDirectory) EnsureDefaultAdmin(ctx context.Context) error {
	admins, err := d.List(ctx)
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return nil
	}

	defaultAdmin := &models.Admin{
		ID:        uuid.NewString(),
		Username:  "admin",
		Password:  "admin",
		Email:     "admin@example.com",
		Role:      models.RoleSuperadmin,
		Status:    models.AdminStatusActive,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := d.Save(ctx, defaultAdmin); err != nil {
		return err
	}

	d.log.Warn().Str("username", defaultAdmin.Username).Msg("Seeded default admin with default credentials; change them")
	return nil
}
