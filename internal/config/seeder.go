package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/core/domain"
	"kost-management/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAdminSeedSkipped is returned when no admin credentials are configured
var ErrAdminSeedSkipped = errors.New("ADMIN_EMAIL or ADMIN_PASSWORD not set")

// Seeder handles database seeding
type Seeder struct {
	store  repositories.Store
	logger *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(store repositories.Store, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{store: store, logger: logger}
}

// Run executes all seeders. A missing admin configuration is not an error.
func (s *Seeder) Run(ctx context.Context, admin AdminConfig) error {
	created, err := s.SeedAdmin(ctx, admin)
	switch {
	case errors.Is(err, ErrAdminSeedSkipped):
		s.logger.Debug("admin seeder skipped", zap.Error(err))
		return nil
	case err != nil:
		return err
	case created:
		s.logger.Info("admin user created", zap.String("email", admin.Email))
	}
	return nil
}

// SeedAdmin creates the admin account if no user has that email yet.
// It reports whether a user was created.
func (s *Seeder) SeedAdmin(ctx context.Context, admin AdminConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		return false, ErrAdminSeedSkipped
	}

	exists, err := s.store.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}

	if !password.ValidatePassword(admin.Password) {
		return false, fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", password.MinLength)
	}
	hashed, err := password.Hash(admin.Password)
	if err != nil {
		return false, err
	}

	user := &models.User{
		AuthIdentity: "admin_" + uuid.NewString(),
		Name:         admin.Name,
		Email:        email,
		Phone:        admin.Phone,
		Password:     hashed,
		Role:         domain.RoleAdmin,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
