package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/config"
	"kost-management/internal/core/domain"
	"kost-management/internal/pkg/jwt"
	"kost-management/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	store   repositories.Store
	tenants *TenantService
	cfg     *config.Config
	logger  *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store repositories.Store, tenants *TenantService, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:   store,
		tenants: tenants,
		cfg:     cfg,
		logger:  orNop(logger),
	}
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *models.UserResponse `json:"user"`
	AccessToken string               `json:"access_token"`
	ExpiresIn   int                  `json:"expires_in"`
}

// Login checks email and password and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	user.LastSignedInAt = &now
	if err := s.store.Users().Update(ctx, user); err != nil {
		s.logger.Warn("failed to update last sign in", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return s.issue(user)
}

// Register creates a tenant with a room and logs them in
func (s *AuthService) Register(ctx context.Context, input *RegisterTenantInput) (*AuthResponse, error) {
	reg, err := s.tenants.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.issue(reg.User)
}

// Me returns the current user
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrInvalidCredentials)
	}
	return user.ToResponse(), nil
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		string(user.Role),
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:        user.ToResponse(),
		AccessToken: token,
		ExpiresIn:   s.cfg.JWT.AccessTokenMins * 60,
	}, nil
}
