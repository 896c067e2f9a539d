package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/core/domain"
	"kost-management/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TenantService manages the tenant directory
type TenantService struct {
	store  repositories.Store
	logger *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(store repositories.Store, logger *zap.Logger) *TenantService {
	return &TenantService{store: store, logger: orNop(logger)}
}

// RegisterTenantInput represents tenant registration input.
// Password is optional when an admin creates the tenant.
type RegisterTenantInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	RoomNumber string `json:"room_number"`
}

// TenantRegistration is a newly created tenant and the room they moved into
type TenantRegistration struct {
	User *models.User `json:"user"`
	Room *models.Room `json:"room"`
}

// TenantSummary is a tenant row in the admin directory
type TenantSummary struct {
	*models.UserResponse
	RoomNumber string `json:"room_number,omitempty"`
}

// List lists tenants with their room numbers
func (s *TenantService) List(ctx context.Context, offset, limit int) ([]*TenantSummary, int64, error) {
	users, total, err := s.store.Users().List(ctx, domain.RoleTenant, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	rooms, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, 0, err
	}
	numbers := make(map[uint]string, len(rooms))
	for _, r := range rooms {
		numbers[r.ID] = r.Number
	}

	result := make([]*TenantSummary, 0, len(users))
	for _, u := range users {
		summary := &TenantSummary{UserResponse: u.ToResponse()}
		if u.RoomID != nil {
			summary.RoomNumber = numbers[*u.RoomID]
		}
		result = append(result, summary)
	}
	return result, total, nil
}

// Get returns a tenant by ID
func (s *TenantService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrTenantNotFound)
	}
	if user.Role != domain.RoleTenant {
		return nil, domain.ErrTenantNotFound
	}
	return user, nil
}

// Register is tenant self-registration: the account is created and the
// room assigned in one transaction.
func (s *TenantService) Register(ctx context.Context, input *RegisterTenantInput) (*TenantRegistration, error) {
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrWeakPassword
	}
	return s.createWithRoom(ctx, input, "local_"+uuid.NewString())
}

// CreateByAdmin creates a tenant on their behalf. Without a password the
// account gets a random one and cannot log in until it is reset.
func (s *TenantService) CreateByAdmin(ctx context.Context, input *RegisterTenantInput) (*TenantRegistration, error) {
	if input.Password == "" {
		input.Password = uuid.NewString()
	} else if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrWeakPassword
	}
	return s.createWithRoom(ctx, input, "manual_"+uuid.NewString())
}

func (s *TenantService) createWithRoom(ctx context.Context, input *RegisterTenantInput, identity string) (*TenantRegistration, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := strings.TrimSpace(input.Phone)
	if name == "" || email == "" || phone == "" || input.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	number, err := normalizeRoomNumber(input.RoomNumber)
	if err != nil {
		return nil, err
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	result := &TenantRegistration{}
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		found, err := tx.Rooms().GetByNumber(ctx, number)
		if err != nil {
			return notFoundAs(err, domain.ErrRoomNotFound)
		}
		room, err := tx.Rooms().GetByIDForUpdate(ctx, found.ID)
		if err != nil {
			return notFoundAs(err, domain.ErrRoomNotFound)
		}
		if room.IsOccupied() {
			return domain.ErrRoomOccupied
		}

		exists, err := tx.Users().ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrEmailAlreadyExists
		}

		user := &models.User{
			AuthIdentity: identity,
			Name:         name,
			Email:        email,
			Phone:        phone,
			Password:     hashed,
			Role:         domain.RoleTenant,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrEmailAlreadyExists
			}
			return err
		}

		if err := assignRoom(ctx, tx, room, user.ID); err != nil {
			return err
		}
		user.RoomID = &room.ID

		result.User = user
		result.Room = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant registered",
		zap.Uint("user_id", result.User.ID),
		zap.String("room", result.Room.Number),
		zap.String("identity", identity),
	)
	return result, nil
}
