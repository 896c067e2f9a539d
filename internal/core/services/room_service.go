package services

import (
	"context"
	"errors"
	"strings"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/core/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoomService manages the room registry and room assignment
type RoomService struct {
	store  repositories.Store
	logger *zap.Logger
}

// NewRoomService creates a new room service
func NewRoomService(store repositories.Store, logger *zap.Logger) *RoomService {
	return &RoomService{store: store, logger: orNop(logger)}
}

// CreateRoomInput represents room creation input
type CreateRoomInput struct {
	Number      string `json:"number"`
	MonthlyRent int64  `json:"monthly_rent"`
}

// UpdateRoomInput represents a partial room update. Occupancy is changed
// only through assignment and release.
type UpdateRoomInput struct {
	Number      *string `json:"number"`
	MonthlyRent *int64  `json:"monthly_rent"`
}

// Availability is the public answer to "can I register for this room"
type Availability struct {
	Available bool         `json:"available"`
	Message   string       `json:"message,omitempty"`
	Room      *models.Room `json:"room,omitempty"`
}

func normalizeRoomNumber(number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" || len(number) > 10 {
		return "", domain.ErrInvalidRoomNumber
	}
	return number, nil
}

// List returns all rooms ordered by number
func (s *RoomService) List(ctx context.Context) ([]*models.Room, error) {
	return s.store.Rooms().List(ctx)
}

// Get returns a room by ID
func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	room, err := s.store.Rooms().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrRoomNotFound)
	}
	return room, nil
}

// Create adds a vacant room
func (s *RoomService) Create(ctx context.Context, input *CreateRoomInput) (*models.Room, error) {
	number, err := normalizeRoomNumber(input.Number)
	if err != nil {
		return nil, err
	}
	if input.MonthlyRent < 0 {
		return nil, domain.ErrInvalidRent
	}

	exists, err := s.store.Rooms().ExistsByNumber(ctx, number, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrRoomNumberTaken
	}

	room := &models.Room{
		Number:      number,
		MonthlyRent: input.MonthlyRent,
		Status:      domain.RoomVacant,
	}
	if err := s.store.Rooms().Create(ctx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrRoomNumberTaken
		}
		return nil, err
	}

	s.logger.Info("room created", zap.Uint("room_id", room.ID), zap.String("number", room.Number))
	return room, nil
}

// Update changes a room's number or rent. Existing invoices keep their amount.
func (s *RoomService) Update(ctx context.Context, id uint, input *UpdateRoomInput) (*models.Room, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Number != nil {
		number, err := normalizeRoomNumber(*input.Number)
		if err != nil {
			return nil, err
		}
		exists, err := s.store.Rooms().ExistsByNumber(ctx, number, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrRoomNumberTaken
		}
		room.Number = number
	}
	if input.MonthlyRent != nil {
		if *input.MonthlyRent < 0 {
			return nil, domain.ErrInvalidRent
		}
		room.MonthlyRent = *input.MonthlyRent
	}

	if err := s.store.Rooms().Update(ctx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrRoomNumberTaken
		}
		return nil, err
	}
	return room, nil
}

// Delete removes a vacant room. Occupied rooms are refused.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		room, err := tx.Rooms().GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, domain.ErrRoomNotFound)
		}
		if room.IsOccupied() || room.TenantID != nil {
			return domain.ErrRoomDeleteOccupied
		}
		return tx.Rooms().Delete(ctx, id)
	})
}

// CheckAvailability reports whether a room number exists and is vacant
func (s *RoomService) CheckAvailability(ctx context.Context, number string) (*Availability, error) {
	number = strings.TrimSpace(number)
	room, err := s.store.Rooms().GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Availability{Available: false, Message: "room number not found"}, nil
		}
		return nil, err
	}
	if room.IsOccupied() {
		return &Availability{Available: false, Message: "room is already occupied, contact the admin"}, nil
	}
	return &Availability{Available: true, Room: room}, nil
}

// AssignRoom moves a tenant without a room into a vacant room
func (s *RoomService) AssignRoom(ctx context.Context, roomID, tenantID uint) (*models.Room, error) {
	var room *models.Room
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.Rooms().GetByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, domain.ErrRoomNotFound)
		}
		room = locked
		return assignRoom(ctx, tx, room, tenantID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("room assigned", zap.Uint("room_id", roomID), zap.Uint("tenant_id", tenantID))
	return room, nil
}

// assignRoom links a locked room and a tenant inside tx
func assignRoom(ctx context.Context, tx repositories.Store, room *models.Room, tenantID uint) error {
	if room.IsOccupied() {
		return domain.ErrRoomOccupied
	}

	tenant, err := tx.Users().GetByIDForUpdate(ctx, tenantID)
	if err != nil {
		return notFoundAs(err, domain.ErrTenantNotFound)
	}
	if tenant.Role != domain.RoleTenant {
		return domain.ErrNotATenant
	}
	if tenant.RoomID != nil {
		return domain.ErrTenantHasRoom
	}

	room.Status = domain.RoomOccupied
	room.TenantID = &tenant.ID
	if err := tx.Rooms().Update(ctx, room); err != nil {
		return err
	}
	return tx.Users().SetRoom(ctx, tenant.ID, &room.ID)
}

// ReleaseRoom moves the tenant out and marks the room vacant
func (s *RoomService) ReleaseRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	var room *models.Room
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.Rooms().GetByIDForUpdate(ctx, roomID)
		if err != nil {
			return notFoundAs(err, domain.ErrRoomNotFound)
		}
		room = locked

		if room.TenantID != nil {
			if err := tx.Users().SetRoom(ctx, *room.TenantID, nil); err != nil {
				return err
			}
		}
		room.Status = domain.RoomVacant
		room.TenantID = nil
		return tx.Rooms().Update(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("room released", zap.Uint("room_id", roomID))
	return room, nil
}
