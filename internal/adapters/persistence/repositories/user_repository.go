package repositories

import (
	"context"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/core/domain"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx), "id = ?", id)
}

// GetByIDForUpdate locks the user row until the transaction ends
func (r *userRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

// GetByEmail expects a lower-cased email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](r.db.WithContext(ctx), "email = ?", email)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SetRoom sets or, with a nil roomID, clears the user's room
func (r *userRepository) SetRoom(ctx context.Context, userID uint, roomID *uint) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("room_id", roomID).Error
}

func (r *userRepository) List(ctx context.Context, role domain.Role, offset, limit int) ([]*models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

// ListTenantsWithRoom returns the tenants invoice generation bills
func (r *userRepository) ListTenantsWithRoom(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND room_id IS NOT NULL", domain.RoleTenant).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.count(ctx, "email = ?", email)
	return n > 0, err
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return r.count(ctx, "role = ?", role)
}

func (r *userRepository) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where(query, args...).Count(&n).Error
	return n, err
}
