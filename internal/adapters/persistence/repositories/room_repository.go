package repositories

import (
	"context"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/core/domain"

	"gorm.io/gorm"
)

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepository) GetByID(ctx context.Context, id uint) (*models.Room, error) {
	return first[models.Room](r.db.WithContext(ctx), "id = ?", id)
}

// GetByIDForUpdate gets a room and locks the row until the transaction ends
func (r *roomRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Room, error) {
	return first[models.Room](forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *roomRepository) GetByNumber(ctx context.Context, number string) (*models.Room, error) {
	return first[models.Room](r.db.WithContext(ctx), "number = ?", number)
}

func (r *roomRepository) List(ctx context.Context) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.db.WithContext(ctx).Order("number ASC").Find(&rooms).Error
	return rooms, err
}

func (r *roomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *roomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, id).Error
}

// ExistsByNumber checks whether another room already uses number
func (r *roomRepository) ExistsByNumber(ctx context.Context, number string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Room{}).Where("number = ?", number)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *roomRepository) CountByStatus(ctx context.Context, status domain.RoomStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
