package repositories

import (
	"context"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/core/domain"

	"gorm.io/gorm"
)

type issueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new issue repository
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *issueRepository) GetByID(ctx context.Context, id uint) (*models.Issue, error) {
	return first[models.Issue](r.db.WithContext(ctx), "id = ?", id)
}

// List lists issues, newest first. A nil tenantID lists every tenant's issues.
func (r *issueRepository) List(ctx context.Context, tenantID *uint, offset, limit int) ([]*models.Issue, int64, error) {
	var issues []*models.Issue
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Issue{})
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&issues).Error; err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (r *issueRepository) Update(ctx context.Context, issue *models.Issue) error {
	return r.db.WithContext(ctx).Save(issue).Error
}

func (r *issueRepository) CountByStatus(ctx context.Context, status domain.IssueStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Issue{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
