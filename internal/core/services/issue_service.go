package services

import (
	"context"
	"strings"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/core/domain"

	"go.uber.org/zap"
)

// IssueService tracks tenant complaints
type IssueService struct {
	store  repositories.Store
	logger *zap.Logger
}

// NewIssueService creates a new issue service
func NewIssueService(store repositories.Store, logger *zap.Logger) *IssueService {
	return &IssueService{store: store, logger: orNop(logger)}
}

// CreateIssueInput represents issue creation input
type CreateIssueInput struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Priority    domain.IssuePriority `json:"priority"`
}

// Create files an issue for the tenant's room
func (s *IssueService) Create(ctx context.Context, actor domain.Actor, input *CreateIssueInput) (*models.Issue, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, domain.ErrIssueTitleRequired
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.ErrInvalidIssuePriority
	}

	tenant, err := s.store.Users().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrTenantNotFound)
	}
	if tenant.RoomID == nil {
		return nil, domain.ErrTenantNoRoom
	}

	issue := &models.Issue{
		TenantID:    tenant.ID,
		RoomID:      tenant.RoomID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      domain.IssueOpen,
	}
	if err := s.store.Issues().Create(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("issue reported", zap.Uint("issue_id", issue.ID), zap.Uint("tenant_id", tenant.ID))
	return issue, nil
}

// List returns every issue for admins and the caller's own issues for tenants
func (s *IssueService) List(ctx context.Context, actor domain.Actor, offset, limit int) ([]*models.Issue, int64, error) {
	var tenantID *uint
	if !actor.IsAdmin() {
		tenantID = ptr(actor.UserID)
	}
	return s.store.Issues().List(ctx, tenantID, offset, limit)
}

// UpdateStatus moves an issue to any status. resolved_at is set on entering
// resolved and cleared on leaving it.
func (s *IssueService) UpdateStatus(ctx context.Context, id uint, status domain.IssueStatus) (*models.Issue, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidIssueStatus
	}

	issue, err := s.store.Issues().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrIssueNotFound)
	}

	switch {
	case status == domain.IssueResolved && issue.Status != domain.IssueResolved:
		issue.ResolvedAt = ptr(time.Now())
	case status != domain.IssueResolved:
		issue.ResolvedAt = nil
	}
	issue.Status = status

	if err := s.store.Issues().Update(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}
