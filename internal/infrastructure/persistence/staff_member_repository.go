package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormStaffMemberRepository implements identity.StaffMemberRepository using GORM
type GormStaffMemberRepository struct {
	db *gorm.DB
}

// NewGormStaffMemberRepository creates a new GormStaffMemberRepository
func NewGormStaffMemberRepository(db *gorm.DB) *GormStaffMemberRepository {
	return &GormStaffMemberRepository{db: db}
}

// FindByID finds a staff member by its ID
func (r *GormStaffMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.StaffMember, error) {
	var model models.StaffMemberModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "staff member")
	}
	return model.ToDomain(), nil
}

// FindByUser finds every membership of one user, active or not
func (r *GormStaffMemberRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]identity.StaffMember, error) {
	var rows []models.StaffMemberModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	members := make([]identity.StaffMember, 0, len(rows))
	for i := range rows {
		members = append(members, *rows[i].ToDomain())
	}
	return members, nil
}

// FindActiveByOrganization finds the active staff set of an organization
func (r *GormStaffMemberRepository) FindActiveByOrganization(ctx context.Context, organizationID uuid.UUID) ([]identity.StaffMember, error) {
	var rows []models.StaffMemberModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND active = ?", organizationID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	members := make([]identity.StaffMember, 0, len(rows))
	for i := range rows {
		members = append(members, *rows[i].ToDomain())
	}
	return members, nil
}

// Save creates or updates a staff member
func (r *GormStaffMemberRepository) Save(ctx context.Context, member *identity.StaffMember) error {
	model := models.StaffMemberModelFromDomain(member)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormStaffMemberRepository implements identity.StaffMemberRepository
var _ identity.StaffMemberRepository = (*GormStaffMemberRepository)(nil)
