package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormUserRepository implements identity.UserRepository using GORM. The user
// table mirrors the external directory; this repository only reads it.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by its ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return model.ToDomain(), nil
}

// FindByGroup finds every user holding a directory group. Group membership
// lives in the jsonb groups column.
func (r *GormUserRepository) FindByGroup(ctx context.Context, group string) ([]identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).
		Where("groups @> ?", `["`+group+`"]`).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]identity.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].ToDomain())
	}
	return users, nil
}

// Ensure GormUserRepository implements identity.UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
