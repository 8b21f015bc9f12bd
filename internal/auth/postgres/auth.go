package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-portal/internal/auth"
	"github.com/frahmantamala/employee-portal/internal/catalog"
	roleDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

// GetUserByEmail expects an already lower-cased email and compares case-insensitively.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetRolePermissions looks the role up by code or name; unknown roles have no tags.
func (r *Repository) GetRolePermissions(ctx context.Context, role string) ([]string, error) {
	var row roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Where("(UPPER(code) = ? OR UPPER(name) = ?) AND is_active = ?", strings.ToUpper(role), strings.ToUpper(role), true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return catalog.ParsePermissions(row.Permissions), nil
}
