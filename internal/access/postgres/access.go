package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-portal/internal/access"
	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

type AccessRepository struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) access.RepositoryAPI {
	return &AccessRepository{db: db}
}

func (r *AccessRepository) GetUser(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *AccessRepository) ListDepartments(ctx context.Context) ([]*departmentDatamodel.Department, error) {
	var departments []*departmentDatamodel.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *AccessRepository) GetDepartment(ctx context.Context, id int64) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *AccessRepository) UpdateDepartmentApps(ctx context.Context, id int64, allowedApps string) error {
	return r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("id = ?", id).
		Update("allowed_apps", allowedApps).Error
}

func (r *AccessRepository) ListApplications(ctx context.Context) ([]*applicationDatamodel.Application, error) {
	var apps []*applicationDatamodel.Application
	err := r.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&apps).Error
	return apps, err
}

func (r *AccessRepository) ListGrants(ctx context.Context, userID int64) ([]*userDatamodel.UserPrivilege, error) {
	var grants []*userDatamodel.UserPrivilege
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("application_id ASC").Find(&grants).Error
	return grants, err
}

func (r *AccessRepository) ReplaceGrants(ctx context.Context, userID int64, applicationIDs []int64, hasPrivilege bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&userDatamodel.UserPrivilege{}).Error; err != nil {
			return err
		}

		if len(applicationIDs) > 0 {
			rows := make([]userDatamodel.UserPrivilege, 0, len(applicationIDs))
			for _, id := range applicationIDs {
				rows = append(rows, userDatamodel.UserPrivilege{UserID: userID, ApplicationID: id})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		return tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			Update("has_privilege", hasPrivilege).Error
	})
}
