package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-portal/internal/catalog"
	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	menuDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/menu"
	positionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/position"
	roleDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/role"
)

// Store is a gorm-backed catalog table.
type Store[T any] struct {
	db      *gorm.DB
	orderBy string
	columns map[string]bool
}

// NewStore allows FindBy only on the listed columns.
func NewStore[T any](db *gorm.DB, orderBy string, lookupColumns ...string) *Store[T] {
	columns := make(map[string]bool, len(lookupColumns))
	for _, c := range lookupColumns {
		columns[c] = true
	}
	return &Store[T]{db: db, orderBy: orderBy, columns: columns}
}

// NewStores wires every catalog table.
func NewStores(db *gorm.DB) catalog.Stores {
	return catalog.Stores{
		Departments:  NewStore[departmentDatamodel.Department](db, "name ASC", "name"),
		Applications: NewStore[applicationDatamodel.Application](db, "sort_order ASC, id ASC", "code"),
		Roles:        NewStore[roleDatamodel.Role](db, "id ASC", "code"),
		Positions:    NewStore[positionDatamodel.Position](db, "name ASC", "name"),
		Menus:        NewStore[menuDatamodel.Menu](db, "sort_order ASC, id ASC"),
	}
}

func (s *Store[T]) List(ctx context.Context) ([]*T, error) {
	var rows []*T
	if err := s.db.WithContext(ctx).Order(s.orderBy).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store[T]) Get(ctx context.Context, id int64) (*T, error) {
	var row T
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (s *Store[T]) FindBy(ctx context.Context, column, value string) (*T, error) {
	if !s.columns[column] {
		return nil, errors.New("lookup column not allowed: " + column)
	}
	var row T
	err := s.db.WithContext(ctx).Where("LOWER("+column+") = LOWER(?)", value).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (s *Store[T]) Create(ctx context.Context, row *T) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *Store[T]) Update(ctx context.Context, row *T) error {
	return s.db.WithContext(ctx).Save(row).Error
}

func (s *Store[T]) Delete(ctx context.Context, id int64) (bool, error) {
	var row T
	result := s.db.WithContext(ctx).Delete(&row, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
