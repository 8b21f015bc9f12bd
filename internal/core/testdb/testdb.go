// Package testdb opens throwaway SQLite databases for repository and handler tests.
package testdb

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	broadcastDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/broadcast"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	menuDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/menu"
	positionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/position"
	roleDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/role"
	sessionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/session"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

// Models lists every table the portal owns.
func Models() []interface{} {
	return []interface{}{
		&userDatamodel.User{},
		&userDatamodel.UserPrivilege{},
		&departmentDatamodel.Department{},
		&applicationDatamodel.Application{},
		&roleDatamodel.Role{},
		&positionDatamodel.Position{},
		&menuDatamodel.Menu{},
		&sessionDatamodel.Session{},
		&sessionDatamodel.LoginHistory{},
		&broadcastDatamodel.Broadcast{},
	}
}

// Open returns a migrated in-memory database pinned to a single connection,
// since every new SQLite connection to :memory: starts empty.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return db, nil
}
