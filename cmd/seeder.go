package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/employee-portal/internal/access"
	"github.com/frahmantamala/employee-portal/internal/auth"
	"github.com/frahmantamala/employee-portal/internal/catalog"
	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	menuDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/menu"
	positionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/position"
	roleDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference data and an admin user",
	Long:  `Seed roles, departments, applications, positions, menus and the first admin account. Existing rows are left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		created, err := seed(cmd.Context(), db, seedAdminEmail, seedAdminPassword, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		fmt.Printf("Seeding finished, %d rows created\n", created)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@portal.local", "email of the seeded admin account")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "password123", "password of the seeded admin account")
}

// seed inserts reference rows that do not exist yet and reports how many it created.
func seed(ctx context.Context, db *gorm.DB, adminEmail, adminPassword string, bcryptCost int) (int, error) {
	now := time.Now().UTC()
	created := 0

	ensure := func(row interface{}, where string, args ...interface{}) error {
		var count int64
		if err := db.WithContext(ctx).Model(row).Where(where, args...).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			return err
		}
		created++
		return nil
	}

	roles := []roleDatamodel.Role{
		{Name: "Administrator", Code: catalog.RoleAdmin, Description: "Full access", Permissions: catalog.FormatPermissions([]string{auth.PermissionUserManage, auth.PermissionSessionManage, auth.PermissionBroadcastManage}), IsActive: true},
		{Name: "User", Code: catalog.RoleUser, Description: "Default employee role", Permissions: catalog.FormatPermissions(nil), IsActive: true},
		{Name: "Communications", Code: "COMMS", Description: "Publishes announcements", Permissions: catalog.FormatPermissions([]string{auth.PermissionBroadcastManage}), IsActive: true},
	}
	for i := range roles {
		roles[i].CreatedAt, roles[i].UpdatedAt = now, now
		if err := ensure(&roles[i], "code = ?", roles[i].Code); err != nil {
			return created, fmt.Errorf("seed role %s: %w", roles[i].Code, err)
		}
	}

	applications := []applicationDatamodel.Application{
		{Name: "HR Portal", Code: "HR", URL: "https://hr.portal.local", Icon: "users", Category: "hr", SortOrder: 1},
		{Name: "Finance", Code: "FINANCE", URL: "https://finance.portal.local", Icon: "wallet", Category: "finance", SortOrder: 2},
		{Name: "CRM", Code: "CRM", URL: "https://crm.portal.local", Icon: "handshake", Category: "sales", SortOrder: 3},
		{Name: "Helpdesk", Code: "HELPDESK", URL: "https://help.portal.local", Icon: "life-buoy", Category: "general", SortOrder: 4},
	}
	for i := range applications {
		applications[i].Status = "active"
		applications[i].CreatedAt, applications[i].UpdatedAt = now, now
		if err := ensure(&applications[i], "code = ?", applications[i].Code); err != nil {
			return created, fmt.Errorf("seed application %s: %w", applications[i].Code, err)
		}
	}

	departments := []departmentDatamodel.Department{
		{Name: "Human Resources", Code: "HRD", Color: "#2563eb", AllowedApps: access.FormatAllowedApps([]string{"HR", "HELPDESK"})},
		{Name: "Finance", Code: "FIN", Color: "#16a34a", AllowedApps: access.FormatAllowedApps([]string{"FINANCE", "HELPDESK"})},
		{Name: "Sales", Code: "SALES", Color: "#ea580c", AllowedApps: access.FormatAllowedApps([]string{"CRM", "HELPDESK"})},
	}
	for i := range departments {
		departments[i].CreatedAt, departments[i].UpdatedAt = now, now
		if err := ensure(&departments[i], "name = ?", departments[i].Name); err != nil {
			return created, fmt.Errorf("seed department %s: %w", departments[i].Name, err)
		}
	}

	for _, name := range []string{"Staff", "Supervisor", "Manager", "Director"} {
		row := positionDatamodel.Position{Name: name, IsActive: true, CreatedAt: now, UpdatedAt: now}
		if err := ensure(&row, "name = ?", name); err != nil {
			return created, fmt.Errorf("seed position %s: %w", name, err)
		}
	}

	menus := []menuDatamodel.Menu{
		{Name: "Dashboard", Path: "/dashboard", Icon: "home", SortOrder: 1},
		{Name: "Profile", Path: "/profile", Icon: "user", SortOrder: 2},
		{Name: "Users", Path: "/admin/users", Icon: "users", SortOrder: 10, AdminOnly: true},
		{Name: "Sessions", Path: "/admin/sessions", Icon: "activity", SortOrder: 11, AdminOnly: true},
		{Name: "Broadcasts", Path: "/admin/broadcasts", Icon: "megaphone", SortOrder: 12, AdminOnly: true},
	}
	for i := range menus {
		menus[i].IsActive = true
		menus[i].CreatedAt, menus[i].UpdatedAt = now, now
		if err := ensure(&menus[i], "path = ?", menus[i].Path); err != nil {
			return created, fmt.Errorf("seed menu %s: %w", menus[i].Path, err)
		}
	}

	hash, err := auth.HashPassword(adminPassword, bcryptCost)
	if err != nil {
		return created, fmt.Errorf("hash admin password: %w", err)
	}
	admin := userDatamodel.User{
		Name:         "Portal Admin",
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         catalog.RoleAdmin,
		Department:   "Human Resources",
		Position:     "Director",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := ensure(&admin, "email = ?", adminEmail); err != nil {
		return created, fmt.Errorf("seed admin user: %w", err)
	}

	return created, nil
}
