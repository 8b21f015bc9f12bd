package catalog_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/catalog"
	catalogPostgres "github.com/frahmantamala/employee-portal/internal/catalog/postgres"
	roleDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/role"
	"github.com/frahmantamala/employee-portal/internal/core/testdb"
)

var _ = Describe("Catalog Service", func() {
	var (
		service *catalog.Service
		stores  catalog.Stores
		ctx     context.Context
		admin   *internal.User
		staff   *internal.User
	)

	BeforeEach(func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		stores = catalogPostgres.NewStores(db)
		service = catalog.NewService(stores, newLogger())
		ctx = context.Background()
		admin = &internal.User{ID: 1, Role: "Admin"}
		staff = &internal.User{ID: 2, Role: "USER"}
	})

	Describe("departments", func() {
		It("normalizes codes and allowed apps", func() {
			d, err := service.CreateDepartment(ctx, admin, catalog.DepartmentDTO{
				Name: "Sales", Code: "sls", Color: "#1f6feb", AllowedApps: []string{"sgi_plus", "", "SGI_PLUS", "erp"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Code).To(Equal("SLS"))
			Expect(d.AllowedApps).To(Equal([]string{"SGI_PLUS", "ERP"}))
		})

		It("rejects bad colors and duplicate names", func() {
			_, err := service.CreateDepartment(ctx, admin, catalog.DepartmentDTO{Name: "Sales", Color: "blue"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))

			_, err = service.CreateDepartment(ctx, admin, catalog.DepartmentDTO{Name: "Sales"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateDepartment(ctx, admin, catalog.DepartmentDTO{Name: "sales"})
			appErr, ok = internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicate))
		})

		It("is admin only for writes", func() {
			_, err := service.CreateDepartment(ctx, staff, catalog.DepartmentDTO{Name: "Sales"})
			Expect(errors.Is(err, internal.ErrAdminRequired)).To(BeTrue())
		})

		It("reports missing rows on delete", func() {
			Expect(errors.Is(service.DeleteDepartment(ctx, admin, 99), catalog.ErrDepartmentNotFound)).To(BeTrue())
		})
	})

	Describe("applications", func() {
		It("keeps catalog order and allows updating the own code", func() {
			b, err := service.CreateApplication(ctx, admin, catalog.ApplicationDTO{Name: "ERP", Code: "erp", SortOrder: 2})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateApplication(ctx, admin, catalog.ApplicationDTO{Name: "Mail", Code: "MAIL", SortOrder: 1, Status: "inactive"})
			Expect(err).NotTo(HaveOccurred())

			apps, err := service.ListApplications(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(apps[0].Code).To(Equal("MAIL"))
			Expect(apps[0].Status).To(Equal("inactive"))
			Expect(apps[1].Status).To(Equal("active"))

			_, err = service.UpdateApplication(ctx, admin, b.ID, catalog.ApplicationDTO{Name: "ERP Cloud", Code: "ERP", SortOrder: 3})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects codes with spaces", func() {
			_, err := service.CreateApplication(ctx, admin, catalog.ApplicationDTO{Name: "Bad", Code: "my app"})
			_, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
		})
	})

	Describe("roles", func() {
		var adminRole *roleDatamodel.Role

		BeforeEach(func() {
			adminRole = &roleDatamodel.Role{Name: "Admin", Code: "ADMIN", Permissions: "[]", IsActive: true}
			Expect(stores.Roles.Create(ctx, adminRole)).To(Succeed())
		})

		It("protects system roles", func() {
			_, err := service.UpdateRole(ctx, admin, adminRole.ID, catalog.RoleDTO{Name: "Superuser", Code: "ADMIN"})
			Expect(errors.Is(err, catalog.ErrSystemRole)).To(BeTrue())

			inactive := false
			_, err = service.UpdateRole(ctx, admin, adminRole.ID, catalog.RoleDTO{Name: "Admin", Code: "ADMIN", IsActive: &inactive})
			Expect(errors.Is(err, catalog.ErrSystemRole)).To(BeTrue())

			Expect(errors.Is(service.DeleteRole(ctx, admin, adminRole.ID), catalog.ErrSystemRole)).To(BeTrue())
		})

		It("still lets system roles change description and permissions", func() {
			updated, err := service.UpdateRole(ctx, admin, adminRole.ID, catalog.RoleDTO{Name: "admin", Code: "admin", Description: "everything", Permissions: []string{"session.manage"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Description).To(Equal("everything"))
			Expect(updated.Permissions).To(ConsistOf("session.manage"))
			Expect(updated.IsActive).To(BeTrue())
			Expect(updated.IsSystem).To(BeTrue())
		})

		It("creates and deletes custom roles", func() {
			r, err := service.CreateRole(ctx, admin, catalog.RoleDTO{Name: "Comms", Code: "comms", Permissions: []string{"broadcast.manage"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Code).To(Equal("COMMS"))
			Expect(r.IsActive).To(BeTrue())
			Expect(service.DeleteRole(ctx, admin, r.ID)).To(Succeed())
		})
	})

	Describe("positions", func() {
		It("defaults new positions to active", func() {
			p, err := service.CreatePosition(ctx, admin, catalog.PositionDTO{Name: "Engineer"})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.IsActive).To(BeTrue())

			inactive := false
			p, err = service.UpdatePosition(ctx, admin, p.ID, catalog.PositionDTO{Name: "Engineer", IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.IsActive).To(BeFalse())
		})
	})

	Describe("menus", func() {
		It("hides admin-only menus from staff", func() {
			_, err := service.CreateMenu(ctx, admin, catalog.MenuDTO{Name: "Dashboard", Path: "/dashboard", SortOrder: 1})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateMenu(ctx, admin, catalog.MenuDTO{Name: "Sessions", Path: "/admin/sessions", SortOrder: 2, AdminOnly: true})
			Expect(err).NotTo(HaveOccurred())

			menus, err := service.ListMenus(ctx, staff)
			Expect(err).NotTo(HaveOccurred())
			Expect(menus).To(HaveLen(1))

			menus, err = service.ListMenus(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(menus).To(HaveLen(2))
		})

		It("validates paths and parents", func() {
			_, err := service.CreateMenu(ctx, admin, catalog.MenuDTO{Name: "Bad", Path: "relative"})
			_, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())

			missing := int64(77)
			_, err = service.CreateMenu(ctx, admin, catalog.MenuDTO{Name: "Child", Path: "/child", ParentID: &missing})
			Expect(errors.Is(err, catalog.ErrMenuNotFound)).To(BeTrue())
		})
	})
})
