package access_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/access"
	applicationDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/application"
	departmentDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/user"
)

type MockRepository struct {
	users        map[int64]*userDatamodel.User
	departments  []*departmentDatamodel.Department
	applications []*applicationDatamodel.Application
	grants       map[int64][]int64
	shouldFail   bool
	failError    error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:  make(map[int64]*userDatamodel.User),
		grants: make(map[int64][]int64),
	}
}

func (m *MockRepository) SetShouldFail(fail bool, err error) {
	m.shouldFail = fail
	m.failError = err
}

func (m *MockRepository) GetUser(ctx context.Context, userID int64) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.users[userID], nil
}

func (m *MockRepository) ListDepartments(ctx context.Context) ([]*departmentDatamodel.Department, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.departments, nil
}

func (m *MockRepository) GetDepartment(ctx context.Context, id int64) (*departmentDatamodel.Department, error) {
	for _, d := range m.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) UpdateDepartmentApps(ctx context.Context, id int64, allowedApps string) error {
	if m.shouldFail {
		return m.failError
	}
	for _, d := range m.departments {
		if d.ID == id {
			d.AllowedApps = allowedApps
		}
	}
	return nil
}

func (m *MockRepository) ListApplications(ctx context.Context) ([]*applicationDatamodel.Application, error) {
	return m.applications, nil
}

func (m *MockRepository) ListGrants(ctx context.Context, userID int64) ([]*userDatamodel.UserPrivilege, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var rows []*userDatamodel.UserPrivilege
	for _, appID := range m.grants[userID] {
		rows = append(rows, &userDatamodel.UserPrivilege{UserID: userID, ApplicationID: appID})
	}
	return rows, nil
}

func (m *MockRepository) ReplaceGrants(ctx context.Context, userID int64, applicationIDs []int64, hasPrivilege bool) error {
	if m.shouldFail {
		return m.failError
	}
	m.grants[userID] = applicationIDs
	m.users[userID].HasPrivilege = hasPrivilege
	return nil
}

var _ = Describe("Access Service", func() {
	var (
		repo    *MockRepository
		service *access.Service
		ctx     context.Context
		admin   *internal.User
		staff   *internal.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		repo.users[1] = &userDatamodel.User{ID: 1, Name: "Root", Role: "Admin", Status: "active"}
		repo.users[2] = &userDatamodel.User{ID: 2, Name: "Sam", Role: "USER", Department: "Sales", Status: "active"}
		repo.departments = []*departmentDatamodel.Department{
			{ID: 10, Name: "Sales", Code: "SLS", AllowedApps: "SGI_PLUS"},
		}
		repo.applications = []*applicationDatamodel.Application{
			{ID: 100, Code: "SGI_PLUS", Name: "SGI+", Category: "sales", Status: "active"},
			{ID: 101, Code: "ERP", Name: "ERP", Category: "other", Status: "active"},
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = access.NewService(repo, logger)
		admin = &internal.User{ID: 1, Role: "Admin"}
		staff = &internal.User{ID: 2, Role: "USER"}
	})

	Describe("UserApplications", func() {
		It("resolves the caller's own dashboard", func() {
			dashboard, err := service.UserApplications(ctx, staff, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(dashboard.UserType).To(Equal("user"))
			Expect(dashboard.Applications).To(HaveLen(1))
			Expect(dashboard.Sections).To(HaveLen(1))
			Expect(dashboard.Sections[0].Label).To(Equal("sales"))
		})

		It("gives admins the full catalog", func() {
			dashboard, err := service.UserApplications(ctx, admin, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(dashboard.UserType).To(Equal("admin"))
			Expect(dashboard.Applications).To(HaveLen(2))
		})

		It("forbids reading another user's dashboard", func() {
			_, err := service.UserApplications(ctx, staff, 1)
			Expect(errors.Is(err, internal.ErrNotOwner)).To(BeTrue())
		})

		It("reports missing users", func() {
			_, err := service.UserApplications(ctx, admin, 99)
			Expect(errors.Is(err, access.ErrUserNotFound)).To(BeTrue())
		})

		It("surfaces repository failures", func() {
			repo.SetShouldFail(true, errors.New("db down"))
			_, err := service.UserApplications(ctx, admin, 2)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ReplacePrivileges", func() {
		It("requires an admin", func() {
			_, err := service.ReplacePrivileges(ctx, staff, 2, access.ReplacePrivilegesDTO{ApplicationIDs: []int64{101}})
			Expect(errors.Is(err, internal.ErrAdminRequired)).To(BeTrue())
		})

		It("stores a deduplicated grant set and makes the grant visible", func() {
			res, err := service.ReplacePrivileges(ctx, admin, 2, access.ReplacePrivilegesDTO{ApplicationIDs: []int64{101, 101}})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ApplicationIDs).To(Equal([]int64{101}))
			Expect(res.HasPrivilege).To(BeTrue())

			dashboard, err := service.UserApplications(ctx, staff, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(dashboard.Applications).To(HaveLen(2))
			Expect(dashboard.Sections[1].Label).To(Equal("Sales Department"))
		})

		It("honours an explicit has_privilege flag", func() {
			flag := false
			res, err := service.ReplacePrivileges(ctx, admin, 2, access.ReplacePrivilegesDTO{ApplicationIDs: []int64{101}, HasPrivilege: &flag})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.HasPrivilege).To(BeFalse())
		})

		It("rejects unknown applications", func() {
			_, err := service.ReplacePrivileges(ctx, admin, 2, access.ReplacePrivilegesDTO{ApplicationIDs: []int64{555}})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("Privileges", func() {
		It("lets users read their own grants", func() {
			repo.grants[2] = []int64{101}
			res, err := service.Privileges(ctx, staff, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ApplicationIDs).To(Equal([]int64{101}))
		})
	})

	Describe("Department permissions", func() {
		It("builds the matrix", func() {
			matrix, err := service.DepartmentPermissions(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(matrix.Departments).To(HaveLen(1))
			Expect(matrix.Departments[0].Permissions).To(Equal(map[string]bool{"SGI_PLUS": true, "ERP": false}))
		})

		It("toggles an application on and off", func() {
			perms, err := service.SetDepartmentPermission(ctx, admin, 10, "erp", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms.AllowedApps).To(Equal([]string{"SGI_PLUS", "ERP"}))
			Expect(repo.departments[0].AllowedApps).To(Equal(`["SGI_PLUS","ERP"]`))

			perms, err = service.SetDepartmentPermission(ctx, admin, 10, "SGI_PLUS", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms.AllowedApps).To(Equal([]string{"ERP"}))
		})

		It("is a no-op when enabling an application twice", func() {
			perms, err := service.SetDepartmentPermission(ctx, admin, 10, "SGI_PLUS", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms.AllowedApps).To(Equal([]string{"SGI_PLUS"}))
		})

		It("rejects unknown departments and applications", func() {
			_, err := service.SetDepartmentPermission(ctx, admin, 99, "ERP", true)
			Expect(errors.Is(err, access.ErrDepartmentNotFound)).To(BeTrue())

			_, err = service.SetDepartmentPermission(ctx, admin, 10, "NOPE", true)
			Expect(errors.Is(err, access.ErrApplicationNotFound)).To(BeTrue())
		})

		It("requires an admin", func() {
			_, err := service.DepartmentPermissions(ctx, staff)
			Expect(errors.Is(err, internal.ErrAdminRequired)).To(BeTrue())
		})
	})
})
