package broadcast_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/auth"
	"github.com/frahmantamala/employee-portal/internal/broadcast"
	broadcastPostgres "github.com/frahmantamala/employee-portal/internal/broadcast/postgres"
	broadcastDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/broadcast"
	"github.com/frahmantamala/employee-portal/internal/core/testdb"
)

var _ = Describe("Broadcast Service", func() {
	var (
		db      *gorm.DB
		service *broadcast.Service
		ctx     context.Context
		admin   *internal.User
		staff   *internal.User
	)

	insert := func(title, audience string, expiresAt *time.Time, deleted bool) int64 {
		row := &broadcastDatamodel.Broadcast{Title: title, Message: title, Priority: "normal", TargetAudience: audience, ExpiresAt: expiresAt}
		if deleted {
			at := time.Now().UTC().Add(-time.Minute)
			row.DeletedAt = &at
		}
		Expect(db.Create(row).Error).To(Succeed())
		return row.ID
	}

	titles := func(list []*broadcast.Broadcast) []string {
		out := make([]string, 0, len(list))
		for _, b := range list {
			out = append(out, b.Title)
		}
		return out
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		service = broadcast.NewService(broadcastPostgres.NewBroadcastRepository(db), newLogger())
		ctx = context.Background()
		admin = &internal.User{ID: 1, Role: "Admin"}
		staff = &internal.User{ID: 2, Role: "USER"}
	})

	Describe("Create", func() {
		It("defaults priority and audience", func() {
			b, err := service.Create(ctx, admin, broadcast.CreateBroadcastDTO{Title: "Maintenance", Message: "Tonight 22:00"})
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Priority).To(Equal(broadcast.PriorityNormal))
			Expect(b.TargetAudience).To(Equal(broadcast.AudienceAll))
			Expect(*b.CreatedBy).To(Equal(int64(1)))
		})

		It("rejects unknown priorities and past expiry", func() {
			_, err := service.Create(ctx, admin, broadcast.CreateBroadcastDTO{Title: "x", Message: "y", Priority: "critical"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))

			past := time.Now().Add(-time.Hour)
			_, err = service.Create(ctx, admin, broadcast.CreateBroadcastDTO{Title: "x", Message: "y", ExpiresAt: &past})
			_, ok = internal.IsAppError(err)
			Expect(ok).To(BeTrue())
		})

		It("allows staff holding broadcast.manage", func() {
			comms := &internal.User{ID: 3, Role: "COMMS", Permissions: []string{auth.PermissionBroadcastManage}}
			_, err := service.Create(ctx, comms, broadcast.CreateBroadcastDTO{Title: "Hello", Message: "World"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, staff, broadcast.CreateBroadcastDTO{Title: "Hello", Message: "World"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})
	})

	Describe("active and history", func() {
		BeforeEach(func() {
			future := time.Now().UTC().Add(time.Hour)
			past := time.Now().UTC().Add(-time.Hour)
			insert("live", "all", &future, false)
			insert("forever", "all", nil, false)
			insert("expired", "all", &past, false)
			insert("deleted", "all", nil, true)
			insert("admins only", "admin", nil, false)
		})

		It("shows only live broadcasts for the caller's audience", func() {
			active, err := service.Active(ctx, staff)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(active)).To(ConsistOf("live", "forever"))

			active, err = service.Active(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(active)).To(ConsistOf("live", "forever", "admins only"))
		})

		It("keeps expired and deleted broadcasts in history with labels", func() {
			history, err := service.History(ctx, staff)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(history)).To(ConsistOf("live", "forever", "expired", "deleted"))

			status := map[string]string{}
			for _, b := range history {
				status[b.Title] = b.Status
			}
			Expect(status["expired"]).To(Equal(broadcast.StatusExpired))
			Expect(status["deleted"]).To(Equal(broadcast.StatusDeleted))
			Expect(status["live"]).To(Equal(broadcast.StatusActive))
		})

		It("restricts the full list to admins", func() {
			_, err := service.List(ctx, staff)
			Expect(errors.Is(err, internal.ErrAdminRequired)).To(BeTrue())

			all, err := service.List(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(5))
		})
	})

	Describe("Delete", func() {
		It("soft deletes and tolerates repeats", func() {
			id := insert("notice", "all", nil, false)

			Expect(service.Delete(ctx, admin, id)).To(Succeed())
			Expect(service.Delete(ctx, admin, id)).To(Succeed())

			active, err := service.Active(ctx, staff)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())

			var row broadcastDatamodel.Broadcast
			Expect(db.First(&row, id).Error).To(Succeed())
			Expect(row.DeletedAt).NotTo(BeNil())
		})

		It("reports unknown ids", func() {
			Expect(errors.Is(service.Delete(ctx, admin, 404), broadcast.ErrBroadcastNotFound)).To(BeTrue())
		})
	})
})
