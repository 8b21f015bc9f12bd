package portalclient_test

import (
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-portal/pkg/portalclient"
)

// flakyStorage fails writes for chosen keys and, optionally, every delete.
type flakyStorage struct {
	*portalclient.MemoryStorage
	failSet    map[string]bool
	failDelete bool
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{MemoryStorage: portalclient.NewMemoryStorage(), failSet: map[string]bool{}}
}

func (f *flakyStorage) Set(key, value string) error {
	if f.failSet[key] {
		return errors.New("disk full")
	}
	return f.MemoryStorage.Set(key, value)
}

func (f *flakyStorage) Delete(keys ...string) error {
	if f.failDelete {
		return errors.New("read-only file system")
	}
	return f.MemoryStorage.Delete(keys...)
}

var _ = Describe("IdentitySession", func() {
	var (
		persistent *portalclient.MemoryStorage
		session    *portalclient.MemoryStorage
		identity   *portalclient.IdentitySession
	)

	BeforeEach(func() {
		persistent = portalclient.NewMemoryStorage()
		session = portalclient.NewMemoryStorage()
		identity = portalclient.NewIdentitySession(persistent, session)
	})

	It("saves and reads back a login", func() {
		Expect(identity.Save("tok", "admin", "a@x.com", portalclient.UserSnapshot{ID: 1, Name: "Ann", SessionID: 9})).To(Succeed())

		Expect(identity.IsAuthenticated()).To(BeTrue())
		Expect(identity.IsAdmin()).To(BeTrue())
		Expect(identity.UserEmail()).To(Equal("a@x.com"))
		u, ok := identity.User()
		Expect(ok).To(BeTrue())
		Expect(u.Name).To(Equal("Ann"))
		Expect(u.SessionID).To(Equal(int64(9)))
	})

	It("treats a corrupt user snapshot as absent", func() {
		Expect(persistent.Set(portalclient.KeyUser, "{not json")).To(Succeed())
		_, ok := identity.User()
		Expect(ok).To(BeFalse())
	})

	It("resets the admin welcome flag on a new login", func() {
		Expect(identity.MarkAdminWelcomeShown()).To(Succeed())
		Expect(identity.AdminWelcomeShown()).To(BeTrue())

		Expect(identity.Save("tok", "admin", "a@x.com", portalclient.UserSnapshot{})).To(Succeed())
		Expect(identity.AdminWelcomeShown()).To(BeFalse())
	})

	It("clears identity but keeps remembered email and sidebar state", func() {
		Expect(identity.Save("tok", "user", "s@x.com", portalclient.UserSnapshot{ID: 2})).To(Succeed())
		Expect(identity.Remember("s@x.com", true)).To(Succeed())
		Expect(identity.SetSidebarCollapsed(true)).To(Succeed())
		Expect(identity.MarkAdminWelcomeShown()).To(Succeed())

		Expect(identity.Clear()).To(Succeed())

		Expect(identity.IsAuthenticated()).To(BeFalse())
		Expect(identity.UserType()).To(BeEmpty())
		Expect(identity.UserEmail()).To(BeEmpty())
		_, ok := identity.User()
		Expect(ok).To(BeFalse())
		Expect(identity.AdminWelcomeShown()).To(BeFalse())
		Expect(identity.RememberedEmail()).To(Equal("s@x.com"))
		Expect(identity.SidebarCollapsed()).To(BeTrue())
	})

	It("forgets the remembered email when remember is off", func() {
		Expect(identity.Remember("s@x.com", true)).To(Succeed())
		Expect(identity.Remember("s@x.com", false)).To(Succeed())
		Expect(identity.RememberedEmail()).To(BeEmpty())
	})

	Describe("FileStorage", func() {
		It("persists values across reopen", func() {
			path := filepath.Join(GinkgoT().TempDir(), "identity.json")
			store, err := portalclient.OpenFileStorage(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Set(portalclient.KeyToken, "abc")).To(Succeed())
			Expect(store.Set(portalclient.KeyUserType, "user")).To(Succeed())
			Expect(store.Delete(portalclient.KeyUserType)).To(Succeed())

			reopened, err := portalclient.OpenFileStorage(path)
			Expect(err).NotTo(HaveOccurred())
			v, ok := reopened.Get(portalclient.KeyToken)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("abc"))
			_, ok = reopened.Get(portalclient.KeyUserType)
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("Overlay", func() {
	var (
		identity *portalclient.IdentitySession
		notifier *portalclient.Notifier
		overlay  *portalclient.Overlay
	)

	BeforeEach(func() {
		identity = portalclient.NewIdentitySession(nil, nil)
		notifier = portalclient.NewNotifier()
		overlay = portalclient.NewOverlay(identity)
	})

	It("registers a single listener however often it is attached", func() {
		overlay.Attach(notifier)
		overlay.Attach(notifier)
		Expect(notifier.Subscribers()).To(Equal(1))

		overlay.Detach()
		Expect(notifier.Subscribers()).To(Equal(0))
	})

	It("keeps the first reason while visible", func() {
		overlay.Attach(notifier)
		notifier.Publish(portalclient.SessionExpired{Reason: portalclient.ReasonForceLogout})
		notifier.Publish(portalclient.SessionExpired{Reason: portalclient.ReasonSessionTimeout})

		visible, reason := overlay.Visible()
		Expect(visible).To(BeTrue())
		Expect(reason).To(Equal(portalclient.ReasonForceLogout))
		Expect(overlay.Message()).To(ContainSubstring("another device"))
	})

	It("clears identity and hides on login again", func() {
		Expect(identity.Save("tok", "user", "s@x.com", portalclient.UserSnapshot{})).To(Succeed())
		overlay.Attach(notifier)
		notifier.Publish(portalclient.SessionExpired{Reason: portalclient.ReasonSessionTimeout})

		path, err := overlay.LoginAgain()
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(portalclient.LoginPath))
		visible, _ := overlay.Visible()
		Expect(visible).To(BeFalse())
		Expect(identity.IsAuthenticated()).To(BeFalse())
	})

	It("stays up when the cached identity cannot be cleared", func() {
		storage := newFlakyStorage()
		identity = portalclient.NewIdentitySession(storage, nil)
		overlay = portalclient.NewOverlay(identity)
		Expect(identity.Save("tok", "user", "s@x.com", portalclient.UserSnapshot{})).To(Succeed())
		overlay.Attach(notifier)
		notifier.Publish(portalclient.SessionExpired{Reason: portalclient.ReasonSessionTimeout})

		storage.failDelete = true
		path, err := overlay.LoginAgain()
		Expect(err).To(HaveOccurred())
		Expect(path).To(BeEmpty())
		visible, reason := overlay.Visible()
		Expect(visible).To(BeTrue())
		Expect(reason).To(Equal(portalclient.ReasonSessionTimeout))

		storage.failDelete = false
		path, err = overlay.LoginAgain()
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(portalclient.LoginPath))
		Expect(identity.IsAuthenticated()).To(BeFalse())
	})
})
