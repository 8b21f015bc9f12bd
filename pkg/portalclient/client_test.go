package portalclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-portal/pkg/portalclient"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

type fakePortal struct {
	mu       sync.Mutex
	requests []recordedRequest
	handlers map[string]func(w http.ResponseWriter)
}

func (f *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	raw, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: body})
	handler, ok := f.handlers[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		writeEnvelope(w, http.StatusNotFound, false, "not found", nil, "NOT_FOUND")
		return
	}
	handler(w)
}

func (f *fakePortal) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func (f *fakePortal) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data interface{}, code string) {
	body := map[string]interface{}{"success": success, "message": message}
	if data != nil {
		body["data"] = data
	}
	if code != "" {
		body["error"] = map[string]string{"code": code, "message": message}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var _ = Describe("Client", func() {
	var (
		portal   *fakePortal
		server   *httptest.Server
		identity *portalclient.IdentitySession
		notifier *portalclient.Notifier
		events   []portalclient.SessionExpired
		client   *portalclient.Client
		ctx      context.Context
	)

	loginOK := func(sessionID int64) func(http.ResponseWriter) {
		return func(w http.ResponseWriter) {
			writeEnvelope(w, http.StatusOK, true, "Login successful", map[string]interface{}{
				"id": 2, "name": "Sam", "email": "staff@x.com", "role": "USER",
				"department": "Sales", "token": "tok-2", "user_type": "user", "session_id": sessionID,
			}, "")
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		portal = &fakePortal{handlers: map[string]func(http.ResponseWriter){}}
		server = httptest.NewServer(portal)
		identity = portalclient.NewIdentitySession(nil, nil)
		notifier = portalclient.NewNotifier()
		events = nil
		notifier.Subscribe(func(e portalclient.SessionExpired) { events = append(events, e) })
		logger := slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelError}))
		client = portalclient.NewClient(portalclient.Config{BaseURL: server.URL, AppName: "portal"}, identity, notifier, logger)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Login", func() {
		It("normalizes the email and caches the identity", func() {
			portal.handlers["POST /users/login"] = loginOK(41)

			result, err := client.Login(ctx, "  Staff@X.com ", "pw", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.SessionID).To(Equal(int64(41)))

			Expect(portal.last().Body["email"]).To(Equal("staff@x.com"))
			Expect(identity.Token()).To(Equal("tok-2"))
			Expect(identity.UserEmail()).To(Equal("staff@x.com"))
			Expect(identity.RememberedEmail()).To(Equal("staff@x.com"))
			Expect(portal.paths()).To(Equal([]string{"POST /users/login"}))
		})

		It("registers a session when the server did not open one", func() {
			portal.handlers["POST /users/login"] = loginOK(0)
			portal.handlers["POST /sessions"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusCreated, true, "Session created", map[string]interface{}{"id": 55}, "")
			}

			result, err := client.Login(ctx, "staff@x.com", "pw", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.SessionID).To(Equal(int64(55)))
			Expect(portal.last().Auth).To(Equal("Bearer tok-2"))
			Expect(identity.RememberedEmail()).To(BeEmpty())
		})

		It("still logs in when registering the session fails", func() {
			portal.handlers["POST /users/login"] = loginOK(0)
			portal.handlers["POST /sessions"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusInternalServerError, false, "boom", nil, "INTERNAL_ERROR")
			}

			result, err := client.Login(ctx, "staff@x.com", "pw", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.SessionID).To(BeZero())
			Expect(identity.IsAuthenticated()).To(BeTrue())
		})

		It("drops the token when the identity cannot be cached", func() {
			storage := newFlakyStorage()
			storage.failSet[portalclient.KeyUser] = true
			identity = portalclient.NewIdentitySession(storage, nil)
			logger := slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelError}))
			client = portalclient.NewClient(portalclient.Config{BaseURL: server.URL, AppName: "portal"}, identity, notifier, logger)
			portal.handlers["POST /users/login"] = loginOK(0)
			portal.handlers["POST /sessions"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusCreated, true, "created", map[string]interface{}{"id": 31}, "")
			}

			_, err := client.Login(ctx, "staff@x.com", "secret", false)
			Expect(err).To(HaveOccurred())
			_, hasToken := storage.Get(portalclient.KeyToken)
			Expect(hasToken).To(BeFalse())
			Expect(identity.IsAuthenticated()).To(BeFalse())
		})

		It("fails before registering a session when the token cannot be cached", func() {
			storage := newFlakyStorage()
			storage.failSet[portalclient.KeyToken] = true
			identity = portalclient.NewIdentitySession(storage, nil)
			logger := slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelError}))
			client = portalclient.NewClient(portalclient.Config{BaseURL: server.URL, AppName: "portal"}, identity, notifier, logger)
			portal.handlers["POST /users/login"] = loginOK(0)

			_, err := client.Login(ctx, "staff@x.com", "secret", false)
			Expect(err).To(MatchError(ContainSubstring("failed to cache token")))
			Expect(portal.paths()).To(Equal([]string{"POST /users/login"}))
		})

		It("returns bad credentials without raising a timeout", func() {
			portal.handlers["POST /users/login"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusUnauthorized, false, "invalid email or password", nil, "INVALID_CREDENTIALS")
			}

			_, err := client.Login(ctx, "staff@x.com", "bad", false)
			var apiErr *portalclient.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Status).To(Equal(http.StatusUnauthorized))
			Expect(apiErr.Code).To(Equal("INVALID_CREDENTIALS"))
			Expect(events).To(BeEmpty())
			Expect(identity.IsAuthenticated()).To(BeFalse())
		})
	})

	Describe("session termination", func() {
		BeforeEach(func() {
			Expect(identity.Save("tok-2", "user", "staff@x.com", portalclient.UserSnapshot{ID: 2})).To(Succeed())
		})

		It("forces a logout when the last own session is removed", func() {
			portal.handlers["DELETE /sessions/41"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusOK, true, "Session terminated", map[string]interface{}{
					"session_id": 41, "deleted": true, "remaining_sessions": 0,
				}, "")
			}

			result, err := client.TerminateOwnSession(ctx, 41)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Deleted).To(BeTrue())
			Expect(events).To(Equal([]portalclient.SessionExpired{{Reason: portalclient.ReasonForceLogout}}))
		})

		It("stays logged in while other sessions remain", func() {
			portal.handlers["DELETE /sessions/41"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusOK, true, "Session terminated", map[string]interface{}{
					"session_id": 41, "deleted": true, "remaining_sessions": 2,
				}, "")
			}

			_, err := client.TerminateOwnSession(ctx, 41)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(BeEmpty())
		})

		It("surfaces admin termination errors once", func() {
			portal.handlers["DELETE /sessions/9"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusForbidden, false, "admin role required", nil, "FORBIDDEN")
			}

			_, err := client.TerminateSession(ctx, 9)
			Expect(err).To(HaveOccurred())
			Expect(portal.paths()).To(HaveLen(1))
			Expect(events).To(BeEmpty())
		})

		It("raises a session timeout on a rejected token", func() {
			portal.handlers["DELETE /sessions/9"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusUnauthorized, false, "session terminated", nil, "SESSION_TERMINATED")
			}

			_, err := client.TerminateSession(ctx, 9)
			Expect(err).To(HaveOccurred())
			Expect(events).To(Equal([]portalclient.SessionExpired{{Reason: portalclient.ReasonSessionTimeout}}))
		})
	})

	Describe("Logout", func() {
		It("clears local state even when the server call fails", func() {
			Expect(identity.Save("tok-2", "user", "staff@x.com", portalclient.UserSnapshot{ID: 2})).To(Succeed())
			portal.handlers["POST /users/logout"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusInternalServerError, false, "boom", nil, "INTERNAL_ERROR")
			}

			Expect(client.Logout(ctx)).To(Equal(portalclient.LoginPath))
			Expect(identity.IsAuthenticated()).To(BeFalse())
			Expect(portal.paths()).To(ContainElement("POST /users/logout"))
		})

		It("does not raise the overlay when the session is already gone", func() {
			overlay := portalclient.NewOverlay(identity)
			overlay.Attach(notifier)
			Expect(identity.Save("tok-2", "user", "staff@x.com", portalclient.UserSnapshot{ID: 2})).To(Succeed())
			portal.handlers["POST /users/logout"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusUnauthorized, false, "Session has been terminated", nil, "SESSION_TERMINATED")
			}

			Expect(client.Logout(ctx)).To(Equal(portalclient.LoginPath))
			visible, _ := overlay.Visible()
			Expect(visible).To(BeFalse())
			Expect(events).To(BeEmpty())
			Expect(identity.IsAuthenticated()).To(BeFalse())
		})
	})

	Describe("ToggleDepartmentApp", func() {
		var state *portalclient.State[[]portalclient.DepartmentPermissions]

		BeforeEach(func() {
			Expect(identity.Save("tok-1", "admin", "a@x.com", portalclient.UserSnapshot{ID: 1})).To(Succeed())
			state = portalclient.NewState([]portalclient.DepartmentPermissions{
				{ID: 1, Name: "Sales", Code: "SALES", AllowedApps: []string{"CRM"}},
				{ID: 2, Name: "Finance", Code: "FIN", AllowedApps: []string{"ERP"}},
			})
		})

		It("keeps the new value when the server accepts it", func() {
			portal.handlers["PATCH /departments/1/permissions/HR"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusOK, true, "Permissions updated", nil, "")
			}

			Expect(client.ToggleDepartmentApp(ctx, state, 1, "HR", true)).To(Succeed())
			Expect(state.Get()[0].AllowedApps).To(Equal([]string{"CRM", "HR"}))
			Expect(state.Get()[1].AllowedApps).To(Equal([]string{"ERP"}))
			Expect(portal.last().Body["enabled"]).To(BeTrue())
		})

		It("rolls back when the server rejects it", func() {
			portal.handlers["PATCH /departments/1/permissions/CRM"] = func(w http.ResponseWriter) {
				writeEnvelope(w, http.StatusInternalServerError, false, "boom", nil, "INTERNAL_ERROR")
			}

			Expect(client.ToggleDepartmentApp(ctx, state, 1, "CRM", false)).NotTo(Succeed())
			Expect(state.Get()[0].AllowedApps).To(Equal([]string{"CRM"}))
		})
	})
})

var _ = Describe("WithOptimisticUpdate", func() {
	It("shows the applied value while the commit runs", func() {
		state := portalclient.NewState(1)
		var during int
		err := portalclient.WithOptimisticUpdate(state,
			func(v int) int { return v + 1 },
			func() error { during = state.Get(); return errors.New("nope") },
		)
		Expect(err).To(MatchError("nope"))
		Expect(during).To(Equal(2))
		Expect(state.Get()).To(Equal(1))
	})
})
