package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/core/testdb"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("Portal server", func() {
	var (
		db     *gorm.DB
		router *chi.Mux
		ctx    context.Context
	)

	call := func(method, path, token string, body interface{}) (int, envelope) {
		var reader *bytes.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		} else {
			reader = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.1.1.1:5000"
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var env envelope
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		return rec.Code, env
	}

	login := func(email, password string) (string, int64, int64) {
		status, env := call(http.MethodPost, "/api/users/login", "", map[string]string{"email": email, "password": password})
		Expect(status).To(Equal(http.StatusOK), string(env.Data))
		var data struct {
			ID        int64  `json:"id"`
			Token     string `json:"token"`
			SessionID int64  `json:"session_id"`
			UserType  string `json:"user_type"`
		}
		Expect(json.Unmarshal(env.Data, &data)).To(Succeed())
		Expect(data.SessionID).To(BeNumerically(">", 0))
		return data.Token, data.ID, data.SessionID
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		created, err := seed(ctx, db, "admin@portal.local", "password123", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeNumerically(">", 0))

		deps := &Dependencies{
			Config: &internal.Config{
				Server:   internal.ServerConfig{BasePath: "/api", Environment: "test", AllowedOrigins: "*"},
				Security: internal.SecurityConfig{JWTSecret: strings.Repeat("s", 32), AccessTokenDuration: time.Hour, BCryptCost: bcrypt.MinCost},
			},
			GormDB: db,
			SQLx:   sqlx.NewDb(sqlDB, "sqlite3"),
			Logger: slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelError})),
		}
		router = newRouter(deps)
	})

	It("seeds only once", func() {
		created, err := seed(ctx, db, "admin@portal.local", "password123", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeZero())
	})

	It("serves health and the openapi document", func() {
		status, _ := call(http.MethodGet, "/api/ping", "", nil)
		Expect(status).To(Equal(http.StatusOK))
		status, _ = call(http.MethodGet, "/api/health", "", nil)
		Expect(status).To(Equal(http.StatusOK))

		req := httptest.NewRequest(http.MethodGet, "/openapi.yml", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Employee Portal API"))
	})

	It("runs the session lifecycle end to end", func() {
		adminToken, _, _ := login("admin@portal.local", "password123")

		status, env := call(http.MethodPost, "/api/users", adminToken, map[string]string{
			"name": "Sam Staff", "email": "sam@portal.local", "password": "samsecret1",
			"role": "USER", "department": "Sales", "position": "Staff",
		})
		Expect(status).To(Equal(http.StatusCreated), string(env.Data))

		staffToken1, staffID, staffSession1 := login("SAM@portal.local ", "samsecret1")
		staffToken2, _, staffSession2 := login("sam@portal.local", "samsecret1")

		By("resolving the dashboard from the department defaults")
		status, env = call(http.MethodGet, fmt.Sprintf("/api/users/%d/applications", staffID), staffToken1, nil)
		Expect(status).To(Equal(http.StatusOK))
		var dashboard struct {
			Applications []struct {
				Code       string `json:"code"`
				Launchable bool   `json:"launchable"`
			} `json:"applications"`
		}
		Expect(json.Unmarshal(env.Data, &dashboard)).To(Succeed())
		var launchable []string
		for _, app := range dashboard.Applications {
			if app.Launchable {
				launchable = append(launchable, app.Code)
			}
		}
		Expect(launchable).To(ConsistOf("CRM", "HELPDESK"))

		By("keeping staff out of admin routes")
		status, _ = call(http.MethodGet, "/api/sessions", staffToken1, nil)
		Expect(status).To(Equal(http.StatusForbidden))

		status, env = call(http.MethodGet, "/api/sessions", adminToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		var list struct {
			Total int `json:"total"`
		}
		Expect(json.Unmarshal(env.Data, &list)).To(Succeed())
		Expect(list.Total).To(Equal(3))

		By("terminating a session from the admin console")
		status, env = call(http.MethodDelete, fmt.Sprintf("/api/sessions/%d", staffSession1), adminToken, nil)
		Expect(status).To(Equal(http.StatusOK))

		status, env = call(http.MethodGet, "/api/broadcasts/active", staffToken1, nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(env.Error.Code).To(Equal(string(internal.ErrCodeSessionTerminated)))

		status, env = call(http.MethodDelete, fmt.Sprintf("/api/sessions/%d", staffSession1), adminToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		var again struct {
			AlreadyGone bool `json:"already_gone"`
		}
		Expect(json.Unmarshal(env.Data, &again)).To(Succeed())
		Expect(again.AlreadyGone).To(BeTrue())

		By("ending the last own session")
		status, env = call(http.MethodDelete, fmt.Sprintf("/api/sessions/%d", staffSession2), staffToken2, nil)
		Expect(status).To(Equal(http.StatusOK))
		var last struct {
			RemainingSessions int `json:"remaining_sessions"`
			SessionExpired    *struct {
				Reason string `json:"reason"`
			} `json:"session_expired"`
		}
		Expect(json.Unmarshal(env.Data, &last)).To(Succeed())
		Expect(last.RemainingSessions).To(BeZero())
		Expect(last.SessionExpired).NotTo(BeNil())
		Expect(last.SessionExpired.Reason).To(Equal("force_logout"))

		By("keeping the activity after the sessions are gone")
		status, env = call(http.MethodGet, fmt.Sprintf("/api/login-history/user/%d", staffID), adminToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		var activity []struct {
			SessionID int64      `json:"session_id"`
			LogoutAt  *time.Time `json:"logout_at"`
		}
		Expect(json.Unmarshal(env.Data, &activity)).To(Succeed())
		Expect(activity).To(HaveLen(2))
		for _, entry := range activity {
			Expect(entry.LogoutAt).NotTo(BeNil())
		}
	})

	It("lets a communications role publish broadcasts", func() {
		adminToken, _, _ := login("admin@portal.local", "password123")
		status, _ := call(http.MethodPost, "/api/users", adminToken, map[string]string{
			"name": "Cora Comms", "email": "cora@portal.local", "password": "corasecret",
			"role": "COMMS", "department": "Human Resources",
		})
		Expect(status).To(Equal(http.StatusCreated))

		commsToken, _, _ := login("cora@portal.local", "corasecret")
		status, _ = call(http.MethodPost, "/api/broadcasts", commsToken, map[string]string{
			"title": "Maintenance", "message": "Portal down at 22:00", "target_audience": "staff",
		})
		Expect(status).To(Equal(http.StatusCreated))

		status, _ = call(http.MethodGet, "/api/broadcasts", commsToken, nil)
		Expect(status).To(Equal(http.StatusForbidden))
	})

	It("resets every password and lifts the change cooldown", func() {
		Expect(db.Exec("UPDATE users SET password_changed_at = ?", time.Now().UTC()).Error).To(Succeed())

		var out bytes.Buffer
		n, err := resetPasswords(ctx, db, "freshstart1", bcrypt.MinCost, &out)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(out.String()).To(ContainSubstring("admin@portal.local"))
		Expect(out.String()).To(ContainSubstring("1 of 1 users reset"))

		var changed int64
		Expect(db.Table("users").Where("password_changed_at IS NOT NULL").Count(&changed).Error).To(Succeed())
		Expect(changed).To(BeZero())

		login("admin@portal.local", "freshstart1")
	})

	It("rejects a reset to a short password", func() {
		_, err := resetPasswords(ctx, db, "short", bcrypt.MinCost, &bytes.Buffer{})
		Expect(err).To(HaveOccurred())
	})
})
