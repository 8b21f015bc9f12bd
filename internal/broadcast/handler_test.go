package broadcast_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-portal/internal"
	"github.com/frahmantamala/employee-portal/internal/broadcast"
	broadcastPostgres "github.com/frahmantamala/employee-portal/internal/broadcast/postgres"
	"github.com/frahmantamala/employee-portal/internal/core/testdb"
	"github.com/frahmantamala/employee-portal/internal/transport"
)

var _ = Describe("Broadcast Handler Integration", func() {
	var (
		router chi.Router
		actor  *internal.User
	)

	BeforeEach(func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		service := broadcast.NewService(broadcastPostgres.NewBroadcastRepository(db), newLogger())
		handler := broadcast.NewHandler(transport.NewBaseHandler(newLogger()), service)

		actor = &internal.User{ID: 1, Role: "admin"}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), actor)))
			})
		})
		router.Post("/broadcasts", handler.CreateBroadcast)
		router.Get("/broadcasts", handler.ListBroadcasts)
		router.Get("/broadcasts/active", handler.ActiveBroadcasts)
		router.Get("/broadcasts/history", handler.BroadcastHistory)
		router.Delete("/broadcasts/{id}", handler.DeleteBroadcast)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) []broadcast.Broadcast {
		var body struct {
			Data []broadcast.Broadcast `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Data
	}

	It("publishes, shows and retires a broadcast", func() {
		rec := do(http.MethodPost, "/broadcasts", `{"title":"Payroll","message":"Slips are out","target_audience":"staff"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var created struct {
			Data broadcast.Broadcast `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())

		actor = &internal.User{ID: 2, Role: "USER"}
		Expect(decode(do(http.MethodGet, "/broadcasts/active", ""))).To(HaveLen(1))
		Expect(do(http.MethodGet, "/broadcasts", "").Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodDelete, fmt.Sprintf("/broadcasts/%d", created.Data.ID), "").Code).To(Equal(http.StatusForbidden))

		actor = &internal.User{ID: 1, Role: "admin"}
		Expect(decode(do(http.MethodGet, "/broadcasts/active", ""))).To(BeEmpty())
		Expect(do(http.MethodDelete, fmt.Sprintf("/broadcasts/%d", created.Data.ID), "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodDelete, fmt.Sprintf("/broadcasts/%d", created.Data.ID), "").Code).To(Equal(http.StatusOK))

		history := decode(do(http.MethodGet, "/broadcasts/history", ""))
		Expect(history).To(HaveLen(1))
		Expect(history[0].Status).To(Equal(broadcast.StatusDeleted))
	})

	It("rejects an expiry in the past", func() {
		past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
		rec := do(http.MethodPost, "/broadcasts", fmt.Sprintf(`{"title":"Old","message":"news","expires_at":%q}`, past))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 404 for unknown broadcasts", func() {
		Expect(do(http.MethodDelete, "/broadcasts/999", "").Code).To(Equal(http.StatusNotFound))
	})
})
