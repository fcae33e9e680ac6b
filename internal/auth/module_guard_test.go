package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/migration-tracker/internal/auth"
)

var _ = Describe("Module Guard", func() {
	var (
		guard   *auth.ModuleGuard
		handler http.Handler
		reached bool
	)

	guardLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	BeforeEach(func() {
		guard = auth.NewModuleGuard(guardLogger)
		reached = false
		handler = guard.RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		}))
	})

	request := func(user *auth.UserContext) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if user != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	It("should pass admins through", func() {
		rec := request(&auth.UserContext{UserID: 1, Role: "admin"})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
	})

	It("should reject members even with every grant bit set", func() {
		rec := request(&auth.UserContext{
			UserID: 2,
			Role:   "member",
			Grants: []auth.Grant{{
				ModuleName: "application-portfolio",
				CanView:    true, CanCreate: true, CanEdit: true, CanSave: true, CanDelete: true,
			}},
		})
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(reached).To(BeFalse())
	})

	It("should reject unauthenticated requests", func() {
		rec := request(nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(reached).To(BeFalse())
	})
})
