package permission_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/workforce-attendance/internal/permission"
)

type actorKey struct{}

func actorFromContext(ctx context.Context) (permission.Actor, bool) {
	h, ok := ctx.Value(actorKey{}).(*holder)
	if !ok {
		return nil, false
	}
	return h, true
}

var _ = Describe("RBACAuthorization", func() {
	var (
		rbac *permission.RBACAuthorization
		next http.Handler
	)

	serve := func(mw func(http.Handler) http.Handler, h *holder) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if h != nil {
			req = req.WithContext(context.WithValue(req.Context(), actorKey{}, h))
		}
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		rbac = permission.NewRBACAuthorization(permission.NewResolver(newCatalog()), actorFromContext, logger)
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	It("should reject requests without an actor", func() {
		rec := serve(rbac.Require("timesheets.owns", permission.ActionRead), nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should pass requests with the required permission", func() {
		rec := serve(rbac.Require("timesheets.owns", permission.ActionRead), &holder{id: 1, roles: []string{"employee"}})
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})

	It("should forbid requests without the required permission", func() {
		rec := serve(rbac.Require("timesheets.others", permission.ActionApprove), &holder{id: 1, roles: []string{"employee"}})
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("should support any, all, module and section checks", func() {
		manager := &holder{id: 2, roles: []string{"manager"}}
		Expect(serve(rbac.RequireAny(
			permission.Require("timesheets.owns", permission.ActionCreate),
			permission.Require("timesheets.others", permission.ActionRead),
		), manager).Code).To(Equal(http.StatusNoContent))
		Expect(serve(rbac.RequireAll(
			permission.Require("timesheets.owns", permission.ActionCreate),
			permission.Require("timesheets.others", permission.ActionRead),
		), manager).Code).To(Equal(http.StatusForbidden))
		Expect(serve(rbac.RequireModule("attendance"), manager).Code).To(Equal(http.StatusNoContent))
		Expect(serve(rbac.RequireSection("runs"), manager).Code).To(Equal(http.StatusForbidden))
	})
})
