package rest_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/workforce-attendance/internal/auth"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/frahmantamala/workforce-attendance/internal/transport"
	"github.com/frahmantamala/workforce-attendance/internal/transport/middleware"
	"github.com/frahmantamala/workforce-attendance/internal/transport/openapi"
	"github.com/frahmantamala/workforce-attendance/internal/transport/rest"
	"github.com/frahmantamala/workforce-attendance/internal/user"
)

type userStore map[int64]*user.User

func (s userStore) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (s userStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range s {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s userStore) List(ctx context.Context) ([]*user.User, error) {
	out := make([]*user.User, 0, len(s))
	for _, id := range []int64{1, 2} {
		out = append(out, s[id])
	}
	return out, nil
}

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		sqlDB  *sql.DB
		tokens *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err = gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		catalog := permission.NewCatalog(
			[]permission.Definition{
				{ID: user.PermissionDirectory, ModuleID: "people", SectionID: "directory", Actions: []permission.Action{permission.ActionRead}},
			},
			[]permission.Role{
				{ID: "hr", Name: "HR", Grants: permission.Grants{
					user.PermissionDirectory: permission.NewActionSet(permission.ActionRead),
				}},
			},
		)
		resolver := permission.NewResolver(catalog)

		users := userStore{
			1: {ID: 1, Email: "employee@example.com", Name: "Employee", IsActive: true},
			2: {ID: 2, Email: "hr@example.com", Name: "HR", IsActive: true, RoleIDs: []string{"hr"}},
		}

		tokens = auth.NewJWTTokenGenerator("access-secret-access-secret-access", "refresh-secret-refresh-secret-refresh", time.Minute, time.Hour)
		base := transport.NewBaseHandler(lg)
		handlers := rest.Handlers{
			Auth: auth.NewHandler(base, auth.NewService(users, tokens, 10, lg)),
			User: user.NewHandler(base, user.NewService(users, resolver, time.UTC, lg), time.UTC),
		}

		doc, err := openapi.Load(context.Background(), "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
		validator, err := openapi.NewValidator(doc, rest.APIPrefix, lg)
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, sqlDB, handlers,
			permission.NewRBACAuthorization(resolver, user.ActorFromContext, lg),
			rest.RouterOptions{AllowedOrigins: "*", OpenAPIPath: "../../../api/openapi.yml", Validator: validator},
			lg)
	})

	AfterEach(func() {
		_ = sqlDB.Close()
	})

	get := func(path string, userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if userID != 0 {
			token, err := tokens.GenerateAccessToken(strconv.FormatInt(userID, 10), "")
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("answers ping and health with a request id", func() {
		rec := get("/api/v1/ping", 0)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(middleware.RequestIDHeader)).NotTo(BeEmpty())

		rec = get("/api/v1/health", 0)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var health rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &health)).To(Succeed())
		Expect(health.Status).To(Equal(rest.HealthHealthy))
	})

	It("reports unhealthy once the database is gone", func() {
		Expect(sqlDB.Close()).To(Succeed())

		rec := get("/api/v1/health", 0)
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(rec.Body.String()).To(ContainSubstring("database unreachable"))
	})

	It("serves the API document", func() {
		rec := get("/openapi.yml", 0)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Workforce Attendance API"))
	})

	It("requires a token for protected routes", func() {
		Expect(get("/api/v1/users/me", 0).Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns the current user", func() {
		rec := get("/api/v1/users/me", 1)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("employee@example.com"))
	})

	It("guards the directory by permission", func() {
		Expect(get("/api/v1/users", 1).Code).To(Equal(http.StatusForbidden))
		Expect(get("/api/v1/users", 2).Code).To(Equal(http.StatusOK))
		Expect(get("/api/v1/users/1/employment?date=2024-03-04", 2).Code).To(Equal(http.StatusOK))
	})

	It("rejects malformed parameters before the handler", func() {
		rec := get("/api/v1/users/abc/employment", 2)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("VALIDATION_FAILED"))
	})
})
