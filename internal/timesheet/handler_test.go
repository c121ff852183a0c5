package timesheet_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/workforce-attendance/internal/employment"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	"github.com/frahmantamala/workforce-attendance/internal/transport"
	"github.com/frahmantamala/workforce-attendance/internal/user"
)

var _ = Describe("Handler", func() {
	var (
		router chi.Router
		users  map[int64]*user.User
	)

	BeforeEach(func() {
		hired := employment.History{{Status: employment.StatusActive, EffectiveDate: mustDay("2023-01-01")}}
		users = map[int64]*user.User{
			1: {ID: 1, EmploymentHistory: hired, Grants: grants(timesheet.PermissionOwns,
				permission.ActionRead, permission.ActionCreate, permission.ActionUpdate, permission.ActionDelete)},
			2: {ID: 2, EmploymentHistory: hired, Grants: grants(timesheet.PermissionOthers,
				permission.ActionRead, permission.ActionApprove, permission.ActionRequestChanges)},
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service := timesheet.NewService(newMockTimesheetRepository(), &mockUserRepository{users: users},
			&mockScheduleFinder{}, newResolver(), &recordingPublisher{}, time.UTC, logger)
		h := timesheet.NewHandler(transport.NewBaseHandler(logger), service, time.UTC)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id, err := strconv.ParseInt(r.Header.Get("X-User"), 10, 64); err == nil {
					r = r.WithContext(user.ContextWithUser(r.Context(), users[id]))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Get("/timesheets", h.ListTimesheets)
		router.Post("/timesheets", h.CreateTimesheet)
		router.Get("/timesheets/{id}", h.GetTimesheet)
		router.Put("/timesheets/{id}", h.UpdateTimesheet)
		router.Delete("/timesheets/{id}", h.DeleteTimesheet)
		router.Get("/timesheets/{id}/actions", h.GetActions)
		router.Patch("/timesheets/{id}/approve", h.ApproveTimesheet)
		router.Patch("/timesheets/{id}/request-changes", h.RequestChanges)
		router.Patch("/timesheets/{id}/resubmit", h.ResubmitTimesheet)
		router.Get("/users/{id}/timesheet-actions", h.GetDayActions)
	})

	do := func(method, target, actingID, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		if actingID != "" {
			req.Header.Set("X-User", actingID)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var out map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
		return out
	}

	create := func() {
		rec := do(http.MethodPost, "/timesheets", "1",
			`{"date":"2024-03-04","start_at":"2024-03-04T09:00:00Z","end_at":"2024-03-04T17:00:00Z"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
	}

	It("should require an authenticated user", func() {
		rec := do(http.MethodGet, "/timesheets/1", "", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should create a pending timesheet with its display", func() {
		rec := do(http.MethodPost, "/timesheets", "1",
			`{"date":"2024-03-04","start_at":"2024-03-04T09:00:00Z","end_at":"2024-03-04T17:00:00Z"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		body := decode(rec)
		Expect(body["date"]).To(Equal("2024-03-04"))
		Expect(body["status"]).To(Equal("pending"))
		Expect(body["total_minutes"]).To(BeNumerically("==", 480))
		Expect(body["display"]).To(HaveKeyWithValue("label", "Pending"))
	})

	It("should map a duplicate day to 409", func() {
		create()
		rec := do(http.MethodPost, "/timesheets", "1", `{"date":"2024-03-04"}`)
		Expect(rec.Code).To(Equal(http.StatusConflict))
	})

	It("should reject malformed bodies and ids", func() {
		Expect(do(http.MethodPost, "/timesheets", "1", `{`).Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/timesheets/abc", "1", "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodPost, "/timesheets", "1", `{"date":"March 4"}`).Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for an unknown timesheet", func() {
		Expect(do(http.MethodGet, "/timesheets/42", "1", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should list timesheets in a range", func() {
		create()
		rec := do(http.MethodGet, "/timesheets?from=2024-03-01&to=2024-03-31", "1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["timesheets"]).To(HaveLen(1))

		Expect(do(http.MethodGet, "/timesheets?from=2024-03-01", "1", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("should expose the acting user's actions", func() {
		create()
		rec := do(http.MethodGet, "/timesheets/1/actions", "2", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		body := decode(rec)
		Expect(body["can_approve"]).To(BeTrue())
		Expect(body["can_edit"]).To(BeFalse())
	})

	It("should expose day actions when no timesheet exists", func() {
		rec := do(http.MethodGet, "/users/1/timesheet-actions?date=2024-03-05", "1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["can_create"]).To(BeTrue())
	})

	It("should run the review workflow", func() {
		create()

		rec := do(http.MethodPatch, "/timesheets/1/approve", "1", "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		rec = do(http.MethodPatch, "/timesheets/1/request-changes", "2", `{"note":"missing lunch break"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["status"]).To(Equal("requires_modification"))

		rec = do(http.MethodPatch, "/timesheets/1/resubmit", "1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["status"]).To(Equal("pending"))

		rec = do(http.MethodPatch, "/timesheets/1/approve", "2", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["status"]).To(Equal("approved"))

		rec = do(http.MethodPatch, "/timesheets/1/approve", "2", "")
		Expect(rec.Code).To(Equal(http.StatusConflict))
	})

	It("should delete an owned pending timesheet", func() {
		create()
		Expect(do(http.MethodDelete, "/timesheets/1", "1", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/timesheets/1", "1", "").Code).To(Equal(http.StatusNotFound))
	})
})
