package timesheet

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/core/common/validation"
	"github.com/frahmantamala/workforce-attendance/internal/transport"
	"github.com/frahmantamala/workforce-attendance/internal/user"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Location *time.Location
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Location:    loc,
	}
}

func (h *Handler) actingUser(w http.ResponseWriter, r *http.Request, op string) (*user.User, bool) {
	acting, ok := user.FromContext(r.Context())
	if !ok || acting == nil {
		h.Logger.Error(op + ": user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return acting, true
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, op, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.Logger.Error(op+": invalid "+name, "value", raw)
		h.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func responses(list []*Timesheet) []Response {
	out := make([]Response, 0, len(list))
	for _, ts := range list {
		out = append(out, NewResponse(ts))
	}
	return out
}

// ListTimesheets handles GET /timesheets?user_id=&from=&to=
func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.actingUser(w, r, "ListTimesheets")
	if !ok {
		return
	}

	q := r.URL.Query()
	userID := acting.ID
	if raw := q.Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.Logger.Error("ListTimesheets: invalid user_id", "value", raw)
			h.WriteError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = id
	}

	if appErr := validation.ValidateDateRange(q.Get("from"), q.Get("to")); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}
	from, _ := dates.Parse(q.Get("from"), time.UTC)
	to, _ := dates.Parse(q.Get("to"), time.UTC)

	list, err := h.Service.List(r.Context(), acting, userID, dates.NewRange(from, &to))
	if err != nil {
		h.Logger.Error("ListTimesheets: service error", "error", err, "user_id", userID, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"timesheets": responses(list),
	})
}

func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.actingUser(w, r, "GetTimesheet")
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "GetTimesheet", "id")
	if !ok {
		return
	}

	ts, err := h.Service.Get(r.Context(), acting, id)
	if err != nil {
		h.Logger.Error("GetTimesheet: service error", "error", err, "timesheet_id", id, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewResponse(ts))
}

// GetActions handles GET /timesheets/{id}/actions
func (h *Handler) GetActions(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.actingUser(w, r, "GetActions")
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "GetActions", "id")
	if !ok {
		return
	}

	actions, err := h.Service.Actions(r.Context(), acting, id)
	if err != nil {
		h.Logger.Error("GetActions: service error", "error", err, "timesheet_id", id, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, actions)
}

// GetDayActions handles GET /users/{id}/timesheet-actions?date=YYYY-MM-DD and
// reports what the acting user may do with that user's timesheet for the day,
// whether or not one exists.
func (h *Handler) GetDayActions(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.actingUser(w, r, "GetDayActions")
	if !ok {
		return
	}
	userID, ok := h.idParam(w, r, "GetDayActions", "id")
	if !ok {
		return
	}

	date := dates.Today(time.Now(), h.Location)
	if raw := r.URL.Query().Get("date"); raw != "" {
		v := validation.NewValidator()
		v.Field("date", raw).Date()
		if appErr := v.Validate(); appErr != nil {
			h.HandleServiceError(w, appErr)
			return
		}
		date, _ = dates.Parse(raw, time.UTC)
	}

	actions, err := h.Service.DayActions(r.Context(), acting, userID, date)
	if err != nil {
		h.Logger.Error("GetDayActions: service error", "error", err, "user_id", userID, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, actions)
}

func (h *Handler) CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.actingUser(w, r, "CreateTimesheet")
	if !ok {
		return
	}

	var dto CreateTimesheetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateTimesheet: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ts, err := h.Service.Create(r.Context(), acting, dto)
	if err != nil {
		h.Logger.Error("CreateTimesheet: service error", "error", err, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateTimesheet: timesheet submitted",
		"timesheet_id", ts.ID,
		"user_id", ts.UserID,
		"actor_id", acting.ID,
		"total_minutes", ts.TotalMinutes)

	h.WriteJSON(w, http.StatusCreated, NewResponse(ts))
}

func (h *Handler) UpdateTimesheet(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.actingUser(w, r, "UpdateTimesheet")
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "UpdateTimesheet", "id")
	if !ok {
		return
	}

	var dto UpdateTimesheetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateTimesheet: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ts, err := h.Service.Update(r.Context(), acting, id, dto)
	if err != nil {
		h.Logger.Error("UpdateTimesheet: service error", "error", err, "timesheet_id", id, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewResponse(ts))
}

func (h *Handler) DeleteTimesheet(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.actingUser(w, r, "DeleteTimesheet")
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "DeleteTimesheet", "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), acting, id); err != nil {
		h.Logger.Error("DeleteTimesheet: service error", "error", err, "timesheet_id", id, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reviewFunc func(h *Handler, r *http.Request, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error)

// review decodes an optional note and runs one of the reviewer transitions.
func (h *Handler) review(op string, run reviewFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acting, ok := h.actingUser(w, r, op)
		if !ok {
			return
		}
		id, ok := h.idParam(w, r, op, "id")
		if !ok {
			return
		}

		var dto ReviewDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
			h.Logger.Error(op+": invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ts, err := run(h, r, acting, id, dto)
		if err != nil {
			h.Logger.Error(op+": service error", "error", err, "timesheet_id", id, "actor_id", acting.ID)
			h.HandleServiceError(w, err)
			return
		}

		h.Logger.Info(op+": timesheet reviewed", "timesheet_id", id, "status", ts.Status, "reviewer_id", acting.ID)
		h.WriteJSON(w, http.StatusOK, NewResponse(ts))
	}
}

// ApproveTimesheet handles PATCH /timesheets/{id}/approve
func (h *Handler) ApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	h.review("ApproveTimesheet", func(h *Handler, r *http.Request, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error) {
		return h.Service.Approve(r.Context(), acting, id, dto)
	})(w, r)
}

// RequestChanges handles PATCH /timesheets/{id}/request-changes
func (h *Handler) RequestChanges(w http.ResponseWriter, r *http.Request) {
	h.review("RequestChanges", func(h *Handler, r *http.Request, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error) {
		return h.Service.RequestChanges(r.Context(), acting, id, dto)
	})(w, r)
}

// RejectTimesheet handles PATCH /timesheets/{id}/reject
func (h *Handler) RejectTimesheet(w http.ResponseWriter, r *http.Request) {
	h.review("RejectTimesheet", func(h *Handler, r *http.Request, acting *user.User, id int64, dto ReviewDTO) (*Timesheet, error) {
		return h.Service.Reject(r.Context(), acting, id, dto)
	})(w, r)
}

// ResubmitTimesheet handles PATCH /timesheets/{id}/resubmit
func (h *Handler) ResubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	acting, ok := h.actingUser(w, r, "ResubmitTimesheet")
	if !ok {
		return
	}
	id, ok := h.idParam(w, r, "ResubmitTimesheet", "id")
	if !ok {
		return
	}

	ts, err := h.Service.Resubmit(r.Context(), acting, id)
	if err != nil {
		h.Logger.Error("ResubmitTimesheet: service error", "error", err, "timesheet_id", id, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewResponse(ts))
}
