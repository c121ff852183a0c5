package user

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	List(ctx context.Context) ([]Summary, error)
	Permissions(u *User) PermissionsResponse
	EmploymentOn(ctx context.Context, userID int64, date time.Time) (*EmploymentResponse, error)
}

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

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		h.Logger.Error("GetCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// GetMyPermissions handles GET /users/me/permissions
func (h *Handler) GetMyPermissions(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		h.Logger.Error("GetMyPermissions: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.Permissions(u))
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("ListUsers: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

// GetEmployment handles GET /users/{id}/employment?date=YYYY-MM-DD
func (h *Handler) GetEmployment(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("GetEmployment: invalid user ID", "id", userIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	date := time.Now().In(h.Location)
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err = dates.Parse(raw, h.Location)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
			return
		}
	}

	resp, err := h.Service.EmploymentOn(r.Context(), userID, date)
	if err != nil {
		h.Logger.Error("GetEmployment: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
