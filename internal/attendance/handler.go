package attendance

import (
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

// GetReport handles GET /users/{id}/attendance?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	acting, ok := user.FromContext(r.Context())
	if !ok {
		h.Logger.Error("GetReport: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userIDStr := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("GetReport: invalid user ID", "id", userIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	fromStr, toStr := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if appErr := validation.ValidateDateRange(fromStr, toStr); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}
	from, _ := dates.Parse(fromStr, h.Location)
	to, _ := dates.Parse(toStr, h.Location)

	report, err := h.Service.Report(r.Context(), acting, userID, from, to)
	if err != nil {
		h.Logger.Error("GetReport: service error", "error", err, "user_id", userID, "actor_id", acting.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}
