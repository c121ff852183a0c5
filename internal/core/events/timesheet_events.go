package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTimesheetSubmitted        = "timesheet.submitted"
	EventTypeTimesheetApproved         = "timesheet.approved"
	EventTypeTimesheetChangesRequested = "timesheet.changes_requested"
	EventTypeTimesheetRejected         = "timesheet.rejected"
	EventTypeTimesheetResubmitted      = "timesheet.resubmitted"
	EventTypeTimesheetDeleted          = "timesheet.deleted"
)

// TimesheetEventTypes lists every workflow event, in publication order of a
// typical lifecycle.
var TimesheetEventTypes = []string{
	EventTypeTimesheetSubmitted,
	EventTypeTimesheetChangesRequested,
	EventTypeTimesheetResubmitted,
	EventTypeTimesheetApproved,
	EventTypeTimesheetRejected,
	EventTypeTimesheetDeleted,
}

// TimesheetEvent records a workflow transition on a single timesheet.
type TimesheetEvent struct {
	BaseEvent
	TimesheetID int64  `json:"timesheet_id"`
	UserID      int64  `json:"user_id"`
	ActorID     int64  `json:"actor_id"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Note        string `json:"note,omitempty"`
}

func NewTimesheetEvent(eventType string, timesheetID, userID, actorID int64, date, status, note string) *TimesheetEvent {
	return &TimesheetEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"timesheet_id": timesheetID,
				"user_id":      userID,
				"actor_id":     actorID,
				"date":         date,
				"status":       status,
				"note":         note,
			},
		},
		TimesheetID: timesheetID,
		UserID:      userID,
		ActorID:     actorID,
		Date:        date,
		Status:      status,
		Note:        note,
	}
}
