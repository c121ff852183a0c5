package events

import (
	"context"
	"log/slog"
)

// LogTimesheetEvents returns a handler that writes every timesheet workflow
// transition to the audit log.
func LogTimesheetEvents(logger *slog.Logger) Handler {
	return func(ctx context.Context, event Event) error {
		ev, ok := event.(*TimesheetEvent)
		if !ok {
			logger.WarnContext(ctx, "unexpected event payload",
				"event_type", event.EventType(),
				"event_id", event.EventID())
			return nil
		}

		logger.InfoContext(ctx, "timesheet transition",
			"event_type", ev.EventType(),
			"event_id", ev.EventID(),
			"timesheet_id", ev.TimesheetID,
			"user_id", ev.UserID,
			"actor_id", ev.ActorID,
			"date", ev.Date,
			"status", ev.Status,
			"note", ev.Note)
		return nil
	}
}
