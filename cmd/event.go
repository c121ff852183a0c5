package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-attendance/internal/core/events"
	"github.com/frahmantamala/workforce-attendance/internal/timesheet"
	"github.com/frahmantamala/workforce-attendance/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the timesheet workflow events and the handlers subscribed to them`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample timesheet event",
	Long:  `Publish a sample timesheet event through the event bus and its audit log subscriber`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var (
	eventTimesheetID int64
	eventUserID      int64
	eventActorID     int64
	eventNote        string
)

// sampleStatus is the timesheet status left behind by each transition.
var sampleStatus = map[string]string{
	events.EventTypeTimesheetSubmitted:        string(timesheet.StatusPending),
	events.EventTypeTimesheetResubmitted:      string(timesheet.StatusPending),
	events.EventTypeTimesheetApproved:         string(timesheet.StatusApproved),
	events.EventTypeTimesheetChangesRequested: string(timesheet.StatusRequiresModification),
	events.EventTypeTimesheetRejected:         string(timesheet.StatusRejected),
}

func publishTestEvent(eventType string) error {
	if !slices.Contains(events.TimesheetEventTypes, eventType) {
		return fmt.Errorf("unknown event type %q, expected one of %s", eventType, strings.Join(events.TimesheetEventTypes, ", "))
	}

	lg := logger.LoggerWrapper()
	eventBus := events.NewEventBus(lg)
	eventBus.SubscribeAll(events.TimesheetEventTypes, events.LogTimesheetEvents(lg))

	event := events.NewTimesheetEvent(eventType, eventTimesheetID, eventUserID, eventActorID,
		time.Now().Format("2006-01-02"), sampleStatus[eventType], eventNote)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := eventBus.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return eventBus.Close(ctx)
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventTimesheetID, "timesheet", 1, "timesheet id")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user", 1, "timesheet owner id")
	publishEventCmd.Flags().Int64Var(&eventActorID, "actor", 1, "acting user id")
	publishEventCmd.Flags().StringVar(&eventNote, "note", "", "review note")

	eventCmd.AddCommand(publishEventCmd)
}
