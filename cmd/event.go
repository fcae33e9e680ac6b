package cmd

import (
	"context"
	"time"

	"github.com/frahmantamala/migration-tracker/internal/core/events"
	"github.com/frahmantamala/migration-tracker/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events, monitor event bus, inspect handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [record-id]",
	Short: "Publish a test record event",
	Long:  `Publish a test record event to the bus to check audit subscribers end to end`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

func publishTestEvent(recordID string) {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	events.NewAuditLogger(eventBus)

	testEvent := events.NewRecordCreatedEvent(recordID, 0, 0, 0)

	lg.Info("publishing test event", "event_type", testEvent.EventType(), "record_id", recordID)

	ctx := context.Background()
	if err := eventBus.Publish(ctx, testEvent); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	// async handlers; give them a beat before exiting
	time.Sleep(100 * time.Millisecond)
	lg.Info("test event published successfully")
}

func init() {
	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
