package perksAdmin

import (
	"context"

	"github.com/MrEthical07/perksAdmin/internal/events"
)

// Notification is one operator-facing message, the console's toast.
type Notification = events.Notification

// NotificationLevel is the severity of a [Notification].
type NotificationLevel = events.Level

// NotificationSink receives notifications. Sinks run on the delivery goroutine
// when Events is enabled and inline otherwise.
type NotificationSink = events.Sink

const (
	LevelSuccess = events.LevelSuccess
	LevelError   = events.LevelError
	LevelInfo    = events.LevelInfo
)

// NewJSONNotificationSink is re-exported for callers outside this module.
var NewJSONNotificationSink = events.NewJSONWriterSink

func (c *Console) notify(ctx context.Context, level NotificationLevel, source, message string) {
	if message == "" {
		return
	}
	n := events.New(level, source, message)
	n.Timestamp = c.now().UTC()

	if c.dispatcher != nil {
		c.dispatcher.Emit(ctx, n)
		return
	}
	if c.sink != nil {
		c.sink.Emit(ctx, n)
	}
}

// consoleNotifier adapts the console to [mutation.Notifier].
type consoleNotifier struct {
	c      *Console
	source string
}

func (n consoleNotifier) Success(ctx context.Context, message string) {
	n.c.notify(ctx, LevelSuccess, n.source, message)
}

func (n consoleNotifier) Error(ctx context.Context, message string) {
	n.c.notify(ctx, LevelError, n.source, message)
}
