package notification

import (
	"context"
	"time"
)

// Event describes a finished deployment.
type Event struct {
	Site     string
	Server   string
	URL      string
	Passed   bool
	Error    string
	Duration time.Duration
	// Origin describes where the deployment was started from, e.g. a CI pipeline.
	Origin string
}

// Notifier represents common interface for sending notifications.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}
