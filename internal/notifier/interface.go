package notifier

import "context"

// Notifier defines the interface for report delivery channels
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Deliver sends a rendered report. The body is HTML; channels that
	// cannot carry markup are responsible for stripping it.
	Deliver(ctx context.Context, subject, htmlBody string) error
}
