// Package notifier pushes "topic changed" events to interested consumers
// after successful writes. Delivery is fire-and-forget: a failed publish is
// logged and swallowed, never surfaced to the API caller.
package notifier

import "context"

type Publisher interface {
	Publish(ctx context.Context, topic string, payload map[string]any) error
	Close() error
}

// Noop discards every event. Used in tests and when no broker is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, topic string, payload map[string]any) error {
	return nil
}

func (Noop) Close() error { return nil }
