package broadcast

import "context"

// Well-known publish groups.
const (
	GroupCoins  = "coins"
	GroupTrades = "trades"
)

// Broadcaster publishes ingest events to interested consumers. Publishing
// is fire-and-forget; implementations must never block the ingest loop
// indefinitely.
type Broadcaster interface {
	// Publish delivers the payload to every subscriber of the group.
	Publish(ctx context.Context, group string, payload interface{}) error
}

// Nop is a Broadcaster that discards everything.
type Nop struct{}

// Publish implements Broadcaster.
func (Nop) Publish(context.Context, string, interface{}) error { return nil }

var _ Broadcaster = Nop{}
