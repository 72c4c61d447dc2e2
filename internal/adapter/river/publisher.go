package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/quietbay/innkeep/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// NotificationJobArgs carries the data needed to dispatch a lifecycle
// notification asynchronously. River serializes this as JSON into its job
// queue table. It includes a snapshot of the entity at publish time, so the
// worker never needs to query the database.
type NotificationJobArgs struct {
	Event      string `json:"event"`
	EntityID   string `json:"entity_id"`
	Code       string `json:"code"`
	RoomNumber string `json:"room_number,omitempty"`
	GuestName  string `json:"guest_name,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationJobArgs) Kind() string { return "notification.dispatch" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a lifecycle notification as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, n domain.Notification) error {
	_, err := p.client.Insert(ctx, NotificationJobArgs{
		Event:      string(event),
		EntityID:   n.EntityID,
		Code:       n.Code,
		RoomNumber: n.RoomNumber,
		GuestName:  n.GuestName,
		Detail:     n.Detail,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}
