package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Publisher publishes pantry events. Publishing is always best-effort for
// callers: a mutation must never fail because its audit row could not be
// delivered.
type Publisher interface {
	Publish(ctx context.Context, event interface{}) error
	Close() error
}

// Audit actions recorded against pantry mutations
const (
	ActionAdd         = "ADD"
	ActionEdit        = "EDIT"
	ActionDelete      = "DELETE"
	ActionShoppingAdd = "SHOPPING_ADD"
)

// AuditEvent is one row of the mutation log, the successor of the
// spreadsheet append the first iterations used.
type AuditEvent struct {
	AccountID   string    `json:"accountId"`
	Action      string    `json:"action"`
	Code        string    `json:"code,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Quantity    int       `json:"quantity"`
	Expiration  string    `json:"expiration,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// ExpiringItemEvent notifies that an item is about to expire. Delivery to a
// push channel is somebody else's job; this service only emits.
type ExpiringItemEvent struct {
	AccountID   string    `json:"accountId"`
	Code        string    `json:"code,omitempty"`
	DisplayName string    `json:"displayName"`
	Expiration  string    `json:"expiration"`
	DaysLeft    int       `json:"daysLeft"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// InMemoryPublisher collects events in memory. It backs tests and runs where
// no broker is configured.
type InMemoryPublisher struct {
	logger *zap.Logger

	mu     sync.Mutex
	events []interface{}
}

// NewInMemoryPublisher creates a broker-less publisher.
func NewInMemoryPublisher(logger *zap.Logger) *InMemoryPublisher {
	return &InMemoryPublisher{
		logger: logger,
		events: make([]interface{}, 0),
	}
}

func (p *InMemoryPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.logger.Debug("Event published (in-memory)", zap.Any("event", event))
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *InMemoryPublisher) Events() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	snapshot := make([]interface{}, len(p.events))
	copy(snapshot, p.events)
	return snapshot
}

func (p *InMemoryPublisher) Close() error {
	return nil
}
