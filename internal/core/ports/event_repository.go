package ports

import (
	"context"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// EventRepository persists the delivery audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.DeliveryEvent) error
}

// EventPublisher hands audit events to asynchronous processing.
type EventPublisher interface {
	Publish(event domain.DeliveryEvent)
}
