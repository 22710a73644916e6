package ports

import (
	"context"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// DeliveryFilter selects a single delivery. Zero-valued fields are ignored.
// When more than one record matches, the most recently created one wins.
type DeliveryFilter struct {
	ID         string
	AccessCode string
	Status     domain.DeliveryStatus
}

// DeliveryRepository is the data gateway over the "entregas" collection.
// Every call is a single attempt; failures are returned, never retried.
type DeliveryRepository interface {
	// List returns every delivery ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.Delivery, error)
	// FindOne returns domain.ErrDeliveryNotFound when nothing matches.
	FindOne(ctx context.Context, filter DeliveryFilter) (*domain.Delivery, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Delivery, error)
	Create(ctx context.Context, d *domain.Delivery) error
	// UpdateLocation applies the located fields only while the record is
	// still pending. It returns domain.ErrAlreadyLocated otherwise.
	UpdateLocation(ctx context.Context, id string, update domain.LocationUpdate) error
}
