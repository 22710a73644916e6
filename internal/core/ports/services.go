package ports

import (
	"context"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/share"
	"github.com/portogeoloc/entregas/internal/core/view"
)

// CreateDeliveryInput carries the seller form. Only name and phone are required.
type CreateDeliveryInput struct {
	CustomerName   string
	CustomerPhone  string
	Street         string
	Neighborhood   string
	Number         string
	Reference      string
	IdempotencyKey string
}

// DeliveryResult is returned after creating a delivery.
type DeliveryResult struct {
	Delivery *domain.Delivery
	// AlreadyExisted is true when the Idempotency-Key matched an existing delivery.
	AlreadyExisted bool
}

// DashboardService defines the seller use cases.
type DashboardService interface {
	LoadDeliveries(ctx context.Context) []*domain.Delivery
	CreateDelivery(ctx context.Context, input CreateDeliveryInput) (*DeliveryResult, error)
	GetDelivery(ctx context.Context, id string) (*domain.Delivery, error)
	Render(ctx context.Context) view.Dashboard
	OrderOptions(ctx context.Context, id, origin string) (view.OrderOptions, error)
	Details(ctx context.Context, id string) (view.Details, error)
	Share(ctx context.Context, id, origin string) (share.Selection, error)
	CopyLink(ctx context.Context, id, origin string) (view.CopiedLink, error)
}

// ConfirmationService defines the customer flow use cases.
type ConfirmationService interface {
	Start(ctx context.Context, deliveryID string) (*domain.ConfirmationSession, error)
	Session(ctx context.Context, sessionID string) (*domain.ConfirmationSession, error)
	VerifyCode(ctx context.Context, sessionID, code string) (*domain.ConfirmationSession, error)
	SubmitLocation(ctx context.Context, sessionID string, locator Locator, photo *domain.Photo) (*domain.ConfirmationSession, error)
	PositionOptions() PositionOptions
}
