package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/portogeoloc/entregas/internal/api/metrics"
	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
	"github.com/portogeoloc/entregas/internal/core/share"
	"github.com/portogeoloc/entregas/internal/core/view"
)

const (
	minAccessCode = 1000
	maxAccessCode = 9999

	linkCopiedMessage = "Link copiado!"
)

type DashboardService struct {
	repo   ports.DeliveryRepository
	events ports.EventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

func NewDashboardService(repo ports.DeliveryRepository, events ports.EventPublisher, logger zerolog.Logger) *DashboardService {
	if events == nil {
		events = discardEvents{}
	}
	return &DashboardService{repo: repo, events: events, logger: logger, now: time.Now}
}

// LoadDeliveries returns every delivery, newest first. Gateway failures are
// logged and reported as an empty list so the dashboard still renders.
func (s *DashboardService) LoadDeliveries(ctx context.Context) []*domain.Delivery {
	deliveries, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load deliveries")
		return []*domain.Delivery{}
	}
	if deliveries == nil {
		return []*domain.Delivery{}
	}
	return deliveries
}

// CreateDelivery validates the seller form and inserts a pending delivery
// with a fresh access code. If an idempotency key is provided and already
// seen, the previously created delivery is returned without side effects.
func (s *DashboardService) CreateDelivery(ctx context.Context, input ports.CreateDeliveryInput) (*ports.DeliveryResult, error) {
	if strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.CustomerPhone) == "" {
		return nil, domain.ErrMissingRequiredFields
	}

	if input.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
		if err == nil && existing != nil {
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Str("delivery_id", existing.ID).Msg("idempotent replay")
			return &ports.DeliveryResult{Delivery: existing, AlreadyExisted: true}, nil
		}
	}

	delivery := &domain.Delivery{
		ID:             uuid.NewString(),
		CustomerName:   input.CustomerName,
		CustomerPhone:  input.CustomerPhone,
		Street:         input.Street,
		Neighborhood:   input.Neighborhood,
		Number:         input.Number,
		Reference:      input.Reference,
		AccessCode:     generateAccessCode(),
		Status:         domain.StatusPending,
		CreatedAt:      s.now().UTC(),
		IdempotencyKey: input.IdempotencyKey,
	}

	if err := s.repo.Create(ctx, delivery); err != nil {
		s.logger.Error().Err(err).Msg("failed to create delivery")
		return nil, fmt.Errorf("create delivery: %w: %w", domain.ErrGatewayUnavailable, err)
	}

	metrics.DeliveriesCreatedTotal.Inc()
	s.events.Publish(domain.DeliveryEvent{
		DeliveryID: delivery.ID,
		Kind:       domain.EventCreated,
		Timestamp:  delivery.CreatedAt,
	})
	s.logger.Info().Str("delivery_id", delivery.ID).Msg("delivery created")

	return &ports.DeliveryResult{Delivery: delivery}, nil
}

// GetDelivery fetches one delivery for the options and details surfaces.
func (s *DashboardService) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	d, err := s.repo.FindOne(ctx, ports.DeliveryFilter{ID: id})
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

// Render loads every delivery and maps it to the dashboard view-model.
func (s *DashboardService) Render(ctx context.Context) view.Dashboard {
	return view.BuildDashboard(s.LoadDeliveries(ctx))
}

// OrderOptions builds the options surface for one delivery.
func (s *DashboardService) OrderOptions(ctx context.Context, id, origin string) (view.OrderOptions, error) {
	d, err := s.GetDelivery(ctx, id)
	if err != nil {
		return view.OrderOptions{}, err
	}
	return view.BuildOrderOptions(d, share.ConfirmationURL(origin, d.ID)), nil
}

func (s *DashboardService) Details(ctx context.Context, id string) (view.Details, error) {
	d, err := s.GetDelivery(ctx, id)
	if err != nil {
		return view.Details{}, err
	}
	return view.BuildDetails(d), nil
}

// Share selects a delivery for link and QR generation.
func (s *DashboardService) Share(ctx context.Context, id, origin string) (share.Selection, error) {
	d, err := s.GetDelivery(ctx, id)
	if err != nil {
		return share.Selection{}, err
	}
	return share.Select(d, origin), nil
}

// CopyLink returns the share link together with the confirmation toast.
func (s *DashboardService) CopyLink(ctx context.Context, id, origin string) (view.CopiedLink, error) {
	sel, err := s.Share(ctx, id, origin)
	if err != nil {
		return view.CopiedLink{}, err
	}
	toast := view.NewToast(linkCopiedMessage)
	toast.Show(s.now())
	return view.CopiedLink{Link: sel.Link, Toast: toast.Notice()}, nil
}

// generateAccessCode returns a uniformly random code in [1000, 9999].
func generateAccessCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(maxAccessCode-minAccessCode+1))
	if err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%d", minAccessCode+time.Now().UnixNano()%(maxAccessCode-minAccessCode+1))
	}
	return fmt.Sprintf("%d", minAccessCode+n.Int64())
}

type discardEvents struct{}

func (discardEvents) Publish(domain.DeliveryEvent) {}
