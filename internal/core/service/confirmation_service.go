package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/portogeoloc/entregas/internal/api/metrics"
	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

// DefaultGeolocationTimeout bounds a single device fix request.
const DefaultGeolocationTimeout = 20 * time.Second

// ConfirmationDeps groups the collaborators of the confirmation flow.
type ConfirmationDeps struct {
	Deliveries ports.DeliveryRepository
	Photos     ports.PhotoStore
	Sessions   ports.SessionStore
	Lock       ports.SubmitLock
	Events     ports.EventPublisher
	// GeolocationTimeout defaults to DefaultGeolocationTimeout.
	GeolocationTimeout time.Duration
}

type ConfirmationService struct {
	repo       ports.DeliveryRepository
	photos     ports.PhotoStore
	sessions   ports.SessionStore
	lock       ports.SubmitLock
	events     ports.EventPublisher
	geoTimeout time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewConfirmationService(deps ConfirmationDeps, log zerolog.Logger) *ConfirmationService {
	timeout := deps.GeolocationTimeout
	if timeout <= 0 {
		timeout = DefaultGeolocationTimeout
	}
	events := deps.Events
	if events == nil {
		events = discardEvents{}
	}
	lock := deps.Lock
	if lock == nil {
		lock = noLock{}
	}
	return &ConfirmationService{
		repo:       deps.Deliveries,
		photos:     deps.Photos,
		sessions:   deps.Sessions,
		lock:       lock,
		events:     events,
		geoTimeout: timeout,
		log:        log,
		now:        time.Now,
	}
}

// PositionOptions returns the geolocation request the device must perform:
// high accuracy, no cached fix, bounded by the geolocation timeout.
func (s *ConfirmationService) PositionOptions() ports.PositionOptions {
	return ports.NewPositionOptions(s.geoTimeout)
}

// Start opens a confirmation session. An empty deliveryID means the customer
// arrived through the universal link and will be resolved by code alone.
func (s *ConfirmationService) Start(ctx context.Context, deliveryID string) (*domain.ConfirmationSession, error) {
	sess := domain.NewConfirmationSession(uuid.NewString(), deliveryID, s.now().UTC())
	if sess.Universal {
		s.log.Debug().Str("session_id", sess.ID).Msg("confirmation link opened without delivery id")
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("start confirmation: %w: %w", domain.ErrGatewayUnavailable, err)
	}
	return sess, nil
}

// Session loads a confirmation session. Store outages surface as
// domain.ErrGatewayUnavailable so the customer sees the connection alert.
func (s *ConfirmationService) Session(ctx context.Context, sessionID string) (*domain.ConfirmationSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return nil, fmt.Errorf("load session: %w", err)
	case err != nil:
		return nil, fmt.Errorf("load session: %w: %w", domain.ErrGatewayUnavailable, err)
	}
	return sess, nil
}

// VerifyCode authenticates the customer with the 4-digit access code.
//
// With a known delivery id the stored code of that exact record must match.
// Without one, the newest pending delivery carrying the code is selected.
// On failure the session keeps its current state.
func (s *ConfirmationService) VerifyCode(ctx context.Context, sessionID, code string) (*domain.ConfirmationSession, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateAccessCode(code); err != nil {
		return nil, err
	}
	if sess.State != domain.StateAwaitingCode {
		return nil, fmt.Errorf("verify code: %w", domain.ErrInvalidSession)
	}

	strategy := "targeted"
	if sess.Universal {
		strategy = "universal"
	}

	delivery, err := s.matchCode(ctx, sess, code)
	if err != nil {
		metrics.CodeVerificationsTotal.WithLabelValues(strategy, "rejected").Inc()
		s.log.Info().Err(err).Str("session_id", sess.ID).Str("strategy", strategy).Msg("code verification failed")
		return nil, err
	}

	if err := sess.Resolve(delivery.ID); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("verify code: save session: %w: %w", domain.ErrGatewayUnavailable, err)
	}

	metrics.CodeVerificationsTotal.WithLabelValues(strategy, "accepted").Inc()
	s.events.Publish(domain.DeliveryEvent{
		DeliveryID: delivery.ID,
		Kind:       domain.EventCodeVerified,
		Timestamp:  s.now().UTC(),
		SessionID:  sess.ID,
	})
	return sess, nil
}

func (s *ConfirmationService) matchCode(ctx context.Context, sess *domain.ConfirmationSession, code string) (*domain.Delivery, error) {
	if !sess.Universal {
		d, err := s.repo.FindOne(ctx, ports.DeliveryFilter{ID: sess.DeliveryID})
		switch {
		case errors.Is(err, domain.ErrDeliveryNotFound):
			return nil, domain.ErrInvalidCode
		case err != nil:
			return nil, fmt.Errorf("verify code: %w: %w", domain.ErrGatewayUnavailable, err)
		case d.AccessCode != code:
			return nil, domain.ErrInvalidCode
		}
		return d, nil
	}

	d, err := s.repo.FindOne(ctx, ports.DeliveryFilter{AccessCode: code, Status: domain.StatusPending})
	switch {
	case errors.Is(err, domain.ErrDeliveryNotFound):
		return nil, domain.ErrCodeNotFound
	case err != nil:
		return nil, fmt.Errorf("verify code: %w: %w", domain.ErrGatewayUnavailable, err)
	case d.AccessCode != code:
		return nil, domain.ErrCodeNotFound
	}
	return d, nil
}

// SubmitLocation acquires the device position, uploads the optional photo and
// marks the delivery as located. Each step aborts the whole submission on
// failure; the record is only written once everything before it succeeded.
func (s *ConfirmationService) SubmitLocation(ctx context.Context, sessionID string, locator ports.Locator, photo *domain.Photo) (*domain.ConfirmationSession, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if photo != nil {
		sess.SelectPhoto(photo)
	}
	if err := sess.BeginSubmit(); err != nil {
		return nil, err
	}

	token, acquired, err := s.lock.Acquire(ctx, sess.DeliveryID)
	if err != nil {
		s.log.Warn().Err(err).Str("delivery_id", sess.DeliveryID).Msg("submit lock unavailable, processing anyway")
	} else if !acquired {
		sess.AbortSubmit()
		return nil, domain.ErrSubmissionInProgress
	} else {
		defer func() {
			if relErr := s.lock.Release(context.WithoutCancel(ctx), sess.DeliveryID, token); relErr != nil {
				s.log.Warn().Err(relErr).Str("delivery_id", sess.DeliveryID).Msg("failed to release submit lock")
			}
		}()
	}

	start := s.now()
	if err := s.submit(ctx, sess, locator); err != nil {
		sess.AbortSubmit()
		metrics.LocationSubmissionsTotal.WithLabelValues(submissionReason(err)).Inc()
		s.log.Warn().Err(err).Str("session_id", sess.ID).Str("delivery_id", sess.DeliveryID).Msg("location submission failed")
		return nil, err
	}
	metrics.SubmissionDuration.Observe(s.now().Sub(start).Seconds())
	metrics.LocationSubmissionsTotal.WithLabelValues("located").Inc()

	sess.Complete()
	sess.ClearPhoto()
	if err := s.sessions.Save(ctx, sess); err != nil {
		// The record is already located; only the session echo is stale.
		s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to save completed session")
	}
	return sess, nil
}

func (s *ConfirmationService) submit(ctx context.Context, sess *domain.ConfirmationSession, locator ports.Locator) error {
	pos, err := s.locate(ctx, locator)
	if err != nil {
		return err
	}

	var photoURL *string
	if sess.Photo != nil {
		url, err := s.uploadPhoto(ctx, sess.DeliveryID, sess.Photo)
		if err != nil {
			metrics.PhotoUploadsTotal.WithLabelValues("failed").Inc()
			return err
		}
		metrics.PhotoUploadsTotal.WithLabelValues("uploaded").Inc()
		photoURL = &url
	}

	locatedAt := s.now().UTC()
	update := domain.LocationUpdate{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Accuracy:  pos.Accuracy,
		PhotoURL:  photoURL,
		LocatedAt: locatedAt,
	}
	if err := s.repo.UpdateLocation(ctx, sess.DeliveryID, update); err != nil {
		if errors.Is(err, domain.ErrAlreadyLocated) || errors.Is(err, domain.ErrDeliveryNotFound) {
			return fmt.Errorf("submit location: %w", err)
		}
		return fmt.Errorf("submit location: %w: %w", domain.ErrGatewayUnavailable, err)
	}

	event := domain.DeliveryEvent{
		DeliveryID: sess.DeliveryID,
		Kind:       domain.EventLocated,
		Timestamp:  locatedAt,
		SessionID:  sess.ID,
		Location:   &domain.Coordinates{Lat: pos.Latitude, Lng: pos.Longitude, Accuracy: pos.Accuracy},
	}
	if photoURL != nil {
		event.PhotoURL = *photoURL
	}
	s.events.Publish(event)

	s.log.Info().
		Str("delivery_id", sess.DeliveryID).
		Float64("accuracy", pos.Accuracy).
		Bool("photo", photoURL != nil).
		Msg("delivery located")
	return nil
}

func (s *ConfirmationService) locate(ctx context.Context, locator ports.Locator) (ports.Position, error) {
	if locator == nil {
		return ports.Position{}, fmt.Errorf("%w: geolocation not supported", domain.ErrLocationUnavailable)
	}

	locCtx, cancel := context.WithTimeout(ctx, s.geoTimeout)
	defer cancel()

	pos, err := locator.Locate(locCtx, s.PositionOptions())
	switch {
	case err == nil:
		return pos, nil
	case errors.Is(err, domain.ErrLocationPermissionDenied), errors.Is(err, domain.ErrLocationUnavailable):
		return ports.Position{}, err
	default:
		return ports.Position{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
}

func (s *ConfirmationService) uploadPhoto(ctx context.Context, deliveryID string, p *domain.Photo) (string, error) {
	path := PhotoPath(deliveryID, s.now(), PhotoExtension(p))
	if err := s.photos.Upload(ctx, path, p.ContentType, bytes.NewReader(p.Data)); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPhotoUpload, err)
	}
	return s.photos.PublicURL(path), nil
}

// submissionReason labels a failed submission for metrics.
func submissionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLocationPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrLocationUnavailable):
		return "location_unavailable"
	case errors.Is(err, domain.ErrPhotoUpload):
		return "upload_failed"
	case errors.Is(err, domain.ErrAlreadyLocated):
		return "already_located"
	default:
		return "update_failed"
	}
}

type noLock struct{}

func (noLock) Acquire(context.Context, string) (string, bool, error) { return "", true, nil }
func (noLock) Release(context.Context, string, string) error         { return nil }
