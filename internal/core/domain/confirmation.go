package domain

import (
	"errors"
	"fmt"
	"time"
)

// FlowState is a step of the customer confirmation flow.
type FlowState string

const (
	StateAwaitingCode     FlowState = "awaiting_code"
	StateAwaitingLocation FlowState = "awaiting_location"
	StateSubmitting       FlowState = "submitting"
	StateSuccess          FlowState = "success"
)

// AccessCodeLength is the number of digits of a delivery access code.
const AccessCodeLength = 4

var (
	ErrIncompleteCode           = errors.New("access code must have exactly 4 digits")
	ErrInvalidCode              = errors.New("delivery not found or invalid code")
	ErrCodeNotFound             = errors.New("code not found or already located")
	ErrSessionNotFound          = errors.New("confirmation session not found")
	ErrInvalidSession           = errors.New("invalid confirmation session")
	ErrSubmissionInProgress     = errors.New("submission already in progress")
	ErrLocationPermissionDenied = errors.New("location permission denied")
	ErrLocationUnavailable      = errors.New("location unavailable")
)

// Photo is an image picked by the customer. It lives only in memory until
// the location is submitted.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ConfirmationSession is the state owned by one customer going through the
// confirmation flow. The photo is never persisted with the session.
type ConfirmationSession struct {
	ID         string    `json:"session_id" msgpack:"id"`
	DeliveryID string    `json:"delivery_id,omitempty" msgpack:"delivery_id"`
	Universal  bool      `json:"universal" msgpack:"universal"`
	Verified   bool      `json:"verified" msgpack:"verified"`
	State      FlowState `json:"state" msgpack:"state"`
	CreatedAt  time.Time `json:"created_at" msgpack:"created_at"`
	Photo      *Photo    `json:"-" msgpack:"-"`
}

// NewConfirmationSession starts a flow. An empty deliveryID selects the
// universal code path.
func NewConfirmationSession(id, deliveryID string, now time.Time) *ConfirmationSession {
	return &ConfirmationSession{
		ID:         id,
		DeliveryID: deliveryID,
		Universal:  deliveryID == "",
		State:      StateAwaitingCode,
		CreatedAt:  now,
	}
}

// Resolve records the delivery matched by the access code and advances to
// the location step.
func (s *ConfirmationSession) Resolve(deliveryID string) error {
	if s.State != StateAwaitingCode {
		return fmt.Errorf("%w: cannot verify code in state %s", ErrInvalidSession, s.State)
	}
	s.DeliveryID = deliveryID
	s.Verified = true
	s.State = StateAwaitingLocation
	return nil
}

// BeginSubmit moves the flow to Submitting. It requires a verified delivery.
func (s *ConfirmationSession) BeginSubmit() error {
	if !s.Verified || s.DeliveryID == "" || s.State != StateAwaitingLocation {
		return fmt.Errorf("%w: cannot submit location in state %s", ErrInvalidSession, s.State)
	}
	s.State = StateSubmitting
	return nil
}

// AbortSubmit returns the flow to the interactive location step.
func (s *ConfirmationSession) AbortSubmit() {
	if s.State == StateSubmitting {
		s.State = StateAwaitingLocation
	}
}

// Complete marks the flow as finished.
func (s *ConfirmationSession) Complete() {
	s.State = StateSuccess
}

func (s *ConfirmationSession) SelectPhoto(p *Photo) {
	s.Photo = p
}

func (s *ConfirmationSession) ClearPhoto() {
	s.Photo = nil
}

// ValidateAccessCode checks that code has exactly AccessCodeLength digits.
func ValidateAccessCode(code string) error {
	if len(code) != AccessCodeLength {
		return ErrIncompleteCode
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ErrIncompleteCode
		}
	}
	return nil
}
