package ports

import (
	"context"
	"time"
)

// PositionOptions mirrors the single-shot geolocation request the customer
// device performs.
type PositionOptions struct {
	EnableHighAccuracy bool          `json:"enable_high_accuracy"`
	Timeout            time.Duration `json:"-"`
	TimeoutMillis      int64         `json:"timeout_ms"`
	MaximumAge         time.Duration `json:"-"`
	MaximumAgeMillis   int64         `json:"maximum_age_ms"`
}

// NewPositionOptions builds options for a fresh high-accuracy fix.
func NewPositionOptions(timeout time.Duration) PositionOptions {
	return PositionOptions{
		EnableHighAccuracy: true,
		Timeout:            timeout,
		TimeoutMillis:      timeout.Milliseconds(),
	}
}

// Position is a device fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Locator acquires the device position. Implementations return
// domain.ErrLocationPermissionDenied or domain.ErrLocationUnavailable.
type Locator interface {
	Locate(ctx context.Context, opts PositionOptions) (Position, error)
}
