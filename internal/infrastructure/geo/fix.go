// Package geo adapts the position reported by the customer's browser to the
// ports.Locator interface.
package geo

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

// Browser geolocation error codes.
const (
	codePermissionDenied    = "1"
	codePositionUnavailable = "2"
	codeTimeout             = "3"
)

// SubmittedFix is a position the device already acquired and posted with the
// submission form, or the error the device reported instead.
type SubmittedFix struct {
	Latitude  string
	Longitude string
	Accuracy  string
	// Error holds the device error code ("1", "2", "3") or its name
	// ("permission_denied", "position_unavailable", "timeout").
	Error string
}

// Locate validates the submitted fix. A cancelled or expired ctx is reported
// as an unavailable position.
func (f SubmittedFix) Locate(ctx context.Context, _ ports.PositionOptions) (ports.Position, error) {
	if err := ctx.Err(); err != nil {
		return ports.Position{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}

	switch strings.ToLower(strings.TrimSpace(f.Error)) {
	case "":
	case codePermissionDenied, "permission_denied":
		return ports.Position{}, domain.ErrLocationPermissionDenied
	case codePositionUnavailable, "position_unavailable":
		return ports.Position{}, fmt.Errorf("%w: position unavailable", domain.ErrLocationUnavailable)
	case codeTimeout, "timeout":
		return ports.Position{}, fmt.Errorf("%w: timeout", domain.ErrLocationUnavailable)
	default:
		return ports.Position{}, fmt.Errorf("%w: device error %q", domain.ErrLocationUnavailable, f.Error)
	}

	lat, err := parseCoord(f.Latitude, 90)
	if err != nil {
		return ports.Position{}, fmt.Errorf("%w: latitude: %w", domain.ErrLocationUnavailable, err)
	}
	lon, err := parseCoord(f.Longitude, 180)
	if err != nil {
		return ports.Position{}, fmt.Errorf("%w: longitude: %w", domain.ErrLocationUnavailable, err)
	}

	var acc float64
	if s := strings.TrimSpace(f.Accuracy); s != "" {
		acc, err = strconv.ParseFloat(s, 64)
		if err != nil || acc < 0 || math.IsNaN(acc) || math.IsInf(acc, 0) {
			return ports.Position{}, fmt.Errorf("%w: invalid accuracy %q", domain.ErrLocationUnavailable, s)
		}
	}

	return ports.Position{Latitude: lat, Longitude: lon, Accuracy: acc}, nil
}

func parseCoord(s string, limit float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.Abs(v) > limit {
		return 0, fmt.Errorf("out of range: %s", s)
	}
	return v, nil
}
