package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

func TestSubmittedFix_Locate(t *testing.T) {
	opts := ports.NewPositionOptions(20 * time.Second)

	tests := []struct {
		name    string
		fix     SubmittedFix
		want    ports.Position
		wantErr error
	}{
		{
			name: "valid fix",
			fix:  SubmittedFix{Latitude: "-23.5", Longitude: "-46.6", Accuracy: "10"},
			want: ports.Position{Latitude: -23.5, Longitude: -46.6, Accuracy: 10},
		},
		{
			name: "accuracy optional",
			fix:  SubmittedFix{Latitude: "1", Longitude: "2"},
			want: ports.Position{Latitude: 1, Longitude: 2},
		},
		{name: "permission denied code", fix: SubmittedFix{Error: "1"}, wantErr: domain.ErrLocationPermissionDenied},
		{name: "permission denied name", fix: SubmittedFix{Error: "PERMISSION_DENIED"}, wantErr: domain.ErrLocationPermissionDenied},
		{name: "timeout", fix: SubmittedFix{Error: "3"}, wantErr: domain.ErrLocationUnavailable},
		{name: "unknown device error", fix: SubmittedFix{Error: "boom"}, wantErr: domain.ErrLocationUnavailable},
		{name: "missing latitude", fix: SubmittedFix{Longitude: "2"}, wantErr: domain.ErrLocationUnavailable},
		{name: "latitude out of range", fix: SubmittedFix{Latitude: "91", Longitude: "2"}, wantErr: domain.ErrLocationUnavailable},
		{name: "bad accuracy", fix: SubmittedFix{Latitude: "1", Longitude: "2", Accuracy: "-5"}, wantErr: domain.ErrLocationUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.fix.Locate(context.Background(), opts)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestSubmittedFix_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := SubmittedFix{Latitude: "1", Longitude: "2"}.Locate(ctx, ports.PositionOptions{})
	if !errors.Is(err, domain.ErrLocationUnavailable) {
		t.Fatalf("expected ErrLocationUnavailable, got %v", err)
	}
}
