package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

type stubHistory struct {
	events []*domain.DeliveryEvent
	err    error
}

func (s *stubHistory) ListEvents(ctx context.Context, deliveryID string) ([]*domain.DeliveryEvent, error) {
	return s.events, s.err
}

func TestEventHandler_History(t *testing.T) {
	e := newTestEcho()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	h := NewEventHandler(&stubHistory{events: []*domain.DeliveryEvent{
		{DeliveryID: "d1", Kind: domain.EventCreated, Timestamp: at},
		{DeliveryID: "d1", Kind: domain.EventLocated, Timestamp: at.Add(time.Hour), SessionID: "s1",
			Location: &domain.Coordinates{Lat: -23.55, Lng: -46.63, Accuracy: 8}},
	}})

	c, rec := sellerContext(e, http.MethodGet, "/v1/deliveries/d1/events", "")
	c.SetParamNames("id")
	c.SetParamValues("d1")

	if err := h.History(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.DeliveryID != "d1" || len(resp.Events) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Events[1].Kind != "located" || resp.Events[1].Location == nil || resp.Events[1].Location.Lat != -23.55 {
		t.Fatalf("unexpected located event: %+v", resp.Events[1])
	}
}

func TestEventHandler_History_Empty(t *testing.T) {
	e := newTestEcho()
	h := NewEventHandler(&stubHistory{})

	c, rec := sellerContext(e, http.MethodGet, "/v1/deliveries/d9/events", "")
	c.SetParamNames("id")
	c.SetParamValues("d9")

	if err := h.History(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "{\"delivery_id\":\"d9\",\"events\":[]}\n" {
		t.Fatalf("expected empty events array, got %s", got)
	}
}

func TestEventHandler_History_GatewayError(t *testing.T) {
	e := newTestEcho()
	h := NewEventHandler(&stubHistory{err: domain.ErrGatewayUnavailable})

	c, _ := sellerContext(e, http.MethodGet, "/v1/deliveries/d1/events", "")
	c.SetParamNames("id")
	c.SetParamValues("d1")

	if err := h.History(c); !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}
