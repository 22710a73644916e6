package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// EventHistory is the read side of the delivery audit trail.
type EventHistory interface {
	ListEvents(ctx context.Context, deliveryID string) ([]*domain.DeliveryEvent, error)
}

// EventHandler exposes the audit trail written by the event dispatcher.
type EventHandler struct {
	history EventHistory
}

// NewEventHandler creates an EventHandler backed by the given history store.
func NewEventHandler(history EventHistory) *EventHandler {
	return &EventHandler{history: history}
}

// History handles GET /v1/deliveries/:id/events, oldest first.
//
// @Summary      Delivery audit trail
// @Tags         deliveries
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delivery id"
// @Success      200  {object}  historyResponse
// @Failure      401  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/deliveries/{id}/events [get]
func (h *EventHandler) History(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}

	id := c.Param("id")
	events, err := h.history.ListEvents(c.Request().Context(), id)
	if err != nil {
		return err
	}

	resp := historyResponse{DeliveryID: id, Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, toEventResponse(e))
	}
	return c.JSON(http.StatusOK, resp)
}
