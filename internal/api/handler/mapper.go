package handler

import (
	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
	"github.com/portogeoloc/entregas/internal/core/share"
)

func toCreateInput(req createDeliveryRequest, idempotencyKey string) ports.CreateDeliveryInput {
	return ports.CreateDeliveryInput{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Street:         req.Street,
		Neighborhood:   req.Neighborhood,
		Number:         req.Number,
		Reference:      req.Reference,
		IdempotencyKey: idempotencyKey,
	}
}

func deliveryPath(id string) string { return "/v1/deliveries/" + id }

func toDeliveryResponse(d *domain.Delivery, origin string) deliveryResponse {
	self := deliveryPath(d.ID)
	return deliveryResponse{
		ID:                  d.ID,
		CustomerName:        d.CustomerName,
		CustomerPhone:       d.CustomerPhone,
		Street:              d.Street,
		Neighborhood:        d.Neighborhood,
		Number:              d.Number,
		Reference:           d.Reference,
		AccessCode:          d.AccessCode,
		Status:              string(d.Status),
		Latitude:            d.Latitude,
		Longitude:           d.Longitude,
		Accuracy:            d.Accuracy,
		PhotoURL:            d.PhotoURL,
		ConfirmedByCustomer: d.ConfirmedByCustomer,
		CreatedAt:           d.CreatedAt,
		LocatedAt:           d.LocatedAt,
		Links: deliveryLinks{
			Self:    self,
			Share:   share.ConfirmationURL(origin, d.ID),
			QRCode:  self + "/qrcode.png",
			Options: self + "/options",
			Details: self + "/details",
		},
	}
}

func sessionPath(id string) string { return "/v1/confirmations/" + id }

func toSessionResponse(s *domain.ConfirmationSession, opts ports.PositionOptions) sessionResponse {
	self := sessionPath(s.ID)
	return sessionResponse{
		SessionID:       s.ID,
		DeliveryID:      s.DeliveryID,
		Universal:       s.Universal,
		State:           s.State,
		PositionOptions: opts,
		Links: sessionLinks{
			Self:     self,
			Verify:   self + "/verify",
			Location: self + "/location",
		},
	}
}

func toEventResponse(e *domain.DeliveryEvent) eventResponse {
	return eventResponse{
		Kind:      string(e.Kind),
		Timestamp: e.Timestamp,
		SessionID: e.SessionID,
		Location:  e.Location,
		PhotoURL:  e.PhotoURL,
	}
}
