package domain

import (
	"errors"
	"time"
)

// DeliveryStatus represents the lifecycle state of a delivery record.
type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "pendente"
	StatusLocated DeliveryStatus = "localizado"
)

var (
	ErrDeliveryNotFound      = errors.New("delivery not found")
	ErrMissingRequiredFields = errors.New("customer name and phone are required")
	ErrAlreadyLocated        = errors.New("delivery already located")
	ErrGatewayUnavailable    = errors.New("data gateway unavailable")
	ErrPhotoUpload           = errors.New("photo upload failed")
	ErrInvalidPhoto          = errors.New("photo is not a valid image")
	ErrPhotoNotFound         = errors.New("photo not found")
)

// Delivery is the unit of work shared between the seller and the customer.
// Field names on the wire follow the "entregas" collection.
type Delivery struct {
	ID                  string         `json:"id" bson:"_id"`
	CustomerName        string         `json:"cliente_nome" bson:"cliente_nome"`
	CustomerPhone       string         `json:"cliente_telefone" bson:"cliente_telefone"`
	Street              string         `json:"cliente_rua" bson:"cliente_rua"`
	Neighborhood        string         `json:"cliente_bairro" bson:"cliente_bairro"`
	Number              string         `json:"cliente_numero" bson:"cliente_numero"`
	Reference           string         `json:"cliente_referencia" bson:"cliente_referencia"`
	AccessCode          string         `json:"codigo_acesso" bson:"codigo_acesso"`
	Status              DeliveryStatus `json:"status" bson:"status"`
	Latitude            *float64       `json:"latitude" bson:"latitude"`
	Longitude           *float64       `json:"longitude" bson:"longitude"`
	Accuracy            *float64       `json:"precisao_gps" bson:"precisao_gps"`
	PhotoURL            *string        `json:"foto_url" bson:"foto_url"`
	ConfirmedByCustomer bool           `json:"confirmado_pelo_cliente" bson:"confirmado_pelo_cliente"`
	CreatedAt           time.Time      `json:"created_at" bson:"created_at"`
	LocatedAt           *time.Time     `json:"data_localizacao" bson:"data_localizacao"`
	IdempotencyKey      string         `json:"-" bson:"idempotency_key,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (d *Delivery) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// IsPending reports whether the customer has not shared a location yet.
func (d *Delivery) IsPending() bool {
	return d.Status == StatusPending
}

// LocationUpdate is the single write that moves a delivery to located.
// All geo fields travel together so a partial update is never persisted.
type LocationUpdate struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	PhotoURL  *string
	LocatedAt time.Time
}

// Apply sets the located fields on d. Used by in-memory gateways and tests;
// the Mongo repository expresses the same write as one $set.
func (u LocationUpdate) Apply(d *Delivery) {
	lat, lng, acc := u.Latitude, u.Longitude, u.Accuracy
	at := u.LocatedAt
	d.Latitude = &lat
	d.Longitude = &lng
	d.Accuracy = &acc
	d.PhotoURL = u.PhotoURL
	d.Status = StatusLocated
	d.ConfirmedByCustomer = true
	d.LocatedAt = &at
}
