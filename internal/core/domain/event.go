package domain

import "time"

// EventKind names an audit event in a delivery's history.
type EventKind string

const (
	EventCreated      EventKind = "created"
	EventCodeVerified EventKind = "code_verified"
	EventLocated      EventKind = "located"
)

// DeliveryEvent is an audit record appended to the "entregas_eventos" collection.
type DeliveryEvent struct {
	DeliveryID string
	Kind       EventKind
	Timestamp  time.Time
	SessionID  string       // optional
	Location   *Coordinates // optional
	PhotoURL   string       // optional
}

// Coordinates represents a geographic point reported by the customer device.
type Coordinates struct {
	Lat      float64 `json:"lat" bson:"lat"`
	Lng      float64 `json:"lng" bson:"lng"`
	Accuracy float64 `json:"accuracy" bson:"accuracy"`
}
