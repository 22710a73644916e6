package handler

import (
	"time"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
	"github.com/portogeoloc/entregas/internal/core/view"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Dashboard ---

// createDeliveryRequest carries the seller form. Presence of name and phone
// is checked by the service so the user sees the product message.
type createDeliveryRequest struct {
	CustomerName  string `json:"cliente_nome"       validate:"max=120"`
	CustomerPhone string `json:"cliente_telefone"   validate:"max=30"`
	Street        string `json:"cliente_rua"        validate:"max=200"`
	Neighborhood  string `json:"cliente_bairro"     validate:"max=120"`
	Number        string `json:"cliente_numero"     validate:"max=20"`
	Reference     string `json:"cliente_referencia" validate:"max=300"`
}

type deliveryLinks struct {
	Self    string `json:"self"`
	Share   string `json:"share"`
	QRCode  string `json:"qrcode"`
	Options string `json:"options"`
	Details string `json:"details"`
}

// deliveryResponse mirrors the "entregas" record on the wire.
type deliveryResponse struct {
	ID                  string        `json:"id"`
	CustomerName        string        `json:"cliente_nome"`
	CustomerPhone       string        `json:"cliente_telefone"`
	Street              string        `json:"cliente_rua"`
	Neighborhood        string        `json:"cliente_bairro"`
	Number              string        `json:"cliente_numero"`
	Reference           string        `json:"cliente_referencia"`
	AccessCode          string        `json:"codigo_acesso"`
	Status              string        `json:"status"`
	Latitude            *float64      `json:"latitude"`
	Longitude           *float64      `json:"longitude"`
	Accuracy            *float64      `json:"precisao_gps"`
	PhotoURL            *string       `json:"foto_url"`
	ConfirmedByCustomer bool          `json:"confirmado_pelo_cliente"`
	CreatedAt           time.Time     `json:"created_at"`
	LocatedAt           *time.Time    `json:"data_localizacao"`
	Links               deliveryLinks `json:"_links"`
}

type dashboardResponse struct {
	view.Dashboard
	Universal universalShare `json:"universal"`
}

type universalShare struct {
	Link   string `json:"link"`
	QRCode string `json:"qrcode"`
}

type shareResponse struct {
	ID         string `json:"id"`
	AccessCode string `json:"codigo_acesso"`
	Link       string `json:"link"`
	QRCode     string `json:"qrcode"`
}

// --- Confirmation ---

// verifyCodeRequest accepts the code either joined or as the four input slots.
type verifyCodeRequest struct {
	Code   string   `json:"code"   validate:"omitempty,len=4,numeric"`
	Digits []string `json:"digits" validate:"omitempty,max=4"`
}

type sessionLinks struct {
	Self     string `json:"self"`
	Verify   string `json:"verify"`
	Location string `json:"location"`
}

type sessionResponse struct {
	SessionID       string                `json:"session_id"`
	DeliveryID      string                `json:"delivery_id,omitempty"`
	Universal       bool                  `json:"universal"`
	State           domain.FlowState      `json:"state"`
	PositionOptions ports.PositionOptions `json:"position_options"`
	Links           sessionLinks          `json:"_links"`
}

// --- Audit history ---

type eventResponse struct {
	Kind      string              `json:"kind"`
	Timestamp time.Time           `json:"timestamp"`
	SessionID string              `json:"session_id,omitempty"`
	Location  *domain.Coordinates `json:"location,omitempty"`
	PhotoURL  string              `json:"foto_url,omitempty"`
}

type historyResponse struct {
	DeliveryID string          `json:"delivery_id"`
	Events     []eventResponse `json:"events"`
}
