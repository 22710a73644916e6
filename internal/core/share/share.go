// Package share builds the links a seller hands to a customer.
package share

import (
	"net/url"
	"strings"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// ConfirmationPath is the customer entry point.
const ConfirmationPath = "/confirmar-localizacao"

// Theme describes how a link is rendered as a QR code.
type Theme struct {
	Foreground string
	Background string
	Size       int
}

var (
	// PerRecordTheme is used for links bound to one delivery.
	PerRecordTheme = Theme{Foreground: "#1a365d", Background: "#ffffff", Size: 256}
	// UniversalTheme is used for the code-only link.
	UniversalTheme = Theme{Foreground: "#1e293b", Background: "#ffffff", Size: 256}
)

// ConfirmationURL returns the link for one delivery.
func ConfirmationURL(origin, deliveryID string) string {
	return UniversalURL(origin) + "?id=" + url.QueryEscape(deliveryID)
}

// UniversalURL returns the link that resolves a delivery by access code only.
func UniversalURL(origin string) string {
	return strings.TrimRight(origin, "/") + ConfirmationPath
}

// Selection is the record currently being shared from the dashboard.
type Selection struct {
	DeliveryID string `json:"id"`
	AccessCode string `json:"codigo_acesso"`
	Link       string `json:"link"`
}

func Select(d *domain.Delivery, origin string) Selection {
	return Selection{
		DeliveryID: d.ID,
		AccessCode: d.AccessCode,
		Link:       ConfirmationURL(origin, d.ID),
	}
}
