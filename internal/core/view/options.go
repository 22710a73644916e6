package view

import (
	"fmt"
	"strconv"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

const (
	notInformed = "Não informado"
	noNumber    = "S/N"
	noReference = "Nenhum ponto de referência"
)

// OrderOptions is the surface opened when a seller picks a delivery.
type OrderOptions struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OrderLabel string `json:"order_label"`
	// MapURL is empty and MapEnabled false until the customer shared a location.
	MapURL     string `json:"map_url,omitempty"`
	MapEnabled bool   `json:"map_enabled"`
	ShareLink  string `json:"share_link"`
}

func BuildOrderOptions(d *domain.Delivery, shareLink string) OrderOptions {
	o := OrderOptions{
		ID:         d.ID,
		Name:       DisplayName(d.CustomerName, noNameLabel),
		OrderLabel: OrderLabel(d.ID),
		ShareLink:  shareLink,
	}
	if d.HasCoordinates() {
		o.MapURL = MapURL(*d.Latitude, *d.Longitude)
		o.MapEnabled = true
	}
	return o
}

// MapURL builds a Google Maps search link for a coordinate pair.
func MapURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s,%s",
		strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64))
}

// Details is the read-only delivery view with placeholders for blank fields.
type Details struct {
	Name         string `json:"cliente_nome"`
	Street       string `json:"cliente_rua"`
	Neighborhood string `json:"cliente_bairro"`
	Number       string `json:"cliente_numero"`
	Reference    string `json:"cliente_referencia"`
	PhotoURL     string `json:"foto_url,omitempty"`
	PhotoEmpty   bool   `json:"photo_empty"`
}

func BuildDetails(d *domain.Delivery) Details {
	det := Details{
		Name:         DisplayName(d.CustomerName, notInformed),
		Street:       DisplayName(d.Street, notInformed),
		Neighborhood: DisplayName(d.Neighborhood, notInformed),
		Number:       DisplayName(d.Number, noNumber),
		Reference:    DisplayName(d.Reference, noReference),
		PhotoEmpty:   true,
	}
	if d.PhotoURL != nil && *d.PhotoURL != "" {
		det.PhotoURL = *d.PhotoURL
		det.PhotoEmpty = false
	}
	return det
}
