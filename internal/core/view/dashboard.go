// Package view maps delivery records to the structures the dashboard and the
// confirmation pages render. Everything here is pure and clock-injected.
package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

const (
	EmptyMessage    = "Nenhum pedido encontrado hoje."
	noNameLabel     = "Sem Nome"
	unknownInitials = "??"
	orderSuffixLen  = 5
)

// Dashboard is the full seller page: a table for wide screens, cards for
// narrow ones, and the pending/located counters.
type Dashboard struct {
	Table Table    `json:"table"`
	Cards CardList `json:"cards"`
	Stats Stats    `json:"stats"`
}

type Table struct {
	Rows  []TableRow  `json:"rows"`
	Empty *EmptyState `json:"empty,omitempty"`
}

type TableRow struct {
	ID          string `json:"id"`
	Initials    string `json:"initials"`
	Name        string `json:"name"`
	OrderLabel  string `json:"order_label"`
	AccessCode  string `json:"codigo_acesso"`
	StatusLabel string `json:"status_label"`
	Pending     bool   `json:"pending"`
}

type CardList struct {
	Items []Card      `json:"items"`
	Empty *EmptyState `json:"empty,omitempty"`
}

type Card struct {
	ID          string `json:"id"`
	AccessCode  string `json:"codigo_acesso"`
	Name        string `json:"name"`
	StatusLabel string `json:"status_label"`
	Pending     bool   `json:"pending"`
}

type EmptyState struct {
	Message string `json:"message"`
}

// Stats holds the counters, zero-padded to two digits for display.
type Stats struct {
	Pending      string `json:"pendentes"`
	Located      string `json:"localizadas"`
	PendingCount int    `json:"pending_count"`
	LocatedCount int    `json:"located_count"`
}

// BuildDashboard renders records in the given order. An empty input yields a
// single placeholder in each view and "00" counters.
func BuildDashboard(records []*domain.Delivery) Dashboard {
	if len(records) == 0 {
		return Dashboard{
			Table: Table{Rows: []TableRow{}, Empty: &EmptyState{Message: EmptyMessage}},
			Cards: CardList{Items: []Card{}, Empty: &EmptyState{Message: EmptyMessage}},
			Stats: newStats(0, 0),
		}
	}

	rows := make([]TableRow, 0, len(records))
	cards := make([]Card, 0, len(records))
	var pending, located int
	for _, d := range records {
		name := DisplayName(d.CustomerName, noNameLabel)
		rows = append(rows, TableRow{
			ID:          d.ID,
			Initials:    Initials(d.CustomerName),
			Name:        name,
			OrderLabel:  OrderLabel(d.ID),
			AccessCode:  d.AccessCode,
			StatusLabel: tableStatus(d.Status),
			Pending:     d.IsPending(),
		})
		cards = append(cards, Card{
			ID:          d.ID,
			AccessCode:  d.AccessCode,
			Name:        name,
			StatusLabel: cardStatus(d.Status),
			Pending:     d.IsPending(),
		})
		switch d.Status {
		case domain.StatusPending:
			pending++
		case domain.StatusLocated:
			located++
		}
	}

	return Dashboard{
		Table: Table{Rows: rows},
		Cards: CardList{Items: cards},
		Stats: newStats(pending, located),
	}
}

func newStats(pending, located int) Stats {
	return Stats{
		Pending:      fmt.Sprintf("%02d", pending),
		Located:      fmt.Sprintf("%02d", located),
		PendingCount: pending,
		LocatedCount: located,
	}
}

func tableStatus(s domain.DeliveryStatus) string {
	if s == domain.StatusPending {
		return "Aguardando GPS"
	}
	return "Localizado"
}

func cardStatus(s domain.DeliveryStatus) string {
	if s == domain.StatusPending {
		return "Pendente"
	}
	return "Confirmado"
}

// Initials returns the upper-cased first letters of the first two words.
func Initials(name string) string {
	if name == "" {
		return unknownInitials
	}
	var b strings.Builder
	n := 0
	for _, part := range strings.Split(name, " ") {
		if part == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteString(strings.ToUpper(string(r)))
		n++
		if n == 2 {
			break
		}
	}
	if n == 0 {
		return unknownInitials
	}
	return b.String()
}

// OrderLabel returns "Pedido #" followed by the last five characters of id.
func OrderLabel(id string) string {
	r := []rune(id)
	if len(r) > orderSuffixLen {
		r = r[len(r)-orderSuffixLen:]
	}
	return "Pedido #" + string(r)
}

// DisplayName returns v, or fallback when v is empty.
func DisplayName(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
