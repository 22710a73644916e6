package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func TestBuildDashboard_Empty(t *testing.T) {
	for _, in := range [][]*domain.Delivery{nil, {}} {
		d := BuildDashboard(in)

		require.NotNil(t, d.Table.Empty)
		require.NotNil(t, d.Cards.Empty)
		assert.Empty(t, d.Table.Rows)
		assert.Empty(t, d.Cards.Items)
		assert.Equal(t, EmptyMessage, d.Table.Empty.Message)
		assert.Equal(t, EmptyMessage, d.Cards.Empty.Message)
		assert.Equal(t, "00", d.Stats.Pending)
		assert.Equal(t, "00", d.Stats.Located)
	}
}

func TestBuildDashboard_Records(t *testing.T) {
	now := time.Now()
	records := []*domain.Delivery{
		{
			ID: "7f3c1e2a-0000-4000-8000-00000000abcde", CustomerName: "Ana Maria Souza", AccessCode: "4821",
			Status: domain.StatusPending, CreatedAt: now,
		},
		{
			ID: "12", AccessCode: "1000", Status: domain.StatusLocated, CreatedAt: now.Add(-time.Hour),
			Latitude: ptr(-23.5), Longitude: ptr(-46.6),
		},
	}

	d := BuildDashboard(records)

	assert.Nil(t, d.Table.Empty)
	assert.Nil(t, d.Cards.Empty)
	require.Len(t, d.Table.Rows, 2)
	require.Len(t, d.Cards.Items, 2)

	row := d.Table.Rows[0]
	assert.Equal(t, records[0].ID, row.ID)
	assert.Equal(t, "AM", row.Initials)
	assert.Equal(t, "Ana Maria Souza", row.Name)
	assert.Equal(t, "Pedido #abcde", row.OrderLabel)
	assert.Equal(t, "Aguardando GPS", row.StatusLabel)
	assert.True(t, row.Pending)

	assert.Equal(t, "??", d.Table.Rows[1].Initials)
	assert.Equal(t, "Sem Nome", d.Table.Rows[1].Name)
	assert.Equal(t, "Pedido #12", d.Table.Rows[1].OrderLabel)
	assert.Equal(t, "Localizado", d.Table.Rows[1].StatusLabel)

	assert.Equal(t, "Pendente", d.Cards.Items[0].StatusLabel)
	assert.Equal(t, "Confirmado", d.Cards.Items[1].StatusLabel)
	for i := range records {
		assert.Equal(t, d.Table.Rows[i].ID, d.Cards.Items[i].ID)
	}

	assert.Equal(t, "01", d.Stats.Pending)
	assert.Equal(t, "01", d.Stats.Located)
}

func TestStats_Padding(t *testing.T) {
	var records []*domain.Delivery
	for i := 0; i < 12; i++ {
		records = append(records, &domain.Delivery{ID: "x", Status: domain.StatusPending})
	}
	d := BuildDashboard(records)
	assert.Equal(t, "12", d.Stats.Pending)
	assert.Equal(t, "00", d.Stats.Located)
	assert.Equal(t, 12, d.Stats.PendingCount)
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"":               "??",
		"ana":            "A",
		"ana souza":      "AS",
		"joão  da silva": "JD",
		"élodie martin":  "ÉM",
		" ":              "??",
	}
	for in, want := range cases {
		assert.Equal(t, want, Initials(in), "Initials(%q)", in)
	}
}
