package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToast_AutoHides(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	toast := NewToast("Link copiado!")

	assert.False(t, toast.Visible(start))

	toast.Show(start)
	assert.True(t, toast.Visible(start))
	assert.True(t, toast.Visible(start.Add(1999*time.Millisecond)))
	assert.False(t, toast.Visible(start.Add(2*time.Second)))
}

func TestToast_Retrigger(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	toast := NewToast("Link copiado!")

	toast.Show(start)
	toast.Show(start.Add(1500 * time.Millisecond))

	assert.True(t, toast.Visible(start.Add(3*time.Second)))
	assert.False(t, toast.Visible(start.Add(3500*time.Millisecond)))

	toast.Show(start.Add(10 * time.Second))
	assert.True(t, toast.Visible(start.Add(11*time.Second)))
}

func TestToast_Notice(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	toast := NewToast("Link copiado!")
	toast.Show(start)

	n := toast.Notice()
	assert.Equal(t, int64(2000), n.DurationMs)
	assert.Equal(t, start.Add(2*time.Second), n.HideAt)
}
