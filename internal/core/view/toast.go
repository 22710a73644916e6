package view

import "time"

// ToastDuration is how long a confirmation toast stays on screen.
const ToastDuration = 2 * time.Second

// Toast is a transient notice. Showing it again restarts the countdown.
type Toast struct {
	Message  string
	Duration time.Duration
	shownAt  time.Time
	shown    bool
}

func NewToast(message string) *Toast {
	return &Toast{Message: message, Duration: ToastDuration}
}

func (t *Toast) Show(now time.Time) {
	t.shownAt = now
	t.shown = true
}

// Visible reports whether the toast is on screen at now.
func (t *Toast) Visible(now time.Time) bool {
	return t.shown && now.Before(t.HideAt())
}

// HideAt is the instant the toast auto-hides. Zero if never shown.
func (t *Toast) HideAt() time.Time {
	if !t.shown {
		return time.Time{}
	}
	return t.shownAt.Add(t.Duration)
}

// ToastNotice is the wire form sent to the page.
type ToastNotice struct {
	Message    string    `json:"message"`
	DurationMs int64     `json:"duration_ms"`
	HideAt     time.Time `json:"hide_at"`
}

func (t *Toast) Notice() ToastNotice {
	return ToastNotice{Message: t.Message, DurationMs: t.Duration.Milliseconds(), HideAt: t.HideAt()}
}

// CopiedLink answers a copy-to-clipboard action.
type CopiedLink struct {
	Link  string      `json:"link"`
	Toast ToastNotice `json:"toast"`
}
