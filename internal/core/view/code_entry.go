package view

import (
	"strings"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// CodeEntry models the four single-digit inputs of the access code form.
type CodeEntry struct {
	slots [domain.AccessCodeLength]string
	focus int
}

func NewCodeEntry() *CodeEntry { return &CodeEntry{} }

// Input types a digit into the focused slot and moves focus forward.
// Anything other than a single ASCII digit is ignored.
func (c *CodeEntry) Input(digit string) {
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		return
	}
	c.slots[c.focus] = digit
	if c.focus < len(c.slots)-1 {
		c.focus++
	}
}

// Backspace clears the focused slot, or moves focus back when it is
// already empty.
func (c *CodeEntry) Backspace() {
	if c.slots[c.focus] != "" {
		c.slots[c.focus] = ""
		return
	}
	if c.focus > 0 {
		c.focus--
	}
}

func (c *CodeEntry) Focus(i int) {
	if i >= 0 && i < len(c.slots) {
		c.focus = i
	}
}

func (c *CodeEntry) Focused() int { return c.focus }

// Code joins the slots. Empty slots are skipped, so an incomplete entry
// yields fewer than four digits.
func (c *CodeEntry) Code() string {
	return strings.Join(c.slots[:], "")
}

func (c *CodeEntry) Complete() bool {
	return len(c.Code()) == len(c.slots)
}

// Clear empties every slot and focuses the first one.
func (c *CodeEntry) Clear() {
	c.slots = [domain.AccessCodeLength]string{}
	c.focus = 0
}
