// Package qrcode renders share links as PNG QR codes.
package qrcode

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qr "github.com/skip2/go-qrcode"

	"github.com/portogeoloc/entregas/internal/core/share"
)

// Encoder renders QR codes with the highest error correction level.
type Encoder struct{}

func NewEncoder() *Encoder { return &Encoder{} }

// PNG encodes content using the colors and size of theme.
func (e *Encoder) PNG(content string, theme share.Theme) ([]byte, error) {
	code, err := qr.New(content, qr.Highest)
	if err != nil {
		return nil, fmt.Errorf("qrcode: %w", err)
	}

	fg, err := parseHexColor(theme.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := parseHexColor(theme.Background)
	if err != nil {
		return nil, err
	}
	code.ForegroundColor = fg
	code.BackgroundColor = bg

	png, err := code.PNG(theme.Size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: %w", err)
	}
	return png, nil
}

// parseHexColor accepts "#rrggbb".
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("qrcode: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("qrcode: invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
