package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/portogeoloc/entregas/internal/core/ports"
	"github.com/portogeoloc/entregas/internal/core/share"
)

// QREncoder renders a link as a PNG QR code.
type QREncoder interface {
	PNG(content string, theme share.Theme) ([]byte, error)
}

const universalQRPath = "/v1/share/universal/qrcode.png"

// DeliveryHandler serves the seller dashboard.
type DeliveryHandler struct {
	svc    ports.DashboardService
	qr     QREncoder
	origin string
}

// NewDeliveryHandler creates a DeliveryHandler. origin prefixes every share link.
func NewDeliveryHandler(svc ports.DashboardService, qr QREncoder, origin string) *DeliveryHandler {
	return &DeliveryHandler{svc: svc, qr: qr, origin: strings.TrimRight(origin, "/")}
}

// Dashboard handles GET /v1/deliveries.
//
// @Summary      Dashboard view of all deliveries
// @Description  Table rows, cards and counters, newest first. Backend failures render as an empty list.
// @Tags         deliveries
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/deliveries [get]
func (h *DeliveryHandler) Dashboard(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Dashboard: h.svc.Render(c.Request().Context()),
		Universal: universalShare{Link: share.UniversalURL(h.origin), QRCode: universalQRPath},
	})
}

// Create handles POST /v1/deliveries.
//
// @Summary      Create a delivery
// @Description  Generates a 4-digit access code. Supports an optional Idempotency-Key header.
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Replay protection key"
// @Param        body             body      createDeliveryRequest  true   "Customer data"
// @Success      201              {object}  deliveryResponse
// @Success      200              {object}  deliveryResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      502              {object}  errorResponse
// @Router       /v1/deliveries [post]
func (h *DeliveryHandler) Create(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}

	var req createDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.svc.CreateDelivery(c.Request().Context(), toCreateInput(req, c.Request().Header.Get("Idempotency-Key")))
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toDeliveryResponse(res.Delivery, h.origin))
}

// Get handles GET /v1/deliveries/:id.
//
// @Summary      Get a delivery record
// @Tags         deliveries
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delivery id"
// @Success      200  {object}  deliveryResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/deliveries/{id} [get]
func (h *DeliveryHandler) Get(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}
	d, err := h.svc.GetDelivery(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDeliveryResponse(d, h.origin))
}

// Details handles GET /v1/deliveries/:id/details.
//
// @Summary      Read-only delivery details
// @Description  Blank fields are replaced by display placeholders.
// @Tags         deliveries
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delivery id"
// @Success      200  {object}  view.Details
// @Failure      404  {object}  errorResponse
// @Router       /v1/deliveries/{id}/details [get]
func (h *DeliveryHandler) Details(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}
	det, err := h.svc.Details(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, det)
}

// Options handles GET /v1/deliveries/:id/options.
//
// @Summary      Order options
// @Description  Details, map link (only once located) and share link of one delivery.
// @Tags         deliveries
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delivery id"
// @Success      200  {object}  view.OrderOptions
// @Failure      404  {object}  errorResponse
// @Router       /v1/deliveries/{id}/options [get]
func (h *DeliveryHandler) Options(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}
	opts, err := h.svc.OrderOptions(c.Request().Context(), c.Param("id"), h.origin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, opts)
}

// Share handles GET /v1/deliveries/:id/share.
//
// @Summary      Share a delivery
// @Tags         share
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delivery id"
// @Success      200  {object}  shareResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/deliveries/{id}/share [get]
func (h *DeliveryHandler) Share(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}
	sel, err := h.svc.Share(c.Request().Context(), c.Param("id"), h.origin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, shareResponse{
		ID:         sel.DeliveryID,
		AccessCode: sel.AccessCode,
		Link:       sel.Link,
		QRCode:     deliveryPath(sel.DeliveryID) + "/qrcode.png",
	})
}

// CopyLink handles POST /v1/deliveries/:id/share/copy.
//
// @Summary      Copy the share link
// @Description  Returns the link to place on the clipboard and a toast that hides after 2 seconds.
// @Tags         share
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delivery id"
// @Success      200  {object}  view.CopiedLink
// @Failure      404  {object}  errorResponse
// @Router       /v1/deliveries/{id}/share/copy [post]
func (h *DeliveryHandler) CopyLink(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}
	copied, err := h.svc.CopyLink(c.Request().Context(), c.Param("id"), h.origin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, copied)
}

// QRCode handles GET /v1/deliveries/:id/qrcode.png.
//
// @Summary      Per-delivery QR code
// @Tags         share
// @Produce      png
// @Security     BearerAuth
// @Param        id   path  string  true  "Delivery id"
// @Success      200  {file}  binary
// @Failure      404  {object}  errorResponse
// @Router       /v1/deliveries/{id}/qrcode.png [get]
func (h *DeliveryHandler) QRCode(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}
	sel, err := h.svc.Share(c.Request().Context(), c.Param("id"), h.origin)
	if err != nil {
		return err
	}
	return h.renderQR(c, sel.Link, share.PerRecordTheme)
}

// UniversalQRCode handles GET /v1/share/universal/qrcode.png.
//
// @Summary      Universal QR code
// @Description  Link without delivery id; customers resolve their delivery by access code.
// @Tags         share
// @Produce      png
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /v1/share/universal/qrcode.png [get]
func (h *DeliveryHandler) UniversalQRCode(c echo.Context) error {
	if _, _, err := ctxSeller(c); err != nil {
		return err
	}
	return h.renderQR(c, share.UniversalURL(h.origin), share.UniversalTheme)
}

func (h *DeliveryHandler) renderQR(c echo.Context, link string, theme share.Theme) error {
	png, err := h.qr.PNG(link, theme)
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", png)
}
