package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
	"github.com/portogeoloc/entregas/internal/core/service"
	"github.com/portogeoloc/entregas/internal/core/view"
	"github.com/portogeoloc/entregas/internal/infrastructure/geo"
)

const photoField = "photo"

// ConfirmationHandler serves the customer confirmation flow. It needs no
// authentication: the access code is the customer's credential.
type ConfirmationHandler struct {
	svc           ports.ConfirmationService
	maxPhotoBytes int64
}

func NewConfirmationHandler(svc ports.ConfirmationService, maxPhotoBytes int64) *ConfirmationHandler {
	return &ConfirmationHandler{svc: svc, maxPhotoBytes: maxPhotoBytes}
}

// Start handles GET /confirmar-localizacao.
//
// @Summary      Open a confirmation session
// @Description  With ?id the code is checked against that delivery; without it the newest pending delivery with the code is used.
// @Tags         confirmation
// @Produce      json
// @Param        id   query     string  false  "Delivery id from the share link"
// @Success      201  {object}  sessionResponse
// @Failure      502  {object}  errorResponse
// @Router       /confirmar-localizacao [get]
func (h *ConfirmationHandler) Start(c echo.Context) error {
	sess, err := h.svc.Start(c.Request().Context(), c.QueryParam("id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, sessionPath(sess.ID))
	return c.JSON(http.StatusCreated, toSessionResponse(sess, h.svc.PositionOptions()))
}

// Get handles GET /v1/confirmations/:session.
//
// @Summary      Confirmation session state
// @Tags         confirmation
// @Produce      json
// @Param        session  path      string  true  "Session id"
// @Success      200      {object}  sessionResponse
// @Failure      404      {object}  errorResponse
// @Router       /v1/confirmations/{session} [get]
func (h *ConfirmationHandler) Get(c echo.Context) error {
	sess, err := h.svc.Session(c.Request().Context(), c.Param("session"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess, h.svc.PositionOptions()))
}

// Verify handles POST /v1/confirmations/:session/verify.
//
// @Summary      Verify the access code
// @Tags         confirmation
// @Accept       json
// @Produce      json
// @Param        session  path      string             true  "Session id"
// @Param        body     body      verifyCodeRequest  true  "Code, joined or per digit"
// @Success      200      {object}  sessionResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Failure      502      {object}  errorResponse
// @Router       /v1/confirmations/{session}/verify [post]
func (h *ConfirmationHandler) Verify(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return domain.ErrIncompleteCode
	}

	sess, err := h.svc.VerifyCode(c.Request().Context(), c.Param("session"), enteredCode(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess, h.svc.PositionOptions()))
}

// enteredCode prefers the per-slot digits when the page sends them.
func enteredCode(req verifyCodeRequest) string {
	if len(req.Digits) == 0 {
		return req.Code
	}
	entry := view.NewCodeEntry()
	for i, d := range req.Digits {
		entry.Focus(i)
		entry.Input(d)
	}
	return entry.Code()
}

// SubmitLocation handles POST /v1/confirmations/:session/location.
//
// @Summary      Submit location and optional photo
// @Description  Multipart form. lat/lon/accuracy come from a high-accuracy fix taken within 20s with no cached position; geo_error carries the device error code instead.
// @Tags         confirmation
// @Accept       multipart/form-data
// @Produce      json
// @Param        session    path      string  true   "Session id"
// @Param        lat        formData  number  false  "Latitude"
// @Param        lon        formData  number  false  "Longitude"
// @Param        accuracy   formData  number  false  "Accuracy in meters"
// @Param        geo_error  formData  string  false  "Device geolocation error (1 = permission denied)"
// @Param        photo      formData  file    false  "Photo of the delivery place"
// @Success      200        {object}  sessionResponse
// @Failure      409        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Failure      502        {object}  errorResponse
// @Router       /v1/confirmations/{session}/location [post]
func (h *ConfirmationHandler) SubmitLocation(c echo.Context) error {
	photo, err := h.readPhoto(c)
	if err != nil {
		return err
	}

	fix := geo.SubmittedFix{
		Latitude:  c.FormValue("lat"),
		Longitude: c.FormValue("lon"),
		Accuracy:  c.FormValue("accuracy"),
		Error:     c.FormValue("geo_error"),
	}

	sess, err := h.svc.SubmitLocation(c.Request().Context(), c.Param("session"), fix, photo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess, h.svc.PositionOptions()))
}

// readPhoto returns nil when no photo was attached.
func (h *ConfirmationHandler) readPhoto(c echo.Context) (*domain.Photo, error) {
	fh, err := c.FormFile(photoField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	if h.maxPhotoBytes > 0 && fh.Size > h.maxPhotoBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", domain.ErrInvalidPhoto, h.maxPhotoBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPhoto, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPhoto, err)
	}
	return service.NewPhoto(fh.Filename, data)
}
