package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

// PhotoHandler serves the public URLs returned by the photo store.
type PhotoHandler struct {
	store  ports.PhotoStore
	bucket string
}

func NewPhotoHandler(store ports.PhotoStore, bucket string) *PhotoHandler {
	return &PhotoHandler{store: store, bucket: bucket}
}

// Serve handles GET /storage/:bucket/*.
//
// @Summary      Public customer photo
// @Tags         storage
// @Produce      image/jpeg,image/png
// @Param        bucket  path  string  true  "Bucket name"
// @Param        path    path  string  true  "Object path, e.g. fotos/<id>-<millis>.jpg"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /storage/{bucket}/{path} [get]
func (h *PhotoHandler) Serve(c echo.Context) error {
	path := strings.TrimPrefix(c.Param("*"), "/")
	if c.Param("bucket") != h.bucket || path == "" {
		return domain.ErrPhotoNotFound
	}

	rc, contentType, err := h.store.Open(c.Request().Context(), path)
	if err != nil {
		return err
	}
	defer rc.Close()

	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400, immutable")
	return c.Stream(http.StatusOK, contentType, rc)
}
