package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portogeoloc/entregas/internal/api/middleware"
)

// ctxSeller extracts the claims injected by the Auth middleware. An empty
// role means the middleware did not run, so the request is rejected before
// any service call.
func ctxSeller(c echo.Context) (username, role string, err error) {
	role, _ = c.Get(middleware.ContextRole).(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	username, _ = c.Get(middleware.ContextUsername).(string)
	return username, role, nil
}
