package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// Auth validates the dashboard JWT issued at login. Tokens must be HS256,
// carry an expiry and name a role.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	key := []byte(jwtSecret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) { return key, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			role, _ := claims["role"].(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token without role")
			}

			c.Set(ContextUserID, claims["sub"])
			c.Set(ContextUsername, claims["username"])
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
