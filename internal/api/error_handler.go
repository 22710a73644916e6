package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/portogeoloc/entregas/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// domainError maps a sentinel to its status and the message shown to the user.
type domainError struct {
	target  error
	status  int
	message string
}

// Order matters: a photo upload failure is checked before the generic
// gateway error because both can appear in the same chain.
var domainErrors = []domainError{
	{domain.ErrMissingRequiredFields, http.StatusBadRequest, "Nome e Telefone são obrigatórios"},
	{domain.ErrIncompleteCode, http.StatusBadRequest, "Por favor, insira o código completo de 4 dígitos."},
	{domain.ErrInvalidPhoto, http.StatusUnprocessableEntity, "A foto enviada não é uma imagem válida."},
	{domain.ErrInvalidCode, http.StatusNotFound, "Pedido não encontrado ou código inválido."},
	{domain.ErrCodeNotFound, http.StatusNotFound, "Código não encontrado ou já localizado. Verifique com o vendedor."},
	{domain.ErrDeliveryNotFound, http.StatusNotFound, "Pedido não encontrado."},
	{domain.ErrSessionNotFound, http.StatusNotFound, "Sessão não encontrada. Por favor, reinicie o processo."},
	{domain.ErrPhotoNotFound, http.StatusNotFound, "Foto não encontrada."},
	{domain.ErrInvalidSession, http.StatusConflict, "Sessão inválida. Por favor, reinicie o processo."},
	{domain.ErrAlreadyLocated, http.StatusConflict, "Este pedido já foi localizado."},
	{domain.ErrSubmissionInProgress, http.StatusConflict, "Envio já em andamento. Aguarde."},
	{domain.ErrLocationPermissionDenied, http.StatusUnprocessableEntity, "Por favor, autorize o acesso ao GPS nas configurações do seu navegador."},
	{domain.ErrLocationUnavailable, http.StatusUnprocessableEntity, "Erro ao obter localização."},
	{domain.ErrPhotoUpload, http.StatusBadGateway, "Erro ao fazer upload da foto."},
	{domain.ErrGatewayUnavailable, http.StatusBadGateway, "Erro ao conectar com o servidor."},
	{domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
	{domain.ErrUserExists, http.StatusConflict, "user already exists"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and user-facing message.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, auth middleware).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, de := range domainErrors {
		if errors.Is(err, de.target) {
			if de.status >= http.StatusInternalServerError {
				log.Warn().
					Err(err).
					Str("method", c.Request().Method).
					Str("path", c.Path()).
					Msg("upstream failure")
			}
			return de.status, de.message
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
