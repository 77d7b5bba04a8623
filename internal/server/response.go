package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"examprep/internal/logger"
	"examprep/pkg/preptypes"
)

// APIError is the body of every failed response.
type APIError struct {
	Message     string   `json:"message"`
	Code        string   `json:"code,omitempty"`
	MissingKeys []string `json:"missingKeys,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

var kindStatus = map[preptypes.ErrorKind]int{
	preptypes.ErrInvalidInput:          http.StatusBadRequest,
	preptypes.ErrInvalidCode:           http.StatusBadRequest,
	preptypes.ErrInvalidCredentials:    http.StatusUnauthorized,
	preptypes.ErrNotLoggedIn:           http.StatusUnauthorized,
	preptypes.ErrNoPendingVerification: http.StatusNotFound,
	preptypes.ErrDuplicateAccount:      http.StatusConflict,
	preptypes.ErrCodeExpired:           http.StatusGone,
	preptypes.ErrEmptyResponse:         http.StatusUnprocessableEntity,
	preptypes.ErrMalformedJSON:         http.StatusUnprocessableEntity,
	preptypes.ErrIncompleteSchema:      http.StatusUnprocessableEntity,
	preptypes.ErrTransport:             http.StatusBadGateway,
	preptypes.ErrAuthConfiguration:     http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind preptypes.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondError writes err as an ErrorEnvelope. Only the user message leaves the process.
func RespondError(c *gin.Context, err error) {
	kind := preptypes.KindOf(err)
	body := APIError{Message: preptypes.UserMessage(err), Code: string(kind)}

	var prepErr *preptypes.PrepError
	if errors.As(err, &prepErr) {
		body.MissingKeys = prepErr.MissingKeys
	}

	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "kind", kind, "error", err)
	} else {
		logger.Debug("Request rejected", "path", c.FullPath(), "kind", kind, "error", err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

// RespondInvalidBody rejects a request whose JSON body could not be bound.
func RespondInvalidBody(c *gin.Context, err error) {
	RespondError(c, preptypes.NewErrorf(preptypes.ErrInvalidInput, err, "Invalid request body."))
}

// RespondOK writes payload with status 200.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
