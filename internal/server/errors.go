package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ministry-site/internal/auth"
	"ministry-site/internal/objstore"
	"ministry-site/internal/source"
	"ministry-site/internal/store"
)

var (
	ErrUnknownCommand = errors.New("unknown command type")
	ErrBadCommand     = errors.New("invalid command")
)

// statusFor maps package errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, objstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, objstore.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrExpired), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrInvalid), errors.Is(err, objstore.ErrInvalidPath),
		errors.Is(err, source.ErrUnsupported), errors.Is(err, ErrBadCommand), errors.Is(err, ErrUnknownCommand):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error response. Internal errors are logged and not echoed.
func (a *API) fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		msg = "internal error"
	}
	c.JSON(status, Response{Status: "error", Message: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Status: "error", Message: msg})
}
