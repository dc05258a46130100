package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mpmf/NexxtTask/internal/services"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

// newServiceError maps a service error onto its HTTP status. Unknown
// errors are reported as a bare 500 so store details never leak.
func newServiceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return newAPIError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		return newAPIError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrUserAlreadyExists):
		return newAPIError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		return newBadRequestError(err.Error())
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrUserPasswordMismatch),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrSessionExpired):
		return newUnauthorizedError(err.Error())
	}
	return newStatusTextError(http.StatusInternalServerError)
}
