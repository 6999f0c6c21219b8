package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
)

const (
	msgUnauthorized     = "Unauthorized"
	msgIdentityNotFound = "Authorization Error: The user could not be found."
	msgInvalidLogin     = "Username or password is incorrect"
	msgInternal         = "Internal server error"
)

type messageResponse struct {
	Message string `json:"message"`
}

// statusFor maps a service error to an HTTP status and client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidLogin
	case errors.Is(err, common.ErrIdentityNotFound):
		return http.StatusUnauthorized, msgIdentityNotFound
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrDuplicateUsername):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, messageResponse{Message: msg})
}
