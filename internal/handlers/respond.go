package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/apperrors"
	"listinglens-backend/internal/middleware"
	"listinglens-backend/internal/models"
)

// currentUserID pulls the authenticated user id set by the auth middleware.
// It writes the error response itself when the id is missing or malformed.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}

	return userID, true
}

// respondError maps the service error taxonomy to HTTP statuses. Unexpected
// errors become a generic 500 with the detail kept in the server log.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		status := statusForKind(ae.Kind)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("kind", ae.Kind.String()).Str("path", c.FullPath()).Msg("request failed")
		}
		c.JSON(status, models.ErrorResponse{Error: ae.Message})
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error"})
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
