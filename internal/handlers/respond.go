package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
)

const msgNotFound = "Not found."

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var fields apierrors.FieldErrors
	switch {
	case errors.As(err, &fields):
		apierrors.ValidationFailed(c, fields)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, "Invalid username or password")
	case errors.Is(err, services.ErrSessionInvalid):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, services.ErrInvalidResetLink):
		apierrors.InvalidResetLink(c)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrIndicatorNotFound):
		apierrors.NotFound(c, msgNotFound)
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// parseIDParam reads a numeric :id. Anything else cannot name an object, so it answers 404.
func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.NotFound(c, msgNotFound)
		return 0, false
	}
	return id, true
}

func setTotalCount(c *gin.Context, total int64) {
	c.Header(constants.HeaderTotalCount, strconv.FormatInt(total, 10))
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
