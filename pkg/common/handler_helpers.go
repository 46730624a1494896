package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/neighborly/pkg/logger"
	"go.uber.org/zap"
)

// HandleServiceError writes the response for a service error.
// Returns true if an error was handled (and a response was sent).
//
// Usage:
//
//	result, err := h.service.DoSomething(ctx, req)
//	if HandleServiceError(c, err, "failed to do something") {
//	    return
//	}
func HandleServiceError(c *gin.Context, err error, fallbackMessage string) bool {
	if err == nil {
		return false
	}

	if appErr, ok := AsAppError(err); ok {
		if appErr.Code >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		AppErrorResponse(c, appErr)
		return true
	}

	logger.ErrorContext(c.Request.Context(), fallbackMessage, zap.Error(err))
	_ = c.Error(err)
	ErrorResponse(c, http.StatusInternalServerError, fallbackMessage)
	return true
}

// BindQuery binds query parameters and sends error response on failure.
// Returns true on success, false on failure (response already sent).
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		AppErrorResponse(c, NewBadRequestError(err.Error(), err))
		return false
	}
	return true
}

// RequireUserID extracts the authenticated user ID or sends a 401.
func RequireUserID(c *gin.Context, getUserID func(*gin.Context) (uuid.UUID, error)) (uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		AppErrorResponse(c, NewUnauthorizedError("unauthorized"))
		return uuid.Nil, false
	}
	return userID, true
}
